package risk

import "matching-core/domain"

// riskOrder is the risk engine's own view of an admitted order: just
// enough (side, limit, remaining volume) to recompute its pessimistic
// reservation as fills and cancels arrive. It deliberately does not
// carry the order's book-side intrusive list state; that belongs to
// orderbook.Book alone.
type riskOrder struct {
	side      domain.Side
	limit     domain.Price
	remaining domain.Quantity
}

// orderRecord is what the engine stores per admitted order id: who owns
// it, which symbol it trades, and its risk-order snapshot.
type orderRecord struct {
	participantID domain.ParticipantID
	symbolID      domain.SymbolID
	order         riskOrder
}
