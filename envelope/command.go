// Package envelope defines the typed command and event payloads carried
// between the risk, matching and settlement stages, and the wire
// envelope that frames them for a message bus.
package envelope

import "matching-core/domain"

// OrderCommand is the sealed union of commands accepted by the risk
// pre-gate: Trade or Cancel.
type OrderCommand interface {
	isOrderCommand()
}

// TradeCommand admits a new order for matching.
type TradeCommand struct {
	ID            domain.OrderID
	ParticipantID domain.ParticipantID
	Symbol        domain.SymbolID
	Side          domain.Side
	Volume        domain.Quantity
	Limit         domain.Price

	// ImmediateOrCancel is carried on the wire but not enforced by the
	// matcher in this port, kept only for wire compatibility with a
	// future matcher change. A trade that rests with this flag set is
	// logged as ignored, not silently honored.
	ImmediateOrCancel bool
}

func (TradeCommand) isOrderCommand() {}

// CancelCommand cancels a resting order by id.
type CancelCommand struct {
	Symbol        domain.SymbolID
	OrderID       domain.OrderID
	ParticipantID domain.ParticipantID
}

func (CancelCommand) isOrderCommand() {}
