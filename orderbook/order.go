package orderbook

import "matching-core/domain"

// order is a live, in-book order. It is reachable two ways: by id through
// Book.byID, and as a node in its bucket's intrusive FIFO list via
// prev/next. The bucket does not own orders in the storage sense; Book
// owns both byID and the buckets, and every mutation of an order's list
// position happens through Book's or bucket's methods.
type order struct {
	id            domain.OrderID
	participantID domain.ParticipantID
	side          domain.Side
	limit         domain.Price
	remaining     domain.Quantity

	prev, next *order
}
