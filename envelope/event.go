package envelope

import "matching-core/domain"

// MatchingEvent is the sealed union of events a matcher publishes toward
// risk post-settlement: Fill or Canceled.
type MatchingEvent interface {
	isMatchingEvent()
}

// Fill reports that order_id traded filled_volume for filled_value. It is
// emitted once per maker match, and once more (aggregated) for the
// taker, whenever any quantity crossed on that Insert.
type Fill struct {
	OrderID       domain.OrderID
	FilledVolume  domain.Quantity
	FilledValue   domain.Value
}

func (Fill) isMatchingEvent() {}

// Canceled reports that order_id was removed from its book by an
// explicit Cancel. Emitted once per cancel that actually removed a live
// order; a cancel of an unknown or already-canceled id produces no
// event, keeping Cancel idempotent end to end.
type Canceled struct {
	OrderID domain.OrderID
}

func (Canceled) isMatchingEvent() {}
