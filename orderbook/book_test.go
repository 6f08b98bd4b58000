package orderbook

import (
	"testing"

	"matching-core/domain"
)

type recordedFill struct {
	id     domain.OrderID
	volume domain.Quantity
	value  domain.Value
}

func collectFills(b *Book, cmd InsertCommand) ([]recordedFill, error) {
	var fills []recordedFill
	err := b.Insert(cmd, func(id domain.OrderID, participantID domain.ParticipantID, volume domain.Quantity, value domain.Value) {
		fills = append(fills, recordedFill{id, volume, value})
	})
	return fills, err
}

// A resting order with nothing to cross against just joins its bucket and
// becomes the best price on its side.
func TestInsertRestsWhenNoCross(t *testing.T) {
	b := NewBook(1)

	fills, err := collectFills(b, InsertCommand{ID: 1, ParticipantID: 1, Side: domain.Ask, Limit: 100, Volume: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fills) != 0 {
		t.Fatalf("expected no fills, got %v", fills)
	}
	if b.BestAsk() != 100 {
		t.Errorf("expected best ask 100, got %d", b.BestAsk())
	}
	if !b.Live(1) {
		t.Error("expected order 1 to be live")
	}
}

// A crossing taker fully consumes a single resting maker: one maker fill
// and one taker fill, both at the maker's limit price.
func TestSingleMakerFullFill(t *testing.T) {
	b := NewBook(1)
	mustInsert(t, b, InsertCommand{ID: 1, ParticipantID: 1, Side: domain.Ask, Limit: 100, Volume: 10})

	fills, err := collectFills(b, InsertCommand{ID: 2, ParticipantID: 2, Side: domain.Bid, Limit: 100, Volume: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []recordedFill{
		{id: 1, volume: 10, value: 1000},
		{id: 2, volume: 10, value: 1000},
	}
	assertFills(t, want, fills)

	if b.Live(1) {
		t.Error("maker should have been fully filled and removed")
	}
	if b.Live(2) {
		t.Error("taker should have been fully filled, not rested")
	}
}

// Orders at the same price level match in arrival order (FIFO).
func TestFIFOWithinPriceLevel(t *testing.T) {
	b := NewBook(1)
	mustInsert(t, b, InsertCommand{ID: 1, ParticipantID: 1, Side: domain.Ask, Limit: 100, Volume: 5})
	mustInsert(t, b, InsertCommand{ID: 2, ParticipantID: 2, Side: domain.Ask, Limit: 100, Volume: 5})

	fills, err := collectFills(b, InsertCommand{ID: 3, ParticipantID: 3, Side: domain.Bid, Limit: 100, Volume: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []recordedFill{
		{id: 1, volume: 5, value: 500},
		{id: 2, volume: 2, value: 200},
		{id: 3, volume: 7, value: 700},
	}
	assertFills(t, want, fills)

	if b.Live(1) {
		t.Error("order 1 should be fully consumed")
	}
	if !b.Live(2) {
		t.Error("order 2 should still be resting with 3 remaining")
	}
}

// A taker that crosses two price levels produces one maker fill per level
// plus a single aggregated taker fill summing both.
func TestAggregatedTakerFillAcrossLevels(t *testing.T) {
	b := NewBook(1)
	mustInsert(t, b, InsertCommand{ID: 1, ParticipantID: 1, Side: domain.Ask, Limit: 100, Volume: 10})
	mustInsert(t, b, InsertCommand{ID: 2, ParticipantID: 2, Side: domain.Ask, Limit: 101, Volume: 5})

	fills, err := collectFills(b, InsertCommand{ID: 3, ParticipantID: 3, Side: domain.Bid, Limit: 101, Volume: 15})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []recordedFill{
		{id: 1, volume: 10, value: 1000},
		{id: 2, volume: 5, value: 505},
		{id: 3, volume: 15, value: 1505},
	}
	assertFills(t, want, fills)
}

// After a taker fully drains the only resting order on the opposite side,
// the book no longer has any live order at that price and reports no
// crossing candidate there. The best-price pointer only corrects itself
// one tick at a time as further inserts probe the ladder; it is not
// eagerly rescanned to the true logical value.
func TestBestPriceAdvancesLazily(t *testing.T) {
	b := NewBook(1)
	mustInsert(t, b, InsertCommand{ID: 1, ParticipantID: 1, Side: domain.Ask, Limit: 100, Volume: 10})

	fills, err := collectFills(b, InsertCommand{ID: 2, ParticipantID: 2, Side: domain.Bid, Limit: 100, Volume: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []recordedFill{
		{id: 1, volume: 10, value: 1000},
		{id: 2, volume: 10, value: 1000},
	}
	assertFills(t, want, fills)

	if b.Live(1) {
		t.Error("order 1 should have been fully consumed and removed")
	}
	// Emptying level 100 steps the best-ask pointer one tick, to 101, not
	// to PMax.
	if b.BestAsk() != 101 {
		t.Errorf("expected best ask pointer 101 after one lazy step, got %d", b.BestAsk())
	}

	// A new, non-crossing ask at a higher price rests normally regardless
	// of where the stale best-ask pointer currently sits.
	if err := b.Insert(InsertCommand{ID: 3, ParticipantID: 1, Side: domain.Ask, Limit: 105, Volume: 1}, func(domain.OrderID, domain.ParticipantID, domain.Quantity, domain.Value) {
		t.Fatal("unexpected fill on a non-crossing rest")
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.Live(3) {
		t.Error("order 3 should be resting")
	}
}

// Cancel is idempotent: cancelling twice, or cancelling an id that never
// existed, is a no-op reported via the boolean return, not an error.
func TestCancelIsIdempotent(t *testing.T) {
	b := NewBook(1)
	mustInsert(t, b, InsertCommand{ID: 1, ParticipantID: 1, Side: domain.Ask, Limit: 100, Volume: 10})

	owner, ok := b.Cancel(1)
	if !ok || owner != 1 {
		t.Fatal("expected first cancel to remove the order and report its owner")
	}
	if _, ok := b.Cancel(1); ok {
		t.Error("expected second cancel to be a no-op")
	}
	if _, ok := b.Cancel(999); ok {
		t.Error("expected cancel of unknown id to be a no-op")
	}
	if b.Live(1) {
		t.Error("order 1 should no longer be live")
	}
}

func TestDuplicateOrderIDRejected(t *testing.T) {
	b := NewBook(1)
	mustInsert(t, b, InsertCommand{ID: 1, ParticipantID: 1, Side: domain.Ask, Limit: 100, Volume: 10})

	err := b.Insert(InsertCommand{ID: 1, ParticipantID: 2, Side: domain.Ask, Limit: 100, Volume: 5}, noopFill)
	if err != ErrDuplicateOrderID {
		t.Fatalf("expected ErrDuplicateOrderID, got %v", err)
	}
}

func TestZeroVolumeRejected(t *testing.T) {
	b := NewBook(1)
	err := b.Insert(InsertCommand{ID: 1, ParticipantID: 1, Side: domain.Ask, Limit: 100, Volume: 0}, noopFill)
	if err != ErrZeroVolume {
		t.Fatalf("expected ErrZeroVolume, got %v", err)
	}
}

func TestPriceOutOfRangeRejected(t *testing.T) {
	b := NewBookWithLadder(1, 10)
	err := b.Insert(InsertCommand{ID: 1, ParticipantID: 1, Side: domain.Ask, Limit: 10, Volume: 1}, noopFill)
	if err != ErrPriceOutOfRange {
		t.Fatalf("expected ErrPriceOutOfRange, got %v", err)
	}
}

func noopFill(domain.OrderID, domain.ParticipantID, domain.Quantity, domain.Value) {}

func mustInsert(t *testing.T, b *Book, cmd InsertCommand) {
	t.Helper()
	if err := b.Insert(cmd, noopFill); err != nil {
		t.Fatalf("unexpected error inserting %+v: %v", cmd, err)
	}
}

func assertFills(t *testing.T, want, got []recordedFill) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("expected %d fills, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if want[i] != got[i] {
			t.Errorf("fill %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}
