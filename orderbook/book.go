// Package orderbook implements a price-time-priority limit order book: a
// bucketed price ladder with an intrusive FIFO queue per price level,
// O(1) insert, O(1) cancel, O(ladder-scan + fills) match.
package orderbook

import "matching-core/domain"

// PMax is the reference size of the fixed price ladder: valid limit
// prices are tick indices in [0, PMax).
const PMax domain.Price = 2000

// InsertCommand is the admission request for a new order.
type InsertCommand struct {
	ID            domain.OrderID
	ParticipantID domain.ParticipantID
	Side          domain.Side
	Limit         domain.Price
	Volume        domain.Quantity
}

// FillFunc receives one fill event, either a maker match or the
// aggregated taker fill, as the book processes an Insert. participantID
// identifies the owner of id, so callers can route the event onward
// without a second lookup.
type FillFunc func(id domain.OrderID, participantID domain.ParticipantID, volume domain.Quantity, value domain.Value)

// Book is the order book for one symbol: a ladder of PMax buckets per
// side, plus an id index.
//
// Invariants:
//
//	bestAsk > bestBid at every observable moment (no crossed book).
//	For every price p < bestAsk, asks[p] is empty; symmetrically for
//	bids above bestBid.
//	byID contains exactly the orders currently linked in some bucket.
type Book struct {
	symbol domain.SymbolID
	pMax   domain.Price

	asks []bucket
	bids []bucket

	byID map[domain.OrderID]*order

	// bestAsk starts at pMax (no asks) and bestBid at 0 (sentinel "no
	// bid"; a resting bid at tick 0 is therefore indistinguishable from
	// an empty bid side, inherited from the ladder's sentinel design and
	// not corrected). Both advance lazily, one tick per emptied level, so
	// after a level empties they can point at a tick with no resting
	// order; bestAsk is never above the lowest resting ask, nor bestBid
	// below the highest resting bid.
	bestAsk domain.Price
	bestBid domain.Price
}

// NewBook constructs an empty book for symbol with the reference ladder
// size PMax.
func NewBook(symbol domain.SymbolID) *Book {
	return NewBookWithLadder(symbol, PMax)
}

// NewBookWithLadder constructs an empty book with a caller-chosen ladder
// size, used by tests that want a small P_MAX.
func NewBookWithLadder(symbol domain.SymbolID, pMax domain.Price) *Book {
	b := &Book{
		symbol: symbol,
		pMax:   pMax,
		asks:   make([]bucket, pMax),
		bids:   make([]bucket, pMax),
		byID:   make(map[domain.OrderID]*order),
	}
	for p := domain.Price(0); p < pMax; p++ {
		b.asks[p].price = p
		b.bids[p].price = p
	}
	b.bestAsk = pMax
	b.bestBid = 0
	return b
}

// Symbol returns the symbol this book matches orders for.
func (b *Book) Symbol() domain.SymbolID { return b.symbol }

// BestAsk returns the book's best-ask pointer: PMax before any ask has
// rested, otherwise a price at or below the lowest resting ask. The
// pointer is not rescanned when a level empties, so it can name a price
// with no resting ask.
func (b *Book) BestAsk() domain.Price { return b.bestAsk }

// BestBid returns the book's best-bid pointer: 0 before any bid has
// rested, otherwise a price at or above the highest resting bid. The
// pointer is not rescanned when a level empties, so it can name a price
// with no resting bid.
func (b *Book) BestBid() domain.Price { return b.bestBid }

// Live reports whether id currently has a resting order in this book.
func (b *Book) Live(id domain.OrderID) bool {
	_, ok := b.byID[id]
	return ok
}

// Insert admits cmd for matching. It attempts to cross the order against
// resting liquidity on the opposite side before resting any residual
// quantity. emit is called once per maker match, and, when any
// quantity crossed, once more for the aggregated taker fill.
func (b *Book) Insert(cmd InsertCommand, emit FillFunc) error {
	if cmd.Limit >= b.pMax {
		return ErrPriceOutOfRange
	}
	if cmd.Volume == 0 {
		return ErrZeroVolume
	}
	if _, exists := b.byID[cmd.ID]; exists {
		return ErrDuplicateOrderID
	}

	remaining := cmd.Volume
	var takerFilled domain.Quantity
	var takerValue domain.Value

	for remaining > 0 {
		buck := b.oppositeBucketFor(cmd.Side, cmd.Limit)
		if buck == nil {
			break
		}
		if buck.len == 0 {
			b.advanceBestOpposite(cmd.Side)
			continue
		}

		maker := buck.headMut()
		traded := min(remaining, maker.remaining)
		maker.remaining -= traded
		remaining -= traded
		value := domain.Value(uint64(traded) * uint64(buck.price))

		emit(maker.id, maker.participantID, traded, value)
		takerFilled += traded
		takerValue += value

		if maker.remaining == 0 {
			buck.popFront()
			delete(b.byID, maker.id)
		}
		if buck.len == 0 {
			b.advanceBestOpposite(cmd.Side)
		}
	}

	if remaining > 0 {
		o := &order{
			id:            cmd.ID,
			participantID: cmd.ParticipantID,
			side:          cmd.Side,
			limit:         cmd.Limit,
			remaining:     remaining,
		}
		b.sameSideBucket(cmd.Side, cmd.Limit).pushBack(o)
		b.byID[cmd.ID] = o
		b.tightenSameSideBest(cmd.Side, cmd.Limit)
	}

	if takerFilled > 0 {
		emit(cmd.ID, cmd.ParticipantID, takerFilled, takerValue)
	}
	return nil
}

// Cancel removes id from the book if it is live. Unknown ids are a
// no-op, making Cancel idempotent. It reports the cancelled order's
// owner and whether an order was actually removed, so callers can
// decide whether, and to whom, a Canceled event should be routed.
func (b *Book) Cancel(id domain.OrderID) (domain.ParticipantID, bool) {
	o, exists := b.byID[id]
	if !exists {
		return 0, false
	}
	b.sameSideBucket(o.side, o.limit).unlink(o)
	delete(b.byID, id)
	return o.participantID, true
}

// oppositeBucketFor returns the bucket currently standing as the best
// opposite-side price for a taker of the given side and limit, or nil if
// no opposite-side bucket remains in range. It does not itself advance
// the best price when that bucket turns out to be empty; the caller
// does that via advanceBestOpposite.
func (b *Book) oppositeBucketFor(side domain.Side, limit domain.Price) *bucket {
	switch side {
	case domain.Bid:
		if b.bestAsk >= b.pMax || b.bestAsk > limit {
			return nil
		}
		return &b.asks[b.bestAsk]
	default: // domain.Ask
		if b.bestBid == 0 || b.bestBid < limit {
			return nil
		}
		return &b.bids[b.bestBid]
	}
}

// advanceBestOpposite moves the opposite side's best price one tick
// toward the taker's side after its current best bucket has been
// emptied. The book never jumps to the next non-empty bucket directly;
// adjacency is sufficient because residual orders always fit inside the
// [bestBid+1, bestAsk-1] corridor after an insert, so the scan only ever
// walks through ticks it already knows are empty.
func (b *Book) advanceBestOpposite(side domain.Side) {
	switch side {
	case domain.Bid:
		if b.bestAsk < b.pMax {
			b.bestAsk++
		}
	default: // domain.Ask
		if b.bestBid > 0 {
			b.bestBid--
		}
	}
}

func (b *Book) sameSideBucket(side domain.Side, price domain.Price) *bucket {
	if side == domain.Ask {
		return &b.asks[price]
	}
	return &b.bids[price]
}

func (b *Book) tightenSameSideBest(side domain.Side, limit domain.Price) {
	switch side {
	case domain.Ask:
		if limit < b.bestAsk {
			b.bestAsk = limit
		}
	default: // domain.Bid
		if limit > b.bestBid {
			b.bestBid = limit
		}
	}
}
