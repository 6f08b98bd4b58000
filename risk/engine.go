package risk

import (
	"fmt"
	"slices"

	rbt "github.com/emirpasic/gods/v2/trees/redblacktree"
	"github.com/rs/zerolog"

	"matching-core/domain"
	"matching-core/envelope"
)

func participantComparator(a, b domain.ParticipantID) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Engine is one shard of the risk state machine: pessimistic reservation
// on admission (ProcessCommand), and actual deduction/credit/restitution
// on settlement (ProcessEvent). A single Engine is only ever driven by
// one goroutine (riskproc.Processor); it does no locking of its own.
type Engine struct {
	symbols      []domain.Symbol
	participants *rbt.Tree[domain.ParticipantID, *Participant]
	orders       map[domain.OrderID]*orderRecord
	log          zerolog.Logger
}

// NewEngine constructs a risk engine shard resolving symbols by id
// against the given table (index == domain.SymbolID).
func NewEngine(symbols []domain.Symbol, log zerolog.Logger) *Engine {
	return &Engine{
		symbols:      symbols,
		participants: rbt.NewWith[domain.ParticipantID, *Participant](participantComparator),
		orders:       make(map[domain.OrderID]*orderRecord),
		log:          log,
	}
}

// AddParticipant registers p with the engine. Registering the same id
// twice replaces the prior record.
func (e *Engine) AddParticipant(p *Participant) {
	e.participants.Put(p.ID, p)
}

func (e *Engine) participant(id domain.ParticipantID) (*Participant, bool) {
	return e.participants.Get(id)
}

// ProcessCommand runs the pre-trade admission rule for cmd.
// Cancel commands always pass through as accepted (nil error);
// restitution happens only on the matching Canceled event.
func (e *Engine) ProcessCommand(cmd envelope.OrderCommand) error {
	switch c := cmd.(type) {
	case envelope.TradeCommand:
		return e.admitTrade(c)
	case envelope.CancelCommand:
		return nil
	default:
		return fmt.Errorf("risk: unrecognized command type %T", cmd)
	}
}

func (e *Engine) admitTrade(c envelope.TradeCommand) error {
	if int(c.Symbol) >= len(e.symbols) {
		return ErrSymbolNotFound
	}
	sym := e.symbols[c.Symbol]
	if sym.Kind != domain.ExchangePair {
		return ErrUnsupportedSymbolKind
	}

	p, ok := e.participant(c.ParticipantID)
	if !ok {
		return ErrUserNotFound
	}

	pessAsset, pessValue := domain.Pessimistic(c.Side, c.Limit, c.Volume, sym)
	balance, ok := p.Assets[pessAsset]
	if !ok || balance < uint64(pessValue) {
		return ErrInsufficientFunds
	}

	p.Assets[pessAsset] = balance - uint64(pessValue)
	e.orders[c.ID] = &orderRecord{
		participantID: c.ParticipantID,
		symbolID:      c.Symbol,
		order: riskOrder{
			side:      c.Side,
			limit:     c.Limit,
			remaining: c.Volume,
		},
	}
	return nil
}

// ProcessEvent runs post-trade reconciliation for a matcher event.
// UnknownOrderInPost is a fatal invariant violation: the matcher fired
// on something risk never admitted, and panics rather than silently
// corrupting balances.
func (e *Engine) ProcessEvent(ev envelope.MatchingEvent) {
	switch ev := ev.(type) {
	case envelope.Fill:
		e.processFill(ev)
	case envelope.Canceled:
		e.processCanceled(ev)
	}
}

func (e *Engine) processFill(ev envelope.Fill) {
	rec, ok := e.orders[ev.OrderID]
	if !ok {
		panic(fmt.Sprintf("risk: UnknownOrderInPost: order %d filled but never admitted", ev.OrderID))
	}
	participant, ok := e.participant(rec.participantID)
	if !ok {
		panic(fmt.Sprintf("risk: UnknownOrderInPost: participant %d for filled order %d not known", rec.participantID, ev.OrderID))
	}
	sym := e.symbols[rec.symbolID]

	pessAsset, pessValue := domain.Pessimistic(rec.order.side, rec.order.limit, ev.FilledVolume, sym)

	var risingAsset domain.AssetID
	var risingValue uint64
	var fallingValue uint64
	switch rec.order.side {
	case domain.Bid:
		risingAsset, risingValue = sym.Quote, uint64(ev.FilledVolume)
		fallingValue = uint64(ev.FilledValue)
	default: // domain.Ask
		risingAsset, risingValue = sym.Base, uint64(ev.FilledValue)
		fallingValue = uint64(ev.FilledVolume)
	}

	participant.Assets[risingAsset] += risingValue
	// Refund the overreservation: the historic pessimistic cost of this
	// fill's volume, less what was actually paid for it.
	participant.Assets[pessAsset] += uint64(pessValue) - fallingValue

	rec.order.remaining -= ev.FilledVolume
	if rec.order.remaining == 0 {
		delete(e.orders, ev.OrderID)
	}

	e.log.Debug().
		Uint64("order_id", uint64(ev.OrderID)).
		Uint64("participant_id", uint64(rec.participantID)).
		Uint64("filled_volume", uint64(ev.FilledVolume)).
		Uint64("filled_value", uint64(ev.FilledValue)).
		Msg("risk: reconciled fill")
}

func (e *Engine) processCanceled(ev envelope.Canceled) {
	rec, ok := e.orders[ev.OrderID]
	if !ok {
		panic(fmt.Sprintf("risk: UnknownOrderInPost: order %d canceled but never admitted", ev.OrderID))
	}
	participant, ok := e.participant(rec.participantID)
	if !ok {
		panic(fmt.Sprintf("risk: UnknownOrderInPost: participant %d for canceled order %d not known", rec.participantID, ev.OrderID))
	}
	sym := e.symbols[rec.symbolID]

	pessAsset, pessValue := domain.Pessimistic(rec.order.side, rec.order.limit, rec.order.remaining, sym)
	participant.Assets[pessAsset] += uint64(pessValue)
	delete(e.orders, ev.OrderID)

	e.log.Debug().
		Uint64("order_id", uint64(ev.OrderID)).
		Uint64("participant_id", uint64(rec.participantID)).
		Msg("risk: restituted cancel")
}

// Snapshot returns a deterministic walk of every participant's balances,
// ordered by participant id, then by asset id. It never mutates engine state; it exists
// for conservation property tests and diagnostics.
func (e *Engine) Snapshot() []ParticipantBalance {
	out := make([]ParticipantBalance, 0, e.participants.Size())
	it := e.participants.Iterator()
	for it.Next() {
		p := it.Value()
		assets := make([]domain.AssetID, 0, len(p.Assets))
		for asset := range p.Assets {
			assets = append(assets, asset)
		}
		slices.Sort(assets)
		for _, asset := range assets {
			out = append(out, ParticipantBalance{
				ParticipantID: p.ID,
				Asset:         asset,
				Balance:       p.Assets[asset],
			})
		}
	}
	return out
}

// OutstandingReservation returns the sum of pessimistic reservations
// still held against live orders, the complement Snapshot needs to
// check that balances plus reservations stay constant.
func (e *Engine) OutstandingReservation() []ParticipantBalance {
	totals := make(map[domain.ParticipantID]map[domain.AssetID]uint64)
	for _, rec := range e.orders {
		sym := e.symbols[rec.symbolID]
		asset, value := domain.Pessimistic(rec.order.side, rec.order.limit, rec.order.remaining, sym)
		byAsset, ok := totals[rec.participantID]
		if !ok {
			byAsset = make(map[domain.AssetID]uint64)
			totals[rec.participantID] = byAsset
		}
		byAsset[asset] += uint64(value)
	}
	out := make([]ParticipantBalance, 0, len(totals))
	for pid, byAsset := range totals {
		for asset, bal := range byAsset {
			out = append(out, ParticipantBalance{ParticipantID: pid, Asset: asset, Balance: bal})
		}
	}
	return out
}

// ParticipantBalance is one (participant, asset) balance entry returned
// by Snapshot/OutstandingReservation.
type ParticipantBalance struct {
	ParticipantID domain.ParticipantID
	Asset         domain.AssetID
	Balance       uint64
}
