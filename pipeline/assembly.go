// Package pipeline wires the three pipeline stages, risk pre-gate,
// matcher, risk post-settlement, into one running exchange: one
// risk.Engine per shard, one matching.Processor per symbol, connected by
// bounded channels.
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"matching-core/config"
	"matching-core/domain"
	"matching-core/envelope"
	"matching-core/matching"
	"matching-core/orderbook"
	"matching-core/risk"
	"matching-core/riskproc"
	"matching-core/router"
)

// Assembly owns every stage of one running exchange and the channels
// between them.
type Assembly struct {
	settings *config.Settings
	router   router.Router
	symbols  []domain.Symbol

	engines []*risk.Engine

	pre  []chan envelope.OrderCommand // stage 1, one per risk shard
	mtch []chan envelope.OrderCommand // stage 2, one per symbol
	post []chan envelope.MatchingEvent // stage 3, one per risk shard

	riskProcs  []*riskproc.Processor
	matchProcs []*matching.Processor

	log zerolog.Logger
}

// New builds an Assembly from settings, but does not start it. Call
// Run to start every stage's goroutine.
func New(settings *config.Settings, log zerolog.Logger) (*Assembly, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	symbols, err := settings.ToDomain()
	if err != nil {
		return nil, err
	}

	r := router.New(settings.RiskEngineShards)
	a := &Assembly{
		settings: settings,
		router:   r,
		symbols:  symbols,
		log:      log,
	}

	a.pre = make([]chan envelope.OrderCommand, settings.RiskEngineShards)
	a.post = make([]chan envelope.MatchingEvent, settings.RiskEngineShards)
	postSendable := make([]chan<- envelope.MatchingEvent, settings.RiskEngineShards)
	a.engines = make([]*risk.Engine, settings.RiskEngineShards)
	for i := 0; i < settings.RiskEngineShards; i++ {
		a.pre[i] = make(chan envelope.OrderCommand, settings.QueueCapacity)
		a.post[i] = make(chan envelope.MatchingEvent, settings.QueueCapacity)
		postSendable[i] = a.post[i]
		a.engines[i] = risk.NewEngine(symbols, log)
	}

	a.mtch = make([]chan envelope.OrderCommand, len(symbols))
	matchSendable := make([]chan<- envelope.OrderCommand, len(symbols))
	a.matchProcs = make([]*matching.Processor, len(symbols))
	for i := range symbols {
		a.mtch[i] = make(chan envelope.OrderCommand, settings.QueueCapacity)
		matchSendable[i] = a.mtch[i]
		a.matchProcs[i] = matching.NewProcessor(domain.SymbolID(i), a.mtch[i], postSendable, r, log)
	}

	a.riskProcs = make([]*riskproc.Processor, settings.RiskEngineShards)
	for i := 0; i < settings.RiskEngineShards; i++ {
		a.riskProcs[i] = riskproc.NewProcessor(i, a.engines[i], a.pre[i], a.post[i], matchSendable, log)
	}

	return a, nil
}

// AddParticipant registers p with the risk shard that owns it.
func (a *Assembly) AddParticipant(p *risk.Participant) {
	a.engines[a.router.ShardOf(p.ID)].AddParticipant(p)
}

// Submit routes cmd to the risk pre-gate shard owning its participant.
// It blocks if that shard's queue is full, applying backpressure to the
// caller rather than dropping work.
func (a *Assembly) Submit(cmd envelope.OrderCommand) error {
	pid, err := participantOf(cmd)
	if err != nil {
		return err
	}
	a.pre[a.router.ShardOf(pid)] <- cmd
	return nil
}

// Book returns the live order book for symbol, for depth queries. Callers
// must not mutate it; only the owning Processor.Run goroutine may.
func (a *Assembly) Book(symbol domain.SymbolID) (*orderbook.Book, error) {
	if int(symbol) >= len(a.matchProcs) {
		return nil, fmt.Errorf("pipeline: unknown symbol %d", symbol)
	}
	return a.matchProcs[symbol].Book(), nil
}

// Stats aggregates each risk shard's lifetime counters across the whole
// assembly.
func (a *Assembly) Stats() riskproc.Stats {
	var total riskproc.Stats
	for _, rp := range a.riskProcs {
		s := rp.Stats()
		total.Admitted += s.Admitted
		total.Rejected += s.Rejected
		total.Events += s.Events
	}
	return total
}

// Run starts every stage's goroutine and blocks until ctx is cancelled,
// then waits for all stages to exit.
func (a *Assembly) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i, rp := range a.riskProcs {
		wg.Add(1)
		go func(i int, rp *riskproc.Processor) {
			defer wg.Done()
			a.log.Info().Int("risk_shard", i).Msg("pipeline: risk shard starting")
			rp.Run(ctx)
		}(i, rp)
	}
	for i, mp := range a.matchProcs {
		wg.Add(1)
		go func(i int, mp *matching.Processor) {
			defer wg.Done()
			a.log.Info().Int("symbol", i).Msg("pipeline: matcher starting")
			mp.Run(ctx)
		}(i, mp)
	}
	wg.Wait()
}

func participantOf(cmd envelope.OrderCommand) (domain.ParticipantID, error) {
	switch c := cmd.(type) {
	case envelope.TradeCommand:
		return c.ParticipantID, nil
	case envelope.CancelCommand:
		return c.ParticipantID, nil
	default:
		return 0, fmt.Errorf("pipeline: unrecognized command type %T", cmd)
	}
}
