// Package riskproc drives one risk.Engine shard: it gates incoming
// commands before they reach a matcher, and reconciles the events a
// matcher later reports back.
package riskproc

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"

	"matching-core/envelope"
	"matching-core/risk"
)

// Stats is a point-in-time read of a Processor's lifetime counters.
type Stats struct {
	Admitted int64
	Rejected int64
	Events   int64
}

// Processor owns exactly one risk.Engine shard. Pre-gate commands and
// post-settlement events are both only ever touched from Run's
// goroutine, so the engine needs no locking of its own.
type Processor struct {
	shard   int
	engine  *risk.Engine
	pre     <-chan envelope.OrderCommand
	post    <-chan envelope.MatchingEvent
	toMatch []chan<- envelope.OrderCommand // indexed by domain.SymbolID
	log     zerolog.Logger

	admitted atomic.Int64
	rejected atomic.Int64
	events   atomic.Int64
}

// NewProcessor builds a risk processor for one shard. toMatch routes an
// admitted command to its symbol's matcher input channel, indexed by
// symbol id.
func NewProcessor(shard int, engine *risk.Engine, pre <-chan envelope.OrderCommand, post <-chan envelope.MatchingEvent, toMatch []chan<- envelope.OrderCommand, log zerolog.Logger) *Processor {
	return &Processor{
		shard:   shard,
		engine:  engine,
		pre:     pre,
		post:    post,
		toMatch: toMatch,
		log:     log.With().Int("risk_shard", shard).Logger(),
	}
}

// Run selects between the pre-gate and post-settlement channels until
// ctx is cancelled or both channels are closed. Go's select has no
// priority between ready cases, so pre-gate admission and
// post-settlement reconciliation race fairly.
func (p *Processor) Run(ctx context.Context) {
	preOpen, postOpen := true, true
	for preOpen || postOpen {
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-p.pre:
			if !ok {
				preOpen = false
				p.pre = nil
				continue
			}
			p.runPre(cmd)
		case ev, ok := <-p.post:
			if !ok {
				postOpen = false
				p.post = nil
				continue
			}
			p.runPost(ev)
		}
	}
}

func (p *Processor) runPre(cmd envelope.OrderCommand) {
	if err := p.engine.ProcessCommand(cmd); err != nil {
		p.rejected.Add(1)
		p.log.Warn().Err(err).Msg("riskproc: rejected command at pre-gate")
		return
	}
	p.admitted.Add(1)
	symbol := symbolOf(cmd)
	if int(symbol) >= len(p.toMatch) || p.toMatch[symbol] == nil {
		p.log.Error().Uint32("symbol", uint32(symbol)).Msg("riskproc: no matcher route for symbol")
		return
	}
	p.toMatch[symbol] <- cmd
}

func (p *Processor) runPost(ev envelope.MatchingEvent) {
	p.engine.ProcessEvent(ev)
	p.events.Add(1)
}

// Stats returns a snapshot of this shard's lifetime counters.
func (p *Processor) Stats() Stats {
	return Stats{
		Admitted: p.admitted.Load(),
		Rejected: p.rejected.Load(),
		Events:   p.events.Load(),
	}
}

func symbolOf(cmd envelope.OrderCommand) uint32 {
	switch c := cmd.(type) {
	case envelope.TradeCommand:
		return uint32(c.Symbol)
	case envelope.CancelCommand:
		return uint32(c.Symbol)
	default:
		return ^uint32(0)
	}
}
