// Package matching runs one order book's matching loop: a single
// goroutine, pinned to its own OS thread, draining a command channel and
// routing the resulting fills and cancellations to the risk shard that
// owns each order's participant.
package matching

import (
	"context"
	"runtime"

	"github.com/rs/zerolog"

	"matching-core/domain"
	"matching-core/envelope"
	"matching-core/orderbook"
	"matching-core/router"
)

// Processor owns the order book for exactly one symbol. Every mutation
// to that book happens on Processor.Run's goroutine, so the book itself
// needs no locking. It is handed every risk shard's post-settlement
// channel up front and routes each event itself, mirroring a design
// where one order book stage holds the full set of downstream senders
// rather than a separate dispatcher stage.
type Processor struct {
	symbol domain.SymbolID
	book   *orderbook.Book
	in     <-chan envelope.OrderCommand
	post   []chan<- envelope.MatchingEvent // indexed by risk shard
	router router.Router
	log    zerolog.Logger
}

// NewProcessor builds a processor for symbol, reading commands from in
// and routing events to the risk shard responsible for each order's
// participant, as resolved by r. post must have r.ShardCount() entries.
func NewProcessor(symbol domain.SymbolID, in <-chan envelope.OrderCommand, post []chan<- envelope.MatchingEvent, r router.Router, log zerolog.Logger) *Processor {
	return &Processor{
		symbol: symbol,
		book:   orderbook.NewBook(symbol),
		in:     in,
		post:   post,
		router: r,
		log:    log.With().Uint32("symbol", uint32(symbol)).Logger(),
	}
}

// Book exposes the underlying order book. Read-only use from outside
// Run's goroutine (e.g. depth snapshots) is the caller's responsibility
// to serialize.
func (p *Processor) Book() *orderbook.Book { return p.book }

// Run drains in until ctx is cancelled or in is closed. It pins itself
// to an OS thread for the lifetime of the loop: single-threaded matching
// needs no locks, and staying on one thread keeps the book's working set
// in cache.
func (p *Processor) Run(ctx context.Context) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-p.in:
			if !ok {
				return
			}
			p.process(cmd)
		}
	}
}

func (p *Processor) process(cmd envelope.OrderCommand) {
	switch c := cmd.(type) {
	case envelope.TradeCommand:
		p.processTrade(c)
	case envelope.CancelCommand:
		p.processCancel(c)
	default:
		p.log.Warn().Type("type", cmd).Msg("matching: unrecognized command type")
	}
}

func (p *Processor) processTrade(c envelope.TradeCommand) {
	insert := orderbook.InsertCommand{
		ID:            c.ID,
		ParticipantID: c.ParticipantID,
		Side:          c.Side,
		Limit:         c.Limit,
		Volume:        c.Volume,
	}
	err := p.book.Insert(insert, func(id domain.OrderID, participantID domain.ParticipantID, volume domain.Quantity, value domain.Value) {
		p.send(participantID, envelope.Fill{OrderID: id, FilledVolume: volume, FilledValue: value})
	})
	if err != nil {
		p.log.Warn().Err(err).Uint64("order_id", uint64(c.ID)).Msg("matching: rejected trade command")
		return
	}
	if c.ImmediateOrCancel && p.book.Live(c.ID) {
		p.log.Warn().Uint64("order_id", uint64(c.ID)).Msg("matching: immediate-or-cancel order rested, flag ignored in this port")
	}
}

func (p *Processor) processCancel(c envelope.CancelCommand) {
	if owner, ok := p.book.Cancel(c.OrderID); ok {
		p.send(owner, envelope.Canceled{OrderID: c.OrderID})
	}
}

func (p *Processor) send(participantID domain.ParticipantID, ev envelope.MatchingEvent) {
	shard := p.router.ShardOf(participantID)
	p.post[shard] <- ev
}
