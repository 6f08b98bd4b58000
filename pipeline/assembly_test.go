package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"matching-core/config"
	"matching-core/domain"
	"matching-core/envelope"
	"matching-core/risk"
)

func testSettings() *config.Settings {
	return &config.Settings{
		Symbols:          []config.SymbolConfig{{Kind: "exchange_pair", Base: 1, Quote: 2}},
		RiskEngineShards: 2,
		QueueCapacity:    16,
	}
}

// An admitted trade that crosses resting liquidity flows end to end:
// pre-gate admission, matcher execution, post-settlement reconciliation,
// visible in both participants' balances.
func TestAssemblyEndToEndCross(t *testing.T) {
	settings := testSettings()
	a, err := New(settings, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a.AddParticipant(risk.NewParticipant(1, map[domain.AssetID]uint64{2: 1_000}))   // seller, holds quote
	a.AddParticipant(risk.NewParticipant(2, map[domain.AssetID]uint64{1: 1_000_000})) // buyer, holds base

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)

	if err := a.Submit(envelope.TradeCommand{ID: 1, ParticipantID: 1, Symbol: 0, Side: domain.Ask, Limit: 100, Volume: 10}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := a.Submit(envelope.TradeCommand{ID: 2, ParticipantID: 2, Symbol: 0, Side: domain.Bid, Limit: 100, Volume: 10}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		sellerBase := balanceOf(a, 1, 1)
		buyerQuote := balanceOf(a, 2, 2)
		if sellerBase == 1000 && buyerQuote == 10 {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("settlement did not converge: seller base=%d buyer quote=%d", sellerBase, buyerQuote)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func balanceOf(a *Assembly, participant domain.ParticipantID, asset domain.AssetID) uint64 {
	shard := a.router.ShardOf(participant)
	for _, bal := range a.engines[shard].Snapshot() {
		if bal.ParticipantID == participant && bal.Asset == asset {
			return bal.Balance
		}
	}
	return 0
}
