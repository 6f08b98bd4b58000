package domain

import "testing"

func TestPessimisticBidReservesBaseAtLimitValue(t *testing.T) {
	sym := Symbol{Kind: ExchangePair, Base: 1, Quote: 2}

	asset, value := Pessimistic(Bid, 100, 10, sym)
	if asset != sym.Base {
		t.Errorf("expected asset %d, got %d", sym.Base, asset)
	}
	if value != 1000 {
		t.Errorf("expected value 1000, got %d", value)
	}
}

func TestPessimisticAskReservesQuoteAtFaceVolume(t *testing.T) {
	sym := Symbol{Kind: ExchangePair, Base: 1, Quote: 2}

	asset, value := Pessimistic(Ask, 100, 10, sym)
	if asset != sym.Quote {
		t.Errorf("expected asset %d, got %d", sym.Quote, asset)
	}
	if value != 10 {
		t.Errorf("expected value 10, got %d", value)
	}
}
