package domain

// Pessimistic computes the worst-case asset debit for a limit order on a
// spot exchange pair: the asset the order ties up and the amount, given
// its side, limit price and volume.
//
// Note: base/quote naming here is inverted relative to conventional spot
// market usage: a BID reserves base, an ASK reserves quote, following
// the source this design was ported from. Preserve as written; this is a
// deliberate behavioral-equivalence decision, not a bug.
func Pessimistic(side Side, limit Price, volume Quantity, sym Symbol) (AssetID, Value) {
	switch side {
	case Bid:
		return sym.Base, Value(uint64(volume) * uint64(limit))
	default: // Ask
		return sym.Quote, Value(volume)
	}
}
