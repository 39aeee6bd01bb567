package portfolio

// Holding is an (account, ticker) instance carrying the current position the
// engine must rebalance from. Value may be derived from Shares*Price or
// vice-versa; the engine never requires both to be independently supplied,
// but stores whichever the loader populated and recomputes the other lazily
// via Reconcile.
type Holding struct {
	Account AccountKey
	Ticker  string // Ticker.Symbol

	Shares Quantity
	Price  Money
	Value  Money // may be negative: a debt holding

	// Weight is the holding-weight controlling relative share among sibling
	// tickers in the same weight-type leaf. The zero value is treated as 1 by
	// EffectiveWeight, never as "withheld" — an explicit zero must be set to
	// withhold a ticker from allocation.
	Weight    Percent
	weightSet bool
}

// NewHolding constructs a Holding with the default holding-weight of 1.
func NewHolding(account AccountKey, ticker string, shares Quantity, price, value Money) Holding {
	return Holding{Account: account, Ticker: ticker, Shares: shares, Price: price, Value: value}
}

// SetWeight overrides the holding-weight, including explicitly to 0 to
// withhold the ticker from allocation.
func (h *Holding) SetWeight(w Percent) {
	h.Weight = w
	h.weightSet = true
}

// EffectiveWeight returns the holding-weight to use during allocation: the
// explicitly set Weight, or 1 if none was ever set.
func (h Holding) EffectiveWeight() Percent {
	if !h.weightSet {
		return 1
	}
	return h.Weight
}

// Withheld reports whether this holding must receive zero proposed value
// regardless of category allocation.
func (h Holding) Withheld() bool {
	return h.weightSet && h.Weight.IsZero()
}

// Reconcile fills in Value from Shares*Price when Value is zero, or Shares
// from Value/Price when Shares is zero, provided a price is known, so
// loaders that populate only two of the three still produce a usable
// holding.
func (h Holding) Reconcile() Holding {
	if h.Value.IsZero() && !h.Price.IsZero() && !h.Shares.IsZero() {
		h.Value = h.Price.Mul(h.Shares)
	}
	if h.Shares.IsZero() && !h.Price.IsZero() && !h.Value.IsZero() {
		h.Shares = h.Value.DivPrice(h.Price)
	}
	return h
}
