package portfolio

// Level1Weights carries the four top-level category targets every portfolio
// and account declares: Stock, Bond, Cash and Real-Estate. Weights are
// ratios, not required to sum to 100.
type Level1Weights struct {
	Stock      Percent
	Bond       Percent
	Cash       Percent
	RealEstate Percent
}

// Sum returns the total of the four level-1 weights, used as the denominator
// when normalising ratios.
func (w Level1Weights) Sum() Percent { return w.Stock + w.Bond + w.Cash + w.RealEstate }

// IsZero reports whether all four level-1 weights are zero (open question
// (b)).
func (w Level1Weights) IsZero() bool {
	return w.Stock.IsZero() && w.Bond.IsZero() && w.Cash.IsZero() && w.RealEstate.IsZero()
}

// DetailWeights is the fine-grained weight override covering every level of
// the weight-type tree. It mirrors the shape of the static tree: when
// present on an account it replaces all weights, not just level 1. Unset
// (zero-value) Percent fields are valid weights of 0, not "absent" — an
// account that wants a fine-grained override must specify every node it
// cares about; nodes it omits default to zero weight, since the overlay
// that applies a detail override replaces all weights at every level with
// those specified.
type DetailWeights struct {
	Level1 Level1Weights

	StockDomestic Percent
	StockForeign  Percent

	// Large/Not-Large apply to both Domestic and Foreign; the tree does not
	// distinguish size by region.
	StockLarge    Percent
	StockNotLarge Percent

	StockMedium Percent
	StockSmall  Percent

	StockGrowthAndValue Percent
	StockGrowthOrValue  Percent

	StockGrowth Percent
	StockValue  Percent

	BondCorporate          Percent
	BondForeign            Percent
	BondGovernment         Percent
	BondHighYield          Percent
	BondInflationProtected Percent
	BondMortgage           Percent
	BondShort              Percent
	BondUncategorized      Percent

	CashGovernment    Percent
	CashUncategorized Percent
}

// DefaultWeights is the built-in default weight table. It is the first
// overlay applied to every account before any account- or portfolio-specific
// weights.
var DefaultWeights = DetailWeights{
	Level1: Level1Weights{Stock: 50, Bond: 36, Cash: 10, RealEstate: 4},

	StockDomestic: 60,
	StockForeign:  40,

	StockLarge:    60,
	StockNotLarge: 40,

	StockMedium: 50,
	StockSmall:  50,

	StockGrowthAndValue: 50,
	StockGrowthOrValue:  50,

	StockGrowth: 40,
	StockValue:  60,

	BondCorporate:          12.5,
	BondForeign:            7,
	BondGovernment:         0,
	BondHighYield:          5,
	BondInflationProtected: 5,
	BondMortgage:           8,
	BondShort:              50,
	BondUncategorized:      12.5,

	CashGovernment:    50,
	CashUncategorized: 50,
}
