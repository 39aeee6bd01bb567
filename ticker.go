package portfolio

// TickerKind classifies how a ticker prices and whether the engine may
// rebalance it: a single tagged enum switched on by the engine's
// Balanceable predicate.
type TickerKind int

const (
	FundRebalanceable TickerKind = iota
	FundNotRebalanceable
	SingleSecurity
	ETF
)

func (k TickerKind) String() string {
	switch k {
	case FundRebalanceable:
		return "fund-rebalanceable"
	case FundNotRebalanceable:
		return "fund-not-rebalanceable"
	case SingleSecurity:
		return "single-security"
	case ETF:
		return "ETF"
	default:
		return "unknown"
	}
}

// Balanceable reports whether the engine is permitted to adjust holdings of
// this kind.
func (k TickerKind) Balanceable() bool {
	return k == FundRebalanceable || k == ETF
}

// Ticker carries the static characteristics the engine needs to allocate
// currency to it: its kind, minimum investment, preferred rounding and the
// subcodes that classify it into exactly one weight-type leaf.
type Ticker struct {
	Symbol    string
	Kind      TickerKind
	MinInvest Money    // may be negative: a credit limit
	Rounding  Quantity // share-quantity step; zero permits fractional shares
	Subcodes  Subcodes
}

// NewTicker constructs and validates a Ticker.
func NewTicker(symbol string, kind TickerKind, minInvest Money, rounding Quantity, subcodes Subcodes) (Ticker, error) {
	if symbol == "" {
		return Ticker{}, &ConsistencyError{Reason: "ticker symbol must not be empty"}
	}
	if err := subcodes.Validate(); err != nil {
		return Ticker{}, err
	}
	if rounding.IsNegative() {
		return Ticker{}, &ConsistencyError{Reason: "rounding must not be negative for ticker " + symbol}
	}
	return Ticker{Symbol: symbol, Kind: kind, MinInvest: minInvest, Rounding: rounding, Subcodes: subcodes}, nil
}
