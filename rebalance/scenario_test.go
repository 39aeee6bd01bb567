package rebalance

import (
	"testing"

	portfolio "github.com/etnz/rebalance"
	"github.com/etnz/rebalance/date"
)

func mustTicker(t *testing.T, symbol string, kind portfolio.TickerKind, minInvest portfolio.Money, rounding portfolio.Quantity, sc portfolio.Subcodes) portfolio.Ticker {
	t.Helper()
	tk, err := portfolio.NewTicker(symbol, kind, minInvest, rounding, sc)
	if err != nil {
		t.Fatalf("NewTicker(%s): %v", symbol, err)
	}
	return tk
}

// S1 — trivial: one account, one leaf, one ticker absorbs the whole total.
func TestScenarioS1Trivial(t *testing.T) {
	mmf := mustTicker(t, "MMF", portfolio.FundRebalanceable, portfolio.M(0, "USD"), portfolio.Q(0),
		portfolio.Subcodes{Type: portfolio.SubcodeCash, Region: portfolio.SubcodeCashUncategorized})

	acctKey := portfolio.AccountKey{Institution: "Bank", Number: "A1"}
	account := portfolio.Account{
		Key:           acctKey,
		Order:         0,
		Level1Weights: portfolio.DefaultWeights.Level1,
		Holdings: []portfolio.Holding{
			portfolio.NewHolding(acctKey, "MMF", portfolio.Q(0), portfolio.M(0, "USD"), portfolio.M(10000, "USD")),
		},
	}
	p := portfolio.Portfolio{Key: portfolio.NewPortfolioKey(), Accounts: []portfolio.Account{account}}

	tickers := map[string]portfolio.Ticker{"MMF": mmf}
	cfg := portfolio.Config{NCnt: 1000, MXRt: 3}
	e := NewEngine(tickers, cfg, date.Today())

	results := e.RunPortfolio(p)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if !r.Residual.Abs().LessThanOrEqual(r.Residual.MinorUnit()) {
		t.Fatalf("expected zero residual, got %s", r.Residual.String())
	}
	got := r.Proposed["MMF"]
	want := portfolio.M(10000, "USD")
	if !got.Sub(want).Abs().LessThanOrEqual(want.MinorUnit()) {
		t.Fatalf("expected MMF=10000, got %s", got.String())
	}
}

// S2 — weight split: two tickers in disjoint leaves, account level-1 weights
// 50/50 stock/bond, nothing else. Expect a clean 5000/5000 split.
func TestScenarioS2WeightSplit(t *testing.T) {
	stockTk := mustTicker(t, "STK", portfolio.FundRebalanceable, portfolio.M(0, "USD"), portfolio.Q(0),
		portfolio.Subcodes{Type: portfolio.SubcodeStock, Region: portfolio.SubcodeDomestic, Size: portfolio.SubcodeLarge})
	bondTk := mustTicker(t, "BND", portfolio.FundRebalanceable, portfolio.M(0, "USD"), portfolio.Q(0),
		portfolio.Subcodes{Type: portfolio.SubcodeBond, Region: portfolio.SubcodeBondShort})

	acctKey := portfolio.AccountKey{Institution: "Bank", Number: "A1"}
	account := portfolio.Account{
		Key:           acctKey,
		Order:         0,
		Level1Weights: portfolio.Level1Weights{Stock: 50, Bond: 50},
		Holdings: []portfolio.Holding{
			portfolio.NewHolding(acctKey, "STK", portfolio.Q(0), portfolio.M(0, "USD"), portfolio.M(5000, "USD")),
			portfolio.NewHolding(acctKey, "BND", portfolio.Q(0), portfolio.M(0, "USD"), portfolio.M(5000, "USD")),
		},
	}
	p := portfolio.Portfolio{Key: portfolio.NewPortfolioKey(), Accounts: []portfolio.Account{account}}

	tickers := map[string]portfolio.Ticker{"STK": stockTk, "BND": bondTk}
	cfg := portfolio.Config{NCnt: 1000, MXRt: 3}
	e := NewEngine(tickers, cfg, date.Today())

	r := e.RunPortfolio(p)[0]
	for sym, want := range map[string]portfolio.Money{"STK": portfolio.M(5000, "USD"), "BND": portfolio.M(5000, "USD")} {
		got := r.Proposed[sym]
		if !got.Sub(want).Abs().LessThanOrEqual(want.MinorUnit()) {
			t.Errorf("%s: expected %s, got %s", sym, want.String(), got.String())
		}
	}
	if !r.Residual.Abs().LessThanOrEqual(r.Residual.MinorUnit()) {
		t.Fatalf("expected zero residual, got %s", r.Residual.String())
	}
}

// S3 — rounding: one ETF priced at 100 with a 5-share rounding step absorbs
// the whole account total exactly (10000 = 100 shares, already a multiple of 5).
//
// The fine-grained override sends the whole account to the Cash.Uncategorized
// leaf the ETF binds to: a ticker with a rounding step never absorbs residual,
// so value sent to the other, unfunded leaves would stay as residual.
func TestScenarioS3Rounding(t *testing.T) {
	etf := mustTicker(t, "ETF", portfolio.ETF, portfolio.M(0, "USD"), portfolio.Q(5),
		portfolio.Subcodes{Type: portfolio.SubcodeCash, Region: portfolio.SubcodeCashUncategorized})

	acctKey := portfolio.AccountKey{Institution: "Bank", Number: "A1"}
	account := portfolio.Account{
		Key:      acctKey,
		Order:    0,
		Override: &portfolio.DetailWeights{Level1: portfolio.Level1Weights{Cash: 100}, CashUncategorized: 100},
		Holdings: []portfolio.Holding{
			portfolio.NewHolding(acctKey, "ETF", portfolio.Q(100), portfolio.M(100, "USD"), portfolio.M(10000, "USD")),
		},
	}
	p := portfolio.Portfolio{Key: portfolio.NewPortfolioKey(), Accounts: []portfolio.Account{account}}

	tickers := map[string]portfolio.Ticker{"ETF": etf}
	cfg := portfolio.Config{NCnt: 1000, MXRt: 3}
	e := NewEngine(tickers, cfg, date.Today())

	r := e.RunPortfolio(p)[0]
	got := r.Proposed["ETF"]
	want := portfolio.M(10000, "USD")
	if !got.Equal(want) {
		t.Fatalf("expected ETF=10000 exactly, got %s", got.String())
	}
	if !r.Residual.IsZero() {
		t.Fatalf("expected exact zero residual, got %s", r.Residual.String())
	}
}

// S4 — rounding with residual: the ETF from S3 plus a money-market fund in
// the same account. 100 ETF shares (10000) plus 50 in the money fund exactly
// exhausts the account's 10050 total.
//
// The Stock and Cash branches' own sub-weights are zeroed via the
// fine-grained override so the ETF, bound directly to the Stock node,
// receives Stock's entire share without first cascading through the static
// tree's unfunded descendant leaves. The money fund binds to the zero-weight
// Cash.Uncategorized leaf and takes the Cash share as the root's residual
// absorber.
func TestScenarioS4RoundingWithResidual(t *testing.T) {
	etf := mustTicker(t, "ETF", portfolio.ETF, portfolio.M(0, "USD"), portfolio.Q(5),
		portfolio.Subcodes{Type: portfolio.SubcodeStock})
	mmf := mustTicker(t, "MMF", portfolio.FundRebalanceable, portfolio.M(0, "USD"), portfolio.Q(0),
		portfolio.Subcodes{Type: portfolio.SubcodeCash, Region: portfolio.SubcodeCashUncategorized})

	acctKey := portfolio.AccountKey{Institution: "Bank", Number: "A1"}
	account := portfolio.Account{
		Key:      acctKey,
		Order:    0,
		Override: &portfolio.DetailWeights{Level1: portfolio.Level1Weights{Stock: 10000, Cash: 50}},
		Holdings: []portfolio.Holding{
			portfolio.NewHolding(acctKey, "ETF", portfolio.Q(100), portfolio.M(100, "USD"), portfolio.M(10000, "USD")),
			portfolio.NewHolding(acctKey, "MMF", portfolio.Q(0), portfolio.M(0, "USD"), portfolio.M(50, "USD")),
		},
	}
	p := portfolio.Portfolio{Key: portfolio.NewPortfolioKey(), Accounts: []portfolio.Account{account}}

	tickers := map[string]portfolio.Ticker{"ETF": etf, "MMF": mmf}
	cfg := portfolio.Config{NCnt: 1000, MXRt: 3}
	e := NewEngine(tickers, cfg, date.Today())

	r := e.RunPortfolio(p)[0]
	if got, want := r.Proposed["ETF"], portfolio.M(10000, "USD"); !got.Equal(want) {
		t.Errorf("ETF: expected %s, got %s", want.String(), got.String())
	}
	if got, want := r.Proposed["MMF"], portfolio.M(50, "USD"); !got.Equal(want) {
		t.Errorf("MMF: expected %s, got %s", want.String(), got.String())
	}
	if !r.Residual.IsZero() {
		t.Fatalf("expected exact zero residual, got %s", r.Residual.String())
	}
}

// S5 — minimum investment: two tickers each requiring a 5000 minimum share
// 8000 between them; only one can be funded (4000 each would fall below the
// minimum), so a single-ticker subset wins. The lexicographic tie-break
// (§9(c)) picks the alphabetically first symbol when two subsets tie on
// residual and deviation.
func TestScenarioS5MinimumInvestment(t *testing.T) {
	a := mustTicker(t, "AAA", portfolio.FundRebalanceable, portfolio.M(5000, "USD"), portfolio.Q(0), portfolio.Subcodes{})
	b := mustTicker(t, "BBB", portfolio.FundRebalanceable, portfolio.M(5000, "USD"), portfolio.Q(0), portfolio.Subcodes{})

	bound := []Bound{
		{Ticker: a, Holding: portfolio.NewHolding(portfolio.AccountKey{}, "AAA", portfolio.Q(0), portfolio.M(0, "USD"), portfolio.M(0, "USD"))},
		{Ticker: b, Holding: portfolio.NewHolding(portfolio.AccountKey{}, "BBB", portfolio.Q(0), portfolio.M(0, "USD"), portfolio.M(0, "USD"))},
	}

	proposals, residual, _ := Allocate(bound, portfolio.M(8000, "USD"), 1000)

	if !residual.IsZero() {
		t.Fatalf("expected zero residual, got %s", residual.String())
	}
	funded, zero := 0, 0
	for _, sym := range []string{"AAA", "BBB"} {
		v := proposals[sym]
		switch {
		case v.Equal(portfolio.M(8000, "USD")):
			funded++
		case v.IsZero():
			zero++
		default:
			t.Fatalf("%s: unexpected proposed value %s", sym, v.String())
		}
	}
	if funded != 1 || zero != 1 {
		t.Fatalf("expected exactly one funded and one zeroed ticker, got funded=%d zero=%d", funded, zero)
	}
	if !proposals["AAA"].Equal(portfolio.M(8000, "USD")) {
		t.Fatalf("expected the alphabetically-first ticker AAA to win the tie-break, got AAA=%s BBB=%s", proposals["AAA"].String(), proposals["BBB"].String())
	}
}

// S6 — closure: a two-account portfolio targeting stock=60/bond=40. The
// first account is entirely stock and exactly meets the portfolio's stock
// target; the closure pass on the last account then zeroes the stock weight
// and forces 100% of the second account into bond.
func TestScenarioS6Closure(t *testing.T) {
	stk := mustTicker(t, "STK", portfolio.FundRebalanceable, portfolio.M(0, "USD"), portfolio.Q(0),
		portfolio.Subcodes{Type: portfolio.SubcodeStock})
	bnd := mustTicker(t, "BND", portfolio.FundRebalanceable, portfolio.M(0, "USD"), portfolio.Q(0),
		portfolio.Subcodes{Type: portfolio.SubcodeBond})

	acct0Key := portfolio.AccountKey{Institution: "Bank", Number: "A0"}
	acct1Key := portfolio.AccountKey{Institution: "Bank", Number: "A1"}

	acct0 := portfolio.Account{
		Key:           acct0Key,
		Order:         0,
		Override:      &portfolio.DetailWeights{Level1: portfolio.Level1Weights{Stock: 100}},
		Holdings:      []portfolio.Holding{portfolio.NewHolding(acct0Key, "STK", portfolio.Q(0), portfolio.M(0, "USD"), portfolio.M(12000, "USD"))},
	}
	acct1 := portfolio.Account{
		Key:      acct1Key,
		Order:    1,
		Override: &portfolio.DetailWeights{}, // zero every sub-level weight so Bond's own bound ticker absorbs directly
		Holdings: []portfolio.Holding{portfolio.NewHolding(acct1Key, "BND", portfolio.Q(0), portfolio.M(0, "USD"), portfolio.M(8000, "USD"))},
	}

	p := portfolio.Portfolio{
		Key:           portfolio.NewPortfolioKey(),
		Level1Weights: portfolio.Level1Weights{Stock: 60, Bond: 40},
		Accounts:      []portfolio.Account{acct0, acct1},
	}

	tickers := map[string]portfolio.Ticker{"STK": stk, "BND": bnd}
	cfg := portfolio.Config{NCnt: 1000, MXRt: 3}
	e := NewEngine(tickers, cfg, date.Today())

	results := e.RunPortfolio(p)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	r0, r1 := results[0], results[1]

	if got, want := r0.Proposed["STK"], portfolio.M(12000, "USD"); !got.Equal(want) {
		t.Errorf("account0 STK: expected %s, got %s", want.String(), got.String())
	}
	if got, want := r1.Proposed["BND"], portfolio.M(8000, "USD"); !got.Equal(want) {
		t.Errorf("account1 BND: expected %s, got %s", want.String(), got.String())
	}
	if !r1.Residual.IsZero() {
		t.Fatalf("expected exact zero residual on the closure account, got %s", r1.Residual.String())
	}
}
