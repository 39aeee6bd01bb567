package rebalance

import (
	"math"
	"testing"

	portfolio "github.com/etnz/rebalance"
	"github.com/etnz/rebalance/date"
)

// Property 3: with all minimums and roundings at zero, the proposed
// allocation equals the ideal weight-proportional split, to within floating
// tolerance.
func TestPropertyIdealAllocationWhenUnconstrained(t *testing.T) {
	a := mustTicker(t, "AAA", portfolio.FundRebalanceable, portfolio.M(0, "USD"), portfolio.Q(0), portfolio.Subcodes{})
	b := mustTicker(t, "BBB", portfolio.FundRebalanceable, portfolio.M(0, "USD"), portfolio.Q(0), portfolio.Subcodes{})
	c := mustTicker(t, "CCC", portfolio.FundRebalanceable, portfolio.M(0, "USD"), portfolio.Q(0), portfolio.Subcodes{})

	hA := portfolio.NewHolding(portfolio.AccountKey{}, "AAA", portfolio.Q(0), portfolio.M(0, "USD"), portfolio.M(0, "USD"))
	hB := portfolio.NewHolding(portfolio.AccountKey{}, "BBB", portfolio.Q(0), portfolio.M(0, "USD"), portfolio.M(0, "USD"))
	hC := portfolio.NewHolding(portfolio.AccountKey{}, "CCC", portfolio.Q(0), portfolio.M(0, "USD"), portfolio.M(0, "USD"))
	hA.SetWeight(1)
	hB.SetWeight(2)
	hC.SetWeight(3)

	bound := []Bound{{Ticker: a, Holding: hA}, {Ticker: b, Holding: hB}, {Ticker: c, Holding: hC}}

	amount := portfolio.M(12000, "USD")
	proposals, residual, diags := Allocate(bound, amount, 5000)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if !residual.IsZero() {
		t.Fatalf("expected zero residual, got %s", residual.String())
	}

	want := map[string]float64{"AAA": 2000, "BBB": 4000, "CCC": 6000}
	for sym, wantV := range want {
		got := proposals[sym].AsFloat()
		if math.Abs(got-wantV) > 0.01 {
			t.Errorf("%s: expected %.2f, got %.2f", sym, wantV, got)
		}
	}
}

// Property 4: reordering tickers inside a leaf with the same data produces
// identical proposed values (deterministic tie-breaks).
func TestPropertyOrderIndependence(t *testing.T) {
	a := mustTicker(t, "ZZZ", portfolio.FundRebalanceable, portfolio.M(1000, "USD"), portfolio.Q(0), portfolio.Subcodes{})
	b := mustTicker(t, "AAA", portfolio.FundRebalanceable, portfolio.M(1000, "USD"), portfolio.Q(0), portfolio.Subcodes{})

	hA := portfolio.NewHolding(portfolio.AccountKey{}, "ZZZ", portfolio.Q(0), portfolio.M(0, "USD"), portfolio.M(0, "USD"))
	hB := portfolio.NewHolding(portfolio.AccountKey{}, "AAA", portfolio.Q(0), portfolio.M(0, "USD"), portfolio.M(0, "USD"))

	forward := []Bound{{Ticker: a, Holding: hA}, {Ticker: b, Holding: hB}}
	backward := []Bound{{Ticker: b, Holding: hB}, {Ticker: a, Holding: hA}}

	amount := portfolio.M(1500, "USD")
	p1, r1, _ := Allocate(forward, amount, 5000)
	p2, r2, _ := Allocate(backward, amount, 5000)

	if !r1.Equal(r2) {
		t.Fatalf("residuals differ across orderings: %s vs %s", r1.String(), r2.String())
	}
	for _, sym := range []string{"ZZZ", "AAA"} {
		if !p1[sym].Equal(p2[sym]) {
			t.Errorf("%s: proposed value differs across orderings: %s vs %s", sym, p1[sym].String(), p2[sym].String())
		}
	}
}

// Property 7: holding-weight 0 withholds a ticker, so its proposed value is
// always 0 regardless of the amount available.
func TestPropertyZeroWeightWithholds(t *testing.T) {
	a := mustTicker(t, "WTH", portfolio.FundRebalanceable, portfolio.M(0, "USD"), portfolio.Q(0), portfolio.Subcodes{})
	b := mustTicker(t, "ACT", portfolio.FundRebalanceable, portfolio.M(0, "USD"), portfolio.Q(0), portfolio.Subcodes{})

	hA := portfolio.NewHolding(portfolio.AccountKey{}, "WTH", portfolio.Q(0), portfolio.M(0, "USD"), portfolio.M(0, "USD"))
	hA.SetWeight(0)
	hB := portfolio.NewHolding(portfolio.AccountKey{}, "ACT", portfolio.Q(0), portfolio.M(0, "USD"), portfolio.M(0, "USD"))

	bound := []Bound{{Ticker: a, Holding: hA}, {Ticker: b, Holding: hB}}
	proposals, residual, _ := Allocate(bound, portfolio.M(5000, "USD"), 5000)

	if !proposals["WTH"].IsZero() {
		t.Fatalf("expected withheld ticker to propose 0, got %s", proposals["WTH"].String())
	}
	if !proposals["ACT"].Equal(portfolio.M(5000, "USD")) {
		t.Fatalf("expected the sole active ticker to absorb the full amount, got %s", proposals["ACT"].String())
	}
	if !residual.IsZero() {
		t.Fatalf("expected zero residual, got %s", residual.String())
	}
}

// Property 1: for a multi-leaf account, proposed values plus residual sum to
// the account's rebalanceable total, exact within one minor currency unit.
func TestPropertySumInvariant(t *testing.T) {
	stk := mustTicker(t, "STK", portfolio.FundRebalanceable, portfolio.M(0, "USD"), portfolio.Q(0),
		portfolio.Subcodes{Type: portfolio.SubcodeStock, Region: portfolio.SubcodeDomestic, Size: portfolio.SubcodeLarge})
	bnd := mustTicker(t, "BND", portfolio.FundRebalanceable, portfolio.M(0, "USD"), portfolio.Q(0),
		portfolio.Subcodes{Type: portfolio.SubcodeBond, Region: portfolio.SubcodeBondShort})
	mmf := mustTicker(t, "MMF", portfolio.FundRebalanceable, portfolio.M(0, "USD"), portfolio.Q(0),
		portfolio.Subcodes{Type: portfolio.SubcodeCash, Region: portfolio.SubcodeCashUncategorized})

	acctKey := portfolio.AccountKey{Institution: "Bank", Number: "A1"}
	total := portfolio.M(123456, "USD")
	account := portfolio.Account{
		Key:           acctKey,
		Order:         0,
		Level1Weights: portfolio.Level1Weights{Stock: 50, Bond: 30, Cash: 20},
		Holdings: []portfolio.Holding{
			portfolio.NewHolding(acctKey, "STK", portfolio.Q(0), portfolio.M(0, "USD"), portfolio.M(61728, "USD")),
			portfolio.NewHolding(acctKey, "BND", portfolio.Q(0), portfolio.M(0, "USD"), portfolio.M(37037, "USD")),
			portfolio.NewHolding(acctKey, "MMF", portfolio.Q(0), portfolio.M(0, "USD"), portfolio.M(24691, "USD")),
		},
	}
	p := portfolio.Portfolio{Key: portfolio.NewPortfolioKey(), Accounts: []portfolio.Account{account}}

	tickers := map[string]portfolio.Ticker{"STK": stk, "BND": bnd, "MMF": mmf}
	cfg := portfolio.Config{NCnt: 1000, MXRt: 3}
	e := NewEngine(tickers, cfg, date.Today())

	r := e.RunPortfolio(p)[0]
	sum := portfolio.M(0, "USD")
	for _, v := range r.Proposed {
		sum = sum.Add(v)
	}
	sum = sum.Add(r.Residual)
	if !sum.Sub(total).Abs().LessThanOrEqual(total.MinorUnit()) {
		t.Fatalf("proposed+residual = %s, want %s", sum.String(), total.String())
	}
}

// Property 6: the closure pass applied to a portfolio with only one account
// is a no-op on the level-1 weights: it reproduces the portfolio's
// fractions exactly, since nothing has been proposed yet.
func TestPropertyClosureNoOpSingleAccount(t *testing.T) {
	weights := portfolio.Level1Weights{Stock: 60, Bond: 25, Cash: 10, RealEstate: 5}
	balanceable := portfolio.M(200000, "USD")

	override := Closure(balanceable, weights, CategoryTotals{})

	ratios := map[string]func(portfolio.Level1Weights) portfolio.Percent{
		"stock":       func(w portfolio.Level1Weights) portfolio.Percent { return w.Stock },
		"bond":        func(w portfolio.Level1Weights) portfolio.Percent { return w.Bond },
		"cash":        func(w portfolio.Level1Weights) portfolio.Percent { return w.Cash },
		"real-estate": func(w portfolio.Level1Weights) portfolio.Percent { return w.RealEstate },
	}
	for name, field := range ratios {
		wantRatio := float64(field(weights)) / float64(weights.Sum())
		gotRatio := float64(field(override.Level1Weights)) / float64(override.Level1Weights.Sum())
		if math.Abs(wantRatio-gotRatio) > 1e-9 {
			t.Errorf("%s: ratio %.6f, want %.6f", name, gotRatio, wantRatio)
		}
	}
	if len(override.Diagnostics) != 0 {
		t.Fatalf("expected no diagnostics on a no-op closure, got %v", override.Diagnostics)
	}
}
