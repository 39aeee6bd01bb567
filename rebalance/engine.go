package rebalance

import (
	portfolio "github.com/etnz/rebalance"
	"github.com/etnz/rebalance/date"
)

// AccountResult is the engine's per-account output consumed by the
// report/proposed/difference/action writers.
type AccountResult struct {
	Account     portfolio.AccountKey
	Status      portfolio.Status
	Proposed    Proposals
	Residual    portfolio.Money
	Diagnostics []portfolio.Diagnostic
}

// Engine rebalances every account of a portfolio in declared order,
// single-threaded and purely computational. Different portfolios are
// independent and may be run from separate Engine values in parallel.
type Engine struct {
	Tickers map[string]portfolio.Ticker
	Config  portfolio.Config
	Now     date.Date
}

// NewEngine constructs an Engine over a static ticker catalog, read once and
// never mutated for the lifetime of the run. now is the evaluation date
// driving the synthesizers' annuity and Social-Security month counts.
func NewEngine(tickers map[string]portfolio.Ticker, cfg portfolio.Config, now date.Date) *Engine {
	return &Engine{Tickers: tickers, Config: cfg, Now: now}
}

// RunPortfolio rebalances every account of p in its declared order,
// accumulating each category's running total so the last account can run the
// closure pass. Accounts within one portfolio are processed sequentially;
// the closure pass depends on every earlier result being final.
func (e *Engine) RunPortfolio(p portfolio.Portfolio) []AccountResult {
	accounts := p.OrderedAccounts()
	results := make([]AccountResult, 0, len(accounts))

	amounts := make([]portfolio.Money, len(accounts))
	amountDiags := make([]*portfolio.Diagnostic, len(accounts))
	currency := ""
	for i, a := range accounts {
		amounts[i], amountDiags[i] = e.balanceableAmount(p, a)
		if currency == "" {
			currency = amounts[i].Currency()
		}
	}
	var portfolioBalanceable portfolio.Money = portfolio.M(0, currency)
	for _, amt := range amounts {
		portfolioBalanceable = portfolioBalanceable.Add(amt)
	}

	var totals CategoryTotals
	for i, a := range accounts {
		isLast := i == len(accounts)-1

		var closure *ClosureOverride
		if isLast {
			c := Closure(portfolioBalanceable, p.Level1Weights, totals)
			closure = &c
		}

		result, root := e.runAccount(p, a, amounts[i], closure)
		if d := amountDiags[i]; d != nil {
			result.Diagnostics = append(result.Diagnostics, *d)
		}
		results = append(results, result)
		totals.Add(CategoryTotalsOf(root, result.Proposed))
	}

	return results
}

// balanceableAmount sums the reconciled value of a's balanceable holdings,
// synthesizing the account's value first if it has no observed holdings. A
// non-nil diagnostic reports a recoverable condition raised by the
// synthesizer (e.g. a dangling account reference) that the caller must
// still surface on the account's result.
func (e *Engine) balanceableAmount(p portfolio.Portfolio, a portfolio.Account) (portfolio.Money, *portfolio.Diagnostic) {
	currency := ""
	for _, h := range a.Holdings {
		if h.Price.Currency() != "" {
			currency = h.Price.Currency()
			break
		}
		if h.Value.Currency() != "" {
			currency = h.Value.Currency()
			break
		}
	}

	if a.IsSynthesized() && len(a.Holdings) == 0 {
		return Synthesize(p, a, e.Now, e.Config, currency)
	}

	sum := portfolio.M(0, currency)
	for _, h := range a.Holdings {
		t, ok := e.Tickers[h.Ticker]
		if !ok || !t.Kind.Balanceable() {
			continue
		}
		sum = sum.Add(h.Reconcile().Value)
	}
	return sum, nil
}

// runAccount classifies a's balanceable holdings into a fresh tree, resolves
// effective weights and splits the account's rebalanceable amount down the
// tree, passing non-balanceable holdings through unchanged.
func (e *Engine) runAccount(p portfolio.Portfolio, a portfolio.Account, amount portfolio.Money, closure *ClosureOverride) (AccountResult, *Node) {
	root := BuildTree()
	proposed := make(Proposals)
	var diags []portfolio.Diagnostic

	for _, h := range a.Holdings {
		t, ok := e.Tickers[h.Ticker]
		if !ok {
			diags = append(diags, portfolio.NewDiagnostic(portfolio.DiagnosticClassification, h.Ticker,
				"ticker not found in catalog; held without rebalancing"))
			proposed[h.Ticker] = h.Reconcile().Value
			continue
		}
		if !t.Kind.Balanceable() {
			proposed[h.Ticker] = h.Reconcile().Value
			continue
		}
		if d := Bind(root, t, h); d != nil {
			diags = append(diags, *d)
			proposed[h.Ticker] = h.Reconcile().Value
		}
	}

	w, resolveDiags := Resolve(root, p, a, e.Config, closure)
	diags = append(diags, resolveDiags...)

	splitProposed, residual, splitDiags := Split(root, amount, w, 0, e.Config)
	mergeProposals(proposed, splitProposed)
	diags = append(diags, splitDiags...)

	status := portfolio.StatusOK
	for _, d := range diags {
		if d.Kind == portfolio.DiagnosticInfeasibility {
			status = portfolio.StatusInfeasible
			break
		}
	}
	if status == portfolio.StatusOK && residual.Abs().GreaterThan(residual.MinorUnit()) {
		status = portfolio.StatusPartial
	}

	return AccountResult{
		Account:     a.Key,
		Status:      status,
		Proposed:    proposed,
		Residual:    residual,
		Diagnostics: diags,
	}, root
}
