package rebalance

import (
	"sort"

	portfolio "github.com/etnz/rebalance"
)

// candidate is one ticker eligible for the subset search: its holding
// weight, minimum investment, preferred rounding and, if held, current
// price.
type candidate struct {
	symbol    string
	weight    float64
	minInvest portfolio.Money
	rounding  portfolio.Quantity
	price     portfolio.Money
	ideal     portfolio.Money
}

// Allocate searches subsets of bound for the best allocation of amount among
// its tickers. ncnt caps the number of subsets of size > 2 examined; subsets
// of size 1 and 2 are always fully explored, guaranteeing termination with
// at least a predictable quadratic-cost fallback even when ncnt is exhausted
// without a zero-residual candidate. Holding-weight 0 withholds a ticker
// from allocation entirely: such tickers are excluded from the search and
// always proposed at 0.
func Allocate(bound []Bound, amount portfolio.Money, ncnt int) (Proposals, portfolio.Money, []portfolio.Diagnostic) {
	proposals := make(Proposals)
	cur := amount.Currency()

	withheld := make([]Bound, 0)
	active := make([]Bound, 0, len(bound))
	for _, b := range bound {
		if b.Holding.Withheld() {
			withheld = append(withheld, b)
			continue
		}
		active = append(active, b)
	}
	for _, b := range withheld {
		proposals[b.Ticker.Symbol] = portfolio.M(0, cur)
	}

	if len(active) == 0 {
		if len(bound) == 0 {
			return proposals, amount, nil
		}
		return proposals, amount, []portfolio.Diagnostic{
			portfolio.NewDiagnostic(portfolio.DiagnosticInfeasibility, "leaf", "un-allocable leaf: every ticker withheld by zero holding-weight"),
		}
	}

	sort.Slice(active, func(i, j int) bool { return active[i].Ticker.Symbol < active[j].Ticker.Symbol })

	cands := make([]candidate, len(active))
	var totalWeight float64
	for i, b := range active {
		w := float64(b.Holding.EffectiveWeight())
		cands[i] = candidate{
			symbol:    b.Ticker.Symbol,
			weight:    w,
			minInvest: b.Ticker.MinInvest,
			rounding:  b.Ticker.Rounding,
			price:     b.Holding.Price,
		}
		totalWeight += w
	}
	if totalWeight > 0 {
		for i := range cands {
			cands[i].ideal = amount.Mul(portfolio.Q(cands[i].weight / totalWeight))
		}
	}
	for i := range cands {
		if cands[i].ideal.Currency() == "" {
			cands[i].ideal = portfolio.M(0, cur)
		}
	}

	search := newSearch(cands, amount, cur, ncnt)
	search.run()

	if search.best == nil {
		for _, c := range cands {
			proposals[c.symbol] = portfolio.M(0, cur)
		}
		return proposals, amount, []portfolio.Diagnostic{
			portfolio.NewDiagnostic(portfolio.DiagnosticInfeasibility, "leaf", "un-allocable leaf: no feasible subset found"),
		}
	}

	assigned := portfolio.M(0, cur)
	for i, c := range cands {
		v, inSubset := search.best.values[i]
		if !inSubset {
			v = portfolio.M(0, cur)
		}
		proposals[c.symbol] = v.Round()
		assigned = assigned.Add(proposals[c.symbol])
	}

	var diags []portfolio.Diagnostic
	allZero := true
	for _, v := range search.best.values {
		if !v.IsZero() {
			allZero = false
		}
	}
	if allZero && len(cands) > 0 {
		diags = append(diags, portfolio.NewDiagnostic(portfolio.DiagnosticInfeasibility, "leaf", "un-allocable leaf: every candidate subset forced to zero by minimum investment"))
	} else if search.budgetExhausted && !search.best.zeroResidual {
		diags = append(diags, portfolio.NewDiagnostic(portfolio.DiagnosticBudgetExhaustion, "leaf", "ncnt exhausted before a zero-residual allocation was found"))
	}

	return proposals, amount.Sub(assigned), diags
}

// result is one evaluated subset candidate.
type result struct {
	indices      []int
	values       map[int]portfolio.Money
	residual     portfolio.Money
	deviation    float64
	zeroResidual bool
}

type search struct {
	cands           []candidate
	amount          portfolio.Money
	currency        string
	tolerance       portfolio.Money
	ncnt            int
	examined        int
	best            *result
	budgetExhausted bool
}

func newSearch(cands []candidate, amount portfolio.Money, currency string, ncnt int) *search {
	return &search{
		cands:     cands,
		amount:    amount,
		currency:  currency,
		tolerance: amount.MinorUnit(),
		ncnt:      ncnt,
	}
}

// run enumerates non-empty subsets of cands in increasing size order,
// evaluating each and keeping the best under the acceptance rule. Subsets of
// size 1 and 2 are always evaluated in full; larger subsets stop once ncnt
// subsets beyond that guaranteed pair have been examined.
func (s *search) run() {
	n := len(s.cands)
	budget := s.ncnt

	for size := 1; size <= n; size++ {
		guaranteed := size <= 2
		stop := false
		forEachCombination(n, size, func(idx []int) bool {
			if !guaranteed {
				if budget <= 0 {
					s.budgetExhausted = true
					stop = true
					return false
				}
				budget--
			}
			s.evaluate(idx)
			s.examined++
			return true
		})
		if stop {
			break
		}
	}
}

func (s *search) evaluate(idx []int) {
	n := len(s.cands)
	inSubset := make([]bool, n)
	for _, i := range idx {
		inSubset[i] = true
	}

	var hSum float64
	for _, i := range idx {
		hSum += s.cands[i].weight
	}

	values := make(map[int]portfolio.Money, len(idx))
	var assigned portfolio.Money = portfolio.M(0, s.currency)

	if len(idx) == 1 {
		i := idx[0]
		v := snap(s.amount, s.cands[i])
		values[i] = v
		assigned = assigned.Add(v)
	} else if hSum > 0 {
		for _, i := range idx {
			raw := s.amount.Mul(portfolio.Q(s.cands[i].weight / hSum))
			v := snap(raw, s.cands[i])
			values[i] = v
			assigned = assigned.Add(v)
		}
	} else {
		// Every member of this multi-ticker subset has zero holding-weight
		// (shouldn't occur since withheld tickers are pre-excluded), but
		// guard against division by zero by proposing nothing.
		return
	}

	residual := s.amount.Sub(assigned)
	zeroResidual := residual.Abs().LessThanOrEqual(s.tolerance)

	var deviation float64
	for i, c := range s.cands {
		v := 0.0
		if vv, ok := values[i]; ok {
			v = vv.AsFloat()
		}
		d := v - c.ideal.AsFloat()
		deviation += c.weight * d * d
	}

	cand := &result{indices: idx, values: values, residual: residual, deviation: deviation, zeroResidual: zeroResidual}
	if s.best == nil || better(cand, s.best, s.cands) {
		s.best = cand
	}
}

// better reports whether a is preferred over b under the acceptance rule:
// zero residual beats non-zero. Among zero-residual subsets, smaller
// deviation² wins, then lexicographic order of sorted symbols. Among
// non-zero-residual subsets, smaller |residual| wins, then smaller
// deviation², then smaller subset size, then lexicographic order of sorted
// symbols.
func better(a, b *result, cands []candidate) bool {
	if a.zeroResidual != b.zeroResidual {
		return a.zeroResidual
	}
	if a.zeroResidual {
		if a.deviation != b.deviation {
			return a.deviation < b.deviation
		}
		return lexicographicLess(a, b, cands)
	}
	aAbs, bAbs := a.residual.Abs(), b.residual.Abs()
	if !aAbs.Equal(bAbs) {
		return aAbs.LessThan(bAbs)
	}
	if a.deviation != b.deviation {
		return a.deviation < b.deviation
	}
	if len(a.indices) != len(b.indices) {
		return len(a.indices) < len(b.indices)
	}
	return lexicographicLess(a, b, cands)
}

func lexicographicLess(a, b *result, cands []candidate) bool {
	as, bs := symbolsOf(a, cands), symbolsOf(b, cands)
	n := len(as)
	if len(bs) < n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		if as[i] != bs[i] {
			return as[i] < bs[i]
		}
	}
	return len(as) < len(bs)
}

func symbolsOf(r *result, cands []candidate) []string {
	out := make([]string, len(r.indices))
	for i, idx := range r.indices {
		out[i] = cands[idx].symbol
	}
	sort.Strings(out)
	return out
}

// snap rounds raw to c's feasible value: if c has a preferred rounding and a
// known price, snap the implied share count to the nearest multiple of that
// rounding; then enforce the minimum investment, letting 0 stand in for any
// value whose magnitude falls short.
func snap(raw portfolio.Money, c candidate) portfolio.Money {
	v := raw
	if !c.rounding.IsZero() && !c.price.IsZero() {
		shares := raw.DivPrice(c.price)
		roundedShares := shares.RoundToStep(c.rounding)
		v = c.price.Mul(roundedShares)
	}
	if !v.IsZero() && !c.minInvest.IsZero() && v.Abs().LessThan(c.minInvest.Abs()) {
		v = portfolio.M(0, v.Currency())
	}
	return v
}

// forEachCombination calls f once per size-length, strictly increasing
// combination of indices from [0,n), in lexicographic order, stopping
// early if f returns false.
func forEachCombination(n, size int, f func(idx []int) bool) {
	if size > n || size == 0 {
		return
	}
	idx := make([]int, size)
	for i := range idx {
		idx[i] = i
	}
	for {
		if !f(idx) {
			return
		}
		i := size - 1
		for i >= 0 && idx[i] == n-size+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < size; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
