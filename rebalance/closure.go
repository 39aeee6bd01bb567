package rebalance

import (
	portfolio "github.com/etnz/rebalance"
)

// CategoryTotals accumulates, across the accounts of one portfolio already
// rebalanced, how much value has been proposed into each level-1 category so
// far.
type CategoryTotals struct {
	Stock, Bond, Cash, RealEstate portfolio.Money
}

// Add accumulates other into t in place.
func (t *CategoryTotals) Add(other CategoryTotals) {
	t.Stock = t.Stock.Add(other.Stock)
	t.Bond = t.Bond.Add(other.Bond)
	t.Cash = t.Cash.Add(other.Cash)
	t.RealEstate = t.RealEstate.Add(other.RealEstate)
}

// CategoryTotalsOf sums proposals by the level-1 subtree each bound
// ticker falls under in root's tree, for use by the per-portfolio
// accumulator driving the closure pass.
func CategoryTotalsOf(root *Node, proposals Proposals) CategoryTotals {
	var t CategoryTotals
	for _, c := range root.Children {
		sum := sumSubtreeProposals(c, proposals)
		switch c.Role {
		case RoleStock:
			t.Stock = t.Stock.Add(sum)
		case RoleBond:
			t.Bond = t.Bond.Add(sum)
		case RoleCash:
			t.Cash = t.Cash.Add(sum)
		case RoleRealEstate:
			t.RealEstate = t.RealEstate.Add(sum)
		}
	}
	return t
}

func sumSubtreeProposals(n *Node, proposals Proposals) portfolio.Money {
	sum := portfolio.M(0, "")
	for _, b := range n.Bound {
		if v, ok := proposals[b.Ticker.Symbol]; ok {
			sum = sum.Add(v)
		}
	}
	for _, c := range n.Children {
		sum = sum.Add(sumSubtreeProposals(c, proposals))
	}
	return sum
}

// Closure computes the last account's level-1 weight override.
// balanceableValue and weights describe the whole portfolio's target;
// already is the running total of what earlier accounts in the same
// portfolio have already proposed into each category.
func Closure(balanceableValue portfolio.Money, weights portfolio.Level1Weights, already CategoryTotals) ClosureOverride {
	total := weights.Sum()
	if total.IsZero() {
		// Open question (b): rely on holding-weights and skip the override
		// entirely, rather than forcing every level-1 weight to zero.
		return ClosureOverride{Skip: true}
	}

	type cat struct {
		role    Role
		target  portfolio.Money
		already portfolio.Money
	}
	cats := []cat{
		{RoleStock, balanceableValue.Mul(portfolio.Q(float64(weights.Stock) / float64(total))), already.Stock},
		{RoleBond, balanceableValue.Mul(portfolio.Q(float64(weights.Bond) / float64(total))), already.Bond},
		{RoleCash, balanceableValue.Mul(portfolio.Q(float64(weights.Cash) / float64(total))), already.Cash},
		{RoleRealEstate, balanceableValue.Mul(portfolio.Q(float64(weights.RealEstate) / float64(total))), already.RealEstate},
	}

	residuals := make(map[Role]portfolio.Money, 4)
	var diags []portfolio.Diagnostic
	for _, c := range cats {
		residual := c.target.Sub(c.already)
		if residual.IsNegative() {
			residuals[c.role] = portfolio.M(0, residual.Currency())
			diags = append(diags, portfolio.NewDiagnostic(portfolio.DiagnosticPortfolioOvershoot, c.role.String(),
				"portfolio-level target for "+c.role.String()+" was already overshot by earlier accounts"))
			continue
		}
		residuals[c.role] = residual
	}

	l1 := portfolio.Level1Weights{
		Stock:      portfolio.Percent(residuals[RoleStock].AsFloat()),
		Bond:       portfolio.Percent(residuals[RoleBond].AsFloat()),
		Cash:       portfolio.Percent(residuals[RoleCash].AsFloat()),
		RealEstate: portfolio.Percent(residuals[RoleRealEstate].AsFloat()),
	}
	return ClosureOverride{Level1Weights: l1, Diagnostics: diags}
}
