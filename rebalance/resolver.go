package rebalance

import (
	portfolio "github.com/etnz/rebalance"
)

// Weights is the per-account effective-weight map produced by the resolver:
// one Percent per Node, keyed by pointer identity within the tree built for
// this engine run.
type Weights map[*Node]portfolio.Percent

// Resolve runs the five-overlay weight resolution chain for one account and
// returns the effective weight of every node in the tree rooted at root. cfg
// gates the two market-adjustment overlays; closure, if non-nil, supplies
// the final level-1 override for the last account in a portfolio.
func Resolve(root *Node, p portfolio.Portfolio, a portfolio.Account, cfg portfolio.Config, closure *ClosureOverride) (Weights, []portfolio.Diagnostic) {
	w := make(Weights)
	var diags []portfolio.Diagnostic

	// Overlay 1: built-in defaults.
	applyDefaults(root, w)

	// Overlay 2: account's level-1 weights replace the four level-1 nodes.
	applyLevel1(root, w, a.Level1Weights)

	// Overlay 3: fine-grained override replaces every weight at every level.
	if a.Override != nil {
		applyDetail(root, w, *a.Override)
	}

	// Overlay 4: today-vs-lastClose equity adjustment.
	if cfg.CloseAdjustActive() {
		factor := cfg.SPToday.Value / cfg.SPClose.Value
		scaleStockWeight(root, w, factor)
	}

	// Overlay 5: today-vs-high hyperbolic equity adjustment.
	if cfg.HighAdjustActive(p) {
		target, warn := TargetStockFraction(p, cfg)
		if warn != nil {
			diags = append(diags, *warn)
		}
		setStockWeight(root, w, target)
	}

	// Closure pass overlay: final level-1 override for the last account.
	// Skip is set when the portfolio's level-1 weights are all zero (open
	// question (b)): the resolver then leaves whatever weight the upstream
	// overlays produced instead of forcing every category to zero.
	if closure != nil {
		if !closure.Skip {
			applyLevel1(root, w, closure.Level1Weights)
		}
		diags = append(diags, closure.Diagnostics...)
	}

	return w, diags
}

func applyDefaults(root *Node, w Weights) {
	var walk func(n *Node)
	walk = func(n *Node) {
		w[n] = defaultWeight(n)
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
}

// defaultWeight returns the built-in default weight for n, keyed by the
// (parent role, role) pair per default weight table.
func defaultWeight(n *Node) portfolio.Percent {
	d := portfolio.DefaultWeights
	if n.Parent == nil {
		return 100
	}
	switch n.Parent.Role {
	case RoleAll:
		switch n.Role {
		case RoleStock:
			return d.Level1.Stock
		case RoleBond:
			return d.Level1.Bond
		case RoleCash:
			return d.Level1.Cash
		case RoleRealEstate:
			return d.Level1.RealEstate
		}
	case RoleStock:
		switch n.Role {
		case RoleDomestic:
			return d.StockDomestic
		case RoleForeign:
			return d.StockForeign
		}
	case RoleDomestic, RoleForeign:
		switch n.Role {
		case RoleLarge:
			return d.StockLarge
		case RoleNotLarge:
			return d.StockNotLarge
		}
	case RoleNotLarge:
		switch n.Role {
		case RoleMedium:
			return d.StockMedium
		case RoleSmall:
			return d.StockSmall
		}
	case RoleLarge, RoleMedium, RoleSmall:
		switch n.Role {
		case RoleGrowthAndValue:
			return d.StockGrowthAndValue
		case RoleGrowthOrValue:
			return d.StockGrowthOrValue
		}
	case RoleGrowthOrValue:
		switch n.Role {
		case RoleGrowth:
			return d.StockGrowth
		case RoleValue:
			return d.StockValue
		}
	case RoleBond:
		switch n.Role {
		case RoleCorporate:
			return d.BondCorporate
		case RoleForeign:
			return d.BondForeign
		case RoleGovernment:
			return d.BondGovernment
		case RoleHighYield:
			return d.BondHighYield
		case RoleInflationProtected:
			return d.BondInflationProtected
		case RoleMortgage:
			return d.BondMortgage
		case RoleShort:
			return d.BondShort
		case RoleUncategorized:
			return d.BondUncategorized
		}
	case RoleCash:
		switch n.Role {
		case RoleGovernment:
			return d.CashGovernment
		case RoleUncategorized:
			return d.CashUncategorized
		}
	}
	return 0
}

func applyLevel1(root *Node, w Weights, l1 portfolio.Level1Weights) {
	for _, c := range root.Children {
		switch c.Role {
		case RoleStock:
			w[c] = l1.Stock
		case RoleBond:
			w[c] = l1.Bond
		case RoleCash:
			w[c] = l1.Cash
		case RoleRealEstate:
			w[c] = l1.RealEstate
		}
	}
}

// applyDetail replaces every node's weight with the matching field of
// detail, keyed the same way defaultWeight is.
func applyDetail(root *Node, w Weights, detail portfolio.DetailWeights) {
	var walk func(n *Node)
	walk = func(n *Node) {
		w[n] = detailWeight(n, detail)
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
}

func detailWeight(n *Node, d portfolio.DetailWeights) portfolio.Percent {
	if n.Parent == nil {
		return 100
	}
	switch n.Parent.Role {
	case RoleAll:
		switch n.Role {
		case RoleStock:
			return d.Level1.Stock
		case RoleBond:
			return d.Level1.Bond
		case RoleCash:
			return d.Level1.Cash
		case RoleRealEstate:
			return d.Level1.RealEstate
		}
	case RoleStock:
		switch n.Role {
		case RoleDomestic:
			return d.StockDomestic
		case RoleForeign:
			return d.StockForeign
		}
	case RoleDomestic, RoleForeign:
		switch n.Role {
		case RoleLarge:
			return d.StockLarge
		case RoleNotLarge:
			return d.StockNotLarge
		}
	case RoleNotLarge:
		switch n.Role {
		case RoleMedium:
			return d.StockMedium
		case RoleSmall:
			return d.StockSmall
		}
	case RoleLarge, RoleMedium, RoleSmall:
		switch n.Role {
		case RoleGrowthAndValue:
			return d.StockGrowthAndValue
		case RoleGrowthOrValue:
			return d.StockGrowthOrValue
		}
	case RoleGrowthOrValue:
		switch n.Role {
		case RoleGrowth:
			return d.StockGrowth
		case RoleValue:
			return d.StockValue
		}
	case RoleBond:
		switch n.Role {
		case RoleCorporate:
			return d.BondCorporate
		case RoleForeign:
			return d.BondForeign
		case RoleGovernment:
			return d.BondGovernment
		case RoleHighYield:
			return d.BondHighYield
		case RoleInflationProtected:
			return d.BondInflationProtected
		case RoleMortgage:
			return d.BondMortgage
		case RoleShort:
			return d.BondShort
		case RoleUncategorized:
			return d.BondUncategorized
		}
	case RoleCash:
		switch n.Role {
		case RoleGovernment:
			return d.CashGovernment
		case RoleUncategorized:
			return d.CashUncategorized
		}
	}
	return 0
}

func scaleStockWeight(root *Node, w Weights, factor float64) {
	for _, c := range root.Children {
		if c.Role == RoleStock {
			w[c] = w[c].Scale(factor)
		}
	}
}

func setStockWeight(root *Node, w Weights, target portfolio.Percent) {
	for _, c := range root.Children {
		if c.Role == RoleStock {
			w[c] = target
		}
	}
}

// ClosureOverride is the result of the closure pass, applied as the
// resolver's final overlay on the portfolio's last account.
type ClosureOverride struct {
	Level1Weights portfolio.Level1Weights
	Diagnostics   []portfolio.Diagnostic
	// Skip reports that the portfolio declared no level-1 weights at all
	// (§9 open question (b)): the resolver leaves the upstream overlays'
	// weights untouched instead of applying an all-zero override.
	Skip bool
}
