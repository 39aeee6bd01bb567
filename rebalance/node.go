package rebalance

import portfolio "github.com/etnz/rebalance"

// Proposals maps a ticker symbol to its proposed value for one account.
type Proposals map[string]portfolio.Money

func mergeProposals(into Proposals, from Proposals) {
	for sym, v := range from {
		if existing, ok := into[sym]; ok {
			into[sym] = existing.Add(v)
		} else {
			into[sym] = v
		}
	}
}

// Split distributes amount down the subtree rooted at node according to w,
// the resolver's effective weights, recursing into children and invoking the
// ticker-set allocator at leaves. depth is the node's distance from the tree
// root; cfg.MXRt bounds how many residual-redistribution iterations a node
// below that depth may perform — "no node at depth > mxrt performs more than
// one allocation iteration", with the root (depth 0) always unconstrained.
// Tickers bound directly to an internal node are treated as a virtual
// sibling of node's children, weighted by the unweighted average of the
// positive child weights: an equal-weight-by-default share of a
// category's worth of weight, the same rule root-bound tickers get
// against the level-1 categories, generalised to every depth (recorded
// as a design decision in DESIGN.md).
func Split(node *Node, amount portfolio.Money, w Weights, depth int, cfg portfolio.Config) (Proposals, portfolio.Money, []portfolio.Diagnostic) {
	proposals := make(Proposals)
	var diags []portfolio.Diagnostic

	positive := positiveChildren(node, w)
	hasOwnTickers := len(node.Bound) > 0

	if len(positive) == 0 {
		if hasOwnTickers {
			p, residual, d := Allocate(node.Bound, amount, cfg.NCnt)
			mergeProposals(proposals, p)
			diags = append(diags, d...)
			return proposals, residual, diags
		}
		// Nothing below this node can absorb value: the whole amount is a residual
		// surfaced to the caller.
		return proposals, amount, diags
	}

	total := sumWeights(positive, w)
	var virtualWeight portfolio.Percent
	if hasOwnTickers {
		virtualWeight = averageWeight(positive, w)
		total += virtualWeight
	}

	residual := portfolio.M(0, amount.Currency())

	for _, c := range positive {
		share := amount.Mul(portfolio.Q(w[c].Ratio(total)))
		p, r, d := splitChild(c, share, w, depth, cfg)
		mergeProposals(proposals, p)
		residual = residual.Add(r)
		diags = append(diags, d...)
	}

	if hasOwnTickers {
		share := amount.Mul(portfolio.Q(virtualWeight.Ratio(total)))
		p, r, d := Allocate(node.Bound, share, cfg.NCnt)
		mergeProposals(proposals, p)
		residual = residual.Add(r)
		diags = append(diags, d...)
	}
	maxIter := 1
	if depth <= cfg.MXRt {
		maxIter = 3
	}
	for i := 1; i < maxIter && residual.Abs().GreaterThan(residual.MinorUnit()); i++ {
		absorber := findAbsorber(node)
		if absorber == nil {
			break
		}
		p, r, d := Allocate(absorber.Bound, residual, cfg.NCnt)
		mergeProposals(proposals, p)
		diags = append(diags, d...)
		residual = r
	}

	return proposals, residual, diags
}

func splitChild(c *Node, share portfolio.Money, w Weights, depth int, cfg portfolio.Config) (Proposals, portfolio.Money, []portfolio.Diagnostic) {
	if c.Leaf() {
		return Allocate(c.Bound, share, cfg.NCnt)
	}
	return Split(c, share, w, depth+1, cfg)
}

func positiveChildren(node *Node, w Weights) []*Node {
	var out []*Node
	for _, c := range node.Children {
		if w[c] > 0 {
			out = append(out, c)
		}
	}
	return out
}

func sumWeights(nodes []*Node, w Weights) portfolio.Percent {
	var sum portfolio.Percent
	for _, n := range nodes {
		sum += w[n]
	}
	return sum
}

func averageWeight(nodes []*Node, w Weights) portfolio.Percent {
	if len(nodes) == 0 {
		return 0
	}
	return sumWeights(nodes, w) / portfolio.Percent(len(nodes))
}

// findAbsorber locates the nearest descendant leaf capable of absorbing an
// arbitrary residual amount: one bound ticker with no rounding constraint
// and no positive minimum investment (typically a money-market leaf under
// Cash). Traversal is depth-first over Children in their fixed
// construction order, so the result is deterministic.
func findAbsorber(node *Node) *Node {
	for _, b := range node.Bound {
		if b.Ticker.Rounding.IsZero() && !b.Ticker.MinInvest.IsPositive() {
			return node
		}
	}
	for _, c := range node.Children {
		if found := findAbsorber(c); found != nil {
			return found
		}
	}
	return nil
}
