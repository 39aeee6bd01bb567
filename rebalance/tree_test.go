package rebalance

import (
	"testing"

	portfolio "github.com/etnz/rebalance"
)

func TestClassifyRootWhenNoSubcodes(t *testing.T) {
	root := BuildTree()
	tk := mustTicker(t, "IDX", portfolio.FundRebalanceable, portfolio.M(0, "USD"), portfolio.Q(0), portfolio.Subcodes{})
	n, err := Classify(root, tk)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != root {
		t.Fatalf("expected a ticker with no subcodes to bind to the root, got %s", n.Path())
	}
}

func TestClassifyDeepestLeaf(t *testing.T) {
	root := BuildTree()
	tk := mustTicker(t, "GRW", portfolio.FundRebalanceable, portfolio.M(0, "USD"), portfolio.Q(0),
		portfolio.Subcodes{Type: portfolio.SubcodeStock, Region: portfolio.SubcodeForeign, Size: portfolio.SubcodeSmall, Style: portfolio.SubcodeGrowth})
	n, err := Classify(root, tk)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "All.Stock.Foreign.Not-Large.Small.GrowthOrValue.Growth"
	if n.Path() != want {
		t.Fatalf("expected path %q, got %q", want, n.Path())
	}
	if !n.Leaf() {
		t.Fatalf("expected a leaf node")
	}
}

func TestClassifyPartialSubcodesBindsShallow(t *testing.T) {
	root := BuildTree()
	// Only type+region set: must bind at the Domestic node itself, not a
	// deeper leaf, since size/style are unset.
	tk := mustTicker(t, "DOM", portfolio.FundRebalanceable, portfolio.M(0, "USD"), portfolio.Q(0),
		portfolio.Subcodes{Type: portfolio.SubcodeStock, Region: portfolio.SubcodeDomestic})
	n, err := Classify(root, tk)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Path() != "All.Stock.Domestic" {
		t.Fatalf("expected All.Stock.Domestic, got %s", n.Path())
	}
}

// Inconsistent subcodes — the spec's own example, "S and T together": a
// Stock type paired with a Bond-only region subcode (Short).
func TestClassifyInconsistentSubcodesConflict(t *testing.T) {
	root := BuildTree()
	tk := mustTicker(t, "BAD", portfolio.FundRebalanceable, portfolio.M(0, "USD"), portfolio.Q(0),
		portfolio.Subcodes{Type: portfolio.SubcodeStock, Region: portfolio.SubcodeBondShort})
	_, err := Classify(root, tk)
	if err == nil {
		t.Fatal("expected a ConsistencyError for Stock type with a Bond-only region subcode")
	}
	if _, ok := err.(*portfolio.ConsistencyError); !ok {
		t.Fatalf("expected a *portfolio.ConsistencyError, got %T: %v", err, err)
	}
}

// Bind records a classification diagnostic (rather than returning an error
// through the normal call chain) when a ticker cannot be placed.
func TestBindRecordsClassificationDiagnostic(t *testing.T) {
	root := BuildTree()
	tk := mustTicker(t, "BAD", portfolio.FundRebalanceable, portfolio.M(0, "USD"), portfolio.Q(0),
		portfolio.Subcodes{Type: portfolio.SubcodeStock, Region: portfolio.SubcodeBondShort})
	h := portfolio.NewHolding(portfolio.AccountKey{}, "BAD", portfolio.Q(0), portfolio.M(0, "USD"), portfolio.M(100, "USD"))

	d := Bind(root, tk, h)
	if d == nil {
		t.Fatal("expected a diagnostic for an unclassifiable ticker")
	}
	if d.Kind != portfolio.DiagnosticClassification {
		t.Errorf("expected DiagnosticClassification, got %v", d.Kind)
	}
}

func TestRealEstateLeafRejectsSubcodes(t *testing.T) {
	root := BuildTree()
	tk := mustTicker(t, "REIT", portfolio.FundRebalanceable, portfolio.M(0, "USD"), portfolio.Q(0),
		portfolio.Subcodes{Type: portfolio.SubcodeRealEstate, Style: portfolio.SubcodeGrowth})
	_, err := Classify(root, tk)
	if err == nil {
		t.Fatal("expected an error: Real-Estate has no branches for a style subcode")
	}
}
