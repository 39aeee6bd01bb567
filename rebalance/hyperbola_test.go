package rebalance

import (
	"math"
	"testing"

	portfolio "github.com/etnz/rebalance"
)

// Property 5: the hyperbolic adjuster passes through all three anchor
// points within 1e-9, and, with sane parameters, is monotonically
// decreasing on [0, xHigh].
func TestHyperbolaAnchorsAndMonotonicity(t *testing.T) {
	xHigh, yHigh := 5000.0, 55.0
	xBear, yBear := 0.8*xHigh, 65.0
	xZero, yZero := 0.0, 75.0

	c := fitHyperbola(xHigh, yHigh, xBear, yBear, xZero, yZero)

	for _, anchor := range []struct {
		x, y float64
		name string
	}{
		{xHigh, yHigh, "high"},
		{xBear, yBear, "bear"},
		{xZero, yZero, "zero"},
	} {
		got := c.at(anchor.x)
		if math.Abs(got-anchor.y) > 1e-9 {
			t.Errorf("%s anchor: f(%v) = %v, want %v", anchor.name, anchor.x, got, anchor.y)
		}
	}

	prev := c.at(0)
	for x := 1.0; x <= xHigh; x += xHigh / 200 {
		cur := c.at(x)
		if cur > prev+1e-9 {
			t.Fatalf("curve not monotonically decreasing at x=%v: f(x-)=%v f(x)=%v", x, prev, cur)
		}
		prev = cur
	}
}

// TargetStockFraction must reproduce the same anchors through the
// portfolio-level entry point, and raise the curve-warning diagnostic when
// increase-at-bear is too small relative to increase-at-zero.
func TestTargetStockFractionCurveWarning(t *testing.T) {
	p := portfolio.Portfolio{
		Level1Weights: portfolio.Level1Weights{Stock: 50, Bond: 36, Cash: 10, RealEstate: 4},
	}
	p.SetIncreaseAtZero(20)
	p.SetIncreaseAtBear(1) // far below increaseAtZero/5 = 4: should warn

	cfg := portfolio.Config{SPHigh: portfolio.SetMarketLevel(5000), SPToday: portfolio.SetMarketLevel(4000)}

	_, warn := TargetStockFraction(p, cfg)
	if warn == nil {
		t.Fatal("expected a curve-warning diagnostic for a non-monotone anchor configuration")
	}
	if warn.Kind != portfolio.DiagnosticCurveWarning {
		t.Errorf("expected DiagnosticCurveWarning, got %v", warn.Kind)
	}
}

// A sane increase-at-bear (the spec's default of half increase-at-zero)
// must not raise the curve warning.
func TestTargetStockFractionNoWarningWhenSane(t *testing.T) {
	p := portfolio.Portfolio{
		Level1Weights: portfolio.Level1Weights{Stock: 50, Bond: 36, Cash: 10, RealEstate: 4},
	}
	p.SetIncreaseAtZero(20) // increaseAtBear defaults to 10, well above 20/5=4

	cfg := portfolio.Config{SPHigh: portfolio.SetMarketLevel(5000), SPToday: portfolio.SetMarketLevel(5000)}

	target, warn := TargetStockFraction(p, cfg)
	if warn != nil {
		t.Fatalf("unexpected curve warning: %v", warn)
	}
	// At x == xHigh, the curve must reproduce yHigh, the portfolio's own
	// stock fraction (50/100 * 100 = 50%).
	if math.Abs(float64(target)-50) > 1e-6 {
		t.Errorf("at x=xHigh expected target=50, got %v", target)
	}
}
