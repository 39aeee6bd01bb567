package rebalance

import (
	"fmt"

	portfolio "github.com/etnz/rebalance"
)

// hyperbola is the fitted curve y(x) = (H-yHigh)/(s*(x-xHigh)-1) + H solved
// from three anchor points.
type hyperbola struct {
	xHigh, yHigh float64
	s, h         float64
}

// fitHyperbola solves for s and H from the three anchors (xHigh,yHigh),
// (xBear,yBear), (xZero,yZero) per closed-form equations.
func fitHyperbola(xHigh, yHigh, xBear, yBear, xZero, yZero float64) hyperbola {
	az := (yZero - yHigh) / (xZero - xHigh)
	ab := (yBear - yHigh) / (xBear - xHigh)
	s := (az - ab) / (yZero - yBear)
	h := (yZero*s - az) / s
	return hyperbola{xHigh: xHigh, yHigh: yHigh, s: s, h: h}
}

// at evaluates the fitted hyperbola at x.
func (c hyperbola) at(x float64) float64 {
	return (c.h-c.yHigh)/(c.s*(x-c.xHigh)-1) + c.h
}

// TargetStockFraction evaluates the hyperbolic equity-target adjuster at the
// portfolio's current S&P level and returns the target stock fraction, plus
// a curve-warning diagnostic if increase-at-bear is too small relative to
// increase-at-zero.
func TargetStockFraction(p portfolio.Portfolio, cfg portfolio.Config) (portfolio.Percent, *portfolio.Diagnostic) {
	baseline := stockFraction(p.Level1Weights)

	xHigh := cfg.SPHigh.Value
	xBear := 0.8 * xHigh
	xZero := 0.0

	increaseAtZero := float64(p.IncreaseAtZero)
	increaseAtBear := float64(p.BearOrDefault())

	yHigh := baseline
	yBear := baseline + increaseAtBear
	yZero := baseline + increaseAtZero

	var diag *portfolio.Diagnostic
	if increaseAtBear <= increaseAtZero/5 {
		d := portfolio.NewDiagnostic(portfolio.DiagnosticCurveWarning, "hyperbola",
			fmt.Sprintf("increase-at-bear %.4f is too small relative to increase-at-zero %.4f; curve is non-monotone", increaseAtBear, increaseAtZero))
		diag = &d
	}

	if xHigh == 0 {
		// No meaningful curve without a high anchor; fall back to baseline.
		return portfolio.Percent(baseline), diag
	}

	curve := fitHyperbola(xHigh, yHigh, xBear, yBear, xZero, yZero)
	target := curve.at(cfg.SPToday.Value)
	return portfolio.Percent(target), diag
}

// stockFraction returns the portfolio's stock weight as a percentage of
// its level-1 total (the hyperbola's baseline anchor), 0 if the total is
// zero.
func stockFraction(l1 portfolio.Level1Weights) float64 {
	total := l1.Sum()
	if total.IsZero() {
		return 0
	}
	return float64(l1.Stock) / float64(total) * 100
}
