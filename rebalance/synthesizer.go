package rebalance

import (
	"math"

	portfolio "github.com/etnz/rebalance"
	"github.com/etnz/rebalance/date"
	"gonum.org/v1/gonum/stat"
)

// Synthesize derives a value for an account whose holdings carry no observed
// total but whose synthesizer kind is set, run once per account before
// Resolve/Split. now is the evaluation date driving the annuity and
// Social-Security month counts; currency is the portfolio's working
// currency, passed to the No-CPI-Annuity, Averaging and Negation
// synthesizers and used for the zero value of an account with no
// synthesizer.
func Synthesize(p portfolio.Portfolio, a portfolio.Account, now date.Date, cfg portfolio.Config, currency string) (portfolio.Money, *portfolio.Diagnostic) {
	switch a.Synthesizer {
	case portfolio.SynthesizerCPIAnnuity:
		months := p.MonthsUntilMortality(now)
		return p.MonthlyAnnuityIncome.Mul(portfolio.Q(months)), nil
	case portfolio.SynthesizerNoCPIAnnuity:
		return noCPIAnnuityValue(p, now, cfg, currency), nil
	case portfolio.SynthesizerSocialSecurity:
		from := now
		if start := p.AgeSixtyTwoDate(); start.After(now) {
			from = start
		}
		months := p.MonthsUntilMortality(from)
		return p.MonthlySocialSecurityIncome.Mul(portfolio.Q(months)), nil
	case portfolio.SynthesizerAveraging:
		return averageOf(p, a, currency)
	case portfolio.SynthesizerNegation:
		return negationOf(p, a, currency)
	default:
		return portfolio.M(0, currency), nil
	}
}

// noCPIAnnuityValue sums the monthly annuity income over the months
// remaining until mortality, compounding the inflation discount once per
// elapsed year but applying it to every month within that year ( "decayed
// each year by (1 − inflation) accumulation, the product (1+inflation)⁻ⁿ
// summed monthly").
func noCPIAnnuityValue(p portfolio.Portfolio, now date.Date, cfg portfolio.Config, currency string) portfolio.Money {
	months := p.MonthsUntilMortality(now)
	rate := float64(cfg.Inflation) / 100
	monthly := p.MonthlyAnnuityIncome.AsFloat()

	var total float64
	for n := 1; n <= months; n++ {
		yearsElapsed := float64((n - 1) / 12)
		total += monthly * math.Pow(1+rate, -yearsElapsed)
	}
	return portfolio.M(total, currency)
}

// averageOf implements the Averaging synthesizer: the mean of the referenced
// accounts' current total values.
func averageOf(p portfolio.Portfolio, a portfolio.Account, currency string) (portfolio.Money, *portfolio.Diagnostic) {
	if len(a.SynthesizerAccounts) == 0 {
		return portfolio.M(0, currency), nil
	}
	values := make([]float64, 0, len(a.SynthesizerAccounts))
	for _, key := range a.SynthesizerAccounts {
		ref, ok := p.AccountByKey(key)
		if !ok {
			d := portfolio.NewDiagnostic(portfolio.DiagnosticValidation, a.Key.String(),
				"synthesizer references unknown account "+key.String())
			return portfolio.M(0, currency), &d
		}
		values = append(values, accountTotalValue(ref).AsFloat())
	}
	mean := stat.Mean(values, nil)
	return portfolio.M(mean, currency), nil
}

// negationOf implements the Negation synthesizer: the negated sum of the
// referenced accounts' current total values, meant to be combined with
// Averaging siblings to produce a single positive average.
func negationOf(p portfolio.Portfolio, a portfolio.Account, currency string) (portfolio.Money, *portfolio.Diagnostic) {
	sum := portfolio.M(0, currency)
	for _, key := range a.SynthesizerAccounts {
		ref, ok := p.AccountByKey(key)
		if !ok {
			d := portfolio.NewDiagnostic(portfolio.DiagnosticValidation, a.Key.String(),
				"synthesizer references unknown account "+key.String())
			return portfolio.M(0, currency), &d
		}
		sum = sum.Add(accountTotalValue(ref))
	}
	return sum.Neg(), nil
}

func accountTotalValue(a portfolio.Account) portfolio.Money {
	sum := portfolio.M(0, "")
	for _, h := range a.Holdings {
		sum = sum.Add(h.Reconcile().Value)
	}
	return sum
}
