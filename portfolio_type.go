package portfolio

import "github.com/etnz/rebalance/date"

// FilingStatus is the tax-filing status used by downstream collaborators
// (tax-bracket lookups); the engine never reads it.
type FilingStatus int

const (
	FilingSingle FilingStatus = iota
	FilingMarriedJoint
	FilingMarriedSeparate
	FilingHeadOfHousehold
)

func (f FilingStatus) String() string {
	switch f {
	case FilingMarriedJoint:
		return "married-joint"
	case FilingMarriedSeparate:
		return "married-separate"
	case FilingHeadOfHousehold:
		return "head-of-household"
	default:
		return "single"
	}
}

// Portfolio is the top-level grouping of accounts for one investor.
type Portfolio struct {
	Key PortfolioKey

	Filing        FilingStatus
	BirthDate     date.Date
	MortalityDate date.Date

	MonthlyAnnuityIncome        Money
	MonthlySocialSecurityIncome Money
	TaxableIncome               Money

	Level1Weights Level1Weights

	// IncreaseAtZero and IncreaseAtBear parameterise the hyperbolic
	// equity-target adjuster. IncreaseAtBear defaults to half IncreaseAtZero
	// when unset (BearOrDefault).
	IncreaseAtZero    Percent
	IncreaseAtBear    Percent
	increaseAtZeroSet bool
	increaseAtBearSet bool

	Accounts []Account
}

// SetIncreaseAtZero records an explicit increase-at-zero, enabling the
// high-adjuster overlay once high is also set.
func (p *Portfolio) SetIncreaseAtZero(v Percent) {
	p.IncreaseAtZero = v
	p.increaseAtZeroSet = true
}

// SetIncreaseAtBear records an explicit increase-at-bear.
func (p *Portfolio) SetIncreaseAtBear(v Percent) {
	p.IncreaseAtBear = v
	p.increaseAtBearSet = true
}

// HasIncreaseAtZero reports whether the portfolio declared an
// increase-at-zero, the gate for the high-adjuster.
func (p Portfolio) HasIncreaseAtZero() bool { return p.increaseAtZeroSet }

// BearOrDefault returns the increase-at-bear to use, defaulting to half
// IncreaseAtZero when none was explicitly set.
func (p Portfolio) BearOrDefault() Percent {
	if p.increaseAtBearSet {
		return p.IncreaseAtBear
	}
	return p.IncreaseAtZero.Scale(0.5)
}

// AgeAt returns p's age, in whole years, at d.
func (p Portfolio) AgeAt(d date.Date) int {
	years := d.Year() - p.BirthDate.Year()
	if d.Month() < p.BirthDate.Month() || (d.Month() == p.BirthDate.Month() && d.Day() < p.BirthDate.Day()) {
		years--
	}
	return years
}

// MonthsUntilMortality returns the number of whole months between from and
// the portfolio's mortality date, used by the annuity synthesizers. Returns
// 0 if from is on or after the mortality date.
func (p Portfolio) MonthsUntilMortality(from date.Date) int {
	if !from.Before(p.MortalityDate) {
		return 0
	}
	months := (p.MortalityDate.Year()-from.Year())*12 + int(p.MortalityDate.Month()-from.Month())
	if p.MortalityDate.Day() < from.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// AgeSixtyTwoDate returns the date the portfolio's holder turns 62, the
// earliest Social-Security benefit start used by the Social-Security
// synthesizer.
func (p Portfolio) AgeSixtyTwoDate() date.Date {
	return date.New(p.BirthDate.Year()+62, p.BirthDate.Month(), p.BirthDate.Day())
}

// AccountByKey returns the account with the given key and whether it was
// found.
func (p Portfolio) AccountByKey(k AccountKey) (Account, bool) {
	for _, a := range p.Accounts {
		if a.Key == k {
			return a, true
		}
	}
	return Account{}, false
}

// OrderedAccounts returns the portfolio's accounts sorted by declared
// rebalance order.
func (p Portfolio) OrderedAccounts() []Account {
	out := make([]Account, len(p.Accounts))
	copy(out, p.Accounts)
	// simple insertion sort: account counts per portfolio are small and this
	// keeps ties in declaration order, matching property 4's determinism
	// requirement.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Order < out[j-1].Order; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
