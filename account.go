package portfolio

// RebalanceProcedure names how an account's effective weights are derived
// from its portfolio and override weights. The engine does not read it:
// every account's weights are resolved the same way, whichever procedure
// it names.
type RebalanceProcedure int

const (
	// ProcedurePercent applies the resolved weight directly.
	ProcedurePercent RebalanceProcedure = iota
	// ProcedureRedistribute names spreading a withheld or excluded category's
	// weight across its remaining siblings proportionally; no code performs
	// this redistribution.
	ProcedureRedistribute
)

func (p RebalanceProcedure) String() string {
	if p == ProcedureRedistribute {
		return "redistribute"
	}
	return "percent"
}

// TaxType tags an account with its tax treatment. Neither the engine nor
// the synthesizers read it, so it never alters the allocation arithmetic.
type TaxType int

const (
	TaxCredit TaxType = iota
	TaxHSA
	TaxInheritedIRA
	TaxNonRothFourOhOneK
	TaxNonRothAnnuity
	TaxNonRothIRA
	TaxPension
	TaxRealEstate
	TaxRothFourOhOneK
	TaxRothAnnuity
	TaxRothIRA
	TaxTaxable
)

func (t TaxType) String() string {
	switch t {
	case TaxCredit:
		return "Credit"
	case TaxHSA:
		return "HSA"
	case TaxInheritedIRA:
		return "Inherited-IRA"
	case TaxNonRothFourOhOneK:
		return "Non-Roth-401k"
	case TaxNonRothAnnuity:
		return "Non-Roth-Annuity"
	case TaxNonRothIRA:
		return "Non-Roth-IRA"
	case TaxPension:
		return "Pension"
	case TaxRealEstate:
		return "Real-Estate"
	case TaxRothFourOhOneK:
		return "Roth-401k"
	case TaxRothAnnuity:
		return "Roth-Annuity"
	case TaxRothIRA:
		return "Roth-IRA"
	case TaxTaxable:
		return "Taxable"
	default:
		return "unknown"
	}
}

// SynthesizerKind names the strategy an account-value synthesizer uses to
// derive a pseudo-account value from other accounts and income streams.
type SynthesizerKind int

const (
	SynthesizerNone SynthesizerKind = iota
	SynthesizerAveraging
	SynthesizerCPIAnnuity
	SynthesizerNegation
	SynthesizerNoCPIAnnuity
	SynthesizerSocialSecurity
)

func (k SynthesizerKind) String() string {
	switch k {
	case SynthesizerAveraging:
		return "Averaging"
	case SynthesizerCPIAnnuity:
		return "CPI-Annuity"
	case SynthesizerNegation:
		return "Negation"
	case SynthesizerNoCPIAnnuity:
		return "No-CPI-Annuity"
	case SynthesizerSocialSecurity:
		return "Social-Security"
	default:
		return "none"
	}
}

// Account is a unit at one institution, identified by (institution,
// account-number), containing holdings and owning a rebalance order.
type Account struct {
	Key   AccountKey
	Order int // rebalance order within the owning portfolio; non-negative

	Procedure RebalanceProcedure
	TaxType   TaxType

	// Level1Weights are the account's own stock/bond/cash/real-estate targets,
	// overlaid on the portfolio's by the resolver.
	Level1Weights Level1Weights

	// Override, if non-nil, is the fine-grained weight override covering all
	// tree levels.
	Override *DetailWeights

	Synthesizer         SynthesizerKind
	SynthesizerAccounts []AccountKey // accounts the synthesizer reads from

	Holdings []Holding
}

// IsSynthesized reports whether this account's value is computed rather than
// observed.
func (a Account) IsSynthesized() bool { return a.Synthesizer != SynthesizerNone }
