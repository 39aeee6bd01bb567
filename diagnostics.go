package portfolio

import "github.com/rs/zerolog"

// DiagnosticKind names the recoverable error taxonomy the engine surfaces
// instead of aborting a run. Every kind is attached to the most specific
// entity it concerns: a ticker, a leaf, an account or a portfolio.
type DiagnosticKind int

const (
	DiagnosticValidation DiagnosticKind = iota
	DiagnosticClassification
	DiagnosticInfeasibility
	DiagnosticPortfolioOvershoot
	DiagnosticCurveWarning
	DiagnosticBudgetExhaustion
)

func (k DiagnosticKind) String() string {
	switch k {
	case DiagnosticValidation:
		return "validation"
	case DiagnosticClassification:
		return "classification"
	case DiagnosticInfeasibility:
		return "infeasibility"
	case DiagnosticPortfolioOvershoot:
		return "portfolio-overshoot"
	case DiagnosticCurveWarning:
		return "curve-warning"
	case DiagnosticBudgetExhaustion:
		return "budget-exhaustion"
	default:
		return "unknown"
	}
}

// Status summarises an account's rebalance outcome.
type Status int

const (
	StatusOK Status = iota
	StatusPartial
	StatusInfeasible
)

func (s Status) String() string {
	switch s {
	case StatusPartial:
		return "partial"
	case StatusInfeasible:
		return "infeasible"
	default:
		return "ok"
	}
}

// Diagnostic is a recoverable condition the engine encountered while
// rebalancing, attached to the entity it most specifically concerns.
type Diagnostic struct {
	Kind    DiagnosticKind
	Entity  string // e.g. ticker symbol, leaf name, account key string
	Message string
}

func (d Diagnostic) Error() string { return d.Kind.String() + " on " + d.Entity + ": " + d.Message }

// MarshalZerologObject lets diagnostics be logged as structured fields
// via zerolog.
func (d Diagnostic) MarshalZerologObject(e *zerolog.Event) {
	e.Str("kind", d.Kind.String()).Str("entity", d.Entity).Str("message", d.Message)
}

// MarshalJSON renders a diagnostic the same way Money does, via
// jsonObjectWriter, so a report exported with -json carries diagnostics in
// their string form rather than the bare int kind.
func (d Diagnostic) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("kind", d.Kind.String())
	w.Append("entity", d.Entity)
	w.Append("message", d.Message)
	return w.MarshalJSON()
}

// MarshalJSON renders a status as its lowercase name rather than the bare
// int, for the same reason Diagnostic does.
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// NewDiagnostic is a small constructor used throughout the rebalance
// subpackage to keep diagnostic construction one-line at call sites.
func NewDiagnostic(kind DiagnosticKind, entity, message string) Diagnostic {
	return Diagnostic{Kind: kind, Entity: entity, Message: message}
}
