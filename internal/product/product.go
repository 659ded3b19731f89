// Package product implements the tagged-variant Product model (spec.md §3):
// MYGA, FIA, and RILA share a header and carry one kind-specific payload,
// modeled as a Go struct with a Kind discriminant rather than an inheritance
// hierarchy, per spec.md §9's "Dynamic dispatch over product kind" note.
package product

import "github.com/aristath/annuity-pricer/internal/engerr"

// Kind discriminates the product variant.
type Kind int

const (
	KindMYGA Kind = iota
	KindFIA
	KindRILA
)

func (k Kind) String() string {
	switch k {
	case KindMYGA:
		return "MYGA"
	case KindFIA:
		return "FIA"
	case KindRILA:
		return "RILA"
	default:
		return "unknown"
	}
}

// Header is the shared record every product carries regardless of kind.
type Header struct {
	Company string
	Name    string
	Status  string
}

// MYGA is a Multi-Year Guaranteed Annuity: a fixed credited rate over a
// fixed guarantee duration.
type MYGA struct {
	FixedRate            float64
	GuaranteeDurationYrs int
}

// CreditingMethod identifies which FIA payoff algebra applies, derived from
// which crediting field is set (priority cap > participation > spread >
// trigger, per spec.md §3).
type CreditingMethod int

const (
	CreditingCapped CreditingMethod = iota
	CreditingParticipation
	CreditingSpread
	CreditingTrigger
)

// FIA is a Fixed Indexed Annuity. Exactly one crediting field is expected to
// be set by priority cap > participation > spread > trigger; Method()
// derives which algebra applies.
type FIA struct {
	CapRate           *float64
	ParticipationRate *float64
	SpreadRate        *float64
	TriggerRate       *float64
	Index             string
	IndexingMethod    string
	TermYears         int
}

// Method derives the crediting method from which field is set, in priority
// order cap > participation > spread > trigger (spec.md §3).
func (f FIA) Method() (CreditingMethod, error) {
	switch {
	case f.CapRate != nil:
		return CreditingCapped, nil
	case f.ParticipationRate != nil:
		return CreditingParticipation, nil
	case f.SpreadRate != nil:
		return CreditingSpread, nil
	case f.TriggerRate != nil:
		return CreditingTrigger, nil
	default:
		return 0, &engerr.PreconditionError{Component: "product", Invariant: "FIA requires at least one crediting field", Value: f}
	}
}

// ProtectionKind distinguishes RILA's two downside-protection shapes, which
// must never be conflated (spec.md §4.2).
type ProtectionKind int

const (
	ProtectionBuffer ProtectionKind = iota
	ProtectionFloor
)

// Protection is RILA's downside protection tag and rate.
type Protection struct {
	Kind ProtectionKind
	Rate float64 // in (0, 1)
}

// DeriveProtectionKind maps the textual modifier convention spec.md §3
// describes ("up to" => Buffer, "after" => Floor) onto ProtectionKind, for
// callers ingesting product records that only carry descriptive text.
func DeriveProtectionKind(modifier string) (ProtectionKind, error) {
	switch modifier {
	case "up to":
		return ProtectionBuffer, nil
	case "after":
		return ProtectionFloor, nil
	default:
		return 0, &engerr.PreconditionError{Component: "product", Invariant: `protection modifier must be "up to" or "after"`, Value: modifier}
	}
}

// RILA is a Registered Index-Linked Annuity.
type RILA struct {
	Protection Protection
	CapRate    *float64
	TermYears  int
	Index      string
}

// Product is the tagged variant: Header plus exactly one populated payload
// selected by Kind. Fields for kinds other than Kind are left zero.
type Product struct {
	Header Header
	Kind   Kind
	MYGA   MYGA
	FIA    FIA
	RILA   RILA
}

// Validate enforces the per-kind required-field invariants spec.md §3/§6
// mandates: missing required fields fail at construction, never default.
func Validate(p Product) error {
	switch p.Kind {
	case KindMYGA:
		if p.MYGA.FixedRate < 0 {
			return &engerr.PreconditionError{Component: "product", Invariant: "MYGA.FixedRate must be >= 0", Value: p.MYGA.FixedRate}
		}
		if p.MYGA.GuaranteeDurationYrs < 1 {
			return &engerr.PreconditionError{Component: "product", Invariant: "MYGA.GuaranteeDurationYears must be >= 1", Value: p.MYGA.GuaranteeDurationYrs}
		}
	case KindFIA:
		if _, err := p.FIA.Method(); err != nil {
			return err
		}
		if p.FIA.TermYears < 1 {
			return &engerr.PreconditionError{Component: "product", Invariant: "FIA.TermYears must be >= 1", Value: p.FIA.TermYears}
		}
	case KindRILA:
		if p.RILA.Protection.Rate <= 0 || p.RILA.Protection.Rate >= 1 {
			return &engerr.PreconditionError{Component: "product", Invariant: "RILA.Protection.Rate must be in (0, 1)", Value: p.RILA.Protection.Rate}
		}
		if p.RILA.TermYears < 1 {
			return &engerr.PreconditionError{Component: "product", Invariant: "RILA.TermYears must be >= 1", Value: p.RILA.TermYears}
		}
	default:
		return &engerr.PreconditionError{Component: "product", Invariant: "unknown product kind", Value: p.Kind}
	}
	return nil
}

// MaxLoss returns the RILA's maximum possible loss fraction: 1-bufferRate
// for Buffer protection (losses beyond the buffer are 1:1), or floorRate for
// Floor protection (losses are capped at the floor), per spec.md §4.2's
// validator max_loss field definition.
func (r RILA) MaxLoss() float64 {
	if r.Protection.Kind == ProtectionBuffer {
		return 1 - r.Protection.Rate
	}
	return r.Protection.Rate
}
