// Package engerr defines the engine's error taxonomy (spec.md §7):
// PreconditionError, NumericError, ValidationHaltError, and DataError. Every
// failure carries the failing component, the violated invariant, and the
// offending value so callers never have to parse a message string to react.
package engerr

import "fmt"

// PreconditionError is raised at a call boundary before any computation —
// negative volatility, non-positive spot, invalid percentile, a missing
// crediting field on an FIA, etc.
type PreconditionError struct {
	Component string
	Invariant string
	Value     any
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition violated in %s: %s (value=%v)", e.Component, e.Invariant, e.Value)
}

// NumericError is raised when a numerical procedure fails to produce a
// usable answer: bisection did not converge, a closed form produced NaN.
// It always carries the offending value and the iteration count — numerical
// failures are never silently clipped.
type NumericError struct {
	Component  string
	Invariant  string
	Value      any
	Iterations int
}

func (e *NumericError) Error() string {
	return fmt.Sprintf("numeric error in %s: %s (value=%v, iterations=%d)", e.Component, e.Invariant, e.Value, e.Iterations)
}

// DataError signals malformed caller-supplied data, e.g. a scenario bundle
// whose rate and equity matrices have mismatched shapes.
type DataError struct {
	Component string
	Invariant string
	Value     any
}

func (e *DataError) Error() string {
	return fmt.Sprintf("data error in %s: %s (value=%v)", e.Component, e.Invariant, e.Value)
}

// ValidationHaltError wraps a validation report whose overall status is
// HALT. No function in this module returns it: there is no ensure-valid
// call variant, and Validate hands back its report without raising a HALT.
type ValidationHaltError struct {
	Message string
}

func (e *ValidationHaltError) Error() string {
	return fmt.Sprintf("validation halt: %s", e.Message)
}
