// Package solver implements the generic fair-term bisection root finder
// (spec.md §4.7/§H): fair cap, fair participation, and fair GLWB fee all
// reduce to "find x in [lo, hi] such that objective(x) ~ 0".
package solver

import "github.com/aristath/annuity-pricer/internal/engerr"

// Bounds is the search interval for bisection.
type Bounds struct {
	Low  float64
	High float64
}

// Config controls a bisection run.
type Config struct {
	Bounds        Bounds
	Tolerance     float64
	MaxIterations int
}

// Objective maps a candidate term to a signed residual: positive means the
// term is too generous to the policyholder (guarantee too expensive to the
// insurer, lower the term), negative means it is too cheap (raise the term).
type Objective func(candidate float64) float64

// Bisect finds x such that |Objective(x)| < tol within MaxIterations,
// following the same probe/halve loop shape as
// original_source/.../glwb/path_sim.py's calculate_fair_fee. If the
// objective does not bracket a root with opposite signs at the bounds, that
// is reported as a NumericError rather than silently returning an endpoint.
func Bisect(cfg Config, objective Objective) (float64, error) {
	if cfg.Bounds.Low >= cfg.Bounds.High {
		return 0, &engerr.PreconditionError{Component: "solver", Invariant: "bounds.Low must be < bounds.High", Value: cfg.Bounds}
	}
	if cfg.MaxIterations <= 0 {
		return 0, &engerr.PreconditionError{Component: "solver", Invariant: "MaxIterations must be > 0", Value: cfg.MaxIterations}
	}

	low, high := cfg.Bounds.Low, cfg.Bounds.High
	lowVal := objective(low)
	highVal := objective(high)

	if sameSign(lowVal, highVal) {
		return 0, &engerr.NumericError{
			Component:  "solver",
			Invariant:  "objective must bracket a root (opposite signs at bounds)",
			Value:      [2]float64{lowVal, highVal},
			Iterations: 0,
		}
	}

	for i := 0; i < cfg.MaxIterations; i++ {
		mid := (low + high) / 2
		val := objective(mid)

		if absFloat(val) < cfg.Tolerance {
			return mid, nil
		}

		if sameSign(val, lowVal) {
			low = mid
			lowVal = val
		} else {
			high = mid
		}
	}

	return 0, &engerr.NumericError{
		Component:  "solver",
		Invariant:  "bisection did not converge within MaxIterations",
		Value:      (low + high) / 2,
		Iterations: cfg.MaxIterations,
	}
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0) || (a == 0 && b == 0)
}

func absFloat(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
