package behavior

import (
	"math"

	"github.com/aristath/annuity-pricer/internal/engerr"
)

// WithdrawalAssumptions are the utilization model's tunable parameters.
type WithdrawalAssumptions struct {
	BaseUtilization float64
	AgeSensitivity  float64
	MinUtilization  float64
	MaxUtilization  float64
}

// DefaultWithdrawalAssumptions mirrors the original's dataclass defaults.
func DefaultWithdrawalAssumptions() WithdrawalAssumptions {
	return WithdrawalAssumptions{
		BaseUtilization: 0.70,
		AgeSensitivity:  0.01,
		MinUtilization:  0.30,
		MaxUtilization:  1.00,
	}
}

// WithdrawalResult is the utilization model's output.
type WithdrawalResult struct {
	WithdrawalAmount float64
	UtilizationRate  float64
	MaxAllowed       float64
}

// CalculateWithdrawal computes the expected withdrawal amount (spec.md
// §4.6): max_allowed = GWB*withdrawalRate; utilization ramps through
// (0.7, 0.8, 0.9) over the first three withdrawal years, then ages upward
// past 65, clipped to [min, max].
func CalculateWithdrawal(a WithdrawalAssumptions, gwb, withdrawalRate float64, age, yearsSinceFirstWithdrawal int) (WithdrawalResult, error) {
	if gwb < 0 {
		return WithdrawalResult{}, &engerr.PreconditionError{Component: "behavior.withdrawal", Invariant: "GWB must be >= 0", Value: gwb}
	}
	if withdrawalRate < 0 || withdrawalRate > 1 {
		return WithdrawalResult{}, &engerr.PreconditionError{Component: "behavior.withdrawal", Invariant: "withdrawal rate must be in [0,1]", Value: withdrawalRate}
	}

	maxAllowed := gwb * withdrawalRate
	utilization := Utilization(a, age, yearsSinceFirstWithdrawal)

	return WithdrawalResult{
		WithdrawalAmount: maxAllowed * utilization,
		UtilizationRate:  utilization,
		MaxAllowed:       maxAllowed,
	}, nil
}

// Utilization computes u(age, yearsSinceFirstWithdrawal): base utilization
// plus an age adjustment past 65, ramped by (0.7, 0.8, 0.9) in the first
// three withdrawal years, clipped to [min, max].
func Utilization(a WithdrawalAssumptions, age, yearsSinceFirstWithdrawal int) float64 {
	utilization := a.BaseUtilization
	utilization += a.AgeSensitivity * math.Max(0, float64(age-65))

	if yearsSinceFirstWithdrawal < 3 {
		ramp := 0.7 + 0.1*float64(yearsSinceFirstWithdrawal)
		utilization *= ramp
	}

	return clip(utilization, a.MinUtilization, a.MaxUtilization)
}
