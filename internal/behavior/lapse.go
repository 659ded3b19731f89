// Package behavior implements the dynamic lapse law, withdrawal utilization
// model, and mortality lookup (spec.md §4.6, component F), grounded on
// original_source/src/annuity_pricing/behavioral/dynamic_lapse.py and
// withdrawal.py.
package behavior

import (
	"math"

	"github.com/aristath/annuity-pricer/internal/engerr"
)

// MoneynessDefinition documents, as a type-level constant, the resolution of
// spec.md §9's open question: the source flips AV/GWB vs GWB/AV across call
// sites; this port standardizes on m = AV/GWB, lapse non-decreasing in m
// (an in-the-money guarantee — AV small relative to GWB — deters lapses).
const MoneynessDefinition = "m = AV / GWB; lapse rate is non-decreasing in m"

// LapseAssumptions are the dynamic lapse law's tunable parameters.
type LapseAssumptions struct {
	BaseAnnualLapse float64
	MinLapse        float64
	MaxLapse        float64
	Sensitivity     float64
}

// DefaultLapseAssumptions mirrors the original's dataclass defaults.
func DefaultLapseAssumptions() LapseAssumptions {
	return LapseAssumptions{
		BaseAnnualLapse: 0.05,
		MinLapse:        0.01,
		MaxLapse:        0.25,
		Sensitivity:     1.0,
	}
}

// LapseResult is the dynamic lapse law's output for one evaluation.
type LapseResult struct {
	LapseRate        float64
	Moneyness        float64
	AdjustmentFactor float64
}

// CalculateLapse computes the dynamic, moneyness-responsive lapse rate
// (spec.md §4.6): m = AV/GWB (or 1 if GWB=0); factor = m^sensitivity; base
// rate is 0.2x during the surrender period and full otherwise; lapse rate
// is clipped to [minLapse, maxLapse].
func CalculateLapse(a LapseAssumptions, gwb, av float64, inSurrender bool) (LapseResult, error) {
	if av < 0 {
		return LapseResult{}, &engerr.PreconditionError{Component: "behavior.lapse", Invariant: "AV must be >= 0", Value: av}
	}
	if gwb < 0 {
		return LapseResult{}, &engerr.PreconditionError{Component: "behavior.lapse", Invariant: "GWB must be >= 0", Value: gwb}
	}

	moneyness := 1.0
	if gwb > 0 {
		moneyness = av / gwb
	}

	adjustment := math.Pow(moneyness, a.Sensitivity)

	base := a.BaseAnnualLapse
	if inSurrender {
		base *= 0.2
	}

	lapse := base * adjustment
	lapse = clip(lapse, a.MinLapse, a.MaxLapse)

	return LapseResult{
		LapseRate:        lapse,
		Moneyness:        moneyness,
		AdjustmentFactor: adjustment,
	}, nil
}

// SurvivalCurve computes cumulative survival probability over a path of
// annual lapse rates: survival_t = prod(1 - lapse_s*dt) for s in [0, t).
// The returned slice has len(lapseRates)+1 entries; survival[0] == 1.
func SurvivalCurve(lapseRates []float64, dt float64) []float64 {
	survival := make([]float64, len(lapseRates)+1)
	survival[0] = 1.0
	for t, lapse := range lapseRates {
		stay := math.Max(1.0-lapse*dt, 0.0)
		survival[t+1] = survival[t] * stay
	}
	return survival
}

func clip(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
