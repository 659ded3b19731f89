// Package reserve implements the CTE (Conditional Tail Expectation) reserve
// calculator (spec.md §4.9, component J): given a per-scenario liability PV
// set, sort ascending and average the worst (1-alpha) tail, grounded on
// original_source's calculate_scenario_statistics sort-and-tail-index
// pattern (scripts/figures/plot_vm21_cte_sensitivity.py) generalized to an
// arbitrary alpha per spec.md §4.9.
package reserve

import (
	"sort"

	"github.com/aristath/annuity-pricer/internal/behavior"
	"github.com/aristath/annuity-pricer/internal/engerr"
	"github.com/aristath/annuity-pricer/internal/glwb"
	"github.com/aristath/annuity-pricer/internal/gwb"
	"github.com/aristath/annuity-pricer/internal/scenario"
	"gonum.org/v1/gonum/stat"
)

// ScenarioPV is one scenario's projected liability present value, carrying
// enough identity to trace which tail scenarios drove the reserve.
type ScenarioPV struct {
	ScenarioID int
	PV         float64
}

// Result is the CTE reserve calculator's output (spec.md §3 ReserveResult).
type Result struct {
	CTE70         float64
	CTE50         float64
	Mean          float64
	StdDev        float64
	TailScenarios []int // scenario IDs in the worst (1-alpha) fraction at CTE70
	NumScenarios  int
}

// ProjectLiability deterministically replays one scenario's own realized
// rate and equity return sequence, year by year, through the GWB tracker
// (component E) and returns the PV of net insurer cash flows (guarantee
// payments once AV is exhausted, less rider fees collected), per spec.md
// §4.9: "run a liability projection under that scenario's rate path (used
// for discount) and equity path (used as AV return)". The GWB ratchet/
// rollup/ruin-timing state machine is path-order-dependent (internal/gwb's
// `Step` folds state forward one year at a time), so the scenario's realized
// sequence is replayed directly rather than reduced to summary statistics
// and re-sampled through a fresh Monte Carlo probe — two scenarios sharing a
// mean and stddev but differing in early-vs-late equity drawdown timing must
// project to different liabilities, and only a faithful replay preserves
// that.
//
// Mortality decrement is applied as an expected-value survival weight
// (cumulative product of (1-qx)) rather than a per-scenario random draw: the
// scenario bundle is already the engine's single source of randomness for
// reserving, so this keeps ProjectLiability a deterministic function of one
// EconomicScenario rather than layering a second, uncontrolled Monte Carlo
// draw on top of it.
func ProjectLiability(s scenario.EconomicScenario, policy glwb.Inputs) (float64, error) {
	if len(s.Rates) != len(s.EquityReturns) {
		return 0, &engerr.PreconditionError{Component: "reserve", Invariant: "scenario Rates and EquityReturns must be the same length", Value: len(s.Rates)}
	}
	if policy.Premium <= 0 {
		return 0, &engerr.PreconditionError{Component: "reserve", Invariant: "policy premium must be > 0", Value: policy.Premium}
	}

	maxAge := policy.MaxAge
	if maxAge == 0 {
		maxAge = 100
	}
	nYears := len(s.Rates)
	if policy.Age+nYears > maxAge {
		nYears = maxAge - policy.Age
	}

	if policy.UtilizationModel == (behavior.WithdrawalAssumptions{}) {
		policy.UtilizationModel = behavior.DefaultWithdrawalAssumptions()
	}
	mortality := behavior.TableOrFallback(policy.MortalityTable)
	state := gwb.InitialState(policy.Premium)

	age := policy.Age
	yearsSinceFirstWithdrawal := 0
	withdrawalBegan := false
	survival := 1.0
	discount := 1.0
	var pvInsurer float64

	for t := 0; t < nYears; t++ {
		discount /= 1 + s.Rates[t]
		qx := mortality(age)

		maxWithdrawal := policy.GWBConfig.MaxWithdrawal(state)
		utilization := behavior.Utilization(policy.UtilizationModel, age, yearsSinceFirstWithdrawal)
		withdrawal := maxWithdrawal * utilization

		result, err := gwb.Step(policy.GWBConfig, state, s.EquityReturns[t], 1.0, withdrawal)
		if err != nil {
			return 0, err
		}
		state = result.NewState

		if result.WithdrawalTaken > 0 {
			if !withdrawalBegan {
				withdrawalBegan = true
			} else {
				yearsSinceFirstWithdrawal++
			}
		}

		if state.AV <= 0 {
			pvInsurer += maxWithdrawal * discount * survival
		}
		pvInsurer -= result.FeesCharged * discount * survival

		survival *= 1 - qx
		age++
	}

	return pvInsurer, nil
}

// Calculate runs the CTE reserve calculation over a pre-computed set of
// per-scenario liability PVs: sort ascending, then CTE(alpha) is the mean of
// the worst (1-alpha) fraction, where "worst" means largest liability
// (largest PV, at the end of the ascending sort).
func Calculate(pvs []ScenarioPV) (Result, error) {
	if len(pvs) == 0 {
		return Result{}, &engerr.PreconditionError{Component: "reserve", Invariant: "pvs must be non-empty", Value: len(pvs)}
	}

	sorted := append([]ScenarioPV(nil), pvs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PV < sorted[j].PV })

	values := make([]float64, len(sorted))
	for i, p := range sorted {
		values[i] = p.PV
	}

	cte70, tailIDs := cte(sorted, 0.70)
	cte50, _ := cte(sorted, 0.50)

	return Result{
		CTE70:         cte70,
		CTE50:         cte50,
		Mean:          stat.Mean(values, nil),
		StdDev:        stat.StdDev(values, nil),
		TailScenarios: tailIDs,
		NumScenarios:  len(pvs),
	}, nil
}

// CTE computes CTE(alpha) for an arbitrary alpha in (0,1), exposed
// separately so callers needing levels other than 70/50 are not forced
// through Calculate's fixed pair.
func CTE(pvs []ScenarioPV, alpha float64) (float64, error) {
	if alpha <= 0 || alpha >= 1 {
		return 0, &engerr.PreconditionError{Component: "reserve", Invariant: "alpha must be in (0, 1)", Value: alpha}
	}
	if len(pvs) == 0 {
		return 0, &engerr.PreconditionError{Component: "reserve", Invariant: "pvs must be non-empty", Value: len(pvs)}
	}

	sorted := append([]ScenarioPV(nil), pvs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PV < sorted[j].PV })

	value, _ := cte(sorted, alpha)
	return value, nil
}

// cte assumes pvs is already sorted ascending by PV and averages the worst
// (1-alpha) fraction — the tail at the high end of the ascending sort.
func cte(sortedAscending []ScenarioPV, alpha float64) (float64, []int) {
	n := len(sortedAscending)
	tailSize := int(float64(n) * (1 - alpha))
	if tailSize < 1 {
		tailSize = 1
	}

	tail := sortedAscending[n-tailSize:]
	var sum float64
	ids := make([]int, len(tail))
	for i, p := range tail {
		sum += p.PV
		ids[i] = p.ScenarioID
	}
	return sum / float64(len(tail)), ids
}
