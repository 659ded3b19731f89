// Package scenario implements the correlated two-factor economic scenario
// generator (spec.md §4.8, component I): a Vasicek short-rate process
// correlated with a GBM equity process via a Cholesky-style shock
// construction, grounded on
// original_source/src/annuity_pricing/regulatory/scenarios.py.
package scenario

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/aristath/annuity-pricer/internal/engerr"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// VasicekParams are the short-rate model's mean-reversion parameters:
// dr = kappa*(theta - r)*dt + sigma*dW.
type VasicekParams struct {
	Kappa float64
	Theta float64
	Sigma float64
}

// DefaultVasicekParams mirrors the original implementation's defaults
// (kappa=0.20, theta=0.04, sigma=0.01).
func DefaultVasicekParams() VasicekParams {
	return VasicekParams{Kappa: 0.20, Theta: 0.04, Sigma: 0.01}
}

// EquityParams are the GBM equity process's drift and volatility.
type EquityParams struct {
	Mu    float64
	Sigma float64
}

// DefaultEquityParams mirrors the original's defaults (mu=0.07, sigma=0.18).
func DefaultEquityParams() EquityParams {
	return EquityParams{Mu: 0.07, Sigma: 0.18}
}

// EconomicScenario is a single projected path of annual short rates and
// annual equity simple returns, always the same length.
type EconomicScenario struct {
	Rates         []float64
	EquityReturns []float64
	ScenarioID    int
}

// AG43Scenarios is an AG43/VM-21 scenario bundle: a named collection of
// EconomicScenario paths of common length, suitable for CTE reserving.
type AG43Scenarios struct {
	BundleID        uuid.UUID
	Scenarios       []EconomicScenario
	NumScenarios    int
	ProjectionYears int
}

// RateMatrix returns the bundle's rate paths as an n_scenarios x
// projection_years dense matrix (spec.md §9's gonum/mat wiring), grounded on
// the original's get_rate_matrix.
func (b AG43Scenarios) RateMatrix() *mat.Dense {
	m := mat.NewDense(b.NumScenarios, b.ProjectionYears, nil)
	for i, s := range b.Scenarios {
		m.SetRow(i, s.Rates)
	}
	return m
}

// EquityMatrix returns the bundle's equity return paths as a dense matrix,
// grounded on the original's get_equity_matrix.
func (b AG43Scenarios) EquityMatrix() *mat.Dense {
	m := mat.NewDense(b.NumScenarios, b.ProjectionYears, nil)
	for i, s := range b.Scenarios {
		m.SetRow(i, s.EquityReturns)
	}
	return m
}

// GenerateConfig configures a single scenario-bundle generation run.
type GenerateConfig struct {
	NumScenarios    int
	ProjectionYears int
	Seed            uint64
	InitialRate     float64
	InitialEquity   float64
	RateParams      VasicekParams
	EquityParams    EquityParams
	Correlation     float64 // in [-1, 1]; typically negative (rates down, equities up)
}

// Generate builds an AG43 scenario bundle of correlated Vasicek rate paths
// and GBM equity return paths, following the original's
// generate_ag43_scenarios/_generate_correlated_shocks/_generate_vasicek_paths/
// _generate_gbm_returns in sequence.
func Generate(cfg GenerateConfig) (AG43Scenarios, error) {
	if cfg.NumScenarios <= 0 {
		return AG43Scenarios{}, &engerr.PreconditionError{Component: "scenario", Invariant: "NumScenarios must be > 0", Value: cfg.NumScenarios}
	}
	if cfg.ProjectionYears <= 0 {
		return AG43Scenarios{}, &engerr.PreconditionError{Component: "scenario", Invariant: "ProjectionYears must be > 0", Value: cfg.ProjectionYears}
	}
	if cfg.Correlation < -1 || cfg.Correlation > 1 {
		return AG43Scenarios{}, &engerr.PreconditionError{Component: "scenario", Invariant: "Correlation must be in [-1, 1]", Value: cfg.Correlation}
	}
	if cfg.InitialRate < 0 {
		return AG43Scenarios{}, &engerr.PreconditionError{Component: "scenario", Invariant: "InitialRate must be >= 0", Value: cfg.InitialRate}
	}
	if cfg.EquityParams.Sigma < 0 {
		return AG43Scenarios{}, &engerr.PreconditionError{Component: "scenario", Invariant: "EquityParams.Sigma must be >= 0", Value: cfg.EquityParams.Sigma}
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed>>32|1))

	rateShocks := make([][]float64, cfg.NumScenarios)
	equityShocks := make([][]float64, cfg.NumScenarios)
	sqrtOneMinusRhoSq := math.Sqrt(1 - cfg.Correlation*cfg.Correlation)

	for i := 0; i < cfg.NumScenarios; i++ {
		rateShocks[i] = make([]float64, cfg.ProjectionYears)
		equityShocks[i] = make([]float64, cfg.ProjectionYears)
		for t := 0; t < cfg.ProjectionYears; t++ {
			z1 := rng.NormFloat64()
			z2 := rng.NormFloat64()
			rateShocks[i][t] = z1
			equityShocks[i][t] = cfg.Correlation*z1 + sqrtOneMinusRhoSq*z2
		}
	}

	scenarios := make([]EconomicScenario, cfg.NumScenarios)
	for i := 0; i < cfg.NumScenarios; i++ {
		scenarios[i] = EconomicScenario{
			Rates:         vasicekPath(cfg.InitialRate, cfg.RateParams, rateShocks[i]),
			EquityReturns: gbmReturns(cfg.EquityParams, equityShocks[i]),
			ScenarioID:    i,
		}
	}

	return AG43Scenarios{
		BundleID:        uuid.New(),
		Scenarios:       scenarios,
		NumScenarios:    cfg.NumScenarios,
		ProjectionYears: cfg.ProjectionYears,
	}, nil
}

// vasicekPath advances r_{t+1} = r_t + kappa*(theta-r_t) + sigma*Z_t with an
// annual step, floored at zero, matching the original's Euler discretization
// with dt=1.
func vasicekPath(initialRate float64, p VasicekParams, shocks []float64) []float64 {
	rates := make([]float64, len(shocks))
	prev := initialRate
	for t, z := range shocks {
		next := prev + p.Kappa*(p.Theta-prev) + p.Sigma*z
		if next < 0 {
			next = 0
		}
		rates[t] = next
		prev = next
	}
	return rates
}

// gbmReturns converts standard normal shocks into annual simple returns via
// log_return = (mu - sigma^2/2) + sigma*Z, return = exp(log_return) - 1.
func gbmReturns(p EquityParams, shocks []float64) []float64 {
	returns := make([]float64, len(shocks))
	drift := p.Mu - 0.5*p.Sigma*p.Sigma
	for t, z := range shocks {
		returns[t] = math.Exp(drift+p.Sigma*z) - 1
	}
	return returns
}

// DeterministicScenarios builds the base/rate-up/rate-down VM-22 prescribed
// stress triplet, grounded on the original's generate_deterministic_scenarios:
// a flat base path, a +2% rate / -2% equity stress, and a -2% rate (floored
// at 0) / +2% equity stress.
func DeterministicScenarios(years int, baseRate, baseEquity float64) []EconomicScenario {
	constPath := func(v float64) []float64 {
		p := make([]float64, years)
		for i := range p {
			p[i] = v
		}
		return p
	}

	rateDown := baseRate - 0.02
	if rateDown < 0 {
		rateDown = 0
	}

	return []EconomicScenario{
		{Rates: constPath(baseRate), EquityReturns: constPath(baseEquity), ScenarioID: 0},
		{Rates: constPath(baseRate + 0.02), EquityReturns: constPath(baseEquity - 0.02), ScenarioID: 1},
		{Rates: constPath(rateDown), EquityReturns: constPath(baseEquity + 0.02), ScenarioID: 2},
	}
}

// Statistics summarizes a scenario bundle, grounded on the original's
// calculate_scenario_statistics.
type Statistics struct {
	RateMean              float64
	RateStdDev            float64
	RateMin               float64
	RateMax               float64
	TerminalRateMean      float64
	TerminalRate5Pct      float64
	TerminalRate95Pct     float64
	EquityReturnMean      float64
	EquityReturnStdDev    float64
	CumulativeReturnMean  float64
	CumulativeReturn5Pct  float64
	CumulativeReturn95Pct float64
	NumScenarios          int
	ProjectionYears       int
}

// CalculateStatistics flattens the bundle's rate and equity matrices and
// computes summary statistics, including 5th/95th percentile terminal rates
// and cumulative equity returns per scenario.
func CalculateStatistics(b AG43Scenarios) Statistics {
	var allRates, allEquity []float64
	terminalRates := make([]float64, b.NumScenarios)
	cumulativeEquity := make([]float64, b.NumScenarios)

	for i, s := range b.Scenarios {
		allRates = append(allRates, s.Rates...)
		allEquity = append(allEquity, s.EquityReturns...)

		terminalRates[i] = s.Rates[len(s.Rates)-1]

		cum := 1.0
		for _, r := range s.EquityReturns {
			cum *= 1 + r
		}
		cumulativeEquity[i] = cum - 1
	}

	return Statistics{
		RateMean:              stat.Mean(allRates, nil),
		RateStdDev:            stat.StdDev(allRates, nil),
		RateMin:               minFloat(allRates),
		RateMax:               maxFloat(allRates),
		TerminalRateMean:      stat.Mean(terminalRates, nil),
		TerminalRate5Pct:      percentile(terminalRates, 0.05),
		TerminalRate95Pct:     percentile(terminalRates, 0.95),
		EquityReturnMean:      stat.Mean(allEquity, nil),
		EquityReturnStdDev:    stat.StdDev(allEquity, nil),
		CumulativeReturnMean:  stat.Mean(cumulativeEquity, nil),
		CumulativeReturn5Pct:  percentile(cumulativeEquity, 0.05),
		CumulativeReturn95Pct: percentile(cumulativeEquity, 0.95),
		NumScenarios:          b.NumScenarios,
		ProjectionYears:       b.ProjectionYears,
	}
}

// percentile computes the p-th quantile (p in [0,1]) via gonum/stat's
// empirical CDF quantile over a sorted copy, matching numpy's default
// linear-interpolation percentile behavior closely enough for reporting.
func percentile(data []float64, p float64) float64 {
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

func minFloat(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func maxFloat(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}
