// Package gbm implements the risk-neutral geometric Brownian motion path
// sampler (spec.md §4.3, component C): terminal and stepwise samplers with
// antithetic pairing and fixed-seed, cross-platform determinism.
package gbm

import (
	"math"
	"math/rand/v2"

	"github.com/aristath/annuity-pricer/internal/market"
)

// Params are the GBM parameters a sampler needs beyond market.Params: the
// time horizon. The stepwise sampler always uses 12 monthly steps.
type Params struct {
	Market       market.Params
	TimeToExpiry float64
}

// NewPathRNG builds the per-path normal-deviate source for path index i
// under masterSeed. It uses math/rand/v2's PCG generator keyed directly by
// (masterSeed, path index) — a splittable, counter-style source, so the
// same (seed, path count) always reproduces the same per-path draws
// regardless of whether paths are generated serially or by a worker pool
// (spec.md §5, §9). See DESIGN.md for why this is stdlib, not a pack
// dependency.
func NewPathRNG(masterSeed uint64, pathIndex int) *rand.Rand {
	return rand.New(rand.NewPCG(masterSeed, uint64(pathIndex)))
}

// TerminalDraw samples one terminal value S_T = S * exp((r-q-sigma^2/2)T +
// sigma*sqrt(T)*Z) for a supplied standard normal Z. The caller supplies Z
// (rather than this function drawing it) so antithetic pairing can reuse a
// single Z and its negation without redrawing.
func TerminalDraw(p Params, z float64) float64 {
	m := p.Market
	drift := (m.RiskFreeRate - m.DividendYield - 0.5*m.Volatility*m.Volatility) * p.TimeToExpiry
	diffusion := m.Volatility * math.Sqrt(p.TimeToExpiry) * z
	return m.Spot * math.Exp(drift+diffusion)
}

// TerminalReturn converts a terminal index level into a simple return x =
// S_T/S - 1, the quantity the payoff algebra (component B) operates on.
func TerminalReturn(p Params, z float64) float64 {
	return TerminalDraw(p, z)/p.Market.Spot - 1
}

// AntitheticPair returns (z, -z) applied to TerminalReturn, evaluated
// adjacent to each other as required by spec.md §4.4 ("antithetic pairs
// evaluated adjacent to preserve variance reduction").
func AntitheticPair(p Params, z float64) (plus, minus float64) {
	return TerminalReturn(p, z), TerminalReturn(p, -z)
}

// StepwisePath draws a monthly (dt = T/12) path of 12 index levels under the
// same drift/diffusion each step, for the FIA monthly-average payoff.
// The returned slice has exactly 12 simple returns relative to the initial
// spot, i.e. xm[i] = S_{t_i}/S_0 - 1.
func StepwisePath(p Params, rng *rand.Rand) []float64 {
	const steps = 12
	dt := p.TimeToExpiry / float64(steps)
	m := p.Market
	drift := (m.RiskFreeRate - m.DividendYield - 0.5*m.Volatility*m.Volatility) * dt
	diffSigma := m.Volatility * math.Sqrt(dt)

	level := m.Spot
	returns := make([]float64, steps)
	for i := 0; i < steps; i++ {
		z := rng.NormFloat64()
		level *= math.Exp(drift + diffSigma*z)
		returns[i] = level/m.Spot - 1
	}
	return returns
}
