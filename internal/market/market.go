// Package market holds the immutable market-parameter value type shared by
// value across every pricer and the Monte Carlo engine, plus a linear
// yield-curve interpolator for multi-maturity discounting (spec.md §6).
package market

import (
	"fmt"
	"sort"
)

// Params is an immutable market-data snapshot: spot S>0, risk-free r,
// dividend q, and volatility σ≥0. Shared by value — never mutated after
// construction.
type Params struct {
	Spot          float64
	RiskFreeRate  float64
	DividendYield float64
	Volatility    float64
}

// New validates and constructs Params. Invalid inputs fail at construction,
// never silently clipped (spec.md §7).
func New(spot, riskFreeRate, dividendYield, volatility float64) (Params, error) {
	if spot <= 0 {
		return Params{}, fmt.Errorf("market: spot must be > 0, got %v", spot)
	}
	if volatility < 0 {
		return Params{}, fmt.Errorf("market: volatility must be >= 0, got %v", volatility)
	}
	return Params{
		Spot:          spot,
		RiskFreeRate:  riskFreeRate,
		DividendYield: dividendYield,
		Volatility:    volatility,
	}, nil
}

// CurvePoint is one (tenor in years, zero rate) observation.
type CurvePoint struct {
	TenorYears float64
	ZeroRate   float64
}

// YieldCurve is an immutable, linearly-interpolated-in-yield term structure.
// Nelson-Siegel fitting is explicitly an upstream transform per spec.md §6
// and is not implemented here; the curve only interpolates points it is
// given.
type YieldCurve struct {
	points []CurvePoint // sorted ascending by TenorYears
}

// NewYieldCurve validates and sorts the supplied points.
func NewYieldCurve(points []CurvePoint) (YieldCurve, error) {
	if len(points) == 0 {
		return YieldCurve{}, fmt.Errorf("market: yield curve requires at least one point")
	}
	sorted := make([]CurvePoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].TenorYears < sorted[j].TenorYears })
	for i, p := range sorted {
		if p.TenorYears < 0 {
			return YieldCurve{}, fmt.Errorf("market: tenor must be >= 0, got %v", p.TenorYears)
		}
		if i > 0 && sorted[i-1].TenorYears == p.TenorYears {
			return YieldCurve{}, fmt.Errorf("market: duplicate tenor %v in yield curve", p.TenorYears)
		}
	}
	return YieldCurve{points: sorted}, nil
}

// ZeroRate returns the zero rate at tenor, linearly interpolated in yield
// between the two bracketing curve points. Tenors outside the curve's range
// are flat-extrapolated from the nearest endpoint.
func (c YieldCurve) ZeroRate(tenorYears float64) float64 {
	pts := c.points
	if tenorYears <= pts[0].TenorYears {
		return pts[0].ZeroRate
	}
	last := pts[len(pts)-1]
	if tenorYears >= last.TenorYears {
		return last.ZeroRate
	}
	for i := 1; i < len(pts); i++ {
		if tenorYears <= pts[i].TenorYears {
			lo, hi := pts[i-1], pts[i]
			weight := (tenorYears - lo.TenorYears) / (hi.TenorYears - lo.TenorYears)
			return lo.ZeroRate + weight*(hi.ZeroRate-lo.ZeroRate)
		}
	}
	return last.ZeroRate
}
