package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsNonPositiveSpot(t *testing.T) {
	_, err := New(0, 0.05, 0.02, 0.2)
	require.Error(t, err)
}

func TestNew_RejectsNegativeVolatility(t *testing.T) {
	_, err := New(100, 0.05, 0.02, -0.1)
	require.Error(t, err)
}

func TestNew_Valid(t *testing.T) {
	p, err := New(100, 0.05, 0.02, 0.2)
	require.NoError(t, err)
	assert.Equal(t, 100.0, p.Spot)
}

func TestYieldCurve_InterpolatesLinearlyInYield(t *testing.T) {
	curve, err := NewYieldCurve([]CurvePoint{
		{TenorYears: 1, ZeroRate: 0.03},
		{TenorYears: 5, ZeroRate: 0.04},
		{TenorYears: 10, ZeroRate: 0.045},
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.03, curve.ZeroRate(1), 1e-12)
	assert.InDelta(t, 0.045, curve.ZeroRate(10), 1e-12)
	// Midpoint between 1y (3%) and 5y (4%) at 3y: 3 + (3-1)/(5-1)*(4-3) = 3.5%
	assert.InDelta(t, 0.035, curve.ZeroRate(3), 1e-12)
}

func TestYieldCurve_FlatExtrapolation(t *testing.T) {
	curve, err := NewYieldCurve([]CurvePoint{
		{TenorYears: 1, ZeroRate: 0.03},
		{TenorYears: 5, ZeroRate: 0.04},
	})
	require.NoError(t, err)

	assert.Equal(t, 0.03, curve.ZeroRate(0.5))
	assert.Equal(t, 0.04, curve.ZeroRate(30))
}

func TestNewYieldCurve_RejectsDuplicateTenor(t *testing.T) {
	_, err := NewYieldCurve([]CurvePoint{
		{TenorYears: 1, ZeroRate: 0.03},
		{TenorYears: 1, ZeroRate: 0.04},
	})
	require.Error(t, err)
}

func TestNewYieldCurve_RejectsEmpty(t *testing.T) {
	_, err := NewYieldCurve(nil)
	require.Error(t, err)
}
