package optionpricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseInputs() Inputs {
	return Inputs{Spot: 100, Strike: 100, RiskFreeRate: 0.05, DividendYield: 0.02, Volatility: 0.20, TimeToExpiry: 1}
}

func TestCall_ConcreteScenario(t *testing.T) {
	result, err := Call(baseInputs())
	require.NoError(t, err)

	assert.InDelta(t, 9.227, result.Price, 1e-2)
	assert.InDelta(t, 0.614, result.Greeks.Delta, 1e-2)
	assert.InDelta(t, 0.019, result.Greeks.Gamma, 2e-3)
	assert.InDelta(t, 0.365, result.Greeks.Vega, 2e-2)
	assert.InDelta(t, -0.016, result.Greeks.Theta, 2e-3)
	assert.InDelta(t, 0.512, result.Greeks.Rho, 2e-2)
}

func TestPutCallParity(t *testing.T) {
	for _, in := range []Inputs{
		baseInputs(),
		{Spot: 50, Strike: 60, RiskFreeRate: 0.01, DividendYield: 0, Volatility: 0.35, TimeToExpiry: 2},
		{Spot: 200, Strike: 150, RiskFreeRate: 0.08, DividendYield: 0.04, Volatility: 0.5, TimeToExpiry: 0.25},
	} {
		call, err := Call(in)
		require.NoError(t, err)
		put, err := Put(in)
		require.NoError(t, err)

		lhs := call.Price - put.Price
		rhs := in.Spot*math.Exp(-in.DividendYield*in.TimeToExpiry) - in.Strike*math.Exp(-in.RiskFreeRate*in.TimeToExpiry)
		assert.InDelta(t, rhs, lhs, 1e-10)
	}
}

func TestIntrinsicCollapse_ZeroVol(t *testing.T) {
	in := baseInputs()
	in.Volatility = 0
	in.Spot = 110

	call, err := Call(in)
	require.NoError(t, err)
	assert.Equal(t, 10.0, call.Price)

	put, err := Put(in)
	require.NoError(t, err)
	assert.Equal(t, 0.0, put.Price)
}

func TestIntrinsicCollapse_ZeroTime(t *testing.T) {
	in := baseInputs()
	in.TimeToExpiry = 0
	in.Spot = 90

	call, err := Call(in)
	require.NoError(t, err)
	assert.Equal(t, 0.0, call.Price)

	put, err := Put(in)
	require.NoError(t, err)
	assert.Equal(t, 10.0, put.Price)
}

func TestNonPositiveStrike_Fails(t *testing.T) {
	in := baseInputs()
	in.Strike = 0
	_, err := Call(in)
	require.Error(t, err)
}

func TestNegativeVolatility_Fails(t *testing.T) {
	in := baseInputs()
	in.Volatility = -0.1
	_, err := Call(in)
	require.Error(t, err)
}

func TestCappedCall_ReplicatesCallSpread(t *testing.T) {
	in := baseInputs()
	capped, err := CappedCall(100, 108, in)
	require.NoError(t, err)

	low, err := Call(Inputs{Spot: in.Spot, Strike: 100, RiskFreeRate: in.RiskFreeRate, DividendYield: in.DividendYield, Volatility: in.Volatility, TimeToExpiry: in.TimeToExpiry})
	require.NoError(t, err)
	high, err := Call(Inputs{Spot: in.Spot, Strike: 108, RiskFreeRate: in.RiskFreeRate, DividendYield: in.DividendYield, Volatility: in.Volatility, TimeToExpiry: in.TimeToExpiry})
	require.NoError(t, err)

	assert.InDelta(t, low.Price-high.Price, capped, 1e-10)
}

func TestDigitalCall_MatchesDiscountedProbability(t *testing.T) {
	in := baseInputs()
	digital, err := DigitalCall(in, 1.0)
	require.NoError(t, err)

	_, d2 := d1d2(in)
	expected := math.Exp(-in.RiskFreeRate*in.TimeToExpiry) * normCDF(d2)
	assert.InDelta(t, expected, digital, 1e-12)
}

func TestBufferPutSpread_ReplicatesPutSpread(t *testing.T) {
	in := baseInputs()
	spread, err := BufferPutSpread(100, 90, in)
	require.NoError(t, err)

	atm, err := Put(Inputs{Spot: in.Spot, Strike: 100, RiskFreeRate: in.RiskFreeRate, DividendYield: in.DividendYield, Volatility: in.Volatility, TimeToExpiry: in.TimeToExpiry})
	require.NoError(t, err)
	otm, err := Put(Inputs{Spot: in.Spot, Strike: 90, RiskFreeRate: in.RiskFreeRate, DividendYield: in.DividendYield, Volatility: in.Volatility, TimeToExpiry: in.TimeToExpiry})
	require.NoError(t, err)

	assert.InDelta(t, atm.Price-otm.Price, spread, 1e-10)
}
