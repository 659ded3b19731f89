package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_ShapeMatchesConfig(t *testing.T) {
	cfg := GenerateConfig{
		NumScenarios:    200,
		ProjectionYears: 30,
		Seed:            42,
		InitialRate:     0.04,
		InitialEquity:   100,
		RateParams:      DefaultVasicekParams(),
		EquityParams:    DefaultEquityParams(),
		Correlation:     -0.20,
	}
	bundle, err := Generate(cfg)
	require.NoError(t, err)
	assert.Equal(t, 200, bundle.NumScenarios)
	assert.Equal(t, 30, bundle.ProjectionYears)
	assert.Len(t, bundle.Scenarios, 200)
	for _, s := range bundle.Scenarios {
		assert.Len(t, s.Rates, 30)
		assert.Len(t, s.EquityReturns, 30)
	}
}

func TestGenerate_DeterministicGivenSeed(t *testing.T) {
	cfg := GenerateConfig{
		NumScenarios: 50, ProjectionYears: 10, Seed: 7,
		InitialRate: 0.03, RateParams: DefaultVasicekParams(), EquityParams: DefaultEquityParams(),
		Correlation: -0.2,
	}
	a, err := Generate(cfg)
	require.NoError(t, err)
	b, err := Generate(cfg)
	require.NoError(t, err)

	for i := range a.Scenarios {
		assert.Equal(t, a.Scenarios[i].Rates, b.Scenarios[i].Rates)
		assert.Equal(t, a.Scenarios[i].EquityReturns, b.Scenarios[i].EquityReturns)
	}
}

func TestGenerate_RatesNeverNegative(t *testing.T) {
	cfg := GenerateConfig{
		NumScenarios: 100, ProjectionYears: 30, Seed: 99,
		InitialRate:  0.01,
		RateParams:   VasicekParams{Kappa: 0.2, Theta: 0.01, Sigma: 0.05},
		EquityParams: DefaultEquityParams(),
		Correlation:  0,
	}
	bundle, err := Generate(cfg)
	require.NoError(t, err)
	for _, s := range bundle.Scenarios {
		for _, r := range s.Rates {
			assert.GreaterOrEqual(t, r, 0.0)
		}
	}
}

func TestGenerate_RejectsInvalidCorrelation(t *testing.T) {
	cfg := GenerateConfig{NumScenarios: 10, ProjectionYears: 5, Correlation: 1.5}
	_, err := Generate(cfg)
	require.Error(t, err)
}

func TestGenerate_RejectsNonPositiveCounts(t *testing.T) {
	_, err := Generate(GenerateConfig{NumScenarios: 0, ProjectionYears: 5})
	require.Error(t, err)

	_, err = Generate(GenerateConfig{NumScenarios: 5, ProjectionYears: 0})
	require.Error(t, err)
}

func TestRateMatrixAndEquityMatrix_Dimensions(t *testing.T) {
	cfg := GenerateConfig{
		NumScenarios: 10, ProjectionYears: 5, Seed: 1,
		RateParams: DefaultVasicekParams(), EquityParams: DefaultEquityParams(),
		Correlation: -0.1,
	}
	bundle, err := Generate(cfg)
	require.NoError(t, err)

	rm := bundle.RateMatrix()
	r, c := rm.Dims()
	assert.Equal(t, 10, r)
	assert.Equal(t, 5, c)

	em := bundle.EquityMatrix()
	r, c = em.Dims()
	assert.Equal(t, 10, r)
	assert.Equal(t, 5, c)
}

func TestDeterministicScenarios_BaseUpDownTriplet(t *testing.T) {
	scenarios := DeterministicScenarios(30, 0.04, 0.07)
	require.Len(t, scenarios, 3)

	assert.Equal(t, 0.04, scenarios[0].Rates[0])
	assert.Equal(t, 0.07, scenarios[0].EquityReturns[0])

	assert.InDelta(t, 0.06, scenarios[1].Rates[0], 1e-12)
	assert.InDelta(t, 0.05, scenarios[1].EquityReturns[0], 1e-12)

	assert.InDelta(t, 0.02, scenarios[2].Rates[0], 1e-12)
	assert.InDelta(t, 0.09, scenarios[2].EquityReturns[0], 1e-12)
}

func TestDeterministicScenarios_FloorsRateDownAtZero(t *testing.T) {
	scenarios := DeterministicScenarios(10, 0.01, 0.05)
	assert.Equal(t, 0.0, scenarios[2].Rates[0])
}

func TestCalculateStatistics_ConsistentWithManualMean(t *testing.T) {
	cfg := GenerateConfig{
		NumScenarios: 500, ProjectionYears: 20, Seed: 123,
		InitialRate: 0.04, RateParams: DefaultVasicekParams(), EquityParams: DefaultEquityParams(),
		Correlation: -0.2,
	}
	bundle, err := Generate(cfg)
	require.NoError(t, err)

	stats := CalculateStatistics(bundle)
	assert.Equal(t, 500, stats.NumScenarios)
	assert.Equal(t, 20, stats.ProjectionYears)
	assert.GreaterOrEqual(t, stats.RateMax, stats.RateMean)
	assert.LessOrEqual(t, stats.RateMin, stats.RateMean)
	assert.LessOrEqual(t, stats.TerminalRate5Pct, stats.TerminalRate95Pct)
}

func TestMarshalUnmarshal_RoundTrips(t *testing.T) {
	cfg := GenerateConfig{
		NumScenarios: 5, ProjectionYears: 4, Seed: 55,
		RateParams: DefaultVasicekParams(), EquityParams: DefaultEquityParams(),
		Correlation: -0.1,
	}
	bundle, err := Generate(cfg)
	require.NoError(t, err)

	data, err := Marshal(bundle)
	require.NoError(t, err)

	roundTripped, err := Unmarshal(data)
	require.NoError(t, err)

	assert.Equal(t, bundle.NumScenarios, roundTripped.NumScenarios)
	assert.Equal(t, bundle.ProjectionYears, roundTripped.ProjectionYears)
	assert.Equal(t, bundle.BundleID, roundTripped.BundleID)
	for i := range bundle.Scenarios {
		assert.Equal(t, bundle.Scenarios[i].Rates, roundTripped.Scenarios[i].Rates)
		assert.Equal(t, bundle.Scenarios[i].EquityReturns, roundTripped.Scenarios[i].EquityReturns)
	}
}
