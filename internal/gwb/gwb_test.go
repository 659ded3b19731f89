package gwb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig() Config {
	return Config{
		RollupType:     RollupCompound,
		RollupRate:     0.05,
		RollupCapYears: 10,
		RatchetEnabled: true,
		RatchetFreq:    3,
		WithdrawalRate: 0.05,
		FeeRate:        0.01,
		FeeBasis:       FeeBasisAccountValue,
		Premium:        100_000,
	}
}

// Universal property 7: compound rollup with zero withdrawals is monotone
// non-decreasing, and grows at least at the rollup rate.
func TestCompoundRollup_MonotoneNonDecreasing(t *testing.T) {
	cfg := baseConfig()
	state := InitialState(cfg.Premium)

	for year := 0; year < 10; year++ {
		prevGWB := state.GWB
		result, err := Step(cfg, state, 0.03, 1.0, 0)
		require.NoError(t, err)
		state = result.NewState

		assert.GreaterOrEqual(t, state.GWB, prevGWB*(1+cfg.RollupRate)-1e-9)
	}
}

func TestRatchet_NeverDecreasesGWB(t *testing.T) {
	cfg := baseConfig()
	cfg.RollupType = RollupNone
	cfg.RollupCapYears = 0
	state := InitialState(cfg.Premium)

	// Strong positive return pushes AV above GWB; at year 3 (ratchet due),
	// GWB must step up to AV and never fall afterward.
	for year := 0; year < 6; year++ {
		prevGWB := state.GWB
		result, err := Step(cfg, state, 0.20, 1.0, 0)
		require.NoError(t, err)
		state = result.NewState
		assert.GreaterOrEqual(t, state.GWB, prevGWB)
	}
}

func TestAVRuin_CannotRecover(t *testing.T) {
	cfg := baseConfig()
	state := InitialState(cfg.Premium)
	state.AV = 0

	result, err := Step(cfg, state, 0.50, 1.0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.NewState.AV)
}

func TestMaxWithdrawal_IndependentOfAV(t *testing.T) {
	cfg := baseConfig()
	state := InitialState(cfg.Premium)
	state.AV = 0
	state.GWB = 50_000

	assert.Equal(t, 50_000*cfg.WithdrawalRate, cfg.MaxWithdrawal(state))
}

func TestWithdrawalAtOrBelowGuarantee_DoesNotReduceGWB(t *testing.T) {
	cfg := baseConfig()
	cfg.RollupType = RollupNone
	cfg.RollupCapYears = 0
	state := InitialState(cfg.Premium)

	maxW := cfg.MaxWithdrawal(state)
	result, err := Step(cfg, state, 0.0, 1.0, maxW)
	require.NoError(t, err)

	assert.Equal(t, state.GWB, result.NewState.GWB)
	assert.InDelta(t, maxW, result.WithdrawalTaken, 1e-9)
}

func TestStep_RejectsNonPositiveDt(t *testing.T) {
	cfg := baseConfig()
	state := InitialState(cfg.Premium)
	_, err := Step(cfg, state, 0.05, 0, 0)
	require.Error(t, err)
}

func TestStep_RejectsNegativeWithdrawal(t *testing.T) {
	cfg := baseConfig()
	state := InitialState(cfg.Premium)
	_, err := Step(cfg, state, 0.05, 1.0, -1)
	require.Error(t, err)
}

func TestSimpleRollup_AddsFixedIncrement(t *testing.T) {
	cfg := baseConfig()
	cfg.RollupType = RollupSimple
	cfg.RatchetEnabled = false
	state := InitialState(cfg.Premium)

	result, err := Step(cfg, state, 0.0, 1.0, 0)
	require.NoError(t, err)
	assert.InDelta(t, cfg.Premium+cfg.Premium*cfg.RollupRate, result.NewState.GWB, 1e-6)
}

func TestRollupStopsAfterCapYears(t *testing.T) {
	cfg := baseConfig()
	cfg.RollupCapYears = 2
	cfg.RatchetEnabled = false
	state := InitialState(cfg.Premium)

	for year := 0; year < 2; year++ {
		result, err := Step(cfg, state, 0.0, 1.0, 0)
		require.NoError(t, err)
		state = result.NewState
	}
	gwbAfterCap := state.GWB

	result, err := Step(cfg, state, 0.0, 1.0, 0)
	require.NoError(t, err)
	assert.Equal(t, gwbAfterCap, result.NewState.GWB)
}
