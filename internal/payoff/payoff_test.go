package payoff

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapped(t *testing.T) {
	assert.Equal(t, 0.0, Capped(-0.1, 0.08))
	assert.Equal(t, 0.05, Capped(0.05, 0.08))
	assert.Equal(t, 0.08, Capped(0.15, 0.08))
}

func TestTrigger_StrictAtZero(t *testing.T) {
	assert.Equal(t, 0.0, Trigger(0, 0.06))
	assert.Equal(t, 0.06, Trigger(0.0001, 0.06))
	assert.Equal(t, 0.0, Trigger(-0.01, 0.06))
}

func TestRILABufferConcreteScenario(t *testing.T) {
	// buffer 10%, cap 15%
	assert.InDelta(t, -0.05, RILABuffer(-0.15, 0.10, 0.15, true), 1e-12)
	assert.Equal(t, 0.0, RILABuffer(-0.10, 0.10, 0.15, true))
	assert.Equal(t, 0.15, RILABuffer(0.20, 0.10, 0.15, true))
	assert.Equal(t, 0.0, RILABuffer(0.0, 0.10, 0.15, true))
}

func TestRILAFloorConcreteScenario(t *testing.T) {
	// floor 10%, cap 15%
	assert.InDelta(t, -0.05, RILAFloor(-0.05, 0.10, 0.15, true), 1e-12)
	assert.InDelta(t, -0.10, RILAFloor(-0.30, 0.10, 0.15, true), 1e-12)
}

// Universal property 2: FIA payoffs are pointwise >= 0 for all x.
func TestFIAPayoffsAreNonNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10_000; i++ {
		x := rng.Float64()*4 - 2 // x in [-2, 2]
		assert.GreaterOrEqual(t, Capped(x, 0.08), 0.0)
		assert.GreaterOrEqual(t, Participation(x, 0.5, 0.1, true), 0.0)
		assert.GreaterOrEqual(t, Spread(x, 0.02, 0.1, true), 0.0)
		assert.GreaterOrEqual(t, Trigger(x, 0.06), 0.0)
	}
}

// Universal property 2 continued: RILA buffer/floor below the protection
// threshold equal the exact algebraic forms.
func TestRILABuffer_BelowThreshold(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	b := 0.10
	for i := 0; i < 1000; i++ {
		x := -b - rng.Float64()*0.5 // x < -b
		assert.InDelta(t, x+b, RILABuffer(x, b, 0.15, true), 1e-12)
	}
}

func TestRILAFloor_BelowThreshold(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	f := 0.10
	for i := 0; i < 1000; i++ {
		x := -f - rng.Float64()*0.5 // x < -f
		assert.InDelta(t, -f, RILAFloor(x, f, 0.15, true), 1e-12)
	}
}

// Universal property 3: buffer != floor for x in (-b, 0) and x < -b, when b=f.
func TestBufferDiffersFromFloor(t *testing.T) {
	protection := 0.10
	cap := 0.15

	for _, x := range []float64{-0.01, -0.05, -0.09, -0.15, -0.30} {
		buffer := RILABuffer(x, protection, cap, true)
		floor := RILAFloor(x, protection, cap, true)
		assert.NotEqual(t, buffer, floor, "x=%v", x)
	}
}

func TestMonthlyAverage(t *testing.T) {
	monthly := []float64{0.01, 0.02, -0.01, 0.03, 0.0, 0.01, 0.02, -0.02, 0.01, 0.0, 0.01, 0.02}
	result := MonthlyAverage(monthly, 0.06)
	assert.Greater(t, result, 0.0)
	assert.LessOrEqual(t, result, 0.06)
}

func TestParticipation_UncappedWhenAbsent(t *testing.T) {
	assert.Equal(t, 0.6, Participation(1.2, 0.5, 0, false))
}
