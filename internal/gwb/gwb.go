// Package gwb implements the GWB (Guaranteed Withdrawal Base) tracker state
// machine (spec.md §4.5, component E): a pure step function evolving
// (AV, GWB, age-in-force) under return, withdrawal, fee, rollup, and ratchet
// rules, in the normative order spec.md §4.5 lays out. Step applies no
// surrender-period rule.
package gwb

import (
	"math"

	"github.com/aristath/annuity-pricer/internal/engerr"
)

// RollupType selects how the GWB grows during the deferral window.
type RollupType int

const (
	RollupNone RollupType = iota
	RollupSimple
	RollupCompound
)

// FeeBasis selects what the rider fee is charged against.
type FeeBasis int

const (
	FeeBasisAccountValue FeeBasis = iota
	FeeBasisGWB
)

// Config is the GWB rider's immutable mechanics configuration.
type Config struct {
	RollupType      RollupType
	RollupRate      float64
	RollupCapYears  int
	RatchetEnabled  bool
	RatchetFreq     int // years; ratchets when yearsInForce % RatchetFreq == 0
	WithdrawalRate  float64
	FeeRate         float64
	FeeBasis        FeeBasis
	Premium         float64 // basis for simple rollup: GWB += premium*rollup
}

// State is the per-path mutable state. Never shared across paths.
type State struct {
	AV              float64
	GWB             float64
	YearsInForce    int
	TotalWithdrawn  float64
	InRollupPeriod  bool
	WithdrawalBegan bool
}

// InitialState returns the starting state for a new contract funded at
// premium: AV = GWB = premium, still inside the rollup period.
func InitialState(premium float64) State {
	return State{
		AV:             premium,
		GWB:            premium,
		InRollupPeriod: true,
	}
}

// StepResult is the output of one annual step.
type StepResult struct {
	NewState        State
	WithdrawalTaken float64
	FeesCharged     float64
	WasRatcheted    bool
}

// MaxWithdrawal returns the maximum allowed withdrawal for the current
// state: GWB * withdrawalRate, regardless of AV (spec.md §4.5 invariant).
func (c Config) MaxWithdrawal(s State) float64 {
	return s.GWB * c.WithdrawalRate
}

// Step advances the state by one year under the given annual return and a
// requested withdrawal (capped at MaxWithdrawal by the caller's behavioral
// law — the tracker itself does not clip withdrawal to the guarantee; it
// only protects GWB from withdrawals at/below the guaranteed amount).
// Steps run in the normative order from spec.md §4.5:
//  1. Accrue fee on basis (AV or GWB) at rate*dt, subtract from AV (floor 0).
//  2. Apply return multiplicatively to AV.
//  3. Rollup (only while in the rollup window).
//  4. Ratchet (if enabled and due).
//  5. Withdrawal (subtract from AV, floor 0; GWB unaffected at/below guarantee).
//  6. Advance yearsInForce.
func Step(c Config, s State, annualReturn float64, dt float64, withdrawal float64) (StepResult, error) {
	if dt <= 0 {
		return StepResult{}, &engerr.PreconditionError{Component: "gwb", Invariant: "dt must be > 0", Value: dt}
	}
	if withdrawal < 0 {
		return StepResult{}, &engerr.PreconditionError{Component: "gwb", Invariant: "withdrawal must be >= 0", Value: withdrawal}
	}

	next := s

	// 1. Fee accrual.
	var feeBasisAmount float64
	switch c.FeeBasis {
	case FeeBasisGWB:
		feeBasisAmount = next.GWB
	default:
		feeBasisAmount = next.AV
	}
	fee := feeBasisAmount * c.FeeRate * dt
	next.AV = math.Max(next.AV-fee, 0)

	// 2. Return application.
	next.AV = next.AV * (1 + annualReturn)
	if next.AV < 0 {
		next.AV = 0
	}

	// 3. Rollup phase.
	inRollupWindow := next.YearsInForce < c.RollupCapYears && !next.WithdrawalBegan
	if inRollupWindow {
		switch c.RollupType {
		case RollupCompound:
			next.GWB = next.GWB * (1 + c.RollupRate)
		case RollupSimple:
			next.GWB = next.GWB + c.Premium*c.RollupRate
		case RollupNone:
			// no-op
		}
		next.InRollupPeriod = true
	} else {
		next.InRollupPeriod = false
	}

	// 4. Ratchet.
	ratcheted := false
	if c.RatchetEnabled && c.RatchetFreq > 0 && next.YearsInForce%c.RatchetFreq == 0 {
		if next.AV > next.GWB {
			next.GWB = next.AV
			ratcheted = true
		}
	}

	// 5. Withdrawal.
	taken := math.Min(withdrawal, next.AV)
	next.AV = math.Max(next.AV-taken, 0)
	next.TotalWithdrawn += taken
	if taken > 0 {
		next.WithdrawalBegan = true
	}

	// 6. Advance.
	next.YearsInForce++

	return StepResult{
		NewState:        next,
		WithdrawalTaken: taken,
		FeesCharged:     fee,
		WasRatcheted:    ratcheted,
	}, nil
}
