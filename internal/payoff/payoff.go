// Package payoff implements the pure, total FIA/RILA payoff algebra
// (spec.md §4.2, component B). Every FIA variant is pointwise >= 0 by
// construction — every FIA payoff function routes its result through
// fiaFloor, which enforces the 0% floor.
package payoff

import "math"

// fiaFloor clamps a credited return into the FIA's mandatory [0, +inf) range.
// Every FIA payoff function funnels its result through this so the 0% floor
// can never be bypassed by a new variant.
func fiaFloor(x float64) float64 {
	return math.Max(x, 0)
}

// Capped computes the FIA capped-call credited return: y = min(max(x,0), cap).
func Capped(x, cap float64) float64 {
	return math.Min(fiaFloor(x), cap)
}

// Participation computes the FIA participation credited return:
// y = min(max(p*x, 0), cap), with an unbounded cap when capPresent is false.
func Participation(x, participationRate float64, cap float64, capPresent bool) float64 {
	y := fiaFloor(participationRate * x)
	if !capPresent {
		return y
	}
	return math.Min(y, cap)
}

// Spread computes the FIA spread credited return: y = min(max(x-s, 0), cap).
func Spread(x, spreadRate float64, cap float64, capPresent bool) float64 {
	y := fiaFloor(x - spreadRate)
	if !capPresent {
		return y
	}
	return math.Min(y, cap)
}

// Trigger computes the FIA trigger credited return: y = t if x>0 else 0.
// The inequality is strict at zero per spec.md §4.2.
func Trigger(x, triggerRate float64) float64 {
	if x > 0 {
		return fiaFloor(triggerRate)
	}
	return 0
}

// MonthlyAverage computes the FIA monthly-average credited return from 12
// monthly index observations xm: y = min(max(mean(xm), 0), cap).
func MonthlyAverage(monthlyReturns []float64, cap float64) float64 {
	if len(monthlyReturns) == 0 {
		return 0
	}
	sum := 0.0
	for _, m := range monthlyReturns {
		sum += m
	}
	mean := sum / float64(len(monthlyReturns))
	return math.Min(fiaFloor(mean), cap)
}

// RILABuffer computes the RILA buffer credited return:
//
//	x>=0:        y = min(x, cap)
//	-b<=x<0:     y = 0
//	x<-b:        y = x + b   (strictly less than 0)
func RILABuffer(x, bufferRate float64, cap float64, capPresent bool) float64 {
	if x >= 0 {
		if !capPresent {
			return x
		}
		return math.Min(x, cap)
	}
	if x >= -bufferRate {
		return 0
	}
	return x + bufferRate
}

// RILAFloor computes the RILA floor credited return:
//
//	x>=0: y = min(x, cap)
//	x<0:  y = max(x, -f)
func RILAFloor(x, floorRate float64, cap float64, capPresent bool) float64 {
	if x >= 0 {
		if !capPresent {
			return x
		}
		return math.Min(x, cap)
	}
	return math.Max(x, -floorRate)
}
