package behavior

import "math"

// MortalityTable looks up the annual mortality rate qx for an age.
type MortalityTable func(age int) float64

// GompertzFallback is the Gompertz-like approximation spec.md §4.6 uses when
// no explicit table is supplied: q(age) = min(1, 0.0001*e^(0.08*age)).
func GompertzFallback(age int) float64 {
	return math.Min(1.0, 0.0001*math.Exp(0.08*float64(age)))
}

// TableOrFallback returns table if non-nil, otherwise GompertzFallback —
// the explicit-table-or-fallback contract from spec.md §6.
func TableOrFallback(table MortalityTable) MortalityTable {
	if table != nil {
		return table
	}
	return GompertzFallback
}
