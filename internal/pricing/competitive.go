package pricing

import (
	"sort"

	"github.com/aristath/annuity-pricer/internal/engerr"
)

// CompetitivePosition reports how a crediting rate compares against a peer
// distribution of comparable products, grounded on
// original_source/src/annuity_pricing/products/fia.py's (and rila.py's)
// competitive_position method. The survey-ingestion side (pulling a WINK
// market data feed) is out of scope; this operates only on caller-supplied
// peer rates.
type CompetitivePosition struct {
	Rate          float64
	Percentile    float64 // 0-100, share of peers at or below Rate
	Rank          int     // 1-based rank, 1 = highest rate in the peer set
	TotalProducts int
}

// CompetitiveRank computes rate's percentile and rank within peers, per the
// original's CompetitivePosition: percentile is the fraction of peers at or
// below rate, and rank counts how many peers strictly exceed it (rank 1 means
// no peer beats it).
func CompetitiveRank(rate float64, peers []float64) (CompetitivePosition, error) {
	if len(peers) == 0 {
		return CompetitivePosition{}, &engerr.PreconditionError{Component: "pricing", Invariant: "CompetitiveRank requires at least one peer rate", Value: len(peers)}
	}

	sorted := make([]float64, len(peers))
	copy(sorted, peers)
	sort.Float64s(sorted)

	atOrBelow := 0
	above := 0
	for _, p := range sorted {
		if p <= rate {
			atOrBelow++
		}
		if p > rate {
			above++
		}
	}

	return CompetitivePosition{
		Rate:          rate,
		Percentile:    100 * float64(atOrBelow) / float64(len(sorted)),
		Rank:          above + 1,
		TotalProducts: len(sorted),
	}, nil
}
