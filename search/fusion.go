package search

import (
	"slices"

	"github.com/poiesic/answerit/core"
	"github.com/poiesic/answerit/index"
)

// DefaultRRFK is the reciprocal rank fusion constant. Larger values flatten
// the contribution curve across ranks; 60 is the widely used setting. It is
// a tunable, not a magic literal: changing it shifts the recall/precision
// balance of the merged list.
const DefaultRRFK = 60

// FuseRanks merges the dense and sparse result lists with Reciprocal Rank
// Fusion: an item at 0-based rank r in a list contributes 1/(k+r+1) to its
// fused score, summed across lists. Items in only one list score from that
// list alone. The output is sorted by fused score descending; ties keep
// first-encounter order (dense list first, then sparse).
//
// Fusion reconciles the two legs without score normalization — an inner
// product and a BM25 weight are not comparable, but their ranks are.
func FuseRanks(dense []index.DenseHit, sparse []index.SparseHit, k int) []*core.ScoredCandidate {
	if k < 1 {
		k = DefaultRRFK
	}

	byRow := make(map[int]*core.ScoredCandidate)
	var encounter []*core.ScoredCandidate

	for rank, hit := range dense {
		candidate := &core.ScoredCandidate{
			Position:   hit.Row,
			Similarity: hit.Score,
			RRFScore:   1.0 / float64(k+rank+1),
		}
		byRow[hit.Row] = candidate
		encounter = append(encounter, candidate)
	}

	for rank, hit := range sparse {
		contribution := 1.0 / float64(k+rank+1)
		if candidate, ok := byRow[hit.Row]; ok {
			candidate.RRFScore += contribution
			continue
		}
		candidate := &core.ScoredCandidate{
			Position: hit.Row,
			RRFScore: contribution,
		}
		byRow[hit.Row] = candidate
		encounter = append(encounter, candidate)
	}

	// Stable sort preserves encounter order among equal fused scores
	slices.SortStableFunc(encounter, func(a, b *core.ScoredCandidate) int {
		if a.RRFScore > b.RRFScore {
			return -1
		}
		if a.RRFScore < b.RRFScore {
			return 1
		}
		return 0
	})

	return encounter
}
