package search

import (
	"math"

	"github.com/poiesic/answerit/core"
)

const (
	// DefaultSimilarityFloor is the hard lower bound on the adaptive
	// threshold. However weak the candidate pool, the threshold never
	// admits matches below this.
	DefaultSimilarityFloor = 0.15

	// sigmaFloor prevents a zero-variance pool from producing a
	// degenerate cutoff equal to the mean.
	sigmaFloor = 0.01

	// rrfRescueScore rescues candidates the dense leg missed entirely:
	// a fused score above this means strong keyword evidence even with
	// zero dense similarity.
	rrfRescueScore = 0.025
)

// FilterCandidates deduplicates the fused candidate list and applies
// adaptive similarity thresholding. Candidates must arrive in fused order
// with Chunk metadata attached.
//
// The threshold is max(mean − stddev, floor), computed over candidates with
// a nonzero dense similarity. A candidate survives if its similarity meets
// the threshold or its fused score exceeds the rescue cutoff. When the pool
// has no dense scores at all (pure keyword retrieval), thresholding is
// skipped and the top-k by fused order are kept directly.
//
// Returns the survivors and the threshold used (0 when thresholding was
// skipped).
func FilterCandidates(candidates []*core.ScoredCandidate, topK int, floor float64) ([]*core.ScoredCandidate, float64) {
	deduped := dedupeCandidates(candidates)

	dense := make([]float64, 0, len(deduped))
	for _, candidate := range deduped {
		if candidate.Similarity != 0 {
			dense = append(dense, candidate.Similarity)
		}
	}

	if len(dense) == 0 {
		if topK > 0 && len(deduped) > topK {
			deduped = deduped[:topK]
		}
		return deduped, 0
	}

	mean, stddev := meanStddev(dense)
	if stddev < sigmaFloor {
		stddev = sigmaFloor
	}
	threshold := mean - stddev
	if threshold < floor {
		threshold = floor
	}

	kept := make([]*core.ScoredCandidate, 0, len(deduped))
	for _, candidate := range deduped {
		if candidate.Similarity >= threshold || candidate.RRFScore > rrfRescueScore {
			kept = append(kept, candidate)
		}
	}
	return kept, threshold
}

// dedupeCandidates drops candidates whose dedup key was already emitted.
// Fusion can surface the same logical chunk from both lists.
func dedupeCandidates(candidates []*core.ScoredCandidate) []*core.ScoredCandidate {
	seen := make(map[string]bool, len(candidates))
	deduped := make([]*core.ScoredCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Chunk == nil {
			continue
		}
		key := candidate.Chunk.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, candidate)
	}
	return deduped
}

func meanStddev(values []float64) (float64, float64) {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sumSquares float64
	for _, v := range values {
		d := v - mean
		sumSquares += d * d
	}
	return mean, math.Sqrt(sumSquares / float64(len(values)))
}
