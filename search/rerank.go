package search

import (
	"context"
	"slices"

	"github.com/poiesic/answerit/core"
)

const (
	// DefaultSkipRerankAbove: a top survivor this similar to the query is
	// trusted without paying for reranking.
	DefaultSkipRerankAbove = 0.6

	// rerankPrefixSize caps reranker work per request. The cap is on work,
	// not time: a fixed prefix keeps worst-case latency predictable.
	rerankPrefixSize = 6
)

// rerank applies the conditional reranking policy and returns the (possibly
// reordered) candidate list.
//
// Policy: skip entirely when the top survivor's dense similarity exceeds the
// configured threshold, or when no reranker is available. Otherwise score
// only the top prefix, reorder that prefix by reranker score, and leave the
// remainder in place. Any scoring failure keeps the prior ordering —
// reranking must never fail a request.
func (r *Retriever) rerank(ctx context.Context, query string, candidates []*core.ScoredCandidate, monitor RetrievalMonitor) []*core.ScoredCandidate {
	if len(candidates) == 0 {
		return candidates
	}

	if candidates[0].Similarity > r.skipRerankAbove {
		monitor.RerankSkipped(candidates[0].Similarity)
		return candidates
	}

	if r.reranker == nil {
		return candidates
	}

	prefixLen := min(rerankPrefixSize, len(candidates))
	prefix := make([]*core.ScoredCandidate, prefixLen)
	copy(prefix, candidates[:prefixLen])

	for _, candidate := range prefix {
		score, err := r.reranker.Score(ctx, query, candidate.Chunk.Text)
		if err != nil {
			r.logger.Warn("rerank scoring failed, keeping fused ordering", "err", err)
			return candidates
		}
		candidate.CEScore = score
		candidate.Reranked = true
	}

	slices.SortStableFunc(prefix, func(a, b *core.ScoredCandidate) int {
		if a.CEScore > b.CEScore {
			return -1
		}
		if a.CEScore < b.CEScore {
			return 1
		}
		return 0
	})

	reordered := make([]*core.ScoredCandidate, 0, len(candidates))
	reordered = append(reordered, prefix...)
	reordered = append(reordered, candidates[prefixLen:]...)
	monitor.AfterRerank(prefix)
	return reordered
}
