package search

import "github.com/poiesic/answerit/core"

// charsPerToken is the fixed token-to-character approximation used to turn
// a token budget into a character budget.
const charsPerToken = 4

// AssembleContext enforces the token budget on the final ordered candidate
// list. Candidates are accumulated in order against a character budget of
// maxTokens × 4; assembly STOPS at the first candidate that would overflow —
// it never skips ahead to a smaller one, because a higher-ranked passage
// must win inclusion over a lower-ranked one regardless of size.
//
// AvgSimilarity is the mean dense similarity over the assembled candidates
// only, 0.0 when nothing fit.
func AssembleContext(candidates []*core.ScoredCandidate, maxTokens int) *core.RetrievalResult {
	budget := maxTokens * charsPerToken

	assembled := make([]*core.ScoredCandidate, 0, len(candidates))
	total := 0
	for _, candidate := range candidates {
		if total+len(candidate.Chunk.Text) > budget {
			break
		}
		total += len(candidate.Chunk.Text)
		assembled = append(assembled, candidate)
	}

	avg := 0.0
	if len(assembled) > 0 {
		var sum float64
		for _, candidate := range assembled {
			sum += candidate.Similarity
		}
		avg = sum / float64(len(assembled))
	}

	return &core.RetrievalResult{
		Passages:      assembled,
		AvgSimilarity: avg,
	}
}
