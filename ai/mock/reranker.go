package mock

import (
	"context"
	"strings"
)

// MockReranker is a test double for ai.Reranker.
// It allows custom behavior injection via function fields.
type MockReranker struct {
	// ScoreFunc is called by Score if set.
	// If nil, uses default word-overlap behavior.
	ScoreFunc func(ctx context.Context, query, passage string) (float64, error)

	callCount int
}

// NewMockReranker creates a mock reranker with default word-overlap scoring.
// Note: Returns concrete type to allow test assertions via GetMockReranker().
func NewMockReranker() *MockReranker {
	return &MockReranker{}
}

// Score returns a deterministic relevance score for a (query, passage) pair.
// The default implementation scores by the fraction of query words present in
// the passage, so tests can predict ordering from their fixture text.
func (m *MockReranker) Score(ctx context.Context, query, passage string) (float64, error) {
	m.callCount++

	if m.ScoreFunc != nil {
		return m.ScoreFunc(ctx, query, passage)
	}

	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return 0.0, nil
	}

	lowered := strings.ToLower(passage)
	matched := 0
	for _, word := range words {
		if strings.Contains(lowered, word) {
			matched++
		}
	}
	return float64(matched) / float64(len(words)), nil
}

// CallCount returns the number of times Score was called.
func (m *MockReranker) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockReranker) Reset() {
	m.callCount = 0
	m.ScoreFunc = nil
}
