package mock

import "context"

// MockQueryExpander is a test double for ai.QueryExpander.
// It allows custom behavior injection via function fields.
type MockQueryExpander struct {
	// ExpandFunc is called by Expand if set.
	// If nil, uses default behavior.
	ExpandFunc func(ctx context.Context, query string) (string, error)

	callCount int
}

// NewMockQueryExpander creates a mock expander with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockExpander().
func NewMockQueryExpander() *MockQueryExpander {
	return &MockQueryExpander{}
}

// Expand returns the query with a fixed hypothetical passage appended.
func (m *MockQueryExpander) Expand(ctx context.Context, query string) (string, error) {
	m.callCount++

	if m.ExpandFunc != nil {
		return m.ExpandFunc(ctx, query)
	}

	return query + " This documentation section describes the feature in detail.", nil
}

// CallCount returns the number of times Expand was called.
func (m *MockQueryExpander) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockQueryExpander) Reset() {
	m.callCount = 0
	m.ExpandFunc = nil
}
