// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.Reranker,
// ai.QueryExpander, ai.Generator and ai.AIProvider for use in unit tests.
// The mocks allow tests to run without external AI service dependencies and
// enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	vector, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	mockReranker := mock.NewMockReranker()
//	mockReranker.ScoreFunc = func(ctx context.Context, query, passage string) (float64, error) {
//	    return 0.9, nil
//	}
//
//	// Check call counts
//	count := mockReranker.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockEmbedder: Returns deterministic unit vectors based on text hash
//   - MockReranker: Scores by fraction of query words found in the passage
//   - MockQueryExpander: Appends a fixed hypothetical passage to the query
//   - MockGenerator: Returns a canned answer citing the first source section
//   - MockProvider: Aggregates all four; a variant reports reranking disabled
package mock
