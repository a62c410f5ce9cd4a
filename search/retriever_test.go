package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/poiesic/answerit/ai/mock"
	"github.com/poiesic/answerit/core"
	"github.com/poiesic/answerit/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceCorpus []*core.Chunk

func (s sliceCorpus) ChunkAt(row int) *core.Chunk { return s[row] }
func (s sliceCorpus) Len() int                    { return len(s) }

// buildRetriever wires indices and corpus from the given chunks. The mock
// embedder always returns queryVector, making dense similarities equal to
// the chunk-vector dot products chosen by the test.
func buildRetriever(t *testing.T, chunks []*core.Chunk, queryVector []float32, provider *mock.MockProvider, opts ...Option) *Retriever {
	t.Helper()

	dense := index.NewDenseIndex()
	sparse := index.NewSparseIndex()
	for _, chunk := range chunks {
		dense.Add(chunk.Vector)
		sparse.Add(chunk.Text)
	}

	provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return queryVector, nil
	}

	retriever, err := NewRetriever(dense, sparse, sliceCorpus(chunks), provider, opts...)
	require.NoError(t, err)
	return retriever
}

func chunkWith(id, text string, vector []float32) *core.Chunk {
	return &core.Chunk{ChunkID: id, DocID: "doc", Text: text, Vector: vector}
}

func TestRetriever_SkipsRerankOnStrongMatch(t *testing.T) {
	provider := mock.NewMockProvider().(*mock.MockProvider)
	chunks := []*core.Chunk{
		chunkWith("strong", "detailed refund policy for enterprise accounts", []float32{0.62, 0.78, 0}),
		chunkWith("medium", "overview of invoice history and payments", []float32{0.30, 0.95, 0}),
		chunkWith("weak", "changelog for the desktop client release", []float32{0.20, 0.97, 0}),
	}

	retriever := buildRetriever(t, chunks, []float32{1, 0, 0}, provider)

	result, err := retriever.Retrieve(context.Background(), "how are refunds handled for enterprise")
	require.NoError(t, err)
	require.NotEmpty(t, result.Passages)

	// Top survivor at 0.62 > 0.6: pre-rerank ordering must be unchanged
	assert.Equal(t, "strong", result.Passages[0].Chunk.ChunkID)
	assert.Equal(t, 0, provider.GetMockReranker().CallCount())
	for _, passage := range result.Passages {
		assert.False(t, passage.Reranked)
	}
}

func TestRetriever_ReranksWeakPrefix(t *testing.T) {
	provider := mock.NewMockProvider().(*mock.MockProvider)
	chunks := []*core.Chunk{
		chunkWith("first", "general product overview", []float32{0.50, 0.86, 0}),
		chunkWith("second", "exact answer to the question", []float32{0.45, 0.89, 0}),
	}

	provider.GetMockReranker().ScoreFunc = func(ctx context.Context, query, passage string) (float64, error) {
		if passage == "exact answer to the question" {
			return 0.9, nil
		}
		return 0.2, nil
	}

	retriever := buildRetriever(t, chunks, []float32{1, 0, 0}, provider)

	result, err := retriever.Retrieve(context.Background(), "an unrelated phrasing")
	require.NoError(t, err)
	require.Len(t, result.Passages, 2)

	assert.Equal(t, "second", result.Passages[0].Chunk.ChunkID)
	assert.True(t, result.Passages[0].Reranked)
	assert.Equal(t, 0.9, result.Passages[0].CEScore)
	assert.Equal(t, "first", result.Passages[1].Chunk.ChunkID)
}

func TestRetriever_RerankPrefixIsBounded(t *testing.T) {
	provider := mock.NewMockProvider().(*mock.MockProvider)

	var chunks []*core.Chunk
	for i := 0; i < 9; i++ {
		chunks = append(chunks, chunkWith(
			fmt.Sprintf("chunk-%d", i),
			fmt.Sprintf("passage number %d with distinct content", i),
			[]float32{0.5 - float32(i)*0.01, 0.8, 0},
		))
	}

	retriever := buildRetriever(t, chunks, []float32{1, 0, 0}, provider)

	result, err := retriever.Retrieve(context.Background(), "a query matching nothing exactly")
	require.NoError(t, err)
	require.NotEmpty(t, result.Passages)

	assert.Equal(t, 6, provider.GetMockReranker().CallCount())
	// The tail beyond the prefix is never scored
	for _, passage := range result.Passages[6:] {
		assert.False(t, passage.Reranked)
	}
}

func TestRetriever_RerankFailureKeepsFusedOrder(t *testing.T) {
	provider := mock.NewMockProvider().(*mock.MockProvider)
	chunks := []*core.Chunk{
		chunkWith("first", "general product overview", []float32{0.50, 0.86, 0}),
		chunkWith("second", "exact answer to the question", []float32{0.45, 0.89, 0}),
	}

	provider.GetMockReranker().ScoreFunc = func(ctx context.Context, query, passage string) (float64, error) {
		return 0, errors.New("rerank model unavailable")
	}

	retriever := buildRetriever(t, chunks, []float32{1, 0, 0}, provider)

	result, err := retriever.Retrieve(context.Background(), "an unrelated phrasing")
	require.NoError(t, err, "rerank failure must not fail the request")
	require.Len(t, result.Passages, 2)
	assert.Equal(t, "first", result.Passages[0].Chunk.ChunkID)
}

func TestRetriever_NoRerankerKeepsFusedOrder(t *testing.T) {
	provider := mock.NewMockProviderWithoutReranker().(*mock.MockProvider)
	chunks := []*core.Chunk{
		chunkWith("first", "general product overview", []float32{0.50, 0.86, 0}),
		chunkWith("second", "exact answer to the question", []float32{0.45, 0.89, 0}),
	}

	retriever := buildRetriever(t, chunks, []float32{1, 0, 0}, provider)

	result, err := retriever.Retrieve(context.Background(), "an unrelated phrasing")
	require.NoError(t, err)
	require.Len(t, result.Passages, 2)
	assert.Equal(t, "first", result.Passages[0].Chunk.ChunkID)
}

func TestRetriever_BM25RescueSurfacesKeywordHit(t *testing.T) {
	provider := mock.NewMockProvider().(*mock.MockProvider)
	chunks := []*core.Chunk{
		chunkWith("reset", "password reset walkthrough for admins", []float32{0.50, 0.86, 0}),
		chunkWith("billing", "billing overview and invoice exports", []float32{0.48, 0.87, 0}),
		// Orthogonal to the query vector: zero dense similarity
		chunkWith("login", "Login issue: cannot sign in after the update", []float32{0, 1, 0}),
	}

	retriever := buildRetriever(t, chunks, []float32{1, 0, 0}, provider)

	result, err := retriever.Retrieve(context.Background(), "Login issue")
	require.NoError(t, err)

	ids := make([]string, 0, len(result.Passages))
	for _, passage := range result.Passages {
		ids = append(ids, passage.Chunk.ChunkID)
	}
	assert.Contains(t, ids, "login",
		"keyword-only hit below the similarity threshold must be rescued by its fused score")
}

func TestRetriever_EmbeddingFailureDegradesToSparse(t *testing.T) {
	provider := mock.NewMockProvider().(*mock.MockProvider)
	chunks := []*core.Chunk{
		chunkWith("login", "Login issue: cannot sign in after the update", []float32{0, 1, 0}),
		chunkWith("billing", "billing overview and invoice exports", []float32{1, 0, 0}),
	}

	dense := index.NewDenseIndex()
	sparse := index.NewSparseIndex()
	for _, chunk := range chunks {
		dense.Add(chunk.Vector)
		sparse.Add(chunk.Text)
	}

	provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}

	retriever, err := NewRetriever(dense, sparse, sliceCorpus(chunks), provider)
	require.NoError(t, err)

	result, err := retriever.Retrieve(context.Background(), "login issue")
	require.NoError(t, err, "a dead embedder degrades the dense leg, it does not fail the request")
	require.NotEmpty(t, result.Passages)
	assert.Equal(t, "login", result.Passages[0].Chunk.ChunkID)
	assert.Equal(t, 0.0, result.AvgSimilarity)
}

func TestRetriever_NoDuplicateChunks(t *testing.T) {
	provider := mock.NewMockProvider().(*mock.MockProvider)
	// Same logical chunk surfaced by both legs under one chunk id
	chunks := []*core.Chunk{
		chunkWith("dup", "login troubleshooting steps", []float32{0.9, 0.43, 0}),
		chunkWith("dup", "login troubleshooting steps", []float32{0.85, 0.52, 0}),
	}

	retriever := buildRetriever(t, chunks, []float32{1, 0, 0}, provider)

	result, err := retriever.Retrieve(context.Background(), "login troubleshooting")
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, passage := range result.Passages {
		key := passage.Chunk.Key()
		assert.False(t, seen[key], "duplicate chunk in final passages")
		seen[key] = true
	}
}

func TestNewRetriever_Validation(t *testing.T) {
	provider := mock.NewMockProvider()
	dense := index.NewDenseIndex()
	sparse := index.NewSparseIndex()
	corpus := sliceCorpus{}

	_, err := NewRetriever(nil, sparse, corpus, provider)
	assert.ErrorIs(t, err, ErrDenseIndexRequired)

	_, err = NewRetriever(dense, nil, corpus, provider)
	assert.ErrorIs(t, err, ErrSparseIndexRequired)

	_, err = NewRetriever(dense, sparse, nil, provider)
	assert.ErrorIs(t, err, ErrCorpusRequired)

	_, err = NewRetriever(dense, sparse, corpus, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}
