package ai

import (
	"context"

	"github.com/poiesic/answerit/core"
)

// Embedder generates vector embeddings from text for semantic similarity search.
// Returned vectors are L2-normalized, so inner products are cosine similarities
// in [-1, 1]. Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a unit-normalized vector embedding for a single
	// text string. Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates unit-normalized vector embeddings for multiple
	// text strings in a batch. The returned slice contains embeddings in the
	// same order as the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Reranker scores a (query, passage) pair for fine-grained relevance.
// Higher scores mean more relevant. Scoring is the most expensive step of
// the retrieval pipeline, so callers bound how many pairs they submit.
// Implementations must be thread-safe for concurrent use.
type Reranker interface {
	// Score returns a relevance score for the passage with respect to the
	// query. Returns an error if the scoring call fails; callers are
	// expected to fall back to their prior ordering on error.
	Score(ctx context.Context, query, passage string) (float64, error)
}

// QueryExpander rewrites a short query into a hypothetical-answer paragraph
// (HyDE) to improve dense retrieval recall. Implementations must be
// thread-safe for concurrent use.
type QueryExpander interface {
	// Expand returns the query augmented with a hypothetical documentation
	// passage that might answer it. On failure the caller proceeds with the
	// original query.
	Expand(ctx context.Context, query string) (string, error)
}

// GenerationRequest carries everything a Generator needs for one completion.
type GenerationRequest struct {
	// Model is the generation model identifier, selected by the router.
	Model string

	// System is the system prompt.
	System string

	// History is the normalized prior conversation, oldest first.
	History []core.Message

	// Prompt is the final user message.
	Prompt string

	// Temperature for sampling. Zero means deterministic output.
	Temperature float64

	// MaxTokens caps the completion length. Zero uses the provider default.
	MaxTokens int
}

// GenerationResult is the outcome of a completion call.
type GenerationResult struct {
	Text  string
	Usage core.Usage
}

// Generator produces an answer from a prompt using a named generation model.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error)
}

// AIProvider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages the capability
// instances, ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Reranker returns the pairwise relevance scorer, or nil when no rerank
	// model is configured or the model failed to load. Callers probe this
	// once and keep the outcome; a nil reranker degrades to fused ordering.
	Reranker() Reranker

	// QueryExpander returns the HyDE query expansion service.
	QueryExpander() QueryExpander

	// Generator returns the answer generation service.
	Generator() Generator

	// Close releases resources held by the provider and its services.
	Close() error
}
