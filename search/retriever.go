package search

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/poiesic/answerit/ai"
	"github.com/poiesic/answerit/core"
	"github.com/poiesic/answerit/index"
)

const (
	// DefaultTopK is the per-leg retrieval width.
	DefaultTopK = 10

	// DefaultMaxTokens is the context token budget.
	DefaultMaxTokens = 2000

	// DefaultExpansionTimeout bounds the HyDE side computation. Expansion
	// that misses the deadline is abandoned, never waited for.
	DefaultExpansionTimeout = 5 * time.Second

	// shortQueryWords: queries below this length carry too little signal
	// for dense retrieval and get the HyDE treatment.
	shortQueryWords = 8
)

// Corpus is a read-only view of the metadata table. Row numbers match the
// dense and sparse index rows.
type Corpus interface {
	ChunkAt(row int) *core.Chunk
	Len() int
}

// Retriever runs the hybrid retrieval pipeline: parallel dense and sparse
// legs, rank fusion, adaptive filtering, conditional reranking, and
// budget-bounded context assembly.
type Retriever struct {
	dense    *index.DenseIndex
	sparse   *index.SparseIndex
	corpus   Corpus
	embedder ai.Embedder
	reranker ai.Reranker      // nil means reranking unavailable
	expander ai.QueryExpander // nil disables HyDE expansion

	topK             int
	rrfK             int
	similarityFloor  float64
	skipRerankAbove  float64
	maxTokens        int
	expansionTimeout time.Duration

	logger *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithTopK sets the per-leg retrieval width. Values below 1 are ignored.
func WithTopK(k int) Option {
	return func(r *Retriever) error {
		if k >= 1 {
			r.topK = k
		}
		return nil
	}
}

// WithRRFK sets the rank fusion constant. Values below 1 are ignored.
func WithRRFK(k int) Option {
	return func(r *Retriever) error {
		if k >= 1 {
			r.rrfK = k
		}
		return nil
	}
}

// WithSimilarityFloor sets the hard lower bound on the adaptive threshold.
func WithSimilarityFloor(floor float64) Option {
	return func(r *Retriever) error {
		if floor > 0 {
			r.similarityFloor = floor
		}
		return nil
	}
}

// WithSkipRerankAbove sets the dense similarity above which reranking is
// skipped.
func WithSkipRerankAbove(threshold float64) Option {
	return func(r *Retriever) error {
		if threshold > 0 {
			r.skipRerankAbove = threshold
		}
		return nil
	}
}

// WithMaxTokens sets the context token budget.
func WithMaxTokens(maxTokens int) Option {
	return func(r *Retriever) error {
		if maxTokens >= 1 {
			r.maxTokens = maxTokens
		}
		return nil
	}
}

// WithExpansionTimeout bounds the HyDE expansion call.
func WithExpansionTimeout(timeout time.Duration) Option {
	return func(r *Retriever) error {
		if timeout > 0 {
			r.expansionTimeout = timeout
		}
		return nil
	}
}

// NewRetriever creates a new retriever over the shared indices and corpus.
// The reranker and query expander are taken from the provider; either may be
// absent, which degrades the pipeline rather than failing construction.
func NewRetriever(
	dense *index.DenseIndex,
	sparse *index.SparseIndex,
	corpus Corpus,
	provider ai.AIProvider,
	opts ...Option,
) (*Retriever, error) {
	if dense == nil {
		return nil, ErrDenseIndexRequired
	}
	if sparse == nil {
		return nil, ErrSparseIndexRequired
	}
	if corpus == nil {
		return nil, ErrCorpusRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	r := &Retriever{
		dense:            dense,
		sparse:           sparse,
		corpus:           corpus,
		embedder:         provider.Embedder(),
		reranker:         provider.Reranker(),
		expander:         provider.QueryExpander(),
		topK:             DefaultTopK,
		rrfK:             DefaultRRFK,
		similarityFloor:  DefaultSimilarityFloor,
		skipRerankAbove:  DefaultSkipRerankAbove,
		maxTokens:        DefaultMaxTokens,
		expansionTimeout: DefaultExpansionTimeout,
		logger:           slog.Default().With("component", "retriever"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Retrieve runs the pipeline for a query and returns the budgeted,
// deduplicated, relevance-ordered passages.
func (r *Retriever) Retrieve(ctx context.Context, query string) (*core.RetrievalResult, error) {
	return r.RetrieveWithMonitor(ctx, query, nil)
}

// RetrieveWithMonitor runs the pipeline with monitoring. The monitor
// receives callbacks at each stage.
//
// Every capability failure inside the pipeline degrades instead of erroring:
// a failed embedding empties the dense leg, a failed expansion falls back to
// the raw query, a failed rerank keeps the fused ordering. The only error
// returned is context cancellation.
func (r *Retriever) RetrieveWithMonitor(ctx context.Context, query string, monitor RetrievalMonitor) (*core.RetrievalResult, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	// HyDE expansion feeds the dense leg only; the sparse leg always
	// sees the raw query so exact keyword matches stay exact.
	denseQuery := r.expandQuery(ctx, query, monitor)

	var (
		wg         sync.WaitGroup
		denseHits  []index.DenseHit
		sparseHits []index.SparseHit
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		embedding, err := r.embedder.EmbedText(ctx, denseQuery)
		if err != nil {
			r.logger.Warn("query embedding failed, dense leg degraded to empty", "err", err)
			return
		}
		denseHits = r.dense.Search(embedding, r.topK)
	}()
	go func() {
		defer wg.Done()
		sparseHits = r.sparse.Search(query, r.topK)
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	monitor.AfterDenseSearch(denseHits)
	monitor.AfterSparseSearch(sparseHits)

	candidates := FuseRanks(denseHits, sparseHits, r.rrfK)
	for _, candidate := range candidates {
		candidate.Chunk = r.corpus.ChunkAt(candidate.Position)
	}
	monitor.AfterFusion(candidates)

	survivors, threshold := FilterCandidates(candidates, r.topK, r.similarityFloor)
	monitor.AfterFilter(survivors, threshold)

	ordered := r.rerank(ctx, query, survivors, monitor)

	result := AssembleContext(ordered, r.maxTokens)
	monitor.Finish(result)

	r.logger.Debug("retrieval finished",
		"query", query,
		"dense_hits", len(denseHits),
		"sparse_hits", len(sparseHits),
		"survivors", len(survivors),
		"assembled", len(result.Passages),
		"avg_similarity", result.AvgSimilarity)

	return result, nil
}

// expandQuery rewrites short queries into query-plus-hypothetical-passage
// for the dense leg. The expansion runs under its own timeout and any
// failure falls back to the raw query.
func (r *Retriever) expandQuery(ctx context.Context, query string, monitor RetrievalMonitor) string {
	if r.expander == nil {
		return query
	}
	if len(strings.Fields(query)) >= shortQueryWords {
		return query
	}

	expandCtx, cancel := context.WithTimeout(ctx, r.expansionTimeout)
	defer cancel()

	expanded, err := r.expander.Expand(expandCtx, query)
	if err != nil {
		r.logger.Debug("query expansion failed, using raw query", "err", err)
		return query
	}
	if expanded == "" {
		return query
	}

	monitor.QueryExpanded(query, expanded)
	return expanded
}
