// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package answerit

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/poiesic/answerit/ai"
	"github.com/poiesic/answerit/ai/openai"
	"github.com/poiesic/answerit/cache"
	"github.com/poiesic/answerit/core"
	"github.com/poiesic/answerit/eval"
	"github.com/poiesic/answerit/generate"
	"github.com/poiesic/answerit/index"
	"github.com/poiesic/answerit/ingestion"
	"github.com/poiesic/answerit/reindex"
	"github.com/poiesic/answerit/routing"
	"github.com/poiesic/answerit/search"
	"github.com/poiesic/answerit/storage"
	"github.com/poiesic/answerit/storage/badger"
)

// Engine is the top-level question answering service. It owns the storage
// backend, the in-memory retrieval indices rebuilt from it at startup, and
// the full answer pipeline: cache lookup, complexity routing, hybrid
// retrieval, generation, evaluation, and query logging.
type Engine struct {
	backend        *badger.Backend
	chunkRepo      storage.ChunkRepository
	queryLogRepo   storage.QueryLogRepository
	checkpointRepo storage.CheckpointRepository
	provider       ai.AIProvider

	corpus    *memoryCorpus
	dense     *index.DenseIndex
	sparse    *index.SparseIndex
	retriever *search.Retriever
	router    *routing.Router
	generator *generate.Generator
	cache     *cache.QueryCache

	// indexMu serializes index growth so corpus rows and index rows are
	// appended in the same order.
	indexMu sync.Mutex

	logger *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig      *ai.Config
	provider      ai.AIProvider
	inMemory      bool
	retrieverOpts []search.Option
	cacheOpts     []cache.Option
}

// WithAIConfig sets the AI service configuration used to construct the
// default provider.
func WithAIConfig(cfg *ai.Config) EngineOption {
	return func(o *engineOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithProvider supplies a pre-built AI provider instead of constructing one
// from the config. The engine takes ownership and closes it on Close.
func WithProvider(provider ai.AIProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithInMemory uses a non-persistent storage backend. Intended for tests and
// experiments.
func WithInMemory() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// WithRetrieverOptions forwards options to the retrieval pipeline.
func WithRetrieverOptions(opts ...search.Option) EngineOption {
	return func(o *engineOptions) {
		o.retrieverOpts = append(o.retrieverOpts, opts...)
	}
}

// WithCacheOptions forwards options to the query result cache.
func WithCacheOptions(opts ...cache.Option) EngineOption {
	return func(o *engineOptions) {
		o.cacheOpts = append(o.cacheOpts, opts...)
	}
}

// NewEngine opens the storage backend at filePath, rebuilds the retrieval
// indices from the persisted corpus, and wires the answer pipeline.
func NewEngine(filePath string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	chunkRepo, err := badger.NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	queryLogRepo, err := badger.NewQueryLogRepository(backend)
	if err != nil {
		chunkRepo.Close()
		backend.Close()
		return nil, err
	}

	checkpointRepo := badger.NewCheckpointRepository(backend)

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			queryLogRepo.Close()
			chunkRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	e := &Engine{
		backend:        backend,
		chunkRepo:      chunkRepo,
		queryLogRepo:   queryLogRepo,
		checkpointRepo: checkpointRepo,
		provider:       provider,
		corpus:         &memoryCorpus{},
		dense:          index.NewDenseIndex(),
		sparse:         index.NewSparseIndex(),
		router:         routing.NewRouter(options.aiConfig.SimpleModel, options.aiConfig.ComplexModel),
		cache:          cache.NewQueryCache(options.cacheOpts...),
		logger:         slog.Default().With("component", "engine"),
	}

	if err := e.loadCorpus(context.Background()); err != nil {
		e.Close()
		return nil, err
	}

	e.retriever, err = search.NewRetriever(e.dense, e.sparse, e.corpus, provider, options.retrieverOpts...)
	if err != nil {
		e.Close()
		return nil, err
	}

	e.generator, err = generate.NewGenerator(provider.Generator())
	if err != nil {
		e.Close()
		return nil, err
	}

	return e, nil
}

// loadCorpus rebuilds the metadata table and both indices from storage.
// Chunks without vectors still occupy a dense row (scoring zero) so row
// numbers stay aligned across the corpus and both indices.
func (e *Engine) loadCorpus(ctx context.Context) error {
	chunks, err := e.chunkRepo.GetAllChunks(ctx)
	if err != nil {
		return err
	}

	e.IndexChunks(chunks)

	e.logger.Info("corpus loaded", "chunks", len(chunks))
	return nil
}

// IndexChunks appends chunks to the metadata table and both indices.
// It implements ingestion.IndexSink so freshly embedded chunks become
// searchable without a restart.
func (e *Engine) IndexChunks(chunks []*core.Chunk) {
	e.indexMu.Lock()
	defer e.indexMu.Unlock()

	for _, chunk := range chunks {
		e.corpus.append(chunk)
		e.dense.Add(chunk.Vector)
		e.sparse.Add(chunk.Text)
	}
}

// Ask answers a query end to end: cache lookup, complexity routing, hybrid
// retrieval, grounded generation, answer evaluation, and query logging.
// History may be nil; it is normalized once here and invalid roles are
// rejected before any work happens.
func (e *Engine) Ask(ctx context.Context, query string, history []core.Message) (*core.Response, error) {
	start := time.Now()

	if strings.TrimSpace(query) == "" {
		return nil, core.ErrEmptyQuery
	}

	normalized, err := core.NormalizeMessages(history)
	if err != nil {
		return nil, err
	}

	if hit := e.cache.Get(query); hit != nil {
		response := *hit
		response.Cached = true
		e.logQuery(ctx, query, &response, time.Since(start))
		return &response, nil
	}

	route := e.router.Route(query)

	retrieval, err := e.retriever.Retrieve(ctx, query)
	if err != nil {
		return nil, err
	}

	generated, err := e.generator.Answer(ctx, query, retrieval.Passages, route.Model, normalized)
	if err != nil {
		return nil, err
	}

	flags := eval.EvaluateAnswer(query, generated.Text, retrieval.Passages)
	confidence := eval.Confidence(generated.Text, retrieval.AvgSimilarity, flags)

	response := &core.Response{
		Answer:        generated.Text,
		Passages:      retrieval.Passages,
		Route:         route,
		AvgSimilarity: retrieval.AvgSimilarity,
		Confidence:    confidence,
		Flags:         flags,
		Usage:         generated.Usage,
	}

	e.logQuery(ctx, query, response, time.Since(start))
	e.cache.Set(query, response)

	return response, nil
}

// logQuery appends a query log entry. Logging is best-effort: a storage
// error must not fail an already answered request.
func (e *Engine) logQuery(ctx context.Context, query string, response *core.Response, latency time.Duration) {
	_, err := e.queryLogRepo.AppendEntries(ctx, &core.QueryLogEntry{
		Query:          query,
		Classification: response.Route.Classification,
		Model:          response.Route.Model,
		AvgSimilarity:  response.AvgSimilarity,
		Confidence:     response.Confidence,
		LatencyMillis:  latency.Milliseconds(),
		Cached:         response.Cached,
	})
	if err != nil {
		e.logger.Error("error appending query log entry", "err", err)
	}
}

// Route exposes the complexity routing decision for a query without
// answering it.
func (e *Engine) Route(query string) core.RouteDecision {
	return e.router.Route(query)
}

// Stats is a point-in-time snapshot of the engine's state.
type Stats struct {
	Chunks        int
	IndexedRows   int
	LoggedQueries int
	Cache         cache.Stats
}

// Stats reports corpus, index, query log, and cache occupancy.
func (e *Engine) Stats(ctx context.Context) (*Stats, error) {
	chunks, err := e.chunkRepo.CountChunks(ctx)
	if err != nil {
		return nil, err
	}
	logged, err := e.queryLogRepo.CountEntries(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		Chunks:        chunks,
		IndexedRows:   e.corpus.Len(),
		LoggedQueries: logged,
		Cache:         e.cache.Stats(),
	}, nil
}

// RecentQueries returns the most recent query log entries, newest first.
func (e *Engine) RecentQueries(ctx context.Context, limit int) ([]*core.QueryLogEntry, error) {
	return e.queryLogRepo.GetRecentEntries(ctx, limit)
}

// NewIngestionPipeline creates an ingestion pipeline wired to the engine's
// storage and live indices.
func (e *Engine) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	opts = append([]ingestion.Option{ingestion.WithIndexSink(e)}, opts...)
	return ingestion.NewPipeline(e.chunkRepo, e.provider, opts...)
}

// NewReindexer creates a re-embedding job over the engine's corpus.
// Refreshed vectors reach the persisted corpus immediately and the in-memory
// indices on next startup.
func (e *Engine) NewReindexer(config *reindex.Config, progress io.Writer) *reindex.Reindexer {
	return reindex.NewReindexer(e.chunkRepo, e.checkpointRepo, e.provider.Embedder(), config, progress)
}

// ChunkRepository returns the persisted chunk corpus.
func (e *Engine) ChunkRepository() storage.ChunkRepository {
	return e.chunkRepo
}

// QueryLogRepository returns the query log.
func (e *Engine) QueryLogRepository() storage.QueryLogRepository {
	return e.queryLogRepo
}

// CheckpointRepository returns checkpoint storage for maintenance jobs.
func (e *Engine) CheckpointRepository() storage.CheckpointRepository {
	return e.checkpointRepo
}

// ClearCache drops every cached response.
func (e *Engine) ClearCache() {
	e.cache.Clear()
}

// Close releases the AI provider, repositories, and storage backend.
func (e *Engine) Close() error {
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}

	if err := e.queryLogRepo.Close(); err != nil {
		e.logger.Error("error closing query log repository", "err", err)
		return err
	}
	if err := e.chunkRepo.Close(); err != nil {
		e.logger.Error("error closing chunk repository", "err", err)
		return err
	}

	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
