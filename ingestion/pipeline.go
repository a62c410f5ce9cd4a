package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/answerit/ai"
	"github.com/poiesic/answerit/core"
	"github.com/poiesic/answerit/storage"
)

// embedBatchSize is the number of chunks embedded per worker pool job.
const embedBatchSize = 32

// IndexSink receives chunks once their vectors are written, so live indices
// can grow without a rebuild. Implementations must be thread-safe; batches
// arrive from pool workers in no particular order.
type IndexSink interface {
	IndexChunks(chunks []*core.Chunk)
}

// Pipeline orchestrates ingestion of documentation chunks.
// Persistence is synchronous; embedding runs on a worker pool.
type Pipeline struct {
	chunkRepository storage.ChunkRepository
	embedder        ai.Embedder
	sink            IndexSink
	pool            *ants.Pool
	wg              sync.WaitGroup
	logger          *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for embedding jobs.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithIndexSink registers a sink for embedded chunks. Without a sink the
// pipeline only persists; indices are then rebuilt on next startup.
func WithIndexSink(sink IndexSink) Option {
	return func(p *Pipeline) error {
		p.sink = sink
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	chunkRepository storage.ChunkRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		chunkRepository: chunkRepository,
		embedder:        provider.Embedder(),
		pool:            pool,
		logger:          slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Ingest validates and persists the chunks, then submits them for embedding.
// Returns the persisted chunks with positions assigned. Embedding failures
// are logged, not returned: an unembedded chunk is still reachable through
// the sparse leg, and the re-embedding job picks it up later.
func (p *Pipeline) Ingest(ctx context.Context, chunks []*core.Chunk) ([]*core.Chunk, error) {
	for i, chunk := range chunks {
		if err := core.ValidateChunk(chunk); err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
	}

	added, err := p.chunkRepository.AddChunks(ctx, chunks...)
	if err != nil {
		return nil, err
	}

	for start := 0; start < len(added); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(added) {
			end = len(added)
		}
		batch := added[start:end]

		p.wg.Add(1)
		if err := p.pool.Submit(func() {
			defer p.wg.Done()
			p.embedBatch(context.Background(), batch)
		}); err != nil {
			p.wg.Done()
			p.logger.Error("error submitting embedding batch", "err", err)
		}
	}

	return added, nil
}

// embedBatch generates vectors for a persisted batch, writes them back, and
// feeds the sink.
func (p *Pipeline) embedBatch(ctx context.Context, batch []*core.Chunk) {
	texts := make([]string, len(batch))
	for i, chunk := range batch {
		texts[i] = chunk.Text
	}

	p.logger.Debug("generating embeddings for chunks", "chunks", len(texts))
	embeddings, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		p.logger.Error("error generating embeddings", "err", err)
		return
	}
	if len(embeddings) != len(batch) {
		p.logger.Error("embedding result mismatch",
			"expected", len(batch), "received", len(embeddings))
		return
	}

	for i := range embeddings {
		batch[i].Vector = embeddings[i]
	}

	if _, err := p.chunkRepository.UpdateChunks(ctx, batch...); err != nil {
		p.logger.Error("error writing vectors back", "err", err)
		return
	}

	if p.sink != nil {
		p.sink.IndexChunks(batch)
	}
}

// Wait blocks until all submitted embedding jobs have finished.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Release waits for in-flight embedding jobs and releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	p.wg.Wait()
	if p.pool != nil {
		p.pool.Release()
	}
}
