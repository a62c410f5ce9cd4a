package ingestion

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/poiesic/answerit/ai/mock"
	"github.com/poiesic/answerit/core"
	"github.com/poiesic/answerit/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	chunks []*core.Chunk
}

func (s *recordingSink) IndexChunks(chunks []*core.Chunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, chunks...)
}

func (s *recordingSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chunks)
}

func docChunk(docID, text string) *core.Chunk {
	return &core.Chunk{DocID: docID, Text: text}
}

func TestNewPipeline(t *testing.T) {
	chunks, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	t.Run("requires chunk repository", func(t *testing.T) {
		_, err := NewPipeline(nil, mock.NewMockProvider())
		assert.ErrorIs(t, err, ErrChunkRepositoryRequired)
	})

	t.Run("requires provider", func(t *testing.T) {
		_, err := NewPipeline(chunks, nil)
		assert.ErrorIs(t, err, ErrAIProviderRequired)
	})

	t.Run("creates with options", func(t *testing.T) {
		p, err := NewPipeline(chunks, mock.NewMockProvider(), WithPoolSize(2))
		require.NoError(t, err)
		p.Release()
	})
}

func TestPipeline_Ingest(t *testing.T) {
	ctx := context.Background()

	t.Run("persists, embeds, and feeds the sink", func(t *testing.T) {
		chunks, _, backend, err := badger.NewMemoryRepositories()
		require.NoError(t, err)
		defer backend.Close()

		sink := &recordingSink{}
		p, err := NewPipeline(chunks, mock.NewMockProvider(), WithIndexSink(sink))
		require.NoError(t, err)
		defer p.Release()

		added, err := p.Ingest(ctx, []*core.Chunk{
			docChunk("billing.md", "Invoices are issued monthly."),
			docChunk("billing.md", "Refunds take five business days."),
		})
		require.NoError(t, err)
		require.Len(t, added, 2)
		assert.Equal(t, uint64(1), added[0].Position)
		assert.Equal(t, uint64(2), added[1].Position)

		p.Wait()

		assert.Equal(t, 2, sink.len())
		stored, err := chunks.GetChunk(ctx, added[0].Position)
		require.NoError(t, err)
		assert.NotEmpty(t, stored.Vector)
	})

	t.Run("rejects invalid chunks before persisting", func(t *testing.T) {
		chunks, _, backend, err := badger.NewMemoryRepositories()
		require.NoError(t, err)
		defer backend.Close()

		p, err := NewPipeline(chunks, mock.NewMockProvider())
		require.NoError(t, err)
		defer p.Release()

		_, err = p.Ingest(ctx, []*core.Chunk{
			docChunk("doc.md", "fine"),
			docChunk("", "missing doc id"),
		})
		assert.ErrorIs(t, err, core.ErrInvalidChunk)

		count, err := chunks.CountChunks(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("embedding failure leaves chunk persisted without vector", func(t *testing.T) {
		chunks, _, backend, err := badger.NewMemoryRepositories()
		require.NoError(t, err)
		defer backend.Close()

		provider := mock.NewMockProvider().(*mock.MockProvider)
		provider.GetMockEmbedder().EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("embedding service down")
		}

		sink := &recordingSink{}
		p, err := NewPipeline(chunks, provider, WithIndexSink(sink))
		require.NoError(t, err)
		defer p.Release()

		added, err := p.Ingest(ctx, []*core.Chunk{docChunk("doc.md", "some text")})
		require.NoError(t, err)
		p.Wait()

		assert.Zero(t, sink.len())
		stored, err := chunks.GetChunk(ctx, added[0].Position)
		require.NoError(t, err)
		assert.Empty(t, stored.Vector)
	})

	t.Run("large batch is split across pool jobs", func(t *testing.T) {
		chunks, _, backend, err := badger.NewMemoryRepositories()
		require.NoError(t, err)
		defer backend.Close()

		provider := mock.NewMockProvider().(*mock.MockProvider)
		var mu sync.Mutex
		batchSizes := []int{}
		provider.GetMockEmbedder().EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			mu.Lock()
			batchSizes = append(batchSizes, len(texts))
			mu.Unlock()
			vectors := make([][]float32, len(texts))
			for i := range vectors {
				vectors[i] = []float32{1, 0, 0}
			}
			return vectors, nil
		}

		p, err := NewPipeline(chunks, provider, WithPoolSize(4))
		require.NoError(t, err)
		defer p.Release()

		batch := make([]*core.Chunk, embedBatchSize+5)
		for i := range batch {
			batch[i] = docChunk("doc.md", "chunk text")
		}
		_, err = p.Ingest(ctx, batch)
		require.NoError(t, err)
		p.Wait()

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, batchSizes, 2)
		assert.ElementsMatch(t, []int{embedBatchSize, 5}, batchSizes)
	})
}
