package reindex

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/poiesic/answerit/ai/mock"
	"github.com/poiesic/answerit/core"
	"github.com/poiesic/answerit/storage"
	"github.com/poiesic/answerit/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		BatchSize:      2,
		ReportInterval: 100,
		MaxRetries:     2,
		RetryDelay:     time.Millisecond,
	}
}

func seedChunks(t *testing.T, repo storage.ChunkRepository, n int) []*core.Chunk {
	t.Helper()
	chunks := make([]*core.Chunk, n)
	for i := range chunks {
		chunks[i] = &core.Chunk{
			DocID:  "doc.md",
			Text:   "chunk text number " + string(rune('a'+i)),
			Vector: []float32{9, 9, 9}, // stale sentinel
		}
	}
	added, err := repo.AddChunks(context.Background(), chunks...)
	require.NoError(t, err)
	return added
}

func vectorLength(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestReindexer_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("re-embeds every chunk and clears the checkpoint", func(t *testing.T) {
		chunks, _, backend, err := badger.NewMemoryRepositories()
		require.NoError(t, err)
		defer backend.Close()
		checkpoints := badger.NewCheckpointRepository(backend)

		added := seedChunks(t, chunks, 5)

		var out bytes.Buffer
		r := NewReindexer(chunks, checkpoints, mock.NewMockEmbedder(), testConfig(), &out)
		require.NoError(t, r.Run(ctx))

		for _, chunk := range added {
			stored, err := chunks.GetChunk(ctx, chunk.Position)
			require.NoError(t, err)
			assert.NotEqual(t, []float32{9, 9, 9}, stored.Vector)
			assert.InDelta(t, 1.0, vectorLength(stored.Vector), 1e-4)
		}

		cp, err := checkpoints.LoadCheckpoint(ctx, JobType)
		require.NoError(t, err)
		assert.Nil(t, cp)
		assert.Contains(t, out.String(), "Re-embedding complete")
	})

	t.Run("resumes after the checkpointed position", func(t *testing.T) {
		chunks, _, backend, err := badger.NewMemoryRepositories()
		require.NoError(t, err)
		defer backend.Close()
		checkpoints := badger.NewCheckpointRepository(backend)

		added := seedChunks(t, chunks, 4)
		require.NoError(t, checkpoints.SaveCheckpoint(ctx, &core.Checkpoint{
			JobType:      JobType,
			LastPosition: added[1].Position,
		}))

		var out bytes.Buffer
		r := NewReindexer(chunks, checkpoints, mock.NewMockEmbedder(), testConfig(), &out)
		require.NoError(t, r.Run(ctx))

		for _, chunk := range added[:2] {
			stored, err := chunks.GetChunk(ctx, chunk.Position)
			require.NoError(t, err)
			assert.Equal(t, []float32{9, 9, 9}, stored.Vector, "checkpointed chunks must not be touched")
		}
		for _, chunk := range added[2:] {
			stored, err := chunks.GetChunk(ctx, chunk.Position)
			require.NoError(t, err)
			assert.NotEqual(t, []float32{9, 9, 9}, stored.Vector)
		}
		assert.Contains(t, out.String(), "Resuming re-embedding after position 2")
	})

	t.Run("empty corpus is a no-op", func(t *testing.T) {
		chunks, _, backend, err := badger.NewMemoryRepositories()
		require.NoError(t, err)
		defer backend.Close()
		checkpoints := badger.NewCheckpointRepository(backend)

		var out bytes.Buffer
		r := NewReindexer(chunks, checkpoints, mock.NewMockEmbedder(), testConfig(), &out)
		require.NoError(t, r.Run(ctx))
		assert.Contains(t, out.String(), "No chunks found")
	})

	t.Run("failed batch leaves checkpoint at last completed batch", func(t *testing.T) {
		chunks, _, backend, err := badger.NewMemoryRepositories()
		require.NoError(t, err)
		defer backend.Close()
		checkpoints := badger.NewCheckpointRepository(backend)

		added := seedChunks(t, chunks, 4)

		embedder := mock.NewMockEmbedder()
		calls := 0
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			calls++
			if calls > 1 {
				return nil, errors.New("embedding service down")
			}
			vectors := make([][]float32, len(texts))
			for i := range vectors {
				vectors[i] = []float32{1, 0, 0}
			}
			return vectors, nil
		}

		var out bytes.Buffer
		r := NewReindexer(chunks, checkpoints, embedder, testConfig(), &out)
		err = r.Run(ctx)
		require.Error(t, err)

		cp, err := checkpoints.LoadCheckpoint(ctx, JobType)
		require.NoError(t, err)
		require.NotNil(t, cp)
		assert.Equal(t, added[1].Position, cp.LastPosition)
	})
}

func TestBatchProcessor_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("retries transient embedding failures", func(t *testing.T) {
		chunks, _, backend, err := badger.NewMemoryRepositories()
		require.NoError(t, err)
		defer backend.Close()

		added := seedChunks(t, chunks, 1)

		embedder := mock.NewMockEmbedder()
		attempts := 0
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			attempts++
			if attempts < 3 {
				return nil, errors.New("transient")
			}
			return [][]float32{{3, 0, 0}}, nil
		}

		bp := NewBatchProcessor(chunks, embedder, 3, time.Millisecond)
		require.NoError(t, bp.Process(ctx, added))
		assert.Equal(t, 3, attempts)

		stored, err := chunks.GetChunk(ctx, added[0].Position)
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 0, 0}, stored.Vector, "vector is normalized before write-back")
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		bp := NewBatchProcessor(nil, mock.NewMockEmbedder(), 1, time.Millisecond)
		assert.NoError(t, bp.Process(ctx, nil))
	})
}
