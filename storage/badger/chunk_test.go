package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/answerit/core"
	"github.com/poiesic/answerit/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChunk(docID, text string) *core.Chunk {
	return &core.Chunk{
		DocID:  docID,
		Text:   text,
		Vector: []float32{0.5, 0.5, 0.5},
	}
}

func TestChunkRepository_AddChunks(t *testing.T) {
	chunkRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	defer chunkRepo.Close()

	ctx := context.Background()

	t.Run("assigns positions and timestamps", func(t *testing.T) {
		first := newTestChunk("doc-a", "first chunk text")
		second := newTestChunk("doc-a", "second chunk text")

		added, err := chunkRepo.AddChunks(ctx, first, second)
		require.NoError(t, err)
		require.Len(t, added, 2)

		assert.NotZero(t, added[0].Position)
		assert.Greater(t, added[1].Position, added[0].Position)
		assert.False(t, added[0].InsertedAt.IsZero())
	})

	t.Run("round trip by position", func(t *testing.T) {
		chunk := newTestChunk("doc-b", "retrievable chunk")
		_, err := chunkRepo.AddChunks(ctx, chunk)
		require.NoError(t, err)

		got, err := chunkRepo.GetChunk(ctx, chunk.Position)
		require.NoError(t, err)
		assert.Equal(t, chunk.Text, got.Text)
		assert.Equal(t, chunk.Vector, got.Vector)
	})

	t.Run("missing position returns ErrNotFound", func(t *testing.T) {
		_, err := chunkRepo.GetChunk(ctx, 999999)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestChunkRepository_GetAllChunks(t *testing.T) {
	chunkRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	defer chunkRepo.Close()

	ctx := context.Background()

	texts := []string{"alpha chunk", "beta chunk", "gamma chunk"}
	for _, text := range texts {
		_, err := chunkRepo.AddChunks(ctx, newTestChunk("doc", text))
		require.NoError(t, err)
	}

	all, err := chunkRepo.GetAllChunks(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	// Position order must match insertion order; index rows depend on it
	for i := 1; i < len(all); i++ {
		assert.Greater(t, all[i].Position, all[i-1].Position)
	}
	for i, text := range texts {
		assert.Equal(t, text, all[i].Text)
	}

	count, err := chunkRepo.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestChunkRepository_ForEachChunk(t *testing.T) {
	chunkRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	defer chunkRepo.Close()

	ctx := context.Background()

	var chunks []*core.Chunk
	for _, text := range []string{"one", "two", "three", "four"} {
		chunk := newTestChunk("doc", text)
		_, err := chunkRepo.AddChunks(ctx, chunk)
		require.NoError(t, err)
		chunks = append(chunks, chunk)
	}

	t.Run("resumes after cursor", func(t *testing.T) {
		var seen []string
		err := chunkRepo.ForEachChunk(ctx, chunks[1].Position, func(c *core.Chunk) error {
			seen = append(seen, c.Text)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"three", "four"}, seen)
	})

	t.Run("stops on error", func(t *testing.T) {
		sentinel := errors.New("stop")
		calls := 0
		err := chunkRepo.ForEachChunk(ctx, 0, func(c *core.Chunk) error {
			calls++
			return sentinel
		})
		assert.ErrorIs(t, err, sentinel)
		assert.Equal(t, 1, calls)
	})
}

func TestChunkRepository_UpdateChunks(t *testing.T) {
	chunkRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	defer chunkRepo.Close()

	ctx := context.Background()

	t.Run("rewrites vector in place", func(t *testing.T) {
		chunk := newTestChunk("doc", "re-embeddable chunk")
		_, err := chunkRepo.AddChunks(ctx, chunk)
		require.NoError(t, err)

		chunk.Vector = []float32{0.9, 0.1, 0.0}
		_, err = chunkRepo.UpdateChunks(ctx, chunk)
		require.NoError(t, err)

		got, err := chunkRepo.GetChunk(ctx, chunk.Position)
		require.NoError(t, err)
		assert.Equal(t, []float32{0.9, 0.1, 0.0}, got.Vector)
	})

	t.Run("unknown position returns ErrNotFound", func(t *testing.T) {
		ghost := newTestChunk("doc", "never stored")
		ghost.Position = 424242
		_, err := chunkRepo.UpdateChunks(ctx, ghost)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}
