package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/answerit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryLogRepository_AppendEntries(t *testing.T) {
	_, logRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	defer logRepo.Close()

	ctx := context.Background()

	entry := &core.QueryLogEntry{
		Query:          "how do refunds work",
		Classification: core.ClassificationSimple,
		Model:          "llama-3.1-8b-instant",
		AvgSimilarity:  0.7,
		Confidence:     0.8,
		LatencyMillis:  250,
	}

	appended, err := logRepo.AppendEntries(ctx, entry)
	require.NoError(t, err)
	require.Len(t, appended, 1)
	assert.NotZero(t, appended[0].Id)
	assert.False(t, appended[0].Timestamp.IsZero())

	count, err := logRepo.CountEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestQueryLogRepository_GetRecentEntries(t *testing.T) {
	_, logRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	defer logRepo.Close()

	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i, query := range []string{"oldest", "middle", "newest"} {
		_, err := logRepo.AppendEntries(ctx, &core.QueryLogEntry{
			Query:     query,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	t.Run("newest first", func(t *testing.T) {
		recent, err := logRepo.GetRecentEntries(ctx, 2)
		require.NoError(t, err)
		require.Len(t, recent, 2)
		assert.Equal(t, "newest", recent[0].Query)
		assert.Equal(t, "middle", recent[1].Query)
	})

	t.Run("limit larger than log", func(t *testing.T) {
		recent, err := logRepo.GetRecentEntries(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, recent, 3)
	})
}
