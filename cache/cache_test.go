package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/answerit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func response(answer string) *core.Response {
	return &core.Response{Answer: answer}
}

func TestQueryCache_SetGet(t *testing.T) {
	c := NewQueryCache()

	t.Run("round trip", func(t *testing.T) {
		c.Set("How do refunds work?", response("within 5 days"))

		got := c.Get("How do refunds work?")
		require.NotNil(t, got)
		assert.Equal(t, "within 5 days", got.Answer)
	})

	t.Run("normalized variants share an entry", func(t *testing.T) {
		c.Set("What is Clearpath?", response("a product"))

		assert.NotNil(t, c.Get("  what is clearpath  "))
		assert.NotNil(t, c.Get("What is Clearpath!"))
		assert.NotNil(t, c.Get("what is clearpath."))
	})

	t.Run("miss returns nil", func(t *testing.T) {
		assert.Nil(t, c.Get("never asked"))
	})

	t.Run("set existing overwrites", func(t *testing.T) {
		c.Set("overwrite me", response("old"))
		c.Set("overwrite me", response("new"))

		got := c.Get("overwrite me")
		require.NotNil(t, got)
		assert.Equal(t, "new", got.Answer)
	})
}

func TestQueryCache_TTL(t *testing.T) {
	now := time.Now()
	c := NewQueryCache(
		WithTTL(300*time.Second),
		WithClock(func() time.Time { return now }),
	)

	c.Set("stale question", response("stale answer"))
	require.NotNil(t, c.Get("stale question"))

	t.Run("expired entry is a miss and is collected", func(t *testing.T) {
		now = now.Add(301 * time.Second)

		assert.Nil(t, c.Get("stale question"))
		assert.Equal(t, 0, c.Stats().Size)
	})

	t.Run("set resets the TTL", func(t *testing.T) {
		c.Set("refreshed", response("v1"))
		now = now.Add(200 * time.Second)
		c.Set("refreshed", response("v2"))
		now = now.Add(200 * time.Second)

		// 400s since first write, 200s since refresh
		got := c.Get("refreshed")
		require.NotNil(t, got)
		assert.Equal(t, "v2", got.Answer)
	})
}

func TestQueryCache_Eviction(t *testing.T) {
	c := NewQueryCache(WithMaxEntries(3))

	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("question %d", i), response(fmt.Sprintf("answer %d", i)))
	}

	// Touch question 0 so question 1 becomes the LRU
	require.NotNil(t, c.Get("question 0"))

	c.Set("question 3", response("answer 3"))

	assert.Nil(t, c.Get("question 1"), "least recently used entry should be evicted")
	assert.NotNil(t, c.Get("question 0"))
	assert.NotNil(t, c.Get("question 2"))
	assert.NotNil(t, c.Get("question 3"))
	assert.Equal(t, 3, c.Stats().Size)
}

func TestQueryCache_Stats(t *testing.T) {
	c := NewQueryCache(WithMaxEntries(8))

	stats := c.Stats()
	assert.Equal(t, 0, stats.Size)
	assert.Equal(t, 8, stats.MaxSize)

	c.Set("a", response("1"))
	c.Set("b", response("2"))
	assert.Equal(t, 2, c.Stats().Size)

	c.Clear()
	assert.Equal(t, 0, c.Stats().Size)
	assert.Nil(t, c.Get("a"))
}
