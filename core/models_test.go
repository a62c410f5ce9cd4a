package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDFromContent(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		id1 := IDFromContent("billing overview")
		id2 := IDFromContent("billing overview")
		assert.Equal(t, id1, id2)
	})

	t.Run("different content different id", func(t *testing.T) {
		id1 := IDFromContent("billing overview")
		id2 := IDFromContent("billing limits")
		assert.NotEqual(t, id1, id2)
	})

	t.Run("empty content has an id", func(t *testing.T) {
		assert.NotPanics(t, func() { _ = IDFromContent("") })
	})
}

func TestChunkKey(t *testing.T) {
	t.Run("uses chunk id when present", func(t *testing.T) {
		c := &Chunk{ChunkID: "doc1:3", Text: "some text"}
		assert.Equal(t, "doc1:3", c.Key())
	})

	t.Run("falls back to text prefix", func(t *testing.T) {
		c := &Chunk{Text: "short text"}
		assert.Equal(t, "short text", c.Key())
	})

	t.Run("text prefix capped at 80 characters", func(t *testing.T) {
		c := &Chunk{Text: strings.Repeat("a", 200)}
		assert.Len(t, c.Key(), 80)
	})
}
