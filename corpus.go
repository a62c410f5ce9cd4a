package answerit

import (
	"sync"

	"github.com/poiesic/answerit/core"
)

// memoryCorpus is the in-memory metadata table. Row numbers match the dense
// and sparse index rows; rows are only ever appended, never reordered.
type memoryCorpus struct {
	mu     sync.RWMutex
	chunks []*core.Chunk
}

func (c *memoryCorpus) ChunkAt(row int) *core.Chunk {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if row < 0 || row >= len(c.chunks) {
		return nil
	}
	return c.chunks[row]
}

func (c *memoryCorpus) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.chunks)
}

func (c *memoryCorpus) append(chunks ...*core.Chunk) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chunks = append(c.chunks, chunks...)
}
