package index

import (
	"slices"
	"sync"
)

// DenseHit is a single dense search result addressing a corpus row.
type DenseHit struct {
	Row   int
	Score float64
}

// DenseIndex is a flat inner-product index over unit-normalized vectors.
// Rows are appended in corpus position order so that a hit's Row matches the
// metadata table. Search is an exhaustive scan; corpora here are small enough
// that brute force beats the bookkeeping of an ANN structure.
type DenseIndex struct {
	mu      sync.RWMutex
	vectors [][]float32
}

// NewDenseIndex creates an empty dense index.
func NewDenseIndex() *DenseIndex {
	return &DenseIndex{}
}

// Add appends a vector as the next row.
func (idx *DenseIndex) Add(vector []float32) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.vectors = append(idx.vectors, vector)
}

// Len returns the number of indexed rows.
func (idx *DenseIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.vectors)
}

// Search returns the k rows with the highest inner product against the query
// vector, highest first. An empty index or k < 1 yields no results. Vectors
// are unit-normalized at embedding time, so the inner product is the cosine
// similarity.
func (idx *DenseIndex) Search(query []float32, k int) []DenseHit {
	if k < 1 {
		return nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.vectors) == 0 {
		return nil
	}

	hits := make([]DenseHit, 0, len(idx.vectors))
	for row, vector := range idx.vectors {
		hits = append(hits, DenseHit{Row: row, Score: dotProduct(query, vector)})
	}

	slices.SortStableFunc(hits, func(a, b DenseHit) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float64 {
	var sum float64
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
