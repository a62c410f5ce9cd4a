package index

import (
	"math"
	"slices"
	"sync"
)

// Okapi BM25 parameters.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// SparseHit is a single sparse search result addressing a corpus row.
type SparseHit struct {
	Row   int
	Score float64
}

// SparseIndex is an Okapi BM25 index over tokenized chunk text. Rows are
// appended in corpus position order, mirroring the dense index, so both
// retrieval legs address the same metadata table.
type SparseIndex struct {
	mu       sync.RWMutex
	docs     []sparseDoc
	df       map[string]int // documents containing each term
	totalLen int
}

type sparseDoc struct {
	termFreq map[string]int
	length   int
}

// NewSparseIndex creates an empty sparse index.
func NewSparseIndex() *SparseIndex {
	return &SparseIndex{
		df: make(map[string]int),
	}
}

// Add tokenizes text and appends it as the next row.
func (idx *SparseIndex) Add(text string) {
	tokens := Tokenize(text)

	termFreq := make(map[string]int, len(tokens))
	for _, token := range tokens {
		termFreq[token]++
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	for term := range termFreq {
		idx.df[term]++
	}
	idx.docs = append(idx.docs, sparseDoc{termFreq: termFreq, length: len(tokens)})
	idx.totalLen += len(tokens)
}

// Len returns the number of indexed rows.
func (idx *SparseIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.docs)
}

// Search tokenizes the query with the same tokenizer used at build time and
// returns up to k rows with positive BM25 scores, highest first.
func (idx *SparseIndex) Search(query string, k int) []SparseHit {
	if k < 1 {
		return nil
	}

	terms := Tokenize(query)
	if len(terms) == 0 {
		return nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	n := len(idx.docs)
	if n == 0 {
		return nil
	}
	avgLen := float64(idx.totalLen) / float64(n)

	var hits []SparseHit
	for row, doc := range idx.docs {
		score := 0.0
		for _, term := range terms {
			tf := doc.termFreq[term]
			if tf == 0 {
				continue
			}
			idf := math.Log((float64(n)-float64(idx.df[term])+0.5)/(float64(idx.df[term])+0.5) + 1.0)
			norm := float64(tf) * (bm25K1 + 1.0) /
				(float64(tf) + bm25K1*(1.0-bm25B+bm25B*float64(doc.length)/avgLen))
			score += idf * norm
		}
		if score > 0 {
			hits = append(hits, SparseHit{Row: row, Score: score})
		}
	}

	slices.SortStableFunc(hits, func(a, b SparseHit) int {
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
