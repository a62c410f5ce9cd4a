package search

import (
	"github.com/poiesic/answerit/core"
	"github.com/poiesic/answerit/index"
)

// RetrievalMonitor provides hooks to observe the retrieval pipeline.
// Implement this interface to track intermediate steps and results during retrieval.
type RetrievalMonitor interface {
	Start(query string)
	QueryExpanded(original, expanded string)
	AfterDenseSearch(hits []index.DenseHit)
	AfterSparseSearch(hits []index.SparseHit)
	AfterFusion(candidates []*core.ScoredCandidate)
	AfterFilter(survivors []*core.ScoredCandidate, threshold float64)
	RerankSkipped(topSimilarity float64)
	AfterRerank(prefix []*core.ScoredCandidate)
	Finish(result *core.RetrievalResult)
}

// noopMonitor is a no-op implementation of RetrievalMonitor
type noopMonitor struct{}

var _ RetrievalMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                     {}
func (n *noopMonitor) QueryExpanded(_, _ string)                          {}
func (n *noopMonitor) AfterDenseSearch(_ []index.DenseHit)                {}
func (n *noopMonitor) AfterSparseSearch(_ []index.SparseHit)              {}
func (n *noopMonitor) AfterFusion(_ []*core.ScoredCandidate)              {}
func (n *noopMonitor) AfterFilter(_ []*core.ScoredCandidate, _ float64)   {}
func (n *noopMonitor) RerankSkipped(_ float64)                            {}
func (n *noopMonitor) AfterRerank(_ []*core.ScoredCandidate)              {}
func (n *noopMonitor) Finish(_ *core.RetrievalResult)                     {}
