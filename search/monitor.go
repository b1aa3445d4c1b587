package search

import "github.com/poiesic/refdex/core"

// RefineMonitor provides hooks to observe the refinement pipeline.
// Implement this interface to track intermediate stages during a query.
type RefineMonitor interface {
	Start(query *core.SearchQuery)
	AfterRetrieval(candidates []*core.Candidate)
	AfterRerank(candidates []*core.Candidate)
	AfterBoost(candidates []*core.Candidate)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of RefineMonitor
type noopMonitor struct{}

var _ RefineMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ *core.SearchQuery)            {}
func (n *noopMonitor) AfterRetrieval(_ []*core.Candidate)   {}
func (n *noopMonitor) AfterRerank(_ []*core.Candidate)      {}
func (n *noopMonitor) AfterBoost(_ []*core.Candidate)       {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)        {}
