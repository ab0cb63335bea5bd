package search

import "github.com/poiesic/feria/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterCorrection(corrected, suggestion string)
	AfterVectorSearch(matches []core.Match)
	AfterItemRetrieval(items []*core.Item)
	FilteredOut(item *core.Item)
	Finish(response *Response)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                    {}
func (n *noopMonitor) AfterCorrection(_, _ string)       {}
func (n *noopMonitor) AfterVectorSearch(_ []core.Match)  {}
func (n *noopMonitor) AfterItemRetrieval(_ []*core.Item) {}
func (n *noopMonitor) FilteredOut(_ *core.Item)          {}
func (n *noopMonitor) Finish(_ *Response)                {}
