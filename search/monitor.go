package search

import (
	"github.com/halcyard/visimil/core"
	"github.com/halcyard/visimil/similarity"
)

// SearchMonitor receives callbacks at each stage of a search.
// Implementations are used for diagnostics and tests. RecordSkipped may be
// called from scoring workers; all other methods are called from the
// goroutine running the search.
type SearchMonitor interface {
	// Start is called when the search begins.
	Start(query similarity.Query)

	// AfterFetch is called after the store returns its records.
	AfterFetch(count int)

	// RecordSkipped is called for each record that could not be scored.
	RecordSkipped(id core.ID, err error)

	// AfterScoring is called with all scored records, sorted descending.
	AfterScoring(results []*core.ScoredRecord)

	// AfterThreshold is called with the batch distribution and the selected
	// cutoff.
	AfterThreshold(dist similarity.Distribution, threshold float64)

	// Finish is called with the final filtered, truncated results.
	Finish(results []*core.ScoredRecord)
}

// noopMonitor is used when no monitor is provided.
type noopMonitor struct{}

func (noopMonitor) Start(similarity.Query)                          {}
func (noopMonitor) AfterFetch(int)                                  {}
func (noopMonitor) RecordSkipped(core.ID, error)                    {}
func (noopMonitor) AfterScoring([]*core.ScoredRecord)               {}
func (noopMonitor) AfterThreshold(similarity.Distribution, float64) {}
func (noopMonitor) Finish([]*core.ScoredRecord)                     {}
