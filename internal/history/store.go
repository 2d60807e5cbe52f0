// Package history keeps a bounded, most-recent-first record of past
// fact-check results. Inserting past capacity evicts the oldest entry;
// entries are immutable once stored.
package history

import "github.com/veridex/veridex/internal/model"

// DefaultCapacity bounds the history when no capacity is configured.
const DefaultCapacity = 20

// Store is the bounded result history. Implementations are safe for
// concurrent use; concurrent inserts interleave in arrival order.
type Store interface {
	// Insert prepends a result, evicting the oldest entries beyond
	// capacity.
	Insert(result model.AnalysisResult) error

	// List returns up to limit results, most recent first. limit <= 0
	// returns everything.
	List(limit int) ([]model.AnalysisResult, error)

	// Clear empties the history.
	Clear() error

	// Len reports the current number of entries.
	Len() (int, error)
}
