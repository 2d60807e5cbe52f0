package history

import (
	"sync"

	"github.com/veridex/veridex/internal/model"
)

// MemoryStore keeps the history in a mutex-guarded slice,
// most-recent-first.
type MemoryStore struct {
	mu       sync.Mutex
	capacity int
	results  []model.AnalysisResult
}

// NewMemoryStore creates a memory store with the given capacity
// (<= 0 uses DefaultCapacity).
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{
		capacity: capacity,
		results:  make([]model.AnalysisResult, 0, capacity),
	}
}

// Insert prepends a result and trims past capacity.
func (s *MemoryStore) Insert(result model.AnalysisResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = append([]model.AnalysisResult{result}, s.results...)
	if len(s.results) > s.capacity {
		s.results = s.results[:s.capacity]
	}
	return nil
}

// List returns up to limit results, most recent first.
func (s *MemoryStore) List(limit int) ([]model.AnalysisResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.results)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]model.AnalysisResult, n)
	copy(out, s.results[:n])
	return out, nil
}

// Clear empties the history.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = s.results[:0]
	return nil
}

// Len reports the number of stored results.
func (s *MemoryStore) Len() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results), nil
}
