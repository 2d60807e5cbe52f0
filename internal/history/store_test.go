package history

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/veridex/veridex/internal/model"
)

func sampleResult(i int) model.AnalysisResult {
	return model.AnalysisResult{
		ID:              fmt.Sprintf("result-%d", i),
		InputText:       fmt.Sprintf("claim number %d with enough length", i),
		Verdict:         model.VerdictUnverified,
		ConfidenceScore: 0.5,
		Explanation:     "test",
		Sources:         []string{"https://example.com/a"},
		KeyPoints:       []string{"point"},
		AnalyzedAt:      time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Minute),
	}
}

// stores builds one of each Store implementation for shared test cases.
func stores(t *testing.T, capacity int) map[string]Store {
	t.Helper()

	sqliteStore, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"), capacity)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { _ = sqliteStore.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(capacity),
		"sqlite": sqliteStore,
	}
}

func TestStore_MostRecentFirst(t *testing.T) {
	for name, store := range stores(t, 20) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 3; i++ {
				if err := store.Insert(sampleResult(i)); err != nil {
					t.Fatalf("Insert failed: %v", err)
				}
			}

			results, err := store.List(0)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(results) != 3 {
				t.Fatalf("Expected 3 results, got %d", len(results))
			}
			if results[0].ID != "result-2" || results[2].ID != "result-0" {
				t.Errorf("Expected most-recent-first ordering, got %s..%s", results[0].ID, results[2].ID)
			}
		})
	}
}

func TestStore_CapacityEviction(t *testing.T) {
	const capacity = 20

	for name, store := range stores(t, capacity) {
		t.Run(name, func(t *testing.T) {
			// Insert capacity+1 distinct results
			for i := 0; i <= capacity; i++ {
				if err := store.Insert(sampleResult(i)); err != nil {
					t.Fatalf("Insert failed: %v", err)
				}
			}

			n, err := store.Len()
			if err != nil {
				t.Fatalf("Len failed: %v", err)
			}
			if n != capacity {
				t.Errorf("Expected size %d, got %d", capacity, n)
			}

			results, err := store.List(0)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if results[0].ID != fmt.Sprintf("result-%d", capacity) {
				t.Errorf("Expected newest entry first, got %s", results[0].ID)
			}
			for _, r := range results {
				if r.ID == "result-0" {
					t.Error("Expected oldest entry evicted")
				}
			}
		})
	}
}

func TestStore_ListLimit(t *testing.T) {
	for name, store := range stores(t, 20) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 5; i++ {
				_ = store.Insert(sampleResult(i))
			}

			results, err := store.List(2)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(results) != 2 {
				t.Errorf("Expected 2 results, got %d", len(results))
			}
			if results[0].ID != "result-4" {
				t.Errorf("Expected newest first, got %s", results[0].ID)
			}
		})
	}
}

func TestStore_Clear(t *testing.T) {
	for name, store := range stores(t, 20) {
		t.Run(name, func(t *testing.T) {
			_ = store.Insert(sampleResult(0))

			if err := store.Clear(); err != nil {
				t.Fatalf("Clear failed: %v", err)
			}

			n, err := store.Len()
			if err != nil {
				t.Fatalf("Len failed: %v", err)
			}
			if n != 0 {
				t.Errorf("Expected empty history, got %d entries", n)
			}
		})
	}
}

func TestSQLiteStore_RoundTripFields(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"), 20)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	want := sampleResult(1)
	want.Verdict = model.VerdictPartiallyTrue
	want.ConfidenceScore = 0.73
	want.IsFromCache = true
	want.ModelVersion = "sonar-pro"

	if err := store.Insert(want); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	results, err := store.List(1)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	got := results[0]

	if got.Verdict != want.Verdict {
		t.Errorf("Verdict: expected %s, got %s", want.Verdict, got.Verdict)
	}
	if got.ConfidenceScore != want.ConfidenceScore {
		t.Errorf("Confidence: expected %f, got %f", want.ConfidenceScore, got.ConfidenceScore)
	}
	if !got.IsFromCache {
		t.Error("Expected IsFromCache preserved")
	}
	if !got.AnalyzedAt.Equal(want.AnalyzedAt) {
		t.Errorf("AnalyzedAt: expected %v, got %v", want.AnalyzedAt, got.AnalyzedAt)
	}
	if len(got.Sources) != 1 || got.Sources[0] != want.Sources[0] {
		t.Errorf("Sources: expected %v, got %v", want.Sources, got.Sources)
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := NewSQLiteStore(path, 20)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	_ = store.Insert(sampleResult(7))
	_ = store.Close()

	reopened, err := NewSQLiteStore(path, 20)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	n, err := reopened.Len()
	if err != nil {
		t.Fatalf("Len failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 persisted entry, got %d", n)
	}
}
