package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/veridex/veridex/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS results (
	seq           INTEGER PRIMARY KEY AUTOINCREMENT,
	id            TEXT NOT NULL,
	input_text    TEXT NOT NULL,
	source_url    TEXT NOT NULL DEFAULT '',
	verdict       TEXT NOT NULL,
	confidence    REAL NOT NULL,
	explanation   TEXT NOT NULL DEFAULT '',
	sources       TEXT NOT NULL DEFAULT '[]',
	key_points    TEXT NOT NULL DEFAULT '[]',
	analyzed_at   TEXT NOT NULL,
	is_from_cache INTEGER NOT NULL DEFAULT 0,
	model_version TEXT NOT NULL DEFAULT ''
);
`

// SQLiteStore persists the bounded history in an on-disk table. The
// table is an implementation detail, not an interchange format.
type SQLiteStore struct {
	mu       sync.Mutex
	db       *sql.DB
	capacity int
}

// NewSQLiteStore opens (creating if needed) the history database at path.
func NewSQLiteStore(path string, capacity int) (*SQLiteStore, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create history table: %w", err)
	}

	return &SQLiteStore{db: db, capacity: capacity}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Insert appends a result and trims the table past capacity in one
// transaction.
func (s *SQLiteStore) Insert(result model.AnalysisResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sources, err := json.Marshal(result.Sources)
	if err != nil {
		return fmt.Errorf("encode sources: %w", err)
	}
	keyPoints, err := json.Marshal(result.KeyPoints)
	if err != nil {
		return fmt.Errorf("encode key points: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		INSERT INTO results
			(id, input_text, source_url, verdict, confidence, explanation,
			 sources, key_points, analyzed_at, is_from_cache, model_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID,
		result.InputText,
		result.SourceURL,
		string(result.Verdict),
		result.ConfidenceScore,
		result.Explanation,
		string(sources),
		string(keyPoints),
		result.AnalyzedAt.UTC().Format(time.RFC3339Nano),
		boolToInt(result.IsFromCache),
		result.ModelVersion,
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}

	_, err = tx.Exec(`
		DELETE FROM results WHERE seq NOT IN
			(SELECT seq FROM results ORDER BY seq DESC LIMIT ?)`,
		s.capacity,
	)
	if err != nil {
		return fmt.Errorf("trim history: %w", err)
	}

	return tx.Commit()
}

// List returns up to limit results, most recent first.
func (s *SQLiteStore) List(limit int) ([]model.AnalysisResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > s.capacity {
		limit = s.capacity
	}

	rows, err := s.db.Query(`
		SELECT id, input_text, source_url, verdict, confidence, explanation,
		       sources, key_points, analyzed_at, is_from_cache, model_version
		FROM results ORDER BY seq DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []model.AnalysisResult
	for rows.Next() {
		var (
			r          model.AnalysisResult
			verdict    string
			sources    string
			keyPoints  string
			analyzedAt string
			fromCache  int
		)
		if err := rows.Scan(&r.ID, &r.InputText, &r.SourceURL, &verdict,
			&r.ConfidenceScore, &r.Explanation, &sources, &keyPoints,
			&analyzedAt, &fromCache, &r.ModelVersion); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}

		r.Verdict = model.Verdict(verdict)
		r.IsFromCache = fromCache != 0
		if err := json.Unmarshal([]byte(sources), &r.Sources); err != nil {
			r.Sources = nil
		}
		if err := json.Unmarshal([]byte(keyPoints), &r.KeyPoints); err != nil {
			r.KeyPoints = nil
		}
		if t, err := time.Parse(time.RFC3339Nano, analyzedAt); err == nil {
			r.AnalyzedAt = t
		}

		results = append(results, r)
	}
	return results, rows.Err()
}

// Clear empties the history table.
func (s *SQLiteStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`DELETE FROM results`)
	return err
}

// Len reports the number of stored results.
func (s *SQLiteStore) Len() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM results`).Scan(&n)
	return n, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
