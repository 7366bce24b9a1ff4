package learning

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"taskrouter/internal/logging"
)

// Store persists pattern weights to a SQLite file so learned routing
// survives restarts. All methods are safe for use under the engine's
// stripe serialization; the store itself adds no locking.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the weight database at path.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open weight store: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS pattern_weights (
		signature TEXT NOT NULL,
		handler TEXT NOT NULL,
		domain TEXT NOT NULL DEFAULT '',
		keywords TEXT NOT NULL,
		weight REAL NOT NULL,
		confidence REAL NOT NULL DEFAULT 0,
		history TEXT NOT NULL DEFAULT '[]',
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (signature, handler)
	);
	CREATE INDEX IF NOT EXISTS idx_pattern_weights_weight ON pattern_weights(weight);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize weight schema: %w", err)
	}

	logging.Learning("weight store ready at %s", path)
	return &Store{db: db}, nil
}

// Save upserts one pattern weight.
func (s *Store) Save(pw *PatternWeight) error {
	keywords, err := json.Marshal(pw.Keywords)
	if err != nil {
		return fmt.Errorf("failed to marshal keywords: %w", err)
	}
	history, err := json.Marshal(pw.History)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO pattern_weights (signature, handler, domain, keywords, weight, confidence, history, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(signature, handler) DO UPDATE SET
			domain = excluded.domain,
			keywords = excluded.keywords,
			weight = excluded.weight,
			confidence = excluded.confidence,
			history = excluded.history,
			updated_at = excluded.updated_at`,
		string(pw.Signature), pw.Handler, pw.Domain, string(keywords),
		pw.Weight, pw.Confidence, string(history), pw.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save pattern weight: %w", err)
	}
	return nil
}

// LoadAll reads every persisted pattern weight.
func (s *Store) LoadAll() ([]*PatternWeight, error) {
	rows, err := s.db.Query(`
		SELECT signature, handler, domain, keywords, weight, confidence, history, updated_at
		FROM pattern_weights`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pattern weights: %w", err)
	}
	defer rows.Close()

	var out []*PatternWeight
	for rows.Next() {
		var (
			pw        PatternWeight
			sig       string
			keywords  string
			history   string
			updatedAt string
		)
		if err := rows.Scan(&sig, &pw.Handler, &pw.Domain, &keywords, &pw.Weight,
			&pw.Confidence, &history, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pattern weight: %w", err)
		}
		pw.Signature = Signature(sig)
		if err := json.Unmarshal([]byte(keywords), &pw.Keywords); err != nil {
			return nil, fmt.Errorf("corrupt keywords for %s/%s: %w", sig, pw.Handler, err)
		}
		if err := json.Unmarshal([]byte(history), &pw.History); err != nil {
			return nil, fmt.Errorf("corrupt history for %s/%s: %w", sig, pw.Handler, err)
		}
		ts, err := time.Parse(time.RFC3339Nano, updatedAt)
		if err != nil {
			return nil, fmt.Errorf("corrupt timestamp for %s/%s: %w", sig, pw.Handler, err)
		}
		pw.UpdatedAt = ts
		out = append(out, &pw)
	}
	return out, rows.Err()
}

// Delete removes one persisted pattern weight.
func (s *Store) Delete(sig Signature, handler string) error {
	_, err := s.db.Exec(`DELETE FROM pattern_weights WHERE signature = ? AND handler = ?`,
		string(sig), handler)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
