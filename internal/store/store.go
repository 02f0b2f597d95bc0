// Package store persists extraction runs and per-page feature rows in
// SQLite, so a dataset can be re-exported or inspected without re-parsing
// every mirrored page.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const schemaStmt = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	started_at TIMESTAMP NOT NULL,
	pages      INTEGER NOT NULL DEFAULT 0,
	finished   INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS pages (
	run_id   TEXT NOT NULL REFERENCES runs(id),
	url      TEXT NOT NULL,
	path     TEXT NOT NULL,
	label    INTEGER NOT NULL,
	features TEXT NOT NULL,
	UNIQUE (run_id, path)
);
CREATE INDEX IF NOT EXISTS pages_run_idx ON pages (run_id);
`

// Store wraps the SQLite database holding run history.
type Store struct {
	DB *sql.DB
}

// Run identifies one extraction run.
type Run struct {
	ID        string
	StartedAt time.Time
}

// NewStore opens (creating if needed) the database at path.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", path, err)
	}
	if _, err := db.Exec(schemaStmt); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating store schema: %w", err)
	}
	return &Store{DB: db}, nil
}

// BeginRun records the start of an extraction run and returns its identity.
func (s *Store) BeginRun(ctx context.Context) (Run, error) {
	run := Run{ID: uuid.NewString(), StartedAt: time.Now().UTC()}
	_, err := s.DB.ExecContext(ctx,
		"INSERT INTO runs (id, started_at) VALUES (?, ?)", run.ID, run.StartedAt)
	if err != nil {
		return Run{}, fmt.Errorf("recording run start: %w", err)
	}
	return run, nil
}

// FinishRun marks a run complete with its final row count.
func (s *Store) FinishRun(ctx context.Context, runID string, pages int) error {
	_, err := s.DB.ExecContext(ctx,
		"UPDATE runs SET pages = ?, finished = 1 WHERE id = ?", pages, runID)
	return err
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.DB.Close()
}
