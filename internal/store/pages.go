package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/xssvec/xssvec/internal/extract"
)

// InsertPage stores one page's feature row under the given run. A page
// already stored for that run (duplicate manifest entries happen) is left in
// place without error.
func (s *Store) InsertPage(ctx context.Context, runID, url, path string, label int, feats extract.Features) error {
	blob, err := json.Marshal(feats)
	if err != nil {
		return fmt.Errorf("encoding features for %s: %w", path, err)
	}
	_, err = s.DB.ExecContext(ctx,
		"INSERT INTO pages (run_id, url, path, label, features) VALUES (?, ?, ?, ?, ?)",
		runID, url, path, label, string(blob))
	if ErrorIsConstraintViolation(err) {
		return nil
	}
	return err
}

// PageFeatures returns the stored feature rows of a run, insertion-ordered.
func (s *Store) PageFeatures(ctx context.Context, runID string) ([]extract.Features, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT features FROM pages WHERE run_id = ? ORDER BY rowid", runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []extract.Features
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, err
		}
		var feats extract.Features
		if err := json.Unmarshal([]byte(blob), &feats); err != nil {
			return nil, fmt.Errorf("decoding stored features: %w", err)
		}
		out = append(out, feats)
	}
	return out, rows.Err()
}

// Stats summarizes the store contents for the stats endpoint.
type Stats struct {
	Runs      int `json:"runs"`
	Pages     int `json:"pages"`
	Malicious int `json:"malicious"`
	Benign    int `json:"benign"`
}

// GetStats counts stored runs and pages by label.
func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	var st Stats
	row := s.DB.QueryRowContext(ctx, `
SELECT
	(SELECT COUNT(*) FROM runs),
	COUNT(*),
	COALESCE(SUM(label = 1), 0),
	COALESCE(SUM(label = 0), 0)
FROM pages`)
	if err := row.Scan(&st.Runs, &st.Pages, &st.Malicious, &st.Benign); err != nil {
		return Stats{}, err
	}
	return st, nil
}

// ErrorIsConstraintViolation reports whether err is a SQLite constraint
// failure, e.g. a duplicate page within a run.
func ErrorIsConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqlite3Err sqlite3.Error
	if errors.As(err, &sqlite3Err) {
		return sqlite3Err.Code == sqlite3.ErrConstraint
	}
	return false
}
