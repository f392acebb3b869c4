package report

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/viant/imgsim/compare"
	"github.com/viant/imgsim/engine"
)

// Entry is one recorded comparison. Score is derived from the stored counts
// when listing.
type Entry struct {
	ID         int64     `json:"id"`
	PathA      string    `json:"path_a"`
	PathB      string    `json:"path_b"`
	KeypointsA int       `json:"keypoints_a"`
	KeypointsB int       `json:"keypoints_b"`
	Good       int       `json:"good_matches"`
	Excluded   int       `json:"excluded,omitempty"`
	Degenerate bool      `json:"degenerate,omitempty"`
	Score      float64   `json:"score"`
	Matcher    string    `json:"matcher,omitempty"`
	Ratio      float64   `json:"ratio"`
	Error      string    `json:"error,omitempty"`
	Elapsed    int64     `json:"elapsed_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// Query filters List.
type Query struct {
	// Limit caps the number of entries; 0 means 50.
	Limit int
	// Path keeps entries where either side equals Path.
	Path string
	// MinScore keeps successful entries scoring at least MinScore.
	MinScore float64
}

// History stores comparison outcomes in SQLite.
type History struct {
	db  *sql.DB
	now func() time.Time
}

// OpenHistory opens (or creates) the history database at dsn.
func OpenHistory(dsn string) (*History, error) {
	if err := engine.RegisterFunctions(); err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	db, err := engine.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("report: open %s: %w", dsn, err)
	}
	db.SetMaxOpenConns(1)
	h, err := NewHistory(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return h, nil
}

// NewHistory wraps db, creating the schema when needed. Listing relies on
// engine.RegisterFunctions having run before db opened its connections.
func NewHistory(db *sql.DB) (*History, error) {
	if db == nil {
		return nil, fmt.Errorf("report: db is nil")
	}
	if err := EnsureSchema(db); err != nil {
		return nil, fmt.Errorf("report: schema: %w", err)
	}
	return &History{db: db, now: time.Now}, nil
}

// Record stores outcomes in a single transaction.
func (h *History) Record(ctx context.Context, outcomes ...compare.Outcome) error {
	if len(outcomes) == 0 {
		return nil
	}
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO comparisons(
    path_a, path_b, keypoints_a, keypoints_b, good, excluded, degenerate,
    matcher, ratio, error, elapsed_ms, created_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	created := h.now().UTC().Format(time.RFC3339Nano)
	for _, o := range outcomes {
		var (
			kpA, kpB, good, excluded, degenerate int
			matcher, errText                     string
			ratio                                float64
			elapsed                              int64
		)
		if r := o.Result; r != nil {
			kpA, kpB, good, excluded = r.KeypointsA, r.KeypointsB, r.Good, r.Excluded
			if r.Degenerate {
				degenerate = 1
			}
			matcher, ratio, elapsed = r.Matcher, r.Ratio, r.Elapsed.Milliseconds()
		}
		if o.Err != nil {
			errText = o.Err.Error()
		}
		if _, err := stmt.ExecContext(ctx, o.A, o.B, kpA, kpB, good, excluded, degenerate,
			matcher, ratio, errText, elapsed, created); err != nil {
			return fmt.Errorf("report: record %s vs %s: %w", o.A, o.B, err)
		}
	}
	return tx.Commit()
}

// List returns the most recent entries first.
func (h *History) List(ctx context.Context, q Query) ([]Entry, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	var (
		where []string
		args  []any
	)
	if q.Path != "" {
		where = append(where, "(path_a = ? OR path_b = ?)")
		args = append(args, q.Path, q.Path)
	}
	if q.MinScore > 0 {
		where = append(where, "error = '' AND imgsim_similarity(good, keypoints_a, keypoints_b) >= ?")
		args = append(args, q.MinScore)
	}
	query := `SELECT id, path_a, path_b, keypoints_a, keypoints_b, good, excluded, degenerate,
    imgsim_similarity(good, keypoints_a, keypoints_b), COALESCE(matcher, ''), COALESCE(ratio, 0),
    error, elapsed_ms, created_at
FROM comparisons`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e          Entry
			degenerate int
			created    string
		)
		if err := rows.Scan(&e.ID, &e.PathA, &e.PathB, &e.KeypointsA, &e.KeypointsB, &e.Good, &e.Excluded,
			&degenerate, &e.Score, &e.Matcher, &e.Ratio, &e.Error, &e.Elapsed, &created); err != nil {
			return nil, err
		}
		e.Degenerate = degenerate != 0
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("report: entry %d created_at: %w", e.ID, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Close closes the underlying database.
func (h *History) Close() error { return h.db.Close() }
