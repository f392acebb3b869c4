package report

import (
	"database/sql"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS comparisons (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    path_a      TEXT NOT NULL,
    path_b      TEXT NOT NULL,
    keypoints_a INTEGER NOT NULL DEFAULT 0,
    keypoints_b INTEGER NOT NULL DEFAULT 0,
    good        INTEGER NOT NULL DEFAULT 0,
    excluded    INTEGER NOT NULL DEFAULT 0,
    degenerate  INTEGER NOT NULL DEFAULT 0,
    matcher     TEXT,
    ratio       REAL,
    error       TEXT NOT NULL DEFAULT '',
    elapsed_ms  INTEGER NOT NULL DEFAULT 0,
    created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS comparisons_path_a ON comparisons(path_a);
`

// EnsureSchema creates the comparisons table if it does not exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(historySchema)
	return err
}
