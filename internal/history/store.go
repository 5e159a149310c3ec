package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS builds (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    bundle TEXT NOT NULL,
    artifact TEXT NOT NULL DEFAULT '',
    name TEXT NOT NULL,
    version TEXT NOT NULL DEFAULT '',
    size_bytes INTEGER NOT NULL DEFAULT 0,
    duration_ms INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL,
    detail TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_builds_created_at ON builds(created_at);
`

// Build statuses recorded in the store.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Record is one build receipt.
type Record struct {
	ID        int64         `json:"id"`
	Bundle    string        `json:"bundle"`
	Artifact  string        `json:"artifact,omitempty"`
	Name      string        `json:"name"`
	Version   string        `json:"version,omitempty"`
	SizeBytes int64         `json:"size_bytes"`
	Duration  time.Duration `json:"duration"`
	Status    string        `json:"status"`
	Detail    string        `json:"detail,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// Store persists build receipts in a local SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to (or creates) the receipt database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Add inserts a receipt and returns it with ID and timestamp set.
func (s *Store) Add(ctx context.Context, rec Record) (Record, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO builds (
            bundle, artifact, name, version, size_bytes,
            duration_ms, status, detail, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Bundle,
		rec.Artifact,
		rec.Name,
		rec.Version,
		rec.SizeBytes,
		rec.Duration.Milliseconds(),
		rec.Status,
		rec.Detail,
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert build receipt: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Record{}, fmt.Errorf("read receipt id: %w", err)
	}
	rec.ID = id
	rec.CreatedAt = now
	return rec, nil
}

// Recent returns up to limit receipts, newest first. limit <= 0 means
// a default of 20.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, bundle, artifact, name, version, size_bytes,
            duration_ms, status, detail, created_at
        FROM builds ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query build receipts: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var durationMS int64
		var createdAt string
		if err := rows.Scan(
			&rec.ID, &rec.Bundle, &rec.Artifact, &rec.Name, &rec.Version,
			&rec.SizeBytes, &durationMS, &rec.Status, &rec.Detail, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan build receipt: %w", err)
		}
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		if ts, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			rec.CreatedAt = ts
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Clear deletes all receipts and returns the number removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM builds")
	if err != nil {
		return 0, fmt.Errorf("clear build receipts: %w", err)
	}
	return res.RowsAffected()
}
