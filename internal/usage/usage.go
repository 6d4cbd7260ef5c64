// Package usage provides the SQLite-backed usage-weight store that backs
// metadata.Source.UsageWeight (spec.md §4.6, §4.8): a per-(server, kind,
// path) hit counter the Completion Assembler uses to nudge frequently-used
// objects ahead of same-band siblings.
package usage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sadopc/sqlscope/internal/config"
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS usage (
	server      TEXT NOT NULL,
	kind        TEXT NOT NULL,
	path        TEXT NOT NULL,
	hit_count   INTEGER NOT NULL DEFAULT 0,
	last_used   DATETIME,
	PRIMARY KEY (server, kind, path)
)`

// Store provides SQLite-backed usage-weight storage.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the usage database at ConfigDir()/usage.db and
// ensures the schema exists.
func New() (*Store, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return nil, fmt.Errorf("usage: config dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("usage: create dir: %w", err)
	}

	return Open(filepath.Join(dir, "usage.db"))
}

// Open opens (or creates) the usage database at the given path.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("usage: open db: %w", err)
	}

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("usage: create table: %w", err)
	}

	return &Store{db: db}, nil
}

// Record increments the hit count for (server, kind, path) by one and stamps
// last_used. kind/path are stored lowercased to match the case-insensitive
// lookups the resolver and assembler perform elsewhere in the pipeline.
func (s *Store) Record(server, kind, path string) error {
	_, err := s.db.Exec(
		`INSERT INTO usage (server, kind, path, hit_count, last_used)
		 VALUES (?, ?, ?, 1, ?)
		 ON CONFLICT(server, kind, path) DO UPDATE SET
		   hit_count = hit_count + 1,
		   last_used = excluded.last_used`,
		server, strings.ToLower(kind), strings.ToLower(path), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("usage record: %w", err)
	}
	return nil
}

// UsageWeight implements metadata.Source.UsageWeight: it looks up the hit
// count for (server, kind, path), returning 0 for anything never recorded.
// It never returns an error; a lookup failure degrades to "no weight"
// rather than failing the completion request (spec.md §4.6 "must never
// silently swallow metadata errors" binds the Resolver's own fan-out, not
// this best-effort ranking signal).
func (s *Store) UsageWeight(ctx context.Context, server, kind, path string) int {
	var n int
	row := s.db.QueryRowContext(ctx,
		`SELECT hit_count FROM usage WHERE server = ? AND kind = ? AND path = ?`,
		server, strings.ToLower(kind), strings.ToLower(path),
	)
	if err := row.Scan(&n); err != nil {
		return 0
	}
	return n
}

// Clear deletes all recorded usage weights.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM usage`); err != nil {
		return fmt.Errorf("usage clear: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
