// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// WHY SQLite?
// ───────────
// SQLite stores everything in a single file on disk. There is no
// network, no separate server process, and no installation beyond the
// driver. That makes it the natural stand-in for browser-local storage:
// the data lives next to the user and nowhere else.
//
// The snapshot is kept in a tiny key/value table. One row per key, the
// value column holds the JSON array written by storage.Encode.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql.
type SQLite struct {
	Db  *sql.DB
	key string
}

// New opens the SQLite database at path, creates the snapshots table if
// it does not already exist, and returns a ready-to-use *SQLite that
// reads and writes the snapshot stored under key.
func New(path, key string) (*SQLite, error) {
	if key == "" {
		key = storage.DefaultKey
	}

	// sql.Open does NOT open a real connection yet — it just validates
	// the driver name and data source name (DSN).
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// CREATE TABLE IF NOT EXISTS is idempotent — safe to run on every
	// startup.
	//
	// Schema:
	//   key   — snapshot name, e.g. "students"
	//   value — the JSON array of student records
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db, key: key}, nil
}

// Load reads the snapshot row. sql.ErrNoRows means nothing was saved
// yet, which is reported as an empty list rather than an error.
func (s *SQLite) Load(ctx context.Context) ([]types.Student, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT value FROM snapshots WHERE key = ? LIMIT 1",
	)
	if err != nil {
		return nil, fmt.Errorf("Load: prepare: %w", err)
	}
	defer stmt.Close()

	var value string
	err = stmt.QueryRowContext(ctx, s.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return make([]types.Student, 0), nil
	}
	if err != nil {
		return nil, fmt.Errorf("Load: scan: %w", err)
	}

	return storage.Decode([]byte(value))
}

// ─────────────────────────────────────────────────────────────────────────────
// Save overwrites the snapshot row.
//
// INSERT ... ON CONFLICT DO UPDATE is SQLite's upsert: the first save
// inserts the row, every later save replaces its value in place.
// Placeholders (?) keep the JSON payload as pure data.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) Save(ctx context.Context, students []types.Student) error {
	data, err := storage.Encode(students)
	if err != nil {
		return err
	}

	stmt, err := s.Db.PrepareContext(ctx, `
		INSERT INTO snapshots (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`)
	if err != nil {
		return fmt.Errorf("Save: prepare: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("Save: exec: %w", err)
	}

	return nil
}

// Close closes the underlying connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}
