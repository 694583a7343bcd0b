package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

// Store is the SQLite Gateway.
type Store struct {
	db *sql.DB
}

var _ Gateway = (*Store)(nil)

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection: writes arrive from a single persistence goroutine, and
	// an in-memory database only lives as long as its connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS time_entries (
		id        TEXT PRIMARY KEY,
		owner     TEXT NOT NULL,
		start_ms  INTEGER NOT NULL,
		end_ms    INTEGER NOT NULL,
		duration  INTEGER NOT NULL DEFAULT 0,
		label     TEXT NOT NULL DEFAULT '',
		project   TEXT NOT NULL DEFAULT 'General',
		invoiced  INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_entries_owner_start ON time_entries(owner, start_ms);

	CREATE TABLE IF NOT EXISTS user_settings (
		id        TEXT PRIMARY KEY,
		theme     TEXT NOT NULL DEFAULT 'light',
		projects  TEXT NOT NULL DEFAULT '["General"]',
		running   TEXT
	);
	`
	_, err := s.db.Exec(ddl)
	return err
}
