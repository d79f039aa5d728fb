package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
// MaxOpenConns(1) plus WAL gives the single-writer discipline the interval
// reconciler relies on: read-latest, decide, write is never interleaved
// with another writer.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
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
	CREATE TABLE IF NOT EXISTS intervals (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		start_time   INTEGER NOT NULL,
		end_time     INTEGER NOT NULL,
		app          TEXT NOT NULL DEFAULT '',
		info         TEXT NOT NULL DEFAULT '',
		process_name TEXT NOT NULL DEFAULT '',
		url          TEXT NOT NULL DEFAULT '',
		domain       TEXT NOT NULL DEFAULT '',
		CHECK (end_time >= start_time)
	);

	CREATE INDEX IF NOT EXISTS idx_intervals_start ON intervals(start_time);
	CREATE INDEX IF NOT EXISTS idx_intervals_end   ON intervals(end_time);

	CREATE TABLE IF NOT EXISTS inputs (
		kind TEXT PRIMARY KEY,
		time INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS day_totals (
		day      TEXT PRIMARY KEY,
		neutral  REAL NOT NULL DEFAULT 0,
		personal REAL NOT NULL DEFAULT 0,
		work     REAL NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS milestones (
		day        TEXT NOT NULL,
		work_100   INTEGER NOT NULL DEFAULT 0,
		work_75    INTEGER NOT NULL DEFAULT 0,
		work_50    INTEGER NOT NULL DEFAULT 0,
		work_25    INTEGER NOT NULL DEFAULT 0,
		small_work INTEGER NOT NULL DEFAULT 0,
		personal   INTEGER NOT NULL DEFAULT 0
	);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/vigil/vigil.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "vigil", "vigil.db"), nil
}
