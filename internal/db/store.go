package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// Store wraps the SQLite database that backs the local cache
type Store struct {
	db *sql.DB
}

// Open opens (and creates/migrates) the database at the given path
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("empty database path")
	}
	if strings.Contains(filepath.Clean(dbPath), "..") {
		return nil, fmt.Errorf("invalid database path: contains directory traversal")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}
	// Ensure file exists with strict perms
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		f, err := os.OpenFile(dbPath, os.O_CREATE|os.O_RDWR, 0o600)
		if err != nil {
			return nil, fmt.Errorf("create database file: %w", err)
		}
		_ = f.Close()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL: %w", err)
	}
	_, _ = db.ExecContext(ctx, "PRAGMA busy_timeout=5000;")
	_, _ = db.ExecContext(ctx, "PRAGMA synchronous=NORMAL;")

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

type migration struct {
	version int
	stmts   []string
}

var migrations = []migration{
	// v1: key/value cache entries
	{1, []string{`
CREATE TABLE IF NOT EXISTS kv_cache (
  key        TEXT PRIMARY KEY,
  value      BLOB NOT NULL,
  updated_at INTEGER NOT NULL
);`}},
	// v2: pruning by age
	{2, []string{`CREATE INDEX IF NOT EXISTS kv_cache_updated_at ON kv_cache(updated_at);`}},
}

func (s *Store) migrate(ctx context.Context) error {
	// user_version based migrations
	var ver int
	_ = s.db.QueryRowContext(ctx, "PRAGMA user_version;").Scan(&ver)

	for _, m := range migrations {
		if ver >= m.version {
			continue
		}
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		for _, stmt := range m.stmts {
			if _, err = tx.ExecContext(ctx, stmt); err != nil {
				break
			}
		}
		if err == nil {
			_, err = tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version=%d;", m.version))
		}
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migrate v%d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		ver = m.version
	}
	return nil
}

// Version reports the schema version of an open store
func (s *Store) Version(ctx context.Context) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("store not initialized")
	}
	var ver int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version;").Scan(&ver)
	return ver, err
}

// Close closes the underlying database
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for use by domain stores
func (s *Store) DB() *sql.DB {
	return s.db
}
