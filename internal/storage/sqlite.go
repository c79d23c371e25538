package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const kvSchema = `
	CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)
`

// SQLite is a Store kept in a single SQLite table.
type SQLite struct {
	db *sqlx.DB
}

// OpenSQLite opens (or creates) the database at path and ensures the
// key-value table exists.
func OpenSQLite(path string) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("storage error creating directories: %w", err)
		}
	}
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage error opening %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases from splitting per conn.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage error opening %s: %w", path, err)
	}
	if _, err := db.Exec(kvSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage error creating schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(key string) (string, bool, error) {
	var value string
	err := s.db.Get(&value, "SELECT value FROM kv WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage error reading %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLite) Set(key, value string) error {
	return s.Apply([]Change{{Key: key, Value: value}})
}

func (s *SQLite) Remove(key string) error {
	return s.Apply([]Change{{Key: key, Remove: true}})
}

func (s *SQLite) Apply(changes []Change) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("storage error starting transaction: %w", err)
	}
	for _, c := range changes {
		if c.Remove {
			_, err = tx.Exec("DELETE FROM kv WHERE key = ?", c.Key)
		} else {
			_, err = tx.Exec(`INSERT INTO kv (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value=excluded.value`, c.Key, c.Value)
		}
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("storage error writing %q: %w", c.Key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage error committing: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
