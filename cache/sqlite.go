package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"go.uber.org/zap"
)

// SQLite is a Store backed by a single table in a SQLite database.
type SQLite struct {
	Now    func() time.Time // defaults to time.Now
	Logger *zap.Logger      // defaults to zap.L()

	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and makes sure the cache table exists.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS cache (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache table: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Read(key string) (Entry, bool) {
	var (
		value     []byte
		updatedAt int64
	)
	err := s.db.QueryRowContext(context.Background(),
		"SELECT value, updated_at FROM cache WHERE key = ?", key,
	).Scan(&value, &updatedAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger(s.Logger).Warn("cache read error (ignored)", zap.String("key", key), zap.Error(err))
		}
		return Entry{}, false
	}
	return Entry{Timestamp: time.UnixMilli(updatedAt), Data: value}, true
}

func (s *SQLite) Write(key string, data []byte) error {
	_, err := s.db.ExecContext(context.Background(),
		`INSERT INTO cache (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, data, stamp(s.Now).UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to write cache entry %q: %w", key, err)
	}
	return nil
}

func (s *SQLite) Clear(key string) error {
	if _, err := s.db.ExecContext(context.Background(), "DELETE FROM cache WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to clear cache entry %q: %w", key, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }
