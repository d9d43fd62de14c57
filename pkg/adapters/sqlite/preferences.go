// Package sqlite stores preferences as rows of a single SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/bubbly/pkg/core"
)

// Config holds the configuration for SQLite-backed preferences.
type Config struct {
	DSN      string // file path or ":memory:"
	WAL      bool
	SyncMode string // OFF, NORMAL, FULL, EXTRA
	ReadOnly bool
	Logger   *slog.Logger
}

// Repository implements core.Preferences on SQLite.
type Repository struct {
	config Config

	mu     sync.Mutex
	db     *sql.DB
	writes atomic.Int64
}

// NewRepository creates SQLite preferences. The database is opened by Initialize.
func NewRepository(config Config) *Repository {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Repository{config: config}
}

// Initialize opens the database and brings its schema up to date.
func (r *Repository) Initialize(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db != nil {
		return nil
	}

	db, err := Open(r.config.DSN, r.config.WAL, r.config.SyncMode)
	if err != nil {
		return err
	}
	if err := Upgrade(ctx, db, r.config.DSN, TargetSchemaVersion, r.config.Logger); err != nil {
		db.Close()
		return err
	}
	r.db = db
	return nil
}

func (r *Repository) conn() (*sql.DB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db == nil {
		return nil, errors.New("sqlite preferences not initialized")
	}
	return r.db, nil
}

// Get returns the value stored under key.
func (r *Repository) Get(ctx context.Context, key string) ([]byte, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}
	var value []byte
	err = db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?;`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", key, core.ErrKeyNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return value, nil
}

// Set upserts the value stored under key.
func (r *Repository) Set(ctx context.Context, key string, value []byte) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	if key == "" {
		return errors.New("empty key")
	}
	db, err := r.conn()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
INSERT INTO preferences (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = unixepoch();`, key, value)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	r.writes.Add(1)
	r.config.Logger.Debug("preference written", "key", key, "bytes", len(value))
	return nil
}

// Delete removes key. A missing key is not an error.
func (r *Repository) Delete(ctx context.Context, key string) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	db, err := r.conn()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM preferences WHERE key = ?;`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Keys lists the stored keys matching a doublestar pattern, sorted.
func (r *Repository) Keys(ctx context.Context, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid key pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}
	db, err := r.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT key FROM preferences;`)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		if match, _ := doublestar.Match(pattern, key); match {
			keys = append(keys, key)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

// Close releases the database.
func (r *Repository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

var _ core.Preferences = (*Repository)(nil)
