package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// SchemaVersion returns the recorded schema version of component, 0 when the database has
// never been initialized.
func SchemaVersion(ctx context.Context, db *sql.DB, component string) (int64, error) {
	var version int64
	err := db.QueryRowContext(ctx, `SELECT version FROM bubbly_versions WHERE component = ?;`, component).Scan(&version)
	switch {
	case err == nil:
		return version, nil
	case errors.Is(err, sql.ErrNoRows):
		return 0, nil
	case strings.Contains(err.Error(), "no such table"):
		return 0, nil
	default:
		return 0, fmt.Errorf("failed to read schema version for %s: %w", component, err)
	}
}

// InitializeSchema creates every table and records version for the preferences component.
func InitializeSchema(ctx context.Context, db *sql.DB, version int64) error {
	if _, err := db.ExecContext(ctx, SchemaV1); err != nil {
		return fmt.Errorf("failed to execute schema v1: %w", err)
	}
	_, err := db.ExecContext(ctx, `
INSERT INTO bubbly_versions (component, version) VALUES (?, ?)
ON CONFLICT(component) DO UPDATE SET version = excluded.version, created_at = unixepoch();`,
		PreferencesComponent, version)
	if err != nil {
		return fmt.Errorf("failed to record schema version %d: %w", version, err)
	}
	return nil
}

// Upgrade brings the database to target. A fresh database is initialized; a database
// written by a newer release is refused.
func Upgrade(ctx context.Context, db *sql.DB, name string, target int64, logger *slog.Logger) error {
	current, err := SchemaVersion(ctx, db, PreferencesComponent)
	if err != nil {
		return err
	}

	switch {
	case current == 0:
		logger.Debug("initializing database schema", "db", name, "version", target)
		if err := InitializeSchema(ctx, db, target); err != nil {
			return fmt.Errorf("failed to initialize database %s: %w", name, err)
		}
		return nil
	case current == target:
		return nil
	case current < target:
		return fmt.Errorf("database %s has schema version %d, older than %d; automatic migration is not supported", name, current, target)
	default:
		return fmt.Errorf("database %s has schema version %d, newer than %d; please upgrade bubbly", name, current, target)
	}
}
