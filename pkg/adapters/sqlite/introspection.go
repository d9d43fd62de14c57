package sqlite

import (
	"context"

	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	DSN           string `json:"dsn"`
	WAL           bool   `json:"wal"`
	SyncMode      string `json:"sync_mode,omitempty"`
	ReadOnly      bool   `json:"read_only"`
	Open          bool   `json:"open"`
	SchemaVersion int64  `json:"schema_version"`
	Writes        int64  `json:"writes"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	state := RepositoryState{
		DSN:      r.config.DSN,
		WAL:      r.config.WAL,
		SyncMode: r.config.SyncMode,
		ReadOnly: r.config.ReadOnly,
		Writes:   r.writes.Load(),
	}
	if db, err := r.conn(); err == nil {
		state.Open = true
		state.SchemaVersion, _ = SchemaVersion(context.Background(), db, PreferencesComponent)
	}
	return state
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "sqlite-preferences"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
