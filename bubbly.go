package bubbly

import (
	"log/slog"
	"time"

	"github.com/aretw0/bubbly/internal/platform"
	"github.com/aretw0/bubbly/pkg/core"
	"github.com/aretw0/bubbly/pkg/store"
)

// Version exposes the version of the library.
// See version.go for the implementation using go:embed.

// --- Types ---

// Store is the single source of truth for every collection.
type Store = store.Store

// Tx stages several mutations that commit together (see Store.Batch).
type Tx = store.Tx

type (
	Note          = core.Note
	Reminder      = core.Reminder
	Event         = core.Event
	Settings      = core.Settings
	SettingsPatch = core.SettingsPatch
	Change        = core.Change
	Collection    = core.Collection
	Preferences   = core.Preferences
	PersistError  = core.PersistError
)

// Sentinel errors, re-exported for errors.Is.
var (
	ErrNotFound      = core.ErrNotFound
	ErrAmbiguousID   = core.ErrAmbiguousID
	ErrReadOnly      = core.ErrReadOnly
	ErrClosed        = core.ErrClosed
	ErrInvalidOffset = core.ErrInvalidOffset
	ErrInvalidTime   = core.ErrInvalidTime
	ErrDuplicateID   = core.ErrDuplicateID
)

// --- Configuration ---

// Option defines a functional option for configuring bubbly.
type Option = platform.Option

// WithAdapter selects the preferences adapter by name: "fs" (default), "sqlite" or "memory".
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithPreferences injects a custom preferences adapter.
func WithPreferences(prefs core.Preferences) Option {
	return platform.WithPreferences(prefs)
}

// WithFormat selects the blob encoding: "json" (default) or "yaml".
func WithFormat(name string) Option {
	return platform.WithFormat(name)
}

// WithLogger sets the logger for the store and its adapters.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithDebounce sets how long a changed collection waits before it is written.
func WithDebounce(d time.Duration) Option {
	return platform.WithDebounce(d)
}

// WithQueueSize bounds the writer's change queue.
func WithQueueSize(n int) Option {
	return platform.WithQueueSize(n)
}

// WithEventBuffer sets the buffer of each Watch channel.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return platform.WithClock(now)
}

// WithErrorHandler registers a callback for persistence failures.
func WithErrorHandler(fn func(error)) Option {
	return platform.WithErrorHandler(fn)
}

// WithWatcherErrorHandler registers a callback for filesystem watcher failures.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// WithForceTemp forces the data directory into the system temp dir.
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithMustExist fails when the data directory is missing.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithReadOnly keeps mutations in memory and refuses every write.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithDevSafety controls the temp-dir sandbox used under `go run` and `go test`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithSQLiteWAL toggles write-ahead logging for the sqlite adapter.
func WithSQLiteWAL(enabled bool) Option {
	return platform.WithSQLiteWAL(enabled)
}

// WithSQLiteSync sets the sqlite synchronous pragma.
func WithSQLiteSync(mode string) Option {
	return platform.WithSQLiteSync(mode)
}

// --- Factory ---

// New opens a loaded Store. Close it to flush pending writes.
func New(uri string, opts ...Option) (*Store, error) {
	return platform.New(uri, opts...)
}

// Init creates and initializes the preferences adapter without a store.
func Init(uri string, opts ...Option) (core.Preferences, error) {
	return platform.Init(uri, opts...)
}

// --- Safety & Utils ---

// ResolveDataPath determines the actual data directory based on dev safety rules.
func ResolveDataPath(userPath string, forceTemp bool) string {
	return platform.ResolveDataPath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// DefaultDataDir returns the system-appropriate data directory.
func DefaultDataDir() string {
	return platform.DefaultDataDir()
}
