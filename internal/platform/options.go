package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/bubbly/pkg/core"
)

// options holds the internal configuration for a bubbly store.
type options struct {
	preferences core.Preferences
	logger      *slog.Logger
	adapter     string
	config      map[string]any
}

// Option defines a functional option for configuring bubbly.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter: "fs",
		config:  make(map[string]any),
	}
}

func apply(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithAdapter selects the preferences adapter by name: "fs", "sqlite" or "memory".
// Defaults to "fs".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithPreferences injects a custom preferences adapter. The adapter switch is skipped.
func WithPreferences(prefs core.Preferences) Option {
	return func(o *options) {
		o.preferences = prefs
	}
}

// WithLogger sets the logger for the store and its adapters.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithFormat selects the blob encoding by serializer name ("json" or "yaml").
func WithFormat(name string) Option {
	return func(o *options) {
		o.config["format"] = name
	}
}

// WithDebounce sets how long a changed collection waits before it is written.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		o.config["debounce"] = d
	}
}

// WithQueueSize bounds the writer's change queue.
func WithQueueSize(n int) Option {
	return func(o *options) {
		o.config["queue_size"] = n
	}
}

// WithEventBuffer sets the buffer of each Watch channel.
// Zero means default (100).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.config["event_buffer"] = size
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.config["clock"] = now
	}
}

// WithErrorHandler registers a callback for persistence failures, in addition to the
// store's error channel.
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.config["error_handler"] = fn
	}
}

// WithWatcherErrorHandler registers a callback for filesystem watcher failures,
// which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.config["watcher_error_handler"] = fn
	}
}

// WithForceTemp forces the data directory into the system temp dir (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.config["temp_dir"] = force
	}
}

// WithMustExist fails initialization when the data directory is missing.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.config["must_exist"] = must
	}
}

// WithReadOnly enables read-only mode.
// In this mode:
// 1. Mutations still apply in memory, but every write reports ErrReadOnly on Errors().
// 2. The data directory is not created.
// 3. Dev safety is BYPASSED (uses the real path).
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.config["read_only"] = enabled
	}
}

// WithDevSafety controls the sandbox used when running via `go run` or `go test`.
// By default (true), the data directory is redirected into a temp dir so development
// runs never touch real data.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.config["dev_safety"] = enabled
	}
}

// WithSQLiteWAL toggles write-ahead logging for the sqlite adapter. Enabled by default.
func WithSQLiteWAL(enabled bool) Option {
	return func(o *options) {
		o.config["sqlite_wal"] = enabled
	}
}

// WithSQLiteSync sets the sqlite synchronous pragma (OFF, NORMAL, FULL, EXTRA).
func WithSQLiteSync(mode string) Option {
	return func(o *options) {
		o.config["sqlite_sync"] = mode
	}
}
