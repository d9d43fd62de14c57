package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/bubbly/pkg/adapters/fs"
	"github.com/aretw0/bubbly/pkg/adapters/memory"
	"github.com/aretw0/bubbly/pkg/adapters/sqlite"
	"github.com/aretw0/bubbly/pkg/codec"
	"github.com/aretw0/bubbly/pkg/core"
)

// SQLiteFile is the database file created inside the data directory by the sqlite adapter.
const SQLiteFile = "bubbly.db"

// Init creates and initializes the preferences adapter selected by the options.
// The uri is adapter-specific: a data directory for "fs", a data directory or database
// file for "sqlite", and ignored by "memory". An empty uri selects DefaultDataDir().
func Init(uri string, opts ...Option) (core.Preferences, error) {
	o := apply(opts)

	if o.preferences != nil {
		return o.preferences, nil
	}

	var (
		prefs core.Preferences
		err   error
	)
	switch o.adapter {
	case "fs", "":
		prefs, err = initFS(uri, o)
	case "sqlite":
		prefs, err = initSQLite(uri, o)
	case "memory":
		prefs = memory.New()
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
	if err != nil {
		return nil, err
	}

	if err := prefs.Initialize(context.Background()); err != nil {
		return nil, err
	}
	return prefs, nil
}

// serializer resolves the configured format, JSON by default.
func (o *options) serializer() (codec.Serializer, error) {
	name, _ := o.config["format"].(string)
	if name == "" {
		name = "json"
	}
	return codec.Lookup(name)
}

// resolvePath applies the default directory and the dev sandbox to uri.
func resolvePath(uri string, o *options) (string, bool) {
	tempDir, _ := o.config["temp_dir"].(bool)
	isReadOnly, _ := o.config["read_only"].(bool)
	devSafety := true
	if val, ok := o.config["dev_safety"].(bool); ok {
		devSafety = val
	}

	// ReadOnly is inherently safe; explicit opt-out is the caller's call.
	bypassSafety := isReadOnly || !devSafety
	useTemp := tempDir || (IsDevRun() && !bypassSafety)

	if uri == "" && !useTemp {
		uri = DefaultDataDir()
	}
	if strings.HasPrefix(uri, "~/") {
		if expanded, err := ExpandPath(uri); err == nil {
			uri = expanded
		}
	}
	resolved := ResolveDataPath(uri, useTemp)

	if o.logger != nil {
		switch {
		case useTemp:
			o.logger.Warn("running in SAFE MODE (dev/test)", "original_path", uri, "resolved_path", resolved)
		case IsDevRun() && isReadOnly:
			o.logger.Debug("running in READ-ONLY mode (bypassing dev sandbox)", "path", resolved)
		case IsDevRun():
			o.logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", resolved)
		}
	}
	return resolved, useTemp
}

// initFS handles the initialization logic for the filesystem adapter.
func initFS(path string, o *options) (core.Preferences, error) {
	ser, err := o.serializer()
	if err != nil {
		return nil, err
	}
	mustExist, _ := o.config["must_exist"].(bool)
	isReadOnly, _ := o.config["read_only"].(bool)
	errorHandler, _ := o.config["watcher_error_handler"].(func(error))

	resolved, _ := resolvePath(path, o)

	return fs.NewRepository(fs.Config{
		Path:         resolved,
		Ext:          ser.Ext(),
		MustExist:    mustExist,
		ReadOnly:     isReadOnly,
		Logger:       o.logger,
		ErrorHandler: errorHandler,
	}), nil
}

// initSQLite handles the initialization logic for the sqlite adapter.
func initSQLite(uri string, o *options) (core.Preferences, error) {
	isReadOnly, _ := o.config["read_only"].(bool)
	wal := true
	if val, ok := o.config["sqlite_wal"].(bool); ok {
		wal = val
	}
	syncMode, _ := o.config["sqlite_sync"].(string)
	if syncMode == "" {
		syncMode = "NORMAL"
	}

	dsn := uri
	if !isSQLiteTarget(uri) {
		dir, _ := resolvePath(uri, o)
		if !isReadOnly {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		dsn = filepath.Join(dir, SQLiteFile)
	}

	return sqlite.NewRepository(sqlite.Config{
		DSN:      dsn,
		WAL:      wal,
		SyncMode: syncMode,
		ReadOnly: isReadOnly,
		Logger:   o.logger,
	}), nil
}

// isSQLiteTarget reports whether uri already names a database rather than a directory.
func isSQLiteTarget(uri string) bool {
	return uri == ":memory:" ||
		strings.HasPrefix(uri, "file:") ||
		strings.HasSuffix(uri, ".db") ||
		strings.HasSuffix(uri, ".sqlite")
}
