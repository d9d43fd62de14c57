// Package fs stores preferences as one file per key in a directory.
//
// A key maps to <Path>/<key><Ext>; keys may contain "/" to nest files in subdirectories.
// Writes are atomic (temp file + rename). Changes made by other processes can be observed
// with Watch.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/bubbly/pkg/core"
)

// Repository implements core.Preferences on the filesystem.
type Repository struct {
	Path   string
	config Config

	mu            sync.RWMutex
	watcherActive bool
	writes        int
	lastWrite     *time.Time
}

// Config holds the configuration for the filesystem preferences.
type Config struct {
	Path         string
	Ext          string // file extension including the dot, default ".json"
	MustExist    bool   // fail Initialize instead of creating Path
	ReadOnly     bool
	Perm         os.FileMode
	Logger       *slog.Logger
	ErrorHandler func(error) // receives watcher errors; nil logs them
}

// NewRepository creates filesystem-backed preferences.
func NewRepository(config Config) *Repository {
	if config.Ext == "" {
		config.Ext = ".json"
	}
	if !strings.HasPrefix(config.Ext, ".") {
		config.Ext = "." + config.Ext
	}
	if config.Perm == 0 {
		config.Perm = 0o644
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Repository{
		Path:   config.Path,
		config: config,
	}
}

// Initialize ensures the directory exists.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.MustExist || r.config.ReadOnly {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			if r.config.ReadOnly && !r.config.MustExist {
				// Nothing persisted yet; reads will report missing keys.
				return nil
			}
			return fmt.Errorf("data path does not exist: %s", r.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("data path is not a directory: %s", r.Path)
		}
		return nil
	}

	if err := os.MkdirAll(r.Path, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// Get reads the blob stored under key.
func (r *Repository) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := r.pathFor(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", key, core.ErrKeyNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Set atomically replaces the file for key.
func (r *Repository) Set(ctx context.Context, key string, value []byte) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := r.pathFor(key)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(path, value, r.config.Perm); err != nil {
		return err
	}

	r.mu.Lock()
	now := time.Now()
	r.writes++
	r.lastWrite = &now
	r.mu.Unlock()

	r.config.Logger.Debug("preference written", "key", key, "bytes", len(value))
	return nil
}

// Delete removes the file for key. A missing file is not an error.
func (r *Repository) Delete(ctx context.Context, key string) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	path, err := r.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Keys lists the stored keys matching pattern, sorted.
func (r *Repository) Keys(ctx context.Context, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid key pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}

	var keys []string
	err := filepath.WalkDir(r.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == r.Path {
				return filepath.SkipDir
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != r.Path && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		key, ok := r.keyFor(path)
		if !ok {
			return nil
		}
		if match, _ := doublestar.Match(pattern, key); match {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

// pathFor maps a key to its file, refusing keys that would escape the directory.
func (r *Repository) pathFor(key string) (string, error) {
	if key == "" {
		return "", errors.New("empty key")
	}
	clean := filepath.ToSlash(filepath.Clean(key))
	if filepath.IsAbs(key) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(r.Path, filepath.FromSlash(clean)+r.config.Ext), nil
}

// keyFor maps a file back to its key. Temp files, hidden files and other extensions are
// not keys.
func (r *Repository) keyFor(path string) (string, bool) {
	base := filepath.Base(path)
	if isTempFile(base) || strings.HasPrefix(base, ".") || filepath.Ext(base) != r.config.Ext {
		return "", false
	}
	rel, err := filepath.Rel(r.Path, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(strings.TrimSuffix(rel, r.config.Ext)), true
}

// Watch emits a KeyEvent for every change to a key matching pattern until ctx is done.
// Bursts of events on one key are debounced.
func (r *Repository) Watch(ctx context.Context, pattern string) (<-chan core.KeyEvent, error) {
	if pattern == "" {
		pattern = "*"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid key pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}

	events := make(chan core.KeyEvent)
	w := newWatchWorker(r, pattern, events)
	w.closeEvents = true
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return events, nil
}

var (
	_ core.Preferences = (*Repository)(nil)
	_ core.Watchable   = (*Repository)(nil)
)
