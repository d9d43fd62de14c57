package fs

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/bubbly/pkg/core"
)

const watchDebounce = 50 * time.Millisecond

type watchWorker struct {
	*worker.BaseWorker
	repo      *Repository
	pattern   string
	events    chan<- core.KeyEvent
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	cancel    context.CancelFunc

	// closeEvents makes run close events on exit. Only set when the worker owns the
	// channel, not when a supervisor restarts workers over a shared one.
	closeEvents bool
}

func newWatchWorker(repo *Repository, pattern string, events chan<- core.KeyEvent) *watchWorker {
	return &watchWorker{
		BaseWorker: worker.NewBaseWorker("fs-watcher"),
		repo:       repo,
		pattern:    pattern,
		events:     events,
	}
}

func (w *watchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.addTree(watcher, w.repo.Path); err != nil {
		_ = watcher.Close()
		return err
	}

	w.watcher = watcher
	w.debouncer = newDebouncer(watchDebounce)
	w.repo.setWatcherActive(true)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *watchWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}
	return w.BaseWorker.Stop(ctx)
}

func (w *watchWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
			"pattern":           w.pattern,
		}
	})
}

// addTree watches root and every non-hidden directory below it.
func (w *watchWorker) addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func mapEventType(event fsnotify.Event) core.KeyEventType {
	switch {
	case event.Has(fsnotify.Create):
		return core.KeyCreate
	case event.Has(fsnotify.Write):
		return core.KeyModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return core.KeyDelete
	default:
		return ""
	}
}

// processFilesystemEvent filters, maps and debounces one fsnotify event.
func (w *watchWorker) processFilesystemEvent(ctx context.Context, event fsnotify.Event) bool {
	w.repo.config.Logger.Debug("event received", "name", event.Name, "op", event.Op.String())

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(w.watcher, event.Name); err != nil {
				w.handleWatcherError(err)
			}
			return false
		}
	}

	key, ok := w.repo.keyFor(event.Name)
	if !ok {
		return false
	}
	if match, _ := doublestar.Match(w.pattern, key); !match {
		return false
	}
	eType := mapEventType(event)
	if eType == "" {
		return false
	}

	w.sendEvent(ctx, core.KeyEvent{
		Type:      eType,
		Key:       key,
		Timestamp: time.Now().Unix(),
	})
	return true
}

// sendEvent enqueues an event via the debouncer, protecting against channel closure during shutdown.
func (w *watchWorker) sendEvent(ctx context.Context, event core.KeyEvent) {
	w.debouncer.add(event, func(e core.KeyEvent) {
		defer func() {
			_ = recover()
		}()
		select {
		case w.events <- e:
		case <-ctx.Done():
		}
	})
}

func (w *watchWorker) handleWatcherError(err error) {
	if w.repo.config.ErrorHandler != nil {
		w.repo.config.ErrorHandler(err)
		return
	}
	w.repo.config.Logger.Error("fsnotify error", "error", err)
}

// run is the main event loop for the watcher worker.
func (w *watchWorker) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			panicErr := fmt.Errorf("watcher panic: %v", recovered)
			if w.repo.config.Logger.Enabled(ctx, slog.LevelDebug) {
				w.repo.config.Logger.Error("watcher panic", "error", panicErr, "stack", string(debug.Stack()))
			} else {
				w.repo.config.Logger.Error("watcher panic", "error", panicErr)
			}
			err = panicErr
		}
	}()
	defer func() {
		if w.closeEvents {
			close(w.events)
		}
	}()
	defer w.repo.setWatcherActive(false)
	defer w.watcher.Close()

	err = w.mainEventLoop(ctx)

	// All in-flight debounce timers must finish before the events channel closes.
	w.debouncer.stopAndWait(5 * time.Second)
	return err
}

func (w *watchWorker) mainEventLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.processFilesystemEvent(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.handleWatcherError(wErr)
		}
	}
}
