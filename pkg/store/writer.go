package store

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/bubbly/pkg/core"
)

// writer is the single task that persists collections. Mutations enqueue the collection they
// touched; the writer waits for the debounce window to pass without further changes to that
// collection and then writes one snapshot of it.
type writer struct {
	store    *Store
	debounce time.Duration
	queue    chan core.Collection
	requests chan writeRequest
	done     chan struct{}
	cancel   context.CancelFunc

	mu      sync.Mutex
	pending map[core.Collection]time.Time // collection -> write deadline
	failed  map[core.Collection]bool
}

type writeRequest struct {
	ctx   context.Context
	stop  bool
	reply chan error
}

func newWriter(s *Store, debounce time.Duration, queueSize int) *writer {
	return &writer{
		store:    s,
		debounce: debounce,
		queue:    make(chan core.Collection, queueSize),
		requests: make(chan writeRequest),
		done:     make(chan struct{}),
		pending:  make(map[core.Collection]time.Time),
		failed:   make(map[core.Collection]bool),
	}
}

func (w *writer) start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	lifecycle.Go(ctx, w.run, lifecycle.WithErrorHandler(func(err error) {
		w.store.logger.Error("writer panic", "error", err)
	}))
}

// enqueue blocks while the queue is full and returns immediately once the writer has stopped.
func (w *writer) enqueue(c core.Collection) {
	select {
	case w.queue <- c:
	case <-w.done:
	}
}

func (w *writer) flush(ctx context.Context) error {
	return w.request(ctx, false)
}

// stop writes everything still pending and terminates the writer.
func (w *writer) stop(ctx context.Context) error {
	err := w.request(ctx, true)
	if errors.Is(err, core.ErrClosed) {
		err = nil
	}
	w.cancel()
	return err
}

func (w *writer) request(ctx context.Context, stop bool) error {
	req := writeRequest{ctx: ctx, stop: stop, reply: make(chan error, 1)}
	select {
	case w.requests <- req:
	case <-w.done:
		return core.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *writer) snapshot() (pending, failed []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for c := range w.pending {
		pending = append(pending, c.Key())
	}
	for c := range w.failed {
		failed = append(failed, c.Key())
	}
	slices.Sort(pending)
	slices.Sort(failed)
	return pending, failed
}

func (w *writer) run(ctx context.Context) error {
	defer close(w.done)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()
	var timerC <-chan time.Time

	rearm := func() {
		timer.Stop()
		timerC = nil
		if next, ok := w.nextDeadline(); ok {
			timer.Reset(max(time.Until(next), 0))
			timerC = timer.C
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case c := <-w.queue:
			w.mark(c)
			rearm()

		case <-timerC:
			w.writeDue(ctx)
			rearm()

		case req := <-w.requests:
			w.drainQueue()
			req.reply <- w.writeAll(req.ctx)
			if req.stop {
				return nil
			}
			rearm()
		}
	}
}

func (w *writer) mark(c core.Collection) {
	w.mu.Lock()
	w.pending[c] = time.Now().Add(w.debounce)
	w.mu.Unlock()
}

func (w *writer) drainQueue() {
	for {
		select {
		case c := <-w.queue:
			w.mark(c)
		default:
			return
		}
	}
}

func (w *writer) nextDeadline() (time.Time, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	var (
		next  time.Time
		found bool
	)
	for _, d := range w.pending {
		if !found || d.Before(next) {
			next, found = d, true
		}
	}
	return next, found
}

func (w *writer) writeDue(ctx context.Context) {
	now := time.Now()
	w.mu.Lock()
	var due []core.Collection
	for c, d := range w.pending {
		if !d.After(now) {
			due = append(due, c)
		}
	}
	w.mu.Unlock()

	slices.Sort(due)
	for _, c := range due {
		if err := w.write(ctx, c); err != nil {
			w.store.reportError(err)
		}
	}
}

// writeAll writes every pending collection plus the ones whose last write failed.
func (w *writer) writeAll(ctx context.Context) error {
	w.mu.Lock()
	set := maps.Clone(w.failed)
	for c := range w.pending {
		set[c] = true
	}
	w.mu.Unlock()

	var errs []error
	for _, c := range slices.Sorted(maps.Keys(set)) {
		if err := w.write(ctx, c); err != nil {
			w.store.reportError(err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// write persists one collection. The collection leaves the pending set before its snapshot
// is taken, so a mutation racing with the write re-enters the set and is written again.
func (w *writer) write(ctx context.Context, c core.Collection) error {
	w.mu.Lock()
	delete(w.pending, c)
	w.mu.Unlock()

	err := w.persist(ctx, c)

	w.mu.Lock()
	if err != nil {
		w.failed[c] = true
	} else {
		delete(w.failed, c)
	}
	w.mu.Unlock()

	if err == nil {
		w.store.writes.Add(1)
		w.store.logger.Debug("collection persisted", "key", c.Key())
	}
	return err
}

func (w *writer) persist(ctx context.Context, c core.Collection) error {
	data, gen, err := w.store.snapshotBlob(c)
	if err != nil {
		return &core.PersistError{Key: c.Key(), Op: "encode", Err: err}
	}
	if err := ctx.Err(); err != nil {
		return &core.PersistError{Key: c.Key(), Op: "write", Err: err}
	}
	if err := w.store.prefs.Set(ctx, c.Key(), data); err != nil {
		return &core.PersistError{Key: c.Key(), Op: "write", Err: err}
	}
	w.store.markSaved(c, gen)
	return nil
}
