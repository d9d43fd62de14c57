// Package store implements the single source of truth for notes, reminders, events and
// settings.
//
// A Store is constructed explicitly, loaded once, mutated synchronously and closed with a
// final flush:
//
//	st := store.New(prefs, store.Options{Logger: logger})
//	if err := st.Load(ctx); err != nil { ... }
//	defer st.Close(ctx)
//
//	note, _ := st.AddNote(core.Note{Title: "groceries"})
//	st.ToggleFavorite(note.ID)
//
// Every successful mutation publishes a core.Change to watchers and enqueues its collection
// for the background writer, which coalesces rapid changes to the same collection into one
// write.
package store

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/bubbly/pkg/codec"
	"github.com/aretw0/bubbly/pkg/core"
	"github.com/aretw0/bubbly/pkg/typed"
)

const (
	// DefaultDebounce is the quiet period before a changed collection is written.
	DefaultDebounce = time.Second
	// DefaultQueueSize bounds the writer's change queue.
	DefaultQueueSize = 64
	// DefaultErrorBuffer bounds the persistence error channel.
	DefaultErrorBuffer = 16
	// DefaultEventBuffer bounds each watcher's change channel.
	DefaultEventBuffer = 100
)

// Options configures a Store. Zero values select the defaults.
type Options struct {
	Serializer  codec.Serializer
	Debounce    time.Duration
	QueueSize   int
	ErrorBuffer int
	EventBuffer int
	Logger      *slog.Logger
	Clock       func() time.Time
	OnError     func(error)
}

// Store owns every collection and mediates every mutation.
type Store struct {
	mu        sync.RWMutex
	notes     []core.Note
	reminders []core.Reminder
	events    []core.Event
	settings  core.Settings
	closed    bool
	inflight  sync.WaitGroup

	// gen counts commits per collection; saved is the gen last written successfully.
	// A collection is dirty while they differ.
	gen   map[core.Collection]uint64
	saved map[core.Collection]uint64

	prefs         core.Preferences
	serializer    codec.Serializer
	notesRepo     *typed.Repository[[]core.Note]
	remindersRepo *typed.Repository[[]core.Reminder]
	eventsRepo    *typed.Repository[[]core.Event]
	settingsRepo  *typed.Repository[core.Settings]

	logger  *slog.Logger
	now     func() time.Time
	onError func(error)
	errs    chan error
	writer  *writer
	broker  *broker

	loadFallbacks atomic.Uint64
	failures      atomic.Uint64
	writes        atomic.Uint64
}

// New creates a Store over prefs and starts its writer. Call Load before use.
func New(prefs core.Preferences, opts Options) *Store {
	if opts.Serializer == nil {
		opts.Serializer = codec.NewJSONSerializer()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.ErrorBuffer <= 0 {
		opts.ErrorBuffer = DefaultErrorBuffer
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = DefaultEventBuffer
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	s := &Store{
		notes:         []core.Note{},
		reminders:     []core.Reminder{},
		events:        []core.Event{},
		settings:      core.DefaultSettings(),
		gen:           make(map[core.Collection]uint64),
		saved:         make(map[core.Collection]uint64),
		prefs:         prefs,
		serializer:    opts.Serializer,
		notesRepo:     typed.NewRepository[[]core.Note](prefs, core.CollectionNotes.Key(), opts.Serializer),
		remindersRepo: typed.NewRepository[[]core.Reminder](prefs, core.CollectionReminders.Key(), opts.Serializer),
		eventsRepo:    typed.NewRepository[[]core.Event](prefs, core.CollectionEvents.Key(), opts.Serializer),
		settingsRepo:  typed.NewRepository[core.Settings](prefs, core.CollectionSettings.Key(), opts.Serializer),
		logger:        opts.Logger,
		now:           opts.Clock,
		onError:       opts.OnError,
		errs:          make(chan error, opts.ErrorBuffer),
		broker:        newBroker(opts.EventBuffer),
	}
	s.writer = newWriter(s, opts.Debounce, opts.QueueSize)
	s.writer.start()
	return s
}

// Load reads every collection from the preferences. Each collection loads independently:
// a missing or undecodable blob falls back to that collection's default and is logged.
// Only a cancelled context makes Load fail.
func (s *Store) Load(ctx context.Context) error {
	var (
		notes     []core.Note
		reminders []core.Reminder
		events    []core.Event
		settings  core.Settings
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		notes = loadCollection(gctx, s, s.notesRepo, []core.Note{})
		return gctx.Err()
	})
	g.Go(func() error {
		reminders = loadCollection(gctx, s, s.remindersRepo, []core.Reminder{})
		return gctx.Err()
	})
	g.Go(func() error {
		events = loadCollection(gctx, s, s.eventsRepo, []core.Event{})
		return gctx.Err()
	})
	g.Go(func() error {
		settings = loadCollection(gctx, s, s.settingsRepo, core.DefaultSettings())
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	s.notes = orEmpty(notes)
	s.reminders = orEmpty(reminders)
	s.events = orEmpty(events)
	s.settings = settings
	s.mu.Unlock()

	s.logger.Debug("store loaded",
		"notes", len(notes),
		"reminders", len(reminders),
		"events", len(events),
	)
	return nil
}

// Reload re-reads one collection from the preferences, for example after an external edit.
// It is skipped while the collection has changes that are not stored yet, including changes
// whose last write failed, and when a mutation commits while the blob is being read.
func (s *Store) Reload(ctx context.Context, c core.Collection) error {
	s.mu.RLock()
	dirty := s.dirtyLocked(c)
	gen := s.gen[c]
	s.mu.RUnlock()
	if dirty {
		s.logger.Debug("reload skipped, collection has unsaved changes", "collection", c)
		return nil
	}

	var apply func()
	switch c {
	case core.CollectionNotes:
		v := orEmpty(loadCollection(ctx, s, s.notesRepo, []core.Note{}))
		apply = func() { s.notes = v }
	case core.CollectionReminders:
		v := orEmpty(loadCollection(ctx, s, s.remindersRepo, []core.Reminder{}))
		apply = func() { s.reminders = v }
	case core.CollectionEvents:
		v := orEmpty(loadCollection(ctx, s, s.eventsRepo, []core.Event{}))
		apply = func() { s.events = v }
	case core.CollectionSettings:
		v := loadCollection(ctx, s, s.settingsRepo, core.DefaultSettings())
		apply = func() { s.settings = v }
	default:
		return errors.New("unknown collection: " + string(c))
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.gen[c] != gen || s.dirtyLocked(c) {
		s.mu.Unlock()
		s.logger.Debug("reload dropped, collection changed while reading", "collection", c)
		return nil
	}
	apply()
	s.mu.Unlock()

	s.broker.publish(core.Change{Type: core.ChangeReload, Collection: c, Timestamp: s.now().Unix()})
	return nil
}

// dirtyLocked reports whether c holds commits that have not been stored. Callers hold s.mu.
func (s *Store) dirtyLocked(c core.Collection) bool {
	return s.gen[c] != s.saved[c]
}

// markSaved records that the snapshot taken at gen reached the preferences.
func (s *Store) markSaved(c core.Collection, gen uint64) {
	s.mu.Lock()
	if gen > s.saved[c] {
		s.saved[c] = gen
	}
	s.mu.Unlock()
}

func loadCollection[T any](ctx context.Context, s *Store, repo *typed.Repository[T], fallback T) T {
	v, err := repo.Load(ctx)
	switch {
	case err == nil:
		return v
	case errors.Is(err, core.ErrKeyNotFound):
		s.logger.Debug("collection not persisted yet, using default", "key", repo.Key())
		return fallback
	default:
		s.loadFallbacks.Add(1)
		s.logger.Warn("failed to load collection, using default", "key", repo.Key(), "error", err)
		return fallback
	}
}

func orEmpty[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

// --- Mutations ---

// AddNote appends a note. A zero ID is replaced by a fresh UUID and a zero CreatedAt by the
// current time.
func (s *Store) AddNote(n core.Note) (core.Note, error) {
	var out core.Note
	err := s.Batch(func(tx *Tx) error {
		var err error
		out, err = tx.AddNote(n)
		return err
	})
	return out, err
}

// AddReminder appends a reminder. The reminder time must be set.
func (s *Store) AddReminder(r core.Reminder) (core.Reminder, error) {
	var out core.Reminder
	err := s.Batch(func(tx *Tx) error {
		var err error
		out, err = tx.AddReminder(r)
		return err
	})
	return out, err
}

// AddEvent appends an event.
func (s *Store) AddEvent(e core.Event) (core.Event, error) {
	var out core.Event
	err := s.Batch(func(tx *Tx) error {
		var err error
		out, err = tx.AddEvent(e)
		return err
	})
	return out, err
}

// ToggleReminderCompletion flips IsCompleted. It reports false when id is unknown or the
// store is closed.
func (s *Store) ToggleReminderCompletion(id uuid.UUID) (core.Reminder, bool) {
	var (
		out   core.Reminder
		found bool
	)
	_ = s.Batch(func(tx *Tx) error {
		out, found = tx.ToggleReminderCompletion(id)
		return nil
	})
	return out, found
}

// SnoozeReminder moves the reminder minutes forward. Repeated snoozes compound.
func (s *Store) SnoozeReminder(id uuid.UUID, minutes int) (core.Reminder, error) {
	var out core.Reminder
	err := s.Batch(func(tx *Tx) error {
		var err error
		out, err = tx.SnoozeReminder(id, minutes)
		return err
	})
	return out, err
}

// DeleteReminder removes a reminder. It reports false when id is unknown or the store is
// closed.
func (s *Store) DeleteReminder(id uuid.UUID) bool {
	var found bool
	_ = s.Batch(func(tx *Tx) error {
		found = tx.DeleteReminder(id)
		return nil
	})
	return found
}

// ToggleFavorite flips IsFavorite on a note. It reports false when id is unknown or the
// store is closed.
func (s *Store) ToggleFavorite(id uuid.UUID) (core.Note, bool) {
	var (
		out   core.Note
		found bool
	)
	_ = s.Batch(func(tx *Tx) error {
		out, found = tx.ToggleFavorite(id)
		return nil
	})
	return out, found
}

// UpdateSettings merges patch into the settings and returns the result.
func (s *Store) UpdateSettings(patch core.SettingsPatch) (core.Settings, error) {
	var out core.Settings
	err := s.Batch(func(tx *Tx) error {
		out = tx.UpdateSettings(patch)
		return nil
	})
	return out, err
}

// Batch runs fn against a transaction holding the store lock. Changes made through tx are
// applied only if fn returns nil; every touched collection is then enqueued once.
func (s *Store) Batch(fn func(tx *Tx) error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return core.ErrClosed
	}

	tx := newTx(s)
	if err := fn(tx); err != nil {
		s.mu.Unlock()
		return err
	}
	tx.commit()
	s.inflight.Add(1)
	s.mu.Unlock()

	defer s.inflight.Done()
	for _, c := range tx.changes {
		s.broker.publish(c)
	}
	for _, c := range tx.touchedCollections() {
		s.writer.enqueue(c)
	}
	return nil
}

// --- Reads ---

// Notes returns a copy of the notes in insertion order.
func (s *Store) Notes() []core.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.notes)
}

// Reminders returns a copy of the reminders in insertion order.
func (s *Store) Reminders() []core.Reminder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.reminders)
}

// Events returns a copy of the events in insertion order.
func (s *Store) Events() []core.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events)
}

// Settings returns the current settings.
func (s *Store) Settings() core.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Snapshot returns a copy of everything the store holds.
func (s *Store) Snapshot() core.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.State{
		Notes:     slices.Clone(s.notes),
		Reminders: slices.Clone(s.reminders),
		Events:    slices.Clone(s.events),
		Settings:  s.settings,
	}
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time { return s.now() }

// --- Persistence lifecycle ---

// Errors delivers persistence failures as *core.PersistError. When nobody drains it the
// oldest failures are dropped. The channel is never closed.
func (s *Store) Errors() <-chan error { return s.errs }

// Flush writes every collection with unwritten changes now and returns the joined write
// errors.
func (s *Store) Flush(ctx context.Context) error {
	return s.writer.flush(ctx)
}

// Close rejects further mutations, flushes pending writes and stops the writer and all
// watchers. It is safe to call more than once.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	already := s.closed
	s.closed = true
	s.mu.Unlock()
	if already {
		return nil
	}

	s.inflight.Wait()
	err := s.writer.stop(ctx)
	s.broker.close()
	if closer, ok := s.prefs.(interface{ Close() error }); ok {
		if cerr := closer.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}
	return err
}

func (s *Store) reportError(err error) {
	s.failures.Add(1)
	s.logger.Error("persistence failed", "error", err)
	if s.onError != nil {
		s.onError(err)
	}

	select {
	case s.errs <- err:
		return
	default:
	}
	// Full: drop the oldest failure to keep the most recent ones.
	select {
	case <-s.errs:
	default:
	}
	select {
	case s.errs <- err:
	default:
	}
}

// snapshotBlob encodes the current value of one collection along with its generation.
func (s *Store) snapshotBlob(c core.Collection) ([]byte, uint64, error) {
	s.mu.RLock()
	var (
		data []byte
		err  error
	)
	gen := s.gen[c]
	switch c {
	case core.CollectionNotes:
		data, err = s.notesRepo.Encode(slices.Clone(s.notes))
	case core.CollectionReminders:
		data, err = s.remindersRepo.Encode(slices.Clone(s.reminders))
	case core.CollectionEvents:
		data, err = s.eventsRepo.Encode(slices.Clone(s.events))
	case core.CollectionSettings:
		data, err = s.settingsRepo.Encode(s.settings)
	default:
		err = errors.New("unknown collection: " + string(c))
	}
	s.mu.RUnlock()
	return data, gen, err
}
