package store_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aretw0/bubbly/pkg/adapters/memory"
	"github.com/aretw0/bubbly/pkg/codec"
	"github.com/aretw0/bubbly/pkg/core"
	"github.com/aretw0/bubbly/pkg/store"
)

var fixedNow = time.Date(2024, time.March, 14, 9, 30, 0, 0, time.UTC)

func newStore(t *testing.T, prefs core.Preferences, opts store.Options) *store.Store {
	t.Helper()
	if opts.Clock == nil {
		opts.Clock = func() time.Time { return fixedNow }
	}
	st := store.New(prefs, opts)
	require.NoError(t, st.Load(context.Background()))
	t.Cleanup(func() { _ = st.Close(context.Background()) })
	return st
}

func TestStore_AddNoteIsVisibleAndPersisted(t *testing.T) {
	ctx := context.Background()
	prefs := memory.New()
	st := newStore(t, prefs, store.Options{Debounce: time.Hour})

	note, err := st.AddNote(core.Note{Title: "Groceries", Content: "milk"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, note.ID)
	assert.Equal(t, fixedNow, note.CreatedAt)

	notes := st.Notes()
	require.Len(t, notes, 1)
	assert.Equal(t, note, notes[0])

	require.NoError(t, st.Flush(ctx))

	// A second store over the same preferences sees the same notes.
	reopened := newStore(t, prefs, store.Options{})
	if diff := cmp.Diff(st.Notes(), reopened.Notes()); diff != "" {
		t.Errorf("reloaded notes mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_RoundTripAllCollections(t *testing.T) {
	for _, s := range []codec.Serializer{codec.NewJSONSerializer(), codec.NewYAMLSerializer()} {
		t.Run(s.Name(), func(t *testing.T) {
			ctx := context.Background()
			prefs := memory.New()
			st := newStore(t, prefs, store.Options{Serializer: s, Debounce: time.Hour})

			_, err := st.AddNote(core.Note{Title: "a", Content: "b"})
			require.NoError(t, err)
			_, err = st.AddReminder(core.Reminder{Title: "call", Time: fixedNow.Add(time.Hour), IsRepeating: true})
			require.NoError(t, err)
			_, err = st.AddEvent(core.Event{Title: "launch", Date: fixedNow.AddDate(0, 0, 3)})
			require.NoError(t, err)
			off := false
			_, err = st.UpdateSettings(core.SettingsPatch{AnimationsEnabled: &off})
			require.NoError(t, err)

			require.NoError(t, st.Close(ctx))

			reopened := newStore(t, prefs, store.Options{Serializer: s})
			if diff := cmp.Diff(st.Snapshot(), reopened.Snapshot()); diff != "" {
				t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStore_ToggleReminderTwiceIsIdentity(t *testing.T) {
	st := newStore(t, memory.New(), store.Options{Debounce: time.Hour})
	r, err := st.AddReminder(core.Reminder{Title: "stretch", Time: fixedNow})
	require.NoError(t, err)

	toggled, ok := st.ToggleReminderCompletion(r.ID)
	require.True(t, ok)
	assert.True(t, toggled.IsCompleted)

	toggled, ok = st.ToggleReminderCompletion(r.ID)
	require.True(t, ok)
	assert.Equal(t, r, toggled)
	assert.Equal(t, []core.Reminder{r}, st.Reminders())
}

func TestStore_SnoozeCompounds(t *testing.T) {
	st := newStore(t, memory.New(), store.Options{Debounce: time.Hour})
	r, err := st.AddReminder(core.Reminder{Title: "tea", Time: fixedNow})
	require.NoError(t, err)

	_, err = st.SnoozeReminder(r.ID, 15)
	require.NoError(t, err)
	snoozed, err := st.SnoozeReminder(r.ID, 15)
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Add(30*time.Minute), snoozed.Time)

	_, err = st.SnoozeReminder(r.ID, 0)
	assert.ErrorIs(t, err, core.ErrInvalidOffset)
	_, err = st.SnoozeReminder(uuid.New(), 5)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, fixedNow.Add(30*time.Minute), st.Reminders()[0].Time)

	// Offsets whose duration would wrap around are rejected instead of moving time backwards.
	for _, minutes := range []int{store.MaxSnoozeMinutes + 1, math.MaxInt} {
		_, err = st.SnoozeReminder(r.ID, minutes)
		assert.ErrorIs(t, err, core.ErrInvalidOffset, "minutes=%d", minutes)
	}
	assert.Equal(t, fixedNow.Add(30*time.Minute), st.Reminders()[0].Time)

	snoozed, err = st.SnoozeReminder(r.ID, store.MaxSnoozeMinutes)
	require.NoError(t, err)
	assert.True(t, snoozed.Time.After(fixedNow))
}

func TestStore_UnknownIDsAreNoOps(t *testing.T) {
	ctx := context.Background()
	prefs := memory.New()
	st := newStore(t, prefs, store.Options{Debounce: time.Hour})

	_, err := st.AddReminder(core.Reminder{Title: "keep", Time: fixedNow})
	require.NoError(t, err)
	require.NoError(t, st.Flush(ctx))
	before := prefs.Writes()

	assert.False(t, st.DeleteReminder(uuid.New()))
	_, ok := st.ToggleReminderCompletion(uuid.New())
	assert.False(t, ok)
	_, ok = st.ToggleFavorite(uuid.New())
	assert.False(t, ok)

	require.NoError(t, st.Flush(ctx))
	assert.Len(t, st.Reminders(), 1)
	assert.Equal(t, before, prefs.Writes(), "no-op mutations must not write")
}

func TestStore_DeleteReminderAndToggleFavorite(t *testing.T) {
	st := newStore(t, memory.New(), store.Options{Debounce: time.Hour})
	a, _ := st.AddReminder(core.Reminder{Title: "a", Time: fixedNow})
	b, _ := st.AddReminder(core.Reminder{Title: "b", Time: fixedNow})
	n, _ := st.AddNote(core.Note{Title: "n"})

	assert.True(t, st.DeleteReminder(a.ID))
	assert.Equal(t, []core.Reminder{b}, st.Reminders())

	fav, ok := st.ToggleFavorite(n.ID)
	require.True(t, ok)
	assert.True(t, fav.IsFavorite)
	assert.True(t, st.Notes()[0].IsFavorite)
}

func TestStore_AddValidation(t *testing.T) {
	st := newStore(t, memory.New(), store.Options{Debounce: time.Hour})

	_, err := st.AddReminder(core.Reminder{Title: "no time"})
	assert.ErrorIs(t, err, core.ErrInvalidTime)

	n, err := st.AddNote(core.Note{Title: "once"})
	require.NoError(t, err)
	_, err = st.AddNote(core.Note{ID: n.ID, Title: "twice"})
	assert.ErrorIs(t, err, core.ErrDuplicateID)
	assert.Len(t, st.Notes(), 1)
}

func TestStore_DebounceCoalescesWrites(t *testing.T) {
	prefs := memory.New()
	st := newStore(t, prefs, store.Options{Debounce: 50 * time.Millisecond})

	r, err := st.AddReminder(core.Reminder{Title: "spam", Time: fixedNow})
	require.NoError(t, err)
	for i := 0; i < 9; i++ {
		st.ToggleReminderCompletion(r.ID)
	}

	require.Eventually(t, func() bool { return prefs.Writes() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 1, prefs.Writes(), "rapid mutations of one collection should produce one write")

	// The single write carries the final state.
	reopened := newStore(t, prefs, store.Options{})
	assert.Equal(t, st.Reminders(), reopened.Reminders())
}

func TestStore_CloseFlushesPendingWrites(t *testing.T) {
	ctx := context.Background()
	prefs := memory.New()
	st := store.New(prefs, store.Options{Debounce: time.Hour})
	require.NoError(t, st.Load(ctx))

	_, err := st.AddEvent(core.Event{Title: "dentist", Date: fixedNow})
	require.NoError(t, err)
	assert.Equal(t, 0, prefs.Writes())

	require.NoError(t, st.Close(ctx))
	assert.Equal(t, 1, prefs.Writes())

	_, err = prefs.Get(ctx, core.CollectionEvents.Key())
	require.NoError(t, err)

	// Closing twice is harmless; mutations are rejected.
	require.NoError(t, st.Close(ctx))
	_, err = st.AddNote(core.Note{Title: "late"})
	assert.ErrorIs(t, err, core.ErrClosed)
}

type failingPrefs struct {
	*memory.Preferences
	fail atomic.Bool
}

func (f *failingPrefs) Set(ctx context.Context, key string, value []byte) error {
	if f.fail.Load() {
		return errors.New("disk full")
	}
	return f.Preferences.Set(ctx, key, value)
}

func TestStore_WriteFailuresAreSurfaced(t *testing.T) {
	ctx := context.Background()
	prefs := &failingPrefs{Preferences: memory.New()}
	prefs.fail.Store(true)

	var handled atomic.Int32
	st := newStore(t, prefs, store.Options{
		Debounce: time.Hour,
		OnError:  func(error) { handled.Add(1) },
	})

	_, err := st.AddNote(core.Note{Title: "lost?"})
	require.NoError(t, err, "mutations succeed in memory even when persistence fails")

	err = st.Flush(ctx)
	require.Error(t, err)

	select {
	case got := <-st.Errors():
		var perr *core.PersistError
		require.ErrorAs(t, got, &perr)
		assert.Equal(t, core.CollectionNotes.Key(), perr.Key)
		assert.Equal(t, "write", perr.Op)
	case <-time.After(time.Second):
		t.Fatal("expected a persistence error")
	}
	assert.EqualValues(t, 1, handled.Load())

	state := st.State().(store.StoreState)
	assert.Equal(t, []string{"notes"}, state.FailedKeys)

	// Once the backend recovers, the failed collection is retried on the next flush.
	prefs.fail.Store(false)
	require.NoError(t, st.Flush(ctx))
	assert.Equal(t, 1, prefs.Writes())
	assert.Empty(t, st.State().(store.StoreState).FailedKeys)
}

func TestStore_LoadLegacyBlobs(t *testing.T) {
	ctx := context.Background()
	prefs := memory.New()
	id := uuid.MustParse("6f1c3b2a-8d4e-4f5a-9b6c-7d8e9f0a1b2c")

	require.NoError(t, prefs.Set(ctx, "notes", []byte(`[
		{"id":"`+id.String()+`","title":"old","content":"from before","createdAt":700000000,"isFavorite":true}
	]`)))
	require.NoError(t, prefs.Set(ctx, "settings", []byte(`{"animationsEnabled":false}`)))

	st := newStore(t, prefs, store.Options{})

	want := core.Note{
		ID:         id,
		Title:      "old",
		Content:    "from before",
		CreatedAt:  time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC).Add(700000000 * time.Second),
		IsFavorite: true,
	}
	if diff := cmp.Diff([]core.Note{want}, st.Notes()); diff != "" {
		t.Errorf("legacy notes mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, core.Settings{AnimationsEnabled: false, NotificationsEnabled: true}, st.Settings())
}

func TestStore_CorruptCollectionFallsBackAlone(t *testing.T) {
	ctx := context.Background()
	prefs := memory.New()
	require.NoError(t, prefs.Set(ctx, "reminders", []byte("{{{ not json")))
	require.NoError(t, prefs.Set(ctx, "events", []byte(`{"version":1,"kind":"events","data":[{"title":"kept","date":"2024-03-14T00:00:00Z"}]}`)))

	st := newStore(t, prefs, store.Options{})

	assert.Empty(t, st.Reminders())
	require.Len(t, st.Events(), 1)
	assert.Equal(t, "kept", st.Events()[0].Title)
	assert.Equal(t, core.DefaultSettings(), st.Settings())
	assert.EqualValues(t, 1, st.State().(store.StoreState).LoadFallbacks)
}

func TestStore_LoadRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st := store.New(memory.New(), store.Options{})
	defer st.Close(context.Background())
	assert.ErrorIs(t, st.Load(ctx), context.Canceled)
}

func TestStore_BatchIsAtomic(t *testing.T) {
	st := newStore(t, memory.New(), store.Options{Debounce: time.Hour})
	r, _ := st.AddReminder(core.Reminder{Title: "r", Time: fixedNow})

	err := st.Batch(func(tx *store.Tx) error {
		if _, err := tx.AddNote(core.Note{Title: "staged"}); err != nil {
			return err
		}
		tx.DeleteReminder(r.ID)
		return errors.New("abort")
	})
	require.EqualError(t, err, "abort")
	assert.Empty(t, st.Notes())
	assert.Len(t, st.Reminders(), 1)

	err = st.Batch(func(tx *store.Tx) error {
		if _, err := tx.AddNote(core.Note{Title: "committed"}); err != nil {
			return err
		}
		tx.DeleteReminder(r.ID)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, st.Notes(), 1)
	assert.Empty(t, st.Reminders())
}

func TestStore_WatchPublishesChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := newStore(t, memory.New(), store.Options{Debounce: time.Hour})
	changes := st.Watch(ctx)

	n, _ := st.AddNote(core.Note{Title: "watched"})
	st.ToggleFavorite(n.ID)
	st.DeleteReminder(uuid.New()) // no change

	want := []core.Change{
		{Type: core.ChangeCreate, Collection: core.CollectionNotes, ID: n.ID, Timestamp: fixedNow.Unix()},
		{Type: core.ChangeModify, Collection: core.CollectionNotes, ID: n.ID, Timestamp: fixedNow.Unix()},
	}
	for i, w := range want {
		select {
		case got := <-changes:
			assert.Equal(t, w, got, "change %d", i)
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for change %d", i)
		}
	}

	require.NoError(t, st.Close(context.Background()))
	_, open := <-changes
	assert.False(t, open, "watch channel should close with the store")
}

func TestStore_ReloadPicksUpExternalEdits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	prefs := memory.New()
	st := newStore(t, prefs, store.Options{Debounce: time.Hour})
	changes := st.Watch(ctx)

	require.NoError(t, prefs.Set(ctx, "settings", []byte(`{"version":1,"kind":"settings","data":{"animationsEnabled":false,"notificationsEnabled":false}}`)))
	require.NoError(t, st.Reload(ctx, core.CollectionSettings))

	assert.Equal(t, core.Settings{}, st.Settings())
	select {
	case c := <-changes:
		assert.Equal(t, core.ChangeReload, c.Type)
		assert.Equal(t, core.CollectionSettings, c.Collection)
	case <-time.After(time.Second):
		t.Fatal("expected a reload change")
	}
}

func TestStore_ReloadKeepsUnsavedChanges(t *testing.T) {
	t.Run("right after a mutation", func(t *testing.T) {
		ctx := context.Background()
		st := newStore(t, memory.New(), store.Options{Debounce: time.Hour})

		note, err := st.AddNote(core.Note{Title: "fresh"})
		require.NoError(t, err)
		require.NoError(t, st.Reload(ctx, core.CollectionNotes))
		assert.Equal(t, []core.Note{note}, st.Notes())
	})

	t.Run("after a failed flush", func(t *testing.T) {
		ctx := context.Background()
		prefs := &failingPrefs{Preferences: memory.New()}
		prefs.fail.Store(true)
		st := newStore(t, prefs, store.Options{Debounce: time.Hour})

		note, err := st.AddNote(core.Note{Title: "unsaved"})
		require.NoError(t, err)
		require.Error(t, st.Flush(ctx))

		require.NoError(t, st.Reload(ctx, core.CollectionNotes))
		assert.Equal(t, []core.Note{note}, st.Notes())

		// The retried write carries the note, and a reopened store sees it.
		prefs.fail.Store(false)
		require.NoError(t, st.Flush(ctx))
		reopened := newStore(t, prefs.Preferences, store.Options{})
		require.Len(t, reopened.Notes(), 1)
		assert.Equal(t, "unsaved", reopened.Notes()[0].Title)

		// Once saved, external edits are picked up again.
		require.NoError(t, prefs.Set(ctx, core.CollectionNotes.Key(), []byte(`[]`)))
		require.NoError(t, st.Reload(ctx, core.CollectionNotes))
		assert.Empty(t, st.Notes())
	})
}

func TestStore_ConcurrentMutations(t *testing.T) {
	ctx := context.Background()
	prefs := memory.New()
	st := newStore(t, prefs, store.Options{Debounce: 5 * time.Millisecond, QueueSize: 4})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				_, err := st.AddNote(core.Note{Title: "n"})
				assert.NoError(t, err)
				_ = st.Snapshot()
			}
		}()
	}
	wg.Wait()
	require.NoError(t, st.Flush(ctx))

	assert.Len(t, st.Notes(), 200)
	reopened := newStore(t, prefs, store.Options{})
	assert.Len(t, reopened.Notes(), 200)
}

func TestStore_NoGoroutineLeaks(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	st := store.New(memory.New(), store.Options{Debounce: 10 * time.Millisecond})
	require.NoError(t, st.Load(ctx))
	_ = st.Watch(ctx)
	_ = st.Watch(context.Background())
	_, err := st.AddNote(core.Note{Title: "leak check"})
	require.NoError(t, err)

	require.NoError(t, st.Close(context.Background()))
	cancel()
	time.Sleep(20 * time.Millisecond)
}
