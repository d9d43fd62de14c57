package store

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/bubbly/pkg/core"
)

// Tx stages mutations inside Store.Batch. Collections are copied on first write, so a
// failed batch leaves the store untouched.
type Tx struct {
	s       *Store
	now     time.Time
	changes []core.Change

	notes     []core.Note
	reminders []core.Reminder
	events    []core.Event
	settings  core.Settings

	touched map[core.Collection]bool
}

func newTx(s *Store) *Tx {
	return &Tx{
		s:         s,
		now:       s.now(),
		notes:     s.notes,
		reminders: s.reminders,
		events:    s.events,
		settings:  s.settings,
		touched:   make(map[core.Collection]bool),
	}
}

// touch clones the collection the first time the transaction writes to it.
func (tx *Tx) touch(c core.Collection) {
	if tx.touched[c] {
		return
	}
	tx.touched[c] = true
	switch c {
	case core.CollectionNotes:
		tx.notes = slices.Clone(tx.notes)
	case core.CollectionReminders:
		tx.reminders = slices.Clone(tx.reminders)
	case core.CollectionEvents:
		tx.events = slices.Clone(tx.events)
	}
}

func (tx *Tx) record(t core.ChangeType, c core.Collection, id uuid.UUID) {
	tx.changes = append(tx.changes, core.Change{
		Type:       t,
		Collection: c,
		ID:         id,
		Timestamp:  tx.now.Unix(),
	})
}

// commit installs the staged collections and bumps their generation, so they count as
// unsaved before the store lock is released.
func (tx *Tx) commit() {
	for c := range tx.touched {
		tx.s.gen[c]++
	}
	if tx.touched[core.CollectionNotes] {
		tx.s.notes = tx.notes
	}
	if tx.touched[core.CollectionReminders] {
		tx.s.reminders = tx.reminders
	}
	if tx.touched[core.CollectionEvents] {
		tx.s.events = tx.events
	}
	if tx.touched[core.CollectionSettings] {
		tx.s.settings = tx.settings
	}
}

func (tx *Tx) touchedCollections() []core.Collection {
	var out []core.Collection
	for _, c := range core.Collections() {
		if tx.touched[c] {
			out = append(out, c)
		}
	}
	return out
}

// Notes returns the notes as staged by the transaction.
func (tx *Tx) Notes() []core.Note { return slices.Clone(tx.notes) }

// Reminders returns the reminders as staged by the transaction.
func (tx *Tx) Reminders() []core.Reminder { return slices.Clone(tx.reminders) }

// AddNote stages a new note.
func (tx *Tx) AddNote(n core.Note) (core.Note, error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	} else if slices.ContainsFunc(tx.notes, func(x core.Note) bool { return x.ID == n.ID }) {
		return core.Note{}, fmt.Errorf("note %s: %w", n.ID, core.ErrDuplicateID)
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = tx.now
	}
	tx.touch(core.CollectionNotes)
	tx.notes = append(tx.notes, n)
	tx.record(core.ChangeCreate, core.CollectionNotes, n.ID)
	return n, nil
}

// AddReminder stages a new reminder.
func (tx *Tx) AddReminder(r core.Reminder) (core.Reminder, error) {
	if r.Time.IsZero() {
		return core.Reminder{}, core.ErrInvalidTime
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	} else if slices.ContainsFunc(tx.reminders, func(x core.Reminder) bool { return x.ID == r.ID }) {
		return core.Reminder{}, fmt.Errorf("reminder %s: %w", r.ID, core.ErrDuplicateID)
	}
	tx.touch(core.CollectionReminders)
	tx.reminders = append(tx.reminders, r)
	tx.record(core.ChangeCreate, core.CollectionReminders, r.ID)
	return r, nil
}

// AddEvent stages a new event.
func (tx *Tx) AddEvent(e core.Event) (core.Event, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	} else if slices.ContainsFunc(tx.events, func(x core.Event) bool { return x.ID == e.ID }) {
		return core.Event{}, fmt.Errorf("event %s: %w", e.ID, core.ErrDuplicateID)
	}
	tx.touch(core.CollectionEvents)
	tx.events = append(tx.events, e)
	tx.record(core.ChangeCreate, core.CollectionEvents, e.ID)
	return e, nil
}

// ToggleReminderCompletion stages a completion flip.
func (tx *Tx) ToggleReminderCompletion(id uuid.UUID) (core.Reminder, bool) {
	i := slices.IndexFunc(tx.reminders, func(r core.Reminder) bool { return r.ID == id })
	if i < 0 {
		return core.Reminder{}, false
	}
	tx.touch(core.CollectionReminders)
	tx.reminders[i].IsCompleted = !tx.reminders[i].IsCompleted
	tx.record(core.ChangeModify, core.CollectionReminders, id)
	return tx.reminders[i], true
}

// MaxSnoozeMinutes is the largest offset whose duration fits in a time.Duration.
const MaxSnoozeMinutes = int(math.MaxInt64 / int64(time.Minute))

// SnoozeReminder stages a snooze of minutes, which must be in 1..MaxSnoozeMinutes.
func (tx *Tx) SnoozeReminder(id uuid.UUID, minutes int) (core.Reminder, error) {
	if minutes <= 0 || minutes > MaxSnoozeMinutes {
		return core.Reminder{}, fmt.Errorf("%w: %d", core.ErrInvalidOffset, minutes)
	}
	i := slices.IndexFunc(tx.reminders, func(r core.Reminder) bool { return r.ID == id })
	if i < 0 {
		return core.Reminder{}, fmt.Errorf("reminder %s: %w", id, core.ErrNotFound)
	}
	next := tx.reminders[i].Time.Add(time.Duration(minutes) * time.Minute)
	if !next.After(tx.reminders[i].Time) {
		return core.Reminder{}, fmt.Errorf("%w: %d minutes overflows %s", core.ErrInvalidOffset, minutes, tx.reminders[i].Time)
	}
	tx.touch(core.CollectionReminders)
	tx.reminders[i].Time = next
	tx.record(core.ChangeModify, core.CollectionReminders, id)
	return tx.reminders[i], nil
}

// DeleteReminder stages a removal.
func (tx *Tx) DeleteReminder(id uuid.UUID) bool {
	i := slices.IndexFunc(tx.reminders, func(r core.Reminder) bool { return r.ID == id })
	if i < 0 {
		return false
	}
	tx.touch(core.CollectionReminders)
	tx.reminders = slices.Delete(tx.reminders, i, i+1)
	tx.record(core.ChangeDelete, core.CollectionReminders, id)
	return true
}

// ToggleFavorite stages a favorite flip.
func (tx *Tx) ToggleFavorite(id uuid.UUID) (core.Note, bool) {
	i := slices.IndexFunc(tx.notes, func(n core.Note) bool { return n.ID == id })
	if i < 0 {
		return core.Note{}, false
	}
	tx.touch(core.CollectionNotes)
	tx.notes[i].IsFavorite = !tx.notes[i].IsFavorite
	tx.record(core.ChangeModify, core.CollectionNotes, id)
	return tx.notes[i], true
}

// UpdateSettings stages a settings patch.
func (tx *Tx) UpdateSettings(patch core.SettingsPatch) core.Settings {
	tx.touch(core.CollectionSettings)
	tx.settings = patch.Apply(tx.settings)
	tx.record(core.ChangeModify, core.CollectionSettings, uuid.Nil)
	return tx.settings
}
