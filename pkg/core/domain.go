// Package core holds the organizer domain entities and the Preferences storage port.
package core

import (
	"time"

	"github.com/google/uuid"
)

// Note is a free-form note. It is only mutated through the favorite toggle.
type Note struct {
	ID         uuid.UUID `json:"id" yaml:"id"`
	Title      string    `json:"title" yaml:"title"`
	Content    string    `json:"content" yaml:"content"`
	CreatedAt  time.Time `json:"createdAt" yaml:"createdAt"`
	IsFavorite bool      `json:"isFavorite" yaml:"isFavorite"`
}

// Reminder is a timed item that can be completed, snoozed or deleted.
type Reminder struct {
	ID          uuid.UUID `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Time        time.Time `json:"time" yaml:"time"`
	IsRepeating bool      `json:"isRepeating" yaml:"isRepeating"`
	IsCompleted bool      `json:"isCompleted" yaml:"isCompleted"`
}

// Event is a dated calendar entry. Events are immutable once added.
type Event struct {
	ID    uuid.UUID `json:"id" yaml:"id"`
	Title string    `json:"title" yaml:"title"`
	Date  time.Time `json:"date" yaml:"date"`
}

// Settings is the process-wide preferences record.
type Settings struct {
	AnimationsEnabled    bool `json:"animationsEnabled" yaml:"animationsEnabled"`
	NotificationsEnabled bool `json:"notificationsEnabled" yaml:"notificationsEnabled"`
}

// DefaultSettings returns the settings used when nothing has been persisted.
func DefaultSettings() Settings {
	return Settings{
		AnimationsEnabled:    true,
		NotificationsEnabled: true,
	}
}

// SettingsPatch is a partial settings update. Nil fields are left untouched.
type SettingsPatch struct {
	AnimationsEnabled    *bool `json:"animationsEnabled,omitempty"`
	NotificationsEnabled *bool `json:"notificationsEnabled,omitempty"`
}

// Apply merges the patch into s and returns the result.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.AnimationsEnabled != nil {
		s.AnimationsEnabled = *p.AnimationsEnabled
	}
	if p.NotificationsEnabled != nil {
		s.NotificationsEnabled = *p.NotificationsEnabled
	}
	return s
}

// Collection names a persisted blob. Each collection is stored under its own key.
type Collection string

const (
	CollectionNotes     Collection = "notes"
	CollectionReminders Collection = "reminders"
	CollectionEvents    Collection = "events"
	CollectionSettings  Collection = "settings"
)

// Collections lists every persisted collection in load order.
func Collections() []Collection {
	return []Collection{CollectionNotes, CollectionReminders, CollectionEvents, CollectionSettings}
}

// Key returns the preferences key the collection is stored under.
func (c Collection) Key() string { return string(c) }

// ParseCollection maps a preferences key back to its collection.
func ParseCollection(key string) (Collection, bool) {
	for _, c := range Collections() {
		if string(c) == key {
			return c, true
		}
	}
	return "", false
}

// State is a point-in-time copy of everything the Store holds.
type State struct {
	Notes     []Note     `json:"notes"`
	Reminders []Reminder `json:"reminders"`
	Events    []Event    `json:"events"`
	Settings  Settings   `json:"settings"`
}

// ChangeType describes what happened to an entity.
type ChangeType string

const (
	ChangeCreate ChangeType = "CREATE"
	ChangeModify ChangeType = "MODIFY"
	ChangeDelete ChangeType = "DELETE"
	ChangeReload ChangeType = "RELOAD"
)

// Change is published to watchers after every successful mutation.
type Change struct {
	Type       ChangeType
	Collection Collection
	ID         uuid.UUID // uuid.Nil for settings and reloads
	Timestamp  int64     // Unix timestamp
}

// String renders the change for logs and event sources.
func (c Change) String() string {
	if c.ID == uuid.Nil {
		return string(c.Type) + " " + string(c.Collection)
	}
	return string(c.Type) + " " + string(c.Collection) + "/" + c.ID.String()
}

// KeyEventType represents the type of change seen in a preferences backend.
type KeyEventType string

const (
	KeyCreate KeyEventType = "CREATE"
	KeyModify KeyEventType = "MODIFY"
	KeyDelete KeyEventType = "DELETE"
)

// KeyEvent represents a change to a stored key, usually made outside the Store.
type KeyEvent struct {
	Type      KeyEventType
	Key       string
	Timestamp int64 // Unix timestamp
}
