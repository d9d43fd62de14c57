package store

import (
	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Notes           int      `json:"notes"`
	Reminders       int      `json:"reminders"`
	Events          int      `json:"events"`
	Closed          bool     `json:"closed"`
	Serializer      string   `json:"serializer"`
	PreferencesType string   `json:"preferences_type"`
	PendingKeys     []string `json:"pending_keys,omitempty"`
	FailedKeys      []string `json:"failed_keys,omitempty"`
	Writes          uint64   `json:"writes"`
	WriteFailures   uint64   `json:"write_failures"`
	LoadFallbacks   uint64   `json:"load_fallbacks"`
	Watchers        int      `json:"watchers"`
	DroppedChanges  uint64   `json:"dropped_changes"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	state := StoreState{
		Notes:      len(s.notes),
		Reminders:  len(s.reminders),
		Events:     len(s.events),
		Closed:     s.closed,
		Serializer: s.serializer.Name(),
	}
	s.mu.RUnlock()

	state.PreferencesType = "preferences"
	if comp, ok := s.prefs.(introspection.Component); ok {
		state.PreferencesType = comp.ComponentType()
	}
	state.PendingKeys, state.FailedKeys = s.writer.snapshot()
	state.Writes = s.writes.Load()
	state.WriteFailures = s.failures.Load()
	state.LoadFallbacks = s.loadFallbacks.Load()
	state.Watchers = s.broker.count()
	state.DroppedChanges = s.broker.dropped.Load()
	return state
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
