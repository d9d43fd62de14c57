package store

import (
	"context"
	"errors"

	"github.com/aretw0/bubbly/pkg/core"
)

// ErrNotWatchable is returned by Follow when the preferences cannot report external changes.
var ErrNotWatchable = errors.New("preferences do not support watching")

// Follow reloads a collection whenever another process changes its key, until ctx is done.
// It blocks; run it in its own goroutine. Keys that are not collections are ignored, and a
// deleted key reloads the collection's default.
func (s *Store) Follow(ctx context.Context) error {
	w, ok := s.prefs.(core.Watchable)
	if !ok {
		return ErrNotWatchable
	}
	events, err := w.Watch(ctx, "*")
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-events:
			if !ok {
				return nil
			}
			c, known := core.ParseCollection(e.Key)
			if !known {
				continue
			}
			s.logger.Debug("external change", "key", e.Key, "type", e.Type)
			if err := s.Reload(ctx, c); err != nil && ctx.Err() == nil {
				s.logger.Warn("reload failed", "collection", c, "error", err)
			}
		}
	}
}

// Preferences returns the adapter the store persists to.
func (s *Store) Preferences() core.Preferences { return s.prefs }
