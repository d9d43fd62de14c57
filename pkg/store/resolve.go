package store

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/aretw0/bubbly/pkg/core"
)

// ResolveID finds the entity of collection c whose ID is id or starts with it.
// It fails with core.ErrNotFound or core.ErrAmbiguousID.
func (s *Store) ResolveID(c core.Collection, id string) (uuid.UUID, error) {
	if full, err := uuid.Parse(id); err == nil {
		return full, nil
	}
	prefix := strings.ToLower(strings.TrimSpace(id))
	if prefix == "" {
		return uuid.Nil, fmt.Errorf("empty id: %w", core.ErrNotFound)
	}

	s.mu.RLock()
	var ids []uuid.UUID
	switch c {
	case core.CollectionNotes:
		for _, n := range s.notes {
			ids = append(ids, n.ID)
		}
	case core.CollectionReminders:
		for _, r := range s.reminders {
			ids = append(ids, r.ID)
		}
	case core.CollectionEvents:
		for _, e := range s.events {
			ids = append(ids, e.ID)
		}
	}
	s.mu.RUnlock()

	var match uuid.UUID
	found := 0
	for _, candidate := range ids {
		if strings.HasPrefix(candidate.String(), prefix) {
			match = candidate
			found++
		}
	}
	switch found {
	case 0:
		return uuid.Nil, fmt.Errorf("%s %q: %w", c, id, core.ErrNotFound)
	case 1:
		return match, nil
	default:
		return uuid.Nil, fmt.Errorf("%s %q: %w", c, id, core.ErrAmbiguousID)
	}
}
