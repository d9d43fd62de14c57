// Package bubbly is the composition root of a personal organizer core: notes, reminders,
// calendar events and settings held in memory and written through to a pluggable
// preferences adapter.
//
// It wires the store (pkg/store) to an adapter (pkg/adapters/fs, sqlite or memory) with
// functional options, in the same hexagonal layout the rest of the module follows:
// the domain (pkg/core) knows nothing about storage, adapters know nothing about notes.
//
// Features:
//
//   - Synchronous mutations with change notifications (Store.Watch).
//   - Debounced, coalesced write-through by a single background writer.
//   - Versioned JSON or YAML blobs; legacy shapes still load.
//   - Derived views (pkg/views): today list, calendar grid, pie chart, note ordering.
//   - Dev safety: `go run` and `go test` never touch the real data directory.
//
// Usage:
//
//	st, err := bubbly.New("", bubbly.WithLogger(logger))
//	if err != nil { ... }
//	defer st.Close(ctx)
//
//	note, _ := st.AddNote(bubbly.Note{Title: "groceries"})
//	st.ToggleFavorite(note.ID)
package bubbly
