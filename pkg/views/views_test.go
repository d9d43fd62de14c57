package views_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/bubbly/pkg/core"
	"github.com/aretw0/bubbly/pkg/views"
)

var now = time.Date(2024, time.May, 15, 11, 0, 0, 0, time.UTC)

func at(day, hour int) time.Time {
	return time.Date(2024, time.May, day, hour, 0, 0, 0, time.UTC)
}

func TestTodayItems(t *testing.T) {
	note := core.Note{ID: uuid.New(), Title: "ancient note", CreatedAt: at(1, 8)}
	reminder := core.Reminder{ID: uuid.New(), Title: "standup", Time: at(15, 9)}
	done := core.Reminder{ID: uuid.New(), Title: "done already", Time: at(15, 10), IsCompleted: true}
	today := core.Event{ID: uuid.New(), Title: "review", Date: at(15, 14)}
	tomorrow := core.Event{ID: uuid.New(), Title: "offsite", Date: at(16, 14)}

	items := views.TodayItems(
		[]core.Note{note},
		[]core.Reminder{done, reminder},
		[]core.Event{tomorrow, today},
		now,
	)

	want := []views.TodayItem{
		{Kind: views.KindNote, ID: note.ID, Title: note.Title, Time: note.CreatedAt},
		{Kind: views.KindReminder, ID: reminder.ID, Title: reminder.Title, Time: reminder.Time},
		{Kind: views.KindEvent, ID: today.ID, Title: today.Title, Time: today.Date},
	}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Errorf("TodayItems mismatch (-want +got):\n%s", diff)
	}
}

func TestTodayItems_RespectsReferenceLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	ref := time.Date(2024, time.May, 16, 8, 0, 0, 0, tokyo)

	// 2024-05-15 23:30 UTC is 2024-05-16 08:30 in Tokyo.
	r := core.Reminder{ID: uuid.New(), Title: "late call", Time: time.Date(2024, time.May, 15, 23, 30, 0, 0, time.UTC)}

	items := views.TodayItems(nil, []core.Reminder{r}, nil, ref)
	require.Len(t, items, 1)
	assert.Equal(t, r.ID, items[0].ID)
}

func TestTodayCompletedCount(t *testing.T) {
	reminders := []core.Reminder{
		{Time: at(15, 9), IsCompleted: true},
		{Time: at(15, 18), IsCompleted: true},
		{Time: at(15, 20)},
		{Time: at(14, 9), IsCompleted: true},
	}
	assert.Equal(t, 2, views.TodayCompletedCount(reminders, now))
	assert.Equal(t, 0, views.TodayCompletedCount(nil, now))
}

func TestSortNotes_Favorites(t *testing.T) {
	notes := []core.Note{
		{Title: "A", IsFavorite: false},
		{Title: "B", IsFavorite: true},
		{Title: "C", IsFavorite: false},
		{Title: "D", IsFavorite: true},
	}

	sorted := views.SortNotes(notes, views.OrderFavorites, "")
	require.Len(t, sorted, 4)

	// Only the partition is guaranteed.
	assert.True(t, sorted[0].IsFavorite)
	assert.True(t, sorted[1].IsFavorite)
	assert.False(t, sorted[2].IsFavorite)
	assert.False(t, sorted[3].IsFavorite)

	// Input untouched.
	assert.Equal(t, "A", notes[0].Title)
}

func TestSortNotes_ByDateAndSearch(t *testing.T) {
	notes := []core.Note{
		{Title: "Shopping list", CreatedAt: at(2, 0)},
		{Title: "Book ideas", CreatedAt: at(3, 0)},
		{Title: "shopping, again", CreatedAt: at(1, 0)},
	}

	titles := func(ns []core.Note) []string {
		out := make([]string, len(ns))
		for i, n := range ns {
			out[i] = n.Title
		}
		return out
	}

	assert.Equal(t, []string{"Book ideas", "Shopping list", "shopping, again"},
		titles(views.SortNotes(notes, views.OrderNewest, "")))
	assert.Equal(t, []string{"shopping, again", "Shopping list", "Book ideas"},
		titles(views.SortNotes(notes, views.OrderOldest, "")))
	assert.Equal(t, []string{"Shopping list", "shopping, again"},
		titles(views.SortNotes(notes, views.OrderNewest, "SHOP")))
	assert.Empty(t, views.SortNotes(notes, views.OrderNewest, "nothing"))
}

func TestParseNoteOrder(t *testing.T) {
	for in, want := range map[string]views.NoteOrder{
		"":          views.OrderNewest,
		"newest":    views.OrderNewest,
		"Oldest":    views.OrderOldest,
		" favorites": views.OrderFavorites,
	} {
		got, err := views.ParseNoteOrder(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := views.ParseNoteOrder("alphabetical")
	assert.Error(t, err)
}

func TestGroupReminders(t *testing.T) {
	r1 := core.Reminder{Title: "late", Time: at(15, 18)}
	r2 := core.Reminder{Title: "early", Time: at(15, 7)}
	r3 := core.Reminder{Title: "yesterday", Time: at(14, 12)}
	r4 := core.Reminder{Title: "next week", Time: at(22, 9)}

	groups := views.GroupReminders([]core.Reminder{r1, r2, r3, r4}, time.UTC)

	require.Len(t, groups, 3)
	assert.Equal(t, at(14, 0), groups[0].Day)
	assert.Equal(t, []core.Reminder{r3}, groups[0].Reminders)
	assert.Equal(t, at(15, 0), groups[1].Day)
	assert.Equal(t, []core.Reminder{r2, r1}, groups[1].Reminders)
	assert.Equal(t, at(22, 0), groups[2].Day)

	assert.Empty(t, views.GroupReminders(nil, nil))
}

func TestPieSegments(t *testing.T) {
	segments := views.PieSegments(1, 1, 2)

	want := []views.Segment{
		{Label: "notes", Count: 1, Start: 0, Span: 90},
		{Label: "reminders", Count: 1, Start: 90, Span: 90},
		{Label: "events", Count: 2, Start: 180, Span: 180},
	}
	assert.Equal(t, want, segments)
	assert.InDelta(t, 0.5, segments[2].Share(), 1e-9)
}

func TestPieSegments_Empty(t *testing.T) {
	for _, s := range views.PieSegments(0, 0, 0) {
		assert.Zero(t, s.Span, s.Label)
		assert.Zero(t, s.Start, s.Label)
	}
}

func TestSortEventsAndEventsOn(t *testing.T) {
	late := core.Event{Title: "dinner", Date: at(15, 19)}
	early := core.Event{Title: "breakfast", Date: at(15, 7)}
	other := core.Event{Title: "offsite", Date: at(16, 9)}
	input := []core.Event{other, late, early}

	assert.Equal(t, []core.Event{early, late, other}, views.SortEvents(input))
	assert.Equal(t, []core.Event{other, late, early}, input, "input is not reordered")

	assert.Equal(t, []core.Event{early, late}, views.EventsOn(input, at(15, 0)))
	assert.Empty(t, views.EventsOn(input, at(17, 0)))
}
