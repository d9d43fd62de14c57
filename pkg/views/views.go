// Package views computes the projections a front end renders from a store snapshot.
// Every function is pure: it never mutates its arguments and depends only on its inputs.
package views

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/bubbly/pkg/core"
)

// ItemKind tells which collection a TodayItem came from.
type ItemKind string

const (
	KindNote     ItemKind = "note"
	KindReminder ItemKind = "reminder"
	KindEvent    ItemKind = "event"
)

// TodayItem is one row of the today list.
type TodayItem struct {
	Kind  ItemKind  `json:"kind"`
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Time  time.Time `json:"time"`
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether t falls on ref's calendar day, as seen from ref's location.
func SameDay(ref, t time.Time) bool {
	y1, m1, d1 := ref.Date()
	y2, m2, d2 := t.In(ref.Location()).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// TodayItems merges every note with the reminders still open today and today's events,
// sorted by time. Notes are listed whatever their creation date.
func TodayItems(notes []core.Note, reminders []core.Reminder, events []core.Event, now time.Time) []TodayItem {
	items := make([]TodayItem, 0, len(notes))
	for _, n := range notes {
		items = append(items, TodayItem{Kind: KindNote, ID: n.ID, Title: n.Title, Time: n.CreatedAt})
	}
	for _, r := range reminders {
		if !r.IsCompleted && SameDay(now, r.Time) {
			items = append(items, TodayItem{Kind: KindReminder, ID: r.ID, Title: r.Title, Time: r.Time})
		}
	}
	for _, e := range events {
		if SameDay(now, e.Date) {
			items = append(items, TodayItem{Kind: KindEvent, ID: e.ID, Title: e.Title, Time: e.Date})
		}
	}
	slices.SortStableFunc(items, func(a, b TodayItem) int { return a.Time.Compare(b.Time) })
	return items
}

// TodayCompletedCount counts the reminders due today that are already completed.
func TodayCompletedCount(reminders []core.Reminder, now time.Time) int {
	count := 0
	for _, r := range reminders {
		if r.IsCompleted && SameDay(now, r.Time) {
			count++
		}
	}
	return count
}

// NoteOrder selects how SortNotes orders notes.
type NoteOrder string

const (
	OrderNewest    NoteOrder = "newest"
	OrderOldest    NoteOrder = "oldest"
	OrderFavorites NoteOrder = "favorites"
)

// ParseNoteOrder parses an order name; the empty string means newest.
func ParseNoteOrder(s string) (NoteOrder, error) {
	switch o := NoteOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return OrderNewest, nil
	case OrderNewest, OrderOldest, OrderFavorites:
		return o, nil
	default:
		return "", fmt.Errorf("unknown note order %q (want newest, oldest or favorites)", s)
	}
}

// SortNotes orders a copy of notes and keeps those whose title contains search,
// ignoring case. The favorites order is a stable partition: favorites first, each side
// keeping its input order.
func SortNotes(notes []core.Note, order NoteOrder, search string) []core.Note {
	out := slices.Clone(notes)
	switch order {
	case OrderOldest:
		slices.SortStableFunc(out, func(a, b core.Note) int { return a.CreatedAt.Compare(b.CreatedAt) })
	case OrderFavorites:
		slices.SortStableFunc(out, func(a, b core.Note) int { return favoriteRank(a) - favoriteRank(b) })
	default:
		slices.SortStableFunc(out, func(a, b core.Note) int { return b.CreatedAt.Compare(a.CreatedAt) })
	}

	if search == "" {
		return out
	}
	needle := strings.ToLower(search)
	return slices.DeleteFunc(out, func(n core.Note) bool {
		return !strings.Contains(strings.ToLower(n.Title), needle)
	})
}

func favoriteRank(n core.Note) int {
	if n.IsFavorite {
		return 0
	}
	return 1
}

// ReminderGroup holds the reminders of one calendar day.
type ReminderGroup struct {
	Day       time.Time       `json:"day"`
	Reminders []core.Reminder `json:"reminders"`
}

// GroupReminders buckets reminders by calendar day in loc (time.Local when nil).
// Groups are ordered by day and each group by time.
func GroupReminders(reminders []core.Reminder, loc *time.Location) []ReminderGroup {
	if loc == nil {
		loc = time.Local
	}

	byDay := make(map[time.Time][]core.Reminder)
	for _, r := range reminders {
		day := StartOfDay(r.Time.In(loc))
		byDay[day] = append(byDay[day], r)
	}

	groups := make([]ReminderGroup, 0, len(byDay))
	for day, rs := range byDay {
		slices.SortStableFunc(rs, func(a, b core.Reminder) int { return a.Time.Compare(b.Time) })
		groups = append(groups, ReminderGroup{Day: day, Reminders: rs})
	}
	slices.SortFunc(groups, func(a, b ReminderGroup) int { return a.Day.Compare(b.Day) })
	return groups
}

// Segment is one slice of the collection pie chart. Angles are in degrees.
type Segment struct {
	Label string  `json:"label"`
	Count int     `json:"count"`
	Start float64 `json:"start"`
	Span  float64 `json:"span"`
}

// PieSegments lays out notes, reminders and events as consecutive slices from 0°.
// With nothing to show every span is 0.
func PieSegments(notes, reminders, events int) []Segment {
	total := max(notes+reminders+events, 1)

	counts := []struct {
		label string
		count int
	}{
		{"notes", notes},
		{"reminders", reminders},
		{"events", events},
	}

	segments := make([]Segment, 0, len(counts))
	start := 0.0
	for _, c := range counts {
		span := 360 * float64(c.count) / float64(total)
		segments = append(segments, Segment{Label: c.label, Count: c.count, Start: start, Span: span})
		start += span
	}
	return segments
}

// Share returns the segment's fraction of the full circle.
func (s Segment) Share() float64 {
	return s.Span / 360
}

// SortEvents returns the events ordered by date. Events on the same instant keep their
// insertion order.
func SortEvents(events []core.Event) []core.Event {
	out := slices.Clone(events)
	slices.SortStableFunc(out, func(a, b core.Event) int { return a.Date.Compare(b.Date) })
	return out
}

// EventsOn returns the events falling on day's calendar day, as seen from day's location,
// ordered by date.
func EventsOn(events []core.Event, day time.Time) []core.Event {
	var out []core.Event
	for _, e := range events {
		if SameDay(day, e.Date) {
			out = append(out, e)
		}
	}
	return SortEvents(out)
}
