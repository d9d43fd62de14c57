package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/aretw0/bubbly/pkg/core"
	"github.com/aretw0/bubbly/pkg/views"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	doneStyle    = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	todayStyle   = lipgloss.NewStyle().Bold(true).Reverse(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)

	sliceColors = []lipgloss.Color{"12", "214", "42"}
)

const (
	boxChecked   = "☑"
	boxUnchecked = "☐"
	star         = "★"
	timeLayout   = "Mon Jan 2 15:04"
)

// shortID is the prefix printed in lists; any unique prefix is accepted back.
func shortID(id fmt.Stringer) string {
	return id.String()[:8]
}

func success(w io.Writer, msg string) {
	fmt.Fprintln(w, successStyle.Render("✔ "+msg))
}

func panel(w io.Writer, lines []string) {
	fmt.Fprintln(w, panelStyle.Render(strings.Join(lines, "\n")))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderNotes(w io.Writer, notes []core.Note) {
	if len(notes) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no notes"))
		return
	}
	for _, n := range notes {
		mark := " "
		if n.IsFavorite {
			mark = pendingStyle.Render(star)
		}
		fmt.Fprintf(w, "%s %s %s  %s\n", mutedStyle.Render(shortID(n.ID)), mark, titleStyle.Render(n.Title), mutedStyle.Render(n.CreatedAt.Local().Format(timeLayout)))
		if n.Content != "" {
			fmt.Fprintf(w, "           %s\n", n.Content)
		}
	}
}

func renderReminder(r core.Reminder) string {
	box, title := boxUnchecked, r.Title
	if r.IsCompleted {
		box, title = boxChecked, doneStyle.Render(r.Title)
	}
	repeat := ""
	if r.IsRepeating {
		repeat = mutedStyle.Render(" ↻")
	}
	return fmt.Sprintf("%s %s %s %s%s", mutedStyle.Render(shortID(r.ID)), box, accentStyle.Render(r.Time.Local().Format("15:04")), title, repeat)
}

func renderReminderGroups(w io.Writer, groups []views.ReminderGroup) {
	if len(groups) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no reminders"))
		return
	}
	for _, g := range groups {
		fmt.Fprintln(w, titleStyle.Render(g.Day.Format("Monday, January 2")))
		for _, r := range g.Reminders {
			fmt.Fprintln(w, "  "+renderReminder(r))
		}
	}
}

func renderEvents(w io.Writer, events []core.Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no events"))
		return
	}
	for _, e := range events {
		fmt.Fprintf(w, "%s %s %s\n", mutedStyle.Render(shortID(e.ID)), accentStyle.Render(e.Date.Local().Format(timeLayout)), e.Title)
	}
}

func renderToday(w io.Writer, items []views.TodayItem, completed int, now time.Time) {
	lines := []string{
		titleStyle.Render("Today, " + now.Format("Monday January 2")),
		successStyle.Render(fmt.Sprintf("%d reminder(s) completed", completed)),
		"",
	}
	if len(items) == 0 {
		lines = append(lines, mutedStyle.Render("nothing planned"))
	}
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s %-8s %s", accentStyle.Render(item.Time.Local().Format("15:04")), item.Kind, item.Title))
	}
	panel(w, lines)
}

// renderCalendar draws the month grid; days with events are marked with a dot.
func renderCalendar(w io.Writer, month time.Time, first time.Weekday, events []core.Event, today time.Time) {
	cell := lipgloss.NewStyle().Width(4).Align(lipgloss.Right)

	var header []string
	for _, wd := range views.Weekdays(first) {
		header = append(header, cell.Render(wd.String()[:2]))
	}
	lines := []string{
		titleStyle.Render(month.Format("January 2006")),
		mutedStyle.Render(strings.Join(header, "")),
	}

	for _, week := range views.Weeks(views.CalendarDays(month, first)) {
		var row []string
		for _, d := range week {
			label := fmt.Sprintf("%d", d.Date.Day())
			if len(views.EventsOn(events, d.Date)) > 0 {
				label = "•" + label
			}
			switch {
			case !d.InMonth:
				label = mutedStyle.Render(label)
			case views.SameDay(today, d.Date):
				label = todayStyle.Render(label)
			}
			row = append(row, cell.Render(label))
		}
		lines = append(lines, strings.Join(row, ""))
	}
	panel(w, lines)
}

// renderChart prints one bar per segment, scaled to width.
func renderChart(w io.Writer, segments []views.Segment, width int) {
	lines := []string{titleStyle.Render("Collections")}
	for i, s := range segments {
		filled := int(s.Share()*float64(width) + 0.5)
		bar := lipgloss.NewStyle().Foreground(sliceColors[i%len(sliceColors)]).Render(strings.Repeat("█", filled))
		lines = append(lines, fmt.Sprintf("%-9s %s%s %3.0f%% (%d)", s.Label, bar, strings.Repeat("░", width-filled), s.Share()*100, s.Count))
	}
	panel(w, lines)
}
