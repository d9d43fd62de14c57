package mcp

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/bubbly/pkg/core"
	"github.com/aretw0/bubbly/pkg/store"
	"github.com/aretw0/bubbly/pkg/views"
)

// Handlers implements the tool handlers over one store.
type Handlers struct {
	store        *store.Store
	firstWeekday time.Weekday
}

// NewHandlers creates the tool handlers. firstWeekday lays out calendar rows.
func NewHandlers(st *store.Store, firstWeekday time.Weekday) *Handlers {
	return &Handlers{store: st, firstWeekday: firstWeekday}
}

// ToolNames lists every tool RegisterTools adds, in registration order.
var ToolNames = []string{
	"ping",
	"add_note", "list_notes", "toggle_favorite",
	"add_reminder", "list_reminders", "toggle_reminder", "snooze_reminder", "delete_reminder",
	"add_event", "list_events",
	"today", "calendar", "chart",
	"get_settings", "update_settings",
}

// RegisterTools adds every bubbly tool to s.
func RegisterTools(s *server.MCPServer, h *Handlers) {
	s.AddTool(mcp.NewTool("ping",
		mcp.WithDescription("Responds with 'pong' to check if the Bubbly MCP server is alive."),
	), h.Ping)

	s.AddTool(mcp.NewTool("add_note",
		mcp.WithDescription("Creates a note."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Title of the note.")),
		mcp.WithString("content", mcp.Description("Optional body of the note.")),
		mcp.WithBoolean("favorite", mcp.Description("Mark the note as favorite.")),
	), h.AddNote)
	s.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("Lists notes. Order is one of newest, oldest, favorites; search filters titles."),
		mcp.WithString("order", mcp.Description("newest (default), oldest or favorites.")),
		mcp.WithString("search", mcp.Description("Case-insensitive text to look for in titles.")),
	), h.ListNotes)
	s.AddTool(mcp.NewTool("toggle_favorite",
		mcp.WithDescription("Flips the favorite flag of a note."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note ID or a unique prefix of it.")),
	), h.ToggleFavorite)

	s.AddTool(mcp.NewTool("add_reminder",
		mcp.WithDescription("Creates a reminder."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Title of the reminder.")),
		mcp.WithString("time", mcp.Required(), mcp.Description("When: RFC 3339, 'YYYY-MM-DD HH:MM', 'HH:MM' (today) or '+30m'.")),
		mcp.WithBoolean("repeating", mcp.Description("Whether the reminder repeats.")),
	), h.AddReminder)
	s.AddTool(mcp.NewTool("list_reminders",
		mcp.WithDescription("Lists reminders grouped by day."),
	), h.ListReminders)
	s.AddTool(mcp.NewTool("toggle_reminder",
		mcp.WithDescription("Flips the completion flag of a reminder."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID or a unique prefix of it.")),
	), h.ToggleReminder)
	s.AddTool(mcp.NewTool("snooze_reminder",
		mcp.WithDescription("Moves a reminder later by a number of minutes."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID or a unique prefix of it.")),
		mcp.WithNumber("minutes", mcp.Description("Positive offset in minutes, default 15.")),
	), h.SnoozeReminder)
	s.AddTool(mcp.NewTool("delete_reminder",
		mcp.WithDescription("Deletes a reminder."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID or a unique prefix of it.")),
	), h.DeleteReminder)

	s.AddTool(mcp.NewTool("add_event",
		mcp.WithDescription("Creates a calendar event."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Title of the event.")),
		mcp.WithString("date", mcp.Required(), mcp.Description("When: RFC 3339, 'YYYY-MM-DD' or 'YYYY-MM-DD HH:MM'.")),
	), h.AddEvent)
	s.AddTool(mcp.NewTool("list_events",
		mcp.WithDescription("Lists events by date."),
	), h.ListEvents)

	s.AddTool(mcp.NewTool("today",
		mcp.WithDescription("Returns today's items (notes, open reminders due today, today's events) and the count of reminders completed today."),
	), h.Today)
	s.AddTool(mcp.NewTool("calendar",
		mcp.WithDescription("Returns the month grid with the events of each day."),
		mcp.WithString("month", mcp.Description("Month as YYYY-MM, default the current month.")),
	), h.Calendar)
	s.AddTool(mcp.NewTool("chart",
		mcp.WithDescription("Returns the pie chart segments of notes, reminders and events."),
	), h.Chart)

	s.AddTool(mcp.NewTool("get_settings",
		mcp.WithDescription("Returns the settings."),
	), h.GetSettings)
	s.AddTool(mcp.NewTool("update_settings",
		mcp.WithDescription("Changes the settings. Omitted fields are left untouched."),
		mcp.WithBoolean("animations", mcp.Description("Enable animations.")),
		mcp.WithBoolean("notifications", mcp.Description("Enable notifications.")),
	), h.UpdateSettings)
}

// Ping answers "pong".
func (h *Handlers) Ping(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("pong"), nil
}

// AddNote handles add_note.
func (h *Handlers) AddNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, errResult := requiredString(request, "title")
	if errResult != nil {
		return errResult, nil
	}
	content, _ := stringArg(request, "content")
	favorite, _ := boolArg(request, "favorite")

	note, err := h.store.AddNote(core.Note{Title: title, Content: content, IsFavorite: favorite})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create note: %v", err)), nil
	}
	return jsonResult(note)
}

// ListNotes handles list_notes.
func (h *Handlers) ListNotes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	orderName, _ := stringArg(request, "order")
	order, err := views.ParseNoteOrder(orderName)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	search, _ := stringArg(request, "search")
	return jsonResult(views.SortNotes(h.store.Notes(), order, search))
}

// ToggleFavorite handles toggle_favorite.
func (h *Handlers) ToggleFavorite(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := h.resolve(request, core.CollectionNotes)
	if errResult != nil {
		return errResult, nil
	}
	note, ok := h.store.ToggleFavorite(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("Note '%s' not found.", id)), nil
	}
	return jsonResult(note)
}

// AddReminder handles add_reminder.
func (h *Handlers) AddReminder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, errResult := requiredString(request, "title")
	if errResult != nil {
		return errResult, nil
	}
	when, errResult := requiredString(request, "time")
	if errResult != nil {
		return errResult, nil
	}
	at, err := views.ParseTime(when, h.store.Now())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	repeating, _ := boolArg(request, "repeating")

	reminder, err := h.store.AddReminder(core.Reminder{Title: title, Time: at, IsRepeating: repeating})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create reminder: %v", err)), nil
	}
	return jsonResult(reminder)
}

// ListReminders handles list_reminders.
func (h *Handlers) ListReminders(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(views.GroupReminders(h.store.Reminders(), h.store.Now().Location()))
}

// ToggleReminder handles toggle_reminder.
func (h *Handlers) ToggleReminder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := h.resolve(request, core.CollectionReminders)
	if errResult != nil {
		return errResult, nil
	}
	reminder, ok := h.store.ToggleReminderCompletion(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("Reminder '%s' not found.", id)), nil
	}
	return jsonResult(reminder)
}

// SnoozeReminder handles snooze_reminder.
func (h *Handlers) SnoozeReminder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := h.resolve(request, core.CollectionReminders)
	if errResult != nil {
		return errResult, nil
	}
	minutes := 15
	if m, ok := numberArg(request, "minutes"); ok {
		if m != math.Trunc(m) || m < 1 || m > float64(store.MaxSnoozeMinutes) {
			return mcp.NewToolResultError(fmt.Sprintf("'minutes' must be a whole number between 1 and %d.", store.MaxSnoozeMinutes)), nil
		}
		minutes = int(m)
	}

	reminder, err := h.store.SnoozeReminder(id, minutes)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to snooze reminder: %v", err)), nil
	}
	return jsonResult(reminder)
}

// DeleteReminder handles delete_reminder.
func (h *Handlers) DeleteReminder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := h.resolve(request, core.CollectionReminders)
	if errResult != nil {
		return errResult, nil
	}
	if !h.store.DeleteReminder(id) {
		return mcp.NewToolResultText(fmt.Sprintf("Reminder '%s' not found, nothing to delete.", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reminder '%s' deleted.", id)), nil
}

// AddEvent handles add_event.
func (h *Handlers) AddEvent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, errResult := requiredString(request, "title")
	if errResult != nil {
		return errResult, nil
	}
	when, errResult := requiredString(request, "date")
	if errResult != nil {
		return errResult, nil
	}
	date, err := views.ParseTime(when, h.store.Now())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	event, err := h.store.AddEvent(core.Event{Title: title, Date: date})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create event: %v", err)), nil
	}
	return jsonResult(event)
}

// ListEvents handles list_events.
func (h *Handlers) ListEvents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(views.SortEvents(h.store.Events()))
}

type todayResult struct {
	Items     []views.TodayItem `json:"items"`
	Completed int               `json:"completedToday"`
}

// Today handles today.
func (h *Handlers) Today(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap := h.store.Snapshot()
	now := h.store.Now()
	return jsonResult(todayResult{
		Items:     views.TodayItems(snap.Notes, snap.Reminders, snap.Events, now),
		Completed: views.TodayCompletedCount(snap.Reminders, now),
	})
}

type calendarDay struct {
	views.Day
	Events []core.Event `json:"events,omitempty"`
}

type calendarResult struct {
	Month    string          `json:"month"`
	Weekdays []string        `json:"weekdays"`
	Weeks    [][]calendarDay `json:"weeks"`
}

// Calendar handles calendar.
func (h *Handlers) Calendar(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	monthArg, _ := stringArg(request, "month")
	month, err := views.ParseMonth(monthArg, h.store.Now())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	events := h.store.Events()
	result := calendarResult{Month: month.Format("2006-01")}
	for _, wd := range views.Weekdays(h.firstWeekday) {
		result.Weekdays = append(result.Weekdays, wd.String()[:3])
	}
	for _, week := range views.Weeks(views.CalendarDays(month, h.firstWeekday)) {
		row := make([]calendarDay, 0, len(week))
		for _, d := range week {
			row = append(row, calendarDay{Day: d, Events: views.EventsOn(events, d.Date)})
		}
		result.Weeks = append(result.Weeks, row)
	}
	return jsonResult(result)
}

// Chart handles chart.
func (h *Handlers) Chart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap := h.store.Snapshot()
	return jsonResult(views.PieSegments(len(snap.Notes), len(snap.Reminders), len(snap.Events)))
}

// GetSettings handles get_settings.
func (h *Handlers) GetSettings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.store.Settings())
}

// UpdateSettings handles update_settings.
func (h *Handlers) UpdateSettings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var patch core.SettingsPatch
	if v, ok := boolArg(request, "animations"); ok {
		patch.AnimationsEnabled = &v
	}
	if v, ok := boolArg(request, "notifications"); ok {
		patch.NotificationsEnabled = &v
	}

	settings, err := h.store.UpdateSettings(patch)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update settings: %v", err)), nil
	}
	return jsonResult(settings)
}

// resolve reads the "id" argument and resolves it within collection c.
func (h *Handlers) resolve(request mcp.CallToolRequest, c core.Collection) (id uuid.UUID, errResult *mcp.CallToolResult) {
	raw, errResult := requiredString(request, "id")
	if errResult != nil {
		return id, errResult
	}
	resolved, err := h.store.ResolveID(c, raw)
	switch {
	case errors.Is(err, core.ErrAmbiguousID):
		return id, mcp.NewToolResultError(fmt.Sprintf("ID prefix '%s' is ambiguous, use more characters.", raw))
	case err != nil:
		return id, mcp.NewToolResultError(fmt.Sprintf("No %s matches '%s'.", singular(c), raw))
	}
	return resolved, nil
}

func singular(c core.Collection) string {
	switch c {
	case core.CollectionNotes:
		return "note"
	case core.CollectionReminders:
		return "reminder"
	case core.CollectionEvents:
		return "event"
	default:
		return string(c)
	}
}
