package views

import "time"

// Day is one cell of the month grid.
type Day struct {
	Date    time.Time `json:"date"`
	InMonth bool      `json:"inMonth"`
}

// CalendarDays returns the cells of ref's month laid out in rows of seven starting on
// firstWeekday. The first row is padded with the closing days of the previous month; the
// grid stops at the month's last day.
func CalendarDays(ref time.Time, firstWeekday time.Weekday) []Day {
	year, month, _ := ref.Date()
	loc := ref.Location()

	firstDay := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	daysInMonth := firstDay.AddDate(0, 1, -1).Day()
	lead := (int(firstDay.Weekday()) - int(firstWeekday) + 7) % 7

	days := make([]Day, 0, lead+daysInMonth)
	for i := lead; i > 0; i-- {
		days = append(days, Day{Date: firstDay.AddDate(0, 0, -i)})
	}
	for d := 0; d < daysInMonth; d++ {
		days = append(days, Day{Date: firstDay.AddDate(0, 0, d), InMonth: true})
	}
	return days
}

// Weekdays returns the seven column headers starting on firstWeekday.
func Weekdays(firstWeekday time.Weekday) []time.Weekday {
	out := make([]time.Weekday, 7)
	for i := range out {
		out[i] = (firstWeekday + time.Weekday(i)) % 7
	}
	return out
}

// Weeks splits grid cells into rows of seven. The last row may be shorter.
func Weeks(days []Day) [][]Day {
	var rows [][]Day
	for len(days) > 0 {
		n := min(7, len(days))
		rows = append(rows, days[:n])
		days = days[n:]
	}
	return rows
}
