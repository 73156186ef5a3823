// Package week centralizes the Monday-start week window computation shared
// by the aggregation engine and the weekly closure manager, so the boundary
// definition cannot drift between the two.
package week

import (
	"time"

	"github.com/turmeiro/boxtally/internal/errors"
)

// DateLayout is the calendar-date format used by all records.
const DateLayout = "2006-01-02"

// Window is a Monday..Sunday calendar week. Start doubles as the natural key
// of the week's closure record.
type Window struct {
	Start string // Monday, YYYY-MM-DD
	End   string // Sunday, YYYY-MM-DD
}

// ID returns the closure key for the window.
func (w Window) ID() string {
	return w.Start
}

// Contains reports whether the date falls inside the window. Dates compare
// lexicographically in this layout.
func (w Window) Contains(date string) bool {
	return date >= w.Start && date <= w.End
}

// Of returns the week window containing t.
func Of(t time.Time) Window {
	// time.Weekday numbers Sunday as 0; shift so Monday is day 0.
	offset := (int(t.Weekday()) + 6) % 7
	monday := t.AddDate(0, 0, -offset)
	sunday := monday.AddDate(0, 0, 6)
	return Window{
		Start: monday.Format(DateLayout),
		End:   sunday.Format(DateLayout),
	}
}

// OfDate returns the week window containing the given calendar date.
func OfDate(date string) (Window, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return Window{}, errors.ValidationField("date", "must be YYYY-MM-DD")
	}
	return Of(t), nil
}

// Previous returns the window immediately before w.
func (w Window) Previous() Window {
	t, _ := time.Parse(DateLayout, w.Start)
	return Of(t.AddDate(0, 0, -7))
}

// Next returns the window immediately after w.
func (w Window) Next() Window {
	t, _ := time.Parse(DateLayout, w.Start)
	return Of(t.AddDate(0, 0, 7))
}

// Weekday returns the Portuguese weekday name for a date inside reports
// ("segunda-feira".."domingo"). Unparseable dates yield an empty string.
func Weekday(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return ""
	}
	return weekdayNames[t.Weekday()]
}

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "segunda-feira",
	time.Tuesday:   "terça-feira",
	time.Wednesday: "quarta-feira",
	time.Thursday:  "quinta-feira",
	time.Friday:    "sexta-feira",
	time.Saturday:  "sábado",
	time.Sunday:    "domingo",
}
