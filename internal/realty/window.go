package realty

import "time"

// Window is a half-open date range [From, To).
type Window struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

// TrailingDays is the window of the last n days up to and including today.
func TrailingDays(now time.Time, n int) Window {
	today := civilDate(now)
	return Window{From: today.AddDate(0, 0, -n), To: today.AddDate(0, 0, 1)}
}

// TrailingMonths is the window of the last n calendar months up to and
// including today.
func TrailingMonths(now time.Time, n int) Window {
	today := civilDate(now)
	return Window{From: AddMonths(today, -n), To: today.AddDate(0, 0, 1)}
}

// AddMonths shifts a date by n months, clamping the day to the last day of
// the target month (Aug 31 - 6 months = Feb 28), as PostgreSQL interval
// arithmetic does. time.AddDate would normalise into the following month.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	return time.Date(first.Year(), first.Month(), min(d, last),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// CalendarYear is January 1 through December 31 of year.
func CalendarYear(year int) Window {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return Window{From: from, To: from.AddDate(1, 0, 0)}
}
