// Package calendar holds the date arithmetic shared by the task and week engines.
package calendar

import (
	"fmt"
	"time"
)

const (
	// Layout is the ISO calendar date layout used for every Date.
	Layout = "2006-01-02"

	day = 24 * time.Hour
)

// Date is a civil calendar date in ISO form (YYYY-MM-DD). The zero value means unset.
type Date string

// Parse validates an ISO date string.
func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return "", fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date(t.Format(Layout)), nil
}

// Of returns the civil date of t in its own location.
func Of(t time.Time) Date {
	return Date(t.Format(Layout))
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d == ""
}

// Time returns midnight UTC of the date. A Date that does not parse, the zero
// Date included, yields time.Time{} and so sorts before every real date. Build
// Dates with Parse or Of to rule that out.
func (d Date) Time() time.Time {
	t, err := time.Parse(Layout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays returns the date n days later (earlier when n is negative).
func (d Date) AddDays(n int) Date {
	return Of(d.Time().AddDate(0, 0, n))
}

// Before reports whether d falls strictly before other.
func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

func (d Date) String() string {
	return string(d)
}

// WeekStart returns the Sunday on or before t's calendar date.
// Day-of-month underflow rolls back into the previous month or year.
func WeekStart(t time.Time) Date {
	y, m, dd := t.Date()
	return Of(time.Date(y, m, dd-int(t.Weekday()), 0, 0, 0, 0, time.UTC))
}

// NextWeekStart returns the week start seven days after weekStart.
func NextWeekStart(weekStart Date) Date {
	return weekStart.AddDays(7)
}

// DaysBetween returns ceil((b - a) / 24h). Any partial day counts as a whole one.
func DaysBetween(a, b time.Time) int {
	diff := b.Sub(a)
	days := diff / day
	if diff%day > 0 {
		days++
	}
	return int(days)
}
