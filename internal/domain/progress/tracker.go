// Package progress tracks weekly goal completion and the days-ahead signal.
package progress

import (
	"slices"
	"time"

	"github.com/rpggio/project365/internal/domain/calendar"
)

// Start returns the current week start, falling back to the week containing projectStart.
func (w Week) Start(projectStart time.Time) calendar.Date {
	if !w.CurrentWeekStart.IsZero() {
		return w.CurrentWeekStart
	}
	return calendar.WeekStart(projectStart)
}

// ToggleGoal flips one goal's completion. It never touches DaysAhead.
func ToggleGoal(w Week, goalID string) Week {
	out := w
	out.Goals = slices.Clone(w.Goals)
	for i := range out.Goals {
		if out.Goals[i].ID == goalID {
			out.Goals[i].Completed = !out.Goals[i].Completed
			break
		}
	}
	return out
}

// Advance moves the project into the next week. The days left until the
// natural week boundary are banked into DaysAhead; advancing late banks a
// negative amount. Goal texts carry forward with completion cleared.
func Advance(w Week, projectStart, today time.Time) Week {
	next := calendar.NextWeekStart(w.Start(projectStart))

	out := w
	out.DaysAhead += calendar.DaysBetween(today, next.Time())
	out.LastWeekCompleted = calendar.Of(today)
	out.CurrentWeekStart = next
	out.Goals = slices.Clone(w.Goals)
	for i := range out.Goals {
		out.Goals[i].Completed = false
		out.Goals[i].WeekStart = next
	}
	return out
}

// DaysAhead returns the decayed lead for display. Before the natural boundary
// the lead can never exceed the days actually remaining; after it the lead
// erodes one day per elapsed day. Both branches floor at zero. Until a week
// has been completed early the raw accumulator is returned as is.
func DaysAhead(w Week, projectStart, today time.Time) int {
	base := w.DaysAhead
	if w.LastWeekCompleted.IsZero() {
		return base
	}

	next := calendar.NextWeekStart(w.Start(projectStart)).Time()
	if today.Before(next) {
		return max(0, min(base, calendar.DaysBetween(today, next)))
	}
	return max(0, base-calendar.DaysBetween(next, today))
}

// ReplaceGoals installs a fresh goal set for the current week.
func ReplaceGoals(w Week, texts []string, projectStart time.Time, newID func() string) Week {
	start := w.Start(projectStart)
	out := w
	out.CurrentWeekStart = start
	out.Goals = make([]Goal, 0, len(texts))
	for _, text := range texts {
		out.Goals = append(out.Goals, Goal{ID: newID(), Text: text, WeekStart: start})
	}
	return out
}

// Summarize reports completion counts and both days-ahead readings.
func Summarize(w Week, projectStart, today time.Time) Summary {
	start := w.Start(projectStart)
	completed := 0
	for _, g := range w.Goals {
		if g.Completed {
			completed++
		}
	}
	return Summary{
		WeekStart:     start,
		NextWeekStart: calendar.NextWeekStart(start),
		Completed:     completed,
		Total:         len(w.Goals),
		AllCompleted:  len(w.Goals) > 0 && completed == len(w.Goals),
		DaysAhead:     DaysAhead(w, projectStart, today),
		RawDaysAhead:  w.DaysAhead,
	}
}

// FindGoal reports whether the week holds a goal with the given id.
func FindGoal(w Week, goalID string) (Goal, bool) {
	i := slices.IndexFunc(w.Goals, func(g Goal) bool { return g.ID == goalID })
	if i < 0 {
		return Goal{}, false
	}
	return w.Goals[i], true
}
