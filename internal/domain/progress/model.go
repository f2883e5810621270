package progress

import "github.com/rpggio/project365/internal/domain/calendar"

// Goal is a milestone scoped to one week.
type Goal struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	Completed bool          `json:"completed"`
	WeekStart calendar.Date `json:"week_start_date"`
}

// Week is the schedule state a project carries for its current week.
// DaysAhead is a signed accumulator: positive when ahead, negative when behind.
type Week struct {
	CurrentWeekStart  calendar.Date `json:"current_week_start_date,omitempty"`
	DaysAhead         int           `json:"days_ahead"`
	LastWeekCompleted calendar.Date `json:"last_week_completed_date,omitempty"`
	Goals             []Goal        `json:"weekly_goals"`
}

// Summary is a read-only view of a week's progress.
type Summary struct {
	WeekStart     calendar.Date `json:"week_start_date"`
	NextWeekStart calendar.Date `json:"next_week_start_date"`
	Completed     int           `json:"completed"`
	Total         int           `json:"total"`
	AllCompleted  bool          `json:"all_completed"`
	DaysAhead     int           `json:"days_ahead"`
	RawDaysAhead  int           `json:"raw_days_ahead"`
}
