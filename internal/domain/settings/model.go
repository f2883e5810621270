package settings

import "github.com/rpggio/project365/internal/domain/calendar"

// Settings is the single user's profile and usage streak.
type Settings struct {
	UserName           string        `json:"user_name,omitempty"`
	OnboardingComplete bool          `json:"onboarding_complete"`
	SelectedProjectID  string        `json:"selected_project_id,omitempty"`
	StreakDays         int           `json:"streak_days"`
	LastActiveDate     calendar.Date `json:"last_active_date,omitempty"`
}

// Patch carries optional changes; nil fields are left alone. An empty
// SelectedProjectID clears the selection.
type Patch struct {
	UserName           *string `json:"user_name,omitempty"`
	OnboardingComplete *bool   `json:"onboarding_complete,omitempty"`
	SelectedProjectID  *string `json:"selected_project_id,omitempty"`
}

// Touch applies a visit on today to the streak: repeat visits on the same day
// change nothing, a visit the day after the last one extends the streak, and
// anything else restarts it at one.
func Touch(s Settings, today calendar.Date) Settings {
	switch s.LastActiveDate {
	case today:
		return s
	case today.AddDays(-1):
		s.StreakDays++
	default:
		s.StreakDays = 1
	}
	s.LastActiveDate = today
	return s
}
