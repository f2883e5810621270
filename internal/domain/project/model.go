package project

import (
	"slices"
	"time"

	"github.com/rpggio/project365/internal/domain/progress"
	"github.com/rpggio/project365/internal/domain/task"
)

// Status is the lifecycle stage of a project.
type Status string

const (
	StatusPlanning  Status = "planning"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPlanning, StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Project is the full snapshot persisted and published on every commit.
// Tick increases by one with each committed change.
type Project struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	LongTermGoal string        `json:"long_term_goal,omitempty"`
	Goals        []string      `json:"goals"`
	Timeframe    int           `json:"timeframe_days"`
	StartDate    time.Time     `json:"start_date"`
	TargetDate   time.Time     `json:"target_date"`
	Status       Status        `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	Tick         int64         `json:"tick"`
	Week         progress.Week `json:"week"`
	Tasks        []task.Task   `json:"tasks"`
}

// Clone returns a deep copy.
func (p *Project) Clone() *Project {
	out := *p
	out.Goals = slices.Clone(p.Goals)
	out.Week.Goals = slices.Clone(p.Week.Goals)
	out.Tasks = slices.Clone(p.Tasks)
	return &out
}

// Summary is a lightweight representation for listing.
type Summary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Status     Status    `json:"status"`
	Tick       int64     `json:"tick"`
	TaskCount  int       `json:"task_count"`
	DoneTasks  int       `json:"done_tasks"`
	DaysAhead  int       `json:"days_ahead"`
	TargetDate time.Time `json:"target_date"`
	CreatedAt  time.Time `json:"created_at"`
}

// Summarize builds the listing view of p as of now.
func Summarize(p *Project, now time.Time) Summary {
	done := 0
	for _, t := range p.Tasks {
		if t.IsDone() {
			done++
		}
	}
	return Summary{
		ID:         p.ID,
		Name:       p.Name,
		Status:     p.Status,
		Tick:       p.Tick,
		TaskCount:  len(p.Tasks),
		DoneTasks:  done,
		DaysAhead:  progress.DaysAhead(p.Week, p.StartDate, now),
		TargetDate: p.TargetDate,
		CreatedAt:  p.CreatedAt,
	}
}
