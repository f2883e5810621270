package task

import "github.com/rpggio/project365/internal/domain/calendar"

// Status represents where a task sits in its lifecycle.
type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
	StatusMissed  Status = "missed"
)

// Effort is an informational size estimate. It has no ordering effect.
type Effort string

const (
	EffortSmall  Effort = "S"
	EffortMedium Effort = "M"
	EffortLarge  Effort = "L"
)

// DefaultImportance is used when a task is created without an importance.
const DefaultImportance = 3

// Task is a single unit of work scheduled for one calendar date.
type Task struct {
	ID          string        `json:"id"`
	ProjectID   string        `json:"project_id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Date        calendar.Date `json:"date"`
	Status      Status        `json:"status"`
	Effort      Effort        `json:"effort_estimate,omitempty"`
	Importance  int           `json:"importance"`
	Order       int64         `json:"order"`
}

// IsDone reports whether the task belongs to the completed partition.
// Missed tasks stay in the pending partition.
func (t Task) IsDone() bool {
	return t.Status == StatusDone
}

// Draft carries the caller-supplied fields of a new task.
type Draft struct {
	Title       string
	Description string
	Date        calendar.Date
	Importance  *int
	Effort      Effort
}

// New builds a pending task with every default filled in. Order is assigned by Insert.
func New(id, projectID string, d Draft) Task {
	importance := DefaultImportance
	if d.Importance != nil {
		importance = *d.Importance
	}
	return Task{
		ID:          id,
		ProjectID:   projectID,
		Title:       d.Title,
		Description: d.Description,
		Date:        d.Date,
		Status:      StatusPending,
		Effort:      d.Effort,
		Importance:  importance,
	}
}

// Patch lists the fields of a partial update. Nil fields are left alone.
type Patch struct {
	Title       *string
	Description *string
	Date        *calendar.Date
	Status      *Status
	Effort      *Effort
	Importance  *int
}
