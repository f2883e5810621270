package activity

import "time"

// Type names the kind of committed change an entry records.
type Type string

const (
	TypeProjectCreated Type = "project_created"
	TypeProjectUpdated Type = "project_updated"
	TypeProjectDeleted Type = "project_deleted"
	TypeTaskAdded      Type = "task_added"
	TypeTaskUpdated    Type = "task_updated"
	TypeTaskDeleted    Type = "task_deleted"
	TypeTaskToggled    Type = "task_toggled"
	TypeTasksReordered Type = "tasks_reordered"
	TypeTasksMissed    Type = "tasks_missed"
	TypeGoalToggled    Type = "goal_toggled"
	TypeGoalsReplaced  Type = "goals_replaced"
	TypeWeekAdvanced   Type = "week_advanced"
)

// Entry is one line of the activity log. Tick is the project tick the
// change was committed at.
type Entry struct {
	ID        int64     `json:"id"`
	ProjectID string    `json:"project_id"`
	TaskID    *string   `json:"task_id,omitempty"`
	GoalID    *string   `json:"goal_id,omitempty"`
	Type      Type      `json:"type"`
	Summary   string    `json:"summary"`
	Details   string    `json:"details,omitempty"` // JSON string
	CreatedAt time.Time `json:"created_at"`
	Tick      int64     `json:"tick"`
}

// ListOptions filters activity listings.
type ListOptions struct {
	ProjectID string
	TaskID    *string
	Type      *Type
	Limit     int
	Offset    int
}
