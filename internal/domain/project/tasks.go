package project

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/project365/internal/domain/activity"
	"github.com/rpggio/project365/internal/domain/calendar"
	"github.com/rpggio/project365/internal/domain/task"
)

// AddTaskRequest describes a new daily task. A zero Date means today.
type AddTaskRequest struct {
	Title       string
	Description string
	Date        calendar.Date
	Importance  *int
	Effort      task.Effort
}

// AddTask inserts a task at its priority position among the day's pending
// tasks and returns the committed snapshot along with the stored task.
func (s *Service) AddTask(ctx context.Context, projectID string, req AddTaskRequest) (*Project, task.Task, error) {
	if strings.TrimSpace(req.Title) == "" || !validEffort(req.Effort) {
		return nil, task.Task{}, ErrInvalidInput
	}

	var added task.Task
	proj, err := s.apply(ctx, projectID, func(p *Project, now time.Time) (change, error) {
		draft := task.Draft{
			Title:       req.Title,
			Description: req.Description,
			Date:        req.Date,
			Importance:  req.Importance,
			Effort:      req.Effort,
		}
		if draft.Date.IsZero() {
			draft.Date = calendar.Of(now)
		}
		t := task.New(s.newID(), p.ID, draft)
		p.Tasks = task.Insert(p.Tasks, t, now)
		added, _ = task.Find(p.Tasks, t.ID)
		return change{
			kind:    activity.TypeTaskAdded,
			summary: fmt.Sprintf("added task %q for %s", t.Title, t.Date),
			taskID:  t.ID,
		}, nil
	})
	if err != nil {
		return nil, task.Task{}, err
	}
	return proj, added, nil
}

// UpdateTask applies a partial update to one task.
func (s *Service) UpdateTask(ctx context.Context, projectID, taskID string, patch task.Patch) (*Project, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, ErrInvalidInput
	}
	if patch.Effort != nil && !validEffort(*patch.Effort) {
		return nil, ErrInvalidInput
	}
	if patch.Status != nil && !validStatus(*patch.Status) {
		return nil, ErrInvalidInput
	}
	if patch.Date != nil && patch.Date.IsZero() {
		return nil, ErrInvalidInput
	}

	return s.apply(ctx, projectID, func(p *Project, _ time.Time) (change, error) {
		p.Tasks = task.Update(p.Tasks, taskID, patch)
		return change{kind: activity.TypeTaskUpdated, summary: "updated task " + taskID, taskID: taskID}, nil
	})
}

// DeleteTask removes one task.
func (s *Service) DeleteTask(ctx context.Context, projectID, taskID string) (*Project, error) {
	return s.apply(ctx, projectID, func(p *Project, _ time.Time) (change, error) {
		p.Tasks = task.Delete(p.Tasks, taskID)
		return change{kind: activity.TypeTaskDeleted, summary: "deleted task " + taskID, taskID: taskID}, nil
	})
}

// ToggleTask flips a task between pending and done.
func (s *Service) ToggleTask(ctx context.Context, projectID, taskID string) (*Project, error) {
	return s.apply(ctx, projectID, func(p *Project, _ time.Time) (change, error) {
		p.Tasks = task.Toggle(p.Tasks, taskID)
		summary := "reopened task " + taskID
		if t, ok := task.Find(p.Tasks, taskID); ok && t.IsDone() {
			summary = "completed task " + taskID
		}
		return change{kind: activity.TypeTaskToggled, summary: summary, taskID: taskID}, nil
	})
}

// ReorderTasks applies a user-chosen order to the named tasks.
func (s *Service) ReorderTasks(ctx context.Context, projectID string, taskIDs []string) (*Project, error) {
	return s.apply(ctx, projectID, func(p *Project, _ time.Time) (change, error) {
		p.Tasks = task.Reorder(p.Tasks, taskIDs)
		return change{kind: activity.TypeTasksReordered, summary: fmt.Sprintf("reordered %d tasks", len(taskIDs))}, nil
	})
}

// SweepMissed marks pending tasks dated before today as missed.
func (s *Service) SweepMissed(ctx context.Context, projectID string) (*Project, error) {
	return s.apply(ctx, projectID, func(p *Project, now time.Time) (change, error) {
		before := p.Tasks
		p.Tasks = task.MarkMissed(p.Tasks, calendar.Of(now))
		missed := 0
		for i := range p.Tasks {
			if p.Tasks[i].Status != before[i].Status {
				missed++
			}
		}
		return change{kind: activity.TypeTasksMissed, summary: fmt.Sprintf("marked %d tasks missed", missed)}, nil
	})
}

// ListTasks returns the tasks of one date in display order, or every task
// when date is zero.
func (s *Service) ListTasks(ctx context.Context, projectID string, date calendar.Date) ([]task.Task, error) {
	proj, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return task.Display(proj.Tasks, date), nil
}

func validEffort(e task.Effort) bool {
	switch e {
	case "", task.EffortSmall, task.EffortMedium, task.EffortLarge:
		return true
	}
	return false
}

func validStatus(st task.Status) bool {
	switch st {
	case task.StatusPending, task.StatusDone, task.StatusMissed:
		return true
	}
	return false
}
