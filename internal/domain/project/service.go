// Package project holds the project aggregate and the service that serializes
// every change to it.
package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rpggio/project365/internal/clock"
	"github.com/rpggio/project365/internal/domain/activity"
	"github.com/rpggio/project365/internal/domain/calendar"
	"github.com/rpggio/project365/internal/repository"
)

// Service handles project operations. Mutations are applied one at a time:
// load, run a pure change, commit the full snapshot, then notify.
type Service struct {
	mu        sync.Mutex
	repo      Repository
	activity  ActivityLogger
	publisher Publisher
	users     UserState
	clock     clock.Clock
	newID     func() string
	logger    *slog.Logger
}

// NewService creates a new project service.
func NewService(repo Repository, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{repo: repo, logger: logger}
	defaultOptions(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRequest defines project creation inputs.
type CreateRequest struct {
	Name         string
	Description  string
	LongTermGoal string
	Goals        []string
	Timeframe    int
	StartDate    time.Time
	TargetDate   *time.Time
	Status       Status
}

// UpdateRequest lists the editable project fields. Schedule state (days
// ahead, week boundaries) is not editable here.
type UpdateRequest struct {
	Name         *string
	Description  *string
	LongTermGoal *string
	Goals        *[]string
	Timeframe    *int
	StartDate    *time.Time
	TargetDate   *time.Time
	Status       *Status
}

// change describes a committed mutation for the activity log.
type change struct {
	kind    activity.Type
	summary string
	taskID  string
	goalID  string
}

// Create creates a new project.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Project, error) {
	if strings.TrimSpace(req.Name) == "" || req.Timeframe < 0 {
		return nil, ErrInvalidInput
	}
	status := req.Status
	if status == "" {
		status = StatusPlanning
	}
	if !status.Valid() {
		return nil, ErrInvalidInput
	}

	now := s.clock.Now()
	start := req.StartDate
	if start.IsZero() {
		start = now
	}
	target := start.AddDate(0, 0, req.Timeframe)
	if req.TargetDate != nil {
		target = *req.TargetDate
	}

	proj := &Project{
		ID:           s.newID(),
		Name:         req.Name,
		Description:  req.Description,
		LongTermGoal: req.LongTermGoal,
		Goals:        slices.Clone(req.Goals),
		Timeframe:    req.Timeframe,
		StartDate:    start,
		TargetDate:   target,
		Status:       status,
		CreatedAt:    now,
	}
	proj.Week.CurrentWeekStart = calendar.WeekStart(start)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.Create(ctx, proj); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}
	s.committed(ctx, proj, change{kind: activity.TypeProjectCreated, summary: fmt.Sprintf("created project %q", proj.Name)}, now)
	return proj, nil
}

// Get fetches a project by ID.
func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	proj, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return proj, nil
}

// List returns project summaries.
func (s *Service) List(ctx context.Context) ([]Summary, error) {
	projects, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	now := s.clock.Now()
	out := make([]Summary, 0, len(projects))
	for i := range projects {
		out = append(out, Summarize(&projects[i], now))
	}
	return out, nil
}

// Update edits project metadata.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Project, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, ErrInvalidInput
	}
	if req.Timeframe != nil && *req.Timeframe < 0 {
		return nil, ErrInvalidInput
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, ErrInvalidInput
	}

	return s.apply(ctx, id, func(p *Project, _ time.Time) (change, error) {
		if req.Name != nil {
			p.Name = *req.Name
		}
		if req.Description != nil {
			p.Description = *req.Description
		}
		if req.LongTermGoal != nil {
			p.LongTermGoal = *req.LongTermGoal
		}
		if req.Goals != nil {
			p.Goals = slices.Clone(*req.Goals)
		}
		if req.Timeframe != nil {
			p.Timeframe = *req.Timeframe
		}
		if req.StartDate != nil {
			p.StartDate = *req.StartDate
		}
		if req.TargetDate != nil {
			p.TargetDate = *req.TargetDate
		}
		if req.Status != nil {
			p.Status = *req.Status
		}
		return change{kind: activity.TypeProjectUpdated, summary: fmt.Sprintf("updated project %q", p.Name)}, nil
	})
}

// Delete removes a project and clears it from the user's selection.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("deleting project: %w", err)
	}

	if s.users != nil {
		if err := s.users.ClearSelection(ctx, id); err != nil {
			s.logger.Warn("clearing selected project failed", "project_id", id, "error", err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.ProjectDeleted(ctx, id); err != nil {
			s.logger.Warn("publishing project deletion failed", "project_id", id, "error", err)
		}
	}
	s.logger.Info("project deleted", "project_id", id)
	return nil
}

// apply runs fn against a copy of the stored snapshot and commits the result.
// A change that leaves the snapshot untouched commits nothing and returns the
// stored snapshot.
func (s *Service) apply(ctx context.Context, id string, fn func(p *Project, now time.Time) (change, error)) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	next := cur.Clone()
	c, err := fn(next, now)
	if err != nil {
		return nil, err
	}
	if reflect.DeepEqual(cur, next) {
		return cur, nil
	}

	next.Tick = cur.Tick + 1
	if err := s.repo.Save(ctx, next); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("saving project: %w", err)
	}
	s.committed(ctx, next, c, now)
	return next, nil
}

// committed runs the post-commit notifications. The snapshot is already
// durable, so failures here are logged and not returned.
func (s *Service) committed(ctx context.Context, p *Project, c change, now time.Time) {
	s.logger.Debug("project committed", "project_id", p.ID, "tick", p.Tick, "change", c.kind)

	if s.activity != nil {
		entry := &activity.Entry{
			ProjectID: p.ID,
			Type:      c.kind,
			Summary:   c.summary,
			CreatedAt: now,
			Tick:      p.Tick,
		}
		if c.taskID != "" {
			entry.TaskID = &c.taskID
		}
		if c.goalID != "" {
			entry.GoalID = &c.goalID
		}
		if err := s.activity.Log(ctx, entry); err != nil {
			s.logger.Warn("logging activity failed", "project_id", p.ID, "error", err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.ProjectUpdated(ctx, p); err != nil {
			s.logger.Warn("publishing project failed", "project_id", p.ID, "tick", p.Tick, "error", err)
		}
	}
	if s.users != nil {
		if err := s.users.RecordActivity(ctx, now); err != nil {
			s.logger.Warn("recording streak failed", "error", err)
		}
	}
}
