package project

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/project365/internal/domain/activity"
	"github.com/rpggio/project365/internal/domain/progress"
)

// ToggleWeeklyGoal flips the completion of one goal in the current week.
func (s *Service) ToggleWeeklyGoal(ctx context.Context, projectID, goalID string) (*Project, error) {
	return s.apply(ctx, projectID, func(p *Project, _ time.Time) (change, error) {
		p.Week = progress.ToggleGoal(p.Week, goalID)
		return change{kind: activity.TypeGoalToggled, summary: "toggled weekly goal " + goalID, goalID: goalID}, nil
	})
}

// SetWeeklyGoals replaces the current week's goals.
func (s *Service) SetWeeklyGoals(ctx context.Context, projectID string, texts []string) (*Project, error) {
	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, ErrInvalidInput
		}
	}
	return s.apply(ctx, projectID, func(p *Project, _ time.Time) (change, error) {
		p.Week = progress.ReplaceGoals(p.Week, texts, p.StartDate, s.newID)
		return change{kind: activity.TypeGoalsReplaced, summary: fmt.Sprintf("set %d weekly goals", len(texts))}, nil
	})
}

// AdvanceWeek closes the current week and banks the days left before the
// week boundary into the days-ahead accumulator.
func (s *Service) AdvanceWeek(ctx context.Context, projectID string) (*Project, error) {
	return s.apply(ctx, projectID, func(p *Project, now time.Time) (change, error) {
		before := p.Week.DaysAhead
		p.Week = progress.Advance(p.Week, p.StartDate, now)
		return change{
			kind:    activity.TypeWeekAdvanced,
			summary: fmt.Sprintf("advanced to week of %s (days ahead %+d)", p.Week.CurrentWeekStart, p.Week.DaysAhead-before),
		}, nil
	})
}

// WeekStatus summarizes the current week as of now.
func (s *Service) WeekStatus(ctx context.Context, projectID string) (progress.Summary, error) {
	proj, err := s.Get(ctx, projectID)
	if err != nil {
		return progress.Summary{}, err
	}
	return progress.Summarize(proj.Week, proj.StartDate, s.clock.Now()), nil
}
