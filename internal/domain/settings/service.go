// Package settings owns the user profile and the daily usage streak.
package settings

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rpggio/project365/internal/domain/calendar"
)

// Service handles settings operations.
type Service struct {
	mu     sync.Mutex
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new settings service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger}
}

// Get returns the current settings.
func (s *Service) Get(ctx context.Context) (*Settings, error) {
	cur, err := s.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting settings: %w", err)
	}
	return cur, nil
}

// Update applies a patch and returns the stored result.
func (s *Service) Update(ctx context.Context, p Patch) (*Settings, error) {
	return s.modify(ctx, func(cur Settings) Settings {
		if p.UserName != nil {
			cur.UserName = *p.UserName
		}
		if p.OnboardingComplete != nil {
			cur.OnboardingComplete = *p.OnboardingComplete
		}
		if p.SelectedProjectID != nil {
			cur.SelectedProjectID = *p.SelectedProjectID
		}
		return cur
	})
}

// RecordActivity counts now towards the daily streak.
func (s *Service) RecordActivity(ctx context.Context, now time.Time) error {
	_, err := s.modify(ctx, func(cur Settings) Settings {
		return Touch(cur, calendar.Of(now))
	})
	return err
}

// ClearSelection drops the selected project if it is projectID.
func (s *Service) ClearSelection(ctx context.Context, projectID string) error {
	_, err := s.modify(ctx, func(cur Settings) Settings {
		if cur.SelectedProjectID == projectID {
			cur.SelectedProjectID = ""
		}
		return cur
	})
	return err
}

func (s *Service) modify(ctx context.Context, fn func(Settings) Settings) (*Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting settings: %w", err)
	}
	next := fn(*cur)
	if next == *cur {
		return cur, nil
	}
	if err := s.repo.Save(ctx, &next); err != nil {
		return nil, fmt.Errorf("saving settings: %w", err)
	}
	s.logger.Debug("settings saved", "streak_days", next.StreakDays)
	return &next, nil
}
