package project

import (
	"github.com/google/uuid"
	"github.com/rpggio/project365/internal/clock"
)

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source. Defaults to the system clock.
func WithClock(c clock.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithIDSource sets the generator used for project, task and goal ids.
// Defaults to random UUIDs.
func WithIDSource(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

func WithActivityLogger(l ActivityLogger) Option {
	return func(s *Service) { s.activity = l }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithUserState(u UserState) Option {
	return func(s *Service) { s.users = u }
}

func defaultOptions(s *Service) {
	s.clock = clock.System{}
	s.newID = uuid.NewString
}
