package settings

import "context"

// Repository persists the settings document. Get returns zero-valued
// settings when nothing has been stored yet.
type Repository interface {
	Get(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, s *Settings) error
}
