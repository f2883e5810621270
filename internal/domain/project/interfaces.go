package project

import (
	"context"
	"time"

	"github.com/rpggio/project365/internal/domain/activity"
)

// Repository persists whole project snapshots. Save replaces the stored
// snapshot, tasks and weekly goals included.
type Repository interface {
	Create(ctx context.Context, proj *Project) error
	Get(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context) ([]Project, error)
	Save(ctx context.Context, proj *Project) error
	Delete(ctx context.Context, id string) error
}

// ActivityLogger records committed changes.
type ActivityLogger interface {
	Log(ctx context.Context, entry *activity.Entry) error
}

// Publisher fans committed snapshots out to observers.
type Publisher interface {
	ProjectUpdated(ctx context.Context, proj *Project) error
	ProjectDeleted(ctx context.Context, id string) error
}

// UserState is notified of user activity and project removal.
type UserState interface {
	RecordActivity(ctx context.Context, now time.Time) error
	ClearSelection(ctx context.Context, projectID string) error
}
