package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rpggio/project365/internal/cache"
	"github.com/rpggio/project365/internal/domain/progress"
	"github.com/rpggio/project365/internal/domain/project"
	"github.com/rpggio/project365/internal/domain/task"
	"github.com/rpggio/project365/internal/repository"
	"github.com/rpggio/project365/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func snapshot(tick int64) *project.Project {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &project.Project{
		ID:         "p1",
		Name:       "Learn Go",
		Goals:      []string{"ship a service"},
		StartDate:  start,
		TargetDate: start.AddDate(0, 0, 30),
		Status:     project.StatusActive,
		CreatedAt:  start,
		Tick:       tick,
		Week:       progress.Week{CurrentWeekStart: "2023-12-31", Goals: []progress.Goal{{ID: "g1", Text: "read", WeekStart: "2023-12-31"}}},
		Tasks:      []task.Task{{ID: "t1", ProjectID: "p1", Title: "tour", Date: "2024-01-01", Status: task.StatusPending, Importance: 3, Order: 7}},
	}
}

func newCache(t *testing.T, repo project.Repository) *cache.Projects {
	t.Helper()
	c, err := cache.NewProjects(repo, 1<<20, time.Minute, nil)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestProjects_ReadThrough(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("Get", ctx, "p1").Return(snapshot(1), nil).Once()

	c := newCache(t, repo)
	first, err := c.Get(ctx, "p1")
	require.NoError(t, err)
	second, err := c.Get(ctx, "p1")
	require.NoError(t, err)

	require.Equal(t, snapshot(1), first)
	require.Equal(t, first, second)
	repo.AssertNumberOfCalls(t, "Get", 1)
}

func TestProjects_SaveRefreshes(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("Get", ctx, "p1").Return(snapshot(1), nil).Once()
	repo.On("Save", ctx, mock.Anything).Return(nil)

	c := newCache(t, repo)
	_, err := c.Get(ctx, "p1")
	require.NoError(t, err)

	require.NoError(t, c.Save(ctx, snapshot(2)))
	got, err := c.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, int64(2), got.Tick)
	repo.AssertNumberOfCalls(t, "Get", 1)
}

func TestProjects_FailedSaveEvicts(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("Get", ctx, "p1").Return(snapshot(1), nil)
	repo.On("Save", ctx, mock.Anything).Return(errors.New("disk full"))

	c := newCache(t, repo)
	_, err := c.Get(ctx, "p1")
	require.NoError(t, err)

	require.Error(t, c.Save(ctx, snapshot(2)))
	got, err := c.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, int64(1), got.Tick)
	repo.AssertNumberOfCalls(t, "Get", 2)
}

func TestProjects_DeleteEvicts(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("Create", ctx, mock.Anything).Return(nil)
	repo.On("Delete", ctx, "p1").Return(nil)
	repo.On("Get", ctx, "p1").Return(nil, repository.ErrNotFound)

	c := newCache(t, repo)
	require.NoError(t, c.Create(ctx, snapshot(0)))
	got, err := c.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, snapshot(0), got)
	repo.AssertNotCalled(t, "Get", ctx, "p1")

	require.NoError(t, c.Delete(ctx, "p1"))
	_, err = c.Get(ctx, "p1")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProjects_ListPassesThrough(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("List", ctx).Return([]project.Project{*snapshot(3)}, nil)

	c := newCache(t, repo)
	list, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	repo.AssertExpectations(t)
}
