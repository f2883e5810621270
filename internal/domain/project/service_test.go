package project_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rpggio/project365/internal/clock"
	"github.com/rpggio/project365/internal/domain/activity"
	"github.com/rpggio/project365/internal/domain/calendar"
	"github.com/rpggio/project365/internal/domain/project"
	"github.com/rpggio/project365/internal/domain/task"
	"github.com/rpggio/project365/internal/repository"
	"github.com/rpggio/project365/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var jan1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newService(t *testing.T, opts ...project.Option) (*project.Service, *memRepo, *clock.Manual) {
	t.Helper()
	repo := newMemRepo()
	clk := clock.NewManual(jan1.Add(9 * time.Hour))
	base := []project.Option{project.WithClock(clk), project.WithIDSource(sequence("id"))}
	return project.NewService(repo, nil, append(base, opts...)...), repo, clk
}

func createProject(t *testing.T, svc *project.Service) *project.Project {
	t.Helper()
	proj, err := svc.Create(context.Background(), project.CreateRequest{
		Name:      "Write a novel",
		Timeframe: 90,
		StartDate: jan1,
	})
	require.NoError(t, err)
	return proj
}

func TestProjectService_CreateValidation(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, project.CreateRequest{Name: "  "})
	require.ErrorIs(t, err, project.ErrInvalidInput)
	_, err = svc.Create(ctx, project.CreateRequest{Name: "x", Timeframe: -1})
	require.ErrorIs(t, err, project.ErrInvalidInput)
	_, err = svc.Create(ctx, project.CreateRequest{Name: "x", Status: "paused"})
	require.ErrorIs(t, err, project.ErrInvalidInput)
}

func TestProjectService_CreateFillsDefaults(t *testing.T) {
	svc, _, clk := newService(t)

	proj := createProject(t, svc)

	require.Equal(t, "id1", proj.ID)
	require.Equal(t, project.StatusPlanning, proj.Status)
	require.Equal(t, jan1.AddDate(0, 0, 90), proj.TargetDate)
	require.Equal(t, calendar.Date("2023-12-31"), proj.Week.CurrentWeekStart)
	require.Equal(t, clk.Now(), proj.CreatedAt)
	require.Zero(t, proj.Tick)

	got, err := svc.Get(context.Background(), proj.ID)
	require.NoError(t, err)
	require.Equal(t, proj, got)
}

func TestProjectService_UnknownProject(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, "missing")
	require.ErrorIs(t, err, project.ErrProjectNotFound)
	_, _, err = svc.AddTask(ctx, "missing", project.AddTaskRequest{Title: "x"})
	require.ErrorIs(t, err, project.ErrProjectNotFound)
	_, err = svc.AdvanceWeek(ctx, "missing")
	require.ErrorIs(t, err, project.ErrProjectNotFound)
	require.ErrorIs(t, svc.Delete(ctx, "missing"), project.ErrProjectNotFound)
	require.Zero(t, repo.saveCount())
}

func TestProjectService_AddTaskOrdersByImportance(t *testing.T) {
	svc, _, clk := newService(t)
	ctx := context.Background()
	proj := createProject(t, svc)

	for _, importance := range []int{3, 5, 1, 4} {
		_, _, err := svc.AddTask(ctx, proj.ID, project.AddTaskRequest{Title: "task", Importance: &importance})
		require.NoError(t, err)
		clk.Add(time.Second)
	}

	tasks, err := svc.ListTasks(ctx, proj.ID, "2024-01-01")
	require.NoError(t, err)
	require.Len(t, tasks, 4)
	var got []int
	for _, tk := range tasks {
		got = append(got, tk.Importance)
	}
	require.Equal(t, []int{5, 4, 3, 1}, got)
}

func TestProjectService_AddTaskDefaults(t *testing.T) {
	svc, _, clk := newService(t)
	ctx := context.Background()
	proj := createProject(t, svc)

	snap, added, err := svc.AddTask(ctx, proj.ID, project.AddTaskRequest{Title: "outline"})
	require.NoError(t, err)
	require.Equal(t, 3, added.Importance)
	require.Equal(t, calendar.Date("2024-01-01"), added.Date)
	require.Equal(t, clk.Now().UnixMilli(), added.Order)
	require.Equal(t, proj.ID, added.ProjectID)
	require.Equal(t, int64(1), snap.Tick)

	_, _, err = svc.AddTask(ctx, proj.ID, project.AddTaskRequest{Title: " "})
	require.ErrorIs(t, err, project.ErrInvalidInput)
	_, _, err = svc.AddTask(ctx, proj.ID, project.AddTaskRequest{Title: "x", Effort: "XL"})
	require.ErrorIs(t, err, project.ErrInvalidInput)
}

func TestProjectService_UnchangedSnapshotIsNotCommitted(t *testing.T) {
	pub := &mocks.Publisher{}
	pub.On("ProjectUpdated", mock.Anything, mock.Anything).Return(nil)
	svc, repo, _ := newService(t, project.WithPublisher(pub))
	ctx := context.Background()
	proj := createProject(t, svc)
	pub.AssertNumberOfCalls(t, "ProjectUpdated", 1)

	snap, err := svc.ToggleTask(ctx, proj.ID, "ghost")
	require.NoError(t, err)
	require.Equal(t, proj, snap)

	_, err = svc.ToggleWeeklyGoal(ctx, proj.ID, "ghost")
	require.NoError(t, err)
	_, err = svc.ReorderTasks(ctx, proj.ID, []string{"ghost"})
	require.NoError(t, err)
	_, err = svc.SweepMissed(ctx, proj.ID)
	require.NoError(t, err)

	require.Zero(t, repo.saveCount())
	pub.AssertNumberOfCalls(t, "ProjectUpdated", 1)
}

func TestProjectService_CommitsNotify(t *testing.T) {
	acts := &mocks.ActivityRepository{}
	acts.On("Log", mock.Anything, mock.Anything).Return(nil)
	pub := &mocks.Publisher{}
	pub.On("ProjectUpdated", mock.Anything, mock.Anything).Return(nil)
	users := &mocks.UserState{}
	users.On("RecordActivity", mock.Anything, mock.Anything).Return(nil)

	svc, _, _ := newService(t,
		project.WithActivityLogger(acts),
		project.WithPublisher(pub),
		project.WithUserState(users),
	)
	ctx := context.Background()
	proj := createProject(t, svc)

	_, added, err := svc.AddTask(ctx, proj.ID, project.AddTaskRequest{Title: "draft chapter"})
	require.NoError(t, err)
	snap, err := svc.ToggleTask(ctx, proj.ID, added.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), snap.Tick)

	acts.AssertNumberOfCalls(t, "Log", 3)
	acts.AssertCalled(t, "Log", mock.Anything, mock.MatchedBy(func(e *activity.Entry) bool {
		return e.Type == activity.TypeTaskToggled && e.TaskID != nil && *e.TaskID == added.ID && e.Tick == 2
	}))
	pub.AssertCalled(t, "ProjectUpdated", mock.Anything, mock.MatchedBy(func(p *project.Project) bool {
		return p.Tick == 2
	}))
	users.AssertNumberOfCalls(t, "RecordActivity", 3)
}

func TestProjectService_NotificationFailuresAreNotReturned(t *testing.T) {
	boom := errors.New("broker down")
	acts := &mocks.ActivityRepository{}
	acts.On("Log", mock.Anything, mock.Anything).Return(boom)
	pub := &mocks.Publisher{}
	pub.On("ProjectUpdated", mock.Anything, mock.Anything).Return(boom)

	svc, repo, _ := newService(t, project.WithActivityLogger(acts), project.WithPublisher(pub))
	proj := createProject(t, svc)

	_, _, err := svc.AddTask(context.Background(), proj.ID, project.AddTaskRequest{Title: "x"})
	require.NoError(t, err)
	require.Equal(t, 1, repo.saveCount())
}

func TestProjectService_SaveErrorPropagates(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")
	stored := &project.Project{ID: "p1", Name: "p", StartDate: jan1}

	repo := &mocks.ProjectRepository{}
	repo.On("Get", ctx, "p1").Return(stored, nil)
	repo.On("Save", ctx, mock.Anything).Return(boom)
	pub := &mocks.Publisher{}

	svc := project.NewService(repo, nil, project.WithPublisher(pub), project.WithClock(clock.NewManual(jan1)))
	_, _, err := svc.AddTask(ctx, "p1", project.AddTaskRequest{Title: "x"})
	require.ErrorIs(t, err, boom)
	pub.AssertNotCalled(t, "ProjectUpdated", mock.Anything, mock.Anything)
	require.Empty(t, stored.Tasks, "stored snapshot is not modified in place")
}

func TestProjectService_GetWrapsRepositoryError(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("Get", ctx, "p1").Return(nil, repository.ErrNotFound).Once()
	repo.On("Get", ctx, "p1").Return(nil, errors.New("io"))

	svc := project.NewService(repo, nil)
	_, err := svc.Get(ctx, "p1")
	require.ErrorIs(t, err, project.ErrProjectNotFound)
	_, err = svc.Get(ctx, "p1")
	require.Error(t, err)
	require.NotErrorIs(t, err, project.ErrProjectNotFound)
}

func TestProjectService_Update(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	proj := createProject(t, svc)

	name := "Write two novels"
	status := project.StatusActive
	goals := []string{"finish draft"}
	snap, err := svc.Update(ctx, proj.ID, project.UpdateRequest{Name: &name, Status: &status, Goals: &goals})
	require.NoError(t, err)
	require.Equal(t, name, snap.Name)
	require.Equal(t, project.StatusActive, snap.Status)
	require.Equal(t, goals, snap.Goals)
	require.Equal(t, int64(1), snap.Tick)
	require.Equal(t, proj.Week, snap.Week)

	bad := project.Status("paused")
	_, err = svc.Update(ctx, proj.ID, project.UpdateRequest{Status: &bad})
	require.ErrorIs(t, err, project.ErrInvalidInput)
}

func TestProjectService_DeleteClearsSelection(t *testing.T) {
	users := &mocks.UserState{}
	users.On("RecordActivity", mock.Anything, mock.Anything).Return(nil)
	users.On("ClearSelection", mock.Anything, "id1").Return(nil)
	pub := &mocks.Publisher{}
	pub.On("ProjectUpdated", mock.Anything, mock.Anything).Return(nil)
	pub.On("ProjectDeleted", mock.Anything, "id1").Return(nil)

	svc, _, _ := newService(t, project.WithUserState(users), project.WithPublisher(pub))
	ctx := context.Background()
	proj := createProject(t, svc)

	require.NoError(t, svc.Delete(ctx, proj.ID))
	_, err := svc.Get(ctx, proj.ID)
	require.ErrorIs(t, err, project.ErrProjectNotFound)
	users.AssertCalled(t, "ClearSelection", mock.Anything, "id1")
	pub.AssertCalled(t, "ProjectDeleted", mock.Anything, "id1")
}

func TestProjectService_EarlyWeekCompletion(t *testing.T) {
	svc, _, clk := newService(t)
	ctx := context.Background()
	proj := createProject(t, svc)

	_, err := svc.SetWeeklyGoals(ctx, proj.ID, []string{"outline", "research"})
	require.NoError(t, err)
	snap, err := svc.ToggleWeeklyGoal(ctx, proj.ID, "id2")
	require.NoError(t, err)
	require.True(t, snap.Week.Goals[0].Completed)
	snap, err = svc.ToggleWeeklyGoal(ctx, proj.ID, "id3")
	require.NoError(t, err)
	require.Zero(t, snap.Week.DaysAhead, "toggling goals never moves days ahead")

	status, err := svc.WeekStatus(ctx, proj.ID)
	require.NoError(t, err)
	require.True(t, status.AllCompleted)

	clk.Set(time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC))
	snap, err = svc.AdvanceWeek(ctx, proj.ID)
	require.NoError(t, err)
	require.Equal(t, 3, snap.Week.DaysAhead)
	require.Equal(t, calendar.Date("2024-01-07"), snap.Week.CurrentWeekStart)
	require.False(t, snap.Week.Goals[0].Completed)

	clk.Set(time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC))
	status, err = svc.WeekStatus(ctx, proj.ID)
	require.NoError(t, err)
	require.Equal(t, 3, status.DaysAhead)

	clk.Set(time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC))
	status, err = svc.WeekStatus(ctx, proj.ID)
	require.NoError(t, err)
	require.Equal(t, 1, status.DaysAhead)
	require.Equal(t, 3, status.RawDaysAhead)

	summaries, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Equal(t, 1, summaries[0].DaysAhead)
}

func TestProjectService_SetWeeklyGoalsValidation(t *testing.T) {
	svc, _, _ := newService(t)
	proj := createProject(t, svc)
	_, err := svc.SetWeeklyGoals(context.Background(), proj.ID, []string{"ok", ""})
	require.ErrorIs(t, err, project.ErrInvalidInput)
}

func TestProjectService_SweepMissed(t *testing.T) {
	svc, _, clk := newService(t)
	ctx := context.Background()
	proj := createProject(t, svc)

	_, stale, err := svc.AddTask(ctx, proj.ID, project.AddTaskRequest{Title: "yesterday's", Date: "2023-12-31"})
	require.NoError(t, err)
	_, current, err := svc.AddTask(ctx, proj.ID, project.AddTaskRequest{Title: "today's"})
	require.NoError(t, err)

	clk.Set(jan1.Add(12 * time.Hour))
	snap, err := svc.SweepMissed(ctx, proj.ID)
	require.NoError(t, err)
	for _, tk := range snap.Tasks {
		switch tk.ID {
		case stale.ID:
			require.Equal(t, task.StatusMissed, tk.Status)
		case current.ID:
			require.Equal(t, task.StatusPending, tk.Status)
		}
	}
}

func TestProjectService_Overview(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	first := createProject(t, svc)
	second := createProject(t, svc)

	done := project.StatusCompleted
	_, err := svc.Update(ctx, second.ID, project.UpdateRequest{Status: &done})
	require.NoError(t, err)

	_, a, err := svc.AddTask(ctx, first.ID, project.AddTaskRequest{Title: "a"})
	require.NoError(t, err)
	_, _, err = svc.AddTask(ctx, first.ID, project.AddTaskRequest{Title: "b"})
	require.NoError(t, err)
	_, _, err = svc.AddTask(ctx, first.ID, project.AddTaskRequest{Title: "c"})
	require.NoError(t, err)
	_, _, err = svc.AddTask(ctx, second.ID, project.AddTaskRequest{Title: "later", Date: "2024-02-01"})
	require.NoError(t, err)
	_, err = svc.ToggleTask(ctx, first.ID, a.ID)
	require.NoError(t, err)

	ov, err := svc.Overview(ctx)
	require.NoError(t, err)
	require.Equal(t, project.Overview{
		Date:              "2024-01-01",
		TotalProjects:     2,
		ActiveProjects:    1,
		CompletedProjects: 1,
		TotalTasks:        4,
		DoneTasks:         1,
		DonePercent:       25,
		TodayTasks:        3,
		TodayDone:         1,
		TodayPercent:      33,
	}, ov)
}
