package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/project365/internal/domain/activity"
	"github.com/rpggio/project365/internal/domain/calendar"
	"github.com/rpggio/project365/internal/domain/project"
	"github.com/rpggio/project365/internal/domain/settings"
	"github.com/rpggio/project365/internal/domain/task"
)

type tools struct {
	svc Services
}

// addTool registers a typed tool whose result is rendered as JSON text.
// Domain errors become tool results with IsError set so the model can recover.
func addTool[In any](server *sdkmcp.Server, name, description string, fn func(context.Context, In) (any, error)) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: name, Description: description},
		func(ctx context.Context, _ *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, any, error) {
			out, err := fn(ctx, in)
			if err != nil {
				return errorResult(err), nil, nil
			}
			res, err := jsonResult(out)
			return res, nil, err
		})
}

func jsonResult(v any) (*sdkmcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding tool result: %w", err)
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil
}

func errorResult(err error) *sdkmcp.CallToolResult {
	apiErr := MapError(err)
	data, _ := json.Marshal(apiErr)
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}
}

type noInput struct{}

type projectRef struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"project id; defaults to the selected project"`
}

type createProjectInput struct {
	Name          string   `json:"name" jsonschema:"project display name"`
	Description   string   `json:"description,omitempty"`
	LongTermGoal  string   `json:"long_term_goal,omitempty" jsonschema:"what the project should achieve by the target date"`
	Goals         []string `json:"goals,omitempty" jsonschema:"high-level goals"`
	TimeframeDays int      `json:"timeframe_days,omitempty" jsonschema:"length of the project in days"`
	StartDate     string   `json:"start_date,omitempty" jsonschema:"YYYY-MM-DD; defaults to today"`
	TargetDate    string   `json:"target_date,omitempty" jsonschema:"YYYY-MM-DD; defaults to start plus timeframe"`
	Status        string   `json:"status,omitempty" jsonschema:"planning, active, completed or cancelled"`
}

type updateProjectInput struct {
	ProjectID     string    `json:"project_id,omitempty" jsonschema:"project id; defaults to the selected project"`
	Name          *string   `json:"name,omitempty"`
	Description   *string   `json:"description,omitempty"`
	LongTermGoal  *string   `json:"long_term_goal,omitempty"`
	Goals         *[]string `json:"goals,omitempty"`
	TimeframeDays *int      `json:"timeframe_days,omitempty"`
	StartDate     *string   `json:"start_date,omitempty" jsonschema:"YYYY-MM-DD"`
	TargetDate    *string   `json:"target_date,omitempty" jsonschema:"YYYY-MM-DD"`
	Status        *string   `json:"status,omitempty" jsonschema:"planning, active, completed or cancelled"`
}

type addTaskInput struct {
	ProjectID   string `json:"project_id,omitempty" jsonschema:"project id; defaults to the selected project"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date,omitempty" jsonschema:"YYYY-MM-DD; defaults to today"`
	Importance  *int   `json:"importance,omitempty" jsonschema:"1 (low) to 5 (high); defaults to 3"`
	Effort      string `json:"effort_estimate,omitempty" jsonschema:"S, M or L"`
}

type updateTaskInput struct {
	ProjectID   string  `json:"project_id,omitempty" jsonschema:"project id; defaults to the selected project"`
	TaskID      string  `json:"task_id"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Date        *string `json:"date,omitempty" jsonschema:"YYYY-MM-DD"`
	Status      *string `json:"status,omitempty" jsonschema:"pending, done or missed"`
	Importance  *int    `json:"importance,omitempty"`
	Effort      *string `json:"effort_estimate,omitempty" jsonschema:"S, M or L"`
}

type taskRef struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"project id; defaults to the selected project"`
	TaskID    string `json:"task_id"`
}

type reorderInput struct {
	ProjectID string   `json:"project_id,omitempty" jsonschema:"project id; defaults to the selected project"`
	TaskIDs   []string `json:"task_ids" jsonschema:"task ids in their new order"`
}

type listTasksInput struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"project id; defaults to the selected project"`
	Date      string `json:"date,omitempty" jsonschema:"YYYY-MM-DD; omit for every date"`
}

type goalRef struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"project id; defaults to the selected project"`
	GoalID    string `json:"goal_id"`
}

type setGoalsInput struct {
	ProjectID string   `json:"project_id,omitempty" jsonschema:"project id; defaults to the selected project"`
	Goals     []string `json:"goals" jsonschema:"goal texts for the current week"`
}

type updateSettingsInput struct {
	UserName           *string `json:"user_name,omitempty"`
	OnboardingComplete *bool   `json:"onboarding_complete,omitempty"`
	SelectedProjectID  *string `json:"selected_project_id,omitempty" jsonschema:"empty string clears the selection"`
}

type activityInput struct {
	ProjectID string `json:"project_id,omitempty"`
	TaskID    string `json:"task_id,omitempty"`
	Type      string `json:"type,omitempty"`
	Limit     int    `json:"limit,omitempty" jsonschema:"defaults to 50"`
	Offset    int    `json:"offset,omitempty"`
}

type deletedOutput struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type addTaskOutput struct {
	Task    task.Task        `json:"task"`
	Project *project.Project `json:"project"`
}

func registerTools(server *sdkmcp.Server, t *tools) {
	// Projects
	addTool(server, "create_project", "Create a project with a long-term goal and timeframe", t.createProject)
	addTool(server, "list_projects", "List every project with task counts and days ahead", t.listProjects)
	addTool(server, "get_project", "Get a project with its tasks and weekly goals", t.getProject)
	addTool(server, "update_project", "Edit project fields; omitted fields are unchanged", t.updateProject)
	addTool(server, "delete_project", "Delete a project and all of its tasks", t.deleteProject)
	addTool(server, "get_overview", "Totals across every project plus today's task completion", t.overview)

	// Tasks
	addTool(server, "add_task", "Add a daily task at its importance position", t.addTask)
	addTool(server, "update_task", "Edit a task; omitted fields are unchanged", t.updateTask)
	addTool(server, "delete_task", "Delete a task", t.deleteTask)
	addTool(server, "toggle_task", "Mark a task done, or reopen a done task", t.toggleTask)
	addTool(server, "reorder_tasks", "Apply a manual order to the listed tasks", t.reorderTasks)
	addTool(server, "list_tasks", "List tasks in display order, optionally for one date", t.listTasks)
	addTool(server, "sweep_missed_tasks", "Mark pending tasks dated before today as missed", t.sweepMissed)

	// Weekly progress
	addTool(server, "set_weekly_goals", "Replace the current week's goals", t.setWeeklyGoals)
	addTool(server, "toggle_weekly_goal", "Flip one weekly goal between done and open", t.toggleWeeklyGoal)
	addTool(server, "advance_week", "Move to the next week, banking any days ahead", t.advanceWeek)
	addTool(server, "get_week_status", "Weekly goal completion and days ahead", t.weekStatus)

	// Settings and history
	addTool(server, "get_settings", "Get the user profile, selected project and streak", t.getSettings)
	addTool(server, "update_settings", "Update the user profile or selected project", t.updateSettings)
	addTool(server, "get_recent_activity", "Recent changes, newest first", t.recentActivity)
}

// resolveProject returns the given project id or falls back to the selected one.
func (t *tools) resolveProject(ctx context.Context, id string) (string, error) {
	if id = strings.TrimSpace(id); id != "" {
		return id, nil
	}
	s, err := t.svc.Settings.Get(ctx)
	if err != nil {
		return "", err
	}
	if s.SelectedProjectID == "" {
		return "", errNoProject
	}
	return s.SelectedProjectID, nil
}

func (t *tools) createProject(ctx context.Context, in createProjectInput) (any, error) {
	req := project.CreateRequest{
		Name:         in.Name,
		Description:  in.Description,
		LongTermGoal: in.LongTermGoal,
		Goals:        in.Goals,
		Timeframe:    in.TimeframeDays,
		Status:       project.Status(in.Status),
	}
	if in.StartDate != "" {
		start, err := parseTime(in.StartDate)
		if err != nil {
			return nil, err
		}
		req.StartDate = start
	}
	if in.TargetDate != "" {
		target, err := parseTime(in.TargetDate)
		if err != nil {
			return nil, err
		}
		req.TargetDate = &target
	}
	return t.svc.Projects.Create(ctx, req)
}

func (t *tools) listProjects(ctx context.Context, _ noInput) (any, error) {
	projects, err := t.svc.Projects.List(ctx)
	if err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []project.Summary{}
	}
	return projects, nil
}

func (t *tools) getProject(ctx context.Context, in projectRef) (any, error) {
	id, err := t.resolveProject(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	return t.svc.Projects.Get(ctx, id)
}

func (t *tools) updateProject(ctx context.Context, in updateProjectInput) (any, error) {
	id, err := t.resolveProject(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	req := project.UpdateRequest{
		Name:         in.Name,
		Description:  in.Description,
		LongTermGoal: in.LongTermGoal,
		Goals:        in.Goals,
		Timeframe:    in.TimeframeDays,
	}
	if in.Status != nil {
		status := project.Status(*in.Status)
		req.Status = &status
	}
	if in.StartDate != nil {
		start, err := parseTime(*in.StartDate)
		if err != nil {
			return nil, err
		}
		req.StartDate = &start
	}
	if in.TargetDate != nil {
		target, err := parseTime(*in.TargetDate)
		if err != nil {
			return nil, err
		}
		req.TargetDate = &target
	}
	return t.svc.Projects.Update(ctx, id, req)
}

func (t *tools) deleteProject(ctx context.Context, in projectRef) (any, error) {
	// Deleting never falls back to the selection.
	if strings.TrimSpace(in.ProjectID) == "" {
		return nil, fmt.Errorf("%w: project_id is required", project.ErrInvalidInput)
	}
	if err := t.svc.Projects.Delete(ctx, in.ProjectID); err != nil {
		return nil, err
	}
	return deletedOutput{ID: in.ProjectID, Deleted: true}, nil
}

func (t *tools) overview(ctx context.Context, _ noInput) (any, error) {
	return t.svc.Projects.Overview(ctx)
}

func (t *tools) addTask(ctx context.Context, in addTaskInput) (any, error) {
	id, err := t.resolveProject(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	date, err := parseOptionalDate(in.Date)
	if err != nil {
		return nil, err
	}
	proj, added, err := t.svc.Projects.AddTask(ctx, id, project.AddTaskRequest{
		Title:       in.Title,
		Description: in.Description,
		Date:        date,
		Importance:  in.Importance,
		Effort:      task.Effort(in.Effort),
	})
	if err != nil {
		return nil, err
	}
	return addTaskOutput{Task: added, Project: proj}, nil
}

func (t *tools) updateTask(ctx context.Context, in updateTaskInput) (any, error) {
	id, err := t.resolveProject(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	patch := task.Patch{
		Title:       in.Title,
		Description: in.Description,
		Importance:  in.Importance,
	}
	if in.Date != nil {
		date, err := parseDate(*in.Date)
		if err != nil {
			return nil, err
		}
		patch.Date = &date
	}
	if in.Status != nil {
		status := task.Status(*in.Status)
		patch.Status = &status
	}
	if in.Effort != nil {
		effort := task.Effort(*in.Effort)
		patch.Effort = &effort
	}
	return t.svc.Projects.UpdateTask(ctx, id, in.TaskID, patch)
}

func (t *tools) deleteTask(ctx context.Context, in taskRef) (any, error) {
	id, err := t.resolveProject(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	return t.svc.Projects.DeleteTask(ctx, id, in.TaskID)
}

func (t *tools) toggleTask(ctx context.Context, in taskRef) (any, error) {
	id, err := t.resolveProject(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	return t.svc.Projects.ToggleTask(ctx, id, in.TaskID)
}

func (t *tools) reorderTasks(ctx context.Context, in reorderInput) (any, error) {
	id, err := t.resolveProject(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	return t.svc.Projects.ReorderTasks(ctx, id, in.TaskIDs)
}

func (t *tools) listTasks(ctx context.Context, in listTasksInput) (any, error) {
	id, err := t.resolveProject(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	date, err := parseOptionalDate(in.Date)
	if err != nil {
		return nil, err
	}
	tasks, err := t.svc.Projects.ListTasks(ctx, id, date)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return tasks, nil
}

func (t *tools) sweepMissed(ctx context.Context, in projectRef) (any, error) {
	id, err := t.resolveProject(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	return t.svc.Projects.SweepMissed(ctx, id)
}

func (t *tools) setWeeklyGoals(ctx context.Context, in setGoalsInput) (any, error) {
	id, err := t.resolveProject(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	return t.svc.Projects.SetWeeklyGoals(ctx, id, in.Goals)
}

func (t *tools) toggleWeeklyGoal(ctx context.Context, in goalRef) (any, error) {
	id, err := t.resolveProject(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	return t.svc.Projects.ToggleWeeklyGoal(ctx, id, in.GoalID)
}

func (t *tools) advanceWeek(ctx context.Context, in projectRef) (any, error) {
	id, err := t.resolveProject(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	return t.svc.Projects.AdvanceWeek(ctx, id)
}

func (t *tools) weekStatus(ctx context.Context, in projectRef) (any, error) {
	id, err := t.resolveProject(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	return t.svc.Projects.WeekStatus(ctx, id)
}

func (t *tools) getSettings(ctx context.Context, _ noInput) (any, error) {
	return t.svc.Settings.Get(ctx)
}

func (t *tools) updateSettings(ctx context.Context, in updateSettingsInput) (any, error) {
	return t.svc.Settings.Update(ctx, settings.Patch{
		UserName:           in.UserName,
		OnboardingComplete: in.OnboardingComplete,
		SelectedProjectID:  in.SelectedProjectID,
	})
}

func (t *tools) recentActivity(ctx context.Context, in activityInput) (any, error) {
	opts := activity.ListOptions{
		ProjectID: in.ProjectID,
		Limit:     in.Limit,
		Offset:    in.Offset,
	}
	if in.TaskID != "" {
		opts.TaskID = &in.TaskID
	}
	if in.Type != "" {
		kind := activity.Type(in.Type)
		opts.Type = &kind
	}
	entries, err := t.svc.Activity.Recent(ctx, opts)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []activity.Entry{}
	}
	return entries, nil
}

func parseDate(s string) (calendar.Date, error) {
	d, err := calendar.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", project.ErrInvalidInput, err)
	}
	return d, nil
}

func parseOptionalDate(s string) (calendar.Date, error) {
	if s == "" {
		return "", nil
	}
	return parseDate(s)
}

func parseTime(s string) (time.Time, error) {
	d, err := parseDate(s)
	if err != nil {
		return time.Time{}, err
	}
	return d.Time(), nil
}
