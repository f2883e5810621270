package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/project365/internal/domain/activity"
	"github.com/rpggio/project365/internal/domain/calendar"
	"github.com/rpggio/project365/internal/domain/progress"
	"github.com/rpggio/project365/internal/domain/project"
	"github.com/rpggio/project365/internal/domain/settings"
	"github.com/rpggio/project365/internal/domain/task"
)

// ProjectService defines project operations needed by MCP.
type ProjectService interface {
	Create(ctx context.Context, req project.CreateRequest) (*project.Project, error)
	Get(ctx context.Context, id string) (*project.Project, error)
	List(ctx context.Context) ([]project.Summary, error)
	Update(ctx context.Context, id string, req project.UpdateRequest) (*project.Project, error)
	Delete(ctx context.Context, id string) error
	Overview(ctx context.Context) (project.Overview, error)

	AddTask(ctx context.Context, projectID string, req project.AddTaskRequest) (*project.Project, task.Task, error)
	UpdateTask(ctx context.Context, projectID, taskID string, patch task.Patch) (*project.Project, error)
	DeleteTask(ctx context.Context, projectID, taskID string) (*project.Project, error)
	ToggleTask(ctx context.Context, projectID, taskID string) (*project.Project, error)
	ReorderTasks(ctx context.Context, projectID string, taskIDs []string) (*project.Project, error)
	ListTasks(ctx context.Context, projectID string, date calendar.Date) ([]task.Task, error)
	SweepMissed(ctx context.Context, projectID string) (*project.Project, error)

	ToggleWeeklyGoal(ctx context.Context, projectID, goalID string) (*project.Project, error)
	SetWeeklyGoals(ctx context.Context, projectID string, texts []string) (*project.Project, error)
	AdvanceWeek(ctx context.Context, projectID string) (*project.Project, error)
	WeekStatus(ctx context.Context, projectID string) (progress.Summary, error)
}

// SettingsService defines settings operations needed by MCP.
type SettingsService interface {
	Get(ctx context.Context) (*settings.Settings, error)
	Update(ctx context.Context, p settings.Patch) (*settings.Settings, error)
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	Recent(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Projects ProjectService
	Settings SettingsService
	Activity ActivityService
}

// Config contains server configuration.
type Config struct {
	Services      Services
	AuthToken     string
	TransportMode string // "stdio" or "http"
	Version       string
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "project365",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio is a local pipe; only HTTP checks the bearer token.
	if cfg.TransportMode != "stdio" && cfg.AuthToken != "" {
		server.AddReceivingMiddleware(authMiddleware(cfg.AuthToken))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, &tools{svc: cfg.Services})

	return server
}
