// Package testserver builds the full service stack on in-memory SQLite for tests.
package testserver

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/project365/internal/cache"
	"github.com/rpggio/project365/internal/clock"
	"github.com/rpggio/project365/internal/domain/activity"
	"github.com/rpggio/project365/internal/domain/project"
	"github.com/rpggio/project365/internal/domain/settings"
	"github.com/rpggio/project365/internal/events"
	"github.com/rpggio/project365/internal/mcp"
	"github.com/rpggio/project365/internal/sqlite"
	"github.com/rpggio/project365/internal/transport"
	"github.com/stretchr/testify/require"
)

// Start is the default clock reading: Thursday 2024-01-04 09:00 UTC.
var Start = time.Date(2024, 1, 4, 9, 0, 0, 0, time.UTC)

// Stack holds wired services sharing one database and a manual clock.
type Stack struct {
	DB       *sqlite.DB
	Clock    *clock.Manual
	Projects *project.Service
	Settings *settings.Service
	Activity *activity.Service
}

// Services returns the stack as the MCP and REST layers consume it.
func (s *Stack) Services() mcp.Services {
	return mcp.Services{Projects: s.Projects, Settings: s.Settings, Activity: s.Activity}
}

// NewStack opens a private in-memory database and wires every service,
// with the project repository behind the snapshot cache.
func NewStack(t *testing.T) *Stack {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.Open(dsn)
	require.NoError(t, err)

	projects, err := cache.NewProjects(sqlite.NewProjectRepository(db), 1<<20, time.Minute, nil)
	require.NoError(t, err)

	clk := clock.NewManual(Start)
	var n atomic.Int64
	newID := func() string { return fmt.Sprintf("id-%d", n.Add(1)) }

	settingsSvc := settings.NewService(sqlite.NewSettingsRepository(db), nil)
	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), clk, nil)
	projectSvc := project.NewService(projects, nil,
		project.WithClock(clk),
		project.WithIDSource(newID),
		project.WithActivityLogger(activitySvc),
		project.WithPublisher(events.Noop{}),
		project.WithUserState(settingsSvc),
	)

	t.Cleanup(func() {
		projects.Close()
		_ = db.Close()
	})

	return &Stack{
		DB:       db,
		Clock:    clk,
		Projects: projectSvc,
		Settings: settingsSvc,
		Activity: activitySvc,
	}
}

// TestServer serves the REST API and streamable MCP over httptest.
type TestServer struct {
	*Stack
	Server *httptest.Server
	Token  string
}

// New starts a server; an empty token disables auth.
func New(t *testing.T, token string) *TestServer {
	t.Helper()

	stack := NewStack(t)
	mcpServer := mcp.NewServer(mcp.Config{
		Services:      stack.Services(),
		AuthToken:     token,
		TransportMode: "http",
	})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(func(*http.Request) *sdkmcp.Server {
		return mcpServer
	}, nil)

	server := httptest.NewServer(transport.NewServer(stack.Services(), transport.Options{
		MCP:       mcpHandler,
		AuthToken: token,
	}))
	t.Cleanup(server.Close)

	return &TestServer{Stack: stack, Server: server, Token: token}
}
