// Package transport exposes the services over a chi REST API and mounts the
// streamable MCP handler.
package transport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rpggio/project365/internal/mcp"
)

// maxRequestBodySize caps JSON request bodies.
const maxRequestBodySize = 1 << 20

// Options configures the router.
type Options struct {
	// MCP is mounted at /mcp when set.
	MCP http.Handler
	// AuthToken enables bearer auth on /api and /mcp when non-empty.
	AuthToken string
	Logger    *slog.Logger
}

// Server holds the REST handlers.
type Server struct {
	svc    mcp.Services
	logger *slog.Logger
}

// NewServer creates an HTTP router with middleware.
func NewServer(svc mcp.Services, opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	srv := &Server{svc: svc, logger: logger}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chimw.Recoverer)

	r.Get("/health", srv.handleHealth)

	r.Group(func(r chi.Router) {
		if opts.AuthToken != "" {
			r.Use(BearerAuth(opts.AuthToken))
		}
		if opts.MCP != nil {
			r.Handle("/mcp", opts.MCP)
		}

		r.Route("/api/v1", func(r chi.Router) {
			r.Use(chimw.Timeout(30 * time.Second))

			r.Get("/overview", srv.getOverview)
			r.Get("/settings", srv.getSettings)
			r.Patch("/settings", srv.updateSettings)

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", srv.listProjects)
				r.Post("/", srv.createProject)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", srv.getProject)
					r.Patch("/", srv.updateProject)
					r.Delete("/", srv.deleteProject)
					r.Get("/activity", srv.listActivity)

					r.Get("/tasks", srv.listTasks)
					r.Post("/tasks", srv.addTask)
					r.Put("/tasks/order", srv.reorderTasks)
					r.Post("/tasks/sweep", srv.sweepMissed)
					r.Patch("/tasks/{taskID}", srv.updateTask)
					r.Delete("/tasks/{taskID}", srv.deleteTask)
					r.Post("/tasks/{taskID}/toggle", srv.toggleTask)

					r.Get("/week", srv.weekStatus)
					r.Put("/week/goals", srv.setWeeklyGoals)
					r.Post("/week/goals/{goalID}/toggle", srv.toggleWeeklyGoal)
					r.Post("/week/advance", srv.advanceWeek)
				})
			})
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", chimw.GetReqID(r.Context()),
			)
		})
	}
}
