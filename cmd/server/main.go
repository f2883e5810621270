package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/project365/internal/cache"
	"github.com/rpggio/project365/internal/clock"
	"github.com/rpggio/project365/internal/config"
	"github.com/rpggio/project365/internal/domain/activity"
	"github.com/rpggio/project365/internal/domain/project"
	"github.com/rpggio/project365/internal/domain/settings"
	"github.com/rpggio/project365/internal/events"
	"github.com/rpggio/project365/internal/logging"
	"github.com/rpggio/project365/internal/mcp"
	"github.com/rpggio/project365/internal/sqlite"
	"github.com/rpggio/project365/internal/transport"
	"golang.org/x/sync/errgroup"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "project365: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	logger, logCloser, err := logging.New(logWriter, cfg.Log.Level, cfg.Log.Path)
	if err != nil {
		return fmt.Errorf("log file: %w", err)
	}
	defer logCloser.Close()

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.Open(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	var projectRepo project.Repository = sqlite.NewProjectRepository(db)
	if cfg.Cache.MaxCost > 0 {
		cached, err := cache.NewProjects(projectRepo, cfg.Cache.MaxCost, cfg.Cache.TTL, logger)
		if err != nil {
			return fmt.Errorf("create cache: %w", err)
		}
		defer cached.Close()
		projectRepo = cached
	}

	publisher, err := newPublisher(cfg.NATS, logger)
	if err != nil {
		return fmt.Errorf("connect nats: %w", err)
	}
	defer publisher.Close()

	settingsSvc := settings.NewService(sqlite.NewSettingsRepository(db), logger)
	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), clock.System{}, logger)
	projectSvc := project.NewService(projectRepo, logger,
		project.WithActivityLogger(activitySvc),
		project.WithPublisher(publisher),
		project.WithUserState(settingsSvc),
	)

	services := mcp.Services{
		Projects: projectSvc,
		Settings: settingsSvc,
		Activity: activitySvc,
	}
	mcpServer := mcp.NewServer(mcp.Config{
		Services:      services,
		AuthToken:     cfg.Auth.Token,
		TransportMode: cfg.Transport.Mode,
		Version:       version,
		Logger:        logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Transport.Mode == "stdio" {
		return runStdio(ctx, logger, mcpServer)
	}
	return runHTTP(ctx, logger, cfg, services, mcpServer)
}

type closablePublisher interface {
	project.Publisher
	Close() error
}

func newPublisher(cfg config.NATSConfig, logger *slog.Logger) (closablePublisher, error) {
	if cfg.URL == "" {
		return events.Noop{}, nil
	}
	return events.Connect(cfg.URL, cfg.Prefix, logger)
}

func runStdio(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server) error {
	logger.Info("starting stdio transport", "auth", "disabled")

	// Run blocks until stdin closes or the context is canceled.
	err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

func runHTTP(ctx context.Context, logger *slog.Logger, cfg config.Config, services mcp.Services, mcpServer *sdkmcp.Server) error {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{SessionTimeout: 30 * time.Minute},
	)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr: addr,
		Handler: transport.NewServer(services, transport.Options{
			MCP:       mcpHandler,
			AuthToken: cfg.Auth.Token,
			Logger:    logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", addr, "auth", cfg.Auth.Token != "")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
