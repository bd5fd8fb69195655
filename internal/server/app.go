// Package server initializes and runs the task tracker server. It opens the
// database, applies migrations, wires the services, and serves the HTTP API
// until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dkazakov/taskdeck/internal/logging"
	"github.com/dkazakov/taskdeck/internal/metrics"
	"github.com/dkazakov/taskdeck/internal/server/config"
	"github.com/dkazakov/taskdeck/internal/server/httpapi"
	"github.com/dkazakov/taskdeck/internal/server/repositories/repomanager"
	"github.com/dkazakov/taskdeck/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	userService *services.UserService
	taskService *services.TaskService
	registry    *prometheus.Registry
	metrics     *metrics.Metrics
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	registry := prometheus.NewRegistry()

	return &App{
		config:      cfg,
		logger:      logger,
		db:          db,
		userService: services.NewUserService(db, m, cfg),
		taskService: services.NewTaskService(db, m, cfg),
		registry:    registry,
		metrics:     metrics.New(registry),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "env", app.config.Environment)

	app.initSignalHandler(cancelFunc)

	router := httpapi.NewRouter(&httpapi.ServerDeps{
		AuthService: app.userService,
		TaskService: app.taskService,
		Verifier:    app.userService.Tokens(),
		Metrics:     app.metrics,
		Registry:    app.registry,
		Logger:      app.logger,
	})
	srv := httpapi.NewServer(app.config.EndpointAddrHTTP, router, app.logger)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.Run(ctx); err != nil {
			app.logger.Error(ctx, "http server error", "error", err.Error())
			cancelFunc()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "shutdown error", "error", err.Error())
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close error", "error", err.Error())
	}
}
