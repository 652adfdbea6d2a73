package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/taskwell/taskwell-api/internal/config"
	"github.com/taskwell/taskwell-api/internal/platform/postgres"
	"github.com/taskwell/taskwell-api/internal/service"
	"github.com/taskwell/taskwell-api/internal/store"
)

// application is the composition root: it owns every long-lived dependency
// and hands them to the router and server. All construction happens here
// explicitly; nothing reaches for global state.
type application struct {
	config *config.Config
	logger *slog.Logger

	db          *sql.DB
	taskStore   store.TaskStore
	taskService service.TaskService
}

// newApplication builds the full dependency graph: database connection,
// schema migrations, the task store, and the task service.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, err := setupDatabase(cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, logger); err != nil {
		closeDatabase(db, logger)
		return nil, err
	}

	taskStore := postgres.NewPostgresTaskStore(db, logger)

	taskService, err := service.NewTaskService(taskStore, logger)
	if err != nil {
		closeDatabase(db, logger)
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	return &application{
		config:      cfg,
		logger:      logger,
		db:          db,
		taskStore:   taskStore,
		taskService: taskService,
	}, nil
}

// cleanup releases the application's resources. Safe to call once after
// the server has stopped.
func (app *application) cleanup() {
	closeDatabase(app.db, app.logger)
}

func closeDatabase(db *sql.DB, logger *slog.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		logger.Error("failed to close database connection", slog.String("error", err.Error()))
	}
}
