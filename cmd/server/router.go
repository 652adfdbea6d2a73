package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/taskwell/taskwell-api/internal/api"
	apiMiddleware "github.com/taskwell/taskwell-api/internal/api/middleware"
	"github.com/taskwell/taskwell-api/internal/api/shared"
)

// setupRouter creates and configures the application router with all routes
// and middleware. Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(apiMiddleware.TraceMiddleware)
	r.Use(apiMiddleware.RequestLogger)

	if len(app.config.Server.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: app.config.Server.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", shared.TraceIDHeader},
			ExposedHeaders: []string{shared.TraceIDHeader},
			MaxAge:         300,
		}))
	}

	taskHandler := api.NewTaskHandler(app.taskService, &app.config.Server, app.logger)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		if app.config.Server.RateLimit > 0 {
			r.Use(httprate.Limit(
				app.config.Server.RateLimit,
				app.config.Server.RateLimitWindow,
				httprate.WithKeyFuncs(httprate.KeyByRealIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					shared.RespondWithProblem(w, r, http.StatusTooManyRequests,
						api.TitleTooManyRequests, "Rate limit exceeded, retry later")
				}),
			))
		}

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.ListTasks)
			r.Post("/", taskHandler.CreateTask)
			r.Get("/deleted", taskHandler.ListDeletedTasks)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.GetTask)
				r.Patch("/", taskHandler.UpdateTask)
				r.Delete("/", taskHandler.DeleteTask)
				r.Patch("/toggle", taskHandler.ToggleTask)
				r.Post("/restore", taskHandler.RestoreTask)
			})
		})
	})

	// Health check endpoint with a database ping
	r.Get("/health", app.handleHealth)

	return r
}

// handleHealth reports liveness plus database reachability.
func (app *application) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	overall, dbStatus := "ok", "up"
	if err := app.db.PingContext(ctx); err != nil {
		status = http.StatusServiceUnavailable
		overall, dbStatus = "degraded", "down"
		app.logger.Error("health check database ping failed", "error", err)
	}

	shared.RespondWithJSON(w, r, status, map[string]string{
		"status":   overall,
		"database": dbStatus,
	})
}
