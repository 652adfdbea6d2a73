package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/taskwell/taskwell-api/internal/api/shared"
	"github.com/taskwell/taskwell-api/internal/config"
	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/platform/logger"
	"github.com/taskwell/taskwell-api/internal/service"
)

// TaskHandler handles the task resource endpoints.
type TaskHandler struct {
	taskService service.TaskService
	serverCfg   *config.ServerConfig
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler with the given task service.
// The server config controls whether 500 responses carry the underlying
// error detail; a nil config behaves like production and sanitizes it.
func NewTaskHandler(
	taskService service.TaskService,
	serverCfg *config.ServerConfig,
	logger *slog.Logger,
) *TaskHandler {
	if taskService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("taskService cannot be nil for TaskHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskHandler{
		taskService: taskService,
		serverCfg:   serverCfg,
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// ListTasks handles GET /tasks requests.
// It parses the filter set from the query string and returns the paginated
// listing envelope.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	filters, err := ParseTaskFilters(r.URL.Query())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	page, err := h.taskService.GetTasks(r.Context(), filters)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, pageToResponse(page))
}

// GetTask handles GET /tasks/{id} requests.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	task, err := h.taskService.GetTask(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// CreateTask handles POST /tasks requests.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("failed to decode create request", slog.String("error", err.Error()))
		shared.RespondWithProblem(w, r, http.StatusBadRequest,
			TitleValidationFailed, "Request body must be valid JSON")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		h.respondValidationError(w, r, err)
		return
	}

	input := service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
	}
	if req.Priority != nil {
		input.Priority = domain.Priority(*req.Priority)
	}

	task, err := h.taskService.CreateTask(r.Context(), input)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// UpdateTask handles PATCH /tasks/{id} requests.
// Only fields present in the body are applied; a JSON null dueDate clears
// the due date. A non-zero version triggers the optimistic concurrency
// check.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	id := chi.URLParam(r, "id")

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("failed to decode update request", slog.String("error", err.Error()))
		shared.RespondWithProblem(w, r, http.StatusBadRequest,
			TitleValidationFailed, "Request body must be valid JSON")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		h.respondValidationError(w, r, err)
		return
	}

	input := service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		Version:     req.Version,
	}
	if req.Priority != nil {
		priority := domain.Priority(*req.Priority)
		input.Priority = &priority
	}
	if req.Tags != nil {
		input.Tags = *req.Tags
		input.TagsPresent = true
	}

	dueDate, dueDateNull, err := parseRawDueDate(req.DueDate)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	input.DueDate = dueDate
	input.DueDateNull = dueDateNull

	task, err := h.taskService.UpdateTask(r.Context(), id, input)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// ToggleTask handles PATCH /tasks/{id}/toggle requests.
// The body is optional; when present it may carry a version for the
// optimistic concurrency check.
func (h *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req ToggleTaskRequest
	if r.Body != nil {
		// An empty body is fine; only a malformed one is rejected.
		if err := shared.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
			shared.RespondWithProblem(w, r, http.StatusBadRequest,
				TitleValidationFailed, "Request body must be valid JSON")
			return
		}
	}

	task, err := h.taskService.ToggleTaskComplete(r.Context(), id, req.Version)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// DeleteTask handles DELETE /tasks/{id} requests. The task is soft-deleted
// and the response carries no body.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.taskService.DeleteTask(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RestoreTask handles POST /tasks/{id}/restore requests.
func (h *TaskHandler) RestoreTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	task, err := h.taskService.RestoreTask(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// ListDeletedTasks handles GET /tasks/deleted requests.
// It accepts the same filters as the main listing minus status and returns
// a bare array.
func (h *TaskHandler) ListDeletedTasks(w http.ResponseWriter, r *http.Request) {
	filters, err := ParseTaskFilters(r.URL.Query())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	tasks, err := h.taskService.GetDeletedTasks(r.Context(), filters)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

// respondError translates a service or domain error into the
// problem-details response for its mapped status code.
func (h *TaskHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	status := MapErrorToStatusCode(err)
	detail := GetSafeErrorMessage(err)
	if status >= http.StatusInternalServerError {
		log.Error("unhandled error", slog.String("error", err.Error()))

		// Outside development the raw error never reaches the client.
		if h.serverCfg != nil && !h.serverCfg.IsProduction() {
			detail = err.Error()
		}
	}

	shared.RespondWithProblem(w, r, status, ProblemTitle(status), detail)
}

// respondValidationError aggregates validator field failures into a single
// 400 problem-details response.
func (h *TaskHandler) respondValidationError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		shared.RespondWithProblem(w, r, http.StatusBadRequest,
			TitleValidationFailed, "Invalid request payload")
		return
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, formatFieldError(fe))
	}

	shared.RespondWithProblem(w, r, http.StatusBadRequest,
		TitleValidationFailed, strings.Join(messages, ", "))
}

// formatFieldError renders one validator failure as a client-facing
// field message.
func formatFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return field + " must be " + fe.Param() + " characters or less"
	case "oneof":
		return field + " must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		return field + " must be at least " + fe.Param()
	default:
		return field + " is invalid"
	}
}

// parseRawDueDate interprets the raw dueDate member of an update body:
// absent yields no change, JSON null requests a clear, and a JSON string
// passes through for service-side normalization.
func parseRawDueDate(raw json.RawMessage) (*string, bool, error) {
	if len(raw) == 0 {
		return nil, false, nil
	}
	if string(raw) == "null" {
		return nil, true, nil
	}

	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, false, domain.NewValidationError("dueDate", "must be a string or null", nil)
	}
	return &value, false, nil
}
