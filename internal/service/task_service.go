package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/platform/logger"
	"github.com/taskwell/taskwell-api/internal/store"
)

// taskIDRandomBytes is the number of random bytes behind a generated task ID.
const taskIDRandomBytes = 12

// TaskServiceError is a custom error type for task service errors.
type TaskServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
func NewTaskServiceError(operation, message string, err error) *TaskServiceError {
	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// CreateTaskInput carries the fields accepted when creating a task.
// DueDate is the raw client value: either a full RFC 3339 timestamp or a
// bare yyyy-mm-dd calendar date, which normalizes to midnight UTC.
type CreateTaskInput struct {
	Title       string
	Description *string
	Priority    domain.Priority
	DueDate     *string
	Tags        []string
}

// UpdateTaskInput carries a partial task update. Nil pointers mean the
// field was not supplied. DueDateNull requests an explicit null-out of the
// due date and takes precedence over DueDate. Version participates in the
// optimistic concurrency check; zero means "no check".
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Priority    *domain.Priority
	Completed   *bool
	DueDate     *string
	DueDateNull bool
	Tags        []string
	TagsPresent bool
	Version     int
}

// Pagination describes the page window of a task listing.
type Pagination struct {
	Page  int
	Limit int
	Total int64
	Pages int
}

// TaskPage is the paginated envelope returned by GetTasks.
type TaskPage struct {
	Tasks      []*domain.Task
	Pagination Pagination
}

// TaskService provides task lifecycle operations on top of the TaskStore.
// It owns ID generation, due-date normalization and the optimistic
// concurrency protocol.
type TaskService interface {
	// GetTasks lists tasks matching the filter set, with pagination totals.
	GetTasks(ctx context.Context, filters store.TaskFilters) (*TaskPage, error)

	// GetTask retrieves a single task by ID.
	// Returns store.ErrTaskNotFound if it does not exist or is deleted.
	GetTask(ctx context.Context, id string) (*domain.Task, error)

	// CreateTask creates and persists a new task.
	CreateTask(ctx context.Context, input CreateTaskInput) (*domain.Task, error)

	// UpdateTask applies a partial update with an optional version check.
	// Returns ErrVersionConflict on a version mismatch.
	UpdateTask(ctx context.Context, id string, input UpdateTaskInput) (*domain.Task, error)

	// ToggleTaskComplete flips the completion state with an optional
	// version check (zero version skips the check).
	ToggleTaskComplete(ctx context.Context, id string, version int) (*domain.Task, error)

	// DeleteTask soft-deletes the task. The row stays in storage.
	DeleteTask(ctx context.Context, id string) error

	// RestoreTask clears a soft-deleted task's deletion mark.
	// Returns store.ErrTaskNotFound if the task is absent or not deleted.
	RestoreTask(ctx context.Context, id string) (*domain.Task, error)

	// GetDeletedTasks lists soft-deleted tasks; the status filter
	// dimension is ignored.
	GetDeletedTasks(ctx context.Context, filters store.TaskFilters) ([]*domain.Task, error)
}

// taskServiceImpl implements the TaskService interface.
type taskServiceImpl struct {
	taskStore store.TaskStore
	logger    *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if the task store dependency is nil.
func NewTaskService(taskStore store.TaskStore, logger *slog.Logger) (TaskService, error) {
	if taskStore == nil {
		return nil, domain.NewValidationError("taskStore", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		taskStore: taskStore,
		logger:    logger.With(slog.String("component", "task_service")),
	}, nil
}

// GetTasks implements TaskService.GetTasks
// It issues the listing query and the matching count concurrently and joins
// both before building the envelope; the two have no ordering dependency.
func (s *taskServiceImpl) GetTasks(
	ctx context.Context,
	filters store.TaskFilters,
) (*TaskPage, error) {
	var (
		tasks []*domain.Task
		total int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = s.taskStore.FindMany(gctx, filters)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.taskStore.Count(gctx, filters)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, NewTaskServiceError("list", "failed to query tasks", err)
	}

	if tasks == nil {
		tasks = []*domain.Task{}
	}

	return &TaskPage{
		Tasks: tasks,
		Pagination: Pagination{
			Page:  filters.Page,
			Limit: filters.Limit,
			Total: total,
			Pages: pageCount(total, filters.Limit),
		},
	}, nil
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	return s.taskStore.FindByID(ctx, id)
}

// CreateTask implements TaskService.CreateTask
// It generates the opaque task ID, normalizes the due date, and persists a
// new entity starting at version 1, incomplete and not deleted.
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	input CreateTaskInput,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	id, err := generateTaskID()
	if err != nil {
		return nil, NewTaskServiceError("create", "failed to generate task ID", err)
	}

	dueDate, err := normalizeDueDate(input.DueDate)
	if err != nil {
		return nil, err
	}

	task, err := domain.NewTask(id, input.Title, input.Description, input.Priority, dueDate, input.Tags)
	if err != nil {
		return nil, err
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		return nil, err
	}

	log.Info("task created",
		slog.String("task_id", task.ID),
		slog.String("priority", string(task.Priority)))
	return task, nil
}

// UpdateTask implements TaskService.UpdateTask
// A supplied non-zero version must match the stored task's current version
// or the update is rejected with ErrVersionConflict. A zero version skips
// the check entirely; this mirrors the long-standing client contract where
// omitting the version opts out of optimistic concurrency.
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	id string,
	input UpdateTaskInput,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.taskStore.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := checkVersion(input.Version, task.Version); err != nil {
		log.Warn("version conflict on update",
			slog.String("task_id", id),
			slog.Int("supplied_version", input.Version),
			slog.Int("current_version", task.Version))
		return nil, err
	}

	update := domain.TaskUpdate{
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Completed:   input.Completed,
		Tags:        input.Tags,
		TagsPresent: input.TagsPresent,
	}

	if input.DueDateNull {
		update.ClearDueDate = true
	} else if input.DueDate != nil {
		dueDate, err := normalizeDueDate(input.DueDate)
		if err != nil {
			return nil, err
		}
		update.DueDate = dueDate
	}

	if err := task.Update(update); err != nil {
		return nil, err
	}

	if err := s.taskStore.Update(ctx, id, task); err != nil {
		return nil, err
	}

	return task, nil
}

// ToggleTaskComplete implements TaskService.ToggleTaskComplete
func (s *taskServiceImpl) ToggleTaskComplete(
	ctx context.Context,
	id string,
	version int,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.taskStore.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := checkVersion(version, task.Version); err != nil {
		log.Warn("version conflict on toggle",
			slog.String("task_id", id),
			slog.Int("supplied_version", version),
			slog.Int("current_version", task.Version))
		return nil, err
	}

	task.ToggleComplete()

	if err := s.taskStore.Update(ctx, id, task); err != nil {
		return nil, err
	}

	return task, nil
}

// DeleteTask implements TaskService.DeleteTask
// The task is soft-deleted through the entity so the version increments;
// no row is ever physically removed.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, id string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.taskStore.FindByID(ctx, id)
	if err != nil {
		return err
	}

	task.SoftDelete()

	if err := s.taskStore.Update(ctx, id, task); err != nil {
		return err
	}

	log.Info("task soft-deleted", slog.String("task_id", id))
	return nil
}

// RestoreTask implements TaskService.RestoreTask
// The task is loaded including deleted rows and restored through the
// entity, keeping a single restore code path that bumps the version.
func (s *taskServiceImpl) RestoreTask(ctx context.Context, id string) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.taskStore.FindByIDIncludingDeleted(ctx, id)
	if err != nil {
		return nil, err
	}

	if !task.IsDeleted() {
		log.Debug("restore requested for task that is not deleted",
			slog.String("task_id", id))
		return nil, store.ErrTaskNotFound
	}

	task.Restore()

	if err := s.taskStore.Update(ctx, id, task); err != nil {
		return nil, err
	}

	log.Info("task restored", slog.String("task_id", id))
	return task, nil
}

// GetDeletedTasks implements TaskService.GetDeletedTasks
func (s *taskServiceImpl) GetDeletedTasks(
	ctx context.Context,
	filters store.TaskFilters,
) ([]*domain.Task, error) {
	// The status dimension does not apply to deleted listings.
	filters.Status = ""

	tasks, err := s.taskStore.FindDeleted(ctx, filters)
	if err != nil {
		return nil, err
	}

	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return tasks, nil
}

// checkVersion applies the optimistic concurrency rule: a non-zero supplied
// version must equal the current one.
func checkVersion(supplied, current int) error {
	if supplied != 0 && supplied != current {
		return ErrVersionConflict
	}
	return nil
}

// pageCount returns ceil(total/limit).
func pageCount(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// generateTaskID produces an opaque unique task identifier of the form
// "task_" followed by url-safe base64 random bytes.
func generateTaskID() (string, error) {
	b := make([]byte, taskIDRandomBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return "task_" + base64.RawURLEncoding.EncodeToString(b), nil
}

// normalizeDueDate parses the raw client due-date value. A value containing
// a time component must be RFC 3339; a bare yyyy-mm-dd calendar date is
// normalized to midnight UTC. A nil input yields a nil due date.
func normalizeDueDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}

	value := *raw
	var (
		parsed time.Time
		err    error
	)

	if strings.Contains(value, "T") {
		parsed, err = time.Parse(time.RFC3339, value)
	} else {
		parsed, err = time.Parse("2006-01-02", value)
	}
	if err != nil {
		return nil, domain.NewValidationError("dueDate", "must be an ISO 8601 date or datetime", nil)
	}

	utc := parsed.UTC()
	return &utc, nil
}
