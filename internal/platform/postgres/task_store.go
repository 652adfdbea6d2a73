package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/platform/logger"
	"github.com/taskwell/taskwell-api/internal/store"
)

// taskColumns is the column list shared by every task SELECT.
const taskColumns = "id, title, description, priority, completed, due_date, tags, created_at, updated_at, deleted_at, version"

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
//
// Storage-expressible predicates (deletion state, priority, status,
// due-date buckets, tag membership) are pushed into SQL; free-text search
// matching, priority-rank sorting and pagination run application-side via
// the store package helpers, per the TaskStore contract.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// FindByID implements store.TaskStore.FindByID
// It retrieves a task by its unique ID, excluding soft-deleted rows.
// Returns store.ErrTaskNotFound if the task does not exist or is deleted.
func (s *PostgresTaskStore) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	return s.findByID(ctx, id, false)
}

// FindByIDIncludingDeleted implements store.TaskStore.FindByIDIncludingDeleted
// It retrieves a task by its unique ID regardless of deletion state.
func (s *PostgresTaskStore) FindByIDIncludingDeleted(
	ctx context.Context,
	id string,
) (*domain.Task, error) {
	return s.findByID(ctx, id, true)
}

func (s *PostgresTaskStore) findByID(
	ctx context.Context,
	id string,
	includeDeleted bool,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := fmt.Sprintf("SELECT %s FROM task WHERE id = $1", taskColumns)
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if IsNotFoundError(err) {
			log.Debug("task not found", slog.String("task_id", id))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id))
		return nil, MapError(err)
	}

	return task, nil
}

// FindMany implements store.TaskStore.FindMany
// It fetches the candidate set matching the storage-expressible predicates,
// then applies search filtering, sorting and pagination application-side.
func (s *PostgresTaskStore) FindMany(
	ctx context.Context,
	filters store.TaskFilters,
) ([]*domain.Task, error) {
	tasks, err := s.queryTasks(ctx, filters, false)
	if err != nil {
		return nil, err
	}

	tasks = store.FilterBySearch(tasks, filters.Search)
	store.SortTasks(tasks, filters.SortBy, filters.SortOrder)
	return store.Paginate(tasks, filters.Page, filters.Limit), nil
}

// Count implements store.TaskStore.Count
// It counts rows matching the FindMany predicate set, ignoring pagination.
// Unlike FindMany, the search predicate runs storage-side here (ILIKE over
// title, description and the tag list).
func (s *PostgresTaskStore) Count(ctx context.Context, filters store.TaskFilters) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where, args := buildTaskPredicates(filters, false, true)
	query := "SELECT COUNT(*) FROM task WHERE " + where

	var total int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		log.Error("failed to count tasks", slog.String("error", err.Error()))
		return 0, MapError(err)
	}

	return total, nil
}

// Create implements store.TaskStore.Create
// It persists a brand-new task row.
// Returns store.ErrTaskExists if the ID is already present.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID))
		return err
	}

	tags, err := json.Marshal(task.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	// Tags travel as text with an explicit cast; a []byte parameter would
	// be typed bytea, which does not coerce to jsonb.
	query := `
		INSERT INTO task (id, title, description, priority, completed, due_date, tags, created_at, updated_at, deleted_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8, $9, $10, $11)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.Title,
		task.Description,
		task.Priority,
		task.Completed,
		task.DueDate,
		string(tags),
		task.CreatedAt,
		task.UpdatedAt,
		task.DeletedAt,
		task.Version,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("duplicate task ID during create", slog.String("task_id", task.ID))
			return fmt.Errorf("%w: %v", store.ErrTaskExists, err)
		}
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID))
		return store.NewStoreError("task", "create", "insert failed", MapError(err))
	}

	log.Info("task created",
		slog.String("task_id", task.ID),
		slog.String("priority", string(task.Priority)))
	return nil
}

// Update implements store.TaskStore.Update
// It persists the full current state of the task keyed by ID.
// Returns store.ErrTaskNotFound if the row does not exist.
func (s *PostgresTaskStore) Update(ctx context.Context, id string, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", id))
		return err
	}

	tags, err := json.Marshal(task.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	query := `
		UPDATE task
		SET title = $1, description = $2, priority = $3, completed = $4,
		    due_date = $5, tags = $6::jsonb, updated_at = $7, deleted_at = $8, version = $9
		WHERE id = $10
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.Priority,
		task.Completed,
		task.DueDate,
		string(tags),
		task.UpdatedAt,
		task.DeletedAt,
		task.Version,
		id,
	)

	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", id))
		return store.NewStoreError("task", "update", "update failed", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		log.Debug("task not found for update", slog.String("task_id", id))
		return err
	}

	return nil
}

// Delete implements store.TaskStore.Delete
// It soft-deletes the task by setting deleted_at and updated_at directly
// in storage. Returns store.ErrTaskNotFound if no live row matches.
func (s *PostgresTaskStore) Delete(ctx context.Context, id string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := time.Now().UTC()
	query := `
		UPDATE task
		SET deleted_at = $1, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL
	`
	result, err := s.db.ExecContext(ctx, query, now, now, id)
	if err != nil {
		log.Error("failed to soft-delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id))
		return store.NewStoreError("task", "delete", "soft delete failed", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		log.Debug("task not found for delete", slog.String("task_id", id))
		return err
	}

	log.Info("task soft-deleted", slog.String("task_id", id))
	return nil
}

// FindDeleted implements store.TaskStore.FindDeleted
// It lists soft-deleted tasks, ignoring the status filter dimension,
// sorted by deletion time descending.
func (s *PostgresTaskStore) FindDeleted(
	ctx context.Context,
	filters store.TaskFilters,
) ([]*domain.Task, error) {
	tasks, err := s.queryTasks(ctx, filters, true)
	if err != nil {
		return nil, err
	}

	tasks = store.FilterBySearch(tasks, filters.Search)
	store.SortByDeletedAtDesc(tasks)
	return store.Paginate(tasks, filters.Page, filters.Limit), nil
}

// Restore implements store.TaskStore.Restore
// It clears deleted_at directly in storage.
// Returns store.ErrTaskNotFound if the row does not exist.
func (s *PostgresTaskStore) Restore(ctx context.Context, id string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE task
		SET deleted_at = NULL, updated_at = $1
		WHERE id = $2
	`
	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to restore task",
			slog.String("error", err.Error()),
			slog.String("task_id", id))
		return store.NewStoreError("task", "restore", "restore failed", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		log.Debug("task not found for restore", slog.String("task_id", id))
		return err
	}

	log.Info("task restored", slog.String("task_id", id))
	return nil
}

// queryTasks fetches the candidate rows for a listing query, applying only
// the storage-expressible predicates.
func (s *PostgresTaskStore) queryTasks(
	ctx context.Context,
	filters store.TaskFilters,
	deleted bool,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where, args := buildTaskPredicates(filters, deleted, false)
	query := fmt.Sprintf("SELECT %s FROM task WHERE %s", taskColumns, where)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			log.Warn("failed to close rows", slog.String("error", cerr.Error()))
		}
	}()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating task rows", slog.String("error", err.Error()))
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}

	return tasks, nil
}

// buildTaskPredicates builds the WHERE clause for the storage-expressible
// half of the filter set. The search predicate is included only when
// includeSearch is set (Count); listing queries resolve search
// application-side. The status dimension is ignored for deleted listings.
func buildTaskPredicates(
	filters store.TaskFilters,
	deleted bool,
	includeSearch bool,
) (string, []any) {
	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if deleted {
		conds = append(conds, "deleted_at IS NOT NULL")
	} else {
		conds = append(conds, "deleted_at IS NULL")
	}

	if filters.Priority != "" {
		conds = append(conds, "priority = "+arg(string(filters.Priority)))
	}

	if !deleted {
		switch filters.Status {
		case store.TaskStatusCompleted:
			conds = append(conds, "completed = TRUE")
		case store.TaskStatusIncomplete:
			conds = append(conds, "completed = FALSE")
		}
	}

	if filters.DueDate != "" {
		today, tomorrow, week := store.TodayWindow(time.Now())
		switch filters.DueDate {
		case store.DueDateOverdue:
			conds = append(conds, "due_date < "+arg(today), "completed = FALSE")
		case store.DueDateToday:
			conds = append(conds, "due_date >= "+arg(today), "due_date < "+arg(tomorrow))
		case store.DueDateWeek:
			conds = append(conds, "due_date >= "+arg(today), "due_date < "+arg(week))
		case store.DueDateNone:
			conds = append(conds, "due_date IS NULL")
		}
	}

	for _, tag := range filters.Tags {
		// jsonb array containment: every requested tag must be present
		member, err := json.Marshal([]string{tag})
		if err != nil {
			continue
		}
		conds = append(conds, "tags @> "+arg(string(member))+"::jsonb")
	}

	if includeSearch && filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		conds = append(conds, fmt.Sprintf(
			"(title ILIKE %s OR description ILIKE %s OR tags::text ILIKE %s)",
			arg(pattern), arg(pattern), arg(pattern),
		))
	}

	return strings.Join(conds, " AND "), args
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask maps a task row onto a domain entity.
func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var description sql.NullString
	var dueDate, deletedAt sql.NullTime
	var tags []byte

	err := row.Scan(
		&task.ID,
		&task.Title,
		&description,
		&task.Priority,
		&task.Completed,
		&dueDate,
		&tags,
		&task.CreatedAt,
		&task.UpdatedAt,
		&deletedAt,
		&task.Version,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		task.Description = &description.String
	}
	if dueDate.Valid {
		t := dueDate.Time.UTC()
		task.DueDate = &t
	}
	if deletedAt.Valid {
		t := deletedAt.Time.UTC()
		task.DeletedAt = &t
	}

	task.Tags = []string{}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &task.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags: %w", err)
		}
	}

	return &task, nil
}
