package store

import (
	"context"

	"github.com/taskwell/taskwell-api/internal/domain"
)

// TaskStatusFilter narrows a query to completed or incomplete tasks.
type TaskStatusFilter string

// Possible status filter values. The empty string matches both states.
const (
	TaskStatusCompleted  TaskStatusFilter = "completed"
	TaskStatusIncomplete TaskStatusFilter = "incomplete"
)

// DueDateFilter narrows a query to one of the due-date buckets, all
// evaluated against today's local calendar midnight.
type DueDateFilter string

// Possible due-date filter values.
const (
	// DueDateOverdue matches tasks due strictly before today that are not completed.
	DueDateOverdue DueDateFilter = "overdue"
	// DueDateToday matches tasks due today (today <= due < today+1d).
	DueDateToday DueDateFilter = "today"
	// DueDateWeek matches tasks due within the next seven days (today <= due < today+7d).
	DueDateWeek DueDateFilter = "week"
	// DueDateNone matches tasks without a due date.
	DueDateNone DueDateFilter = "none"
)

// SortField selects the attribute a task listing is ordered by.
type SortField string

// Possible sort fields. SortByPriority sorts by severity rank
// (LOW < MEDIUM < HIGH), not lexically.
const (
	SortByCreatedAt SortField = "createdAt"
	SortByDueDate   SortField = "dueDate"
	SortByPriority  SortField = "priority"
	SortByTitle     SortField = "title"
	SortByCompleted SortField = "completed"
)

// SortOrder selects ascending or descending ordering.
type SortOrder string

// Possible sort orders.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Default pagination values applied when a filter set leaves them unset.
const (
	DefaultPage  = 1
	DefaultLimit = 25
	MaxLimit     = 100
)

// TaskFilters is the combined filter, sort, and pagination parameter set
// for task listing queries. Zero values for Search, Priority, Status,
// DueDate and Tags mean "no restriction" on that dimension.
type TaskFilters struct {
	Page      int
	Limit     int
	Search    string
	Priority  domain.Priority
	Status    TaskStatusFilter
	DueDate   DueDateFilter
	Tags      []string
	SortBy    SortField
	SortOrder SortOrder
}

// DefaultTaskFilters returns the filter set applied when a listing request
// carries no explicit parameters: first page of 25, newest first.
func DefaultTaskFilters() TaskFilters {
	return TaskFilters{
		Page:      DefaultPage,
		Limit:     DefaultLimit,
		SortBy:    SortByCreatedAt,
		SortOrder: SortDesc,
	}
}

// Offset returns the number of rows to skip for the configured page.
func (f TaskFilters) Offset() int {
	return (f.Page - 1) * f.Limit
}

// TaskStore defines the interface for task data persistence.
//
// Implementations translate between domain entities and their storage
// representation and apply the filter/sort/paginate semantics described on
// TaskFilters; they own no business rules beyond that. Two implementations
// exist: the PostgreSQL adapter in platform/postgres and an in-memory
// adapter in platform/memory used by tests.
type TaskStore interface {
	// FindByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist or is soft-deleted.
	FindByID(ctx context.Context, id string) (*domain.Task, error)

	// FindByIDIncludingDeleted retrieves a task by its unique ID regardless
	// of its deletion state. The restore flow uses this to load a
	// soft-deleted task before clearing its DeletedAt through the entity.
	// Returns ErrTaskNotFound if the task does not exist at all.
	FindByIDIncludingDeleted(ctx context.Context, id string) (*domain.Task, error)

	// FindMany returns the tasks matching the filter set, excluding
	// soft-deleted rows, sorted and paginated per the filters. Search
	// matching, priority-rank sorting and pagination are resolved
	// application-side, in that order, after the storage-expressible
	// predicates have narrowed the candidate set.
	FindMany(ctx context.Context, filters TaskFilters) ([]*domain.Task, error)

	// Count returns the total number of rows matching the same predicate
	// set as FindMany, ignoring pagination. Used for page-count math.
	Count(ctx context.Context, filters TaskFilters) (int64, error)

	// Create persists a brand-new task.
	// Returns ErrTaskExists if the ID is already present.
	Create(ctx context.Context, task *domain.Task) error

	// Update persists the full current state of the task keyed by ID.
	// Returns ErrTaskNotFound if the row does not exist.
	Update(ctx context.Context, id string, task *domain.Task) error

	// Delete soft-deletes the task by setting DeletedAt and UpdatedAt
	// directly in storage. The service layer normally goes through
	// Task.SoftDelete plus Update instead; this is a direct convenience
	// that must stay consistent with that semantic.
	// Returns ErrTaskNotFound if the row does not exist.
	Delete(ctx context.Context, id string) error

	// FindDeleted is like FindMany but restricted to soft-deleted rows.
	// The Status filter dimension is ignored; the default sort is
	// DeletedAt descending.
	FindDeleted(ctx context.Context, filters TaskFilters) ([]*domain.Task, error)

	// Restore clears DeletedAt directly in storage.
	// Returns ErrTaskNotFound if the row does not exist.
	Restore(ctx context.Context, id string) error
}
