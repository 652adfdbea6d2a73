package api

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/service"
	"github.com/taskwell/taskwell-api/internal/store"
)

// timestampFormat is the ISO 8601 layout with millisecond precision used
// for every timestamp the API emits.
const timestampFormat = "2006-01-02T15:04:05.000Z07:00"

// CreateTaskRequest defines the payload for the task creation endpoint.
type CreateTaskRequest struct {
	Title       string   `json:"title"       validate:"required,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=1000"`
	Priority    *string  `json:"priority"    validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	DueDate     *string  `json:"dueDate"     validate:"omitempty"`
	Tags        []string `json:"tags"        validate:"omitempty,max=10,dive,max=30"`
}

// UpdateTaskRequest defines the payload for the partial task update
// endpoint. Nil pointers mean the field was absent from the body. DueDate
// is kept raw so an explicit JSON null (clear the due date) can be told
// apart from an absent field. Version participates in the optimistic
// concurrency check; zero or absent skips it.
type UpdateTaskRequest struct {
	Title       *string         `json:"title"       validate:"omitempty,max=200"`
	Description *string         `json:"description" validate:"omitempty,max=1000"`
	Priority    *string         `json:"priority"    validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	Completed   *bool           `json:"completed"`
	DueDate     json.RawMessage `json:"dueDate"`
	Tags        *[]string       `json:"tags"        validate:"omitempty,max=10,dive,max=30"`
	Version     int             `json:"version"     validate:"omitempty,min=0"`
}

// ToggleTaskRequest defines the optional payload for the completion toggle
// endpoint.
type ToggleTaskRequest struct {
	Version int `json:"version" validate:"omitempty,min=0"`
}

// TaskResponse is the JSON projection of a task.
type TaskResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Priority    string   `json:"priority"`
	Completed   bool     `json:"completed"`
	DueDate     *string  `json:"dueDate"`
	Tags        []string `json:"tags"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
	DeletedAt   *string  `json:"deletedAt"`
	IsOverdue   bool     `json:"isOverdue"`
	Version     int      `json:"version"`
}

// PaginationResponse carries the page window of a task listing.
type PaginationResponse struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// TaskListResponse is the paginated envelope for task listings.
type TaskListResponse struct {
	Data       []TaskResponse     `json:"data"`
	Pagination PaginationResponse `json:"pagination"`
}

// taskToResponse converts a domain task to its API projection.
func taskToResponse(task *domain.Task) TaskResponse {
	tags := task.Tags
	if tags == nil {
		tags = []string{}
	}

	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    string(task.Priority),
		Completed:   task.Completed,
		DueDate:     formatOptionalTime(task.DueDate),
		Tags:        tags,
		CreatedAt:   task.CreatedAt.UTC().Format(timestampFormat),
		UpdatedAt:   task.UpdatedAt.UTC().Format(timestampFormat),
		DeletedAt:   formatOptionalTime(task.DeletedAt),
		IsOverdue:   task.IsOverdue(),
		Version:     task.Version,
	}
}

// tasksToResponse converts a slice of domain tasks, never returning nil so
// the JSON projection is always an array.
func tasksToResponse(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, taskToResponse(task))
	}
	return out
}

// pageToResponse converts a service TaskPage to the listing envelope.
func pageToResponse(page *service.TaskPage) TaskListResponse {
	return TaskListResponse{
		Data: tasksToResponse(page.Tasks),
		Pagination: PaginationResponse{
			Page:  page.Pagination.Page,
			Limit: page.Pagination.Limit,
			Total: page.Pagination.Total,
			Pages: page.Pagination.Pages,
		},
	}
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(timestampFormat)
	return &s
}

// ParseTaskFilters builds a filter set from listing query parameters,
// applying the documented defaults for anything absent. Unknown enum
// values and out-of-range numbers yield a ValidationError, including a
// limit above the store maximum. Tags accept both repeated parameters and
// a single comma-separated value.
func ParseTaskFilters(query url.Values) (store.TaskFilters, error) {
	filters := store.DefaultTaskFilters()

	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return filters, domain.NewValidationError("page", "must be a positive integer", nil)
		}
		filters.Page = page
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > store.MaxLimit {
			return filters, domain.NewValidationError("limit", "must be an integer between 1 and 100", nil)
		}
		filters.Limit = limit
	}

	filters.Search = query.Get("search")

	if raw := query.Get("priority"); raw != "" {
		priority := domain.Priority(raw)
		if !priority.IsValid() {
			return filters, domain.NewValidationError("priority", "must be one of LOW, MEDIUM, HIGH", nil)
		}
		filters.Priority = priority
	}

	if raw := query.Get("status"); raw != "" {
		switch store.TaskStatusFilter(raw) {
		case store.TaskStatusCompleted, store.TaskStatusIncomplete:
			filters.Status = store.TaskStatusFilter(raw)
		default:
			return filters, domain.NewValidationError("status", "must be completed or incomplete", nil)
		}
	}

	if raw := query.Get("dueDate"); raw != "" {
		switch store.DueDateFilter(raw) {
		case store.DueDateOverdue, store.DueDateToday, store.DueDateWeek, store.DueDateNone:
			filters.DueDate = store.DueDateFilter(raw)
		default:
			return filters, domain.NewValidationError("dueDate", "must be one of overdue, today, week, none", nil)
		}
	}

	for _, raw := range query["tags"] {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				filters.Tags = append(filters.Tags, tag)
			}
		}
	}

	if raw := query.Get("sortBy"); raw != "" {
		switch store.SortField(raw) {
		case store.SortByCreatedAt, store.SortByDueDate, store.SortByPriority,
			store.SortByTitle, store.SortByCompleted:
			filters.SortBy = store.SortField(raw)
		default:
			return filters, domain.NewValidationError(
				"sortBy", "must be one of createdAt, dueDate, priority, title, completed", nil)
		}
	}

	if raw := query.Get("sortOrder"); raw != "" {
		switch store.SortOrder(raw) {
		case store.SortAsc, store.SortDesc:
			filters.SortOrder = store.SortOrder(raw)
		default:
			return filters, domain.NewValidationError("sortOrder", "must be asc or desc", nil)
		}
	}

	return filters, nil
}
