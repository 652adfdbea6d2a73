package domain

import (
	"strings"
	"time"
)

// Priority represents the urgency level of a task.
type Priority string

// Possible priority values, ordered from least to most urgent.
const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Validation limits for task fields.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
	MaxTags              = 10
	MaxTagLength         = 30
)

// Rank returns the severity rank of the priority (LOW=0, MEDIUM=1, HIGH=2).
// Sorting by priority uses this rank rather than lexical order.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

// IsValid reports whether the priority is one of the known levels.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Task represents a single task record. A task is never physically removed:
// a non-nil DeletedAt marks it soft-deleted, and Restore clears it again.
// Version increments by one on every state-changing operation and backs the
// optimistic concurrency check in the service layer.
type Task struct {
	ID          string
	Title       string
	Description *string
	Priority    Priority
	Completed   bool
	DueDate     *time.Time
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
	Version     int
}

// TaskUpdate carries a partial update for a task. Nil pointer fields are
// left untouched. ClearDueDate removes an existing due date; it takes
// precedence over DueDate.
type TaskUpdate struct {
	Title        *string
	Description  *string
	Priority     *Priority
	Completed    *bool
	DueDate      *time.Time
	ClearDueDate bool
	Tags         []string
	TagsPresent  bool
}

// NewTask creates a new Task with the given ID and field values.
// The caller (the service layer) owns ID generation. The new task starts
// incomplete, not deleted, at version 1, with creation and update
// timestamps set to the current UTC time.
// Returns a ValidationError if any field violates the domain rules.
func NewTask(
	id, title string,
	description *string,
	priority Priority,
	dueDate *time.Time,
	tags []string,
) (*Task, error) {
	if priority == "" {
		priority = PriorityMedium
	}
	if tags == nil {
		tags = []string{}
	}

	now := time.Now().UTC()
	task := &Task{
		ID:          id,
		Title:       title,
		Description: description,
		Priority:    priority,
		Completed:   false,
		DueDate:     dueDate,
		Tags:        tags,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     1,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns a ValidationError tagged with the offending field if not.
func (t *Task) Validate() error {
	if t.ID == "" {
		return NewValidationError("id", "task ID cannot be empty", ErrInvalidID)
	}

	if strings.TrimSpace(t.Title) == "" {
		return NewValidationError("title", "task title is required", nil)
	}

	if len(t.Title) > MaxTitleLength {
		return NewValidationError("title", "task title must be 200 characters or less", nil)
	}

	if t.Description != nil && len(*t.Description) > MaxDescriptionLength {
		return NewValidationError(
			"description",
			"task description must be 1000 characters or less",
			nil,
		)
	}

	if !t.Priority.IsValid() {
		return NewValidationError("priority", "priority must be LOW, MEDIUM or HIGH", ErrInvalidPriority)
	}

	if len(t.Tags) > MaxTags {
		return NewValidationError("tags", "task cannot have more than 10 tags", nil)
	}

	for _, tag := range t.Tags {
		if len(tag) > MaxTagLength {
			return NewValidationError("tags", "tag must be 30 characters or less", nil)
		}
	}

	return nil
}

// MarkCompleted sets the task to completed, refreshes UpdatedAt and
// increments the version. The version increments even if the task was
// already completed.
func (t *Task) MarkCompleted() {
	t.Completed = true
	t.touch()
}

// MarkIncomplete sets the task back to incomplete, refreshes UpdatedAt and
// increments the version.
func (t *Task) MarkIncomplete() {
	t.Completed = false
	t.touch()
}

// ToggleComplete flips the completion state of the task.
func (t *Task) ToggleComplete() {
	if t.Completed {
		t.MarkIncomplete()
	} else {
		t.MarkCompleted()
	}
}

// IsOverdue reports whether the task has a due date strictly in the past
// and has not been completed. It has no side effects.
func (t *Task) IsOverdue() bool {
	if t.DueDate == nil || t.Completed {
		return false
	}
	return t.DueDate.Before(time.Now().UTC())
}

// IsDeleted reports whether the task is currently soft-deleted.
func (t *Task) IsDeleted() bool {
	return t.DeletedAt != nil
}

// SoftDelete marks the task as deleted by setting DeletedAt, refreshes
// UpdatedAt and increments the version. The record stays in storage.
func (t *Task) SoftDelete() {
	now := time.Now().UTC()
	t.DeletedAt = &now
	t.touch()
}

// Restore clears DeletedAt, refreshes UpdatedAt and increments the version.
// The service layer is responsible for checking that the task was deleted
// before calling Restore.
func (t *Task) Restore() {
	t.DeletedAt = nil
	t.touch()
}

// Update applies the fields present in the given partial update, refreshes
// UpdatedAt and increments the version, then validates the result. The
// update is staged against a copy so a validation failure leaves the task
// unmodified.
func (t *Task) Update(update TaskUpdate) error {
	staged := *t

	if update.Title != nil {
		staged.Title = *update.Title
	}
	if update.Description != nil {
		staged.Description = update.Description
	}
	if update.Priority != nil {
		staged.Priority = *update.Priority
	}
	if update.Completed != nil {
		staged.Completed = *update.Completed
	}
	if update.ClearDueDate {
		staged.DueDate = nil
	} else if update.DueDate != nil {
		staged.DueDate = update.DueDate
	}
	if update.TagsPresent {
		staged.Tags = update.Tags
		if staged.Tags == nil {
			staged.Tags = []string{}
		}
	}

	if err := staged.Validate(); err != nil {
		return err
	}

	*t = staged
	t.touch()
	return nil
}

// touch refreshes UpdatedAt and increments the version.
func (t *Task) touch() {
	t.UpdatedAt = time.Now().UTC()
	t.Version++
}
