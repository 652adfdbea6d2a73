package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestTask(t *testing.T) *Task {
	t.Helper()

	task, err := NewTask("task_test123", "Write report", nil, PriorityMedium, nil, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return task
}

func TestNewTask(t *testing.T) {
	desc := "Quarterly numbers"
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	task, err := NewTask("task_abc", "Write report", &desc, PriorityHigh, &due, []string{"work"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.Version != 1 {
		t.Errorf("Expected version 1, got %d", task.Version)
	}
	if task.Completed {
		t.Error("Expected new task to be incomplete")
	}
	if task.DeletedAt != nil {
		t.Error("Expected new task to not be deleted")
	}
	if task.Priority != PriorityHigh {
		t.Errorf("Expected priority HIGH, got %s", task.Priority)
	}
	if task.CreatedAt.IsZero() || task.UpdatedAt.IsZero() {
		t.Error("Expected non-zero timestamps")
	}
}

func TestNewTaskDefaults(t *testing.T) {
	task, err := NewTask("task_abc", "Write report", nil, "", nil, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.Priority != PriorityMedium {
		t.Errorf("Expected default priority MEDIUM, got %s", task.Priority)
	}
	if task.Tags == nil || len(task.Tags) != 0 {
		t.Errorf("Expected empty tag slice, got %v", task.Tags)
	}
}

func TestTaskValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Task)
		field    string
		message  string
		sentinel error
	}{
		{
			name:    "empty title",
			mutate:  func(task *Task) { task.Title = "" },
			field:   "title",
			message: "task title is required",
		},
		{
			name:    "whitespace title",
			mutate:  func(task *Task) { task.Title = "   " },
			field:   "title",
			message: "task title is required",
		},
		{
			name:    "title too long",
			mutate:  func(task *Task) { task.Title = strings.Repeat("a", MaxTitleLength+1) },
			field:   "title",
			message: "task title must be 200 characters or less",
		},
		{
			name: "description too long",
			mutate: func(task *Task) {
				desc := strings.Repeat("a", MaxDescriptionLength+1)
				task.Description = &desc
			},
			field:   "description",
			message: "task description must be 1000 characters or less",
		},
		{
			name:     "invalid priority",
			mutate:   func(task *Task) { task.Priority = "URGENT" },
			field:    "priority",
			message:  "priority must be LOW, MEDIUM or HIGH",
			sentinel: ErrInvalidPriority,
		},
		{
			name: "too many tags",
			mutate: func(task *Task) {
				task.Tags = make([]string, MaxTags+1)
			},
			field:   "tags",
			message: "task cannot have more than 10 tags",
		},
		{
			name: "tag too long",
			mutate: func(task *Task) {
				task.Tags = []string{strings.Repeat("x", MaxTagLength+1)}
			},
			field:   "tags",
			message: "tag must be 30 characters or less",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			task := newTestTask(t)
			tc.mutate(task)

			err := task.Validate()
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Expected ValidationError, got %T", err)
			}
			if vErr.Field != tc.field {
				t.Errorf("Expected field %q, got %q", tc.field, vErr.Field)
			}
			if vErr.Message != tc.message {
				t.Errorf("Expected message %q, got %q", tc.message, vErr.Message)
			}

			sentinel := tc.sentinel
			if sentinel == nil {
				sentinel = ErrValidation
			}
			if !errors.Is(err, sentinel) {
				t.Errorf("Expected error to wrap %v", sentinel)
			}
		})
	}
}

func TestToggleCompleteBumpsVersion(t *testing.T) {
	task := newTestTask(t)

	task.ToggleComplete()
	if !task.Completed {
		t.Error("Expected task to be completed after first toggle")
	}
	if task.Version != 2 {
		t.Errorf("Expected version 2, got %d", task.Version)
	}

	task.ToggleComplete()
	if task.Completed {
		t.Error("Expected task to be incomplete after second toggle")
	}
	if task.Version != 3 {
		t.Errorf("Expected version 3, got %d", task.Version)
	}
}

func TestMarkCompletedAlwaysIncrementsVersion(t *testing.T) {
	task := newTestTask(t)

	task.MarkCompleted()
	task.MarkCompleted()

	if task.Version != 3 {
		t.Errorf("Expected version 3 after two MarkCompleted calls, got %d", task.Version)
	}
}

func TestMutationRefreshesUpdatedAt(t *testing.T) {
	task := newTestTask(t)
	before := task.UpdatedAt

	task.MarkCompleted()

	if task.UpdatedAt.Before(before) {
		t.Error("Expected UpdatedAt to be >= its previous value")
	}
}

func TestIsOverdue(t *testing.T) {
	task := newTestTask(t)

	if task.IsOverdue() {
		t.Error("Expected task without due date to not be overdue")
	}

	past := time.Now().UTC().Add(-24 * time.Hour)
	task.DueDate = &past
	if !task.IsOverdue() {
		t.Error("Expected task with past due date to be overdue")
	}

	task.MarkCompleted()
	if task.IsOverdue() {
		t.Error("Expected completed task to not be overdue")
	}

	future := time.Now().UTC().Add(24 * time.Hour)
	task.DueDate = &future
	task.MarkIncomplete()
	if task.IsOverdue() {
		t.Error("Expected task with future due date to not be overdue")
	}
}

func TestSoftDeleteAndRestore(t *testing.T) {
	task := newTestTask(t)

	task.SoftDelete()
	if !task.IsDeleted() {
		t.Error("Expected task to be deleted after SoftDelete")
	}
	if task.Version != 2 {
		t.Errorf("Expected version 2 after SoftDelete, got %d", task.Version)
	}

	task.Restore()
	if task.IsDeleted() {
		t.Error("Expected task to not be deleted after Restore")
	}
	if task.Version != 3 {
		t.Errorf("Expected version 3 after Restore, got %d", task.Version)
	}
}

func TestUpdateAppliesOnlySuppliedFields(t *testing.T) {
	desc := "original"
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	task, err := NewTask("task_abc", "Original title", &desc, PriorityLow, &due, []string{"one"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	newTitle := "New title"
	if err := task.Update(TaskUpdate{Title: &newTitle}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.Title != newTitle {
		t.Errorf("Expected title %q, got %q", newTitle, task.Title)
	}
	if task.Description == nil || *task.Description != desc {
		t.Error("Expected description to be untouched")
	}
	if task.Priority != PriorityLow {
		t.Error("Expected priority to be untouched")
	}
	if task.DueDate == nil || !task.DueDate.Equal(due) {
		t.Error("Expected due date to be untouched")
	}
	if task.Version != 2 {
		t.Errorf("Expected version 2, got %d", task.Version)
	}
}

func TestUpdateClearDueDate(t *testing.T) {
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	task, err := NewTask("task_abc", "Title", nil, PriorityMedium, &due, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := task.Update(TaskUpdate{ClearDueDate: true}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.DueDate != nil {
		t.Error("Expected due date to be cleared")
	}
}

func TestUpdateValidationFailureLeavesTaskUnchanged(t *testing.T) {
	task := newTestTask(t)
	originalTitle := task.Title
	originalVersion := task.Version

	badTitle := ""
	goodPriority := PriorityHigh
	err := task.Update(TaskUpdate{Title: &badTitle, Priority: &goodPriority})
	if err == nil {
		t.Fatal("Expected validation error, got nil")
	}

	if task.Title != originalTitle {
		t.Error("Expected title to be unchanged after failed update")
	}
	if task.Priority != PriorityMedium {
		t.Error("Expected priority to be unchanged after failed update")
	}
	if task.Version != originalVersion {
		t.Errorf("Expected version %d after failed update, got %d", originalVersion, task.Version)
	}
}

func TestPriorityRank(t *testing.T) {
	if PriorityHigh.Rank() != 2 || PriorityMedium.Rank() != 1 || PriorityLow.Rank() != 0 {
		t.Error("Expected ranks HIGH=2, MEDIUM=1, LOW=0")
	}
}
