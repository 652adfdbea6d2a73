package memory

import (
	"context"
	"sync"
	"time"

	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/store"
)

// MemoryTaskStore is a thread-safe in-memory implementation of
// store.TaskStore backed by a map keyed on task ID.
type MemoryTaskStore struct {
	mu    sync.RWMutex
	tasks map[string]*domain.Task
}

// Verify MemoryTaskStore implements store.TaskStore interface.
var _ store.TaskStore = (*MemoryTaskStore)(nil)

// NewMemoryTaskStore creates an empty in-memory task store.
func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{
		tasks: make(map[string]*domain.Task),
	}
}

// FindByID implements store.TaskStore.FindByID
func (s *MemoryTaskStore) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok || task.IsDeleted() {
		return nil, store.ErrTaskNotFound
	}
	return copyTask(task), nil
}

// FindByIDIncludingDeleted implements store.TaskStore.FindByIDIncludingDeleted
func (s *MemoryTaskStore) FindByIDIncludingDeleted(ctx context.Context, id string) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return copyTask(task), nil
}

// FindMany implements store.TaskStore.FindMany
func (s *MemoryTaskStore) FindMany(ctx context.Context, filters store.TaskFilters) ([]*domain.Task, error) {
	candidates := s.collect(filters, false)

	candidates = store.FilterBySearch(candidates, filters.Search)
	store.SortTasks(candidates, filters.SortBy, filters.SortOrder)
	return store.Paginate(candidates, filters.Page, filters.Limit), nil
}

// Count implements store.TaskStore.Count
func (s *MemoryTaskStore) Count(ctx context.Context, filters store.TaskFilters) (int64, error) {
	candidates := s.collect(filters, false)
	candidates = store.FilterBySearch(candidates, filters.Search)
	return int64(len(candidates)), nil
}

// Create implements store.TaskStore.Create
func (s *MemoryTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.ID]; exists {
		return store.ErrTaskExists
	}

	s.tasks[task.ID] = copyTask(task)
	return nil
}

// Update implements store.TaskStore.Update
func (s *MemoryTaskStore) Update(ctx context.Context, id string, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[id]; !exists {
		return store.ErrTaskNotFound
	}

	stored := copyTask(task)
	stored.ID = id
	s.tasks[id] = stored
	return nil
}

// Delete implements store.TaskStore.Delete
func (s *MemoryTaskStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok || task.IsDeleted() {
		return store.ErrTaskNotFound
	}

	now := time.Now().UTC()
	task.DeletedAt = &now
	task.UpdatedAt = now
	return nil
}

// FindDeleted implements store.TaskStore.FindDeleted
func (s *MemoryTaskStore) FindDeleted(ctx context.Context, filters store.TaskFilters) ([]*domain.Task, error) {
	candidates := s.collect(filters, true)

	candidates = store.FilterBySearch(candidates, filters.Search)
	store.SortByDeletedAtDesc(candidates)
	return store.Paginate(candidates, filters.Page, filters.Limit), nil
}

// Restore implements store.TaskStore.Restore
func (s *MemoryTaskStore) Restore(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return store.ErrTaskNotFound
	}

	task.DeletedAt = nil
	task.UpdatedAt = time.Now().UTC()
	return nil
}

// collect returns copies of all tasks in the requested deletion state that
// match the structured filter predicates. Free-text search, sorting, and
// pagination are applied by the callers via the shared store helpers.
func (s *MemoryTaskStore) collect(filters store.TaskFilters, deleted bool) []*domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	today, tomorrow, week := store.TodayWindow(time.Now())

	matched := make([]*domain.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		if task.IsDeleted() != deleted {
			continue
		}
		if !matchesPredicates(task, filters, deleted, today, tomorrow, week) {
			continue
		}
		matched = append(matched, copyTask(task))
	}
	return matched
}

// matchesPredicates applies the priority, status, due-date, and tag
// predicates. The status dimension is ignored for deleted listings.
func matchesPredicates(task *domain.Task, filters store.TaskFilters, deleted bool, today, tomorrow, week time.Time) bool {
	if filters.Priority != "" && task.Priority != filters.Priority {
		return false
	}

	if !deleted {
		switch filters.Status {
		case store.TaskStatusCompleted:
			if !task.Completed {
				return false
			}
		case store.TaskStatusIncomplete:
			if task.Completed {
				return false
			}
		}
	}

	switch filters.DueDate {
	case store.DueDateOverdue:
		if task.DueDate == nil || !task.DueDate.Before(today) || task.Completed {
			return false
		}
	case store.DueDateToday:
		if task.DueDate == nil || task.DueDate.Before(today) || !task.DueDate.Before(tomorrow) {
			return false
		}
	case store.DueDateWeek:
		if task.DueDate == nil || task.DueDate.Before(today) || !task.DueDate.Before(week) {
			return false
		}
	case store.DueDateNone:
		if task.DueDate != nil {
			return false
		}
	}

	for _, want := range filters.Tags {
		if !hasTag(task, want) {
			return false
		}
	}

	return true
}

func hasTag(task *domain.Task, tag string) bool {
	for _, t := range task.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// copyTask returns a deep copy so callers never alias stored state.
func copyTask(task *domain.Task) *domain.Task {
	dup := *task

	if task.Description != nil {
		desc := *task.Description
		dup.Description = &desc
	}
	if task.DueDate != nil {
		due := *task.DueDate
		dup.DueDate = &due
	}
	if task.DeletedAt != nil {
		del := *task.DeletedAt
		dup.DeletedAt = &del
	}
	if task.Tags != nil {
		dup.Tags = append([]string(nil), task.Tags...)
	}
	return &dup
}
