package store

import (
	"sort"
	"strings"
	"time"

	"github.com/taskwell/taskwell-api/internal/domain"
)

// This file holds the application-side half of the query pipeline, shared
// by every TaskStore implementation: free-text search matching, sorting
// (including the priority severity rank that storage engines cannot sort
// natively), and pagination. Implementations apply these after the
// storage-expressible predicates have produced a candidate set, in the
// order search -> sort -> paginate.

// MatchesSearch reports whether the task matches the free-text query.
// The match is a case-insensitive substring check against the title, the
// description, and the comma-joined tag list. An empty query matches
// everything.
func MatchesSearch(task *domain.Task, query string) bool {
	if query == "" {
		return true
	}

	q := strings.ToLower(query)

	if strings.Contains(strings.ToLower(task.Title), q) {
		return true
	}
	if task.Description != nil && strings.Contains(strings.ToLower(*task.Description), q) {
		return true
	}
	return strings.Contains(strings.ToLower(strings.Join(task.Tags, ",")), q)
}

// FilterBySearch returns the tasks matching the free-text query, preserving
// order. With an empty query the input slice is returned unchanged.
func FilterBySearch(tasks []*domain.Task, query string) []*domain.Task {
	if query == "" {
		return tasks
	}

	filtered := make([]*domain.Task, 0, len(tasks))
	for _, task := range tasks {
		if MatchesSearch(task, query) {
			filtered = append(filtered, task)
		}
	}
	return filtered
}

// SortTasks sorts the tasks in place by the given field and order.
// Priority sorts by severity rank (LOW=0, MEDIUM=1, HIGH=2) rather than
// lexically; date fields compare as instants, with a missing due date
// ordering as the zero instant. The sort is stable.
func SortTasks(tasks []*domain.Task, sortBy SortField, order SortOrder) {
	dir := 1
	if order == SortDesc {
		dir = -1
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return compareTasks(tasks[i], tasks[j], sortBy)*dir < 0
	})
}

// compareTasks returns a negative, zero, or positive value ordering a
// before, equal to, or after b on the given field (ascending sense).
func compareTasks(a, b *domain.Task, sortBy SortField) int {
	switch sortBy {
	case SortByPriority:
		return a.Priority.Rank() - b.Priority.Rank()
	case SortByDueDate:
		return compareTimes(timeOrZero(a.DueDate), timeOrZero(b.DueDate))
	case SortByTitle:
		return strings.Compare(a.Title, b.Title)
	case SortByCompleted:
		return boolRank(a.Completed) - boolRank(b.Completed)
	default: // SortByCreatedAt
		return compareTimes(a.CreatedAt, b.CreatedAt)
	}
}

// Paginate returns the page window [(page-1)*limit, page*limit) of the
// already filtered and sorted task slice.
func Paginate(tasks []*domain.Task, page, limit int) []*domain.Task {
	start := (page - 1) * limit
	if start >= len(tasks) {
		return []*domain.Task{}
	}

	end := start + limit
	if end > len(tasks) {
		end = len(tasks)
	}
	return tasks[start:end]
}

// SortByDeletedAtDesc sorts the tasks in place by deletion time, most
// recently deleted first. Used as the default ordering for deleted-task
// listings.
func SortByDeletedAtDesc(tasks []*domain.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return timeOrZero(tasks[i].DeletedAt).After(timeOrZero(tasks[j].DeletedAt))
	})
}

// TodayWindow returns today's local calendar midnight for the given
// instant, along with the start of tomorrow and the start of the day one
// week out. The due-date buckets are all evaluated against these bounds.
func TodayWindow(now time.Time) (today, tomorrow, week time.Time) {
	today = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow = today.AddDate(0, 0, 1)
	week = today.AddDate(0, 0, 7)
	return today, tomorrow, week
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
