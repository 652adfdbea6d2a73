package api

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/store"
)

func TestParseTaskFiltersDefaults(t *testing.T) {
	filters, err := ParseTaskFilters(url.Values{})
	require.NoError(t, err)

	assert.Equal(t, store.DefaultPage, filters.Page)
	assert.Equal(t, store.DefaultLimit, filters.Limit)
	assert.Equal(t, store.SortByCreatedAt, filters.SortBy)
	assert.Equal(t, store.SortDesc, filters.SortOrder)
	assert.Empty(t, filters.Search)
	assert.Empty(t, filters.Tags)
}

func TestParseTaskFiltersFullSet(t *testing.T) {
	query := url.Values{}
	query.Set("page", "3")
	query.Set("limit", "10")
	query.Set("search", "report")
	query.Set("priority", "HIGH")
	query.Set("status", "incomplete")
	query.Set("dueDate", "week")
	query.Set("sortBy", "priority")
	query.Set("sortOrder", "asc")
	query.Set("tags", "work,urgent")

	filters, err := ParseTaskFilters(query)
	require.NoError(t, err)

	assert.Equal(t, 3, filters.Page)
	assert.Equal(t, 10, filters.Limit)
	assert.Equal(t, "report", filters.Search)
	assert.Equal(t, domain.PriorityHigh, filters.Priority)
	assert.Equal(t, store.TaskStatusIncomplete, filters.Status)
	assert.Equal(t, store.DueDateWeek, filters.DueDate)
	assert.Equal(t, store.SortByPriority, filters.SortBy)
	assert.Equal(t, store.SortAsc, filters.SortOrder)
	assert.Equal(t, []string{"work", "urgent"}, filters.Tags)
}

func TestParseTaskFiltersRepeatedTags(t *testing.T) {
	query := url.Values{"tags": []string{"work", "urgent"}}

	filters, err := ParseTaskFilters(query)
	require.NoError(t, err)
	assert.Equal(t, []string{"work", "urgent"}, filters.Tags)
}

func TestParseTaskFiltersRejectsLimitAboveMax(t *testing.T) {
	query := url.Values{}
	query.Set("limit", "5000")

	_, err := ParseTaskFilters(query)
	require.Error(t, err)

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "limit", validationErr.Field)

	query.Set("limit", "100")
	filters, err := ParseTaskFilters(query)
	require.NoError(t, err)
	assert.Equal(t, store.MaxLimit, filters.Limit)
}

func TestParseTaskFiltersRejectsBadValues(t *testing.T) {
	cases := map[string][2]string{
		"non-numeric page":  {"page", "abc"},
		"zero page":         {"page", "0"},
		"negative limit":    {"limit", "-1"},
		"unknown priority":  {"priority", "URGENT"},
		"unknown status":    {"status", "done"},
		"unknown bucket":    {"dueDate", "someday"},
		"unknown sort":      {"sortBy", "color"},
		"unknown direction": {"sortOrder", "sideways"},
	}

	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			query := url.Values{}
			query.Set(kv[0], kv[1])

			_, err := ParseTaskFilters(query)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestTaskToResponseProjection(t *testing.T) {
	desc := "details"
	task, err := domain.NewTask("task_1", "Project me", &desc, domain.PriorityLow, nil, nil)
	require.NoError(t, err)

	resp := taskToResponse(task)

	assert.Equal(t, "task_1", resp.ID)
	assert.Equal(t, "LOW", resp.Priority)
	require.NotNil(t, resp.Description)
	assert.Equal(t, "details", *resp.Description)
	assert.Nil(t, resp.DueDate)
	assert.Nil(t, resp.DeletedAt)
	assert.NotNil(t, resp.Tags)
	assert.Empty(t, resp.Tags)
	assert.NotEmpty(t, resp.CreatedAt)
	assert.Equal(t, 1, resp.Version)
}
