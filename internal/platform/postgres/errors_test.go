package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/taskwell/taskwell-api/internal/store"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil passes through", nil, nil},
		{"no rows maps to not found", sql.ErrNoRows, store.ErrNotFound},
		{
			"unique violation maps to duplicate",
			&pgconn.PgError{Code: "23505"},
			store.ErrDuplicate,
		},
		{
			"check violation maps to invalid entity",
			&pgconn.PgError{Code: "23514", ConstraintName: "task_priority_check"},
			store.ErrInvalidEntity,
		},
		{
			"not null violation maps to invalid entity",
			&pgconn.PgError{Code: "23502", ColumnName: "title"},
			store.ErrInvalidEntity,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := MapError(tc.in)
			if tc.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tc.want)
		})
	}
}

func TestMapErrorPassesUnknownThrough(t *testing.T) {
	unknown := errors.New("connection reset")
	assert.Equal(t, unknown, MapError(unknown))
}

func TestIsUniqueViolation(t *testing.T) {
	wrapped := fmt.Errorf("insert failed: %w", &pgconn.PgError{Code: "23505"})
	assert.True(t, IsUniqueViolation(wrapped))
	assert.False(t, IsUniqueViolation(errors.New("other")))
}

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, IsNotFoundError(sql.ErrNoRows))
	assert.True(t, IsNotFoundError(store.ErrTaskNotFound))
	assert.False(t, IsNotFoundError(errors.New("other")))
}

type fakeResult struct {
	rows int64
	err  error
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, r.err }

func TestCheckRowsAffected(t *testing.T) {
	assert.NoError(t, CheckRowsAffected(fakeResult{rows: 1}, store.ErrTaskNotFound))

	err := CheckRowsAffected(fakeResult{rows: 0}, store.ErrTaskNotFound)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	err = CheckRowsAffected(nil, store.ErrTaskNotFound)
	assert.Error(t, err)

	err = CheckRowsAffected(fakeResult{err: errors.New("driver botched it")}, store.ErrTaskNotFound)
	assert.Error(t, err)
}
