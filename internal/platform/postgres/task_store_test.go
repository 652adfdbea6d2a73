package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/store"
)

// recordingDB captures the statement and arguments handed to the driver so
// tests can assert on parameter encoding without a live database.
type recordingDB struct {
	query  string
	args   []any
	result sql.Result
	err    error
}

func (db *recordingDB) ExecContext(
	_ context.Context,
	query string,
	args ...any,
) (sql.Result, error) {
	db.query = query
	db.args = args
	if db.err != nil {
		return nil, db.err
	}
	if db.result != nil {
		return db.result, nil
	}
	return fakeResult{rows: 1}, nil
}

func (db *recordingDB) QueryContext(
	_ context.Context,
	query string,
	args ...any,
) (*sql.Rows, error) {
	db.query = query
	db.args = args
	return nil, sql.ErrConnDone
}

func (db *recordingDB) QueryRowContext(_ context.Context, _ string, _ ...any) *sql.Row {
	return nil
}

func newTestTask(t *testing.T, tags []string) *domain.Task {
	t.Helper()
	task, err := domain.NewTask("task_abc123", "Write report", nil, domain.PriorityHigh, nil, tags)
	require.NoError(t, err)
	return task
}

// The tags column is jsonb; the marshaled value must reach the driver as a
// string, since a []byte parameter is sent as bytea and the insert fails
// with a type mismatch.
func TestCreateSendsTagsAsJSONText(t *testing.T) {
	db := &recordingDB{}
	s := NewPostgresTaskStore(db, nil)

	task := newTestTask(t, []string{"work", "urgent"})
	require.NoError(t, s.Create(context.Background(), task))

	require.Len(t, db.args, 11)
	tagsArg, ok := db.args[6].(string)
	require.True(t, ok, "tags parameter must be a string, got %T", db.args[6])
	assert.JSONEq(t, `["work","urgent"]`, tagsArg)
	assert.Contains(t, db.query, "$7::jsonb")
}

func TestUpdateSendsTagsAsJSONText(t *testing.T) {
	db := &recordingDB{}
	s := NewPostgresTaskStore(db, nil)

	task := newTestTask(t, []string{"home"})
	require.NoError(t, s.Update(context.Background(), task.ID, task))

	require.Len(t, db.args, 10)
	tagsArg, ok := db.args[5].(string)
	require.True(t, ok, "tags parameter must be a string, got %T", db.args[5])
	assert.JSONEq(t, `["home"]`, tagsArg)
	assert.Contains(t, db.query, "$6::jsonb")
}

func TestUpdateMissingRowReturnsNotFound(t *testing.T) {
	db := &recordingDB{result: fakeResult{rows: 0}}
	s := NewPostgresTaskStore(db, nil)

	task := newTestTask(t, nil)
	err := s.Update(context.Background(), task.ID, task)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestDeleteMissingRowReturnsNotFound(t *testing.T) {
	db := &recordingDB{result: fakeResult{rows: 0}}
	s := NewPostgresTaskStore(db, nil)

	err := s.Delete(context.Background(), "task_missing")
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestCreateWrapsDriverErrors(t *testing.T) {
	db := &recordingDB{err: &pgconn.PgError{Code: "23514", ConstraintName: "task_priority_check"}}
	s := NewPostgresTaskStore(db, nil)

	err := s.Create(context.Background(), newTestTask(t, nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)

	var storeErr *store.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "task", storeErr.Entity)
	assert.Equal(t, "create", storeErr.Operation)
}

func TestCreateDuplicateIDReturnsTaskExists(t *testing.T) {
	db := &recordingDB{err: &pgconn.PgError{Code: "23505", ConstraintName: "task_pkey"}}
	s := NewPostgresTaskStore(db, nil)

	err := s.Create(context.Background(), newTestTask(t, nil))
	assert.ErrorIs(t, err, store.ErrTaskExists)
}
