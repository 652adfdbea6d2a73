package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, IsNotFoundError(ErrNotFound))
	assert.True(t, IsNotFoundError(ErrTaskNotFound))
	assert.True(t, IsNotFoundError(fmt.Errorf("lookup: %w", ErrTaskNotFound)))
	assert.False(t, IsNotFoundError(ErrDuplicate))
	assert.False(t, IsNotFoundError(errors.New("other")))
}

func TestIsDuplicateError(t *testing.T) {
	assert.True(t, IsDuplicateError(ErrDuplicate))
	assert.True(t, IsDuplicateError(ErrTaskExists))
	assert.False(t, IsDuplicateError(ErrNotFound))
}

func TestStoreErrorMessage(t *testing.T) {
	err := NewStoreError("task", "update", "update failed", ErrNotFound)
	assert.Equal(t, "update operation on task failed: update failed: entity not found", err.Error())

	bare := NewStoreError("task", "create", "insert failed", nil)
	assert.Equal(t, "create operation on task failed: insert failed", bare.Error())
}

func TestStoreErrorUnwrap(t *testing.T) {
	err := NewStoreError("task", "delete", "soft delete failed", ErrTaskNotFound)

	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.ErrorIs(t, err, ErrNotFound)

	var storeErr *StoreError
	assert.ErrorAs(t, fmt.Errorf("service: %w", err), &storeErr)
	assert.Equal(t, "delete", storeErr.Operation)
}
