package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := New(CategoryValidation, SeverityWarning, "price must be positive")
	assert.Equal(t, "validation (warning): price must be positive", err.Error())

	cause := errors.New("disk full")
	wrapped := Wrap(cause, CategoryStore, SeverityFatal, "insert failed")
	assert.Equal(t, "store (fatal): insert failed: disk full", wrapped.Error())
	assert.Equal(t, cause, wrapped.Unwrap())
}

func TestCategoryPredicates(t *testing.T) {
	err := DuplicateDate("2024-06-10")
	assert.True(t, IsCategory(err, CategoryDuplicateDate))
	assert.False(t, IsCategory(err, CategoryValidation))
	assert.Equal(t, CategoryDuplicateDate, GetCategory(err))
	assert.Equal(t, CategoryInternal, GetCategory(fmt.Errorf("plain")))
	assert.Equal(t, "2024-06-10", err.Context["date"])
}

func TestWithContextAccumulates(t *testing.T) {
	err := NotFound("workday", "wd-1").WithContext("caller", "close")
	require.NotNil(t, err.Context)
	assert.Equal(t, "wd-1", err.Context["id"])
	assert.Equal(t, "close", err.Context["caller"])
}

func TestCLIAdapterExitCodes(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, nil)

	assert.Equal(t, 0, adapter.ExitCodeFor(nil))
	assert.Equal(t, 2, adapter.ExitCodeFor(Validation("empty picker set")))
	assert.Equal(t, 2, adapter.ExitCodeFor(DuplicateDate("2024-06-10")))
	assert.Equal(t, 4, adapter.ExitCodeFor(NotFound("shift", "s-1")))
	assert.Equal(t, 11, adapter.ExitCodeFor(StoreUnavailable("add", errors.New("boom"))))
	assert.Equal(t, 1, adapter.ExitCodeFor(errors.New("plain")))
}

func TestCLIAdapterFormatting(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, nil)
	verbose := NewCLIErrorAdapter(true, nil)

	err := DuplicateDate("2024-06-10")
	assert.Equal(t, "a workday already exists for this date", adapter.FormatError(err))
	assert.Contains(t, verbose.FormatError(err), "duplicate_date")

	internal := New(CategoryInternal, SeverityError, "unexpected state")
	assert.Equal(t, "internal: unexpected state", adapter.FormatError(internal))
}
