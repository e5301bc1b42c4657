package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	specific := ErrInvalidState.WithMessage("Registration X is approved")

	assert.ErrorIs(t, specific, ErrInvalidState)
	assert.NotErrorIs(t, specific, ErrNotFound)
	assert.Equal(t, "Registration X is approved", specific.Error())

	wrapped := fmt.Errorf("approve: %w", specific)
	assert.ErrorIs(t, wrapped, ErrInvalidState)
	assert.Equal(t, "INVALID_STATE", CodeOf(wrapped))
	assert.Equal(t, "", CodeOf(errors.New("plain")))
}

func TestDomainError_Wrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := ErrPersistence.Wrap(cause)

	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrPersistence.Message, err.Error())
}

func TestNewValidationError(t *testing.T) {
	single := NewValidationError(FieldError{Field: "email", Message: "email must be a valid email address"})
	assert.Equal(t, "email must be a valid email address", single.Error())
	assert.Len(t, single.Details, 1)

	multi := NewValidationError(
		FieldError{Field: "surname", Message: "surname is required"},
		FieldError{Field: "sex", Message: "sex must be one of: MALE FEMALE"},
	)
	assert.Equal(t, "Invalid fields: surname, sex", multi.Error())
	assert.ErrorIs(t, multi, ErrValidation)

	empty := NewValidationError()
	assert.Equal(t, ErrValidation.Message, empty.Error())
}

func TestNewPaginated(t *testing.T) {
	p := NewPaginated([]int{1, 2}, 45, 2, 20)
	assert.Equal(t, 3, p.TotalPages)

	zero := NewPaginated([]int{}, 0, 1, 0)
	assert.Equal(t, 0, zero.TotalPages)

	f := Filter{Page: 0, PageSize: 500}
	f.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 100, f.PageSize)
	assert.Equal(t, 0, f.Offset())
}
