package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.temporal.io/sdk/temporal"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("booking: %w", NotFound("reservation %d not found", 42))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "reservation 42 not found", MessageOf(err))
}

func TestKindOf_ForeignError(t *testing.T) {
	assert.Equal(t, KindStorage, KindOf(errors.New("connection reset")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestStorage_KeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Storage("failed to begin transaction", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrStorage)
	assert.Equal(t, "failed to begin transaction: connection refused", err.Error())
}

func TestApplicationErrorRoundTrip(t *testing.T) {
	original := New(KindCapacity, "flight %s is sold out", "f-1")

	converted := ToApplicationError(original)
	var appErr *temporal.ApplicationError
	assert.True(t, errors.As(converted, &appErr))
	assert.True(t, appErr.NonRetryable())
	assert.Equal(t, string(KindCapacity), appErr.Type())

	back := FromWorkflowError(converted)
	assert.ErrorIs(t, back, ErrCapacity)
	assert.Equal(t, "flight f-1 is sold out", MessageOf(back))
}

func TestFromWorkflowError_UnknownFailure(t *testing.T) {
	err := FromWorkflowError(errors.New("deadline exceeded"))
	assert.ErrorIs(t, err, ErrStorage)
	assert.Nil(t, FromWorkflowError(nil))
}
