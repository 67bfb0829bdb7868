// Package apperr defines the error kinds reported across the reservation core.
package apperr

import (
	"errors"
	"fmt"

	"go.temporal.io/sdk/temporal"
)

type Kind string

const (
	KindValidation   Kind = "ValidationError"
	KindInvalidUser  Kind = "InvalidUserError"
	KindNotFound     Kind = "NotFoundError"
	KindCapacity     Kind = "CapacityError"
	KindSeatTaken    Kind = "SeatTakenError"
	KindConflict     Kind = "ConflictError"
	KindUnauthorized Kind = "UnauthorizedError"
	KindStorage      Kind = "StorageError"
)

// Error carries a kind and a human-readable message
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrInvalidUser  = &Error{Kind: KindInvalidUser}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrCapacity     = &Error{Kind: KindCapacity}
	ErrSeatTaken    = &Error{Kind: KindSeatTaken}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrStorage      = &Error{Kind: KindStorage}
)

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the package sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) *Error {
	return New(KindValidation, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, format, args...)
}

// Storage wraps a database failure. message names the failed step, e.g. "failed to book ticket".
func Storage(message string, err error) *Error {
	return &Error{Kind: KindStorage, Message: message, Err: err}
}

// KindOf returns the kind of err, StorageError for foreign errors and "" for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// MessageOf returns the human-readable part of err without wrapped causes.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// ToApplicationError converts err into a non-retryable Temporal application error
// whose type is the error kind.
func ToApplicationError(err error) error {
	if err == nil {
		return nil
	}
	return temporal.NewNonRetryableApplicationError(MessageOf(err), string(KindOf(err)), err)
}

// FromWorkflowError recovers the *Error carried by a workflow or activity failure.
func FromWorkflowError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		switch kind := Kind(appErr.Type()); kind {
		case KindValidation, KindInvalidUser, KindNotFound, KindCapacity,
			KindSeatTaken, KindConflict, KindUnauthorized, KindStorage:
			return &Error{Kind: kind, Message: appErr.Message()}
		}
	}
	return Storage("workflow failed", err)
}
