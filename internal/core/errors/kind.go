package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind is the stable error category returned to callers of the core operations.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindInvalidTransition Kind = "invalid_transition"
	KindCapacityExceeded  Kind = "capacity_exceeded"
	KindValidationFailed  Kind = "validation_failed"
)

// Error carries a Kind plus a human-readable message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error of the same Kind, so errors.Is(err, &Error{Kind: KindConflict}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return newf(KindNotFound, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return newf(KindConflict, format, args...)
}

func InvalidTransition(format string, args ...interface{}) *Error {
	return newf(KindInvalidTransition, format, args...)
}

func CapacityExceeded(format string, args ...interface{}) *Error {
	return newf(KindCapacityExceeded, format, args...)
}

func ValidationFailed(format string, args ...interface{}) *Error {
	return newf(KindValidationFailed, format, args...)
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error to its response status and error_type.
// Errors without a Kind are internal.
func HTTPStatus(err error) (int, string) {
	switch KindOf(err) {
	case KindValidationFailed:
		return http.StatusBadRequest, HttpValidationError
	case KindNotFound:
		return http.StatusNotFound, HttpNotFoundError
	case KindConflict:
		return http.StatusConflict, HttpConflictError
	case KindCapacityExceeded:
		return http.StatusConflict, HttpCapacityExceededError
	case KindInvalidTransition:
		return http.StatusUnprocessableEntity, HttpInvalidTransitionError
	default:
		return http.StatusInternalServerError, HttpInternalError
	}
}
