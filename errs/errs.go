package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	Unauthenticated = NewUnauthenticatedError("unauthenticated")
)

type Error struct {
	Kind    Kind
	Message string
	Field   *string
}

type Kind string

const (
	KindInvalidArgument  Kind = "invalid_argument"
	KindInvalidOperation Kind = "invalid_operation"
	KindNotFound         Kind = "not_found"
	KindAlreadyExists    Kind = "already_exists"
	KindPermissionDenied Kind = "permission_denied"
	KindUnauthenticated  Kind = "unauthenticated"
)

func NewInvalidArgumentError(field, message string) *Error {
	return &Error{
		Kind:    KindInvalidArgument,
		Message: message,
		Field:   &field,
	}
}

// NewInvalidOperationError is for requests that are well formed
// but make no sense, like sending a direct message to yourself.
func NewInvalidOperationError(message string) *Error {
	return &Error{
		Kind:    KindInvalidOperation,
		Message: message,
	}
}

func NewNotFoundError(message string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: message,
	}
}

func NewAlreadyExistsError(field, message string) *Error {
	return &Error{
		Kind:    KindAlreadyExists,
		Message: message,
		Field:   &field,
	}
}

func NewPermissionDeniedError(message string) *Error {
	return &Error{
		Kind:    KindPermissionDenied,
		Message: message,
	}
}

func NewUnauthenticatedError(message string) *Error {
	return &Error{
		Kind:    KindUnauthenticated,
		Message: message,
	}
}

func (e *Error) Error() string {
	if e.Field != nil {
		return fmt.Sprintf("%s (field: %s): %s", e.Kind, *e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// KindOf returns the kind of the first [*Error] in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

func is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

func IsInvalidArgument(err error) bool  { return is(err, KindInvalidArgument) }
func IsInvalidOperation(err error) bool { return is(err, KindInvalidOperation) }
func IsNotFound(err error) bool         { return is(err, KindNotFound) }
func IsAlreadyExists(err error) bool    { return is(err, KindAlreadyExists) }
func IsPermissionDenied(err error) bool { return is(err, KindPermissionDenied) }
func IsUnauthenticated(err error) bool  { return is(err, KindUnauthenticated) }

func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	kind, ok := KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch kind {
	case KindInvalidArgument:
		return http.StatusUnprocessableEntity
	case KindInvalidOperation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAlreadyExists:
		return http.StatusConflict
	case KindPermissionDenied:
		return http.StatusForbidden
	case KindUnauthenticated:
		return http.StatusUnauthorized
	}

	return http.StatusInternalServerError
}
