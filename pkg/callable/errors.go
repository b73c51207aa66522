// Package callable implements the request/response envelope and the typed
// error taxonomy shared by the backend callables and their clients.
package callable

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a callable failure.
type Kind string

const (
	Unauthenticated    Kind = "UNAUTHENTICATED"
	InvalidArgument    Kind = "INVALID_ARGUMENT"
	NotFound           Kind = "NOT_FOUND"
	FailedPrecondition Kind = "FAILED_PRECONDITION"
	PermissionDenied   Kind = "PERMISSION_DENIED"
	Internal           Kind = "INTERNAL"
)

// HTTPStatus returns the status code a Kind is transported with.
func (k Kind) HTTPStatus() int {
	switch k {
	case Unauthenticated:
		return http.StatusUnauthorized
	case InvalidArgument, FailedPrecondition:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case PermissionDenied:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Error is a typed callable failure.
type Error struct {
	Kind    Kind   `json:"status"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Errorf builds a typed error.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf reports the Kind carried by err, or Internal for untyped errors.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return Internal
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == kind
}
