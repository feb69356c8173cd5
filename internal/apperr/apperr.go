// Package apperr classifies failures so the HTTP layer can translate them
// into a status code and a caller-safe message in one place.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type Kind int

const (
	KindInternal Kind = iota
	KindAuthenticationMissing
	KindAuthenticationInvalid
	KindAuthorizationDenied
	KindValidation
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindAuthenticationMissing:
		return "authentication_missing"
	case KindAuthenticationInvalid:
		return "authentication_invalid"
	case KindAuthorizationDenied:
		return "authorization_denied"
	case KindValidation:
		return "validation_failed"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// HTTPStatus maps a kind to the status code returned to the caller.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindAuthenticationMissing:
		return http.StatusUnauthorized
	case KindAuthenticationInvalid, KindAuthorizationDenied:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match two *Error values of the same kind and message,
// so package-level sentinels keep working after being returned by value.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing entity, e.g. NotFound("project") reads "Project not found".
func NotFound(what string) *Error {
	if what != "" {
		what = strings.ToUpper(what[:1]) + what[1:]
	}
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

// Unauthorized rejects bad credentials at login. It shares the 401 status
// with a missing token.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindAuthenticationMissing, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindAuthorizationDenied, Message: message}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps a persistence or unexpected failure. The message is for logs only.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf reports the kind of err. Unclassified errors are internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// PublicMessage is the text safe to show to a caller. Internal failures
// never leak their details.
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Message
	}
	return "Internal server error"
}
