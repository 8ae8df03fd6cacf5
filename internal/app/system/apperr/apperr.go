// Package apperr defines the error taxonomy shared by the engines, the
// stores, and the HTTP boundary.
//
// Kinds:
//   - Validation: malformed or out-of-range input. Detected before any
//     mutation.
//   - Authorization: role or scope denial. The message is deliberately
//     generic; which of role/scope failed is logged, never returned.
//   - NotFound: missing document or a dangling hierarchy reference.
//   - Conflict: a duplicate where uniqueness is required (e.g. a second
//     report for the same centre and week).
//   - StateConflict: a precondition no longer holds, usually because a
//     concurrent actor transitioned the same document first. Callers
//     should refresh and reconsider rather than blindly retry.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuthorization
	KindNotFound
	KindConflict
	KindStateConflict
)

// Error is a classified error. Msg is safe to return to the caller.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Validation returns a validation error with a formatted message.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// Authorization returns the generic denial error. The detail is for
// logs only and is carried on the wrapped error, not the message.
func Authorization(detail string) error {
	return &Error{Kind: KindAuthorization, Msg: "not permitted", Err: errors.New(detail)}
}

// NotFound returns a not-found error for the named thing.
func NotFound(what string) error {
	return &Error{Kind: KindNotFound, Msg: what + " not found"}
}

// Conflict returns a duplicate-conflict error.
func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// StateConflict returns a stale-precondition error.
func StateConflict(format string, args ...any) error {
	return &Error{Kind: KindStateConflict, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, err error, msg string) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of err, or 0 if err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Status maps an error to the HTTP status code the boundary returns.
// Unclassified errors map to 500.
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindStateConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the caller-safe message for err. Unclassified errors
// collapse to a generic message so internals never leak.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "internal error"
}
