package cheque

import "errors"

// Kind classifies lifecycle failures. The HTTP layer maps each kind to a fixed status code.
type Kind string

const (
	KindInternal          Kind = "Internal"
	KindNotFound          Kind = "NotFound"
	KindInvalidTransition Kind = "InvalidTransition"
	KindExpired           Kind = "Expired"
	KindForbidden         Kind = "Forbidden"
	KindValidation        Kind = "ValidationError"
)

// Error is returned by every Manager operation that fails.
// Message is safe to show to clients; Err carries the underlying cause, if any.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, cheque.ErrNotFound) works
// regardless of message or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrNotFound          = &Error{Kind: KindNotFound, Message: "cheque not found"}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition, Message: "invalid transition"}
	ErrExpired           = &Error{Kind: KindExpired, Message: "cheque expired"}
	ErrForbidden         = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrValidation        = &Error{Kind: KindValidation, Message: "validation failed"}
)

// KindOf returns the kind of err, or KindInternal when err is not a lifecycle error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the client-safe message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "internal server error"
}
