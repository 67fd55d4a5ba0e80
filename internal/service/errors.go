package service

import (
	"errors"

	"github.com/pageza/foodgram/backend/internal/store"
)

// Error kinds. Every *Error wraps exactly one of them so callers can branch
// with errors.Is. Field-level problems are reported as validation.Errors.
var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrRelationAbsent = errors.New("relation absent")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
)

// Error is a service failure with a message fit for the client.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// fromStore turns the store's sentinels into service errors with message
// for the client. Other errors pass through unchanged.
func fromStore(err error, notFound, conflict string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return newError(ErrNotFound, notFound)
	case errors.Is(err, store.ErrConflict):
		return newError(ErrConflict, conflict)
	default:
		return err
	}
}
