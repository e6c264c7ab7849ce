// Package apperr defines the error kinds surfaced by the services and how
// they map onto HTTP status codes at the boundary.
package apperr

import (
	"errors"
	"net/http"

	"github.com/rotisserie/eris"
)

// Error kinds. Services wrap these with context; callers test with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidReference = errors.New("invalid reference")
	ErrInvalid          = errors.New("invalid input")
)

// NotFound returns an ErrNotFound carrying msg.
func NotFound(msg string) error {
	return eris.Wrap(ErrNotFound, msg)
}

// Conflict returns an ErrConflict carrying a formatted message.
func Conflict(format string, args ...any) error {
	return eris.Wrapf(ErrConflict, format, args...)
}

// InvalidReference returns an ErrInvalidReference carrying a formatted message.
func InvalidReference(format string, args ...any) error {
	return eris.Wrapf(ErrInvalidReference, format, args...)
}

// Invalid returns an ErrInvalid carrying a formatted message.
func Invalid(format string, args ...any) error {
	return eris.Wrapf(ErrInvalid, format, args...)
}

// Status maps an error onto the HTTP status code the boundary should use.
// Anything outside the taxonomy is a store failure.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict),
		errors.Is(err, ErrInvalidReference),
		errors.Is(err, ErrInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client facing text for err. Store failures are not
// echoed back.
func Message(err error) string {
	if Status(err) == http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}
