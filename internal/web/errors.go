package web

import (
	"errors"
	"net/http"

	"noticeboard/internal/board"
)

// statusFor maps a service error to an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, board.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, board.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, board.ErrDuplicateUsername), errors.Is(err, board.ErrLastAdmin):
		return http.StatusConflict
	case errors.Is(err, board.ErrAuthentication), errors.Is(err, board.ErrAuthorization):
		return http.StatusUnauthorized
	case errors.Is(err, board.ErrStoreBusy):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorMessage renders err for an end user. Infrastructure failures
// collapse to a generic message; details stay in the log.
func ErrorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, board.ErrAuthentication):
		return "Invalid credentials"
	case errors.Is(err, board.ErrAuthorization):
		return "Login required"
	case errors.Is(err, board.ErrStoreBusy):
		return "The board is busy, try again"
	case board.IsUserError(err):
		return err.Error()
	default:
		return "Internal error"
	}
}
