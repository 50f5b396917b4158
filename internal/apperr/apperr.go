package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Error is an application error that maps directly to an HTTP status.
// Business logic returns these unchanged; the boundary turns them into the
// JSON envelope.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New builds an Error with an arbitrary status.
func New(status int, format string, args ...interface{}) *Error {
	return &Error{Status: status, Message: fmt.Sprintf(format, args...)}
}

// BadRequest is a 400: invalid or conflicting client input.
func BadRequest(format string, args ...interface{}) *Error {
	return New(http.StatusBadRequest, format, args...)
}

// Unauthorized is a 401: credential or current-password mismatch.
func Unauthorized(format string, args ...interface{}) *Error {
	return New(http.StatusUnauthorized, format, args...)
}

// Forbidden is a 403: an authorization guard rejected the request.
func Forbidden(format string, args ...interface{}) *Error {
	return New(http.StatusForbidden, format, args...)
}

// NotFound is a 404: missing resource.
func NotFound(format string, args ...interface{}) *Error {
	return New(http.StatusNotFound, format, args...)
}

// Envelope is the JSON error body returned for every failed request.
type Envelope struct {
	Error Detail `json:"error"`
}

// Detail carries the client-visible message and status.
type Detail struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// HTTPErrorHandler maps any error escaping a handler to the JSON envelope.
// Typed application errors keep their status and message; echo errors (404 on
// unmatched routes, 405) keep their status; everything else is logged and
// reported as an opaque 500.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal Server Error"

	var appErr *Error
	var echoErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		status = appErr.Status
		message = appErr.Message
	case errors.As(err, &echoErr):
		status = echoErr.Code
		if msg, ok := echoErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(status)
		}
	default:
		c.Logger().Error(err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, Envelope{Error: Detail{Message: message, Status: status}})
}
