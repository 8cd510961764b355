package server

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/dungeonwave/internal/handlers"
	"github.com/nfrund/dungeonwave/internal/middleware"
)

// setupErrorHandling installs an error handler that logs unhandled errors
// with a stack trace and answers with an ErrorResponse.
func setupErrorHandling(e *echo.Echo) {
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if !errors.As(err, &he) {
			middleware.FromContext(c.Request().Context()).Error("Internal Server Error (Unhandled)",
				slog.String("error", err.Error()),
				slog.String("method", c.Request().Method),
				slog.String("path", c.Path()),
				slog.String("stack_trace", string(debug.Stack())),
			)
			he = handlers.NewHTTPError(http.StatusInternalServerError, "internal", http.StatusText(http.StatusInternalServerError))
		}

		body := he.Message
		if msg, ok := he.Message.(string); ok {
			body = handlers.ErrorResponse{Code: codeFor(he.Code), Message: msg}
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(he.Code)
		} else {
			writeErr = c.JSON(he.Code, body)
		}
		if writeErr != nil {
			slog.Error("failed to write error response", "error", writeErr)
		}
	}
}

func codeFor(status int) string {
	switch status {
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusTooManyRequests:
		return "too_many_requests"
	case http.StatusServiceUnavailable:
		return "unavailable"
	case http.StatusBadRequest:
		return "bad_request"
	default:
		return "internal"
	}
}
