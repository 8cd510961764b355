package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// ErrorResponse is the standard format for API error responses.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewHTTPError builds an echo error whose body is an ErrorResponse.
func NewHTTPError(status int, code, message string) *echo.HTTPError {
	return echo.NewHTTPError(status, ErrorResponse{Code: code, Message: message})
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

// Health reports that the server is accepting requests.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Time: time.Now().UTC()})
}
