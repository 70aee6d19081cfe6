// Package httputil provides HTTP utility functions for request and response handling.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/authserver/internal/errors"
)

// ErrorResponse represents a structured error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// InputErrorsResponse reports per-field problems with a request.
type InputErrorsResponse struct {
	InputErrors map[string]string `json:"input_errors"`
}

type errorMapping struct {
	status  int
	message string
}

// errorMappings is keyed by apperrors.Code. An empty message echoes the error text.
var errorMappings = map[string]errorMapping{
	"not_found":     {http.StatusNotFound, "The requested resource was not found"},
	"conflict":      {http.StatusConflict, "A conflict occurred with existing data"},
	"invalid_input": {http.StatusUnprocessableEntity, ""},
	"unauthorized":  {http.StatusUnauthorized, "Authentication is required"},
	"locked":        {http.StatusLocked, "Account is locked due to too many failed authentication attempts"},
	"forbidden":     {http.StatusForbidden, "You don't have permission to access this resource"},
}

// HandleErrorGin maps domain errors to HTTP status codes and writes a JSON response.
// Errors without a known sentinel become a 500 whose details stay in the log.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	code := apperrors.Code(err)
	mapping, ok := errorMappings[code]
	if !ok {
		code = "internal_error"
		mapping = errorMapping{http.StatusInternalServerError, "An internal error occurred"}
	}

	message := mapping.message
	if message == "" {
		message = err.Error()
	}

	if logger != nil {
		level := slog.LevelWarn
		if mapping.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.LogAttrs(c, level, "request failed",
			slog.Int("status_code", mapping.status),
			slog.String("error_code", code),
			slog.Any("error", err),
		)
	}

	c.JSON(mapping.status, ErrorResponse{Error: code, Message: message})
}

// HandleBadRequestGin writes a 400 Bad Request response for malformed JSON or parameters using Gin.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "bad_request",
		Message: err.Error(),
	})
}

// HandleValidationErrorGin writes a 422 Unprocessable Entity response for validation errors using Gin.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("validation failed", slog.Any("error", err))
	}

	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation_error",
		Message: err.Error(),
	})
}

// HandleInputErrorsGin writes per-field input errors with the given status code.
func HandleInputErrorsGin(c *gin.Context, statusCode int, inputErrors map[string]string, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("input errors", slog.Int("status_code", statusCode), slog.Any("fields", inputErrors))
	}

	c.JSON(statusCode, InputErrorsResponse{InputErrors: inputErrors})
}
