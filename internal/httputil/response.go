// Package httputil provides HTTP utility functions for request and response handling.
package httputil

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/identity/internal/errors"
)

// ErrorResponse represents a structured error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// sentinelStatus maps each application sentinel to its status code and error name.
var sentinelStatus = []struct {
	sentinel error
	status   int
	name     string
}{
	{apperrors.ErrNotFound, http.StatusNotFound, "not_found"},
	{apperrors.ErrConflict, http.StatusConflict, "conflict"},
	{apperrors.ErrInvalidInput, http.StatusUnprocessableEntity, "invalid_input"},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{apperrors.ErrLocked, http.StatusLocked, "locked"},
	{apperrors.ErrForbidden, http.StatusForbidden, "forbidden"},
}

// StatusFor returns the HTTP status and error name for err, falling back to 500.
func StatusFor(err error) (int, string) {
	for _, s := range sentinelStatus {
		if apperrors.Is(err, s.sentinel) {
			return s.status, s.name
		}
	}
	return http.StatusInternalServerError, "internal_error"
}

// PublicMessage strips the trailing sentinel from a domain error so the caller sees
// "invalid credentials" rather than "invalid credentials: unauthorized".
func PublicMessage(err error) string {
	msg := err.Error()
	for _, s := range sentinelStatus {
		if apperrors.Is(err, s.sentinel) {
			trimmed := strings.TrimSuffix(msg, ": "+s.sentinel.Error())
			if trimmed != "" {
				return trimmed
			}
		}
	}
	return msg
}

// HandleErrorGin maps domain errors to HTTP status codes and returns a JSON response using Gin.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	HandleCodedErrorGin(c, err, "", logger)
}

// HandleCodedErrorGin works like HandleErrorGin and adds a machine-readable code to the body.
// Internal errors never expose their message or code.
func HandleCodedErrorGin(c *gin.Context, err error, code string, logger *slog.Logger) {
	if err == nil {
		return
	}

	statusCode, name := StatusFor(err)
	errorResponse := ErrorResponse{Error: name}

	if statusCode == http.StatusInternalServerError {
		// For unknown/internal errors, don't expose details to the client
		errorResponse.Message = "An internal error occurred"
	} else {
		errorResponse.Message = PublicMessage(err)
		errorResponse.Code = code
	}

	// Log the full error details (including wrapped errors)
	if logger != nil {
		level := slog.LevelWarn
		if statusCode == http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request failed",
			slog.Int("status_code", statusCode),
			slog.String("error_code", name),
			slog.Any("error", err),
		)
	}

	c.JSON(statusCode, errorResponse)
}

// HandleBadRequestGin writes a 400 Bad Request response for malformed JSON or parameters using Gin.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}

	errorResponse := ErrorResponse{
		Error:   "bad_request",
		Message: err.Error(),
	}

	c.JSON(http.StatusBadRequest, errorResponse)
}

// HandleValidationErrorGin writes a 422 Unprocessable Entity response for validation errors using Gin.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("validation failed", slog.Any("error", err))
	}

	errorResponse := ErrorResponse{
		Error:   "validation_error",
		Message: PublicMessage(err),
	}

	c.JSON(http.StatusUnprocessableEntity, errorResponse)
}
