// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the standard response utilities shared by all endpoints:
// a structured error envelope with stable machine-readable codes, and small
// helpers that keep success and failure shapes uniform.
//
// Example error response:
//
//	HTTP/1.1 422 Unprocessable Entity
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "validation_failed",
//	  "message": "full_name: required; email: invalid address",
//	  "fields": [{"field": "full_name", "reason": "required"}]
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bahithi/platform-backend/internal/http/middleware"
	"github.com/bahithi/platform-backend/internal/services"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
// Fields is populated only for validation failures, listing every violation
// so clients can fix the whole form in one round trip.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"resource not found"`
	// Per-field violations for validation_failed responses
	Fields []services.FieldError `json:"fields,omitempty"`
}

// fail aborts the request with a structured error. Server errors (>=500) are
// logged through the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	failFields(c, status, code, msg, nil)
}

func failFields(c *gin.Context, status int, code, msg string, fields []services.FieldError) {
	resp := ErrorResponse{
		RequestID: middleware.RequestIDFrom(c),
		Code:      code,
		Message:   msg,
		Fields:    fields,
	}

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail(), used by router-level handlers
// (404/405) so every response shares one envelope.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
