// Package services defines the business logic for consultation intake, the
// statistical-test catalog, and user profiles. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConsultationNotFound indicates that no consultation row exists for
	// the requested id.
	ErrConsultationNotFound = errors.New("consultation not found")

	// ErrStoreUnavailable is returned by read operations when the database is
	// unreachable. Intake writes never return it; they degrade instead.
	ErrStoreUnavailable = errors.New("storage unavailable")

	// ErrAttachmentTooLarge is returned when an uploaded file exceeds the
	// configured size limit.
	ErrAttachmentTooLarge = errors.New("attachment too large")

	// ErrUnsupportedAttachment is returned when an uploaded file's extension
	// is not on the allow-list.
	ErrUnsupportedAttachment = errors.New("unsupported attachment type")
)

// FieldError names a single invalid form field and why it was rejected.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError aggregates every field violation found in one request, so a
// client can fix the whole form in a single round trip.
type ValidationError struct {
	Fields []FieldError
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Reason))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// add appends a violation.
func (e *ValidationError) add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

// orNil returns the error value, or nil when no violations were recorded.
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
