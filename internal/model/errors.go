package model

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
)

// ValidationError rejects input before any mutation happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

func (e ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

// IsValidationError checks if an error is a validation error (including wrapped errors)
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// ConflictError represents a unique constraint hit that the caller needs to hear about.
type ConflictError struct {
	Field   string
	Message string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: %s", e.Field, e.Message)
}

func (e ConflictError) Unwrap() error { return ErrConflict }

func NewConflictError(field, message string) ConflictError {
	return ConflictError{Field: field, Message: message}
}

func IsConflictError(err error) bool {
	var ce ConflictError
	return errors.As(err, &ce)
}

// NotFoundError reports a missing user, entry, link or catalog row.
type NotFoundError struct {
	Field   string
	Message string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("not found %s: %s", e.Field, e.Message)
}

func (e NotFoundError) Unwrap() error { return ErrNotFound }

func NewNotFoundError(field, message string) NotFoundError {
	return NotFoundError{Field: field, Message: message}
}

func IsNotFoundError(err error) bool {
	var ne NotFoundError
	return errors.As(err, &ne)
}
