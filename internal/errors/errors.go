// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates user provided invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyResponse indicates a model returned no usable text.
	// Distinct from transport failures so callers can report it as a
	// content problem rather than a provider outage.
	ErrEmptyResponse = errors.New("empty model response")

	// ErrRateLimitExceeded indicates rate limit has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsInvalidInput reports whether err wraps ErrInvalidInput.
func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }

// IsEmptyResponse reports whether err wraps ErrEmptyResponse.
func IsEmptyResponse(err error) bool { return errors.Is(err, ErrEmptyResponse) }

// IsRateLimitExceeded reports whether err wraps ErrRateLimitExceeded.
func IsRateLimitExceeded(err error) bool { return errors.Is(err, ErrRateLimitExceeded) }

// NotFoundError identifies a missing stored record by entity and ID.
type NotFoundError struct {
	Entity string // e.g. "scheme of work", "lesson plan"
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// Is lets errors.Is(err, ErrNotFound) match NotFoundError values.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new not-found error.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrInvalidInput) match ValidationError values.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// GenerationError represents a failed content generation attempt with
// the pipeline stage it occurred in.
type GenerationError struct {
	Stage string // "scheme_of_work", "lesson_plan", "lesson_notes"
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (stage=%s): %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// NewGenerationError creates a new generation error.
func NewGenerationError(stage string, err error) *GenerationError {
	return &GenerationError{Stage: stage, Err: err}
}

// StoreError represents a persistence failure with the operation that caused it.
type StoreError struct {
	Op  string // e.g. "save_scheme", "get_lesson_plan"
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error (op=%s): %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new store error.
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

// GetUserMessage maps an error to the message returned to API clients.
// Validation and not-found messages are written to be shown; generation
// and store failures carry provider and SQL detail that is not, so those
// collapse to a generic message.
func GetUserMessage(err error) string {
	if err == nil {
		return ""
	}
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return fmt.Sprintf("content generation failed at the %s stage", genErr.Stage)
	}
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return "a storage error occurred"
	}
	return err.Error()
}
