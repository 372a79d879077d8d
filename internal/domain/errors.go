package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrForbidden    ErrorCode = "FORBIDDEN"

	// Pipeline errors
	ErrValidation       ErrorCode = "VALIDATION_ERROR"
	ErrUnsupportedMedia ErrorCode = "UNSUPPORTED_MEDIA"
	ErrResourceLimit    ErrorCode = "RESOURCE_LIMIT_EXCEEDED"
	ErrEmptyContent     ErrorCode = "EMPTY_CONTENT"
	ErrSchemaValidation ErrorCode = "SCHEMA_VALIDATION_FAILED"
	ErrGenerationFailed ErrorCode = "GENERATION_FAILED"
	ErrExternalService  ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrPersistence      ErrorCode = "PERSISTENCE_ERROR"

	// Quiz errors
	ErrQuizNotFound ErrorCode = "QUIZ_NOT_FOUND"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithDetail attaches run-scoped context (which stage failed, retries used)
// without changing the error code.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details,omitempty"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
		Details: e.Details,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Helper functions for common errors

func NewNotFoundError(message string) *DomainError {
	return NewError(ErrNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(ErrInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(ErrInternal, message, err)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(ErrUnauthorized, message, nil)
}

func NewForbiddenError(message string) *DomainError {
	return NewError(ErrForbidden, message, nil)
}

func NewValidationError(message string) *DomainError {
	return NewError(ErrValidation, message, nil)
}

func NewUnsupportedMediaError(message string) *DomainError {
	return NewError(ErrUnsupportedMedia, message, nil)
}

func NewResourceLimitError(message string) *DomainError {
	return NewError(ErrResourceLimit, message, nil)
}

func NewEmptyContentError(message string) *DomainError {
	return NewError(ErrEmptyContent, message, nil)
}

func NewSchemaValidationError(message string, err error) *DomainError {
	return NewError(ErrSchemaValidation, message, err)
}

func NewGenerationFailedError(attempts int, err error) *DomainError {
	e := NewError(ErrGenerationFailed, fmt.Sprintf("quiz generation failed after %d attempts", attempts), err)
	return e.WithDetail("attempts", attempts)
}

func NewExternalServiceError(message string, err error) *DomainError {
	return NewError(ErrExternalService, message, err)
}

func NewPersistenceError(message string, err error) *DomainError {
	return NewError(ErrPersistence, message, err)
}

func NewQuizNotFoundError(quizID string) *DomainError {
	return NewError(ErrQuizNotFound, fmt.Sprintf("Quiz not found with ID: %s", quizID), nil)
}

// CodeOf returns the error's domain code, or ErrInternal for foreign errors.
func CodeOf(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ErrInternal
}
