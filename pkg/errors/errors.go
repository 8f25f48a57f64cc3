package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared by handlers and middleware
const (
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeUserSyncFailed    = "USER_SYNC_FAILED"
	CodeGenerationFailed  = "GENERATION_FAILED"
	CodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	CodeBadRequest        = "BAD_REQUEST"
	CodeNotFound          = "NOT_FOUND"
	CodeInternal          = "INTERNAL_ERROR"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
	cause      error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// WithCause records the internal error that produced this one. The cause is
// logged but never rendered to the client.
func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

// NewError creates a new application error
func NewError(statusCode int, code string, message string) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
	}
}

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(code string, message string) *AppError {
	return NewError(http.StatusBadRequest, code, message)
}

// NewUnauthorizedError creates a 401 Unauthorized error
func NewUnauthorizedError(code string, message string) *AppError {
	return NewError(http.StatusUnauthorized, code, message)
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(code string, message string) *AppError {
	return NewError(http.StatusNotFound, code, message)
}

// NewTooManyRequestsError creates a 429 Too Many Requests error
func NewTooManyRequestsError(code string, message string) *AppError {
	return NewError(http.StatusTooManyRequests, code, message)
}

// NewInternalServerError creates a 500 Internal Server Error
func NewInternalServerError(code string, message string) *AppError {
	return NewError(http.StatusInternalServerError, code, message)
}

// Unauthorized is returned when the caller has no verified identity
func Unauthorized() *AppError {
	return NewUnauthorizedError(CodeUnauthorized, "Unauthorized")
}

// SyncFailure is returned when the local user record could not be provisioned
func SyncFailure(cause error) *AppError {
	return NewInternalServerError(CodeUserSyncFailed, "User sync failed").WithCause(cause)
}

// GenerationFailure is returned when the generative-text provider call failed.
// The provider message is surfaced for diagnostics.
func GenerationFailure(cause error) *AppError {
	return NewInternalServerError(CodeGenerationFailed, cause.Error()).WithCause(cause)
}

// Is checks if the error is an AppError carrying the same code as target
func Is(err error, target *AppError) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code == target.Code
}

// FromError returns err as an AppError. Anything else becomes a generic 500
// that keeps err as its cause.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalServerError(CodeInternal, "An unexpected error occurred").WithCause(err)
}
