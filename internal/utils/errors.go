package utils

import (
	"errors"
	"fmt"
)

type AppError struct {
	Code    string
	Message string
	Origin  error // Original error that caused this error, if any
}

func (appErr *AppError) Error() string {
	if appErr.Origin != nil {
		return appErr.Message + ": " + appErr.Origin.Error()
	}
	return appErr.Message
}

func (appErr *AppError) Unwrap() error {
	return appErr.Origin
}

// Standard error codes for the application
const (
	// Synchronization failures
	ErrFetchFailure      = "FETCH_FAILURE"
	ErrWriteFailure      = "WRITE_FAILURE"
	ErrValidationFailure = "VALIDATION_FAILURE"

	// Session errors
	ErrUnauthenticated = "UNAUTHENTICATED"
	ErrUnauthorized    = "UNAUTHORIZED"

	// Resource errors
	ErrNotFound     = "NOT_FOUND"
	ErrInvalidInput = "INVALID_INPUT"

	ErrConfig = "CONFIG_ERROR"

	// Actor communication errors
	ErrActorTimeout = "ACTOR_TIMEOUT"

	ErrDatabase = "database_error"
)

// Error creation helper functions
func NewAppError(code string, message string, originalErr error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Origin:  originalErr,
	}
}

// NewFetchFailure reports a transport error or non-success status on a read.
func NewFetchFailure(operation string, originalErr error) *AppError {
	return &AppError{
		Code:    ErrFetchFailure,
		Message: "Fetch failed: " + operation,
		Origin:  originalErr,
	}
}

// NewWriteFailure reports a transport error or non-success status on a create.
func NewWriteFailure(operation string, originalErr error) *AppError {
	return &AppError{
		Code:    ErrWriteFailure,
		Message: "Write failed: " + operation,
		Origin:  originalErr,
	}
}

func NewValidationFailure(reason string) *AppError {
	return &AppError{
		Code:    ErrValidationFailure,
		Message: "Validation failed: " + reason,
	}
}

func NewUnauthenticatedError(action string) *AppError {
	return &AppError{
		Code:    ErrUnauthenticated,
		Message: "You must sign in first to " + action,
	}
}

func NewConfigError(key string, reason string) *AppError {
	return &AppError{
		Code:    ErrConfig,
		Message: fmt.Sprintf("Invalid configuration %s: %s", key, reason),
	}
}

func NewActorTimeoutError(actorName string, originalErr error) *AppError {
	return &AppError{
		Code:    ErrActorTimeout,
		Message: "Actor communication timeout: " + actorName,
		Origin:  originalErr,
	}
}

// StatusError carries a non-success HTTP status from the content store.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("request failed with status: %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed with status: %d (%s)", e.StatusCode, e.Body)
}

// Helper method to check if an error is of a specific type
func IsErrorCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// ErrorCode returns the code of the outermost AppError in err's chain.
func ErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// AppErrorToHTTPStatus converts an AppError code to an HTTP status code.
func AppErrorToHTTPStatus(errorCode string) int {
	switch errorCode {
	case ErrNotFound:
		return 404 // http.StatusNotFound
	case ErrInvalidInput, ErrValidationFailure:
		return 400 // http.StatusBadRequest
	case ErrUnauthorized, ErrUnauthenticated:
		return 401 // http.StatusUnauthorized
	case ErrFetchFailure, ErrWriteFailure:
		return 502 // http.StatusBadGateway
	case ErrDatabase, ErrActorTimeout, ErrConfig:
		return 500 // http.StatusInternalServerError
	default:
		return 500 // http.StatusInternalServerError for unknown errors
	}
}
