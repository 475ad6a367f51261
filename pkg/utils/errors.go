package utils

import (
	"context"
	"fmt"
	"net"
	"os"

	"github.com/pkg/errors"
)

// ErrorType represents the failure categories a run can end with
type ErrorType string

const (
	ErrorTypeInput              ErrorType = "input"
	ErrorTypeRasterization      ErrorType = "rasterization"
	ErrorTypeBackendUnavailable ErrorType = "backend_unavailable"
	ErrorTypeBackendTimeout     ErrorType = "backend_timeout"
	ErrorTypeOutputWrite        ErrorType = "output_write"
	ErrorTypeConfig             ErrorType = "config"
	ErrorTypeInternal           ErrorType = "internal"
)

// Process exit codes, one per error type
const (
	ExitOK                 = 0
	ExitInternal           = 1
	ExitInput              = 2
	ExitRasterization      = 3
	ExitBackendUnavailable = 4
	ExitBackendTimeout     = 5
	ExitOutputWrite        = 6
)

// AppError represents an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Hint    string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another AppError of the same type
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Type == t.Type
	}
	return false
}

// WithContext adds context information to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithHint attaches a remediation hint shown to the user
func (e *AppError) WithHint(hint string) *AppError {
	e.Hint = hint
	return e
}

// NewError creates a new application error
func NewError(errorType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewInputError reports a missing or unsupported source file
func NewInputError(message string, cause error) *AppError {
	return NewError(ErrorTypeInput, message, cause)
}

// NewRasterizationError reports a failed PDF conversion
func NewRasterizationError(message string, cause error) *AppError {
	return NewError(ErrorTypeRasterization, message, cause)
}

// NewBackendUnavailableError reports an unreachable service or missing library
func NewBackendUnavailableError(message string, cause error) *AppError {
	return NewError(ErrorTypeBackendUnavailable, message, cause)
}

// NewBackendTimeoutError reports a backend call that ran past its deadline
func NewBackendTimeoutError(message string, cause error) *AppError {
	return NewError(ErrorTypeBackendTimeout, message, cause)
}

// NewOutputWriteError reports a result that could not be written
func NewOutputWriteError(message string, cause error) *AppError {
	return NewError(ErrorTypeOutputWrite, message, cause)
}

// NewConfigError reports invalid configuration
func NewConfigError(message string, cause error) *AppError {
	return NewError(ErrorTypeConfig, message, cause)
}

// WrapError wraps an existing error with additional context.
// An empty errorType keeps the type of a wrapped AppError or classifies the cause.
func WrapError(err error, errorType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) && errorType == "" {
		return &AppError{
			Type:    appErr.Type,
			Message: message + ": " + appErr.Message,
			Hint:    appErr.Hint,
			Cause:   appErr.Cause,
			Context: appErr.Context,
		}
	}

	if errorType == "" {
		errorType = classifyError(err)
	}

	return &AppError{
		Type:    errorType,
		Message: message,
		Cause:   err,
		Context: make(map[string]interface{}),
	}
}

// classifyError maps well-known low level errors onto the taxonomy
func classifyError(err error) ErrorType {
	if err == nil {
		return ErrorTypeInternal
	}

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeBackendTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return ErrorTypeBackendTimeout
	case errors.Is(err, os.ErrNotExist):
		return ErrorTypeInput
	default:
		return ErrorTypeInternal
	}
}

// GetErrorType extracts the error type from an error
func GetErrorType(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return classifyError(err)
}

// IsType reports whether err carries the given type
func IsType(err error, errorType ErrorType) bool {
	return err != nil && GetErrorType(err) == errorType
}

// GetHint returns the remediation hint of err, if any
func GetHint(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Hint
	}
	return ""
}

// ExitCode maps an error to the process exit status
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	switch GetErrorType(err) {
	case ErrorTypeInput:
		return ExitInput
	case ErrorTypeRasterization:
		return ExitRasterization
	case ErrorTypeBackendUnavailable:
		return ExitBackendUnavailable
	case ErrorTypeBackendTimeout:
		return ExitBackendTimeout
	case ErrorTypeOutputWrite:
		return ExitOutputWrite
	default:
		return ExitInternal
	}
}
