package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"

	"prsboot/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context. The code is inherited from an
// AppError cause, derived from a domain sentinel, or INTERNAL_ERROR otherwise.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    GetCode(err),
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is or wraps an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the error code of the outermost AppError, the code matching a
// domain sentinel, or "UNKNOWN"
func GetCode(err error) string {
	if err == nil {
		return "UNKNOWN"
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	switch {
	case stderrors.Is(err, core.ErrMissingColumn):
		return CodeMissingColumn
	case stderrors.Is(err, core.ErrInsufficientSamples):
		return CodeInsufficientSamples
	case core.IsInputError(err):
		return CodeInvalidInput
	case stderrors.Is(err, fs.ErrNotExist):
		return CodeNotFound
	}
	return CodeInternalError
}

// Predefined error codes
const (
	CodeConfigInvalid       = "CONFIG_INVALID"
	CodeDatabaseError       = "DATABASE_ERROR"
	CodeValidationError     = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeInternalError       = "INTERNAL_ERROR"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeMissingColumn       = "MISSING_COLUMN"
	CodeInsufficientSamples = "INSUFFICIENT_SAMPLES"
	CodeIOError             = "IO_ERROR"
)

// IsUserError reports whether the error was caused by configuration or input
// data rather than by the program or its environment
func IsUserError(err error) bool {
	switch GetCode(err) {
	case CodeConfigInvalid, CodeValidationError, CodeInvalidInput,
		CodeMissingColumn, CodeInsufficientSamples, CodeNotFound:
		return true
	}
	return false
}

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DatabaseError(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeDatabaseError,
		Message: message,
		Cause:   cause,
	}
}

func ValidationError(message string) *AppError {
	return New(CodeValidationError, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func IOError(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeIOError,
		Message: message,
		Cause:   cause,
	}
}
