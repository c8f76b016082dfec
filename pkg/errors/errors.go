package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes exposed to API clients
const (
	CodeNotFound   = "NOT_FOUND"
	CodeValidation = "VALIDATION_ERROR"
	CodeConflict   = "CONFLICT"
	CodeInternal   = "INTERNAL_ERROR"
	CodeBadRequest = "BAD_REQUEST"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// BadRequest creates a 400 error for malformed requests
func BadRequest(message string, err error) *AppError {
	return NewAppError(CodeBadRequest, message, http.StatusBadRequest, err)
}

// Validation creates a 400 error for input that violates a domain rule
func Validation(message string, err error) *AppError {
	return NewAppError(CodeValidation, message, http.StatusBadRequest, err)
}

// NotFound creates a 404 error
func NotFound(message string, err error) *AppError {
	return NewAppError(CodeNotFound, message, http.StatusNotFound, err)
}

// Conflict creates a 409 error
func Conflict(message string, err error) *AppError {
	return NewAppError(CodeConflict, message, http.StatusConflict, err)
}

// Internal creates a 500 error
func Internal(message string, err error) *AppError {
	return NewAppError(CodeInternal, message, http.StatusInternalServerError, err)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError attempts to convert an error to AppError
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	// Return generic internal error if not an AppError
	return Internal("An unexpected error occurred", err)
}

// HasCode reports whether err is an AppError carrying the given code
func HasCode(err error, code string) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code == code
}

func IsNotFound(err error) bool   { return HasCode(err, CodeNotFound) }
func IsValidation(err error) bool { return HasCode(err, CodeValidation) }
func IsConflict(err error) bool   { return HasCode(err, CodeConflict) }
func IsInternal(err error) bool   { return HasCode(err, CodeInternal) }

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
