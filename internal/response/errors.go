package response

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// AppError is the error type returned by the service layer
type AppError struct {
	Code    string
	Message string
	Details string
	Err     error
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(code, message, details string) *AppError {
	return &AppError{Code: code, Message: message, Details: details}
}

// NewNotFoundError creates a NOT_FOUND error
func NewNotFoundError(message, details string) *AppError {
	return NewAppError(ErrCodeNotFound, message, details)
}

// NewInvalidInputError creates an INVALID_INPUT error
func NewInvalidInputError(message, details string) *AppError {
	return NewAppError(ErrCodeInvalidInput, message, details)
}

// NewConflictError creates a CONFLICT error
func NewConflictError(message, details string) *AppError {
	return NewAppError(ErrCodeConflict, message, details)
}

// NewServiceUnavailableError wraps the cause of a failed external call
func NewServiceUnavailableError(message string, cause error) *AppError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &AppError{Code: ErrCodeServiceUnavailable, Message: message, Details: details, Err: cause}
}

// HasCode reports whether err is an AppError carrying code
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
