package util

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// ErrorCode is the machine readable failure class returned to callers.
type ErrorCode string

const (
	CodeValidation      ErrorCode = "VALIDATION_ERROR"
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	CodeAlreadyClaimed  ErrorCode = "ALREADY_CLAIMED"
	CodeServiceDegraded ErrorCode = "EXTERNAL_SERVICE_DEGRADED"
	CodeInternal        ErrorCode = "INTERNAL_ERROR"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrPermissionDenied = errors.New("permission denied")
)

type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(format string, args ...interface{}) *AppError {
	return &AppError{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...interface{}) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewUnauthorizedError(format string, args ...interface{}) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func NewInternalError(err error, message string) *AppError {
	return &AppError{Code: CodeInternal, Message: message, Err: err}
}

// CodeOf classifies any error; unknown errors are internal.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	if errors.Is(err, ErrNotFound) {
		return CodeNotFound
	}
	if errors.Is(err, ErrPermissionDenied) {
		return CodeUnauthorized
	}
	return CodeInternal
}

// MessageOf is the caller-safe message of err. Internal details are hidden.
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != CodeInternal {
		return appErr.Message
	}
	switch CodeOf(err) {
	case CodeNotFound:
		return "Resource not found"
	case CodeUnauthorized:
		return "Forbidden"
	}
	return "Internal server error"
}

func HTTPStatus(code ErrorCode) int {
	switch code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusForbidden
	case CodeAlreadyClaimed:
		return http.StatusOK
	case CodeServiceDegraded:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
