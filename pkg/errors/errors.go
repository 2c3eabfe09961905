package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	CodeBadRequest  = "BAD_REQUEST"
	CodeRateLimited = "RATE_LIMIT_EXCEEDED"
	CodeInternal    = "INTERNAL_ERROR"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Err        error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause
func (e *AppError) Unwrap() error {
	return e.Err
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

// BadRequest wraps any failure as a 400 carrying the raw error text
func BadRequest(err error) *AppError {
	return &AppError{
		StatusCode: http.StatusBadRequest,
		Code:       CodeBadRequest,
		Message:    err.Error(),
		Err:        err,
	}
}

// NewTooManyRequestsError creates a 429 Too Many Requests error
func NewTooManyRequestsError(message string) *AppError {
	return NewError(http.StatusTooManyRequests, CodeRateLimited, message)
}

// NewInternalServerError creates a 500 Internal Server Error
func NewInternalServerError(code string, message string) *AppError {
	return NewError(http.StatusInternalServerError, code, message)
}

// FromError converts a standard error to an AppError.
// AppErrors anywhere in the chain are returned as-is; anything else becomes a 500.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	appErr = NewInternalServerError(CodeInternal, err.Error())
	appErr.Err = err
	return appErr
}
