package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrConflict
	ErrPaymentNotCompleted
	ErrPaymentAmountMismatch
	ErrInternal
)

// StatusCode maps the error taxonomy onto HTTP statuses. Business-rule
// failures carry enough structure for the caller to retry correctly; the
// engine itself never retries them.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrBadRequest, ErrPaymentAmountMismatch:
		return http.StatusBadRequest
	case ErrConflict:
		return http.StatusConflict
	case ErrPaymentNotCompleted:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// Error constructors
func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:    ErrConflict,
		Message: message,
	}
}

func PaymentNotCompleted(intentStatus string) *AppError {
	return &AppError{
		Code:    ErrPaymentNotCompleted,
		Message: fmt.Sprintf("deposit payment not completed (status %q)", intentStatus),
	}
}

func PaymentAmountMismatch(expected, got int64) *AppError {
	return &AppError{
		Code:    ErrPaymentAmountMismatch,
		Message: fmt.Sprintf("deposit amount mismatch: expected %d, payment authorizes %d", expected, got),
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}
