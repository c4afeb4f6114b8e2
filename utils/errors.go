package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind separates business declines from operational failures so a
// misconfigured secret is never reported as "payment declined".
type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"
	KindNotFound          ErrorKind = "not_found"
	KindConfiguration     ErrorKind = "configuration"
	KindUpstreamTransient ErrorKind = "upstream_transient"
	KindUpstreamAuth      ErrorKind = "upstream_auth"
	KindBusinessDecline   ErrorKind = "business_decline"
)

// AppError represents an application error
type AppError struct {
	Kind    ErrorKind `json:"kind"`
	Code    int       `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(kind ErrorKind, code int, message string, err error) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message, Err: err}
}

// ValidationError creates a 400 validation error
func ValidationError(message string, err error) *AppError {
	return NewAppError(KindValidation, http.StatusBadRequest, message, err)
}

// NotFoundError creates a 404 Not Found error
func NotFoundError(message string, err error) *AppError {
	return NewAppError(KindNotFound, http.StatusNotFound, message, err)
}

// ConfigurationError creates a 500 error for missing credentials or
// other operator mistakes. Requires operator attention.
func ConfigurationError(message string, err error) *AppError {
	return NewAppError(KindConfiguration, http.StatusInternalServerError, message, err)
}

// UpstreamTransientError creates a 502 error for gateway timeouts and
// network failures. Retryable.
func UpstreamTransientError(message string, err error) *AppError {
	return NewAppError(KindUpstreamTransient, http.StatusBadGateway, message, err)
}

// UpstreamAuthError creates a 500 error for gateway credential
// rejections. Operationally fatal.
func UpstreamAuthError(message string, err error) *AppError {
	return NewAppError(KindUpstreamAuth, http.StatusInternalServerError, message, err)
}

// BusinessDeclineError creates a 402 error for a normal payment
// decline. Not an incident.
func BusinessDeclineError(message string, err error) *AppError {
	return NewAppError(KindBusinessDecline, http.StatusPaymentRequired, message, err)
}

// GetAppError returns the AppError if the error is one
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsKind checks whether an error carries the given kind
func IsKind(err error, kind ErrorKind) bool {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Kind == kind
	}
	return false
}

// WrapError wraps an error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
