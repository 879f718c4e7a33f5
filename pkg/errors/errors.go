package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for common cases.
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrInternal      = errors.New("internal error")
	ErrConflict      = errors.New("conflict")
	ErrTokenInvalid  = errors.New("verification link is invalid or has expired")
	ErrStepBlocked   = errors.New("step validation failed")
	ErrSessionClosed = errors.New("wizard session already submitted")
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
	Status  int      `json:"-"`
	Err     error    `json:"-"`
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

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// AlreadyExists creates a 409 error.
func AlreadyExists(resource, field, value string) *AppError {
	return &AppError{
		Code:    "ALREADY_EXISTS",
		Message: fmt.Sprintf("%s with %s %q already exists", resource, field, value),
		Status:  http.StatusConflict,
		Err:     ErrAlreadyExists,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// Forbidden creates a 403 error.
func Forbidden(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     ErrForbidden,
	}
}

// Conflict creates a 409 error.
func Conflict(message string) *AppError {
	return &AppError{
		Code:    "CONFLICT",
		Message: message,
		Status:  http.StatusConflict,
		Err:     ErrConflict,
	}
}

// TokenInvalid creates a 404 error for failed verification-link checks.
// The message is deliberately generic: the caller must not learn whether the
// submission exists, the token mismatched, or the link expired.
func TokenInvalid() *AppError {
	return &AppError{
		Code:    "VERIFICATION_INVALID",
		Message: "this verification link is invalid or has expired",
		Status:  http.StatusNotFound,
		Err:     ErrTokenInvalid,
	}
}

// StepBlocked creates a 400 error carrying the inline validation messages
// that block a wizard step from advancing.
func StepBlocked(messages []string) *AppError {
	msg := "step validation failed"
	if len(messages) > 0 {
		msg = messages[0]
	}
	return &AppError{
		Code:    "STEP_BLOCKED",
		Message: msg,
		Details: messages,
		Status:  http.StatusBadRequest,
		Err:     ErrStepBlocked,
	}
}

// SessionClosed creates a 409 error for operations on a wizard session
// that has already reached its terminal step.
func SessionClosed(message string) *AppError {
	return &AppError{
		Code:    "SESSION_CLOSED",
		Message: message,
		Status:  http.StatusConflict,
		Err:     ErrSessionClosed,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrTokenInvalid):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConflict), errors.Is(err, ErrSessionClosed):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrStepBlocked):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
