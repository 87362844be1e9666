package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for common conditions.
var (
	ErrValidation        = errors.New("validation error")
	ErrTransport         = errors.New("transport error")
	ErrInternal          = errors.New("internal error")
	ErrInvalidTransition = errors.New("invalid state transition")
)

// AppError is a structured error with an HTTP status code and optional fields.
type AppError struct {
	Err     error
	Message string
	Status  int
	Fields  map[string]string
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Internal creates a 500 error.
func Internal(format string, args ...interface{}) *AppError {
	return &AppError{
		Err:     ErrInternal,
		Message: fmt.Sprintf(format, args...),
		Status:  http.StatusInternalServerError,
	}
}

// HTTPStatus extracts the HTTP status code from an error, defaulting to 500.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	if errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrTransport) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
