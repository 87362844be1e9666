package github

import (
	"encoding/json"
	"fmt"

	"github.com/freema/coauthor/internal/apperror"
)

// Violation describes a single schema violation in a profile response.
type Violation struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError reports a profile response that does not conform to the
// expected schema. Raw holds the response body so callers can surface the
// full payload alongside the per-field violations.
type ValidationError struct {
	Violations []Violation
	Raw        json.RawMessage
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		return fmt.Sprintf("profile validation failed: %s: %s", e.Violations[0].Path, e.Violations[0].Message)
	}
	return fmt.Sprintf("profile validation failed: %d violations", len(e.Violations))
}

func (e *ValidationError) Unwrap() error {
	return apperror.ErrValidation
}

// TransportError reports a lookup that could not complete: network failure,
// timeout, or a non-success status from the API.
type TransportError struct {
	StatusCode int // 0 when the request never completed
	Message    string
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("github lookup failed: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("github lookup failed: %s", e.Message)
}

func (e *TransportError) Unwrap() error {
	return apperror.ErrTransport
}
