package roster

import (
	"fmt"

	"github.com/freema/coauthor/internal/apperror"
)

// EntryStatus represents the lifecycle state of a roster entry's remote lookup.
type EntryStatus string

const (
	StatusIdle            EntryStatus = "idle"
	StatusLoading         EntryStatus = "loading"
	StatusResolved        EntryStatus = "resolved"
	StatusTransportError  EntryStatus = "transport_error"
	StatusValidationError EntryStatus = "validation_error"
	StatusRemoved         EntryStatus = "removed"
)

// validTransitions defines valid state machine transitions.
// transport_error may leave via auto-expiry or manual removal; resolved and
// validation_error leave via manual removal only. loading → removed covers
// removal while the fetch is still in flight.
var validTransitions = map[EntryStatus][]EntryStatus{
	StatusIdle:            {StatusLoading, StatusRemoved},
	StatusLoading:         {StatusResolved, StatusTransportError, StatusValidationError, StatusRemoved},
	StatusResolved:        {StatusRemoved},
	StatusTransportError:  {StatusRemoved},
	StatusValidationError: {StatusRemoved},
	StatusRemoved:         {}, // terminal
}

// ValidateTransition checks if the transition from current to next status is valid.
func ValidateTransition(current, next EntryStatus) error {
	allowed, ok := validTransitions[current]
	if !ok {
		return &apperror.AppError{
			Err:     apperror.ErrInvalidTransition,
			Message: fmt.Sprintf("unknown status: %s", current),
			Status:  409,
		}
	}

	for _, s := range allowed {
		if s == next {
			return nil
		}
	}

	return &apperror.AppError{
		Err:     apperror.ErrInvalidTransition,
		Message: fmt.Sprintf("invalid transition: %s to %s", current, next),
		Status:  409,
	}
}

// IsTerminal returns true if the status admits no further transitions.
func IsTerminal(s EntryStatus) bool {
	return s == StatusRemoved
}

// IsSettled returns true once the entry's lookup has completed, successfully
// or not.
func IsSettled(s EntryStatus) bool {
	return s == StatusResolved || s == StatusTransportError || s == StatusValidationError
}

// ValidStatuses returns all valid status values.
func ValidStatuses() []EntryStatus {
	return []EntryStatus{
		StatusIdle,
		StatusLoading,
		StatusResolved,
		StatusTransportError,
		StatusValidationError,
		StatusRemoved,
	}
}
