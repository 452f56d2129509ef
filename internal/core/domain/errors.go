package domain

import (
	"errors"
	"fmt"
)

// Common domain errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrValidation     = errors.New("invalid data")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("no permission")
	ErrInternalServer = errors.New("internal server error")
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// Precondition reason codes
const (
	ReasonTicketNotClosed = "ticket_not_closed"
	ReasonShiftNotOpen    = "shift_not_open"
	ReasonAlreadyPending  = "application_pending"
	ReasonAlreadyReviewed = "application_reviewed"
	ReasonAlreadyRevoked  = "application_revoked"
)

// PreconditionError signals that an operation was rejected because the
// entity is in the wrong state. Reason is a machine-readable code the UI
// uses to route the user back; no store mutation has happened.
type PreconditionError struct {
	Reason  string
	Message string
}

func (e *PreconditionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("precondition failed: %s", e.Reason)
}

// NewPrecondition creates a PreconditionError with a reason code
func NewPrecondition(reason, message string) *PreconditionError {
	return &PreconditionError{Reason: reason, Message: message}
}

// AsPrecondition unwraps a PreconditionError from an error chain
func AsPrecondition(err error) (*PreconditionError, bool) {
	var pe *PreconditionError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
