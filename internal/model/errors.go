package model

import (
	"errors"
	"fmt"
)

// Domain errors surfaced by the enrollment engine and the CRUD services.
// Handlers match these with errors.Is to pick HTTP status codes; anything
// else is treated as an internal (possibly transient) store failure.
var (
	ErrEventNotFound        = errors.New("event not found")
	ErrSessionNotFound      = errors.New("session not found")
	ErrParticipantNotFound  = errors.New("participant not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrSpeakerNotFound      = errors.New("speaker not found")

	ErrRegistrationClosed = errors.New("registration for this event is closed")
	ErrCapacityExceeded   = errors.New("no available spots")
	ErrAlreadyRegistered  = errors.New("participant already registered")
	ErrAlreadyCancelled   = errors.New("registration already cancelled")

	// ErrCancelledRegistration guards the no-resurrection rule: no status
	// transition may move a registration out of CANCELLED.
	ErrCancelledRegistration = errors.New("registration is cancelled")

	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrEmailTaken         = errors.New("email already in use")
	ErrCapacityBelowCount = errors.New("capacity cannot be less than current participants")
	ErrInvalidStatus      = errors.New("invalid status")
)

// ScheduleConflictError reports that a candidate session overlaps another
// session the participant is already registered for. It carries the
// conflicting session so callers can explain the clash to the user.
type ScheduleConflictError struct {
	Conflicting *Session
}

func (e *ScheduleConflictError) Error() string {
	if e.Conflicting == nil {
		return "schedule conflict with another session"
	}
	return fmt.Sprintf("schedule conflict with session %q (%s - %s)",
		e.Conflicting.Title,
		e.Conflicting.StartTime.Format("15:04"),
		e.Conflicting.EndTime.Format("15:04"))
}
