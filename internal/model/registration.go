package model

import "time"

// RegistrationStatus is the lifecycle state of a registration.
type RegistrationStatus string

const (
	RegistrationPending    RegistrationStatus = "PENDING"
	RegistrationConfirmed  RegistrationStatus = "CONFIRMED"
	RegistrationWaitlisted RegistrationStatus = "WAITLISTED"
	RegistrationCancelled  RegistrationStatus = "CANCELLED"
	RegistrationNoShow     RegistrationStatus = "NO_SHOW"
	RegistrationAttended   RegistrationStatus = "ATTENDED"
)

// Valid reports whether s is a known registration status.
func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationPending, RegistrationConfirmed, RegistrationWaitlisted,
		RegistrationCancelled, RegistrationNoShow, RegistrationAttended:
		return true
	}
	return false
}

// IsActive reports whether the status counts as an active enrollment for
// conflict checks and counter consistency. ATTENDED counts as historically
// active.
func (s RegistrationStatus) IsActive() bool {
	switch s {
	case RegistrationPending, RegistrationConfirmed, RegistrationWaitlisted, RegistrationAttended:
		return true
	}
	return false
}

// BlocksReenrollment reports whether an existing registration in this status
// prevents the same participant from registering again for the same target.
// CANCELLED and NO_SHOW do not block.
func (s RegistrationStatus) BlocksReenrollment() bool {
	switch s {
	case RegistrationPending, RegistrationConfirmed, RegistrationWaitlisted:
		return true
	}
	return false
}

// RegistrationKind distinguishes the two enrollment variants a registration
// record can represent.
type RegistrationKind int

const (
	// EventLevel is a direct, sessionless registration for an event.
	EventLevel RegistrationKind = iota
	// SessionLevel is a registration for one session of an event.
	SessionLevel
)

// Registration records a participant's enrollment into an event or into one
// of its sessions. Session-level registrations carry the owning event ID as
// well, so event-scoped listings need no join through sessions.
type Registration struct {
	ID               string             `json:"id"`
	ParticipantID    string             `json:"participant_id"`
	EventID          string             `json:"event_id"`
	SessionID        *string            `json:"session_id"`
	RegistrationDate time.Time          `json:"registration_date"`
	Status           RegistrationStatus `json:"status"`
}

// Kind returns the enrollment variant of the registration.
func (r *Registration) Kind() RegistrationKind {
	if r.SessionID != nil {
		return SessionLevel
	}
	return EventLevel
}
