// Package model defines the core domain types for the conference
// registration system: events, sessions, speakers, participants, and the
// registrations that tie them together.
package model

import "time"

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventPlanned   EventStatus = "PLANNED"
	EventActive    EventStatus = "ACTIVE"
	EventCompleted EventStatus = "COMPLETED"
	EventCancelled EventStatus = "CANCELLED"
	EventPostponed EventStatus = "POSTPONED"
)

// Valid reports whether s is a known event status.
func (s EventStatus) Valid() bool {
	switch s {
	case EventPlanned, EventActive, EventCompleted, EventCancelled, EventPostponed:
		return true
	}
	return false
}

// Event represents a top-level scheduled happening composed of sessions.
type Event struct {
	ID                  string      `json:"id"`
	Name                string      `json:"name"`
	Description         string      `json:"description"`
	StartDate           time.Time   `json:"start_date"`
	EndDate             time.Time   `json:"end_date"`
	Location            string      `json:"location"`
	MaxParticipants     *int        `json:"max_participants"` // nil means unlimited
	CurrentParticipants int         `json:"current_participants"`
	Status              EventStatus `json:"status"`
	RequiresApproval    bool        `json:"requires_approval"`
	RegistrationOpen    bool        `json:"registration_open"`
	Deleted             bool        `json:"-"`
	CreatedAt           time.Time   `json:"created_at"`
}

// HasAvailableSpots reports whether at least one event-level spot remains.
// An event with no configured maximum always has spots.
func (e *Event) HasAvailableSpots() bool {
	if e.MaxParticipants == nil {
		return true
	}
	return e.CurrentParticipants < *e.MaxParticipants
}

// Remaining returns the number of free event-level spots, or -1 when the
// event is unlimited.
func (e *Event) Remaining() int {
	if e.MaxParticipants == nil {
		return -1
	}
	return *e.MaxParticipants - e.CurrentParticipants
}
