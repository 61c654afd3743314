package model

import "time"

// SessionType classifies the format of a session.
type SessionType string

const (
	SessionLecture         SessionType = "LECTURE"
	SessionWorkshop        SessionType = "WORKSHOP"
	SessionPanelDiscussion SessionType = "PANEL_DISCUSSION"
	SessionNetworking      SessionType = "NETWORKING"
	SessionBreak           SessionType = "BREAK"
	SessionKeynote         SessionType = "KEYNOTE"
)

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

const (
	SessionScheduled SessionStatus = "SCHEDULED"
	SessionActive    SessionStatus = "ACTIVE"
	SessionCompleted SessionStatus = "COMPLETED"
	SessionCancelled SessionStatus = "CANCELLED"
	SessionPostponed SessionStatus = "POSTPONED"
)

// DefaultSessionCapacity is applied when a session is created without an
// explicit maximum.
const DefaultSessionCapacity = 50

// Session is a time-boxed sub-unit of an event with its own capacity,
// optionally led by a speaker.
type Session struct {
	ID                   string        `json:"id"`
	EventID              string        `json:"event_id"`
	SpeakerID            *string       `json:"speaker_id"`
	Title                string        `json:"title"`
	Description          string        `json:"description"`
	StartTime            time.Time     `json:"start_time"`
	EndTime              time.Time     `json:"end_time"`
	MaxCapacity          int           `json:"max_capacity"`
	CurrentParticipants  int           `json:"current_participants"`
	RoomNumber           string        `json:"room_number"`
	Type                 SessionType   `json:"type"`
	Status               SessionStatus `json:"status"`
	RequiresRegistration bool          `json:"requires_registration"`
}

// HasAvailableSeats reports whether at least one seat remains.
func (s *Session) HasAvailableSeats() bool {
	return s.CurrentParticipants < s.MaxCapacity
}

// OverlapsWith reports whether the two sessions overlap in time. Intervals
// that merely touch at an endpoint do not overlap.
func (s *Session) OverlapsWith(other *Session) bool {
	if other == nil {
		return false
	}
	return Overlaps(s.StartTime, s.EndTime, other.StartTime, other.EndTime)
}

// IsOver reports whether the session has finished, been completed, or been
// cancelled as of now.
func (s *Session) IsOver(now time.Time) bool {
	return now.After(s.EndTime) ||
		s.Status == SessionCompleted ||
		s.Status == SessionCancelled
}

// Overlaps reports whether [startA, endA) and [startB, endB) share any
// non-zero span of time.
func Overlaps(startA, endA, startB, endB time.Time) bool {
	return startA.Before(endB) && startB.Before(endA)
}
