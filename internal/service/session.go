package service

import (
	"context"
	"errors"
	"strings"

	"github.com/confreg/conference-registration/internal/clock"
	"github.com/confreg/conference-registration/internal/model"
	"github.com/confreg/conference-registration/internal/repository"
	"github.com/google/uuid"
)

// SessionService implements session CRUD and scheduling queries.
type SessionService struct {
	sessions *repository.SessionRepository
	events   *repository.EventRepository
	speakers *repository.SpeakerRepository
	clock    clock.Clock
}

// NewSessionService constructs a SessionService.
func NewSessionService(
	sessions *repository.SessionRepository,
	events *repository.EventRepository,
	speakers *repository.SpeakerRepository,
	clk clock.Clock,
) *SessionService {
	return &SessionService{sessions: sessions, events: events, speakers: speakers, clock: clk}
}

// CreateSessionInput is the payload for creating a session.
type CreateSessionInput struct {
	EventID              string
	SpeakerID            *string
	Title                string
	Description          string
	StartTime            string
	EndTime              string
	MaxCapacity          *int
	RoomNumber           string
	Type                 string
	RequiresRegistration *bool
}

// CreateSession validates the input, resolves the owning event and optional
// speaker, and persists a new session.
func (s *SessionService) CreateSession(ctx context.Context, in CreateSessionInput) (*model.Session, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, errors.New("session title is required")
	}
	if in.EventID == "" {
		return nil, errors.New("event id is required")
	}
	if _, err := s.events.GetByID(ctx, in.EventID); err != nil {
		return nil, err
	}
	if in.SpeakerID != nil {
		if _, err := s.speakers.GetByID(ctx, *in.SpeakerID); err != nil {
			return nil, err
		}
	}
	start, end, err := parseWindow(in.StartTime, in.EndTime)
	if err != nil {
		return nil, err
	}

	capacity := model.DefaultSessionCapacity
	if in.MaxCapacity != nil {
		if *in.MaxCapacity <= 0 {
			return nil, errors.New("max_capacity must be a positive integer")
		}
		capacity = *in.MaxCapacity
	}
	sessionType := model.SessionLecture
	if in.Type != "" {
		sessionType = model.SessionType(strings.ToUpper(in.Type))
	}
	requiresReg := true
	if in.RequiresRegistration != nil {
		requiresReg = *in.RequiresRegistration
	}

	session := &model.Session{
		ID:                   uuid.New().String(),
		EventID:              in.EventID,
		SpeakerID:            in.SpeakerID,
		Title:                in.Title,
		Description:          in.Description,
		StartTime:            start,
		EndTime:              end,
		MaxCapacity:          capacity,
		RoomNumber:           in.RoomNumber,
		Type:                 sessionType,
		Status:               model.SessionScheduled,
		RequiresRegistration: requiresReg,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetSession returns a single session by ID.
func (s *SessionService) GetSession(ctx context.Context, id string) (*model.Session, error) {
	return s.sessions.GetByID(ctx, id)
}

// ListSessions returns all sessions.
func (s *SessionService) ListSessions(ctx context.Context) ([]model.Session, error) {
	return s.sessions.List(ctx)
}

// SessionsByEvent returns all sessions of an event.
func (s *SessionService) SessionsByEvent(ctx context.Context, eventID string) ([]model.Session, error) {
	return s.sessions.ListByEvent(ctx, eventID)
}

// SessionsBySpeaker returns all sessions assigned to a speaker.
func (s *SessionService) SessionsBySpeaker(ctx context.Context, speakerID string) ([]model.Session, error) {
	return s.sessions.ListBySpeaker(ctx, speakerID)
}

// AvailableSessions returns non-cancelled sessions with free seats.
func (s *SessionService) AvailableSessions(ctx context.Context) ([]model.Session, error) {
	return s.sessions.ListWithAvailableSeats(ctx)
}

// UpcomingSessions returns sessions starting within the next month.
func (s *SessionService) UpcomingSessions(ctx context.Context) ([]model.Session, error) {
	now := s.clock.Now()
	return s.sessions.ListBetween(ctx, now, now.AddDate(0, 1, 0))
}

// UpdateSessionInput carries optional replacement values; nil fields keep
// the stored value.
type UpdateSessionInput struct {
	Title                *string
	Description          *string
	StartTime            *string
	EndTime              *string
	MaxCapacity          *int
	RoomNumber           *string
	Type                 *string
	Status               *string
	RequiresRegistration *bool
}

// UpdateSession applies the non-nil fields of in to the stored session.
func (s *SessionService) UpdateSession(ctx context.Context, id string, in UpdateSessionInput) (*model.Session, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		session.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		session.Description = *in.Description
	}
	if in.StartTime != nil {
		t, err := parseTime(*in.StartTime)
		if err != nil {
			return nil, err
		}
		session.StartTime = t
	}
	if in.EndTime != nil {
		t, err := parseTime(*in.EndTime)
		if err != nil {
			return nil, err
		}
		session.EndTime = t
	}
	if in.MaxCapacity != nil {
		if *in.MaxCapacity < session.CurrentParticipants {
			return nil, model.ErrCapacityBelowCount
		}
		session.MaxCapacity = *in.MaxCapacity
	}
	if in.RoomNumber != nil {
		session.RoomNumber = *in.RoomNumber
	}
	if in.Type != nil {
		session.Type = model.SessionType(strings.ToUpper(*in.Type))
	}
	if in.Status != nil {
		session.Status = model.SessionStatus(strings.ToUpper(*in.Status))
	}
	if in.RequiresRegistration != nil {
		session.RequiresRegistration = *in.RequiresRegistration
	}

	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// DeleteSession cancels the session rather than removing its rows, so
// existing registrations keep their history.
func (s *SessionService) DeleteSession(ctx context.Context, id string) error {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return err
	}
	session.Status = model.SessionCancelled
	return s.sessions.Update(ctx, session)
}

// UpdateSessionCapacity resizes the session, refusing to shrink below the
// current participant count.
func (s *SessionService) UpdateSessionCapacity(ctx context.Context, id string, capacity int) (*model.Session, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if capacity < session.CurrentParticipants {
		return nil, model.ErrCapacityBelowCount
	}
	session.MaxCapacity = capacity
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// CheckRoomAvailability reports whether the session's room is free of other
// sessions in the same event during [start, end).
func (s *SessionService) CheckRoomAvailability(ctx context.Context, sessionID string, start, end string) (bool, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if session.RoomNumber == "" {
		return true, nil
	}
	from, to, err := parseWindow(start, end)
	if err != nil {
		return false, err
	}

	siblings, err := s.sessions.ListByEvent(ctx, session.EventID)
	if err != nil {
		return false, err
	}
	for i := range siblings {
		other := &siblings[i]
		if other.ID == session.ID || other.RoomNumber != session.RoomNumber {
			continue
		}
		if model.Overlaps(other.StartTime, other.EndTime, from, to) {
			return false, nil
		}
	}
	return true, nil
}

// DuplicateSession creates a fresh copy of the session shifted one week out,
// back in SCHEDULED status with an empty seat count.
func (s *SessionService) DuplicateSession(ctx context.Context, id string) (*model.Session, error) {
	original, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	duplicate := &model.Session{
		ID:                   uuid.New().String(),
		EventID:              original.EventID,
		SpeakerID:            original.SpeakerID,
		Title:                "Copy of " + original.Title,
		Description:          original.Description,
		StartTime:            original.StartTime.AddDate(0, 0, 7),
		EndTime:              original.EndTime.AddDate(0, 0, 7),
		MaxCapacity:          original.MaxCapacity,
		RoomNumber:           original.RoomNumber,
		Type:                 original.Type,
		Status:               model.SessionScheduled,
		RequiresRegistration: original.RequiresRegistration,
	}
	if err := s.sessions.Create(ctx, duplicate); err != nil {
		return nil, err
	}
	return duplicate, nil
}
