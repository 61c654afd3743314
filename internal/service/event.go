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

// EventService implements event CRUD and event-level queries. All
// registration and counter writes stay with the enrollment engine.
type EventService struct {
	events *repository.EventRepository
	clock  clock.Clock
}

// NewEventService constructs an EventService.
func NewEventService(events *repository.EventRepository, clk clock.Clock) *EventService {
	return &EventService{events: events, clock: clk}
}

// CreateEventInput is the payload for creating an event.
type CreateEventInput struct {
	Name             string
	Description      string
	StartDate        string
	EndDate          string
	Location         string
	MaxParticipants  *int
	RequiresApproval bool
	RegistrationOpen *bool
}

// CreateEvent validates the input and persists a new event.
func (s *EventService) CreateEvent(ctx context.Context, in CreateEventInput) (*model.Event, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, errors.New("event name is required")
	}
	start, end, err := parseWindow(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	if in.MaxParticipants != nil && *in.MaxParticipants <= 0 {
		return nil, errors.New("max_participants must be a positive integer")
	}

	open := true
	if in.RegistrationOpen != nil {
		open = *in.RegistrationOpen
	}
	event := &model.Event{
		ID:               uuid.New().String(),
		Name:             in.Name,
		Description:      in.Description,
		StartDate:        start,
		EndDate:          end,
		Location:         in.Location,
		MaxParticipants:  in.MaxParticipants,
		Status:           model.EventPlanned,
		RequiresApproval: in.RequiresApproval,
		RegistrationOpen: open,
		CreatedAt:        s.clock.Now(),
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// GetEvent returns a single event by ID.
func (s *EventService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	return s.events.GetByID(ctx, id)
}

// ListEvents returns all non-deleted events.
func (s *EventService) ListEvents(ctx context.Context) ([]model.Event, error) {
	return s.events.List(ctx)
}

// EventsWithAvailableSpots returns events with free event-level capacity.
func (s *EventService) EventsWithAvailableSpots(ctx context.Context) ([]model.Event, error) {
	return s.events.ListWithAvailableSpots(ctx)
}

// PublicEvents returns events currently accepting registrations.
func (s *EventService) PublicEvents(ctx context.Context) ([]model.Event, error) {
	return s.events.ListOpen(ctx)
}

// UpdateEventInput carries optional replacement values; nil fields keep the
// stored value.
type UpdateEventInput struct {
	Name             *string
	Description      *string
	StartDate        *string
	EndDate          *string
	Location         *string
	MaxParticipants  *int
	Status           *string
	RequiresApproval *bool
	RegistrationOpen *bool
}

// UpdateEvent applies the non-nil fields of in to the stored event.
func (s *EventService) UpdateEvent(ctx context.Context, id string, in UpdateEventInput) (*model.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		event.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		event.Description = *in.Description
	}
	if in.StartDate != nil {
		t, err := parseTime(*in.StartDate)
		if err != nil {
			return nil, err
		}
		event.StartDate = t
	}
	if in.EndDate != nil {
		t, err := parseTime(*in.EndDate)
		if err != nil {
			return nil, err
		}
		event.EndDate = t
	}
	if in.Location != nil {
		event.Location = *in.Location
	}
	if in.MaxParticipants != nil {
		event.MaxParticipants = in.MaxParticipants
	}
	if in.Status != nil {
		status := model.EventStatus(strings.ToUpper(*in.Status))
		if !status.Valid() {
			return nil, model.ErrInvalidStatus
		}
		event.Status = status
	}
	if in.RequiresApproval != nil {
		event.RequiresApproval = *in.RequiresApproval
	}
	if in.RegistrationOpen != nil {
		event.RegistrationOpen = *in.RegistrationOpen
	}

	if err := s.events.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// UpdateEventStatus sets the event status after validating the value.
func (s *EventService) UpdateEventStatus(ctx context.Context, id, status string) (*model.Event, error) {
	return s.UpdateEvent(ctx, id, UpdateEventInput{Status: &status})
}

// DeleteEvent soft-deletes the event.
func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	if _, err := s.events.GetByID(ctx, id); err != nil {
		return err
	}
	return s.events.SoftDelete(ctx, id)
}

// DuplicateEvent creates a fresh copy of the event shifted one month out,
// back in PLANNED status with registration reopened and counters reset.
func (s *EventService) DuplicateEvent(ctx context.Context, id string) (*model.Event, error) {
	original, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	duplicate := &model.Event{
		ID:               uuid.New().String(),
		Name:             "Copy of " + original.Name,
		Description:      original.Description,
		StartDate:        original.StartDate.AddDate(0, 1, 0),
		EndDate:          original.EndDate.AddDate(0, 1, 0),
		Location:         original.Location,
		MaxParticipants:  original.MaxParticipants,
		Status:           model.EventPlanned,
		RequiresApproval: original.RequiresApproval,
		RegistrationOpen: true,
		CreatedAt:        s.clock.Now(),
	}
	if err := s.events.Create(ctx, duplicate); err != nil {
		return nil, err
	}
	return duplicate, nil
}
