// Package service implements the business logic of the conference
// registration system. RegistrationService is the enrollment engine: it owns
// every write to registration status and to the event/session participant
// counters, and runs each mutation as one atomic transaction.
package service

import (
	"context"

	"github.com/confreg/conference-registration/internal/clock"
	"github.com/confreg/conference-registration/internal/model"
	"github.com/google/uuid"
)

// ParticipantGetter resolves participants for enrollment checks.
type ParticipantGetter interface {
	GetByID(ctx context.Context, id string) (*model.Participant, error)
}

// EventStore is the event access the enrollment engine needs: a locked read
// plus the counter operations.
type EventStore interface {
	EventCounterStore
	GetForUpdate(ctx context.Context, id string) (*model.Event, error)
}

// SessionStore is the session access the enrollment engine needs.
type SessionStore interface {
	SessionCounterStore
	GetForUpdate(ctx context.Context, id string) (*model.Session, error)
}

// RegistrationStore is the registration access the enrollment engine needs.
// WithTx must be reentrant: a nested call joins the ambient transaction so
// the implicit event enrollment inside a session enrollment commits with it.
type RegistrationStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	Create(ctx context.Context, reg *model.Registration) error
	GetByID(ctx context.Context, id string) (*model.Registration, error)
	GetForUpdate(ctx context.Context, id string) (*model.Registration, error)
	UpdateStatus(ctx context.Context, id string, status model.RegistrationStatus) error
	Delete(ctx context.Context, id string) error
	FindBlockingByParticipantAndEvent(ctx context.Context, participantID, eventID string) (*model.Registration, error)
	FindActiveByParticipantAndEvent(ctx context.Context, participantID, eventID string) (*model.Registration, error)
	ActiveExistsByParticipantAndSession(ctx context.Context, participantID, sessionID string) (bool, error)
	CountActiveBySession(ctx context.Context, sessionID string) (int, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.Registration, error)
	ListBySession(ctx context.Context, sessionID string) ([]model.Registration, error)
	ListByParticipant(ctx context.Context, participantID string) ([]model.Registration, error)
	ListByStatus(ctx context.Context, status model.RegistrationStatus) ([]model.Registration, error)
	RecountParticipants(ctx context.Context) error
}

// RegistrationService orchestrates the admission and cancellation protocol.
type RegistrationService struct {
	regs         RegistrationStore
	participants ParticipantGetter
	events       EventStore
	sessions     SessionStore
	capacity     *CapacityTracker
	conflicts    *ConflictDetector
	clock        clock.Clock
}

// NewRegistrationService constructs the enrollment engine.
func NewRegistrationService(
	regs RegistrationStore,
	participants ParticipantGetter,
	events EventStore,
	sessions SessionStore,
	capacity *CapacityTracker,
	conflicts *ConflictDetector,
	clk clock.Clock,
) *RegistrationService {
	return &RegistrationService{
		regs:         regs,
		participants: participants,
		events:       events,
		sessions:     sessions,
		capacity:     capacity,
		conflicts:    conflicts,
		clock:        clk,
	}
}

// EnrollInEvent registers a participant directly for an event. It fails with
// ErrRegistrationClosed when the event is not accepting registrations,
// ErrCapacityExceeded when no spot remains, and ErrAlreadyRegistered when an
// active event-level registration already exists. Cancelled and no-show
// registrations do not block re-enrollment; a new record is created instead.
func (s *RegistrationService) EnrollInEvent(ctx context.Context, participantID, eventID string) (*model.Registration, error) {
	var created *model.Registration
	err := s.regs.WithTx(ctx, func(ctx context.Context) error {
		reg, err := s.enrollInEvent(ctx, participantID, eventID)
		if err != nil {
			return err
		}
		created = reg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// enrollInEvent runs the event admission protocol inside an ambient
// transaction. EnrollInSession calls it directly so the implicit event
// registration shares the session enrollment's transaction.
func (s *RegistrationService) enrollInEvent(ctx context.Context, participantID, eventID string) (*model.Registration, error) {
	if _, err := s.participants.GetByID(ctx, participantID); err != nil {
		return nil, err
	}

	event, err := s.events.GetForUpdate(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.RegistrationOpen {
		return nil, model.ErrRegistrationClosed
	}
	if !event.HasAvailableSpots() {
		return nil, model.ErrCapacityExceeded
	}

	existing, err := s.regs.FindBlockingByParticipantAndEvent(ctx, participantID, eventID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, model.ErrAlreadyRegistered
	}

	reg := &model.Registration{
		ID:               uuid.New().String(),
		ParticipantID:    participantID,
		EventID:          eventID,
		RegistrationDate: s.clock.Now(),
		Status:           model.RegistrationConfirmed,
	}
	if err := s.capacity.TryIncrementEvent(ctx, eventID); err != nil {
		return nil, err
	}
	if err := s.regs.Create(ctx, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// EnrollInSession registers a participant for a session, implicitly
// enrolling them in the owning event first when they hold no active
// event-level registration. The whole protocol, including the implicit event
// enrollment, is one atomic transaction. A schedule clash with another
// active session fails with a ScheduleConflictError naming that session.
func (s *RegistrationService) EnrollInSession(ctx context.Context, participantID, sessionID string) (*model.Registration, error) {
	var created *model.Registration
	err := s.regs.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.participants.GetByID(ctx, participantID); err != nil {
			return err
		}

		session, err := s.sessions.GetForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		event, err := s.events.GetForUpdate(ctx, session.EventID)
		if err != nil {
			return err
		}
		if !event.RegistrationOpen {
			return model.ErrRegistrationClosed
		}

		// Capacity is judged on the live active-registration count, not the
		// denormalized counter, so a drifted counter cannot over-admit.
		count, err := s.regs.CountActiveBySession(ctx, sessionID)
		if err != nil {
			return err
		}
		if count >= session.MaxCapacity {
			return model.ErrCapacityExceeded
		}

		exists, err := s.regs.ActiveExistsByParticipantAndSession(ctx, participantID, sessionID)
		if err != nil {
			return err
		}
		if exists {
			return model.ErrAlreadyRegistered
		}

		conflict, err := s.conflicts.FindConflict(ctx, participantID, session.StartTime, session.EndTime)
		if err != nil {
			return err
		}
		if conflict != nil {
			return &model.ScheduleConflictError{Conflicting: conflict}
		}

		// An existing event-level registration in any active status, ATTENDED
		// included, is reused; the implicit enrollment runs only when none
		// exists or the prior one was cancelled or a no-show.
		existing, err := s.regs.FindActiveByParticipantAndEvent(ctx, participantID, event.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			if _, err := s.enrollInEvent(ctx, participantID, event.ID); err != nil {
				return err
			}
		}

		reg := &model.Registration{
			ID:               uuid.New().String(),
			ParticipantID:    participantID,
			EventID:          event.ID,
			SessionID:        &session.ID,
			RegistrationDate: s.clock.Now(),
			Status:           model.RegistrationConfirmed,
		}
		if err := s.capacity.TryIncrementSession(ctx, sessionID); err != nil {
			return err
		}
		if err := s.regs.Create(ctx, reg); err != nil {
			return err
		}
		created = reg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CancelRegistration transitions a registration to CANCELLED and releases
// its capacity. Cancelling an event-level registration decrements the event
// counter; cancelling a session-level registration decrements only the
// session counter, leaving the event counter untouched.
func (s *RegistrationService) CancelRegistration(ctx context.Context, registrationID string) (*model.Registration, error) {
	var cancelled *model.Registration
	err := s.regs.WithTx(ctx, func(ctx context.Context) error {
		reg, err := s.regs.GetForUpdate(ctx, registrationID)
		if err != nil {
			return err
		}
		if reg.Status == model.RegistrationCancelled {
			return model.ErrAlreadyCancelled
		}

		if err := s.regs.UpdateStatus(ctx, reg.ID, model.RegistrationCancelled); err != nil {
			return err
		}

		switch reg.Kind() {
		case model.EventLevel:
			if err := s.capacity.DecrementEvent(ctx, reg.EventID); err != nil {
				return err
			}
		case model.SessionLevel:
			if err := s.capacity.DecrementSession(ctx, *reg.SessionID); err != nil {
				return err
			}
		}

		reg.Status = model.RegistrationCancelled
		cancelled = reg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// MoveToWaitlist transitions a registration to WAITLISTED. No counter is
// touched; waitlisted registrations still occupy their reserved spot.
func (s *RegistrationService) MoveToWaitlist(ctx context.Context, registrationID string) (*model.Registration, error) {
	return s.transition(ctx, registrationID, model.RegistrationWaitlisted)
}

// ConfirmAttendance transitions a registration to ATTENDED.
func (s *RegistrationService) ConfirmAttendance(ctx context.Context, registrationID string) (*model.Registration, error) {
	return s.transition(ctx, registrationID, model.RegistrationAttended)
}

// transition applies a pure status change. CANCELLED is terminal: a
// cancelled registration is never revived; re-enrollment creates a new one.
func (s *RegistrationService) transition(ctx context.Context, registrationID string, status model.RegistrationStatus) (*model.Registration, error) {
	var updated *model.Registration
	err := s.regs.WithTx(ctx, func(ctx context.Context) error {
		reg, err := s.regs.GetForUpdate(ctx, registrationID)
		if err != nil {
			return err
		}
		if reg.Status == model.RegistrationCancelled {
			return model.ErrCancelledRegistration
		}
		if err := s.regs.UpdateStatus(ctx, reg.ID, status); err != nil {
			return err
		}
		reg.Status = status
		updated = reg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetRegistration returns a registration by ID.
func (s *RegistrationService) GetRegistration(ctx context.Context, id string) (*model.Registration, error) {
	return s.regs.GetByID(ctx, id)
}

// DeleteRegistration removes a registration outright. This administrative
// path bypasses the cancellation protocol and leaves counters alone.
func (s *RegistrationService) DeleteRegistration(ctx context.Context, id string) error {
	return s.regs.Delete(ctx, id)
}

// RegistrationsByEvent lists registrations for an event.
func (s *RegistrationService) RegistrationsByEvent(ctx context.Context, eventID string) ([]model.Registration, error) {
	return s.regs.ListByEvent(ctx, eventID)
}

// RegistrationsBySession lists registrations for a session.
func (s *RegistrationService) RegistrationsBySession(ctx context.Context, sessionID string) ([]model.Registration, error) {
	return s.regs.ListBySession(ctx, sessionID)
}

// RegistrationsByParticipant lists a participant's registrations.
func (s *RegistrationService) RegistrationsByParticipant(ctx context.Context, participantID string) ([]model.Registration, error) {
	return s.regs.ListByParticipant(ctx, participantID)
}

// RepairCounters recomputes the denormalized participant counters from the
// registrations table. Counters drift only if an operator bypasses the
// service layer, but recomputing is cheap enough to expose as an admin call.
func (s *RegistrationService) RepairCounters(ctx context.Context) error {
	return s.regs.RecountParticipants(ctx)
}

// RegistrationsByStatus lists registrations in the given status.
func (s *RegistrationService) RegistrationsByStatus(ctx context.Context, status model.RegistrationStatus) ([]model.Registration, error) {
	if !status.Valid() {
		return nil, model.ErrInvalidStatus
	}
	return s.regs.ListByStatus(ctx, status)
}
