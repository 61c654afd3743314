package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/confreg/conference-registration/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const registrationColumns = `id, participant_id, event_id, session_id,
	registration_date, status`

// activeStatuses are the registration statuses that count toward capacity
// and conflict checks. ATTENDED counts as historically active.
var activeStatuses = []string{
	string(model.RegistrationPending),
	string(model.RegistrationConfirmed),
	string(model.RegistrationWaitlisted),
	string(model.RegistrationAttended),
}

// blockingStatuses are the statuses that prevent re-enrollment for the same
// target. CANCELLED and NO_SHOW do not block a new registration.
var blockingStatuses = []string{
	string(model.RegistrationPending),
	string(model.RegistrationConfirmed),
	string(model.RegistrationWaitlisted),
}

// RegistrationRepository handles persistence for registrations.
type RegistrationRepository struct {
	db *pgxpool.Pool
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// WithTx runs fn inside a transaction, joining any ambient one. Every engine
// mutation goes through this so counter updates and registration writes
// commit or roll back together.
func (r *RegistrationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return runInTx(ctx, r.db, fn)
}

func scanRegistration(row pgx.Row) (*model.Registration, error) {
	var reg model.Registration
	err := row.Scan(&reg.ID, &reg.ParticipantID, &reg.EventID, &reg.SessionID,
		&reg.RegistrationDate, &reg.Status)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func scanRegistrations(rows pgx.Rows) ([]model.Registration, error) {
	defer rows.Close()
	var regs []model.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, *reg)
	}
	return regs, rows.Err()
}

// Create inserts a new registration.
func (r *RegistrationRepository) Create(ctx context.Context, reg *model.Registration) error {
	_, err := exec(ctx, r.db,
		`INSERT INTO registrations (`+registrationColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		reg.ID, reg.ParticipantID, reg.EventID, reg.SessionID,
		reg.RegistrationDate, reg.Status,
	)
	if err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

// GetByID returns a single registration or ErrRegistrationNotFound.
func (r *RegistrationRepository) GetByID(ctx context.Context, id string) (*model.Registration, error) {
	reg, err := scanRegistration(queryRow(ctx, r.db,
		`SELECT `+registrationColumns+` FROM registrations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return reg, nil
}

// GetForUpdate loads a registration under a row-level lock for status
// transitions.
func (r *RegistrationRepository) GetForUpdate(ctx context.Context, id string) (*model.Registration, error) {
	reg, err := scanRegistration(queryRow(ctx, r.db,
		`SELECT `+registrationColumns+` FROM registrations WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("lock registration row: %w", err)
	}
	return reg, nil
}

// UpdateStatus sets the registration status.
func (r *RegistrationRepository) UpdateStatus(ctx context.Context, id string, status model.RegistrationStatus) error {
	tag, err := exec(ctx, r.db,
		`UPDATE registrations SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update registration status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrRegistrationNotFound
	}
	return nil
}

// Delete removes the registration row. This is the administrative path that
// bypasses business rules; counters are not touched.
func (r *RegistrationRepository) Delete(ctx context.Context, id string) error {
	tag, err := exec(ctx, r.db, `DELETE FROM registrations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrRegistrationNotFound
	}
	return nil
}

// FindBlockingByParticipantAndEvent returns the participant's event-level
// (sessionless) registration for the event if one exists in a status that
// blocks re-enrollment, or nil.
func (r *RegistrationRepository) FindBlockingByParticipantAndEvent(ctx context.Context, participantID, eventID string) (*model.Registration, error) {
	reg, err := scanRegistration(queryRow(ctx, r.db,
		`SELECT `+registrationColumns+` FROM registrations
		 WHERE participant_id = $1 AND event_id = $2 AND session_id IS NULL
		   AND status = ANY($3)
		 LIMIT 1`,
		participantID, eventID, blockingStatuses))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find registration by participant and event: %w", err)
	}
	return reg, nil
}

// FindActiveByParticipantAndEvent returns the participant's event-level
// (sessionless) registration for the event if one exists in an active status,
// or nil. Unlike FindBlockingByParticipantAndEvent this treats ATTENDED as
// present, so an implicit event enrollment can reuse it instead of creating a
// duplicate.
func (r *RegistrationRepository) FindActiveByParticipantAndEvent(ctx context.Context, participantID, eventID string) (*model.Registration, error) {
	reg, err := scanRegistration(queryRow(ctx, r.db,
		`SELECT `+registrationColumns+` FROM registrations
		 WHERE participant_id = $1 AND event_id = $2 AND session_id IS NULL
		   AND status = ANY($3)
		 LIMIT 1`,
		participantID, eventID, activeStatuses))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find active registration by participant and event: %w", err)
	}
	return reg, nil
}

// ActiveExistsByParticipantAndSession reports whether the participant holds
// an active registration for the session.
func (r *RegistrationRepository) ActiveExistsByParticipantAndSession(ctx context.Context, participantID, sessionID string) (bool, error) {
	var exists bool
	err := queryRow(ctx, r.db,
		`SELECT EXISTS (
		   SELECT 1 FROM registrations
		   WHERE participant_id = $1 AND session_id = $2 AND status = ANY($3)
		 )`,
		participantID, sessionID, activeStatuses).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check session registration: %w", err)
	}
	return exists, nil
}

// CountActiveBySession returns the number of active registrations for the
// session.
func (r *RegistrationRepository) CountActiveBySession(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := queryRow(ctx, r.db,
		`SELECT COUNT(*) FROM registrations
		 WHERE session_id = $1 AND status = ANY($2)`,
		sessionID, activeStatuses).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count session registrations: %w", err)
	}
	return count, nil
}

// FindConflictingSession returns one session the participant is actively
// registered for whose time window overlaps [start, end), or nil. Cancelled
// registrations and cancelled sessions are ignored; windows that merely
// touch at an endpoint do not conflict.
func (r *RegistrationRepository) FindConflictingSession(ctx context.Context, participantID string, start, end time.Time) (*model.Session, error) {
	s, err := scanSession(queryRow(ctx, r.db,
		`SELECT s.id, s.event_id, s.speaker_id, s.title, s.description,
		        s.start_time, s.end_time, s.max_capacity, s.current_participants,
		        s.room_number, s.type, s.status, s.requires_registration
		 FROM registrations r
		 JOIN sessions s ON s.id = r.session_id
		 WHERE r.participant_id = $1
		   AND r.status = ANY($2)
		   AND s.status <> 'CANCELLED'
		   AND s.start_time < $4
		   AND $3 < s.end_time
		 ORDER BY s.start_time
		 LIMIT 1`,
		participantID, activeStatuses, start, end))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find conflicting session: %w", err)
	}
	return s, nil
}

// ListByEvent returns all registrations for an event.
func (r *RegistrationRepository) ListByEvent(ctx context.Context, eventID string) ([]model.Registration, error) {
	rows, err := query(ctx, r.db,
		`SELECT `+registrationColumns+` FROM registrations
		 WHERE event_id = $1 ORDER BY registration_date`,
		eventID)
	if err != nil {
		return nil, fmt.Errorf("list registrations by event: %w", err)
	}
	return scanRegistrations(rows)
}

// ListBySession returns all registrations for a session.
func (r *RegistrationRepository) ListBySession(ctx context.Context, sessionID string) ([]model.Registration, error) {
	rows, err := query(ctx, r.db,
		`SELECT `+registrationColumns+` FROM registrations
		 WHERE session_id = $1 ORDER BY registration_date`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("list registrations by session: %w", err)
	}
	return scanRegistrations(rows)
}

// ListByParticipant returns all registrations held by a participant.
func (r *RegistrationRepository) ListByParticipant(ctx context.Context, participantID string) ([]model.Registration, error) {
	rows, err := query(ctx, r.db,
		`SELECT `+registrationColumns+` FROM registrations
		 WHERE participant_id = $1 ORDER BY registration_date`,
		participantID)
	if err != nil {
		return nil, fmt.Errorf("list registrations by participant: %w", err)
	}
	return scanRegistrations(rows)
}

// ListByStatus returns all registrations in the given status.
func (r *RegistrationRepository) ListByStatus(ctx context.Context, status model.RegistrationStatus) ([]model.Registration, error) {
	rows, err := query(ctx, r.db,
		`SELECT `+registrationColumns+` FROM registrations
		 WHERE status = $1 ORDER BY registration_date`,
		status)
	if err != nil {
		return nil, fmt.Errorf("list registrations by status: %w", err)
	}
	return scanRegistrations(rows)
}

// RecountParticipants recomputes the denormalized counters on events and
// sessions from the active registration set. The counters are derivable
// state; this is the repair path for drift and the oracle for tests.
func (r *RegistrationRepository) RecountParticipants(ctx context.Context) error {
	return runInTx(ctx, r.db, func(ctx context.Context) error {
		if _, err := exec(ctx, r.db,
			`UPDATE events e SET current_participants = (
			   SELECT COUNT(*) FROM registrations
			   WHERE event_id = e.id AND session_id IS NULL AND status = ANY($1)
			 )`,
			activeStatuses); err != nil {
			return fmt.Errorf("recount event participants: %w", err)
		}
		if _, err := exec(ctx, r.db,
			`UPDATE sessions s SET current_participants = (
			   SELECT COUNT(*) FROM registrations
			   WHERE session_id = s.id AND status = ANY($1)
			 )`,
			activeStatuses); err != nil {
			return fmt.Errorf("recount session participants: %w", err)
		}
		return nil
	})
}
