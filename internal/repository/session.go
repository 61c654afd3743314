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

const sessionColumns = `id, event_id, speaker_id, title, description,
	start_time, end_time, max_capacity, current_participants, room_number,
	type, status, requires_registration`

// SessionRepository handles persistence for sessions.
type SessionRepository struct {
	db *pgxpool.Pool
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

func scanSession(row pgx.Row) (*model.Session, error) {
	var s model.Session
	err := row.Scan(&s.ID, &s.EventID, &s.SpeakerID, &s.Title, &s.Description,
		&s.StartTime, &s.EndTime, &s.MaxCapacity, &s.CurrentParticipants,
		&s.RoomNumber, &s.Type, &s.Status, &s.RequiresRegistration)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanSessions(rows pgx.Rows) ([]model.Session, error) {
	defer rows.Close()
	var sessions []model.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// Create inserts a new session.
func (r *SessionRepository) Create(ctx context.Context, s *model.Session) error {
	_, err := exec(ctx, r.db,
		`INSERT INTO sessions (`+sessionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		s.ID, s.EventID, s.SpeakerID, s.Title, s.Description, s.StartTime,
		s.EndTime, s.MaxCapacity, s.CurrentParticipants, s.RoomNumber,
		s.Type, s.Status, s.RequiresRegistration,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetByID returns a single session or ErrSessionNotFound.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*model.Session, error) {
	s, err := scanSession(queryRow(ctx, r.db,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

// GetForUpdate loads a session under a row-level exclusive lock, serializing
// concurrent enrollments into the same session.
func (r *SessionRepository) GetForUpdate(ctx context.Context, id string) (*model.Session, error) {
	s, err := scanSession(queryRow(ctx, r.db,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrSessionNotFound
		}
		return nil, fmt.Errorf("lock session row: %w", err)
	}
	return s, nil
}

// List returns all sessions ordered by start time.
func (r *SessionRepository) List(ctx context.Context) ([]model.Session, error) {
	rows, err := query(ctx, r.db,
		`SELECT `+sessionColumns+` FROM sessions ORDER BY start_time`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return scanSessions(rows)
}

// ListByEvent returns all sessions belonging to an event.
func (r *SessionRepository) ListByEvent(ctx context.Context, eventID string) ([]model.Session, error) {
	rows, err := query(ctx, r.db,
		`SELECT `+sessionColumns+` FROM sessions WHERE event_id = $1 ORDER BY start_time`,
		eventID)
	if err != nil {
		return nil, fmt.Errorf("list sessions by event: %w", err)
	}
	return scanSessions(rows)
}

// ListBySpeaker returns all sessions assigned to a speaker.
func (r *SessionRepository) ListBySpeaker(ctx context.Context, speakerID string) ([]model.Session, error) {
	rows, err := query(ctx, r.db,
		`SELECT `+sessionColumns+` FROM sessions WHERE speaker_id = $1 ORDER BY start_time`,
		speakerID)
	if err != nil {
		return nil, fmt.Errorf("list sessions by speaker: %w", err)
	}
	return scanSessions(rows)
}

// ListWithAvailableSeats returns non-cancelled sessions with free seats.
func (r *SessionRepository) ListWithAvailableSeats(ctx context.Context) ([]model.Session, error) {
	rows, err := query(ctx, r.db,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE current_participants < max_capacity AND status <> 'CANCELLED'
		 ORDER BY start_time`)
	if err != nil {
		return nil, fmt.Errorf("list sessions with seats: %w", err)
	}
	return scanSessions(rows)
}

// ListBetween returns sessions starting within [from, to).
func (r *SessionRepository) ListBetween(ctx context.Context, from, to time.Time) ([]model.Session, error) {
	rows, err := query(ctx, r.db,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE start_time >= $1 AND start_time < $2
		 ORDER BY start_time`,
		from, to)
	if err != nil {
		return nil, fmt.Errorf("list sessions between: %w", err)
	}
	return scanSessions(rows)
}

// Update persists every mutable field of the session.
func (r *SessionRepository) Update(ctx context.Context, s *model.Session) error {
	tag, err := exec(ctx, r.db,
		`UPDATE sessions SET speaker_id = $2, title = $3, description = $4,
		 start_time = $5, end_time = $6, max_capacity = $7, room_number = $8,
		 type = $9, status = $10, requires_registration = $11
		 WHERE id = $1`,
		s.ID, s.SpeakerID, s.Title, s.Description, s.StartTime, s.EndTime,
		s.MaxCapacity, s.RoomNumber, s.Type, s.Status, s.RequiresRegistration,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrSessionNotFound
	}
	return nil
}

// TryIncrementParticipants raises the session counter by one while it is
// below max_capacity, as a single conditional UPDATE. A zero-row result
// means the session was full.
func (r *SessionRepository) TryIncrementParticipants(ctx context.Context, id string) error {
	tag, err := exec(ctx, r.db,
		`UPDATE sessions
		 SET current_participants = current_participants + 1
		 WHERE id = $1 AND current_participants < max_capacity`,
		id,
	)
	if err != nil {
		return fmt.Errorf("increment session participants: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCapacityExceeded
	}
	return nil
}

// DecrementParticipants lowers the session counter by one, floored at zero.
func (r *SessionRepository) DecrementParticipants(ctx context.Context, id string) error {
	_, err := exec(ctx, r.db,
		`UPDATE sessions
		 SET current_participants = current_participants - 1
		 WHERE id = $1 AND current_participants > 0`,
		id,
	)
	if err != nil {
		return fmt.Errorf("decrement session participants: %w", err)
	}
	return nil
}
