package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/confreg/conference-registration/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const eventColumns = `id, name, description, start_date, end_date, location,
	max_participants, current_participants, status, requires_approval,
	registration_open, deleted, created_at`

// EventRepository handles persistence for events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.Name, &e.Description, &e.StartDate, &e.EndDate,
		&e.Location, &e.MaxParticipants, &e.CurrentParticipants, &e.Status,
		&e.RequiresApproval, &e.RegistrationOpen, &e.Deleted, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func scanEvents(rows pgx.Rows) ([]model.Event, error) {
	defer rows.Close()
	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// Create inserts a new event.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) error {
	_, err := exec(ctx, r.db,
		`INSERT INTO events (`+eventColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		e.ID, e.Name, e.Description, e.StartDate, e.EndDate, e.Location,
		e.MaxParticipants, e.CurrentParticipants, e.Status, e.RequiresApproval,
		e.RegistrationOpen, e.Deleted, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetByID returns a single event or ErrEventNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	e, err := scanEvent(queryRow(ctx, r.db,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// GetForUpdate loads an event under a row-level exclusive lock. Concurrent
// enrollments against the same event serialize on this lock.
func (r *EventRepository) GetForUpdate(ctx context.Context, id string) (*model.Event, error) {
	e, err := scanEvent(queryRow(ctx, r.db,
		`SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrEventNotFound
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}
	return e, nil
}

// List returns all non-deleted events ordered by start date.
func (r *EventRepository) List(ctx context.Context) ([]model.Event, error) {
	rows, err := query(ctx, r.db,
		`SELECT `+eventColumns+` FROM events WHERE NOT deleted ORDER BY start_date`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return scanEvents(rows)
}

// ListWithAvailableSpots returns non-deleted events that still have
// event-level capacity.
func (r *EventRepository) ListWithAvailableSpots(ctx context.Context) ([]model.Event, error) {
	rows, err := query(ctx, r.db,
		`SELECT `+eventColumns+` FROM events
		 WHERE NOT deleted
		   AND (max_participants IS NULL OR current_participants < max_participants)
		 ORDER BY start_date`)
	if err != nil {
		return nil, fmt.Errorf("list events with spots: %w", err)
	}
	return scanEvents(rows)
}

// ListOpen returns non-deleted events accepting registrations.
func (r *EventRepository) ListOpen(ctx context.Context) ([]model.Event, error) {
	rows, err := query(ctx, r.db,
		`SELECT `+eventColumns+` FROM events
		 WHERE NOT deleted AND registration_open
		 ORDER BY start_date`)
	if err != nil {
		return nil, fmt.Errorf("list open events: %w", err)
	}
	return scanEvents(rows)
}

// Update persists every mutable field of the event.
func (r *EventRepository) Update(ctx context.Context, e *model.Event) error {
	tag, err := exec(ctx, r.db,
		`UPDATE events SET name = $2, description = $3, start_date = $4,
		 end_date = $5, location = $6, max_participants = $7, status = $8,
		 requires_approval = $9, registration_open = $10, deleted = $11
		 WHERE id = $1`,
		e.ID, e.Name, e.Description, e.StartDate, e.EndDate, e.Location,
		e.MaxParticipants, e.Status, e.RequiresApproval, e.RegistrationOpen,
		e.Deleted,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrEventNotFound
	}
	return nil
}

// SoftDelete marks the event deleted without removing its rows.
func (r *EventRepository) SoftDelete(ctx context.Context, id string) error {
	tag, err := exec(ctx, r.db, `UPDATE events SET deleted = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrEventNotFound
	}
	return nil
}

// TryIncrementParticipants raises the event counter by one, but only while
// it is below the configured maximum. The check and the write are a single
// conditional UPDATE so no interleaving can over-admit; a zero-row result
// means the event was full.
func (r *EventRepository) TryIncrementParticipants(ctx context.Context, id string) error {
	tag, err := exec(ctx, r.db,
		`UPDATE events
		 SET current_participants = current_participants + 1
		 WHERE id = $1
		   AND (max_participants IS NULL OR current_participants < max_participants)`,
		id,
	)
	if err != nil {
		return fmt.Errorf("increment event participants: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCapacityExceeded
	}
	return nil
}

// DecrementParticipants lowers the event counter by one, floored at zero.
// Decrementing an already-zero counter is a no-op.
func (r *EventRepository) DecrementParticipants(ctx context.Context, id string) error {
	_, err := exec(ctx, r.db,
		`UPDATE events
		 SET current_participants = current_participants - 1
		 WHERE id = $1 AND current_participants > 0`,
		id,
	)
	if err != nil {
		return fmt.Errorf("decrement event participants: %w", err)
	}
	return nil
}
