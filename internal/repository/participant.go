package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/confreg/conference-registration/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const participantColumns = `id, first_name, last_name, email, phone, company,
	position, registration_date, is_active`

// ParticipantRepository handles persistence for participants.
type ParticipantRepository struct {
	db *pgxpool.Pool
}

// NewParticipantRepository constructs a ParticipantRepository.
func NewParticipantRepository(db *pgxpool.Pool) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func scanParticipant(row pgx.Row) (*model.Participant, error) {
	var p model.Participant
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone,
		&p.Company, &p.Position, &p.RegistrationDate, &p.IsActive)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanParticipants(rows pgx.Rows) ([]model.Participant, error) {
	defer rows.Close()
	var participants []model.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, *p)
	}
	return participants, rows.Err()
}

// Create inserts a new participant. A duplicate email maps to ErrEmailTaken.
func (r *ParticipantRepository) Create(ctx context.Context, p *model.Participant) error {
	_, err := exec(ctx, r.db,
		`INSERT INTO participants (`+participantColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.FirstName, p.LastName, p.Email, p.Phone, p.Company,
		p.Position, p.RegistrationDate, p.IsActive,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrEmailTaken
		}
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

// GetByID returns a single participant or ErrParticipantNotFound.
func (r *ParticipantRepository) GetByID(ctx context.Context, id string) (*model.Participant, error) {
	p, err := scanParticipant(queryRow(ctx, r.db,
		`SELECT `+participantColumns+` FROM participants WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrParticipantNotFound
		}
		return nil, fmt.Errorf("get participant: %w", err)
	}
	return p, nil
}

// GetByEmail returns the participant with the given email, or nil when no
// such participant exists.
func (r *ParticipantRepository) GetByEmail(ctx context.Context, email string) (*model.Participant, error) {
	p, err := scanParticipant(queryRow(ctx, r.db,
		`SELECT `+participantColumns+` FROM participants WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get participant by email: %w", err)
	}
	return p, nil
}

// List returns all participants ordered by registration date.
func (r *ParticipantRepository) List(ctx context.Context) ([]model.Participant, error) {
	rows, err := query(ctx, r.db,
		`SELECT `+participantColumns+` FROM participants ORDER BY registration_date`)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return scanParticipants(rows)
}

// ListActive returns all active participants.
func (r *ParticipantRepository) ListActive(ctx context.Context) ([]model.Participant, error) {
	rows, err := query(ctx, r.db,
		`SELECT `+participantColumns+` FROM participants WHERE is_active ORDER BY registration_date`)
	if err != nil {
		return nil, fmt.Errorf("list active participants: %w", err)
	}
	return scanParticipants(rows)
}

// ListByCompany returns participants affiliated with the given company.
func (r *ParticipantRepository) ListByCompany(ctx context.Context, company string) ([]model.Participant, error) {
	rows, err := query(ctx, r.db,
		`SELECT `+participantColumns+` FROM participants WHERE company = $1 ORDER BY last_name`,
		company)
	if err != nil {
		return nil, fmt.Errorf("list participants by company: %w", err)
	}
	return scanParticipants(rows)
}

// Search matches the keyword case-insensitively against name, email, and
// company.
func (r *ParticipantRepository) Search(ctx context.Context, keyword string) ([]model.Participant, error) {
	rows, err := query(ctx, r.db,
		`SELECT `+participantColumns+` FROM participants
		 WHERE first_name ILIKE '%' || $1 || '%'
		    OR last_name ILIKE '%' || $1 || '%'
		    OR email ILIKE '%' || $1 || '%'
		    OR company ILIKE '%' || $1 || '%'
		 ORDER BY last_name`,
		keyword)
	if err != nil {
		return nil, fmt.Errorf("search participants: %w", err)
	}
	return scanParticipants(rows)
}

// ListByEvent returns the distinct participants holding a registration for
// the event.
func (r *ParticipantRepository) ListByEvent(ctx context.Context, eventID string) ([]model.Participant, error) {
	rows, err := query(ctx, r.db,
		`SELECT DISTINCT p.id, p.first_name, p.last_name, p.email, p.phone,
		        p.company, p.position, p.registration_date, p.is_active
		 FROM participants p
		 JOIN registrations r ON r.participant_id = p.id
		 WHERE r.event_id = $1
		 ORDER BY p.last_name`,
		eventID)
	if err != nil {
		return nil, fmt.Errorf("list participants by event: %w", err)
	}
	return scanParticipants(rows)
}

// Update persists every mutable field of the participant. A duplicate email
// maps to ErrEmailTaken.
func (r *ParticipantRepository) Update(ctx context.Context, p *model.Participant) error {
	tag, err := exec(ctx, r.db,
		`UPDATE participants SET first_name = $2, last_name = $3, email = $4,
		 phone = $5, company = $6, position = $7, is_active = $8
		 WHERE id = $1`,
		p.ID, p.FirstName, p.LastName, p.Email, p.Phone, p.Company,
		p.Position, p.IsActive,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrEmailTaken
		}
		return fmt.Errorf("update participant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrParticipantNotFound
	}
	return nil
}

// SetActive flips the participant's active flag.
func (r *ParticipantRepository) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := exec(ctx, r.db,
		`UPDATE participants SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set participant active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrParticipantNotFound
	}
	return nil
}
