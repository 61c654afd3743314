package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/confreg/conference-registration/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const speakerColumns = `id, name, email, bio, company, specialization,
	phone_number, linkedin_url, twitter_handle, website_url, photo_url,
	speaker_level, is_featured, average_rating, total_ratings, deleted,
	created_at, updated_at`

// SpeakerRepository handles persistence for speakers.
type SpeakerRepository struct {
	db *pgxpool.Pool
}

// NewSpeakerRepository constructs a SpeakerRepository.
func NewSpeakerRepository(db *pgxpool.Pool) *SpeakerRepository {
	return &SpeakerRepository{db: db}
}

func scanSpeaker(row pgx.Row) (*model.Speaker, error) {
	var s model.Speaker
	err := row.Scan(&s.ID, &s.Name, &s.Email, &s.Bio, &s.Company,
		&s.Specialization, &s.PhoneNumber, &s.LinkedinURL, &s.TwitterHandle,
		&s.WebsiteURL, &s.PhotoURL, &s.SpeakerLevel, &s.IsFeatured,
		&s.AverageRating, &s.TotalRatings, &s.Deleted, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanSpeakers(rows pgx.Rows) ([]model.Speaker, error) {
	defer rows.Close()
	var speakers []model.Speaker
	for rows.Next() {
		s, err := scanSpeaker(rows)
		if err != nil {
			return nil, fmt.Errorf("scan speaker: %w", err)
		}
		speakers = append(speakers, *s)
	}
	return speakers, rows.Err()
}

// Create inserts a new speaker. A duplicate email maps to ErrEmailTaken.
func (r *SpeakerRepository) Create(ctx context.Context, s *model.Speaker) error {
	_, err := exec(ctx, r.db,
		`INSERT INTO speakers (`+speakerColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		s.ID, s.Name, s.Email, s.Bio, s.Company, s.Specialization,
		s.PhoneNumber, s.LinkedinURL, s.TwitterHandle, s.WebsiteURL,
		s.PhotoURL, s.SpeakerLevel, s.IsFeatured, s.AverageRating,
		s.TotalRatings, s.Deleted, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrEmailTaken
		}
		return fmt.Errorf("insert speaker: %w", err)
	}
	return nil
}

// GetByID returns a single speaker or ErrSpeakerNotFound.
func (r *SpeakerRepository) GetByID(ctx context.Context, id string) (*model.Speaker, error) {
	s, err := scanSpeaker(queryRow(ctx, r.db,
		`SELECT `+speakerColumns+` FROM speakers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrSpeakerNotFound
		}
		return nil, fmt.Errorf("get speaker: %w", err)
	}
	return s, nil
}

// GetForUpdate loads a speaker under a row-level lock so concurrent rating
// updates keep the running mean consistent.
func (r *SpeakerRepository) GetForUpdate(ctx context.Context, id string) (*model.Speaker, error) {
	s, err := scanSpeaker(queryRow(ctx, r.db,
		`SELECT `+speakerColumns+` FROM speakers WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrSpeakerNotFound
		}
		return nil, fmt.Errorf("lock speaker row: %w", err)
	}
	return s, nil
}

// WithTx runs fn inside a transaction, joining any ambient one.
func (r *SpeakerRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return runInTx(ctx, r.db, fn)
}

// List returns all non-deleted speakers.
func (r *SpeakerRepository) List(ctx context.Context) ([]model.Speaker, error) {
	rows, err := query(ctx, r.db,
		`SELECT `+speakerColumns+` FROM speakers WHERE NOT deleted ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list speakers: %w", err)
	}
	return scanSpeakers(rows)
}

// ListFeatured returns non-deleted featured speakers.
func (r *SpeakerRepository) ListFeatured(ctx context.Context) ([]model.Speaker, error) {
	rows, err := query(ctx, r.db,
		`SELECT `+speakerColumns+` FROM speakers WHERE NOT deleted AND is_featured ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list featured speakers: %w", err)
	}
	return scanSpeakers(rows)
}

// ListTopRated returns non-deleted speakers with an average rating at or
// above min, best first.
func (r *SpeakerRepository) ListTopRated(ctx context.Context, min float64) ([]model.Speaker, error) {
	rows, err := query(ctx, r.db,
		`SELECT `+speakerColumns+` FROM speakers
		 WHERE NOT deleted AND average_rating >= $1
		 ORDER BY average_rating DESC`,
		min)
	if err != nil {
		return nil, fmt.Errorf("list top rated speakers: %w", err)
	}
	return scanSpeakers(rows)
}

// Update persists every mutable field of the speaker.
func (r *SpeakerRepository) Update(ctx context.Context, s *model.Speaker) error {
	tag, err := exec(ctx, r.db,
		`UPDATE speakers SET name = $2, email = $3, bio = $4, company = $5,
		 specialization = $6, phone_number = $7, linkedin_url = $8,
		 twitter_handle = $9, website_url = $10, photo_url = $11,
		 speaker_level = $12, is_featured = $13, average_rating = $14,
		 total_ratings = $15, updated_at = NOW()
		 WHERE id = $1`,
		s.ID, s.Name, s.Email, s.Bio, s.Company, s.Specialization,
		s.PhoneNumber, s.LinkedinURL, s.TwitterHandle, s.WebsiteURL,
		s.PhotoURL, s.SpeakerLevel, s.IsFeatured, s.AverageRating,
		s.TotalRatings,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrEmailTaken
		}
		return fmt.Errorf("update speaker: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrSpeakerNotFound
	}
	return nil
}

// Delete removes the speaker row.
func (r *SpeakerRepository) Delete(ctx context.Context, id string) error {
	tag, err := exec(ctx, r.db, `DELETE FROM speakers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete speaker: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrSpeakerNotFound
	}
	return nil
}
