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

// SpeakerService implements speaker CRUD, ratings, and availability checks.
type SpeakerService struct {
	speakers *repository.SpeakerRepository
	sessions *repository.SessionRepository
	clock    clock.Clock
}

// NewSpeakerService constructs a SpeakerService.
func NewSpeakerService(
	speakers *repository.SpeakerRepository,
	sessions *repository.SessionRepository,
	clk clock.Clock,
) *SpeakerService {
	return &SpeakerService{speakers: speakers, sessions: sessions, clock: clk}
}

// CreateSpeakerInput is the payload for creating a speaker.
type CreateSpeakerInput struct {
	Name           string
	Email          string
	Bio            string
	Company        string
	Specialization string
	PhoneNumber    string
	LinkedinURL    string
	TwitterHandle  string
	WebsiteURL     string
	PhotoURL       string
	SpeakerLevel   string
	IsFeatured     bool
}

// CreateSpeaker validates the input and persists a new speaker.
func (s *SpeakerService) CreateSpeaker(ctx context.Context, in CreateSpeakerInput) (*model.Speaker, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Name == "" {
		return nil, errors.New("speaker name is required")
	}
	if !isValidEmail(in.Email) {
		return nil, errors.New("email is not a valid address")
	}

	level := model.SpeakerRegular
	if in.SpeakerLevel != "" {
		level = model.SpeakerLevel(strings.ToUpper(in.SpeakerLevel))
	}
	now := s.clock.Now()
	speaker := &model.Speaker{
		ID:             uuid.New().String(),
		Name:           in.Name,
		Email:          in.Email,
		Bio:            in.Bio,
		Company:        in.Company,
		Specialization: in.Specialization,
		PhoneNumber:    in.PhoneNumber,
		LinkedinURL:    in.LinkedinURL,
		TwitterHandle:  in.TwitterHandle,
		WebsiteURL:     in.WebsiteURL,
		PhotoURL:       in.PhotoURL,
		SpeakerLevel:   level,
		IsFeatured:     in.IsFeatured,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.speakers.Create(ctx, speaker); err != nil {
		return nil, err
	}
	return speaker, nil
}

// GetSpeaker returns a single speaker by ID.
func (s *SpeakerService) GetSpeaker(ctx context.Context, id string) (*model.Speaker, error) {
	return s.speakers.GetByID(ctx, id)
}

// ListSpeakers returns all speakers.
func (s *SpeakerService) ListSpeakers(ctx context.Context) ([]model.Speaker, error) {
	return s.speakers.List(ctx)
}

// FeaturedSpeakers returns speakers flagged as featured.
func (s *SpeakerService) FeaturedSpeakers(ctx context.Context) ([]model.Speaker, error) {
	return s.speakers.ListFeatured(ctx)
}

// TopRatedSpeakers returns speakers rated at or above min.
func (s *SpeakerService) TopRatedSpeakers(ctx context.Context, min float64) ([]model.Speaker, error) {
	return s.speakers.ListTopRated(ctx, min)
}

// SpeakerSessions returns the sessions assigned to a speaker.
func (s *SpeakerService) SpeakerSessions(ctx context.Context, speakerID string) ([]model.Session, error) {
	return s.sessions.ListBySpeaker(ctx, speakerID)
}

// FutureSpeakerSessions returns the speaker's sessions that have not yet
// started.
func (s *SpeakerService) FutureSpeakerSessions(ctx context.Context, speakerID string) ([]model.Session, error) {
	sessions, err := s.sessions.ListBySpeaker(ctx, speakerID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	future := sessions[:0]
	for _, session := range sessions {
		if session.StartTime.After(now) {
			future = append(future, session)
		}
	}
	return future, nil
}

// UpdateSpeakerInput carries optional replacement values; nil fields keep
// the stored value.
type UpdateSpeakerInput struct {
	Name           *string
	Email          *string
	Bio            *string
	Company        *string
	Specialization *string
	PhoneNumber    *string
	LinkedinURL    *string
	TwitterHandle  *string
	WebsiteURL     *string
	PhotoURL       *string
	SpeakerLevel   *string
	IsFeatured     *bool
}

// UpdateSpeaker applies the non-nil fields of in to the stored speaker.
func (s *SpeakerService) UpdateSpeaker(ctx context.Context, id string, in UpdateSpeakerInput) (*model.Speaker, error) {
	speaker, err := s.speakers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		speaker.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		speaker.Email = strings.TrimSpace(strings.ToLower(*in.Email))
	}
	if in.Bio != nil {
		speaker.Bio = *in.Bio
	}
	if in.Company != nil {
		speaker.Company = *in.Company
	}
	if in.Specialization != nil {
		speaker.Specialization = *in.Specialization
	}
	if in.PhoneNumber != nil {
		speaker.PhoneNumber = *in.PhoneNumber
	}
	if in.LinkedinURL != nil {
		speaker.LinkedinURL = *in.LinkedinURL
	}
	if in.TwitterHandle != nil {
		speaker.TwitterHandle = *in.TwitterHandle
	}
	if in.WebsiteURL != nil {
		speaker.WebsiteURL = *in.WebsiteURL
	}
	if in.PhotoURL != nil {
		speaker.PhotoURL = *in.PhotoURL
	}
	if in.SpeakerLevel != nil {
		speaker.SpeakerLevel = model.SpeakerLevel(strings.ToUpper(*in.SpeakerLevel))
	}
	if in.IsFeatured != nil {
		speaker.IsFeatured = *in.IsFeatured
	}

	if err := s.speakers.Update(ctx, speaker); err != nil {
		return nil, err
	}
	return speaker, nil
}

// DeleteSpeaker removes the speaker.
func (s *SpeakerService) DeleteSpeaker(ctx context.Context, id string) error {
	return s.speakers.Delete(ctx, id)
}

// RateSpeaker folds a rating in [1,5] into the speaker's running mean. The
// read-modify-write runs under a row lock so concurrent ratings cannot lose
// updates.
func (s *SpeakerService) RateSpeaker(ctx context.Context, id string, rating int) (*model.Speaker, error) {
	var rated *model.Speaker
	err := s.speakers.WithTx(ctx, func(ctx context.Context) error {
		speaker, err := s.speakers.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := speaker.AddRating(rating); err != nil {
			return err
		}
		if err := s.speakers.Update(ctx, speaker); err != nil {
			return err
		}
		rated = speaker
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rated, nil
}

// ToggleFeatured flips the speaker's featured flag.
func (s *SpeakerService) ToggleFeatured(ctx context.Context, id string) (*model.Speaker, error) {
	speaker, err := s.speakers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	featured := !speaker.IsFeatured
	return s.UpdateSpeaker(ctx, id, UpdateSpeakerInput{IsFeatured: &featured})
}

// AvailableSpeakers returns speakers with no session overlapping the window.
func (s *SpeakerService) AvailableSpeakers(ctx context.Context, start, end string) ([]model.Speaker, error) {
	from, to, err := parseWindow(start, end)
	if err != nil {
		return nil, err
	}

	speakers, err := s.speakers.List(ctx)
	if err != nil {
		return nil, err
	}
	available := speakers[:0]
	for _, speaker := range speakers {
		sessions, err := s.sessions.ListBySpeaker(ctx, speaker.ID)
		if err != nil {
			return nil, err
		}
		busy := false
		for i := range sessions {
			if model.Overlaps(sessions[i].StartTime, sessions[i].EndTime, from, to) {
				busy = true
				break
			}
		}
		if !busy {
			available = append(available, speaker)
		}
	}
	return available, nil
}
