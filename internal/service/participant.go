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

// ParticipantService implements participant CRUD and lookups.
type ParticipantService struct {
	participants *repository.ParticipantRepository
	clock        clock.Clock
}

// NewParticipantService constructs a ParticipantService.
func NewParticipantService(participants *repository.ParticipantRepository, clk clock.Clock) *ParticipantService {
	return &ParticipantService{participants: participants, clock: clk}
}

// CreateParticipantInput is the payload for creating a participant.
type CreateParticipantInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Company   string
	Position  string
}

// CreateParticipant validates the input and persists a new participant.
// Emails are unique across participants.
func (s *ParticipantService) CreateParticipant(ctx context.Context, in CreateParticipantInput) (*model.Participant, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.FirstName == "" || in.LastName == "" {
		return nil, errors.New("first and last name are required")
	}
	if !isValidEmail(in.Email) {
		return nil, errors.New("email is not a valid address")
	}

	existing, err := s.participants.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, model.ErrEmailTaken
	}

	participant := &model.Participant{
		ID:               uuid.New().String(),
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		Email:            in.Email,
		Phone:            in.Phone,
		Company:          in.Company,
		Position:         in.Position,
		RegistrationDate: s.clock.Now(),
		IsActive:         true,
	}
	if err := s.participants.Create(ctx, participant); err != nil {
		return nil, err
	}
	return participant, nil
}

// GetParticipant returns a single participant by ID.
func (s *ParticipantService) GetParticipant(ctx context.Context, id string) (*model.Participant, error) {
	return s.participants.GetByID(ctx, id)
}

// ListParticipants returns all participants.
func (s *ParticipantService) ListParticipants(ctx context.Context) ([]model.Participant, error) {
	return s.participants.List(ctx)
}

// ActiveParticipants returns participants with the active flag set.
func (s *ParticipantService) ActiveParticipants(ctx context.Context) ([]model.Participant, error) {
	return s.participants.ListActive(ctx)
}

// ParticipantsByCompany returns participants affiliated with the company.
func (s *ParticipantService) ParticipantsByCompany(ctx context.Context, company string) ([]model.Participant, error) {
	return s.participants.ListByCompany(ctx, company)
}

// ParticipantsByEvent returns the distinct participants registered for an
// event.
func (s *ParticipantService) ParticipantsByEvent(ctx context.Context, eventID string) ([]model.Participant, error) {
	return s.participants.ListByEvent(ctx, eventID)
}

// SearchParticipants matches a keyword against names, emails, and companies.
func (s *ParticipantService) SearchParticipants(ctx context.Context, keyword string) ([]model.Participant, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, errors.New("search keyword is required")
	}
	return s.participants.Search(ctx, keyword)
}

// UpdateParticipantInput carries optional replacement values; nil fields
// keep the stored value.
type UpdateParticipantInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	Company   *string
	Position  *string
	IsActive  *bool
}

// UpdateParticipant applies the non-nil fields of in, re-checking email
// uniqueness on a change of address.
func (s *ParticipantService) UpdateParticipant(ctx context.Context, id string, in UpdateParticipantInput) (*model.Participant, error) {
	participant, err := s.participants.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		participant.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		participant.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*in.Email))
		if email != participant.Email {
			if !isValidEmail(email) {
				return nil, errors.New("email is not a valid address")
			}
			existing, err := s.participants.GetByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != id {
				return nil, model.ErrEmailTaken
			}
			participant.Email = email
		}
	}
	if in.Phone != nil {
		participant.Phone = *in.Phone
	}
	if in.Company != nil {
		participant.Company = *in.Company
	}
	if in.Position != nil {
		participant.Position = *in.Position
	}
	if in.IsActive != nil {
		participant.IsActive = *in.IsActive
	}

	if err := s.participants.Update(ctx, participant); err != nil {
		return nil, err
	}
	return participant, nil
}

// DeleteParticipant deactivates the participant rather than removing rows.
func (s *ParticipantService) DeleteParticipant(ctx context.Context, id string) error {
	if _, err := s.participants.GetByID(ctx, id); err != nil {
		return err
	}
	return s.participants.SetActive(ctx, id, false)
}

// ActivateParticipant sets the active flag.
func (s *ParticipantService) ActivateParticipant(ctx context.Context, id string) (*model.Participant, error) {
	return s.setActive(ctx, id, true)
}

// DeactivateParticipant clears the active flag.
func (s *ParticipantService) DeactivateParticipant(ctx context.Context, id string) (*model.Participant, error) {
	return s.setActive(ctx, id, false)
}

func (s *ParticipantService) setActive(ctx context.Context, id string, active bool) (*model.Participant, error) {
	participant, err := s.participants.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.participants.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	participant.IsActive = active
	return participant, nil
}

// isValidEmail checks the address has a local part and a dotted domain.
func isValidEmail(email string) bool {
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return false
	}
	return local != "" && strings.Contains(domain, ".")
}
