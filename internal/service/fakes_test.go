package service

import (
	"context"
	"time"

	"github.com/confreg/conference-registration/internal/model"
)

// In-memory stores implementing the enrollment engine's interfaces.

type fakeEvents struct {
	byID map[string]*model.Event
}

func newFakeEvents(events ...*model.Event) *fakeEvents {
	f := &fakeEvents{byID: make(map[string]*model.Event)}
	for _, e := range events {
		f.byID[e.ID] = e
	}
	return f
}

func (f *fakeEvents) GetForUpdate(_ context.Context, id string) (*model.Event, error) {
	e, ok := f.byID[id]
	if !ok {
		return nil, model.ErrEventNotFound
	}
	copied := *e
	return &copied, nil
}

func (f *fakeEvents) TryIncrementParticipants(_ context.Context, id string) error {
	e, ok := f.byID[id]
	if !ok {
		return model.ErrEventNotFound
	}
	if e.MaxParticipants != nil && e.CurrentParticipants >= *e.MaxParticipants {
		return model.ErrCapacityExceeded
	}
	e.CurrentParticipants++
	return nil
}

func (f *fakeEvents) DecrementParticipants(_ context.Context, id string) error {
	e, ok := f.byID[id]
	if !ok {
		return model.ErrEventNotFound
	}
	if e.CurrentParticipants > 0 {
		e.CurrentParticipants--
	}
	return nil
}

type fakeSessions struct {
	byID map[string]*model.Session
}

func newFakeSessions(sessions ...*model.Session) *fakeSessions {
	f := &fakeSessions{byID: make(map[string]*model.Session)}
	for _, s := range sessions {
		f.byID[s.ID] = s
	}
	return f
}

func (f *fakeSessions) GetForUpdate(_ context.Context, id string) (*model.Session, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSessions) TryIncrementParticipants(_ context.Context, id string) error {
	s, ok := f.byID[id]
	if !ok {
		return model.ErrSessionNotFound
	}
	if s.CurrentParticipants >= s.MaxCapacity {
		return model.ErrCapacityExceeded
	}
	s.CurrentParticipants++
	return nil
}

func (f *fakeSessions) DecrementParticipants(_ context.Context, id string) error {
	s, ok := f.byID[id]
	if !ok {
		return model.ErrSessionNotFound
	}
	if s.CurrentParticipants > 0 {
		s.CurrentParticipants--
	}
	return nil
}

type fakeParticipants struct {
	byID map[string]*model.Participant
}

func newFakeParticipants(participants ...*model.Participant) *fakeParticipants {
	f := &fakeParticipants{byID: make(map[string]*model.Participant)}
	for _, p := range participants {
		f.byID[p.ID] = p
	}
	return f
}

func (f *fakeParticipants) GetByID(_ context.Context, id string) (*model.Participant, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, model.ErrParticipantNotFound
	}
	copied := *p
	return &copied, nil
}

// fakeRegs keeps registrations in insertion order and resolves conflict
// lookups against a fakeSessions store.
type fakeRegs struct {
	regs     []*model.Registration
	sessions *fakeSessions
}

func newFakeRegs(sessions *fakeSessions, regs ...*model.Registration) *fakeRegs {
	return &fakeRegs{regs: regs, sessions: sessions}
}

func (f *fakeRegs) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeRegs) Create(_ context.Context, reg *model.Registration) error {
	copied := *reg
	f.regs = append(f.regs, &copied)
	return nil
}

func (f *fakeRegs) find(id string) *model.Registration {
	for _, r := range f.regs {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (f *fakeRegs) GetByID(_ context.Context, id string) (*model.Registration, error) {
	r := f.find(id)
	if r == nil {
		return nil, model.ErrRegistrationNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *fakeRegs) GetForUpdate(ctx context.Context, id string) (*model.Registration, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeRegs) UpdateStatus(_ context.Context, id string, status model.RegistrationStatus) error {
	r := f.find(id)
	if r == nil {
		return model.ErrRegistrationNotFound
	}
	r.Status = status
	return nil
}

func (f *fakeRegs) Delete(_ context.Context, id string) error {
	for i, r := range f.regs {
		if r.ID == id {
			f.regs = append(f.regs[:i], f.regs[i+1:]...)
			return nil
		}
	}
	return model.ErrRegistrationNotFound
}

func (f *fakeRegs) FindBlockingByParticipantAndEvent(_ context.Context, participantID, eventID string) (*model.Registration, error) {
	for _, r := range f.regs {
		if r.ParticipantID == participantID && r.EventID == eventID &&
			r.SessionID == nil && r.Status.BlocksReenrollment() {
			copied := *r
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeRegs) FindActiveByParticipantAndEvent(_ context.Context, participantID, eventID string) (*model.Registration, error) {
	for _, r := range f.regs {
		if r.ParticipantID == participantID && r.EventID == eventID &&
			r.SessionID == nil && r.Status.IsActive() {
			copied := *r
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeRegs) ActiveExistsByParticipantAndSession(_ context.Context, participantID, sessionID string) (bool, error) {
	for _, r := range f.regs {
		if r.ParticipantID == participantID && r.SessionID != nil &&
			*r.SessionID == sessionID && r.Status.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRegs) CountActiveBySession(_ context.Context, sessionID string) (int, error) {
	count := 0
	for _, r := range f.regs {
		if r.SessionID != nil && *r.SessionID == sessionID && r.Status.IsActive() {
			count++
		}
	}
	return count, nil
}

func (f *fakeRegs) FindConflictingSession(_ context.Context, participantID string, start, end time.Time) (*model.Session, error) {
	for _, r := range f.regs {
		if r.ParticipantID != participantID || r.SessionID == nil || !r.Status.IsActive() {
			continue
		}
		s, ok := f.sessions.byID[*r.SessionID]
		if !ok || s.Status == model.SessionCancelled {
			continue
		}
		if model.Overlaps(s.StartTime, s.EndTime, start, end) {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeRegs) ListByEvent(_ context.Context, eventID string) ([]model.Registration, error) {
	var out []model.Registration
	for _, r := range f.regs {
		if r.EventID == eventID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRegs) ListBySession(_ context.Context, sessionID string) ([]model.Registration, error) {
	var out []model.Registration
	for _, r := range f.regs {
		if r.SessionID != nil && *r.SessionID == sessionID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRegs) ListByParticipant(_ context.Context, participantID string) ([]model.Registration, error) {
	var out []model.Registration
	for _, r := range f.regs {
		if r.ParticipantID == participantID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRegs) ListByStatus(_ context.Context, status model.RegistrationStatus) ([]model.Registration, error) {
	var out []model.Registration
	for _, r := range f.regs {
		if r.Status == status {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRegs) RecountParticipants(_ context.Context) error {
	return nil
}
