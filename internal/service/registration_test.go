package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/confreg/conference-registration/internal/clock"
	"github.com/confreg/conference-registration/internal/model"
)

var testNow = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

type engineFixture struct {
	svc          *RegistrationService
	events       *fakeEvents
	sessions     *fakeSessions
	participants *fakeParticipants
	regs         *fakeRegs
}

func newEngine(events []*model.Event, sessions []*model.Session, participants []*model.Participant, regs ...*model.Registration) *engineFixture {
	fe := newFakeEvents(events...)
	fs := newFakeSessions(sessions...)
	fp := newFakeParticipants(participants...)
	fr := newFakeRegs(fs, regs...)
	svc := NewRegistrationService(
		fr, fp, fe, fs,
		NewCapacityTracker(fe, fs),
		NewConflictDetector(fr),
		clock.Fixed(testNow),
	)
	return &engineFixture{svc: svc, events: fe, sessions: fs, participants: fp, regs: fr}
}

func intp(v int) *int { return &v }

func openEvent(id string, max *int) *model.Event {
	return &model.Event{
		ID:               id,
		Name:             "Conf " + id,
		StartDate:        testNow.Add(24 * time.Hour),
		EndDate:          testNow.Add(48 * time.Hour),
		MaxParticipants:  max,
		Status:           model.EventActive,
		RegistrationOpen: true,
	}
}

func scheduledSession(id, eventID string, start, end time.Time, capacity int) *model.Session {
	return &model.Session{
		ID:          id,
		EventID:     eventID,
		Title:       "Session " + id,
		StartTime:   start,
		EndTime:     end,
		MaxCapacity: capacity,
		Status:      model.SessionScheduled,
	}
}

func attendee(id string) *model.Participant {
	return &model.Participant{ID: id, FirstName: "Ada", LastName: "L", Email: id + "@example.com", IsActive: true}
}

func TestEnrollInEvent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates confirmed registration and bumps counter", func(t *testing.T) {
		f := newEngine(
			[]*model.Event{openEvent("event-1", intp(10))},
			nil,
			[]*model.Participant{attendee("part-1")},
		)

		reg, err := f.svc.EnrollInEvent(ctx, "part-1", "event-1")
		if err != nil {
			t.Fatalf("EnrollInEvent: %v", err)
		}
		if reg.ID == "" {
			t.Fatalf("expected registration ID to be set")
		}
		if reg.Status != model.RegistrationConfirmed {
			t.Fatalf("status = %s, want CONFIRMED", reg.Status)
		}
		if reg.Kind() != model.EventLevel {
			t.Fatalf("expected event-level registration")
		}
		if !reg.RegistrationDate.Equal(testNow) {
			t.Fatalf("registration date = %v, want %v", reg.RegistrationDate, testNow)
		}
		if got := f.events.byID["event-1"].CurrentParticipants; got != 1 {
			t.Fatalf("event counter = %d, want 1", got)
		}
	})

	t.Run("unknown participant", func(t *testing.T) {
		f := newEngine([]*model.Event{openEvent("event-1", nil)}, nil, nil)
		if _, err := f.svc.EnrollInEvent(ctx, "ghost", "event-1"); !errors.Is(err, model.ErrParticipantNotFound) {
			t.Fatalf("err = %v, want ErrParticipantNotFound", err)
		}
	})

	t.Run("closed registration", func(t *testing.T) {
		event := openEvent("event-1", nil)
		event.RegistrationOpen = false
		f := newEngine([]*model.Event{event}, nil, []*model.Participant{attendee("part-1")})
		if _, err := f.svc.EnrollInEvent(ctx, "part-1", "event-1"); !errors.Is(err, model.ErrRegistrationClosed) {
			t.Fatalf("err = %v, want ErrRegistrationClosed", err)
		}
	})

	t.Run("full event", func(t *testing.T) {
		event := openEvent("event-1", intp(1))
		event.CurrentParticipants = 1
		f := newEngine([]*model.Event{event}, nil, []*model.Participant{attendee("part-1")})
		if _, err := f.svc.EnrollInEvent(ctx, "part-1", "event-1"); !errors.Is(err, model.ErrCapacityExceeded) {
			t.Fatalf("err = %v, want ErrCapacityExceeded", err)
		}
		if len(f.regs.regs) != 0 {
			t.Fatalf("no registration should be created, got %d", len(f.regs.regs))
		}
	})

	t.Run("active registration blocks re-enrollment", func(t *testing.T) {
		f := newEngine(
			[]*model.Event{openEvent("event-1", nil)},
			nil,
			[]*model.Participant{attendee("part-1")},
			&model.Registration{ID: "reg-1", ParticipantID: "part-1", EventID: "event-1", Status: model.RegistrationConfirmed},
		)
		if _, err := f.svc.EnrollInEvent(ctx, "part-1", "event-1"); !errors.Is(err, model.ErrAlreadyRegistered) {
			t.Fatalf("err = %v, want ErrAlreadyRegistered", err)
		}
	})

	t.Run("cancelled and no-show registrations do not block", func(t *testing.T) {
		for _, status := range []model.RegistrationStatus{model.RegistrationCancelled, model.RegistrationNoShow} {
			f := newEngine(
				[]*model.Event{openEvent("event-1", nil)},
				nil,
				[]*model.Participant{attendee("part-1")},
				&model.Registration{ID: "reg-old", ParticipantID: "part-1", EventID: "event-1", Status: status},
			)
			reg, err := f.svc.EnrollInEvent(ctx, "part-1", "event-1")
			if err != nil {
				t.Fatalf("re-enroll after %s: %v", status, err)
			}
			if reg.ID == "reg-old" {
				t.Fatalf("expected a new registration record, old one was revived")
			}
			if len(f.regs.regs) != 2 {
				t.Fatalf("expected 2 records after %s re-enroll, got %d", status, len(f.regs.regs))
			}
		}
	})
}

func TestEnrollInSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	start := testNow.Add(25 * time.Hour)
	end := start.Add(time.Hour)

	t.Run("implicitly enrolls in the event first", func(t *testing.T) {
		f := newEngine(
			[]*model.Event{openEvent("event-1", intp(10))},
			[]*model.Session{scheduledSession("sess-1", "event-1", start, end, 5)},
			[]*model.Participant{attendee("part-1")},
		)

		reg, err := f.svc.EnrollInSession(ctx, "part-1", "sess-1")
		if err != nil {
			t.Fatalf("EnrollInSession: %v", err)
		}
		if reg.Kind() != model.SessionLevel {
			t.Fatalf("expected session-level registration")
		}
		if len(f.regs.regs) != 2 {
			t.Fatalf("expected event-level plus session-level records, got %d", len(f.regs.regs))
		}
		if got := f.events.byID["event-1"].CurrentParticipants; got != 1 {
			t.Fatalf("event counter = %d, want 1", got)
		}
		if got := f.sessions.byID["sess-1"].CurrentParticipants; got != 1 {
			t.Fatalf("session counter = %d, want 1", got)
		}
	})

	t.Run("existing event registration is reused", func(t *testing.T) {
		f := newEngine(
			[]*model.Event{openEvent("event-1", intp(10))},
			[]*model.Session{scheduledSession("sess-1", "event-1", start, end, 5)},
			[]*model.Participant{attendee("part-1")},
			&model.Registration{ID: "reg-event", ParticipantID: "part-1", EventID: "event-1", Status: model.RegistrationConfirmed},
		)

		if _, err := f.svc.EnrollInSession(ctx, "part-1", "sess-1"); err != nil {
			t.Fatalf("EnrollInSession: %v", err)
		}
		if len(f.regs.regs) != 2 {
			t.Fatalf("expected exactly one new record, got %d total", len(f.regs.regs))
		}
		if got := f.events.byID["event-1"].CurrentParticipants; got != 0 {
			t.Fatalf("event counter must not change, got %d", got)
		}
	})

	t.Run("attended event registration is reused", func(t *testing.T) {
		f := newEngine(
			[]*model.Event{openEvent("event-1", intp(10))},
			[]*model.Session{scheduledSession("sess-1", "event-1", start, end, 5)},
			[]*model.Participant{attendee("part-1")},
			&model.Registration{ID: "reg-event", ParticipantID: "part-1", EventID: "event-1", Status: model.RegistrationAttended},
		)

		if _, err := f.svc.EnrollInSession(ctx, "part-1", "sess-1"); err != nil {
			t.Fatalf("EnrollInSession: %v", err)
		}
		eventLevel := 0
		for _, r := range f.regs.regs {
			if r.SessionID == nil {
				eventLevel++
			}
		}
		if eventLevel != 1 {
			t.Fatalf("event-level registrations = %d, want 1 (attended record should be reused)", eventLevel)
		}
		if got := f.events.byID["event-1"].CurrentParticipants; got != 0 {
			t.Fatalf("event counter must not change, got %d", got)
		}
	})

	t.Run("cancelled event registration triggers implicit re-enrollment", func(t *testing.T) {
		f := newEngine(
			[]*model.Event{openEvent("event-1", intp(10))},
			[]*model.Session{scheduledSession("sess-1", "event-1", start, end, 5)},
			[]*model.Participant{attendee("part-1")},
			&model.Registration{ID: "reg-old", ParticipantID: "part-1", EventID: "event-1", Status: model.RegistrationCancelled},
		)

		if _, err := f.svc.EnrollInSession(ctx, "part-1", "sess-1"); err != nil {
			t.Fatalf("EnrollInSession: %v", err)
		}
		if len(f.regs.regs) != 3 {
			t.Fatalf("expected a fresh event record plus the session record, got %d total", len(f.regs.regs))
		}
		if got := f.events.byID["event-1"].CurrentParticipants; got != 1 {
			t.Fatalf("event counter = %d, want 1", got)
		}
	})

	t.Run("closed event blocks session enrollment", func(t *testing.T) {
		event := openEvent("event-1", nil)
		event.RegistrationOpen = false
		f := newEngine(
			[]*model.Event{event},
			[]*model.Session{scheduledSession("sess-1", "event-1", start, end, 5)},
			[]*model.Participant{attendee("part-1")},
		)
		if _, err := f.svc.EnrollInSession(ctx, "part-1", "sess-1"); !errors.Is(err, model.ErrRegistrationClosed) {
			t.Fatalf("err = %v, want ErrRegistrationClosed", err)
		}
	})

	t.Run("full session", func(t *testing.T) {
		otherID := "sess-1"
		f := newEngine(
			[]*model.Event{openEvent("event-1", nil)},
			[]*model.Session{scheduledSession("sess-1", "event-1", start, end, 1)},
			[]*model.Participant{attendee("part-1"), attendee("part-2")},
			&model.Registration{ID: "reg-1", ParticipantID: "part-2", EventID: "event-1", SessionID: &otherID, Status: model.RegistrationConfirmed},
		)
		if _, err := f.svc.EnrollInSession(ctx, "part-1", "sess-1"); !errors.Is(err, model.ErrCapacityExceeded) {
			t.Fatalf("err = %v, want ErrCapacityExceeded", err)
		}
	})

	t.Run("duplicate session registration", func(t *testing.T) {
		sessID := "sess-1"
		f := newEngine(
			[]*model.Event{openEvent("event-1", nil)},
			[]*model.Session{scheduledSession("sess-1", "event-1", start, end, 5)},
			[]*model.Participant{attendee("part-1")},
			&model.Registration{ID: "reg-1", ParticipantID: "part-1", EventID: "event-1", SessionID: &sessID, Status: model.RegistrationConfirmed},
		)
		if _, err := f.svc.EnrollInSession(ctx, "part-1", "sess-1"); !errors.Is(err, model.ErrAlreadyRegistered) {
			t.Fatalf("err = %v, want ErrAlreadyRegistered", err)
		}
	})

	t.Run("schedule conflict names the clashing session", func(t *testing.T) {
		heldID := "sess-held"
		f := newEngine(
			[]*model.Event{openEvent("event-1", nil)},
			[]*model.Session{
				scheduledSession("sess-held", "event-1", start, end, 5),
				scheduledSession("sess-new", "event-1", start.Add(30*time.Minute), end.Add(30*time.Minute), 5),
			},
			[]*model.Participant{attendee("part-1")},
			&model.Registration{ID: "reg-held", ParticipantID: "part-1", EventID: "event-1", SessionID: &heldID, Status: model.RegistrationConfirmed},
		)

		_, err := f.svc.EnrollInSession(ctx, "part-1", "sess-new")
		var conflict *model.ScheduleConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("err = %v, want ScheduleConflictError", err)
		}
		if conflict.Conflicting.ID != "sess-held" {
			t.Fatalf("conflicting session = %s, want sess-held", conflict.Conflicting.ID)
		}
	})

	t.Run("back-to-back sessions do not conflict", func(t *testing.T) {
		heldID := "sess-held"
		f := newEngine(
			[]*model.Event{openEvent("event-1", nil)},
			[]*model.Session{
				scheduledSession("sess-held", "event-1", start, end, 5),
				scheduledSession("sess-new", "event-1", end, end.Add(time.Hour), 5),
			},
			[]*model.Participant{attendee("part-1")},
			&model.Registration{ID: "reg-held", ParticipantID: "part-1", EventID: "event-1", SessionID: &heldID, Status: model.RegistrationConfirmed},
			&model.Registration{ID: "reg-event", ParticipantID: "part-1", EventID: "event-1", Status: model.RegistrationConfirmed},
		)

		if _, err := f.svc.EnrollInSession(ctx, "part-1", "sess-new"); err != nil {
			t.Fatalf("back-to-back enrollment should succeed, got %v", err)
		}
	})

	t.Run("cancelled session does not cause conflicts", func(t *testing.T) {
		heldID := "sess-held"
		held := scheduledSession("sess-held", "event-1", start, end, 5)
		held.Status = model.SessionCancelled
		f := newEngine(
			[]*model.Event{openEvent("event-1", nil)},
			[]*model.Session{
				held,
				scheduledSession("sess-new", "event-1", start, end, 5),
			},
			[]*model.Participant{attendee("part-1")},
			&model.Registration{ID: "reg-held", ParticipantID: "part-1", EventID: "event-1", SessionID: &heldID, Status: model.RegistrationConfirmed},
			&model.Registration{ID: "reg-event", ParticipantID: "part-1", EventID: "event-1", Status: model.RegistrationConfirmed},
		)

		if _, err := f.svc.EnrollInSession(ctx, "part-1", "sess-new"); err != nil {
			t.Fatalf("enrollment over a cancelled session should succeed, got %v", err)
		}
	})
}

func TestCancelRegistration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("event-level cancel releases the event spot", func(t *testing.T) {
		event := openEvent("event-1", intp(10))
		event.CurrentParticipants = 1
		f := newEngine(
			[]*model.Event{event},
			nil,
			[]*model.Participant{attendee("part-1")},
			&model.Registration{ID: "reg-1", ParticipantID: "part-1", EventID: "event-1", Status: model.RegistrationConfirmed},
		)

		reg, err := f.svc.CancelRegistration(ctx, "reg-1")
		if err != nil {
			t.Fatalf("CancelRegistration: %v", err)
		}
		if reg.Status != model.RegistrationCancelled {
			t.Fatalf("status = %s, want CANCELLED", reg.Status)
		}
		if got := f.events.byID["event-1"].CurrentParticipants; got != 0 {
			t.Fatalf("event counter = %d, want 0", got)
		}
	})

	t.Run("session-level cancel leaves the event counter alone", func(t *testing.T) {
		event := openEvent("event-1", intp(10))
		event.CurrentParticipants = 1
		start := testNow.Add(25 * time.Hour)
		session := scheduledSession("sess-1", "event-1", start, start.Add(time.Hour), 5)
		session.CurrentParticipants = 1
		sessID := "sess-1"
		f := newEngine(
			[]*model.Event{event},
			[]*model.Session{session},
			[]*model.Participant{attendee("part-1")},
			&model.Registration{ID: "reg-1", ParticipantID: "part-1", EventID: "event-1", SessionID: &sessID, Status: model.RegistrationConfirmed},
		)

		if _, err := f.svc.CancelRegistration(ctx, "reg-1"); err != nil {
			t.Fatalf("CancelRegistration: %v", err)
		}
		if got := f.sessions.byID["sess-1"].CurrentParticipants; got != 0 {
			t.Fatalf("session counter = %d, want 0", got)
		}
		if got := f.events.byID["event-1"].CurrentParticipants; got != 1 {
			t.Fatalf("event counter = %d, want 1 (untouched)", got)
		}
	})

	t.Run("cancelling twice", func(t *testing.T) {
		f := newEngine(
			[]*model.Event{openEvent("event-1", nil)},
			nil,
			[]*model.Participant{attendee("part-1")},
			&model.Registration{ID: "reg-1", ParticipantID: "part-1", EventID: "event-1", Status: model.RegistrationConfirmed},
		)

		if _, err := f.svc.CancelRegistration(ctx, "reg-1"); err != nil {
			t.Fatalf("first cancel: %v", err)
		}
		if _, err := f.svc.CancelRegistration(ctx, "reg-1"); !errors.Is(err, model.ErrAlreadyCancelled) {
			t.Fatalf("err = %v, want ErrAlreadyCancelled", err)
		}
		if got := f.events.byID["event-1"].CurrentParticipants; got != 0 {
			t.Fatalf("double cancel must not decrement twice, counter = %d", got)
		}
	})

	t.Run("unknown registration", func(t *testing.T) {
		f := newEngine(nil, nil, nil)
		if _, err := f.svc.CancelRegistration(ctx, "ghost"); !errors.Is(err, model.ErrRegistrationNotFound) {
			t.Fatalf("err = %v, want ErrRegistrationNotFound", err)
		}
	})
}

func TestStatusTransitions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("waitlist and attendance", func(t *testing.T) {
		f := newEngine(
			[]*model.Event{openEvent("event-1", nil)},
			nil,
			[]*model.Participant{attendee("part-1")},
			&model.Registration{ID: "reg-1", ParticipantID: "part-1", EventID: "event-1", Status: model.RegistrationConfirmed},
		)

		reg, err := f.svc.MoveToWaitlist(ctx, "reg-1")
		if err != nil {
			t.Fatalf("MoveToWaitlist: %v", err)
		}
		if reg.Status != model.RegistrationWaitlisted {
			t.Fatalf("status = %s, want WAITLISTED", reg.Status)
		}

		reg, err = f.svc.ConfirmAttendance(ctx, "reg-1")
		if err != nil {
			t.Fatalf("ConfirmAttendance: %v", err)
		}
		if reg.Status != model.RegistrationAttended {
			t.Fatalf("status = %s, want ATTENDED", reg.Status)
		}
	})

	t.Run("cancelled registrations are terminal", func(t *testing.T) {
		f := newEngine(
			[]*model.Event{openEvent("event-1", nil)},
			nil,
			[]*model.Participant{attendee("part-1")},
			&model.Registration{ID: "reg-1", ParticipantID: "part-1", EventID: "event-1", Status: model.RegistrationCancelled},
		)

		if _, err := f.svc.MoveToWaitlist(ctx, "reg-1"); !errors.Is(err, model.ErrCancelledRegistration) {
			t.Fatalf("waitlist err = %v, want ErrCancelledRegistration", err)
		}
		if _, err := f.svc.ConfirmAttendance(ctx, "reg-1"); !errors.Is(err, model.ErrCancelledRegistration) {
			t.Fatalf("attend err = %v, want ErrCancelledRegistration", err)
		}
	})
}

func TestRegistrationsByStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newEngine(
		nil, nil, nil,
		&model.Registration{ID: "reg-1", ParticipantID: "p", EventID: "e", Status: model.RegistrationConfirmed},
		&model.Registration{ID: "reg-2", ParticipantID: "p", EventID: "e", Status: model.RegistrationCancelled},
	)

	regs, err := f.svc.RegistrationsByStatus(ctx, model.RegistrationConfirmed)
	if err != nil {
		t.Fatalf("RegistrationsByStatus: %v", err)
	}
	if len(regs) != 1 || regs[0].ID != "reg-1" {
		t.Fatalf("unexpected result: %+v", regs)
	}

	if _, err := f.svc.RegistrationsByStatus(ctx, model.RegistrationStatus("BOGUS")); !errors.Is(err, model.ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
}
