package repository

import (
	"context"
	"testing"
	"time"

	"github.com/confreg/conference-registration/internal/testutil"
)

func TestFindBlockingByParticipantAndEvent(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	repo := NewRegistrationRepository(pool)
	eventID := testutil.InsertEvent(t, ctx, pool, "Conf", nil)
	participantID := testutil.InsertParticipant(t, ctx, pool, "blocking@example.com")

	t.Run("no registration", func(t *testing.T) {
		reg, err := repo.FindBlockingByParticipantAndEvent(ctx, participantID, eventID)
		if err != nil {
			t.Fatalf("find blocking: %v", err)
		}
		if reg != nil {
			t.Fatalf("expected nil, got %+v", reg)
		}
	})

	t.Run("cancelled registration does not block", func(t *testing.T) {
		testutil.InsertRegistration(t, ctx, pool, participantID, eventID, nil, "CANCELLED")
		reg, err := repo.FindBlockingByParticipantAndEvent(ctx, participantID, eventID)
		if err != nil {
			t.Fatalf("find blocking: %v", err)
		}
		if reg != nil {
			t.Fatalf("cancelled registration should not block, got %+v", reg)
		}
	})

	t.Run("session-level registration does not block event enrollment", func(t *testing.T) {
		start := time.Now().Add(24 * time.Hour).UTC()
		sessionID := testutil.InsertSession(t, ctx, pool, eventID, "Talk", start, start.Add(time.Hour), 50)
		testutil.InsertRegistration(t, ctx, pool, participantID, eventID, &sessionID, "CONFIRMED")
		reg, err := repo.FindBlockingByParticipantAndEvent(ctx, participantID, eventID)
		if err != nil {
			t.Fatalf("find blocking: %v", err)
		}
		if reg != nil {
			t.Fatalf("session-level registration should not block, got %+v", reg)
		}
	})

	t.Run("confirmed event-level registration blocks", func(t *testing.T) {
		id := testutil.InsertRegistration(t, ctx, pool, participantID, eventID, nil, "CONFIRMED")
		reg, err := repo.FindBlockingByParticipantAndEvent(ctx, participantID, eventID)
		if err != nil {
			t.Fatalf("find blocking: %v", err)
		}
		if reg == nil || reg.ID != id {
			t.Fatalf("expected registration %s, got %+v", id, reg)
		}
	})
}

func TestFindActiveByParticipantAndEvent(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	repo := NewRegistrationRepository(pool)
	eventID := testutil.InsertEvent(t, ctx, pool, "Conf", nil)
	participantID := testutil.InsertParticipant(t, ctx, pool, "active@example.com")

	t.Run("cancelled registration is not active", func(t *testing.T) {
		testutil.InsertRegistration(t, ctx, pool, participantID, eventID, nil, "CANCELLED")
		reg, err := repo.FindActiveByParticipantAndEvent(ctx, participantID, eventID)
		if err != nil {
			t.Fatalf("find active: %v", err)
		}
		if reg != nil {
			t.Fatalf("cancelled registration should not be found, got %+v", reg)
		}
	})

	t.Run("attended registration is found", func(t *testing.T) {
		id := testutil.InsertRegistration(t, ctx, pool, participantID, eventID, nil, "ATTENDED")
		reg, err := repo.FindActiveByParticipantAndEvent(ctx, participantID, eventID)
		if err != nil {
			t.Fatalf("find active: %v", err)
		}
		if reg == nil || reg.ID != id {
			t.Fatalf("expected registration %s, got %+v", id, reg)
		}
	})
}

func TestFindConflictingSession(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	repo := NewRegistrationRepository(pool)
	eventID := testutil.InsertEvent(t, ctx, pool, "Conf", nil)
	participantID := testutil.InsertParticipant(t, ctx, pool, "conflict@example.com")

	start := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	heldID := testutil.InsertSession(t, ctx, pool, eventID, "Held", start, end, 50)
	testutil.InsertRegistration(t, ctx, pool, participantID, eventID, &heldID, "CONFIRMED")

	t.Run("overlapping window conflicts", func(t *testing.T) {
		s, err := repo.FindConflictingSession(ctx, participantID, start.Add(30*time.Minute), end.Add(30*time.Minute))
		if err != nil {
			t.Fatalf("find conflict: %v", err)
		}
		if s == nil || s.ID != heldID {
			t.Fatalf("expected session %s, got %+v", heldID, s)
		}
	})

	t.Run("touching window does not conflict", func(t *testing.T) {
		s, err := repo.FindConflictingSession(ctx, participantID, end, end.Add(time.Hour))
		if err != nil {
			t.Fatalf("find conflict: %v", err)
		}
		if s != nil {
			t.Fatalf("touching windows should not conflict, got %+v", s)
		}
	})

	t.Run("other participants are unaffected", func(t *testing.T) {
		otherID := testutil.InsertParticipant(t, ctx, pool, "other@example.com")
		s, err := repo.FindConflictingSession(ctx, otherID, start, end)
		if err != nil {
			t.Fatalf("find conflict: %v", err)
		}
		if s != nil {
			t.Fatalf("expected no conflict for other participant, got %+v", s)
		}
	})

	t.Run("cancelled session does not conflict", func(t *testing.T) {
		if _, err := pool.Exec(ctx, `UPDATE sessions SET status = 'CANCELLED' WHERE id = $1`, heldID); err != nil {
			t.Fatalf("cancel session: %v", err)
		}
		s, err := repo.FindConflictingSession(ctx, participantID, start, end)
		if err != nil {
			t.Fatalf("find conflict: %v", err)
		}
		if s != nil {
			t.Fatalf("cancelled session should not conflict, got %+v", s)
		}
	})
}

func TestRecountParticipants(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	repo := NewRegistrationRepository(pool)
	events := NewEventRepository(pool)
	sessions := NewSessionRepository(pool)

	eventID := testutil.InsertEvent(t, ctx, pool, "Drifted Conf", nil)
	start := time.Now().Add(24 * time.Hour).UTC()
	sessionID := testutil.InsertSession(t, ctx, pool, eventID, "Talk", start, start.Add(time.Hour), 50)

	p1 := testutil.InsertParticipant(t, ctx, pool, "p1@example.com")
	p2 := testutil.InsertParticipant(t, ctx, pool, "p2@example.com")
	testutil.InsertRegistration(t, ctx, pool, p1, eventID, nil, "CONFIRMED")
	testutil.InsertRegistration(t, ctx, pool, p2, eventID, nil, "CANCELLED")
	testutil.InsertRegistration(t, ctx, pool, p1, eventID, &sessionID, "CONFIRMED")
	testutil.InsertRegistration(t, ctx, pool, p2, eventID, &sessionID, "ATTENDED")

	// Drift the counters on purpose.
	if _, err := pool.Exec(ctx, `UPDATE events SET current_participants = 9 WHERE id = $1`, eventID); err != nil {
		t.Fatalf("drift event counter: %v", err)
	}
	if _, err := pool.Exec(ctx, `UPDATE sessions SET current_participants = 0 WHERE id = $1`, sessionID); err != nil {
		t.Fatalf("drift session counter: %v", err)
	}

	if err := repo.RecountParticipants(ctx); err != nil {
		t.Fatalf("recount: %v", err)
	}

	e, err := events.GetByID(ctx, eventID)
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if e.CurrentParticipants != 1 {
		t.Fatalf("event counter = %d, want 1 (only the active sessionless registration)", e.CurrentParticipants)
	}
	s, err := sessions.GetByID(ctx, sessionID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if s.CurrentParticipants != 2 {
		t.Fatalf("session counter = %d, want 2 (confirmed plus attended)", s.CurrentParticipants)
	}
}
