package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/confreg/conference-registration/internal/clock"
	"github.com/confreg/conference-registration/internal/model"
	"github.com/confreg/conference-registration/internal/repository"
	"github.com/confreg/conference-registration/internal/testutil"
)

func TestSessionCapacityGuards(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	sessions := repository.NewSessionRepository(pool)
	svc := NewSessionService(
		sessions,
		repository.NewEventRepository(pool),
		repository.NewSpeakerRepository(pool),
		clock.Fixed(testNow),
	)

	eventID := testutil.InsertEvent(t, ctx, pool, "Conf", nil)
	start := time.Now().Add(24 * time.Hour).UTC()
	sessionID := testutil.InsertSession(t, ctx, pool, eventID, "Talk", start, start.Add(time.Hour), 50)
	if _, err := pool.Exec(ctx, `UPDATE sessions SET current_participants = 5 WHERE id = $1`, sessionID); err != nil {
		t.Fatalf("seed participants: %v", err)
	}

	t.Run("update refuses capacity below participant count", func(t *testing.T) {
		three := 3
		_, err := svc.UpdateSession(ctx, sessionID, UpdateSessionInput{MaxCapacity: &three})
		if !errors.Is(err, model.ErrCapacityBelowCount) {
			t.Fatalf("err = %v, want ErrCapacityBelowCount", err)
		}
		s, err := sessions.GetByID(ctx, sessionID)
		if err != nil {
			t.Fatalf("get session: %v", err)
		}
		if s.MaxCapacity != 50 {
			t.Fatalf("capacity = %d, want 50 (unchanged)", s.MaxCapacity)
		}
	})

	t.Run("resize endpoint refuses capacity below participant count", func(t *testing.T) {
		if _, err := svc.UpdateSessionCapacity(ctx, sessionID, 4); !errors.Is(err, model.ErrCapacityBelowCount) {
			t.Fatalf("err = %v, want ErrCapacityBelowCount", err)
		}
	})

	t.Run("capacity equal to the participant count is allowed", func(t *testing.T) {
		five := 5
		s, err := svc.UpdateSession(ctx, sessionID, UpdateSessionInput{MaxCapacity: &five})
		if err != nil {
			t.Fatalf("UpdateSession: %v", err)
		}
		if s.MaxCapacity != 5 {
			t.Fatalf("capacity = %d, want 5", s.MaxCapacity)
		}
	})
}
