package service

import "context"

// EventCounterStore mutates the denormalized participant counter on events.
type EventCounterStore interface {
	// TryIncrementParticipants raises the counter by one only while it is
	// below the configured maximum, as one atomic store operation, and
	// returns model.ErrCapacityExceeded otherwise.
	TryIncrementParticipants(ctx context.Context, id string) error
	// DecrementParticipants lowers the counter by one, floored at zero.
	DecrementParticipants(ctx context.Context, id string) error
}

// SessionCounterStore mutates the denormalized participant counter on
// sessions, with the same contract as EventCounterStore.
type SessionCounterStore interface {
	TryIncrementParticipants(ctx context.Context, id string) error
	DecrementParticipants(ctx context.Context, id string) error
}

// CapacityTracker keeps the event and session participant counters in step
// with registration writes. It must only be invoked inside the transaction
// that writes the corresponding registration, so a failed admission never
// leaves a counter bumped.
type CapacityTracker struct {
	events   EventCounterStore
	sessions SessionCounterStore
}

// NewCapacityTracker constructs a CapacityTracker.
func NewCapacityTracker(events EventCounterStore, sessions SessionCounterStore) *CapacityTracker {
	return &CapacityTracker{events: events, sessions: sessions}
}

// TryIncrementEvent admits one participant to the event, failing with
// model.ErrCapacityExceeded when the event is full.
func (t *CapacityTracker) TryIncrementEvent(ctx context.Context, eventID string) error {
	return t.events.TryIncrementParticipants(ctx, eventID)
}

// DecrementEvent releases one event-level spot. Decrementing a zero counter
// is a no-op, not an error.
func (t *CapacityTracker) DecrementEvent(ctx context.Context, eventID string) error {
	return t.events.DecrementParticipants(ctx, eventID)
}

// TryIncrementSession admits one participant to the session, failing with
// model.ErrCapacityExceeded when the session is full.
func (t *CapacityTracker) TryIncrementSession(ctx context.Context, sessionID string) error {
	return t.sessions.TryIncrementParticipants(ctx, sessionID)
}

// DecrementSession releases one session seat, floored at zero.
func (t *CapacityTracker) DecrementSession(ctx context.Context, sessionID string) error {
	return t.sessions.DecrementParticipants(ctx, sessionID)
}
