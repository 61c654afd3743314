package service

import (
	"context"
	"time"

	"github.com/confreg/conference-registration/internal/model"
)

// ConflictStore looks up a participant's schedule for overlap checks.
type ConflictStore interface {
	// FindConflictingSession returns one session the participant actively
	// holds a registration for that overlaps [start, end), or nil.
	FindConflictingSession(ctx context.Context, participantID string, start, end time.Time) (*model.Session, error)
}

// ConflictDetector evaluates time-interval overlap between a candidate
// window and a participant's existing active sessions. Two windows conflict
// when startA < endB and startB < endA; touching at an endpoint is allowed.
type ConflictDetector struct {
	regs ConflictStore
}

// NewConflictDetector constructs a ConflictDetector.
func NewConflictDetector(regs ConflictStore) *ConflictDetector {
	return &ConflictDetector{regs: regs}
}

// FindConflict returns the first active session of the participant that
// overlaps the candidate window, or nil when the schedule is clear.
func (d *ConflictDetector) FindConflict(ctx context.Context, participantID string, start, end time.Time) (*model.Session, error) {
	return d.regs.FindConflictingSession(ctx, participantID, start, end)
}

// HasConflict reports whether any of the participant's active sessions
// overlaps the candidate window.
func (d *ConflictDetector) HasConflict(ctx context.Context, participantID string, start, end time.Time) (bool, error) {
	s, err := d.FindConflict(ctx, participantID, start, end)
	if err != nil {
		return false, err
	}
	return s != nil, nil
}
