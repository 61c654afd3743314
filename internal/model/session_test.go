package model

import (
	"testing"
	"time"
)

func TestOverlaps(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return base.Add(time.Duration(h) * time.Hour) }

	tests := []struct {
		name                       string
		startA, endA, startB, endB time.Time
		want                       bool
	}{
		{"disjoint", at(0), at(1), at(2), at(3), false},
		{"touching endpoints do not overlap", at(0), at(1), at(1), at(2), false},
		{"partial overlap", at(0), at(2), at(1), at(3), true},
		{"contained", at(0), at(4), at(1), at(2), true},
		{"identical", at(0), at(2), at(0), at(2), true},
		{"reversed order still overlaps", at(1), at(3), at(0), at(2), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.startA, tt.endA, tt.startB, tt.endB); got != tt.want {
				t.Fatalf("Overlaps(%v, %v, %v, %v) = %v, want %v",
					tt.startA, tt.endA, tt.startB, tt.endB, got, tt.want)
			}
		})
	}
}

func TestSessionOverlapsWith(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	a := &Session{StartTime: base, EndTime: base.Add(time.Hour)}

	if a.OverlapsWith(nil) {
		t.Fatalf("session should not overlap with nil")
	}
	b := &Session{StartTime: base.Add(30 * time.Minute), EndTime: base.Add(90 * time.Minute)}
	if !a.OverlapsWith(b) {
		t.Fatalf("expected sessions to overlap")
	}
	c := &Session{StartTime: base.Add(time.Hour), EndTime: base.Add(2 * time.Hour)}
	if a.OverlapsWith(c) {
		t.Fatalf("back-to-back sessions should not overlap")
	}
}

func TestSessionHasAvailableSeats(t *testing.T) {
	t.Parallel()

	s := &Session{MaxCapacity: 2, CurrentParticipants: 1}
	if !s.HasAvailableSeats() {
		t.Fatalf("expected a seat to remain")
	}
	s.CurrentParticipants = 2
	if s.HasAvailableSeats() {
		t.Fatalf("expected no seats at capacity")
	}
}

func TestSessionIsOver(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	s := &Session{
		StartTime: now.Add(time.Hour),
		EndTime:   now.Add(2 * time.Hour),
		Status:    SessionScheduled,
	}
	if s.IsOver(now) {
		t.Fatalf("future scheduled session should not be over")
	}
	s.Status = SessionCancelled
	if !s.IsOver(now) {
		t.Fatalf("cancelled session should be over")
	}
	s.Status = SessionScheduled
	if !s.IsOver(s.EndTime.Add(time.Minute)) {
		t.Fatalf("past session should be over")
	}
}
