package model

import (
	"testing"
	"time"
)

func TestScheduleConflictErrorMessage(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	err := &ScheduleConflictError{Conflicting: &Session{
		Title:     "Go Concurrency",
		StartTime: day.Add(9 * time.Hour),
		EndTime:   day.Add(10 * time.Hour),
	}}
	want := `schedule conflict with session "Go Concurrency" (09:00 - 10:00)`
	if got := err.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}

	empty := &ScheduleConflictError{}
	if got := empty.Error(); got != "schedule conflict with another session" {
		t.Fatalf("Error() without session = %q", got)
	}
}
