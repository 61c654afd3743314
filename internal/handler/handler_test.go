package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/confreg/conference-registration/internal/model"
)

func TestWriteDomainError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		fallback   int
		wantStatus int
	}{
		{"event not found", model.ErrEventNotFound, http.StatusInternalServerError, http.StatusNotFound},
		{"participant not found", model.ErrParticipantNotFound, http.StatusBadRequest, http.StatusNotFound},
		{"capacity exceeded", model.ErrCapacityExceeded, http.StatusInternalServerError, http.StatusConflict},
		{"already registered", model.ErrAlreadyRegistered, http.StatusInternalServerError, http.StatusConflict},
		{"already cancelled", model.ErrAlreadyCancelled, http.StatusInternalServerError, http.StatusConflict},
		{"registration closed", model.ErrRegistrationClosed, http.StatusInternalServerError, http.StatusConflict},
		{"email taken", model.ErrEmailTaken, http.StatusBadRequest, http.StatusConflict},
		{"schedule conflict", &model.ScheduleConflictError{Conflicting: &model.Session{Title: "Keynote"}}, http.StatusInternalServerError, http.StatusConflict},
		{"invalid rating", model.ErrInvalidRating, http.StatusInternalServerError, http.StatusBadRequest},
		{"invalid status", model.ErrInvalidStatus, http.StatusInternalServerError, http.StatusBadRequest},
		{"validation falls back", errors.New("name is required"), http.StatusBadRequest, http.StatusBadRequest},
		{"unknown falls back", errors.New("boom"), http.StatusInternalServerError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeDomainError(rec, tt.err, tt.fallback)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body errorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error == "" {
				t.Fatalf("expected an error message")
			}
		})
	}
}

func TestWriteDomainErrorHidesInternalDetails(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeDomainError(rec, errors.New("pq: connection refused"), http.StatusInternalServerError)
	var body errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error != "internal error" {
		t.Fatalf("internal failures must not leak details, got %q", body.Error)
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	t.Run("rejects unknown fields", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"participant_id":"p","bogus":1}`))
		var dst registerRequest
		if err := decodeJSON(req, &dst); err == nil {
			t.Fatalf("expected error for unknown field")
		}
	})

	t.Run("decodes valid payload", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"participant_id":"p"}`))
		var dst registerRequest
		if err := decodeJSON(req, &dst); err != nil {
			t.Fatalf("decodeJSON: %v", err)
		}
		if dst.ParticipantID != "p" {
			t.Fatalf("participant_id = %q, want p", dst.ParticipantID)
		}
	})
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
}
