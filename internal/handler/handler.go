// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/confreg/conference-registration/internal/model"
)

// errorResponse is the standard JSON error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeDomainError maps domain failures to HTTP statuses. Missing entities
// are 404, business-rule conflicts are 409, bad values are 400; anything
// unrecognized falls back to the given status so payload validation errors
// on mutating endpoints read as 400 and store failures on reads as 500.
func writeDomainError(w http.ResponseWriter, err error, fallback int) {
	var conflict *model.ScheduleConflictError
	switch {
	case errors.Is(err, model.ErrEventNotFound),
		errors.Is(err, model.ErrSessionNotFound),
		errors.Is(err, model.ErrParticipantNotFound),
		errors.Is(err, model.ErrRegistrationNotFound),
		errors.Is(err, model.ErrSpeakerNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrRegistrationClosed),
		errors.Is(err, model.ErrCapacityExceeded),
		errors.Is(err, model.ErrAlreadyRegistered),
		errors.Is(err, model.ErrAlreadyCancelled),
		errors.Is(err, model.ErrCancelledRegistration),
		errors.Is(err, model.ErrEmailTaken),
		errors.Is(err, model.ErrCapacityBelowCount):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &conflict):
		writeError(w, http.StatusConflict, conflict.Error())
	case errors.Is(err, model.ErrInvalidRating),
		errors.Is(err, model.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		msg := err.Error()
		if fallback == http.StatusInternalServerError {
			msg = "internal error"
		}
		writeError(w, fallback, msg)
	}
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
