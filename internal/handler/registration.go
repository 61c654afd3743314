package handler

import (
	"net/http"

	"github.com/confreg/conference-registration/internal/model"
	"github.com/confreg/conference-registration/internal/service"
	"github.com/go-chi/chi/v5"
)

// RegistrationHandler holds the HTTP handlers for the registrations resource.
type RegistrationHandler struct {
	enrollment *service.RegistrationService
}

// NewRegistrationHandler constructs a RegistrationHandler.
func NewRegistrationHandler(enrollment *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{enrollment: enrollment}
}

// Routes mounts the registration routes on a chi router.
func (h *RegistrationHandler) Routes(r chi.Router) {
	r.Get("/", h.ListByStatus)
	r.Post("/recount", h.Recount)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/cancel", h.Cancel)
	r.Post("/{id}/waitlist", h.Waitlist)
	r.Post("/{id}/attend", h.Attend)
}

// ListByStatus handles GET /registrations?status=CONFIRMED
func (h *RegistrationHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		writeError(w, http.StatusBadRequest, "status query parameter is required")
		return
	}
	regs, err := h.enrollment.RegistrationsByStatus(r.Context(), model.RegistrationStatus(status))
	if err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	writeJSON(w, http.StatusOK, regs)
}

// Recount handles POST /registrations/recount
// Rebuilds the event and session participant counters from the registration
// rows.
func (h *RegistrationHandler) Recount(w http.ResponseWriter, r *http.Request) {
	if err := h.enrollment.RepairCounters(r.Context()); err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recounted"})
}

// Get handles GET /registrations/{id}
func (h *RegistrationHandler) Get(w http.ResponseWriter, r *http.Request) {
	reg, err := h.enrollment.GetRegistration(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

// Delete handles DELETE /registrations/{id}
// Hard-deletes the record without releasing any capacity.
func (h *RegistrationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.enrollment.DeleteRegistration(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Cancel handles POST /registrations/{id}/cancel
func (h *RegistrationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	reg, err := h.enrollment.CancelRegistration(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

// Waitlist handles POST /registrations/{id}/waitlist
func (h *RegistrationHandler) Waitlist(w http.ResponseWriter, r *http.Request) {
	reg, err := h.enrollment.MoveToWaitlist(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

// Attend handles POST /registrations/{id}/attend
func (h *RegistrationHandler) Attend(w http.ResponseWriter, r *http.Request) {
	reg, err := h.enrollment.ConfirmAttendance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}
