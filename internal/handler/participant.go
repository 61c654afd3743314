package handler

import (
	"net/http"

	"github.com/confreg/conference-registration/internal/model"
	"github.com/confreg/conference-registration/internal/service"
	"github.com/go-chi/chi/v5"
)

// ParticipantHandler holds the HTTP handlers for the participants resource.
type ParticipantHandler struct {
	participants *service.ParticipantService
	enrollment   *service.RegistrationService
}

// NewParticipantHandler constructs a ParticipantHandler.
func NewParticipantHandler(participants *service.ParticipantService, enrollment *service.RegistrationService) *ParticipantHandler {
	return &ParticipantHandler{participants: participants, enrollment: enrollment}
}

// Routes mounts the participant routes on a chi router.
func (h *ParticipantHandler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/active", h.ListActive)
	r.Get("/search", h.Search)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/activate", h.Activate)
	r.Post("/{id}/deactivate", h.Deactivate)
	r.Get("/{id}/registrations", h.ListRegistrations)
}

type createParticipantRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`
	Position  string `json:"position"`
}

// Create handles POST /participants
func (h *ParticipantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createParticipantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	participant, err := h.participants.CreateParticipant(r.Context(), service.CreateParticipantInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Company:   req.Company,
		Position:  req.Position,
	})
	if err != nil {
		writeDomainError(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, participant)
}

// List handles GET /participants
func (h *ParticipantHandler) List(w http.ResponseWriter, r *http.Request) {
	company := r.URL.Query().Get("company")
	var (
		participants []model.Participant
		err          error
	)
	if company != "" {
		participants, err = h.participants.ParticipantsByCompany(r.Context(), company)
	} else {
		participants, err = h.participants.ListParticipants(r.Context())
	}
	if err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	if participants == nil {
		participants = []model.Participant{}
	}
	writeJSON(w, http.StatusOK, participants)
}

// ListActive handles GET /participants/active
func (h *ParticipantHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	participants, err := h.participants.ActiveParticipants(r.Context())
	if err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	if participants == nil {
		participants = []model.Participant{}
	}
	writeJSON(w, http.StatusOK, participants)
}

// Search handles GET /participants/search?q=…
func (h *ParticipantHandler) Search(w http.ResponseWriter, r *http.Request) {
	participants, err := h.participants.SearchParticipants(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeDomainError(w, err, http.StatusBadRequest)
		return
	}
	if participants == nil {
		participants = []model.Participant{}
	}
	writeJSON(w, http.StatusOK, participants)
}

// Get handles GET /participants/{id}
func (h *ParticipantHandler) Get(w http.ResponseWriter, r *http.Request) {
	participant, err := h.participants.GetParticipant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, participant)
}

type updateParticipantRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Company   *string `json:"company"`
	Position  *string `json:"position"`
	IsActive  *bool   `json:"is_active"`
}

// Update handles PUT /participants/{id}
func (h *ParticipantHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateParticipantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	participant, err := h.participants.UpdateParticipant(r.Context(), chi.URLParam(r, "id"), service.UpdateParticipantInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Company:   req.Company,
		Position:  req.Position,
		IsActive:  req.IsActive,
	})
	if err != nil {
		writeDomainError(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, participant)
}

// Delete handles DELETE /participants/{id}
// Deactivates the participant; rows are kept.
func (h *ParticipantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.participants.DeleteParticipant(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Activate handles POST /participants/{id}/activate
func (h *ParticipantHandler) Activate(w http.ResponseWriter, r *http.Request) {
	participant, err := h.participants.ActivateParticipant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, participant)
}

// Deactivate handles POST /participants/{id}/deactivate
func (h *ParticipantHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	participant, err := h.participants.DeactivateParticipant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, participant)
}

// ListRegistrations handles GET /participants/{id}/registrations
func (h *ParticipantHandler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.participants.GetParticipant(r.Context(), id); err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	regs, err := h.enrollment.RegistrationsByParticipant(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	writeJSON(w, http.StatusOK, regs)
}
