package handler

import (
	"net/http"

	"github.com/confreg/conference-registration/internal/model"
	"github.com/confreg/conference-registration/internal/service"
	"github.com/go-chi/chi/v5"
)

// EventHandler holds the HTTP handlers for the events resource.
type EventHandler struct {
	events       *service.EventService
	sessions     *service.SessionService
	participants *service.ParticipantService
	enrollment   *service.RegistrationService
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(
	events *service.EventService,
	sessions *service.SessionService,
	participants *service.ParticipantService,
	enrollment *service.RegistrationService,
) *EventHandler {
	return &EventHandler{
		events:       events,
		sessions:     sessions,
		participants: participants,
		enrollment:   enrollment,
	}
}

// Routes mounts the event routes on a chi router.
func (h *EventHandler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/available", h.ListAvailable)
	r.Get("/public", h.ListPublic)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Post("/{id}/duplicate", h.Duplicate)
	r.Post("/{id}/register", h.Register)
	r.Get("/{id}/registrations", h.ListRegistrations)
	r.Get("/{id}/sessions", h.ListSessions)
	r.Get("/{id}/participants", h.ListParticipants)
}

type createEventRequest struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	Location         string `json:"location"`
	MaxParticipants  *int   `json:"max_participants"`
	RequiresApproval bool   `json:"requires_approval"`
	RegistrationOpen *bool  `json:"registration_open"`
}

// Create handles POST /events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	event, err := h.events.CreateEvent(r.Context(), service.CreateEventInput{
		Name:             req.Name,
		Description:      req.Description,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		Location:         req.Location,
		MaxParticipants:  req.MaxParticipants,
		RequiresApproval: req.RequiresApproval,
		RegistrationOpen: req.RegistrationOpen,
	})
	if err != nil {
		writeDomainError(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// List handles GET /events
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListEvents(r.Context())
	if err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// ListAvailable handles GET /events/available
func (h *EventHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.EventsWithAvailableSpots(r.Context())
	if err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// ListPublic handles GET /events/public
func (h *EventHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.PublicEvents(r.Context())
	if err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// Get handles GET /events/{id}
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

type updateEventRequest struct {
	Name             *string `json:"name"`
	Description      *string `json:"description"`
	StartDate        *string `json:"start_date"`
	EndDate          *string `json:"end_date"`
	Location         *string `json:"location"`
	MaxParticipants  *int    `json:"max_participants"`
	Status           *string `json:"status"`
	RequiresApproval *bool   `json:"requires_approval"`
	RegistrationOpen *bool   `json:"registration_open"`
}

// Update handles PUT /events/{id}
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	event, err := h.events.UpdateEvent(r.Context(), chi.URLParam(r, "id"), service.UpdateEventInput{
		Name:             req.Name,
		Description:      req.Description,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		Location:         req.Location,
		MaxParticipants:  req.MaxParticipants,
		Status:           req.Status,
		RequiresApproval: req.RequiresApproval,
		RegistrationOpen: req.RegistrationOpen,
	})
	if err != nil {
		writeDomainError(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// Delete handles DELETE /events/{id}
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.events.DeleteEvent(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateStatus handles PATCH /events/{id}/status
func (h *EventHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	event, err := h.events.UpdateEventStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeDomainError(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// Duplicate handles POST /events/{id}/duplicate
func (h *EventHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.DuplicateEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

type registerRequest struct {
	ParticipantID string `json:"participant_id"`
}

// Register handles POST /events/{id}/register
// Runs the event admission protocol as one atomic operation.
func (h *EventHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ParticipantID == "" {
		writeError(w, http.StatusBadRequest, "participant_id is required")
		return
	}
	reg, err := h.enrollment.EnrollInEvent(r.Context(), req.ParticipantID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}

// ListRegistrations handles GET /events/{id}/registrations
func (h *EventHandler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.events.GetEvent(r.Context(), id); err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	regs, err := h.enrollment.RegistrationsByEvent(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	writeJSON(w, http.StatusOK, regs)
}

// ListSessions handles GET /events/{id}/sessions
func (h *EventHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.SessionsByEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	if sessions == nil {
		sessions = []model.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

// ListParticipants handles GET /events/{id}/participants
func (h *EventHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	participants, err := h.participants.ParticipantsByEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	if participants == nil {
		participants = []model.Participant{}
	}
	writeJSON(w, http.StatusOK, participants)
}
