package handler

import (
	"net/http"

	"github.com/confreg/conference-registration/internal/model"
	"github.com/confreg/conference-registration/internal/service"
	"github.com/go-chi/chi/v5"
)

// SessionHandler holds the HTTP handlers for the sessions resource.
type SessionHandler struct {
	sessions   *service.SessionService
	enrollment *service.RegistrationService
}

// NewSessionHandler constructs a SessionHandler.
func NewSessionHandler(sessions *service.SessionService, enrollment *service.RegistrationService) *SessionHandler {
	return &SessionHandler{sessions: sessions, enrollment: enrollment}
}

// Routes mounts the session routes on a chi router.
func (h *SessionHandler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/available", h.ListAvailable)
	r.Get("/upcoming", h.ListUpcoming)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Patch("/{id}/capacity", h.UpdateCapacity)
	r.Post("/{id}/duplicate", h.Duplicate)
	r.Post("/{id}/register", h.Register)
	r.Get("/{id}/registrations", h.ListRegistrations)
	r.Get("/{id}/room-availability", h.RoomAvailability)
}

type createSessionRequest struct {
	EventID              string  `json:"event_id"`
	SpeakerID            *string `json:"speaker_id"`
	Title                string  `json:"title"`
	Description          string  `json:"description"`
	StartTime            string  `json:"start_time"`
	EndTime              string  `json:"end_time"`
	MaxCapacity          *int    `json:"max_capacity"`
	RoomNumber           string  `json:"room_number"`
	Type                 string  `json:"type"`
	RequiresRegistration *bool   `json:"requires_registration"`
}

// Create handles POST /sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	session, err := h.sessions.CreateSession(r.Context(), service.CreateSessionInput{
		EventID:              req.EventID,
		SpeakerID:            req.SpeakerID,
		Title:                req.Title,
		Description:          req.Description,
		StartTime:            req.StartTime,
		EndTime:              req.EndTime,
		MaxCapacity:          req.MaxCapacity,
		RoomNumber:           req.RoomNumber,
		Type:                 req.Type,
		RequiresRegistration: req.RequiresRegistration,
	})
	if err != nil {
		writeDomainError(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// List handles GET /sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.ListSessions(r.Context())
	if err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	if sessions == nil {
		sessions = []model.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

// ListAvailable handles GET /sessions/available
func (h *SessionHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.AvailableSessions(r.Context())
	if err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	if sessions == nil {
		sessions = []model.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

// ListUpcoming handles GET /sessions/upcoming
func (h *SessionHandler) ListUpcoming(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.UpcomingSessions(r.Context())
	if err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	if sessions == nil {
		sessions = []model.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

// Get handles GET /sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

type updateSessionRequest struct {
	Title                *string `json:"title"`
	Description          *string `json:"description"`
	StartTime            *string `json:"start_time"`
	EndTime              *string `json:"end_time"`
	MaxCapacity          *int    `json:"max_capacity"`
	RoomNumber           *string `json:"room_number"`
	Type                 *string `json:"type"`
	Status               *string `json:"status"`
	RequiresRegistration *bool   `json:"requires_registration"`
}

// Update handles PUT /sessions/{id}
func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	session, err := h.sessions.UpdateSession(r.Context(), chi.URLParam(r, "id"), service.UpdateSessionInput{
		Title:                req.Title,
		Description:          req.Description,
		StartTime:            req.StartTime,
		EndTime:              req.EndTime,
		MaxCapacity:          req.MaxCapacity,
		RoomNumber:           req.RoomNumber,
		Type:                 req.Type,
		Status:               req.Status,
		RequiresRegistration: req.RequiresRegistration,
	})
	if err != nil {
		writeDomainError(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Delete handles DELETE /sessions/{id}
// Cancels the session; registrations keep their history.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateCapacity handles PATCH /sessions/{id}/capacity
func (h *SessionHandler) UpdateCapacity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MaxCapacity int `json:"max_capacity"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	session, err := h.sessions.UpdateSessionCapacity(r.Context(), chi.URLParam(r, "id"), req.MaxCapacity)
	if err != nil {
		writeDomainError(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Duplicate handles POST /sessions/{id}/duplicate
func (h *SessionHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.DuplicateSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// Register handles POST /sessions/{id}/register
// Runs the session admission protocol, including the implicit event-level
// enrollment, as one atomic operation.
func (h *SessionHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ParticipantID == "" {
		writeError(w, http.StatusBadRequest, "participant_id is required")
		return
	}
	reg, err := h.enrollment.EnrollInSession(r.Context(), req.ParticipantID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}

// ListRegistrations handles GET /sessions/{id}/registrations
func (h *SessionHandler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.sessions.GetSession(r.Context(), id); err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	regs, err := h.enrollment.RegistrationsBySession(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	writeJSON(w, http.StatusOK, regs)
}

// RoomAvailability handles GET /sessions/{id}/room-availability?start=…&end=…
func (h *SessionHandler) RoomAvailability(w http.ResponseWriter, r *http.Request) {
	available, err := h.sessions.CheckRoomAvailability(r.Context(),
		chi.URLParam(r, "id"), r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		writeDomainError(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"available": available})
}
