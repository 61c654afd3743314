package handler

import (
	"net/http"
	"strconv"

	"github.com/confreg/conference-registration/internal/model"
	"github.com/confreg/conference-registration/internal/service"
	"github.com/go-chi/chi/v5"
)

// SpeakerHandler holds the HTTP handlers for the speakers resource.
type SpeakerHandler struct {
	speakers *service.SpeakerService
}

// NewSpeakerHandler constructs a SpeakerHandler.
func NewSpeakerHandler(speakers *service.SpeakerService) *SpeakerHandler {
	return &SpeakerHandler{speakers: speakers}
}

// Routes mounts the speaker routes on a chi router.
func (h *SpeakerHandler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/featured", h.ListFeatured)
	r.Get("/top-rated", h.ListTopRated)
	r.Get("/available", h.ListAvailable)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/rate", h.Rate)
	r.Post("/{id}/toggle-featured", h.ToggleFeatured)
	r.Get("/{id}/sessions", h.ListSessions)
}

type createSpeakerRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Bio            string `json:"bio"`
	Company        string `json:"company"`
	Specialization string `json:"specialization"`
	PhoneNumber    string `json:"phone_number"`
	LinkedinURL    string `json:"linkedin_url"`
	TwitterHandle  string `json:"twitter_handle"`
	WebsiteURL     string `json:"website_url"`
	PhotoURL       string `json:"photo_url"`
	SpeakerLevel   string `json:"speaker_level"`
	IsFeatured     bool   `json:"is_featured"`
}

// Create handles POST /speakers
func (h *SpeakerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSpeakerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	speaker, err := h.speakers.CreateSpeaker(r.Context(), service.CreateSpeakerInput{
		Name:           req.Name,
		Email:          req.Email,
		Bio:            req.Bio,
		Company:        req.Company,
		Specialization: req.Specialization,
		PhoneNumber:    req.PhoneNumber,
		LinkedinURL:    req.LinkedinURL,
		TwitterHandle:  req.TwitterHandle,
		WebsiteURL:     req.WebsiteURL,
		PhotoURL:       req.PhotoURL,
		SpeakerLevel:   req.SpeakerLevel,
		IsFeatured:     req.IsFeatured,
	})
	if err != nil {
		writeDomainError(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, speaker)
}

// List handles GET /speakers
func (h *SpeakerHandler) List(w http.ResponseWriter, r *http.Request) {
	speakers, err := h.speakers.ListSpeakers(r.Context())
	if err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	if speakers == nil {
		speakers = []model.Speaker{}
	}
	writeJSON(w, http.StatusOK, speakers)
}

// ListFeatured handles GET /speakers/featured
func (h *SpeakerHandler) ListFeatured(w http.ResponseWriter, r *http.Request) {
	speakers, err := h.speakers.FeaturedSpeakers(r.Context())
	if err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	if speakers == nil {
		speakers = []model.Speaker{}
	}
	writeJSON(w, http.StatusOK, speakers)
}

// ListTopRated handles GET /speakers/top-rated?min=4.0
func (h *SpeakerHandler) ListTopRated(w http.ResponseWriter, r *http.Request) {
	min := 4.0
	if raw := r.URL.Query().Get("min"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "min must be a number")
			return
		}
		min = parsed
	}
	speakers, err := h.speakers.TopRatedSpeakers(r.Context(), min)
	if err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	if speakers == nil {
		speakers = []model.Speaker{}
	}
	writeJSON(w, http.StatusOK, speakers)
}

// ListAvailable handles GET /speakers/available?start=…&end=…
func (h *SpeakerHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	speakers, err := h.speakers.AvailableSpeakers(r.Context(),
		r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		writeDomainError(w, err, http.StatusBadRequest)
		return
	}
	if speakers == nil {
		speakers = []model.Speaker{}
	}
	writeJSON(w, http.StatusOK, speakers)
}

// Get handles GET /speakers/{id}
func (h *SpeakerHandler) Get(w http.ResponseWriter, r *http.Request) {
	speaker, err := h.speakers.GetSpeaker(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, speaker)
}

type updateSpeakerRequest struct {
	Name           *string `json:"name"`
	Email          *string `json:"email"`
	Bio            *string `json:"bio"`
	Company        *string `json:"company"`
	Specialization *string `json:"specialization"`
	PhoneNumber    *string `json:"phone_number"`
	LinkedinURL    *string `json:"linkedin_url"`
	TwitterHandle  *string `json:"twitter_handle"`
	WebsiteURL     *string `json:"website_url"`
	PhotoURL       *string `json:"photo_url"`
	SpeakerLevel   *string `json:"speaker_level"`
	IsFeatured     *bool   `json:"is_featured"`
}

// Update handles PUT /speakers/{id}
func (h *SpeakerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateSpeakerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	speaker, err := h.speakers.UpdateSpeaker(r.Context(), chi.URLParam(r, "id"), service.UpdateSpeakerInput{
		Name:           req.Name,
		Email:          req.Email,
		Bio:            req.Bio,
		Company:        req.Company,
		Specialization: req.Specialization,
		PhoneNumber:    req.PhoneNumber,
		LinkedinURL:    req.LinkedinURL,
		TwitterHandle:  req.TwitterHandle,
		WebsiteURL:     req.WebsiteURL,
		PhotoURL:       req.PhotoURL,
		SpeakerLevel:   req.SpeakerLevel,
		IsFeatured:     req.IsFeatured,
	})
	if err != nil {
		writeDomainError(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, speaker)
}

// Delete handles DELETE /speakers/{id}
func (h *SpeakerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.speakers.DeleteSpeaker(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Rate handles POST /speakers/{id}/rate
func (h *SpeakerHandler) Rate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rating int `json:"rating"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	speaker, err := h.speakers.RateSpeaker(r.Context(), chi.URLParam(r, "id"), req.Rating)
	if err != nil {
		writeDomainError(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, speaker)
}

// ToggleFeatured handles POST /speakers/{id}/toggle-featured
func (h *SpeakerHandler) ToggleFeatured(w http.ResponseWriter, r *http.Request) {
	speaker, err := h.speakers.ToggleFeatured(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, speaker)
}

// ListSessions handles GET /speakers/{id}/sessions?future=true
func (h *SpeakerHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.speakers.GetSpeaker(r.Context(), id); err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	var (
		sessions []model.Session
		err      error
	)
	if r.URL.Query().Get("future") == "true" {
		sessions, err = h.speakers.FutureSpeakerSessions(r.Context(), id)
	} else {
		sessions, err = h.speakers.SpeakerSessions(r.Context(), id)
	}
	if err != nil {
		writeDomainError(w, err, http.StatusInternalServerError)
		return
	}
	if sessions == nil {
		sessions = []model.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}
