package catalog

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/daleplay/sync-center/internal/events"
)

// Handler handles catalog HTTP requests
type Handler struct {
	repo         *Repository
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewHandler creates a new catalog handler
func NewHandler(repo *Repository, eventManager *events.Manager, log zerolog.Logger) *Handler {
	return &Handler{
		repo:         repo,
		eventManager: eventManager,
		log:          log.With().Str("handler", "catalog").Logger(),
	}
}

// Routes mounts the catalog routes
func (h *Handler) Routes(r chi.Router) {
	r.Get("/works", h.HandleSearchWorks)
	r.Post("/works", h.HandleCreateWork)
	r.Get("/works/{id}", h.HandleGetWork)
	r.Put("/works/{id}", h.HandleUpdateWork)
	r.Delete("/works/{id}", h.HandleDeleteWork)
	r.Get("/works/{id}/recordings", h.HandleListRecordings)
	r.Post("/works/{id}/recordings", h.HandleCreateRecording)
	r.Delete("/recordings/{id}", h.HandleDeleteRecording)
}

type workRequest struct {
	Title             string  `json:"title"`
	Artist            string  `json:"artist"`
	Writers           *string `json:"writers"`
	ControlPercentage float64 `json:"control_percentage"`
	SharePercentage   float64 `json:"share_percentage"`
}

func (req *workRequest) validate() string {
	if req.Title == "" {
		return "title is required"
	}
	if req.Artist == "" {
		return "artist is required"
	}
	if !validPercentage(req.ControlPercentage) {
		return "control_percentage must be between 0 and 100"
	}
	if !validPercentage(req.SharePercentage) {
		return "share_percentage must be between 0 and 100"
	}
	return ""
}

// HandleSearchWorks handles GET /works - list or search the catalog
func (h *Handler) HandleSearchWorks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	var limit *int
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l < 1 || l > 1000 {
			http.Error(w, "Invalid limit. Must be 1-1000", http.StatusBadRequest)
			return
		}
		limit = &l
	}

	works, err := h.repo.SearchWorks(q, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to search works")
		http.Error(w, "Failed to retrieve works", http.StatusInternalServerError)
		return
	}

	if works == nil {
		works = []Work{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(works)
}

// HandleCreateWork handles POST /works
func (h *Handler) HandleCreateWork(w http.ResponseWriter, r *http.Request) {
	var req workRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	if msg := req.validate(); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	work, err := h.repo.CreateWork(&Work{
		Title:             req.Title,
		Artist:            req.Artist,
		Writers:           req.Writers,
		ControlPercentage: req.ControlPercentage,
		SharePercentage:   req.SharePercentage,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create work")
		http.Error(w, "Failed to create work", http.StatusInternalServerError)
		return
	}

	h.eventManager.Emit(events.WorkCreated, "catalog", map[string]interface{}{
		"work_id": work.ID,
		"title":   work.Title,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(work)
}

// HandleGetWork handles GET /works/{id}
func (h *Handler) HandleGetWork(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	work, err := h.repo.GetWork(id)
	if err != nil {
		h.log.Error().Err(err).Int64("work_id", id).Msg("Failed to get work")
		http.Error(w, "Failed to retrieve work", http.StatusInternalServerError)
		return
	}
	if work == nil {
		http.Error(w, "Work not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(work)
}

// HandleUpdateWork handles PUT /works/{id}
func (h *Handler) HandleUpdateWork(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req workRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	if msg := req.validate(); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	existing, err := h.repo.GetWork(id)
	if err != nil {
		h.log.Error().Err(err).Int64("work_id", id).Msg("Failed to get work")
		http.Error(w, "Failed to retrieve work", http.StatusInternalServerError)
		return
	}
	if existing == nil {
		http.Error(w, "Work not found", http.StatusNotFound)
		return
	}

	existing.Title = req.Title
	existing.Artist = req.Artist
	existing.Writers = req.Writers
	existing.ControlPercentage = req.ControlPercentage
	existing.SharePercentage = req.SharePercentage

	if err := h.repo.UpdateWork(existing); err != nil {
		h.log.Error().Err(err).Int64("work_id", id).Msg("Failed to update work")
		http.Error(w, "Failed to update work", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(existing)
}

// HandleDeleteWork handles DELETE /works/{id}
func (h *Handler) HandleDeleteWork(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	work, err := h.repo.GetWork(id)
	if err != nil {
		h.log.Error().Err(err).Int64("work_id", id).Msg("Failed to get work")
		http.Error(w, "Failed to retrieve work", http.StatusInternalServerError)
		return
	}
	if work == nil {
		http.Error(w, "Work not found", http.StatusNotFound)
		return
	}

	if err := h.repo.DeleteWork(id); err != nil {
		h.log.Error().Err(err).Int64("work_id", id).Msg("Failed to delete work")
		http.Error(w, "Failed to delete work", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type recordingRequest struct {
	Title             string  `json:"title"`
	ControlPercentage float64 `json:"control_percentage"`
	Percentage        float64 `json:"percentage"`
}

// HandleListRecordings handles GET /works/{id}/recordings
func (h *Handler) HandleListRecordings(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	recordings, err := h.repo.ListRecordingsByWork(id)
	if err != nil {
		h.log.Error().Err(err).Int64("work_id", id).Msg("Failed to list recordings")
		http.Error(w, "Failed to retrieve recordings", http.StatusInternalServerError)
		return
	}

	if recordings == nil {
		recordings = []Recording{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(recordings)
}

// HandleCreateRecording handles POST /works/{id}/recordings
func (h *Handler) HandleCreateRecording(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	work, err := h.repo.GetWork(id)
	if err != nil {
		h.log.Error().Err(err).Int64("work_id", id).Msg("Failed to get work")
		http.Error(w, "Failed to retrieve work", http.StatusInternalServerError)
		return
	}
	if work == nil {
		http.Error(w, "Work not found", http.StatusNotFound)
		return
	}

	var req recordingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	if req.Title == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}
	if !validPercentage(req.ControlPercentage) {
		http.Error(w, "control_percentage must be between 0 and 100", http.StatusBadRequest)
		return
	}
	if !validPercentage(req.Percentage) {
		http.Error(w, "percentage must be between 0 and 100", http.StatusBadRequest)
		return
	}

	recording, err := h.repo.CreateRecording(&Recording{
		WorkID:            id,
		Title:             req.Title,
		ControlPercentage: req.ControlPercentage,
		Percentage:        req.Percentage,
	})
	if err != nil {
		h.log.Error().Err(err).Int64("work_id", id).Msg("Failed to create recording")
		http.Error(w, "Failed to create recording", http.StatusInternalServerError)
		return
	}

	h.eventManager.Emit(events.RecordingCreated, "catalog", map[string]interface{}{
		"recording_id": recording.ID,
		"work_id":      id,
		"title":        recording.Title,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(recording)
}

// HandleDeleteRecording handles DELETE /recordings/{id}
func (h *Handler) HandleDeleteRecording(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	recording, err := h.repo.GetRecording(id)
	if err != nil {
		h.log.Error().Err(err).Int64("recording_id", id).Msg("Failed to get recording")
		http.Error(w, "Failed to retrieve recording", http.StatusInternalServerError)
		return
	}
	if recording == nil {
		http.Error(w, "Recording not found", http.StatusNotFound)
		return
	}

	if err := h.repo.DeleteRecording(id); err != nil {
		h.log.Error().Err(err).Int64("recording_id", id).Msg("Failed to delete recording")
		http.Error(w, "Failed to delete recording", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func validPercentage(p float64) bool {
	return p >= 0 && p <= 100
}
