package activity

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles activity log HTTP requests
type Handler struct {
	repo *Repository
	log  zerolog.Logger
}

// NewHandler creates a new activity handler
func NewHandler(repo *Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "activity").Logger(),
	}
}

// Routes mounts the activity routes
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.HandleRecent)
	r.Get("/opportunity/{id}", h.HandleByOpportunity)
}

// HandleRecent handles GET / - latest entries across all opportunities
func (h *Handler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l < 1 || l > 1000 {
			http.Error(w, "Invalid limit. Must be 1-1000", http.StatusBadRequest)
			return
		}
		limit = l
	}

	entries, err := h.repo.Recent(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get recent activity")
		http.Error(w, "Failed to retrieve activity", http.StatusInternalServerError)
		return
	}

	if entries == nil {
		entries = []Entry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// HandleByOpportunity handles GET /opportunity/{id} - full audit trail for one deal
func (h *Handler) HandleByOpportunity(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}

	entries, err := h.repo.ListByOpportunity(id)
	if err != nil {
		h.log.Error().Err(err).Int64("opportunity_id", id).Msg("Failed to get activity")
		http.Error(w, "Failed to retrieve activity", http.StatusInternalServerError)
		return
	}

	if entries == nil {
		entries = []Entry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}
