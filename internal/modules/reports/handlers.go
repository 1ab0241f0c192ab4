package reports

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles report HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new report handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "reports").Logger(),
	}
}

// Routes mounts the report routes
func (h *Handler) Routes(r chi.Router) {
	r.Get("/summary", h.HandleSummary)
	r.Get("/revenue", h.HandleRevenueTrend)
}

// HandleSummary handles GET /summary - pipeline overview
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build summary report")
		http.Error(w, "Failed to build summary", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

// HandleRevenueTrend handles GET /revenue - monthly collected revenue
func (h *Handler) HandleRevenueTrend(w http.ResponseWriter, r *http.Request) {
	trend, err := h.service.RevenueTrend()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build revenue trend")
		http.Error(w, "Failed to build revenue trend", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(trend)
}
