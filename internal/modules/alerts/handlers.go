package alerts

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles alert HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new alert handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "alerts").Logger(),
	}
}

// Routes mounts the alert routes
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.HandleList)
}

// HandleList handles GET / - current pipeline alerts
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.service.Scan(time.Now())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to scan for alerts")
		http.Error(w, "Failed to retrieve alerts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(alerts)
}
