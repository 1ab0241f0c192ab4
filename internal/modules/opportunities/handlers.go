package opportunities

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/daleplay/sync-center/internal/domain"
	"github.com/daleplay/sync-center/pkg/nps"
)

// Handler handles opportunity HTTP requests
type Handler struct {
	service *Service
	repo    *Repository
	log     zerolog.Logger
}

// NewHandler creates a new opportunities handler
func NewHandler(service *Service, repo *Repository, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		repo:    repo,
		log:     log.With().Str("handler", "opportunities").Logger(),
	}
}

// Routes mounts the opportunity routes
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Get("/board", h.HandleBoard)
	r.Post("/preview", h.HandlePreview)
	r.Get("/{id}", h.HandleGet)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)
	r.Post("/{id}/status", h.HandleChangeStatus)
	r.Get("/{id}/songs", h.HandleListSongs)
	r.Post("/{id}/songs", h.HandleAddSong)
	r.Delete("/{id}/songs/{songID}", h.HandleRemoveSong)
}

// actorFrom resolves the acting user from the X-Actor header. Machine
// callers omit it and are recorded as the system actor.
func actorFrom(r *http.Request) domain.Actor {
	if actor := r.Header.Get("X-Actor"); actor != "" {
		return domain.Actor(actor)
	}
	return domain.SystemActor
}

// HandleList handles GET / with optional status, flow, q and limit filters
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter := Filter{
		Query: r.URL.Query().Get("q"),
	}

	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status := domain.OpportunityStatus(statusStr)
		if !status.Valid() {
			http.Error(w, "Invalid status filter", http.StatusBadRequest)
			return
		}
		filter.Status = &status
	}

	if flowStr := r.URL.Query().Get("flow"); flowStr != "" {
		flow := domain.FlowDirection(flowStr)
		if !flow.Valid() {
			http.Error(w, "Invalid flow filter", http.StatusBadRequest)
			return
		}
		filter.Flow = &flow
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > 1000 {
			http.Error(w, "Invalid limit. Must be 1-1000", http.StatusBadRequest)
			return
		}
		filter.Limit = &limit
	}

	opportunities, err := h.repo.List(filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list opportunities")
		http.Error(w, "Failed to retrieve opportunities", http.StatusInternalServerError)
		return
	}

	if opportunities == nil {
		opportunities = []Opportunity{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(opportunities)
}

// HandleCreate handles POST /
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	if req.Client == "" {
		http.Error(w, "client is required", http.StatusBadRequest)
		return
	}
	if req.Project == "" {
		http.Error(w, "project is required", http.StatusBadRequest)
		return
	}
	if !req.FlowDirection.Valid() {
		http.Error(w, "flow_direction must be INBOUND or OUTBOUND", http.StatusBadRequest)
		return
	}

	opp, err := h.service.Create(req, actorFrom(r))
	if err != nil {
		h.writeServiceError(w, err, "Failed to create opportunity")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(opp)
}

// HandleBoard handles GET /board - opportunities grouped by pipeline stage
func (h *Handler) HandleBoard(w http.ResponseWriter, r *http.Request) {
	board, err := h.service.Board()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build board")
		http.Error(w, "Failed to retrieve board", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(board)
}

type previewRequest struct {
	WorkID      *int64  `json:"work_id"`
	RecordingID *int64  `json:"recording_id"`
	Budget      float64 `json:"budget"`
	MFN         bool    `json:"mfn"`
}

// HandlePreview handles POST /preview - price a deal without saving it
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	result, err := h.service.Preview(req.WorkID, req.RecordingID, req.Budget, req.MFN)
	if err != nil {
		h.writeServiceError(w, err, "Failed to price opportunity")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// HandleGet handles GET /{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	opp, err := h.repo.Get(id)
	if err != nil {
		h.log.Error().Err(err).Int64("opportunity_id", id).Msg("Failed to get opportunity")
		http.Error(w, "Failed to retrieve opportunity", http.StatusInternalServerError)
		return
	}
	if opp == nil {
		http.Error(w, "Opportunity not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(opp)
}

// HandleUpdate handles PUT /{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	if req.Client == "" {
		http.Error(w, "client is required", http.StatusBadRequest)
		return
	}
	if req.Project == "" {
		http.Error(w, "project is required", http.StatusBadRequest)
		return
	}

	opp, err := h.service.Update(id, req, actorFrom(r))
	if err != nil {
		h.writeServiceError(w, err, "Failed to update opportunity")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(opp)
}

// HandleDelete handles DELETE /{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(id); err != nil {
		h.writeServiceError(w, err, "Failed to delete opportunity")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type statusRequest struct {
	Status domain.OpportunityStatus `json:"status"`
}

// HandleChangeStatus handles POST /{id}/status
func (h *Handler) HandleChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	opp, err := h.service.ChangeStatus(id, req.Status, actorFrom(r))
	if err != nil {
		var transitionErr *domain.TransitionError
		if errors.As(err, &transitionErr) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error":     transitionErr.Error(),
				"from":      transitionErr.From,
				"requested": transitionErr.Requested,
				"allowed":   transitionErr.Allowed,
			})
			return
		}
		h.writeServiceError(w, err, "Failed to change status")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(opp)
}

// HandleListSongs handles GET /{id}/songs
func (h *Handler) HandleListSongs(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	songs, err := h.repo.ListSongs(id)
	if err != nil {
		h.log.Error().Err(err).Int64("opportunity_id", id).Msg("Failed to list songs")
		http.Error(w, "Failed to retrieve songs", http.StatusInternalServerError)
		return
	}

	if songs == nil {
		songs = []Song{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(songs)
}

// HandleAddSong handles POST /{id}/songs
func (h *Handler) HandleAddSong(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req AddSongRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	if req.WorkID < 1 {
		http.Error(w, "work_id is required", http.StatusBadRequest)
		return
	}

	song, err := h.service.AddSong(id, req, actorFrom(r))
	if err != nil {
		h.writeServiceError(w, err, "Failed to add song")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(song)
}

// HandleRemoveSong handles DELETE /{id}/songs/{songID}
func (h *Handler) HandleRemoveSong(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	songID, ok := parseID(w, r, "songID")
	if !ok {
		return
	}

	if err := h.service.RemoveSong(id, songID, actorFrom(r)); err != nil {
		h.writeServiceError(w, err, "Failed to remove song")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError maps service errors to HTTP status codes.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, ErrHasSongs):
		http.Error(w, "Opportunity has associated songs", http.StatusConflict)
	case errors.Is(err, ErrStaleStatus):
		http.Error(w, "Opportunity was modified concurrently, retry", http.StatusConflict)
	case errors.Is(err, nps.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.log.Error().Err(err).Msg(fallback)
		http.Error(w, fallback, http.StatusInternalServerError)
	}
}

func parseID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id < 1 {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
