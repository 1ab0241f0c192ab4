package opportunities

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/daleplay/sync-center/internal/domain"
	"github.com/daleplay/sync-center/internal/events"
	"github.com/daleplay/sync-center/internal/modules/activity"
	"github.com/daleplay/sync-center/internal/modules/catalog"
	"github.com/daleplay/sync-center/pkg/nps"
)

var (
	// ErrNotFound indicates the opportunity or song does not exist
	ErrNotFound = errors.New("not found")
	// ErrHasSongs blocks deletion of an opportunity that still carries songs
	ErrHasSongs = errors.New("opportunity has associated songs")
	// ErrStaleStatus indicates a concurrent mover changed the status first
	ErrStaleStatus = errors.New("opportunity status changed concurrently")
)

// CatalogLookup supplies the stored percentage inputs for pricing.
type CatalogLookup interface {
	GetWork(id int64) (*catalog.Work, error)
	GetRecording(id int64) (*catalog.Recording, error)
}

// AuditLog receives the append-only audit trail entries.
type AuditLog interface {
	Record(opportunityID int64, entryType activity.EntryType, actor domain.Actor, message string, data map[string]interface{}) error
}

// CreateRequest carries the new-opportunity form fields.
type CreateRequest struct {
	Client        string               `json:"client"`
	Project       string               `json:"project"`
	FlowDirection domain.FlowDirection `json:"flow_direction"`
	Budget        float64              `json:"budget"`
	MFN           bool                 `json:"mfn"`
	Currency      domain.Currency      `json:"currency"`
	Deadline      *string              `json:"deadline"`
	WorkID        *int64               `json:"work_id"`
	RecordingID   *int64               `json:"recording_id"`
}

// UpdateRequest carries the generic-edit form fields. Status is absent on
// purpose: status changes only go through ChangeStatus.
type UpdateRequest struct {
	Client      string          `json:"client"`
	Project     string          `json:"project"`
	Budget      float64         `json:"budget"`
	MFN         bool            `json:"mfn"`
	Currency    domain.Currency `json:"currency"`
	Deadline    *string         `json:"deadline"`
	WorkID      *int64          `json:"work_id"`
	RecordingID *int64          `json:"recording_id"`
}

// AddSongRequest carries the add-song form fields.
type AddSongRequest struct {
	WorkID      int64   `json:"work_id"`
	RecordingID *int64  `json:"recording_id"`
	Budget      float64 `json:"budget"`
	MFN         bool    `json:"mfn"`
}

// Service owns the opportunity lifecycle: creation, pricing, pipeline
// moves and the audit side effects they carry.
type Service struct {
	repo         *Repository
	catalogRepo  CatalogLookup
	auditLog     AuditLog
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewService creates a new opportunity service
func NewService(
	repo *Repository,
	catalogRepo CatalogLookup,
	auditLog AuditLog,
	eventManager *events.Manager,
	log zerolog.Logger,
) *Service {
	return &Service{
		repo:         repo,
		catalogRepo:  catalogRepo,
		auditLog:     auditLog,
		eventManager: eventManager,
		log:          log.With().Str("service", "opportunities").Logger(),
	}
}

// Create prices and persists a new opportunity. The initial pipeline stage
// comes from the flow direction: inbound requests start at APPROVAL,
// outbound pitches at PITCHING.
func (s *Service) Create(req CreateRequest, actor domain.Actor) (*Opportunity, error) {
	result, err := s.price(req.WorkID, req.RecordingID, req.Budget, req.MFN)
	if err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = domain.CurrencyUSD
	}

	opp := &Opportunity{
		Client:        req.Client,
		Project:       req.Project,
		FlowDirection: req.FlowDirection,
		Status:        domain.InitialStatus(req.FlowDirection),
		Budget:        req.Budget,
		MFN:           req.MFN,
		Currency:      currency,
		Deadline:      req.Deadline,
		WorkID:        req.WorkID,
		RecordingID:   req.RecordingID,
	}
	applyPricing(opp, result)

	created, err := s.repo.Create(opp)
	if err != nil {
		return nil, err
	}

	if err := s.auditLog.Record(created.ID, activity.EntryOpportunityCreated, actor, fmt.Sprintf("Opportunity created in %s", created.Status), map[string]interface{}{
		"flow_direction": string(created.FlowDirection),
		"budget":         created.Budget,
	}); err != nil {
		// The opportunity exists; a lost audit entry is logged, not fatal.
		s.log.Error().Err(err).Int64("opportunity_id", created.ID).Msg("Failed to record creation audit entry")
	}

	s.eventManager.Emit(events.OpportunityCreated, "opportunities", map[string]interface{}{
		"opportunity_id": created.ID,
		"client":         created.Client,
		"status":         string(created.Status),
	})

	return created, nil
}

// ChangeStatus moves an opportunity to a new pipeline stage. The move is
// validated against the transition table and persisted with a
// compare-and-swap on the previous stage; PAID and REJECTED destinations
// additionally append categorized completion/rejection audit entries
// attributed to the system actor.
func (s *Service) ChangeStatus(id int64, requested domain.OpportunityStatus, actor domain.Actor) (*Opportunity, error) {
	opp, err := s.repo.Get(id)
	if err != nil {
		return nil, err
	}
	if opp == nil {
		return nil, ErrNotFound
	}

	next, err := domain.Transition(opp.Status, requested)
	if err != nil {
		return nil, err
	}

	moved, err := s.repo.UpdateStatus(id, opp.Status, next)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, ErrStaleStatus
	}

	previous := opp.Status
	opp.Status = next

	if err := s.auditLog.Record(id, activity.EntryStatusChanged, actor, fmt.Sprintf("%s -> %s", previous, next), nil); err != nil {
		s.log.Error().Err(err).Int64("opportunity_id", id).Msg("Failed to record status audit entry")
	}

	s.eventManager.Emit(events.StatusChanged, "opportunities", map[string]interface{}{
		"opportunity_id": id,
		"from":           string(previous),
		"to":             string(next),
	})

	switch next {
	case domain.StatusPaid:
		if err := s.auditLog.Record(id, activity.EntryOpportunityCompleted, domain.SystemActor, "Opportunity completed", map[string]interface{}{
			"final_budget": opp.Budget,
		}); err != nil {
			s.log.Error().Err(err).Int64("opportunity_id", id).Msg("Failed to record completion audit entry")
		}
		s.eventManager.Emit(events.OpportunityCompleted, "opportunities", map[string]interface{}{
			"opportunity_id": id,
			"final_budget":   opp.Budget,
		})
	case domain.StatusRejected:
		if err := s.auditLog.Record(id, activity.EntryOpportunityRejected, domain.SystemActor, "Opportunity rejected", nil); err != nil {
			s.log.Error().Err(err).Int64("opportunity_id", id).Msg("Failed to record rejection audit entry")
		}
		s.eventManager.Emit(events.OpportunityRejected, "opportunities", map[string]interface{}{
			"opportunity_id": id,
		})
	}

	return opp, nil
}

// Update edits the non-status fields of an opportunity. Pricing inputs
// (budget, MFN flag, catalog selection) trigger a recompute through the
// same calculator used at creation.
func (s *Service) Update(id int64, req UpdateRequest, actor domain.Actor) (*Opportunity, error) {
	opp, err := s.repo.Get(id)
	if err != nil {
		return nil, err
	}
	if opp == nil {
		return nil, ErrNotFound
	}

	result, err := s.price(req.WorkID, req.RecordingID, req.Budget, req.MFN)
	if err != nil {
		return nil, err
	}

	opp.Client = req.Client
	opp.Project = req.Project
	opp.Budget = req.Budget
	opp.MFN = req.MFN
	if req.Currency != "" {
		opp.Currency = req.Currency
	}
	opp.Deadline = req.Deadline
	opp.WorkID = req.WorkID
	opp.RecordingID = req.RecordingID
	applyPricing(opp, result)

	if err := s.repo.Update(opp); err != nil {
		return nil, err
	}

	s.eventManager.Emit(events.OpportunityUpdated, "opportunities", map[string]interface{}{
		"opportunity_id": id,
		"actor":          string(actor),
	})

	return opp, nil
}

// AddSong prices and attaches a song to an opportunity.
func (s *Service) AddSong(opportunityID int64, req AddSongRequest, actor domain.Actor) (*Song, error) {
	opp, err := s.repo.Get(opportunityID)
	if err != nil {
		return nil, err
	}
	if opp == nil {
		return nil, ErrNotFound
	}

	result, err := s.price(&req.WorkID, req.RecordingID, req.Budget, req.MFN)
	if err != nil {
		return nil, err
	}

	song := &Song{
		OpportunityID:    opportunityID,
		WorkID:           req.WorkID,
		RecordingID:      req.RecordingID,
		Budget:           req.Budget,
		MFN:              req.MFN,
		PublishingAmount: nps.Round2(result.PublishingAmount),
		RecordingAmount:  nps.Round2(result.RecordingAmount),
		TotalAmount:      nps.Round2(result.TotalAmount),
		PercentOfBudget:  nps.Round2(result.PercentOfBudget),
	}

	created, err := s.repo.CreateSong(song)
	if err != nil {
		return nil, err
	}

	if err := s.auditLog.Record(opportunityID, activity.EntrySongAdded, actor, fmt.Sprintf("Song added (work %d)", req.WorkID), map[string]interface{}{
		"song_id": created.ID,
		"budget":  created.Budget,
	}); err != nil {
		s.log.Error().Err(err).Int64("opportunity_id", opportunityID).Msg("Failed to record song audit entry")
	}

	s.eventManager.Emit(events.SongAdded, "opportunities", map[string]interface{}{
		"opportunity_id": opportunityID,
		"song_id":        created.ID,
	})

	return created, nil
}

// RemoveSong detaches a song from its opportunity.
func (s *Service) RemoveSong(opportunityID, songID int64, actor domain.Actor) error {
	song, err := s.repo.GetSong(songID)
	if err != nil {
		return err
	}
	if song == nil || song.OpportunityID != opportunityID {
		return ErrNotFound
	}

	if err := s.repo.DeleteSong(songID); err != nil {
		return err
	}

	if err := s.auditLog.Record(opportunityID, activity.EntrySongRemoved, actor, fmt.Sprintf("Song removed (work %d)", song.WorkID), nil); err != nil {
		s.log.Error().Err(err).Int64("opportunity_id", opportunityID).Msg("Failed to record song-removal audit entry")
	}

	s.eventManager.Emit(events.SongRemoved, "opportunities", map[string]interface{}{
		"opportunity_id": opportunityID,
		"song_id":        songID,
	})

	return nil
}

// Delete removes an opportunity. Deals that still carry songs are refused.
func (s *Service) Delete(id int64) error {
	opp, err := s.repo.Get(id)
	if err != nil {
		return err
	}
	if opp == nil {
		return ErrNotFound
	}

	count, err := s.repo.CountSongs(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrHasSongs
	}

	return s.repo.Delete(id)
}

// Board groups opportunities by pipeline stage for the board view.
func (s *Service) Board() (map[domain.OpportunityStatus][]Opportunity, error) {
	all, err := s.repo.List(Filter{})
	if err != nil {
		return nil, err
	}

	board := make(map[domain.OpportunityStatus][]Opportunity, len(domain.AllStatuses))
	for _, status := range domain.AllStatuses {
		board[status] = []Opportunity{}
	}
	for _, opp := range all {
		board[opp.Status] = append(board[opp.Status], opp)
	}

	return board, nil
}

// Preview prices a prospective deal without persisting anything. Backs the
// form previews so they use the exact formula the stored records use.
func (s *Service) Preview(workID, recordingID *int64, budget float64, mfn bool) (*nps.Result, error) {
	return s.price(workID, recordingID, budget, mfn)
}

// price resolves the catalog percentages and runs the NPS calculator.
func (s *Service) price(workID, recordingID *int64, budget float64, mfn bool) (*nps.Result, error) {
	input := nps.Input{
		Budget: budget,
		MFN:    mfn,
	}

	if workID != nil {
		work, err := s.catalogRepo.GetWork(*workID)
		if err != nil {
			return nil, err
		}
		if work == nil {
			return nil, fmt.Errorf("work %d: %w", *workID, ErrNotFound)
		}
		input.Publishing = nps.PublishingRights{
			ControlPercentage: work.ControlPercentage,
			SharePercentage:   work.SharePercentage,
		}
	}

	if recordingID != nil {
		recording, err := s.catalogRepo.GetRecording(*recordingID)
		if err != nil {
			return nil, err
		}
		if recording == nil {
			return nil, fmt.Errorf("recording %d: %w", *recordingID, ErrNotFound)
		}
		if workID != nil && recording.WorkID != *workID {
			return nil, fmt.Errorf("recording %d does not belong to work %d", *recordingID, *workID)
		}
		pct := recording.Percentage
		input.Recording = nps.RecordingRights{
			ControlPercentage: recording.ControlPercentage,
			Percentage:        &pct,
		}
	}

	return nps.Calculate(input)
}

func applyPricing(opp *Opportunity, result *nps.Result) {
	opp.PublishingAmount = nps.Round2(result.PublishingAmount)
	opp.RecordingAmount = nps.Round2(result.RecordingAmount)
	opp.TotalAmount = nps.Round2(result.TotalAmount)
	opp.PercentOfBudget = nps.Round2(result.PercentOfBudget)
}
