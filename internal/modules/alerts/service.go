package alerts

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/daleplay/sync-center/internal/domain"
	"github.com/daleplay/sync-center/internal/modules/opportunities"
)

const dateLayout = "2006-01-02"

// ActiveLister supplies the opportunities still moving through the pipeline.
type ActiveLister interface {
	ListActive() ([]opportunities.Opportunity, error)
}

// Service computes pipeline health alerts from the active opportunities.
type Service struct {
	repo         ActiveLister
	deadlineDays int
	approvalDays int
	log          zerolog.Logger
}

// NewService creates a new alert service. deadlineDays is the warning
// window before a deadline, approvalDays the dwell threshold for deals
// stuck in APPROVAL.
func NewService(repo ActiveLister, deadlineDays, approvalDays int, log zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		deadlineDays: deadlineDays,
		approvalDays: approvalDays,
		log:          log.With().Str("service", "alerts").Logger(),
	}
}

// Scan evaluates every active opportunity against the alert rules as of now.
func (s *Service) Scan(now time.Time) ([]Alert, error) {
	active, err := s.repo.ListActive()
	if err != nil {
		return nil, fmt.Errorf("failed to list active opportunities: %w", err)
	}

	alerts := []Alert{}
	for i := range active {
		opp := &active[i]

		if alert := s.checkDeadline(opp, now); alert != nil {
			alerts = append(alerts, *alert)
		}
		if alert := s.checkApprovalStall(opp, now); alert != nil {
			alerts = append(alerts, *alert)
		}
	}

	return alerts, nil
}

func (s *Service) checkDeadline(opp *opportunities.Opportunity, now time.Time) *Alert {
	if opp.Deadline == nil {
		return nil
	}

	deadline, err := time.Parse(dateLayout, *opp.Deadline)
	if err != nil {
		s.log.Warn().
			Int64("opportunity_id", opp.ID).
			Str("deadline", *opp.Deadline).
			Msg("Unparseable deadline, skipping")
		return nil
	}

	today := now.Truncate(24 * time.Hour)
	daysLeft := int(deadline.Sub(today).Hours() / 24)

	switch {
	case daysLeft < 0:
		return &Alert{
			OpportunityID: opp.ID,
			Client:        opp.Client,
			Project:       opp.Project,
			Type:          AlertDeadlineOverdue,
			Status:        string(opp.Status),
			Deadline:      opp.Deadline,
			Message:       fmt.Sprintf("Deadline %s passed %d day(s) ago", *opp.Deadline, -daysLeft),
		}
	case daysLeft <= s.deadlineDays:
		return &Alert{
			OpportunityID: opp.ID,
			Client:        opp.Client,
			Project:       opp.Project,
			Type:          AlertDeadlineApproaching,
			Status:        string(opp.Status),
			Deadline:      opp.Deadline,
			Message:       fmt.Sprintf("Deadline %s in %d day(s)", *opp.Deadline, daysLeft),
		}
	}

	return nil
}

func (s *Service) checkApprovalStall(opp *opportunities.Opportunity, now time.Time) *Alert {
	if opp.Status != domain.StatusApproval {
		return nil
	}

	days := int(now.Sub(opp.UpdatedAt).Hours() / 24)
	if days < s.approvalDays {
		return nil
	}

	return &Alert{
		OpportunityID: opp.ID,
		Client:        opp.Client,
		Project:       opp.Project,
		Type:          AlertApprovalStalled,
		Status:        string(opp.Status),
		DaysInStatus:  days,
		Message:       fmt.Sprintf("Waiting for approval for %d day(s)", days),
	}
}
