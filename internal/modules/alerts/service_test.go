package alerts

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daleplay/sync-center/internal/domain"
	"github.com/daleplay/sync-center/internal/modules/opportunities"
)

type fakeLister struct {
	opps []opportunities.Opportunity
}

func (f *fakeLister) ListActive() ([]opportunities.Opportunity, error) {
	return f.opps, nil
}

func strPtr(s string) *string { return &s }

func TestScan_DeadlineApproaching(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	lister := &fakeLister{opps: []opportunities.Opportunity{
		{
			ID:       1,
			Client:   "Netflix",
			Project:  "Narcos S4",
			Status:   domain.StatusNegotiation,
			Deadline: strPtr("2026-03-15"),
		},
	}}

	service := NewService(lister, 7, 14, zerolog.Nop())
	alerts, err := service.Scan(now)
	require.NoError(t, err)

	require.Len(t, alerts, 1)
	assert.Equal(t, AlertDeadlineApproaching, alerts[0].Type)
	assert.Equal(t, int64(1), alerts[0].OpportunityID)
	assert.Contains(t, alerts[0].Message, "2026-03-15")
}

func TestScan_DeadlineOverdue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	lister := &fakeLister{opps: []opportunities.Opportunity{
		{
			ID:       2,
			Client:   "HBO",
			Project:  "Euphoria S3",
			Status:   domain.StatusLegal,
			Deadline: strPtr("2026-03-01"),
		},
	}}

	service := NewService(lister, 7, 14, zerolog.Nop())
	alerts, err := service.Scan(now)
	require.NoError(t, err)

	require.Len(t, alerts, 1)
	assert.Equal(t, AlertDeadlineOverdue, alerts[0].Type)
}

func TestScan_DeadlineFarAwayIsQuiet(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	lister := &fakeLister{opps: []opportunities.Opportunity{
		{
			ID:       3,
			Client:   "Netflix",
			Project:  "Narcos S4",
			Status:   domain.StatusNegotiation,
			Deadline: strPtr("2026-06-01"),
		},
	}}

	service := NewService(lister, 7, 14, zerolog.Nop())
	alerts, err := service.Scan(now)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestScan_ApprovalStalled(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	lister := &fakeLister{opps: []opportunities.Opportunity{
		{
			ID:        4,
			Client:    "Apple TV",
			Project:   "Acapulco S3",
			Status:    domain.StatusApproval,
			UpdatedAt: now.AddDate(0, 0, -20),
		},
		{
			ID:        5,
			Client:    "Amazon",
			Project:   "Doc series",
			Status:    domain.StatusApproval,
			UpdatedAt: now.AddDate(0, 0, -3),
		},
	}}

	service := NewService(lister, 7, 14, zerolog.Nop())
	alerts, err := service.Scan(now)
	require.NoError(t, err)

	require.Len(t, alerts, 1)
	assert.Equal(t, AlertApprovalStalled, alerts[0].Type)
	assert.Equal(t, int64(4), alerts[0].OpportunityID)
	assert.Equal(t, 20, alerts[0].DaysInStatus)
}

func TestScan_StallRuleOnlyAppliesToApproval(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	lister := &fakeLister{opps: []opportunities.Opportunity{
		{
			ID:        6,
			Client:    "Netflix",
			Project:   "Narcos S4",
			Status:    domain.StatusNegotiation,
			UpdatedAt: now.AddDate(0, 0, -60),
		},
	}}

	service := NewService(lister, 7, 14, zerolog.Nop())
	alerts, err := service.Scan(now)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestScan_BadDeadlineIsSkipped(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	lister := &fakeLister{opps: []opportunities.Opportunity{
		{
			ID:       7,
			Client:   "Netflix",
			Project:  "Narcos S4",
			Status:   domain.StatusNegotiation,
			Deadline: strPtr("soon"),
		},
	}}

	service := NewService(lister, 7, 14, zerolog.Nop())
	alerts, err := service.Scan(now)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestScan_BothRulesCanFireForOneDeal(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	lister := &fakeLister{opps: []opportunities.Opportunity{
		{
			ID:        8,
			Client:    "Apple TV",
			Project:   "Acapulco S3",
			Status:    domain.StatusApproval,
			Deadline:  strPtr("2026-03-12"),
			UpdatedAt: now.AddDate(0, 0, -30),
		},
	}}

	service := NewService(lister, 7, 14, zerolog.Nop())
	alerts, err := service.Scan(now)
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	types := []AlertType{alerts[0].Type, alerts[1].Type}
	assert.Contains(t, types, AlertDeadlineApproaching)
	assert.Contains(t, types, AlertApprovalStalled)
}
