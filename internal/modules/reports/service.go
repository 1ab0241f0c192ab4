package reports

import (
	"fmt"
	"sort"
	"time"

	talib "github.com/markcheno/go-talib"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/daleplay/sync-center/internal/domain"
	"github.com/daleplay/sync-center/internal/modules/opportunities"
	"github.com/daleplay/sync-center/pkg/nps"
)

// smaPeriod is the moving-average window for the revenue trend, in months.
const smaPeriod = 3

// Lister supplies the opportunity rows the reports aggregate over.
type Lister interface {
	List(filter opportunities.Filter) ([]opportunities.Opportunity, error)
}

// StatusSummary aggregates one pipeline stage.
type StatusSummary struct {
	Status      domain.OpportunityStatus `json:"status"`
	Count       int                      `json:"count"`
	TotalBudget float64                  `json:"total_budget"`
	TotalNPS    float64                  `json:"total_nps"`
}

// Summary is the pipeline overview report.
type Summary struct {
	Stages       []StatusSummary `json:"stages"`
	OpenCount    int             `json:"open_count"`
	OpenBudget   float64         `json:"open_budget"`
	MeanBudget   float64         `json:"mean_budget"`
	StdDevBudget float64         `json:"stddev_budget"`
}

// MonthlyRevenue is one month's collected revenue with its smoothed value.
type MonthlyRevenue struct {
	Month     string  `json:"month"` // YYYY-MM
	Collected float64 `json:"collected"`
	Smoothed  float64 `json:"smoothed"` // 3-month SMA, 0 until enough history
}

// Service builds aggregate reports over the opportunity pipeline.
type Service struct {
	repo Lister
	log  zerolog.Logger
}

// NewService creates a new report service
func NewService(repo Lister, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("service", "reports").Logger(),
	}
}

// Summary builds the per-stage pipeline overview. Open-deal budget
// statistics cover every stage except PAID and REJECTED.
func (s *Service) Summary() (*Summary, error) {
	all, err := s.repo.List(opportunities.Filter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list opportunities: %w", err)
	}

	byStatus := make(map[domain.OpportunityStatus]*StatusSummary, len(domain.AllStatuses))
	for _, status := range domain.AllStatuses {
		byStatus[status] = &StatusSummary{Status: status}
	}

	var openBudgets []float64
	summary := &Summary{}

	for i := range all {
		opp := &all[i]
		stage := byStatus[opp.Status]
		if stage == nil {
			s.log.Warn().
				Int64("opportunity_id", opp.ID).
				Str("status", string(opp.Status)).
				Msg("Unknown status in report, skipping")
			continue
		}

		stage.Count++
		stage.TotalBudget += opp.Budget
		stage.TotalNPS += opp.TotalAmount

		if !domain.IsTerminal(opp.Status) && opp.Status != domain.StatusRejected {
			summary.OpenCount++
			summary.OpenBudget += opp.Budget
			openBudgets = append(openBudgets, opp.Budget)
		}
	}

	for _, status := range domain.AllStatuses {
		stage := byStatus[status]
		stage.TotalBudget = nps.Round2(stage.TotalBudget)
		stage.TotalNPS = nps.Round2(stage.TotalNPS)
		summary.Stages = append(summary.Stages, *stage)
	}

	summary.OpenBudget = nps.Round2(summary.OpenBudget)
	if len(openBudgets) > 0 {
		summary.MeanBudget = nps.Round2(stat.Mean(openBudgets, nil))
	}
	if len(openBudgets) > 1 {
		summary.StdDevBudget = nps.Round2(stat.StdDev(openBudgets, nil))
	}

	return summary, nil
}

// RevenueTrend buckets paid deals into calendar months by the date they
// reached PAID and smooths the series with a 3-month moving average.
func (s *Service) RevenueTrend() ([]MonthlyRevenue, error) {
	paid := domain.StatusPaid
	deals, err := s.repo.List(opportunities.Filter{Status: &paid})
	if err != nil {
		return nil, fmt.Errorf("failed to list paid opportunities: %w", err)
	}

	if len(deals) == 0 {
		return []MonthlyRevenue{}, nil
	}

	byMonth := make(map[string]float64)
	for i := range deals {
		month := deals[i].UpdatedAt.Format("2006-01")
		byMonth[month] += deals[i].TotalAmount
	}

	months := make([]string, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	sort.Strings(months)

	// Fill gaps so the SMA runs over a contiguous series
	months = fillMonthGaps(months)

	collected := make([]float64, len(months))
	for i, month := range months {
		collected[i] = byMonth[month]
	}

	var smoothed []float64
	if len(collected) >= smaPeriod {
		smoothed = talib.Sma(collected, smaPeriod)
	} else {
		smoothed = make([]float64, len(collected))
	}

	trend := make([]MonthlyRevenue, len(months))
	for i, month := range months {
		trend[i] = MonthlyRevenue{
			Month:     month,
			Collected: nps.Round2(collected[i]),
			Smoothed:  nps.Round2(smoothed[i]),
		}
	}

	return trend, nil
}

// fillMonthGaps expands a sorted list of YYYY-MM keys into a contiguous
// month range from first to last.
func fillMonthGaps(months []string) []string {
	if len(months) < 2 {
		return months
	}

	first, err := time.Parse("2006-01", months[0])
	if err != nil {
		return months
	}
	last, err := time.Parse("2006-01", months[len(months)-1])
	if err != nil {
		return months
	}

	var filled []string
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		filled = append(filled, m.Format("2006-01"))
	}
	return filled
}
