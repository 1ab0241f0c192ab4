package opportunities

import (
	"time"

	"github.com/daleplay/sync-center/internal/domain"
)

// Opportunity is one licensing deal moving through the pipeline.
// Status is only ever written through Service.ChangeStatus; the pricing
// fields hold the stored NPS split, rounded to 2 decimals.
type Opportunity struct {
	ID            int64                    `json:"id"`
	Client        string                   `json:"client"`
	Project       string                   `json:"project"`
	FlowDirection domain.FlowDirection     `json:"flow_direction"`
	Status        domain.OpportunityStatus `json:"status"`
	Budget        float64                  `json:"budget"`
	MFN           bool                     `json:"mfn"`
	Currency      domain.Currency          `json:"currency"`
	Deadline      *string                  `json:"deadline,omitempty"` // YYYY-MM-DD
	WorkID        *int64                   `json:"work_id,omitempty"`
	RecordingID   *int64                   `json:"recording_id,omitempty"`

	PublishingAmount float64 `json:"publishing_amount"`
	RecordingAmount  float64 `json:"recording_amount"`
	TotalAmount      float64 `json:"total_amount"`
	PercentOfBudget  float64 `json:"percent_of_budget"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Song is one catalog item licensed inside an opportunity with its own
// sub-budget and NPS split.
type Song struct {
	ID            int64   `json:"id"`
	OpportunityID int64   `json:"opportunity_id"`
	WorkID        int64   `json:"work_id"`
	RecordingID   *int64  `json:"recording_id,omitempty"`
	Budget        float64 `json:"budget"`
	MFN           bool    `json:"mfn"`

	PublishingAmount float64 `json:"publishing_amount"`
	RecordingAmount  float64 `json:"recording_amount"`
	TotalAmount      float64 `json:"total_amount"`
	PercentOfBudget  float64 `json:"percent_of_budget"`

	CreatedAt time.Time `json:"created_at"`
}
