// Package nps computes the Net Publisher Share: the portion of a licensing
// budget Dale Play retains, split between publishing and recording rights.
//
// Every pricing surface (new-opportunity form, add-song flow, persistence)
// goes through Calculate. The formula must never be reimplemented per call
// site.
package nps

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is the sentinel for pricing inputs the calculator rejects.
var ErrInvalidInput = errors.New("invalid pricing input")

// InvalidInputError describes which field failed validation.
type InvalidInputError struct {
	Field string
	Value float64
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid pricing input: %s = %v", e.Field, e.Value)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// PublishingRights holds Dale Play's percentages over the musical work.
type PublishingRights struct {
	ControlPercentage float64 `json:"control_percentage"` // degree of licensing control, used by the MFN branch
	SharePercentage   float64 `json:"share_percentage"`   // revenue share applied in the standard branch
}

// RecordingRights holds Dale Play's percentages over the sound recording
// (fonograma). Percentage is nil when the work has no linked recording.
type RecordingRights struct {
	ControlPercentage float64  `json:"control_percentage"`
	Percentage        *float64 `json:"percentage,omitempty"`
}

// Input is the argument bundle for one NPS calculation.
type Input struct {
	Budget     float64          `json:"budget"`
	MFN        bool             `json:"mfn"`
	Publishing PublishingRights `json:"publishing"`
	Recording  RecordingRights  `json:"recording"`
}

// Result is the apportioned outcome. Amounts are full precision; apply
// Round2 only when storing or displaying.
type Result struct {
	PublishingAmount float64          `json:"publishing_amount"`
	RecordingAmount  float64          `json:"recording_amount"`
	TotalAmount      float64          `json:"total_amount"`
	PercentOfBudget  float64          `json:"percent_of_budget"`
	AllInBudget      float64          `json:"all_in_budget"`
	Publishing       PublishingRights `json:"publishing"`
	Recording        RecordingRights  `json:"recording"`
}

// Calculate computes the NPS split for a licensing budget.
//
// Standard pricing:
//
//	publishing = budget × 0.5 × sharePercentage/100
//	recording  = budget × 0.5 × percentage/100   (0 when no recording linked)
//
// MFN pricing (both sides priced at the better rate, each against the full
// un-halved budget):
//
//	rate       = max(publishing.control, recording.control)
//	publishing = recording = budget × rate/100
//
// Under MFN the all-in budget reported for display is 2× the nominal budget;
// PercentOfBudget is still computed against the nominal budget, matching the
// upstream system. A zero budget yields PercentOfBudget 0, never NaN.
func Calculate(input Input) (*Result, error) {
	if err := validate(input); err != nil {
		return nil, err
	}

	if input.MFN {
		return calculateMFN(input), nil
	}
	return calculateStandard(input), nil
}

func calculateStandard(input Input) *Result {
	publishingBudget := input.Budget * 0.5
	recordingBudget := input.Budget * 0.5

	publishingAmount := publishingBudget * (input.Publishing.SharePercentage / 100)

	recordingAmount := 0.0
	if input.Recording.Percentage != nil {
		recordingAmount = recordingBudget * (*input.Recording.Percentage / 100)
	}

	total := publishingAmount + recordingAmount

	return &Result{
		PublishingAmount: publishingAmount,
		RecordingAmount:  recordingAmount,
		TotalAmount:      total,
		PercentOfBudget:  percentOfBudget(total, input.Budget),
		AllInBudget:      input.Budget,
		Publishing:       input.Publishing,
		Recording:        input.Recording,
	}
}

func calculateMFN(input Input) *Result {
	rate := math.Max(input.Publishing.ControlPercentage, input.Recording.ControlPercentage)

	publishingAmount := input.Budget * (rate / 100)
	recordingAmount := input.Budget * (rate / 100)
	total := publishingAmount + recordingAmount

	// Both sides are negotiated up to the same rate.
	publishing := input.Publishing
	publishing.ControlPercentage = rate
	recording := input.Recording
	recording.ControlPercentage = rate

	return &Result{
		PublishingAmount: publishingAmount,
		RecordingAmount:  recordingAmount,
		TotalAmount:      total,
		PercentOfBudget:  percentOfBudget(total, input.Budget),
		AllInBudget:      input.Budget * 2,
		Publishing:       publishing,
		Recording:        recording,
	}
}

func percentOfBudget(total, budget float64) float64 {
	if budget <= 0 {
		return 0
	}
	return (total / budget) * 100
}

func validate(input Input) error {
	if input.Budget < 0 {
		return &InvalidInputError{Field: "budget", Value: input.Budget}
	}
	if !validPercentage(input.Publishing.ControlPercentage) {
		return &InvalidInputError{Field: "publishing.control_percentage", Value: input.Publishing.ControlPercentage}
	}
	if !validPercentage(input.Publishing.SharePercentage) {
		return &InvalidInputError{Field: "publishing.share_percentage", Value: input.Publishing.SharePercentage}
	}
	if !validPercentage(input.Recording.ControlPercentage) {
		return &InvalidInputError{Field: "recording.control_percentage", Value: input.Recording.ControlPercentage}
	}
	if input.Recording.Percentage != nil && !validPercentage(*input.Recording.Percentage) {
		return &InvalidInputError{Field: "recording.percentage", Value: *input.Recording.Percentage}
	}
	return nil
}

func validPercentage(p float64) bool {
	return p >= 0 && p <= 100
}

// Round2 rounds a monetary amount to 2 decimal places. Intermediate
// calculation stays full precision; rounding happens only at the storage and
// presentation boundary.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
