package nps

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestCalculate_StandardSplit(t *testing.T) {
	result, err := Calculate(Input{
		Budget: 100000,
		MFN:    false,
		Publishing: PublishingRights{
			ControlPercentage: 100,
			SharePercentage:   12.5,
		},
		Recording: RecordingRights{
			ControlPercentage: 100,
			Percentage:        floatPtr(30),
		},
	})
	require.NoError(t, err)

	assert.InDelta(t, 6250.00, result.PublishingAmount, 1e-9)
	assert.InDelta(t, 15000.00, result.RecordingAmount, 1e-9)
	assert.InDelta(t, 21250.00, result.TotalAmount, 1e-9)
	assert.InDelta(t, 21.25, result.PercentOfBudget, 1e-9)
	assert.InDelta(t, 100000, result.AllInBudget, 1e-9)
}

func TestCalculate_StandardTotalIsSum(t *testing.T) {
	budgets := []float64{1, 250, 9999.99, 123456.78}
	shares := []float64{0, 12.5, 50, 100}

	for _, budget := range budgets {
		for _, share := range shares {
			for _, pct := range shares {
				result, err := Calculate(Input{
					Budget:     budget,
					Publishing: PublishingRights{SharePercentage: share},
					Recording:  RecordingRights{Percentage: floatPtr(pct)},
				})
				require.NoError(t, err)

				assert.InDelta(t, budget*0.5*share/100, result.PublishingAmount, 1e-9)
				assert.InDelta(t, budget*0.5*pct/100, result.RecordingAmount, 1e-9)
				assert.InDelta(t, result.PublishingAmount+result.RecordingAmount, result.TotalAmount, 1e-9)
			}
		}
	}
}

func TestCalculate_MFN(t *testing.T) {
	result, err := Calculate(Input{
		Budget: 50000,
		MFN:    true,
		Publishing: PublishingRights{
			ControlPercentage: 50,
			SharePercentage:   25,
		},
		Recording: RecordingRights{
			ControlPercentage: 30,
			Percentage:        floatPtr(40),
		},
	})
	require.NoError(t, err)

	// Both sides priced at max(50, 30) against the full budget.
	assert.InDelta(t, 25000, result.PublishingAmount, 1e-9)
	assert.InDelta(t, 25000, result.RecordingAmount, 1e-9)
	assert.InDelta(t, 50000, result.TotalAmount, 1e-9)
	assert.InDelta(t, 100000, result.AllInBudget, 1e-9)

	// Adjusted control percentages are negotiated up to the same rate.
	assert.InDelta(t, 50, result.Publishing.ControlPercentage, 1e-9)
	assert.InDelta(t, 50, result.Recording.ControlPercentage, 1e-9)
}

func TestCalculate_MFNSymmetry(t *testing.T) {
	controls := []float64{0, 10, 33.33, 50, 99.9, 100}

	for _, pub := range controls {
		for _, rec := range controls {
			result, err := Calculate(Input{
				Budget:     75000,
				MFN:        true,
				Publishing: PublishingRights{ControlPercentage: pub},
				Recording:  RecordingRights{ControlPercentage: rec},
			})
			require.NoError(t, err)

			assert.InDelta(t, result.PublishingAmount, result.RecordingAmount, 1e-9)
			assert.Equal(t, result.Publishing.ControlPercentage, result.Recording.ControlPercentage)

			expected := pub
			if rec > pub {
				expected = rec
			}
			assert.InDelta(t, expected, result.Publishing.ControlPercentage, 1e-9)
		}
	}
}

func TestCalculate_MFNPercentAgainstNominalBudget(t *testing.T) {
	result, err := Calculate(Input{
		Budget:     10000,
		MFN:        true,
		Publishing: PublishingRights{ControlPercentage: 60},
		Recording:  RecordingRights{ControlPercentage: 20},
	})
	require.NoError(t, err)

	// Total is 2 × 60% of the nominal budget, so percent of nominal is 120.
	assert.InDelta(t, 12000, result.TotalAmount, 1e-9)
	assert.InDelta(t, 120, result.PercentOfBudget, 1e-9)
}

func TestCalculate_ZeroBudget(t *testing.T) {
	result, err := Calculate(Input{
		Budget:     0,
		Publishing: PublishingRights{SharePercentage: 50},
		Recording:  RecordingRights{Percentage: floatPtr(50)},
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.TotalAmount)
	assert.Equal(t, 0.0, result.PercentOfBudget)
	assert.False(t, result.PercentOfBudget != result.PercentOfBudget, "percent must not be NaN")
}

func TestCalculate_ZeroBudgetMFN(t *testing.T) {
	result, err := Calculate(Input{
		Budget:     0,
		MFN:        true,
		Publishing: PublishingRights{ControlPercentage: 50},
		Recording:  RecordingRights{ControlPercentage: 30},
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.TotalAmount)
	assert.Equal(t, 0.0, result.PercentOfBudget)
}

func TestCalculate_NoRecording(t *testing.T) {
	result, err := Calculate(Input{
		Budget:     20000,
		Publishing: PublishingRights{SharePercentage: 40},
		Recording:  RecordingRights{},
	})
	require.NoError(t, err)

	assert.InDelta(t, 4000, result.PublishingAmount, 1e-9)
	assert.Equal(t, 0.0, result.RecordingAmount)
	assert.InDelta(t, result.PublishingAmount, result.TotalAmount, 1e-9)
}

func TestCalculate_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input Input
		field string
	}{
		{
			name:  "negative budget",
			input: Input{Budget: -100},
			field: "budget",
		},
		{
			name: "publishing share over 100",
			input: Input{
				Budget:     1000,
				Publishing: PublishingRights{SharePercentage: 101},
			},
			field: "publishing.share_percentage",
		},
		{
			name: "negative publishing control",
			input: Input{
				Budget:     1000,
				Publishing: PublishingRights{ControlPercentage: -1},
			},
			field: "publishing.control_percentage",
		},
		{
			name: "recording control over 100",
			input: Input{
				Budget:    1000,
				Recording: RecordingRights{ControlPercentage: 150},
			},
			field: "recording.control_percentage",
		},
		{
			name: "negative recording percentage",
			input: Input{
				Budget:    1000,
				Recording: RecordingRights{Percentage: floatPtr(-5)},
			},
			field: "recording.percentage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Calculate(tt.input)
			assert.Nil(t, result)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)

			var invalid *InvalidInputError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tt.field, invalid.Field)
		})
	}
}

func TestCalculate_FullPrecisionIntermediates(t *testing.T) {
	// 1/3-style shares must not be rounded between steps.
	result, err := Calculate(Input{
		Budget:     100,
		Publishing: PublishingRights{SharePercentage: 100.0 / 3.0},
		Recording:  RecordingRights{Percentage: floatPtr(100.0 / 3.0)},
	})
	require.NoError(t, err)

	assert.InDelta(t, 100.0/3.0, result.TotalAmount, 1e-9)
	assert.InDelta(t, 16.67, Round2(result.PublishingAmount), 1e-9)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 6250.00, Round2(6250.004))
	assert.Equal(t, 6250.01, Round2(6250.006))
	assert.Equal(t, -12.34, Round2(-12.341))
	assert.Equal(t, 0.0, Round2(0))
}
