package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialStatus(t *testing.T) {
	assert.Equal(t, StatusApproval, InitialStatus(FlowInbound))
	assert.Equal(t, StatusPitching, InitialStatus(FlowOutbound))
}

func TestTransition_FullTable(t *testing.T) {
	// Every legal (from, to) pair per the pipeline rules.
	legal := map[OpportunityStatus][]OpportunityStatus{
		StatusPitching:    {StatusNegotiation, StatusRejected},
		StatusNegotiation: {StatusApproval, StatusLegal, StatusRejected},
		StatusApproval:    {StatusLegal, StatusRejected},
		StatusLegal:       {StatusSigned, StatusRejected},
		StatusSigned:      {StatusInvoiced},
		StatusInvoiced:    {StatusPaid},
		StatusPaid:        {},
		StatusRejected:    {StatusPitching},
	}

	isLegal := func(from, to OpportunityStatus) bool {
		for _, allowed := range legal[from] {
			if to == allowed {
				return true
			}
		}
		return false
	}

	// Exhaustively check all 64 pairs.
	for _, from := range AllStatuses {
		for _, to := range AllStatuses {
			t.Run(fmt.Sprintf("%s_to_%s", from, to), func(t *testing.T) {
				next, err := Transition(from, to)

				if isLegal(from, to) {
					require.NoError(t, err)
					assert.Equal(t, to, next)
					return
				}

				require.Error(t, err)

				var te *TransitionError
				require.True(t, errors.As(err, &te))
				assert.Equal(t, from, te.From)
				assert.Equal(t, to, te.Requested)
				assert.ElementsMatch(t, legal[from], te.Allowed)
			})
		}
	}
}

func TestTransition_PaidIsTerminal(t *testing.T) {
	for _, to := range AllStatuses {
		_, err := Transition(StatusPaid, to)
		assert.Error(t, err, "PAID must have no outbound transitions (requested %s)", to)
	}
	assert.True(t, IsTerminal(StatusPaid))
}

func TestTransition_RejectedReopensToPitchingOnly(t *testing.T) {
	next, err := Transition(StatusRejected, StatusPitching)
	require.NoError(t, err)
	assert.Equal(t, StatusPitching, next)

	for _, to := range AllStatuses {
		if to == StatusPitching {
			continue
		}
		_, err := Transition(StatusRejected, to)
		assert.Error(t, err, "REJECTED should only reopen to PITCHING (requested %s)", to)
	}
}

func TestTransition_SelfTransitionIsIllegal(t *testing.T) {
	for _, s := range AllStatuses {
		_, err := Transition(s, s)
		assert.Error(t, err)
	}
}

func TestTransitionError_Message(t *testing.T) {
	_, err := Transition(StatusLegal, StatusPaid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LEGAL")
	assert.Contains(t, err.Error(), "PAID")
	assert.Contains(t, err.Error(), "SIGNED")
	assert.Contains(t, err.Error(), "REJECTED")

	_, err = Transition(StatusPaid, StatusPitching)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "final stage")
}

func TestLegalNextStatuses_ReturnsCopy(t *testing.T) {
	first := LegalNextStatuses(StatusNegotiation)
	first[0] = StatusPaid

	second := LegalNextStatuses(StatusNegotiation)
	assert.Equal(t, StatusApproval, second[0])
}

func TestIsTerminal(t *testing.T) {
	for _, s := range AllStatuses {
		if s == StatusPaid {
			continue
		}
		assert.False(t, IsTerminal(s), "%s is not terminal", s)
	}

	// Unknown statuses are not terminal, they are invalid.
	assert.False(t, IsTerminal(OpportunityStatus("BOGUS")))
}

func TestStatusValid(t *testing.T) {
	for _, s := range AllStatuses {
		assert.True(t, s.Valid())
	}
	assert.False(t, OpportunityStatus("ARCHIVED").Valid())
}

func TestFlowDirectionValid(t *testing.T) {
	assert.True(t, FlowInbound.Valid())
	assert.True(t, FlowOutbound.Valid())
	assert.False(t, FlowDirection("SIDEWAYS").Valid())
}
