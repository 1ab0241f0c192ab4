package domain

import (
	"fmt"
	"strings"
)

// OpportunityStatus is a stage in the licensing pipeline.
type OpportunityStatus string

const (
	StatusPitching    OpportunityStatus = "PITCHING"
	StatusNegotiation OpportunityStatus = "NEGOTIATION"
	StatusApproval    OpportunityStatus = "APPROVAL"
	StatusLegal       OpportunityStatus = "LEGAL"
	StatusSigned      OpportunityStatus = "SIGNED"
	StatusInvoiced    OpportunityStatus = "INVOICED"
	StatusPaid        OpportunityStatus = "PAID"
	StatusRejected    OpportunityStatus = "REJECTED"
)

// AllStatuses lists every pipeline stage in board order.
var AllStatuses = []OpportunityStatus{
	StatusPitching,
	StatusNegotiation,
	StatusApproval,
	StatusLegal,
	StatusSigned,
	StatusInvoiced,
	StatusPaid,
	StatusRejected,
}

// Valid reports whether the status is one of the known pipeline stages.
func (s OpportunityStatus) Valid() bool {
	for _, status := range AllStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// transitions is the single source of truth for legal pipeline moves.
// PAID is terminal. REJECTED may be reopened back to PITCHING.
var transitions = map[OpportunityStatus][]OpportunityStatus{
	StatusPitching:    {StatusNegotiation, StatusRejected},
	StatusNegotiation: {StatusApproval, StatusLegal, StatusRejected},
	StatusApproval:    {StatusLegal, StatusRejected},
	StatusLegal:       {StatusSigned, StatusRejected},
	StatusSigned:      {StatusInvoiced},
	StatusInvoiced:    {StatusPaid},
	StatusPaid:        {},
	StatusRejected:    {StatusPitching},
}

// TransitionError reports an illegal pipeline move. Allowed carries the legal
// next stages so callers can render an actionable message.
type TransitionError struct {
	From      OpportunityStatus
	Requested OpportunityStatus
	Allowed   []OpportunityStatus
}

func (e *TransitionError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("cannot move opportunity from %s to %s: %s is a final stage", e.From, e.Requested, e.From)
	}

	names := make([]string, len(e.Allowed))
	for i, s := range e.Allowed {
		names[i] = string(s)
	}
	return fmt.Sprintf("cannot move opportunity from %s to %s: allowed next stages are %s", e.From, e.Requested, strings.Join(names, ", "))
}

// InitialStatus picks the stage a new opportunity starts in. Inbound requests
// skip pitching entirely: the client already wants the work, only internal
// approval remains.
func InitialStatus(flow FlowDirection) OpportunityStatus {
	if flow == FlowInbound {
		return StatusApproval
	}
	return StatusPitching
}

// Transition validates a requested pipeline move and returns the new status.
// It is the only sanctioned write path for an opportunity's status; an
// illegal request returns a *TransitionError and must not mutate anything.
func Transition(current, requested OpportunityStatus) (OpportunityStatus, error) {
	for _, allowed := range transitions[current] {
		if requested == allowed {
			return requested, nil
		}
	}

	return "", &TransitionError{
		From:      current,
		Requested: requested,
		Allowed:   LegalNextStatuses(current),
	}
}

// LegalNextStatuses returns a copy of the stages reachable from current.
func LegalNextStatuses(current OpportunityStatus) []OpportunityStatus {
	allowed := transitions[current]
	out := make([]OpportunityStatus, len(allowed))
	copy(out, allowed)
	return out
}

// IsTerminal reports whether a status has no outbound transitions.
func IsTerminal(s OpportunityStatus) bool {
	return len(transitions[s]) == 0 && s.Valid()
}
