package alerts

// AlertType categorizes pipeline health warnings.
type AlertType string

const (
	// AlertDeadlineApproaching fires when an active deal's deadline falls
	// within the configured warning window.
	AlertDeadlineApproaching AlertType = "DEADLINE_APPROACHING"
	// AlertDeadlineOverdue fires when an active deal's deadline has passed.
	AlertDeadlineOverdue AlertType = "DEADLINE_OVERDUE"
	// AlertApprovalStalled fires when a deal has sat in APPROVAL without
	// movement for longer than the configured threshold.
	AlertApprovalStalled AlertType = "APPROVAL_STALLED"
)

// Alert is one pipeline warning. Alerts are computed on demand from the
// opportunity table, never stored.
type Alert struct {
	OpportunityID int64     `json:"opportunity_id"`
	Client        string    `json:"client"`
	Project       string    `json:"project"`
	Type          AlertType `json:"type"`
	Status        string    `json:"status"`
	Deadline      *string   `json:"deadline,omitempty"`
	DaysInStatus  int       `json:"days_in_status,omitempty"`
	Message       string    `json:"message"`
}
