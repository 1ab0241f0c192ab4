package activity

import (
	"time"

	"github.com/daleplay/sync-center/internal/domain"
)

// EntryType categorizes an activity log entry
type EntryType string

const (
	EntryOpportunityCreated   EntryType = "OPPORTUNITY_CREATED"
	EntryStatusChanged        EntryType = "STATUS_CHANGED"
	EntryOpportunityCompleted EntryType = "OPPORTUNITY_COMPLETED"
	EntryOpportunityRejected  EntryType = "OPPORTUNITY_REJECTED"
	EntrySongAdded            EntryType = "SONG_ADDED"
	EntrySongRemoved          EntryType = "SONG_REMOVED"
	EntryNote                 EntryType = "NOTE"
)

// Entry is one append-only activity log record for an opportunity.
// Actor is the acting user, or domain.SystemActor for machine-initiated
// side effects (completion/rejection records, scheduled jobs).
type Entry struct {
	ID            int64        `json:"id"`
	OpportunityID int64        `json:"opportunity_id"`
	Type          EntryType    `json:"type"`
	Actor         domain.Actor `json:"actor"`
	Message       string       `json:"message"`
	DataJSON      *string      `json:"data,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}
