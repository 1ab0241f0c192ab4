package activity

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/daleplay/sync-center/internal/domain"
)

const timeLayout = "2006-01-02 15:04:05"

// Repository handles the append-only activity log. Entries are never
// updated or deleted.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new activity repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "activity").Logger(),
	}
}

// Append inserts a new activity entry
func (r *Repository) Append(entry *Entry) (*Entry, error) {
	query := `
		INSERT INTO activity_log (opportunity_id, type, actor, message, data_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	createdAt := time.Now().Format(timeLayout)

	result, err := r.db.Exec(
		query,
		entry.OpportunityID,
		string(entry.Type),
		string(entry.Actor),
		entry.Message,
		entry.DataJSON,
		createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert activity entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	entry.ID = id
	entry.CreatedAt, _ = time.Parse(timeLayout, createdAt)

	return entry, nil
}

// Record builds and appends an entry with a JSON payload
func (r *Repository) Record(opportunityID int64, entryType EntryType, actor domain.Actor, message string, data map[string]interface{}) error {
	entry := &Entry{
		OpportunityID: opportunityID,
		Type:          entryType,
		Actor:         actor,
		Message:       message,
	}

	if len(data) > 0 {
		dataJSON, _ := json.Marshal(data)
		dataStr := string(dataJSON)
		entry.DataJSON = &dataStr
	}

	_, err := r.Append(entry)
	return err
}

// ListByOpportunity retrieves all entries for one opportunity, newest first
func (r *Repository) ListByOpportunity(opportunityID int64) ([]Entry, error) {
	query := `
		SELECT id, opportunity_id, type, actor, message, data_json, created_at
		FROM activity_log
		WHERE opportunity_id = ?
		ORDER BY id DESC
	`

	rows, err := r.db.Query(query, opportunityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity entries: %w", err)
	}
	defer rows.Close()

	return r.scanEntries(rows)
}

// Recent retrieves the latest entries across all opportunities
func (r *Repository) Recent(limit int) ([]Entry, error) {
	query := `
		SELECT id, opportunity_id, type, actor, message, data_json, created_at
		FROM activity_log
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent activity: %w", err)
	}
	defer rows.Close()

	return r.scanEntries(rows)
}

// scanEntries is a helper to scan multiple entries
func (r *Repository) scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry

	for rows.Next() {
		var e Entry
		var entryType, actor, createdAt string

		err := rows.Scan(
			&e.ID,
			&e.OpportunityID,
			&entryType,
			&actor,
			&e.Message,
			&e.DataJSON,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}

		e.Type = EntryType(entryType)
		e.Actor = domain.Actor(actor)
		e.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity entries: %w", err)
	}

	return entries, nil
}
