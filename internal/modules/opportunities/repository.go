package opportunities

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/daleplay/sync-center/internal/domain"
)

const timeLayout = "2006-01-02 15:04:05"

const opportunityColumns = `id, client, project, flow_direction, status, budget, mfn, currency, deadline,
       work_id, recording_id, publishing_amount, recording_amount, total_amount, percent_of_budget,
       created_at, updated_at`

// Filter narrows List results.
type Filter struct {
	Status *domain.OpportunityStatus
	Flow   *domain.FlowDirection
	Query  string // substring match against client or project
	Limit  *int
}

// Repository handles opportunity persistence
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new opportunity repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "opportunities").Logger(),
	}
}

// Create inserts a new opportunity
func (r *Repository) Create(opp *Opportunity) (*Opportunity, error) {
	query := `
		INSERT INTO opportunities (
			client, project, flow_direction, status, budget, mfn, currency, deadline,
			work_id, recording_id, publishing_amount, recording_amount, total_amount,
			percent_of_budget, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().Format(timeLayout)

	result, err := r.db.Exec(
		query,
		opp.Client,
		opp.Project,
		string(opp.FlowDirection),
		string(opp.Status),
		opp.Budget,
		opp.MFN,
		string(opp.Currency),
		opp.Deadline,
		opp.WorkID,
		opp.RecordingID,
		opp.PublishingAmount,
		opp.RecordingAmount,
		opp.TotalAmount,
		opp.PercentOfBudget,
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert opportunity: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	opp.ID = id
	opp.CreatedAt, _ = time.Parse(timeLayout, now)
	opp.UpdatedAt = opp.CreatedAt

	return opp, nil
}

// Get retrieves an opportunity by ID, nil when absent
func (r *Repository) Get(id int64) (*Opportunity, error) {
	query := "SELECT " + opportunityColumns + " FROM opportunities WHERE id = ?"

	row := r.db.QueryRow(query, id)
	opp, err := scanOpportunity(row.Scan)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get opportunity: %w", err)
	}

	return opp, nil
}

// List retrieves opportunities matching the filter, newest first
func (r *Repository) List(filter Filter) ([]Opportunity, error) {
	query := "SELECT " + opportunityColumns + " FROM opportunities"
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.Flow != nil {
		conditions = append(conditions, "flow_direction = ?")
		args = append(args, string(*filter.Flow))
	}
	if filter.Query != "" {
		conditions = append(conditions, "(client LIKE ? OR project LIKE ?)")
		pattern := "%" + filter.Query + "%"
		args = append(args, pattern, pattern)
	}

	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}

	query += " ORDER BY id DESC"

	if filter.Limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *filter.Limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query opportunities: %w", err)
	}
	defer rows.Close()

	return r.scanOpportunities(rows)
}

// ListActive retrieves opportunities not in a terminal or rejected stage
func (r *Repository) ListActive() ([]Opportunity, error) {
	query := "SELECT " + opportunityColumns + ` FROM opportunities
		WHERE status NOT IN (?, ?)
		ORDER BY id DESC`

	rows, err := r.db.Query(query, string(domain.StatusPaid), string(domain.StatusRejected))
	if err != nil {
		return nil, fmt.Errorf("failed to query active opportunities: %w", err)
	}
	defer rows.Close()

	return r.scanOpportunities(rows)
}

// Update persists the editable fields of an opportunity. Status is
// deliberately excluded: UpdateStatus is the only status write path.
func (r *Repository) Update(opp *Opportunity) error {
	query := `
		UPDATE opportunities
		SET client = ?, project = ?, budget = ?, mfn = ?, currency = ?, deadline = ?,
		    work_id = ?, recording_id = ?, publishing_amount = ?, recording_amount = ?,
		    total_amount = ?, percent_of_budget = ?, updated_at = ?
		WHERE id = ?
	`

	now := time.Now().Format(timeLayout)

	result, err := r.db.Exec(
		query,
		opp.Client,
		opp.Project,
		opp.Budget,
		opp.MFN,
		string(opp.Currency),
		opp.Deadline,
		opp.WorkID,
		opp.RecordingID,
		opp.PublishingAmount,
		opp.RecordingAmount,
		opp.TotalAmount,
		opp.PercentOfBudget,
		now,
		opp.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update opportunity: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("opportunity %d not found", opp.ID)
	}

	opp.UpdatedAt, _ = time.Parse(timeLayout, now)
	return nil
}

// UpdateStatus moves an opportunity from one stage to another with a
// compare-and-swap on the expected current stage. Returns false when the
// stored status no longer matches from, so two concurrent movers cannot
// both win against a stale read.
func (r *Repository) UpdateStatus(id int64, from, to domain.OpportunityStatus) (bool, error) {
	query := `
		UPDATE opportunities
		SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	now := time.Now().Format(timeLayout)

	result, err := r.db.Exec(query, string(to), now, id, string(from))
	if err != nil {
		return false, fmt.Errorf("failed to update status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected == 1, nil
}

// Delete removes an opportunity
func (r *Repository) Delete(id int64) error {
	result, err := r.db.Exec("DELETE FROM opportunities WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete opportunity: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("opportunity %d not found", id)
	}

	return nil
}

// CreateSong inserts a new song under an opportunity
func (r *Repository) CreateSong(song *Song) (*Song, error) {
	query := `
		INSERT INTO opportunity_songs (
			opportunity_id, work_id, recording_id, budget, mfn,
			publishing_amount, recording_amount, total_amount, percent_of_budget, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	createdAt := time.Now().Format(timeLayout)

	result, err := r.db.Exec(
		query,
		song.OpportunityID,
		song.WorkID,
		song.RecordingID,
		song.Budget,
		song.MFN,
		song.PublishingAmount,
		song.RecordingAmount,
		song.TotalAmount,
		song.PercentOfBudget,
		createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert song: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	song.ID = id
	song.CreatedAt, _ = time.Parse(timeLayout, createdAt)

	return song, nil
}

// GetSong retrieves a song by ID, nil when absent
func (r *Repository) GetSong(id int64) (*Song, error) {
	query := `
		SELECT id, opportunity_id, work_id, recording_id, budget, mfn,
		       publishing_amount, recording_amount, total_amount, percent_of_budget, created_at
		FROM opportunity_songs
		WHERE id = ?
	`

	var s Song
	var createdAt string

	err := r.db.QueryRow(query, id).Scan(
		&s.ID,
		&s.OpportunityID,
		&s.WorkID,
		&s.RecordingID,
		&s.Budget,
		&s.MFN,
		&s.PublishingAmount,
		&s.RecordingAmount,
		&s.TotalAmount,
		&s.PercentOfBudget,
		&createdAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get song: %w", err)
	}

	s.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	return &s, nil
}

// ListSongs retrieves all songs under an opportunity
func (r *Repository) ListSongs(opportunityID int64) ([]Song, error) {
	query := `
		SELECT id, opportunity_id, work_id, recording_id, budget, mfn,
		       publishing_amount, recording_amount, total_amount, percent_of_budget, created_at
		FROM opportunity_songs
		WHERE opportunity_id = ?
		ORDER BY id ASC
	`

	rows, err := r.db.Query(query, opportunityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	var songs []Song
	for rows.Next() {
		var s Song
		var createdAt string

		err := rows.Scan(
			&s.ID,
			&s.OpportunityID,
			&s.WorkID,
			&s.RecordingID,
			&s.Budget,
			&s.MFN,
			&s.PublishingAmount,
			&s.RecordingAmount,
			&s.TotalAmount,
			&s.PercentOfBudget,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}

		s.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		songs = append(songs, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating songs: %w", err)
	}

	return songs, nil
}

// CountSongs returns how many songs an opportunity carries
func (r *Repository) CountSongs(opportunityID int64) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM opportunity_songs WHERE opportunity_id = ?", opportunityID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count songs: %w", err)
	}
	return count, nil
}

// DeleteSong removes a song
func (r *Repository) DeleteSong(id int64) error {
	result, err := r.db.Exec("DELETE FROM opportunity_songs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("song %d not found", id)
	}

	return nil
}

func scanOpportunity(scan func(dest ...interface{}) error) (*Opportunity, error) {
	var o Opportunity
	var flow, status, currency, createdAt, updatedAt string

	err := scan(
		&o.ID,
		&o.Client,
		&o.Project,
		&flow,
		&status,
		&o.Budget,
		&o.MFN,
		&currency,
		&o.Deadline,
		&o.WorkID,
		&o.RecordingID,
		&o.PublishingAmount,
		&o.RecordingAmount,
		&o.TotalAmount,
		&o.PercentOfBudget,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.FlowDirection = domain.FlowDirection(flow)
	o.Status = domain.OpportunityStatus(status)
	o.Currency = domain.Currency(currency)
	o.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	o.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)

	return &o, nil
}

// scanOpportunities is a helper to scan multiple opportunities
func (r *Repository) scanOpportunities(rows *sql.Rows) ([]Opportunity, error) {
	var opportunities []Opportunity

	for rows.Next() {
		opp, err := scanOpportunity(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan opportunity: %w", err)
		}
		opportunities = append(opportunities, *opp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating opportunities: %w", err)
	}

	return opportunities, nil
}
