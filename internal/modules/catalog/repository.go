package catalog

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const timeLayout = "2006-01-02 15:04:05"

// Repository handles catalog persistence
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new catalog repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "catalog").Logger(),
	}
}

// CreateWork inserts a new work
func (r *Repository) CreateWork(work *Work) (*Work, error) {
	query := `
		INSERT INTO works (title, artist, writers, control_percentage, share_percentage, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	createdAt := time.Now().Format(timeLayout)

	result, err := r.db.Exec(
		query,
		work.Title,
		work.Artist,
		work.Writers,
		work.ControlPercentage,
		work.SharePercentage,
		createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert work: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	work.ID = id
	work.CreatedAt, _ = time.Parse(timeLayout, createdAt)

	return work, nil
}

// GetWork retrieves a work by ID, nil when absent
func (r *Repository) GetWork(id int64) (*Work, error) {
	query := `
		SELECT id, title, artist, writers, control_percentage, share_percentage, created_at
		FROM works
		WHERE id = ?
	`

	var w Work
	var createdAt string

	err := r.db.QueryRow(query, id).Scan(
		&w.ID,
		&w.Title,
		&w.Artist,
		&w.Writers,
		&w.ControlPercentage,
		&w.SharePercentage,
		&createdAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get work: %w", err)
	}

	w.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	return &w, nil
}

// SearchWorks retrieves works matching q against title or artist.
// Empty q returns the full catalog.
func (r *Repository) SearchWorks(q string, limit *int) ([]Work, error) {
	query := `
		SELECT id, title, artist, writers, control_percentage, share_percentage, created_at
		FROM works
	`
	args := []interface{}{}

	if q != "" {
		query += " WHERE title LIKE ? OR artist LIKE ?"
		pattern := "%" + q + "%"
		args = append(args, pattern, pattern)
	}

	query += " ORDER BY title ASC"

	if limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search works: %w", err)
	}
	defer rows.Close()

	var works []Work
	for rows.Next() {
		var w Work
		var createdAt string

		err := rows.Scan(
			&w.ID,
			&w.Title,
			&w.Artist,
			&w.Writers,
			&w.ControlPercentage,
			&w.SharePercentage,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work: %w", err)
		}

		w.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		works = append(works, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating works: %w", err)
	}

	return works, nil
}

// UpdateWork updates the editable fields of a work
func (r *Repository) UpdateWork(work *Work) error {
	query := `
		UPDATE works
		SET title = ?, artist = ?, writers = ?, control_percentage = ?, share_percentage = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(
		query,
		work.Title,
		work.Artist,
		work.Writers,
		work.ControlPercentage,
		work.SharePercentage,
		work.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update work: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("work %d not found", work.ID)
	}

	return nil
}

// DeleteWork removes a work and its recordings
func (r *Repository) DeleteWork(id int64) error {
	if _, err := r.db.Exec("DELETE FROM recordings WHERE work_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete recordings for work: %w", err)
	}

	result, err := r.db.Exec("DELETE FROM works WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete work: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("work %d not found", id)
	}

	return nil
}

// CreateRecording inserts a new recording for a work
func (r *Repository) CreateRecording(rec *Recording) (*Recording, error) {
	query := `
		INSERT INTO recordings (work_id, title, control_percentage, percentage, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	createdAt := time.Now().Format(timeLayout)

	result, err := r.db.Exec(
		query,
		rec.WorkID,
		rec.Title,
		rec.ControlPercentage,
		rec.Percentage,
		createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert recording: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	rec.ID = id
	rec.CreatedAt, _ = time.Parse(timeLayout, createdAt)

	return rec, nil
}

// GetRecording retrieves a recording by ID, nil when absent
func (r *Repository) GetRecording(id int64) (*Recording, error) {
	query := `
		SELECT id, work_id, title, control_percentage, percentage, created_at
		FROM recordings
		WHERE id = ?
	`

	var rec Recording
	var createdAt string

	err := r.db.QueryRow(query, id).Scan(
		&rec.ID,
		&rec.WorkID,
		&rec.Title,
		&rec.ControlPercentage,
		&rec.Percentage,
		&createdAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recording: %w", err)
	}

	rec.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	return &rec, nil
}

// ListRecordingsByWork retrieves all recordings linked to a work
func (r *Repository) ListRecordingsByWork(workID int64) ([]Recording, error) {
	query := `
		SELECT id, work_id, title, control_percentage, percentage, created_at
		FROM recordings
		WHERE work_id = ?
		ORDER BY id ASC
	`

	rows, err := r.db.Query(query, workID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recordings: %w", err)
	}
	defer rows.Close()

	var recordings []Recording
	for rows.Next() {
		var rec Recording
		var createdAt string

		err := rows.Scan(
			&rec.ID,
			&rec.WorkID,
			&rec.Title,
			&rec.ControlPercentage,
			&rec.Percentage,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recording: %w", err)
		}

		rec.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		recordings = append(recordings, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recordings: %w", err)
	}

	return recordings, nil
}

// DeleteRecording removes a recording
func (r *Repository) DeleteRecording(id int64) error {
	result, err := r.db.Exec("DELETE FROM recordings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete recording: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("recording %d not found", id)
	}

	return nil
}
