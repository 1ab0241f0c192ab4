package scheduler

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/daleplay/sync-center/internal/database"
)

// HealthCheckJob performs database integrity checks.
// Runs every 6 hours to ensure database health.
type HealthCheckJob struct {
	log zerolog.Logger
	db  *database.DB
}

// NewHealthCheckJob creates a new health check job
func NewHealthCheckJob(db *database.DB, log zerolog.Logger) *HealthCheckJob {
	return &HealthCheckJob{
		log: log.With().Str("job", "health_check").Logger(),
		db:  db,
	}
}

// Name returns the job name
func (j *HealthCheckJob) Name() string {
	return "health_check"
}

// Run executes the health check
func (j *HealthCheckJob) Run() error {
	j.log.Info().Msg("Starting database health check")
	startTime := time.Now()

	if err := j.checkIntegrity(); err != nil {
		j.log.Error().Err(err).Msg("Database integrity check failed")
		return err
	}

	if err := j.checkWALCheckpoint(); err != nil {
		j.log.Warn().Err(err).Msg("Failed to check WAL checkpoint")
	}

	j.log.Info().
		Dur("duration", time.Since(startTime)).
		Msg("Health check completed successfully")

	return nil
}

// checkIntegrity opens a separate read connection and runs SQLite's
// PRAGMA integrity_check. Using a second driver keeps the probe
// independent of the application pool: a corrupted file fails here even
// when the long-lived pool still serves cached pages.
func (j *HealthCheckJob) checkIntegrity() error {
	probe, err := sql.Open("sqlite3", j.db.Path())
	if err != nil {
		return fmt.Errorf("failed to open integrity probe: %w", err)
	}
	defer probe.Close()

	var result string
	if err := probe.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}

	if result != "ok" {
		return fmt.Errorf("integrity check returned: %s", result)
	}

	j.log.Debug().Msg("Database integrity OK")
	return nil
}

// checkWALCheckpoint monitors WAL checkpoint status. The PASSIVE
// checkpoint reports exactly three columns: busy, log frames,
// checkpointed frames.
func (j *HealthCheckJob) checkWALCheckpoint() error {
	var busy, logFrames, checkpointed int
	err := j.db.Conn().QueryRow("PRAGMA wal_checkpoint(PASSIVE)").Scan(&busy, &logFrames, &checkpointed)
	if err != nil {
		return fmt.Errorf("wal_checkpoint failed: %w", err)
	}

	if logFrames > 1000 {
		j.log.Warn().
			Int("wal_frames", logFrames).
			Int("checkpointed", checkpointed).
			Msg("WAL file is large, checkpoint may be needed")
	} else {
		j.log.Debug().
			Int("wal_frames", logFrames).
			Msg("WAL checkpoint status OK")
	}

	return nil
}
