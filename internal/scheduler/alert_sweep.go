package scheduler

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/daleplay/sync-center/internal/events"
	"github.com/daleplay/sync-center/internal/modules/alerts"
)

// AlertSweepJob periodically scans the pipeline for deadline and stall
// alerts and emits them to the event stream.
type AlertSweepJob struct {
	log          zerolog.Logger
	alertService *alerts.Service
	eventManager *events.Manager
}

// NewAlertSweepJob creates a new alert sweep job
func NewAlertSweepJob(alertService *alerts.Service, eventManager *events.Manager, log zerolog.Logger) *AlertSweepJob {
	return &AlertSweepJob{
		log:          log.With().Str("job", "alert_sweep").Logger(),
		alertService: alertService,
		eventManager: eventManager,
	}
}

// Name returns the job name
func (j *AlertSweepJob) Name() string {
	return "alert_sweep"
}

// Run executes the alert sweep
func (j *AlertSweepJob) Run() error {
	j.log.Debug().Msg("Starting alert sweep")
	startTime := time.Now()

	found, err := j.alertService.Scan(time.Now())
	if err != nil {
		j.eventManager.EmitError("alert_sweep", err, map[string]interface{}{})
		return err
	}

	for _, alert := range found {
		j.eventManager.Emit(events.AlertRaised, "alerts", map[string]interface{}{
			"opportunity_id": alert.OpportunityID,
			"type":           string(alert.Type),
			"client":         alert.Client,
			"message":        alert.Message,
		})
	}

	j.eventManager.Emit(events.AlertSweepComplete, "alerts", map[string]interface{}{
		"alerts_found": len(found),
		"duration_ms":  time.Since(startTime).Milliseconds(),
	})

	j.log.Info().
		Int("alerts_found", len(found)).
		Dur("duration", time.Since(startTime)).
		Msg("Alert sweep completed")

	return nil
}
