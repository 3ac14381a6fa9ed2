package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/praetor-auth/praetor/internal/observability"
	"github.com/praetor-auth/praetor/internal/sessions"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSessionPurge removes expired session rows from the ledger.
	TaskSessionPurge = "sessions:purge"
)

// SessionPurgePayload configures a purge run. Empty payloads use defaults.
type SessionPurgePayload struct {
	Reason string `json:"reason,omitempty"`
}

// NewSessionPurgeTask constructs an Asynq task.
func NewSessionPurgeTask(payload SessionPurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionPurge, data), nil
}

// SessionPurgeJob deletes expired ledger rows on a schedule. Revoked rows
// stay until their expiry passes, then get swept with the rest.
type SessionPurgeJob struct {
	ledger  *sessions.Service
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewSessionPurgeJob builds the purge job. metrics may be nil.
func NewSessionPurgeJob(ledger *sessions.Service, metrics *observability.Metrics, logger *slog.Logger) *SessionPurgeJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionPurgeJob{ledger: ledger, metrics: metrics, logger: logger}
}

// Handle processes TaskSessionPurge tasks.
func (j *SessionPurgeJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload SessionPurgePayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	purged, err := j.ledger.PurgeExpired(ctx)
	if err != nil {
		j.logger.Error("session purge", slog.Any("error", err))
		return err
	}
	j.metrics.ObserveSessionsPurged(purged)
	j.logger.Info("session purge complete", slog.Int64("purged", purged))
	return nil
}
