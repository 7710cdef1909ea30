package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/lossdesk/lossdesk/internal/jobs"
)

// ExportDigestJob summarises the export batches of the last window in the
// logs. The digest feeds the operational runbook; there is no mail delivery.
type ExportDigestJob struct {
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewExportDigestJob wires dependencies for the digest handler.
func NewExportDigestJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *ExportDigestJob {
	return &ExportDigestJob{
		Pool:    pool,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes export digest tasks.
func (j *ExportDigestJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("export digest: handler not configured")
	}
	var payload ExportDigestPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.WindowHours <= 0 {
		payload.WindowHours = 24
	}

	tracker := j.Metrics.Track(TaskExportDigest)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	since := j.clock().Add(-time.Duration(payload.WindowHours) * time.Hour)
	row := j.Pool.QueryRow(ctx, `SELECT COUNT(*), COALESCE(SUM(event_count), 0), COALESCE(SUM(total_cost), 0)
FROM export_batches
WHERE created_at >= $1`, since)

	var batches, eventCount int
	var totalCost float64
	if err := row.Scan(&batches, &eventCount, &totalCost); err != nil {
		resultErr = err
		return err
	}

	j.logger().Info("export digest",
		slog.Int("window_hours", payload.WindowHours),
		slog.Int("batches", batches),
		slog.Int("events", eventCount),
		slog.Float64("total_cost", totalCost))
	return nil
}

func (j *ExportDigestJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
