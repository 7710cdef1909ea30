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

// StaleDraftScanJob counts draft events that sat unsubmitted past the
// configured window and surfaces them in the logs and metrics, so managers
// notice losses that never reached the approval queue.
type StaleDraftScanJob struct {
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewStaleDraftScanJob wires dependencies for the scan handler.
func NewStaleDraftScanJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *StaleDraftScanJob {
	return &StaleDraftScanJob{
		Pool:    pool,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes stale draft scan tasks.
func (j *StaleDraftScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("stale draft scan: handler not configured")
	}
	var payload StaleDraftScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.MaxAgeDays <= 0 {
		payload.MaxAgeDays = 3
	}

	tracker := j.Metrics.Track(TaskStaleDraftScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	cutoff := j.clock().AddDate(0, 0, -payload.MaxAgeDays)
	rows, err := j.Pool.Query(ctx, `SELECT created_by, COUNT(*)
FROM loss_events
WHERE status = 'DRAFT' AND created_at < $1
GROUP BY created_by`, cutoff)
	if err != nil {
		resultErr = err
		return err
	}
	defer rows.Close()

	total := 0
	for rows.Next() {
		var createdBy int64
		var count int
		if err := rows.Scan(&createdBy, &count); err != nil {
			resultErr = err
			return err
		}
		total += count
		j.logger().Warn("stale draft events",
			slog.Int64("created_by", createdBy),
			slog.Int("count", count),
			slog.Int("max_age_days", payload.MaxAgeDays))
	}
	if err := rows.Err(); err != nil {
		resultErr = err
		return err
	}

	j.Metrics.SetStaleDrafts(total)
	j.logger().Info("stale draft scan complete", slog.Int("total", total))
	return nil
}

func (j *StaleDraftScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
