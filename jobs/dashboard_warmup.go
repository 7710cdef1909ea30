package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/lossdesk/lossdesk/internal/jobs"
	"github.com/lossdesk/lossdesk/internal/rbac"
	"github.com/lossdesk/lossdesk/internal/reports"
)

// DashboardWarmupJob pre-populates the dashboard cache so the first morning
// request does not pay the aggregation cost.
type DashboardWarmupJob struct {
	Reports *reports.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(reportsSvc *reports.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *DashboardWarmupJob {
	return &DashboardWarmupJob{
		Reports: reportsSvc,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes dashboard warmup tasks.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	var payload DashboardWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if len(payload.Windows) == 0 {
		payload.Windows = []int{7, 30}
	}

	tracker := j.Metrics.Track(TaskDashboardWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	now := j.clock()
	for _, days := range payload.Windows {
		if days <= 0 {
			continue
		}
		req := reports.DashboardRequest{From: now.AddDate(0, 0, -days), To: now}
		if _, err := j.Reports.Dashboard(ctx, req, rbac.RoleOwner); err != nil {
			resultErr = err
			j.logger().Error("dashboard warmup", slog.Int("days", days), slog.Any("error", err))
			return err
		}
		j.logger().Info("dashboard warmed", slog.Int("days", days))
	}
	return nil
}

func (j *DashboardWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
