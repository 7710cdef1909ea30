package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardWarmup pre-populates the dashboard cache.
	TaskDashboardWarmup = "reports:dashboard_warmup"
	// TaskStaleDraftScan flags draft events nobody submitted.
	TaskStaleDraftScan = "events:stale_draft_scan"
	// TaskExportDigest summarises recent export batches.
	TaskExportDigest = "reports:export_digest"
)

// DashboardWarmupPayload bounds the warmup windows in days.
type DashboardWarmupPayload struct {
	Windows []int `json:"windows"`
}

// NewDashboardWarmupTask constructs the warmup task.
func NewDashboardWarmupTask(payload DashboardWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data), nil
}

// StaleDraftScanPayload sets the age after which a draft counts as stale.
type StaleDraftScanPayload struct {
	MaxAgeDays int `json:"max_age_days"`
}

// NewStaleDraftScanTask constructs the scan task.
func NewStaleDraftScanTask(payload StaleDraftScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStaleDraftScan, data), nil
}

// ExportDigestPayload bounds the digest window in hours.
type ExportDigestPayload struct {
	WindowHours int `json:"window_hours"`
}

// NewExportDigestTask constructs the digest task.
func NewExportDigestTask(payload ExportDigestPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskExportDigest, data), nil
}
