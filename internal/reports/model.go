package reports

import (
	"time"

	"github.com/google/uuid"

	"github.com/lossdesk/lossdesk/internal/events"
)

// DashboardRequest bounds the aggregation window.
type DashboardRequest struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// DayBucket aggregates loss cost per calendar day.
type DayBucket struct {
	Day        time.Time `json:"day"`
	Count      int       `json:"count"`
	Quantity   float64   `json:"quantity"`
	CostImpact float64   `json:"cost_impact"`
}

// CategoryBucket aggregates loss cost per product category.
type CategoryBucket struct {
	CategoryID   *int64  `json:"category_id,omitempty"`
	CategoryName string  `json:"category_name"`
	Count        int     `json:"count"`
	CostImpact   float64 `json:"cost_impact"`
}

// StatusBucket aggregates event counts per workflow status.
type StatusBucket struct {
	Status     events.EventStatus `json:"status"`
	Count      int                `json:"count"`
	CostImpact float64            `json:"cost_impact"`
}

// Dashboard is the aggregated loss picture for a date range.
type Dashboard struct {
	From            time.Time        `json:"from"`
	To              time.Time        `json:"to"`
	TotalCount      int              `json:"total_count"`
	TotalCostImpact float64          `json:"total_cost_impact"`
	ByDay           []DayBucket      `json:"by_day"`
	ByCategory      []CategoryBucket `json:"by_category"`
	ByStatus        []StatusBucket   `json:"by_status"`
}

// BatchKind distinguishes export formats.
type BatchKind string

const (
	// BatchCSV marks a CSV export.
	BatchCSV BatchKind = "CSV"
	// BatchPDF marks a PDF export.
	BatchPDF BatchKind = "PDF"
)

// ExportBatch records one export run; invoices link back to it for
// reconciliation.
type ExportBatch struct {
	ID         uuid.UUID `json:"id"`
	Kind       BatchKind `json:"kind"`
	EventCount int       `json:"event_count"`
	TotalCost  float64   `json:"total_cost"`
	CreatedBy  int64     `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// ExportRequest names the approved events to export.
type ExportRequest struct {
	EventIDs []string `json:"event_ids" validate:"required,min=1"`
}
