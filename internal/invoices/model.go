package invoices

import (
	"time"

	"github.com/google/uuid"
)

// Invoice is a supplier invoice kept alongside loss events so exported
// reports can reconcile shrinkage against purchases.
type Invoice struct {
	ID            int64      `json:"id"`
	Number        string     `json:"number"`
	Supplier      string     `json:"supplier"`
	IssueDate     time.Time  `json:"issue_date"`
	Total         float64    `json:"total"`
	AccessKey     *string    `json:"access_key,omitempty"`
	ExportBatchID *uuid.UUID `json:"export_batch_id,omitempty"`
	CreatedBy     int64      `json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// UpsertInvoiceRequest carries create/update fields.
type UpsertInvoiceRequest struct {
	Number    string    `json:"number" validate:"required,max=40"`
	Supplier  string    `json:"supplier" validate:"required,max=160"`
	IssueDate time.Time `json:"issue_date" validate:"required"`
	Total     float64   `json:"total" validate:"gte=0"`
	AccessKey *string   `json:"access_key,omitempty" validate:"omitempty,len=44,numeric"`
}

// LinkExportRequest attaches an invoice to an export batch.
type LinkExportRequest struct {
	BatchID uuid.UUID `json:"batch_id" validate:"required"`
}

// ListInvoicesRequest filters the invoice listing.
type ListInvoicesRequest struct {
	Supplier string     `json:"supplier"`
	BatchID  *uuid.UUID `json:"batch_id,omitempty"`
	Limit    int        `json:"limit" validate:"gte=0,lte=1000"`
	Offset   int        `json:"offset" validate:"gte=0"`
}
