package events

import "time"

// CreateEventRequest carries the fields for a new loss event. When a product
// is linked, unit and prices are snapshotted from the catalog; unlinked
// events must carry their own.
type CreateEventRequest struct {
	OccurredAt time.Time `json:"occurred_at" validate:"required"`
	ProductID  *int64    `json:"product_id,omitempty" validate:"omitempty,gt=0"`
	Type       EventType `json:"type" validate:"required"`
	Quantity   float64   `json:"quantity" validate:"required,gt=0"`
	Unit       string    `json:"unit" validate:"omitempty,max=10"`
	CostPrice  *float64  `json:"cost_price,omitempty" validate:"omitempty,gte=0"`
	SalePrice  *float64  `json:"sale_price,omitempty" validate:"omitempty,gte=0"`
	Reason     string    `json:"reason" validate:"max=500"`
	// Submit records the event as SUBMITTED immediately instead of DRAFT.
	Submit bool `json:"submit"`
}

// BatchCreateRequest fans out independent event writes.
type BatchCreateRequest struct {
	Items []CreateEventRequest `json:"items" validate:"required,min=1,max=100,dive"`
}

// BatchItemError reports one failed item by its position in the batch.
type BatchItemError struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// BatchResult reports partial success. Failed items are not rolled back;
// the caller retries the failed subset.
type BatchResult struct {
	Created []LossEvent      `json:"created"`
	Failed  []BatchItemError `json:"failed"`
}

// UpdateEventRequest carries optional field changes for a loss event.
type UpdateEventRequest struct {
	OccurredAt *time.Time `json:"occurred_at,omitempty"`
	Type       *EventType `json:"type,omitempty"`
	Quantity   *float64   `json:"quantity,omitempty" validate:"omitempty,gt=0"`
	Unit       *string    `json:"unit,omitempty" validate:"omitempty,max=10"`
	Reason     *string    `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// DecisionRequest accompanies approve/reject calls.
type DecisionRequest struct {
	Note string `json:"note" validate:"max=500"`
}

// ExportRequest names the approved events to mark exported.
type ExportRequest struct {
	EventIDs []string `json:"event_ids" validate:"required,min=1"`
}

// ListEventsRequest filters the event listing.
type ListEventsRequest struct {
	Status    *EventStatus `json:"status,omitempty"`
	Type      *EventType   `json:"type,omitempty"`
	CreatedBy *int64       `json:"created_by,omitempty"`
	DateFrom  *time.Time   `json:"date_from,omitempty"`
	DateTo    *time.Time   `json:"date_to,omitempty"`
	Limit     int          `json:"limit" validate:"gte=0,lte=1000"`
	Offset    int          `json:"offset" validate:"gte=0"`
}
