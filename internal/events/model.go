package events

import (
	"time"

	"github.com/google/uuid"
)

// EventStatus tracks a loss event through its approval workflow.
type EventStatus string

const (
	// StatusDraft is the initial state, not yet visible to approvers.
	StatusDraft EventStatus = "DRAFT"
	// StatusSubmitted awaits a manager decision.
	StatusSubmitted EventStatus = "SUBMITTED"
	// StatusApproved is a terminal decision; approved cost feeds reports.
	StatusApproved EventStatus = "APPROVED"
	// StatusRejected is a terminal decision.
	StatusRejected EventStatus = "REJECTED"
	// StatusExported marks approved data pulled into an external report.
	// It is terminal and must never be reverted automatically.
	StatusExported EventStatus = "EXPORTED"
)

// EventType classifies the shrinkage cause.
type EventType string

const (
	TypeSpoilage EventType = "SPOILAGE"
	TypeDamage   EventType = "DAMAGE"
	TypeTheft    EventType = "THEFT"
	TypeExpiry   EventType = "EXPIRY"
	TypeOther    EventType = "OTHER"
)

// ValidType reports whether t is one of the defined event types.
func ValidType(t EventType) bool {
	switch t {
	case TypeSpoilage, TypeDamage, TypeTheft, TypeExpiry, TypeOther:
		return true
	}
	return false
}

// LossEvent records one shrinkage occurrence. Cost and sale prices are
// snapshots captured at creation time, not live catalog lookups, so
// historical reports stay stable when catalog prices change later.
type LossEvent struct {
	ID         uuid.UUID   `json:"id"`
	OccurredAt time.Time   `json:"occurred_at"`
	ProductID  *int64      `json:"product_id,omitempty"`
	CategoryID *int64      `json:"category_id,omitempty"`
	Type       EventType   `json:"type"`
	Quantity   float64     `json:"quantity"`
	Unit       string      `json:"unit"`
	CostPrice  float64     `json:"cost_price"`
	SalePrice  float64     `json:"sale_price"`
	Reason     string      `json:"reason"`
	Status     EventStatus `json:"status"`
	CreatedBy  int64       `json:"created_by"`
	ApprovedBy *int64      `json:"approved_by,omitempty"`
	DecidedAt  *time.Time  `json:"decided_at,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// CostImpact is the event's contribution to the loss dashboard.
func (e LossEvent) CostImpact() float64 {
	return e.Quantity * e.CostPrice
}
