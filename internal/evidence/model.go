package evidence

import (
	"time"

	"github.com/google/uuid"
)

// Photo is one piece of loss evidence. Upload mechanics live in object
// storage; this record keeps the URL plus optional links back into the
// catalog and the event stream. Links are nullable on purpose: deleting an
// event or product detaches its photos instead of cascading.
type Photo struct {
	ID         uuid.UUID  `json:"id"`
	URL        string     `json:"url"`
	EventID    *uuid.UUID `json:"event_id,omitempty"`
	ProductID  *int64     `json:"product_id,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	UploadedBy int64      `json:"uploaded_by"`
	CreatedAt  time.Time  `json:"created_at"`
}

// RegisterPhotoRequest records an uploaded photo.
type RegisterPhotoRequest struct {
	URL       string     `json:"url" validate:"required,url,max=500"`
	EventID   *uuid.UUID `json:"event_id,omitempty"`
	ProductID *int64     `json:"product_id,omitempty" validate:"omitempty,gt=0"`
	Reason    string     `json:"reason" validate:"max=500"`
}

// ListPhotosRequest filters the gallery.
type ListPhotosRequest struct {
	EventID   *uuid.UUID `json:"event_id,omitempty"`
	ProductID *int64     `json:"product_id,omitempty"`
	Unlinked  bool       `json:"unlinked"`
	Limit     int        `json:"limit" validate:"gte=0,lte=1000"`
	Offset    int        `json:"offset" validate:"gte=0"`
}
