package products

import "time"

// Product is one catalog item that shrinkage events can reference. The cost
// and sale prices here are the live values; events snapshot them at creation
// time so historical reports stay stable when prices change.
type Product struct {
	ID         int64     `json:"id"`
	SKU        string    `json:"sku"`
	Barcode    *string   `json:"barcode,omitempty"`
	Name       string    `json:"name"`
	CategoryID *int64    `json:"category_id,omitempty"`
	Unit       string    `json:"unit"`
	CostPrice  float64   `json:"cost_price"`
	SalePrice  float64   `json:"sale_price"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UpsertProductRequest carries create/update fields.
type UpsertProductRequest struct {
	SKU        string  `json:"sku" validate:"required,max=40"`
	Barcode    *string `json:"barcode,omitempty" validate:"omitempty,max=40"`
	Name       string  `json:"name" validate:"required,max=160"`
	CategoryID *int64  `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	Unit       string  `json:"unit" validate:"required,max=10"`
	CostPrice  float64 `json:"cost_price" validate:"gte=0"`
	SalePrice  float64 `json:"sale_price" validate:"gte=0"`
	IsActive   *bool   `json:"is_active,omitempty"`
}

// ListProductsRequest filters the catalog listing.
type ListProductsRequest struct {
	Search     string `json:"search"`
	CategoryID *int64 `json:"category_id,omitempty"`
	ActiveOnly bool   `json:"active_only"`
	Limit      int    `json:"limit" validate:"gte=0,lte=1000"`
	Offset     int    `json:"offset" validate:"gte=0"`
}
