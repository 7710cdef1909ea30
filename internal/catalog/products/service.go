package products

import (
	"context"
	"strings"

	"github.com/lossdesk/lossdesk/internal/platform/httpx"
)

// Service carries catalog product rules.
type Service struct {
	repo Repository
}

// NewService constructs a products Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, req ListProductsRequest) ([]Product, int, error) {
	return s.repo.List(ctx, req)
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req UpsertProductRequest) (Product, error) {
	p, err := fromRequest(req)
	if err != nil {
		return Product{}, err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, id int64, req UpsertProductRequest) (Product, error) {
	p, err := fromRequest(req)
	if err != nil {
		return Product{}, err
	}
	p.ID = id
	return s.repo.Update(ctx, p)
}

func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.repo.Deactivate(ctx, id)
}

func fromRequest(req UpsertProductRequest) (Product, error) {
	name := strings.TrimSpace(req.Name)
	sku := strings.ToUpper(strings.TrimSpace(req.SKU))
	if name == "" || sku == "" {
		return Product{}, httpx.ErrValidation
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return Product{
		SKU:        sku,
		Barcode:    req.Barcode,
		Name:       name,
		CategoryID: req.CategoryID,
		Unit:       strings.TrimSpace(req.Unit),
		CostPrice:  req.CostPrice,
		SalePrice:  req.SalePrice,
		IsActive:   active,
	}, nil
}
