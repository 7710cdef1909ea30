package categories

import (
	"context"
	"strings"

	"github.com/lossdesk/lossdesk/internal/platform/httpx"
)

// Service carries category rules.
type Service struct {
	repo Repository
}

// NewService constructs a categories Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Category, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Category, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req UpsertCategoryRequest) (Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Category{}, httpx.ErrValidation
	}
	return s.repo.Create(ctx, Category{Name: name, Description: strings.TrimSpace(req.Description)})
}

func (s *Service) Update(ctx context.Context, id int64, req UpsertCategoryRequest) (Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Category{}, httpx.ErrValidation
	}
	return s.repo.Update(ctx, Category{ID: id, Name: name, Description: strings.TrimSpace(req.Description)})
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
