package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lossdesk/lossdesk/internal/events"
	"github.com/lossdesk/lossdesk/internal/platform/httpx"
	"github.com/lossdesk/lossdesk/internal/rbac"
	"github.com/lossdesk/lossdesk/internal/settings"
)

// EventExporter marks events as exported through the workflow guard.
type EventExporter interface {
	Export(ctx context.Context, ids []uuid.UUID, actor events.Actor) ([]events.LossEvent, error)
}

// SettingsSource resolves the runtime flags.
type SettingsSource interface {
	Current(ctx context.Context) (settings.Settings, error)
}

// Service aggregates loss data and produces exports.
type Service struct {
	repo     Repository
	cache    *Cache
	exporter EventExporter
	settings SettingsSource
}

// NewService constructs a reports Service. cache and settings may be nil in
// tests.
func NewService(repo Repository, cache *Cache, exporter EventExporter, settingsSource SettingsSource) *Service {
	return &Service{repo: repo, cache: cache, exporter: exporter, settings: settingsSource}
}

// Dashboard returns the aggregated loss picture, served from cache when the
// version matches.
func (s *Service) Dashboard(ctx context.Context, req DashboardRequest, role rbac.Role) (Dashboard, error) {
	if !rbac.HasPermission(role, rbac.PermReportsView) {
		return Dashboard{}, httpx.ErrForbidden
	}
	if req.To.IsZero() {
		req.To = time.Now().UTC()
	}
	if req.From.IsZero() {
		req.From = req.To.AddDate(0, -1, 0)
	}
	if !req.From.Before(req.To) {
		return Dashboard{}, fmt.Errorf("%w: from must precede to", httpx.ErrValidation)
	}

	key, err := s.cache.BuildKey(ctx, keyDashboard(req.From, req.To)...)
	if err != nil {
		return Dashboard{}, err
	}
	var dash Dashboard
	err = s.cache.FetchJSON(ctx, key, &dash, func(ctx context.Context) (interface{}, error) {
		return s.repo.Dashboard(ctx, req)
	})
	return dash, err
}

// Bump invalidates cached dashboards. The events service calls this after
// every mutation.
func (s *Service) Bump(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

// Export marks the events exported through the workflow guard and records
// the batch. Rendering to CSV or PDF happens in the HTTP layer with the
// export subpackage.
func (s *Service) Export(ctx context.Context, ids []uuid.UUID, actor events.Actor, kind BatchKind) (ExportBatch, []events.LossEvent, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermReportsExport) {
		return ExportBatch{}, nil, httpx.ErrForbidden
	}
	if kind != BatchCSV && kind != BatchPDF {
		return ExportBatch{}, nil, fmt.Errorf("%w: unknown export kind %q", httpx.ErrValidation, kind)
	}
	exported, err := s.exporter.Export(ctx, ids, actor)
	if err != nil {
		return ExportBatch{}, nil, err
	}

	var total float64
	for _, ev := range exported {
		total += ev.CostImpact()
	}
	batch, err := s.repo.CreateBatch(ctx, ExportBatch{
		Kind:       kind,
		EventCount: len(exported),
		TotalCost:  total,
		CreatedBy:  actor.ID,
	})
	if err != nil {
		return ExportBatch{}, nil, err
	}
	return batch, exported, nil
}

// PDFOptions resolves store presentation settings for PDF rendering.
func (s *Service) PDFOptions(ctx context.Context) (storeName, footer string) {
	if s.settings == nil {
		return "", ""
	}
	cfg, err := s.settings.Current(ctx)
	if err != nil {
		return "", ""
	}
	return cfg.StoreName, cfg.ExportFooter
}

// ListBatches returns past export runs.
func (s *Service) ListBatches(ctx context.Context, limit, offset int, role rbac.Role) ([]ExportBatch, int, error) {
	if !rbac.HasPermission(role, rbac.PermReportsView) {
		return nil, 0, httpx.ErrForbidden
	}
	return s.repo.ListBatches(ctx, limit, offset)
}
