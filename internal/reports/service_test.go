package reports

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/lossdesk/lossdesk/internal/events"
	"github.com/lossdesk/lossdesk/internal/platform/httpx"
	"github.com/lossdesk/lossdesk/internal/rbac"
)

type stubRepo struct {
	dash      Dashboard
	dashCalls int
	batches   []ExportBatch
}

func (r *stubRepo) Dashboard(_ context.Context, req DashboardRequest) (Dashboard, error) {
	r.dashCalls++
	out := r.dash
	out.From, out.To = req.From, req.To
	return out, nil
}

func (r *stubRepo) CreateBatch(_ context.Context, batch ExportBatch) (ExportBatch, error) {
	batch.ID = uuid.New()
	batch.CreatedAt = time.Now().UTC()
	r.batches = append(r.batches, batch)
	return batch, nil
}

func (r *stubRepo) ListBatches(context.Context, int, int) ([]ExportBatch, int, error) {
	return r.batches, len(r.batches), nil
}

type stubExporter struct {
	items []events.LossEvent
	err   error
}

func (e *stubExporter) Export(context.Context, []uuid.UUID, events.Actor) ([]events.LossEvent, error) {
	return e.items, e.err
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestDashboardCachesUntilBump(t *testing.T) {
	repo := &stubRepo{dash: Dashboard{TotalCount: 3, TotalCostImpact: 42.5}}
	svc := NewService(repo, newTestCache(t), nil, nil)

	req := DashboardRequest{
		From: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
	}

	first, err := svc.Dashboard(context.Background(), req, rbac.RoleManager)
	require.NoError(t, err)
	require.Equal(t, 3, first.TotalCount)
	require.Equal(t, 1, repo.dashCalls)

	// Second call within the same version hits the cache.
	_, err = svc.Dashboard(context.Background(), req, rbac.RoleManager)
	require.NoError(t, err)
	require.Equal(t, 1, repo.dashCalls)

	require.NoError(t, svc.Bump(context.Background()))

	_, err = svc.Dashboard(context.Background(), req, rbac.RoleManager)
	require.NoError(t, err)
	require.Equal(t, 2, repo.dashCalls)
}

func TestDashboardRequiresViewPermission(t *testing.T) {
	svc := NewService(&stubRepo{}, newTestCache(t), nil, nil)

	_, err := svc.Dashboard(context.Background(), DashboardRequest{}, rbac.Role("visitor"))
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestDashboardRejectsInvertedRange(t *testing.T) {
	svc := NewService(&stubRepo{}, newTestCache(t), nil, nil)

	req := DashboardRequest{
		From: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
	_, err := svc.Dashboard(context.Background(), req, rbac.RoleOwner)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestExportRecordsBatchTotals(t *testing.T) {
	repo := &stubRepo{}
	approver := int64(20)
	exporter := &stubExporter{items: []events.LossEvent{
		{ID: uuid.New(), Quantity: 2, CostPrice: 10, Status: events.StatusExported, ApprovedBy: &approver},
		{ID: uuid.New(), Quantity: 1, CostPrice: 5.5, Status: events.StatusExported, ApprovedBy: &approver},
	}}
	svc := NewService(repo, newTestCache(t), exporter, nil)

	actor := events.Actor{ID: 20, Role: rbac.RoleManager}
	batch, items, err := svc.Export(context.Background(), []uuid.UUID{uuid.New(), uuid.New()}, actor, BatchCSV)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, BatchCSV, batch.Kind)
	require.Equal(t, 2, batch.EventCount)
	require.InDelta(t, 25.5, batch.TotalCost, 0.0001)
	require.Equal(t, actor.ID, batch.CreatedBy)
	require.Len(t, repo.batches, 1)
}

func TestExportRequiresExportPermission(t *testing.T) {
	svc := NewService(&stubRepo{}, newTestCache(t), &stubExporter{}, nil)

	_, _, err := svc.Export(context.Background(), nil, events.Actor{ID: 10, Role: rbac.RoleEmployee}, BatchCSV)
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestExportRejectsUnknownKind(t *testing.T) {
	svc := NewService(&stubRepo{}, newTestCache(t), &stubExporter{}, nil)

	_, _, err := svc.Export(context.Background(), nil, events.Actor{ID: 30, Role: rbac.RoleOwner}, BatchKind("XLSX"))
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestExportPropagatesTransitionErrors(t *testing.T) {
	exporter := &stubExporter{err: events.ErrInvalidTransition}
	repo := &stubRepo{}
	svc := NewService(repo, newTestCache(t), exporter, nil)

	_, _, err := svc.Export(context.Background(), []uuid.UUID{uuid.New()}, events.Actor{ID: 30, Role: rbac.RoleOwner}, BatchPDF)
	require.ErrorIs(t, err, events.ErrInvalidTransition)
	require.Empty(t, repo.batches)
}
