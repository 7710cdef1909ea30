package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/lossdesk/lossdesk/internal/catalog/products"
	"github.com/lossdesk/lossdesk/internal/platform/httpx"
	"github.com/lossdesk/lossdesk/internal/rbac"
	"github.com/lossdesk/lossdesk/internal/settings"
)

type stubRepo struct {
	mu     sync.Mutex
	events map[uuid.UUID]LossEvent
}

func newStubRepo() *stubRepo {
	return &stubRepo{events: map[uuid.UUID]LossEvent{}}
}

func (r *stubRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	r.mu.Lock()
	snapshot := make(map[uuid.UUID]LossEvent, len(r.events))
	for k, v := range r.events {
		snapshot[k] = v
	}
	r.mu.Unlock()

	scratch := &stubRepo{events: snapshot}
	if err := fn(ctx, scratch); err != nil {
		return err
	}
	r.mu.Lock()
	r.events = scratch.events
	r.mu.Unlock()
	return nil
}

func (r *stubRepo) Get(_ context.Context, id uuid.UUID) (LossEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev, ok := r.events[id]
	if !ok {
		return LossEvent{}, httpx.ErrNotFound
	}
	return ev, nil
}

func (r *stubRepo) List(_ context.Context, req ListEventsRequest) ([]LossEvent, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []LossEvent
	for _, ev := range r.events {
		if req.Status != nil && ev.Status != *req.Status {
			continue
		}
		if req.CreatedBy != nil && ev.CreatedBy != *req.CreatedBy {
			continue
		}
		out = append(out, ev)
	}
	return out, len(out), nil
}

func (r *stubRepo) Create(_ context.Context, ev LossEvent) (LossEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	ev.CreatedAt, ev.UpdatedAt = now, now
	r.events[ev.ID] = ev
	return ev, nil
}

func (r *stubRepo) Update(_ context.Context, ev LossEvent) (LossEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[ev.ID]; !ok {
		return LossEvent{}, httpx.ErrNotFound
	}
	ev.UpdatedAt = time.Now().UTC()
	r.events[ev.ID] = ev
	return ev, nil
}

func (r *stubRepo) UpdateStatus(_ context.Context, id uuid.UUID, status EventStatus, approvedBy *int64, decidedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev, ok := r.events[id]
	if !ok {
		return httpx.ErrNotFound
	}
	ev.Status = status
	if approvedBy != nil {
		ev.ApprovedBy = approvedBy
	}
	if decidedAt != nil {
		ev.DecidedAt = decidedAt
	}
	ev.UpdatedAt = time.Now().UTC()
	r.events[id] = ev
	return nil
}

func (r *stubRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(r.events, id)
	return nil
}

type stubProducts struct {
	items map[int64]products.Product
}

func (s *stubProducts) Get(_ context.Context, id int64) (products.Product, error) {
	p, ok := s.items[id]
	if !ok {
		return products.Product{}, httpx.ErrNotFound
	}
	return p, nil
}

type stubSettings struct {
	lock bool
}

func (s *stubSettings) Current(context.Context) (settings.Settings, error) {
	cfg := settings.Defaults()
	cfg.LockApprovedEvents = s.lock
	return cfg, nil
}

func newTestService(lock bool) (*Service, *stubRepo) {
	repo := newStubRepo()
	categoryID := int64(3)
	source := &stubProducts{items: map[int64]products.Product{
		7: {ID: 7, SKU: "MILK-1L", Name: "Whole Milk 1L", CategoryID: &categoryID, Unit: "un", CostPrice: 3.10, SalePrice: 5.49, IsActive: true},
	}}
	svc := NewService(repo, source, &stubSettings{lock: lock}, nil, nil, nil)
	return svc, repo
}

var (
	employee = Actor{ID: 10, Role: rbac.RoleEmployee}
	manager  = Actor{ID: 20, Role: rbac.RoleManager}
	owner    = Actor{ID: 30, Role: rbac.RoleOwner}
	auditor  = Actor{ID: 40, Role: rbac.RoleAuditor}
)

func validCreate() CreateEventRequest {
	productID := int64(7)
	return CreateEventRequest{
		OccurredAt: time.Now().UTC(),
		ProductID:  &productID,
		Type:       TypeSpoilage,
		Quantity:   2,
	}
}

func TestCreateSnapshotsProductPrices(t *testing.T) {
	svc, _ := newTestService(true)

	ev, err := svc.Create(context.Background(), validCreate(), employee)
	require.NoError(t, err)
	require.Equal(t, StatusDraft, ev.Status)
	require.Equal(t, 3.10, ev.CostPrice)
	require.Equal(t, 5.49, ev.SalePrice)
	require.Equal(t, "un", ev.Unit)
	require.NotNil(t, ev.CategoryID)
	require.Equal(t, int64(3), *ev.CategoryID)
	require.Equal(t, employee.ID, ev.CreatedBy)
	require.InDelta(t, 6.20, ev.CostImpact(), 0.0001)
}

func TestCreateWithImmediateSubmit(t *testing.T) {
	svc, _ := newTestService(true)

	req := validCreate()
	req.Submit = true
	ev, err := svc.Create(context.Background(), req, employee)
	require.NoError(t, err)
	require.Equal(t, StatusSubmitted, ev.Status)
}

func TestCreateUnlinkedRequiresPricing(t *testing.T) {
	svc, _ := newTestService(true)

	req := CreateEventRequest{
		OccurredAt: time.Now().UTC(),
		Type:       TypeDamage,
		Quantity:   1,
		Unit:       "kg",
	}
	_, err := svc.Create(context.Background(), req, manager)
	require.ErrorIs(t, err, httpx.ErrValidation)

	cost := 12.5
	req.CostPrice = &cost
	ev, err := svc.Create(context.Background(), req, manager)
	require.NoError(t, err)
	require.Equal(t, 12.5, ev.CostPrice)
	require.Nil(t, ev.ProductID)
}

func TestCreateDeniedWithoutPermission(t *testing.T) {
	svc, _ := newTestService(true)

	_, err := svc.Create(context.Background(), validCreate(), auditor)
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestCreateBatchReportsPartialFailures(t *testing.T) {
	svc, repo := newTestService(true)

	bad := validCreate()
	bad.Type = EventType("MELTDOWN")
	req := BatchCreateRequest{Items: []CreateEventRequest{validCreate(), bad, validCreate()}}

	result, err := svc.CreateBatch(context.Background(), req, employee)
	require.NoError(t, err)
	require.Len(t, result.Created, 2)
	require.Len(t, result.Failed, 1)
	require.Equal(t, 1, result.Failed[0].Index)
	require.Contains(t, result.Failed[0].Reason, "MELTDOWN")

	// Successful items stay persisted despite the failed one.
	require.Len(t, repo.events, 2)
}

func TestSubmitAndApproveRecordsApprover(t *testing.T) {
	svc, _ := newTestService(true)

	ev, err := svc.Create(context.Background(), validCreate(), employee)
	require.NoError(t, err)

	ev, err = svc.Submit(context.Background(), ev.ID, employee)
	require.NoError(t, err)
	require.Equal(t, StatusSubmitted, ev.Status)

	ev, err = svc.Approve(context.Background(), ev.ID, "checked the shelf", manager)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, ev.Status)
	require.NotNil(t, ev.ApprovedBy)
	require.Equal(t, manager.ID, *ev.ApprovedBy)
	require.NotNil(t, ev.DecidedAt)
}

func TestSubmitRestrictedToCreator(t *testing.T) {
	svc, _ := newTestService(true)

	ev, err := svc.Create(context.Background(), validCreate(), employee)
	require.NoError(t, err)

	// Another employee cannot submit a draft that is not theirs.
	other := Actor{ID: 11, Role: rbac.RoleEmployee}
	_, err = svc.Submit(context.Background(), ev.ID, other)
	require.ErrorIs(t, err, httpx.ErrForbidden)

	// A role that can see every event may submit on the creator's behalf.
	ev, err = svc.Submit(context.Background(), ev.ID, manager)
	require.NoError(t, err)
	require.Equal(t, StatusSubmitted, ev.Status)
}

func TestEmployeeCannotApprove(t *testing.T) {
	svc, _ := newTestService(true)

	req := validCreate()
	req.Submit = true
	ev, err := svc.Create(context.Background(), req, employee)
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), ev.ID, "", employee)
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestRejectFromSubmitted(t *testing.T) {
	svc, _ := newTestService(true)

	req := validCreate()
	req.Submit = true
	ev, err := svc.Create(context.Background(), req, employee)
	require.NoError(t, err)

	ev, err = svc.Reject(context.Background(), ev.ID, "counted wrong", manager)
	require.NoError(t, err)
	require.Equal(t, StatusRejected, ev.Status)
	require.Equal(t, manager.ID, *ev.ApprovedBy)

	// Rejected is terminal for the decision flow.
	_, err = svc.Approve(context.Background(), ev.ID, "", manager)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestReapproveBlockedByLock(t *testing.T) {
	svc, _ := newTestService(true)

	req := validCreate()
	req.Submit = true
	ev, err := svc.Create(context.Background(), req, employee)
	require.NoError(t, err)
	ev, err = svc.Approve(context.Background(), ev.ID, "", manager)
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), ev.ID, "", owner)
	require.ErrorIs(t, err, ErrRecordLocked)

	got, err := svc.Get(context.Background(), ev.ID, owner)
	require.NoError(t, err)
	require.Equal(t, manager.ID, *got.ApprovedBy)
}

func TestReapproveOverwritesApproverWhenUnlocked(t *testing.T) {
	svc, _ := newTestService(false)

	req := validCreate()
	req.Submit = true
	ev, err := svc.Create(context.Background(), req, employee)
	require.NoError(t, err)
	ev, err = svc.Approve(context.Background(), ev.ID, "", manager)
	require.NoError(t, err)
	require.Equal(t, manager.ID, *ev.ApprovedBy)

	ev, err = svc.Approve(context.Background(), ev.ID, "", owner)
	require.NoError(t, err)
	require.Equal(t, owner.ID, *ev.ApprovedBy)
}

func TestUpdateRespectsApprovedLock(t *testing.T) {
	svc, _ := newTestService(true)

	req := validCreate()
	req.Submit = true
	ev, err := svc.Create(context.Background(), req, employee)
	require.NoError(t, err)
	ev, err = svc.Approve(context.Background(), ev.ID, "", manager)
	require.NoError(t, err)

	reason := "updated count"
	_, err = svc.Update(context.Background(), ev.ID, UpdateEventRequest{Reason: &reason}, manager)
	require.ErrorIs(t, err, ErrRecordLocked)

	err = svc.Delete(context.Background(), ev.ID, manager)
	require.ErrorIs(t, err, ErrRecordLocked)
}

func TestUpdateApprovedAllowedWhenUnlocked(t *testing.T) {
	svc, _ := newTestService(false)

	req := validCreate()
	req.Submit = true
	ev, err := svc.Create(context.Background(), req, employee)
	require.NoError(t, err)
	ev, err = svc.Approve(context.Background(), ev.ID, "", manager)
	require.NoError(t, err)

	reason := "updated count"
	got, err := svc.Update(context.Background(), ev.ID, UpdateEventRequest{Reason: &reason}, manager)
	require.NoError(t, err)
	require.Equal(t, "updated count", got.Reason)
}

func TestExportIsAllOrNothing(t *testing.T) {
	svc, repo := newTestService(true)

	req := validCreate()
	req.Submit = true
	first, err := svc.Create(context.Background(), req, employee)
	require.NoError(t, err)
	first, err = svc.Approve(context.Background(), first.ID, "", manager)
	require.NoError(t, err)

	draft, err := svc.Create(context.Background(), validCreate(), employee)
	require.NoError(t, err)

	_, err = svc.Export(context.Background(), []uuid.UUID{first.ID, draft.ID}, manager)
	require.ErrorIs(t, err, ErrInvalidTransition)

	// The eligible event must not have been marked exported.
	got, err := repo.Get(context.Background(), first.ID)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, got.Status)

	exported, err := svc.Export(context.Background(), []uuid.UUID{first.ID}, manager)
	require.NoError(t, err)
	require.Len(t, exported, 1)
	require.Equal(t, StatusExported, exported[0].Status)

	// Exported events are immutable even with the lock off.
	svcUnlocked := NewService(repo, nil, &stubSettings{lock: false}, nil, nil, nil)
	err = svcUnlocked.Delete(context.Background(), first.ID, manager)
	require.ErrorIs(t, err, ErrRecordLocked)
}

func TestListScopesEmployeesToOwnEvents(t *testing.T) {
	svc, _ := newTestService(true)

	_, err := svc.Create(context.Background(), validCreate(), employee)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), validCreate(), manager)
	require.NoError(t, err)

	// The employee asks for everything and still only sees their own.
	items, total, err := svc.List(context.Background(), ListEventsRequest{}, employee)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, employee.ID, items[0].CreatedBy)

	_, total, err = svc.List(context.Background(), ListEventsRequest{}, manager)
	require.NoError(t, err)
	require.Equal(t, 2, total)

	// Employees cannot read other people's events directly either.
	otherEvents, _, err := svc.List(context.Background(), ListEventsRequest{}, manager)
	require.NoError(t, err)
	for _, ev := range otherEvents {
		if ev.CreatedBy != employee.ID {
			_, err = svc.Get(context.Background(), ev.ID, employee)
			require.ErrorIs(t, err, httpx.ErrForbidden)
		}
	}
}
