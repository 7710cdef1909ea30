package events

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lossdesk/lossdesk/internal/catalog/products"
	"github.com/lossdesk/lossdesk/internal/platform/httpx"
	"github.com/lossdesk/lossdesk/internal/rbac"
	"github.com/lossdesk/lossdesk/internal/settings"
	"github.com/lossdesk/lossdesk/internal/shared"
)

// Actor identifies who is performing a mutation. Permission checks happen
// here at the service boundary, not only in route middleware, so no
// persistence path trusts the client.
type Actor struct {
	ID   int64
	Role rbac.Role
}

// ProductSource resolves catalog products for price snapshots.
type ProductSource interface {
	Get(ctx context.Context, id int64) (products.Product, error)
}

// SettingsSource resolves the runtime flags.
type SettingsSource interface {
	Current(ctx context.Context) (settings.Settings, error)
}

// CacheBumper invalidates the dashboard cache after event mutations.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// EvidenceDetacher nullifies photo links when an event is removed.
type EvidenceDetacher interface {
	DetachEvent(ctx context.Context, eventID uuid.UUID) error
}

// Service carries the loss event workflow.
type Service struct {
	repo      Repository
	products  ProductSource
	settings  SettingsSource
	approvals *shared.ApprovalRecorder
	audit     *shared.AuditLogger
	bumper    CacheBumper
	detacher  EvidenceDetacher
}

// SetEvidenceDetacher wires the evidence gallery in after both services
// exist; the dependency is optional and one-way.
func (s *Service) SetEvidenceDetacher(d EvidenceDetacher) {
	s.detacher = d
}

// SetBumper wires the dashboard cache invalidation in after the reports
// service exists; both services reference each other through narrow
// interfaces.
func (s *Service) SetBumper(b CacheBumper) {
	s.bumper = b
}

// NewService constructs an events Service. approvals, audit and bumper may
// be nil in tests.
func NewService(repo Repository, productSource ProductSource, settingsSource SettingsSource,
	approvals *shared.ApprovalRecorder, audit *shared.AuditLogger, bumper CacheBumper) *Service {
	return &Service{
		repo:      repo,
		products:  productSource,
		settings:  settingsSource,
		approvals: approvals,
		audit:     audit,
		bumper:    bumper,
	}
}

// Get loads one event, restricting employees to their own records.
func (s *Service) Get(ctx context.Context, id uuid.UUID, actor Actor) (LossEvent, error) {
	ev, err := s.repo.Get(ctx, id)
	if err != nil {
		return LossEvent{}, err
	}
	if !rbac.HasPermission(actor.Role, rbac.PermEventsViewAll) && ev.CreatedBy != actor.ID {
		return LossEvent{}, httpx.ErrForbidden
	}
	return ev, nil
}

// List returns events visible to the actor. Roles without events:view_all
// are forced onto their own records regardless of the requested filter.
func (s *Service) List(ctx context.Context, req ListEventsRequest, actor Actor) ([]LossEvent, int, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermEventsViewAll) {
		req.CreatedBy = &actor.ID
	}
	return s.repo.List(ctx, req)
}

// Create records a new loss event, snapshotting prices from the linked
// product when one is given.
func (s *Service) Create(ctx context.Context, req CreateEventRequest, actor Actor) (LossEvent, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermEventsCreate) {
		return LossEvent{}, ErrPermissionDenied
	}
	ev, err := s.buildEvent(ctx, req, actor)
	if err != nil {
		return LossEvent{}, err
	}
	if req.Submit {
		if err := CheckTransition(StatusDraft, StatusSubmitted, actor.Role); err != nil {
			return LossEvent{}, err
		}
		ev.Status = StatusSubmitted
	}
	created, err := s.repo.Create(ctx, ev)
	if err != nil {
		return LossEvent{}, err
	}
	if created.Status == StatusSubmitted {
		s.recordApproval(ctx, created.ID, actor.ID, shared.ApprovalSubmit, "")
	}
	s.recordAudit(ctx, actor.ID, "event.create", created.ID, map[string]any{"status": string(created.Status)})
	s.bump(ctx)
	return created, nil
}

// CreateBatch persists each item independently and in parallel. There is no
// transaction across items: partial success is expected and reported
// per-index so the caller can retry the failed subset.
func (s *Service) CreateBatch(ctx context.Context, req BatchCreateRequest, actor Actor) (BatchResult, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermEventsCreate) {
		return BatchResult{}, ErrPermissionDenied
	}

	var mu sync.Mutex
	result := BatchResult{}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for i, item := range req.Items {
		i, item := i, item
		g.Go(func() error {
			created, err := s.Create(gctx, item, actor)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed = append(result.Failed, BatchItemError{Index: i, Reason: err.Error()})
				return nil
			}
			result.Created = append(result.Created, created)
			return nil
		})
	}
	// Item errors are collected, never propagated, so Wait cannot fail.
	_ = g.Wait()
	return result, nil
}

// Update edits the event body. Approved events respect the global lock;
// exported events are always immutable.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateEventRequest, actor Actor) (LossEvent, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermEventsEdit) {
		return LossEvent{}, ErrPermissionDenied
	}
	ev, err := s.repo.Get(ctx, id)
	if err != nil {
		return LossEvent{}, err
	}
	if err := s.checkLock(ctx, ev.Status); err != nil {
		return LossEvent{}, err
	}

	if req.OccurredAt != nil {
		ev.OccurredAt = *req.OccurredAt
	}
	if req.Type != nil {
		if !ValidType(*req.Type) {
			return LossEvent{}, fmt.Errorf("%w: unknown event type %q", httpx.ErrValidation, *req.Type)
		}
		ev.Type = *req.Type
	}
	if req.Quantity != nil {
		ev.Quantity = *req.Quantity
	}
	if req.Unit != nil {
		ev.Unit = strings.TrimSpace(*req.Unit)
	}
	if req.Reason != nil {
		ev.Reason = strings.TrimSpace(*req.Reason)
	}

	updated, err := s.repo.Update(ctx, ev)
	if err != nil {
		return LossEvent{}, err
	}
	s.recordAudit(ctx, actor.ID, "event.update", updated.ID, nil)
	s.bump(ctx)
	return updated, nil
}

// Delete removes an event under the same lock rules as Update.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, actor Actor) error {
	if !rbac.HasPermission(actor.Role, rbac.PermEventsDelete) {
		return ErrPermissionDenied
	}
	ev, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkLock(ctx, ev.Status); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.detacher != nil {
		if err := s.detacher.DetachEvent(ctx, id); err != nil {
			return fmt.Errorf("detach evidence: %w", err)
		}
	}
	s.recordAudit(ctx, actor.ID, "event.delete", id, map[string]any{"status": string(ev.Status)})
	s.bump(ctx)
	return nil
}

// Submit moves a draft into the approval queue. Drafts are private to their
// creator until submitted, so only the creator (or a role that can already
// see every event) may submit one.
func (s *Service) Submit(ctx context.Context, id uuid.UUID, actor Actor) (LossEvent, error) {
	ev, err := s.repo.Get(ctx, id)
	if err != nil {
		return LossEvent{}, err
	}
	if ev.CreatedBy != actor.ID && !rbac.HasPermission(actor.Role, rbac.PermEventsViewAll) {
		return LossEvent{}, httpx.ErrForbidden
	}
	if err := CheckTransition(ev.Status, StatusSubmitted, actor.Role); err != nil {
		return LossEvent{}, err
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusSubmitted, nil, nil); err != nil {
		return LossEvent{}, err
	}
	s.recordApproval(ctx, id, actor.ID, shared.ApprovalSubmit, "")
	s.recordAudit(ctx, actor.ID, "event.submit", id, nil)
	return s.repo.Get(ctx, id)
}

// Approve decides a submitted event and records the actor as approver.
// Re-approving an already approved event is allowed only while the
// approved-lock is off; the second approver then overwrites the first
// (last-write-wins, deliberately permissive).
func (s *Service) Approve(ctx context.Context, id uuid.UUID, note string, actor Actor) (LossEvent, error) {
	return s.decide(ctx, id, StatusApproved, shared.ApprovalApprove, note, actor)
}

// Reject declines a submitted event and records the actor as approver.
func (s *Service) Reject(ctx context.Context, id uuid.UUID, note string, actor Actor) (LossEvent, error) {
	return s.decide(ctx, id, StatusRejected, shared.ApprovalReject, note, actor)
}

func (s *Service) decide(ctx context.Context, id uuid.UUID, to EventStatus, action shared.ApprovalAction, note string, actor Actor) (LossEvent, error) {
	ev, err := s.repo.Get(ctx, id)
	if err != nil {
		return LossEvent{}, err
	}

	if ev.Status == to && to == StatusApproved {
		// Re-decision path.
		if !rbac.HasPermission(actor.Role, rbac.PermEventsApprove) {
			return LossEvent{}, ErrPermissionDenied
		}
		if err := s.checkLock(ctx, ev.Status); err != nil {
			return LossEvent{}, err
		}
	} else if err := CheckTransition(ev.Status, to, actor.Role); err != nil {
		return LossEvent{}, err
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateStatus(ctx, id, to, &actor.ID, &now); err != nil {
		return LossEvent{}, err
	}
	s.recordApproval(ctx, id, actor.ID, action, note)
	s.recordAudit(ctx, actor.ID, "event."+strings.ToLower(string(action)), id, map[string]any{"note": note})
	s.bump(ctx)
	return s.repo.Get(ctx, id)
}

// Export marks the approved events as exported inside one transaction and
// returns them for report generation. Any ineligible event aborts the whole
// batch; an export is all-or-nothing because the resulting file is.
func (s *Service) Export(ctx context.Context, ids []uuid.UUID, actor Actor) ([]LossEvent, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermEventsExport) {
		return nil, ErrPermissionDenied
	}
	var exported []LossEvent
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		for _, id := range ids {
			ev, err := repo.Get(ctx, id)
			if err != nil {
				return fmt.Errorf("event %s: %w", id, err)
			}
			if err := CheckTransition(ev.Status, StatusExported, actor.Role); err != nil {
				return fmt.Errorf("event %s: %w", id, err)
			}
			if err := repo.UpdateStatus(ctx, id, StatusExported, nil, nil); err != nil {
				return err
			}
			ev.Status = StatusExported
			exported = append(exported, ev)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, ev := range exported {
		s.recordApproval(ctx, ev.ID, actor.ID, shared.ApprovalExport, "")
	}
	s.recordAudit(ctx, actor.ID, "event.export", uuid.Nil, map[string]any{"count": len(exported)})
	s.bump(ctx)
	return exported, nil
}

// History lists the approval trail of one event.
func (s *Service) History(ctx context.Context, id uuid.UUID) ([]shared.ApprovalLog, error) {
	if s.approvals == nil {
		return nil, nil
	}
	return s.approvals.List(ctx, id)
}

func (s *Service) buildEvent(ctx context.Context, req CreateEventRequest, actor Actor) (LossEvent, error) {
	if !ValidType(req.Type) {
		return LossEvent{}, fmt.Errorf("%w: unknown event type %q", httpx.ErrValidation, req.Type)
	}
	ev := LossEvent{
		ID:         uuid.New(),
		OccurredAt: req.OccurredAt,
		ProductID:  req.ProductID,
		Type:       req.Type,
		Quantity:   req.Quantity,
		Unit:       strings.TrimSpace(req.Unit),
		Reason:     strings.TrimSpace(req.Reason),
		Status:     StatusDraft,
		CreatedBy:  actor.ID,
	}

	if req.ProductID != nil {
		product, err := s.products.Get(ctx, *req.ProductID)
		if err != nil {
			return LossEvent{}, fmt.Errorf("resolve product: %w", err)
		}
		ev.CategoryID = product.CategoryID
		ev.CostPrice = product.CostPrice
		ev.SalePrice = product.SalePrice
		if ev.Unit == "" {
			ev.Unit = product.Unit
		}
	} else {
		if req.CostPrice == nil {
			return LossEvent{}, fmt.Errorf("%w: unlinked events require cost_price", httpx.ErrValidation)
		}
		ev.CostPrice = *req.CostPrice
		if req.SalePrice != nil {
			ev.SalePrice = *req.SalePrice
		}
		if ev.Unit == "" {
			return LossEvent{}, fmt.Errorf("%w: unlinked events require unit", httpx.ErrValidation)
		}
	}
	return ev, nil
}

func (s *Service) checkLock(ctx context.Context, status EventStatus) error {
	lock := true
	if s.settings != nil {
		current, err := s.settings.Current(ctx)
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}
		lock = current.LockApprovedEvents
	}
	return CheckMutable(status, lock)
}

func (s *Service) recordApproval(ctx context.Context, id uuid.UUID, actorID int64, action shared.ApprovalAction, note string) {
	if s.approvals == nil {
		return
	}
	_ = s.approvals.Record(ctx, shared.ApprovalLog{EventID: id, ActorID: actorID, Action: action, Note: note})
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, id uuid.UUID, meta map[string]any) {
	if s.audit == nil {
		return
	}
	entityID := id.String()
	if id == uuid.Nil {
		entityID = "batch"
	}
	_ = s.audit.Record(ctx, shared.AuditLog{ActorID: actorID, Action: action, Entity: "loss_event", EntityID: entityID, Meta: meta})
}

func (s *Service) bump(ctx context.Context) {
	if s.bumper == nil {
		return
	}
	_ = s.bumper.Bump(ctx)
}
