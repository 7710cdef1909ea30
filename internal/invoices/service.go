package invoices

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/lossdesk/lossdesk/internal/shared"
)

// Service manages supplier invoices. Permission gating happens in the
// handler's route groups; invoices carry no per-record ownership rules.
type Service struct {
	repo  Repository
	audit *shared.AuditLogger
}

// NewService constructs an invoices Service. audit may be nil in tests.
func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// Get loads one invoice.
func (s *Service) Get(ctx context.Context, id int64) (Invoice, error) {
	return s.repo.Get(ctx, id)
}

// List returns invoices matching the filter.
func (s *Service) List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	return s.repo.List(ctx, req)
}

// Create registers an invoice.
func (s *Service) Create(ctx context.Context, req UpsertInvoiceRequest, actorID int64) (Invoice, error) {
	inv := Invoice{
		Number:    strings.TrimSpace(req.Number),
		Supplier:  strings.TrimSpace(req.Supplier),
		IssueDate: req.IssueDate,
		Total:     req.Total,
		AccessKey: req.AccessKey,
		CreatedBy: actorID,
	}
	created, err := s.repo.Create(ctx, inv)
	if err != nil {
		return Invoice{}, err
	}
	s.recordAudit(ctx, actorID, "invoice.create", created.ID)
	return created, nil
}

// ImportXML registers an invoice from an NF-e XML payload.
func (s *Service) ImportXML(ctx context.Context, payload []byte, actorID int64) (Invoice, error) {
	req, err := ParseNFe(payload)
	if err != nil {
		return Invoice{}, err
	}
	return s.Create(ctx, req, actorID)
}

// Update edits an invoice's fields.
func (s *Service) Update(ctx context.Context, id int64, req UpsertInvoiceRequest, actorID int64) (Invoice, error) {
	inv, err := s.repo.Get(ctx, id)
	if err != nil {
		return Invoice{}, err
	}
	inv.Number = strings.TrimSpace(req.Number)
	inv.Supplier = strings.TrimSpace(req.Supplier)
	inv.IssueDate = req.IssueDate
	inv.Total = req.Total
	inv.AccessKey = req.AccessKey

	updated, err := s.repo.Update(ctx, inv)
	if err != nil {
		return Invoice{}, err
	}
	s.recordAudit(ctx, actorID, "invoice.update", id)
	return updated, nil
}

// Delete removes an invoice.
func (s *Service) Delete(ctx context.Context, id int64, actorID int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "invoice.delete", id)
	return nil
}

// LinkExport attaches the invoice to an export batch.
func (s *Service) LinkExport(ctx context.Context, id int64, batchID uuid.UUID, actorID int64) error {
	if err := s.repo.SetExportBatch(ctx, id, &batchID); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "invoice.link_export", id)
	return nil
}

// UnlinkExport detaches the invoice from its export batch.
func (s *Service) UnlinkExport(ctx context.Context, id int64, actorID int64) error {
	if err := s.repo.SetExportBatch(ctx, id, nil); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "invoice.unlink_export", id)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, id int64) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{ActorID: actorID, Action: action, Entity: "invoice", EntityID: strconv.FormatInt(id, 10)})
}
