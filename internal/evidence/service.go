package evidence

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/lossdesk/lossdesk/internal/platform/httpx"
	"github.com/lossdesk/lossdesk/internal/rbac"
	"github.com/lossdesk/lossdesk/internal/settings"
	"github.com/lossdesk/lossdesk/internal/shared"
)

// SettingsSource resolves the runtime flags.
type SettingsSource interface {
	Current(ctx context.Context) (settings.Settings, error)
}

// Service manages the evidence gallery.
type Service struct {
	repo     Repository
	settings SettingsSource
	audit    *shared.AuditLogger
}

// NewService constructs an evidence Service. audit may be nil in tests.
func NewService(repo Repository, settingsSource SettingsSource, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, settings: settingsSource, audit: audit}
}

// Gallery lists photos for roles allowed to see them. Employees get the
// gallery only when the allow-employee-gallery flag is on.
func (s *Service) Gallery(ctx context.Context, req ListPhotosRequest, role rbac.Role) ([]Photo, int, error) {
	allowed, err := s.galleryVisible(ctx, role)
	if err != nil {
		return nil, 0, err
	}
	if !allowed {
		return nil, 0, httpx.ErrForbidden
	}
	return s.repo.List(ctx, req)
}

// Register stores the metadata of an uploaded photo.
func (s *Service) Register(ctx context.Context, req RegisterPhotoRequest, actorID int64, role rbac.Role) (Photo, error) {
	if !rbac.HasPermission(role, rbac.PermEvidenceUpload) {
		return Photo{}, httpx.ErrForbidden
	}
	photo := Photo{
		ID:         uuid.New(),
		URL:        strings.TrimSpace(req.URL),
		EventID:    req.EventID,
		ProductID:  req.ProductID,
		Reason:     strings.TrimSpace(req.Reason),
		UploadedBy: actorID,
	}
	created, err := s.repo.Create(ctx, photo)
	if err != nil {
		return Photo{}, err
	}
	s.recordAudit(ctx, actorID, "evidence.register", created.ID)
	return created, nil
}

// Remove deletes a photo record. The object in storage is reaped separately.
func (s *Service) Remove(ctx context.Context, id uuid.UUID, actorID int64, role rbac.Role) error {
	if !rbac.HasPermission(role, rbac.PermEvidenceDelete) {
		return httpx.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "evidence.delete", id)
	return nil
}

// DetachEvent nullifies links when an event is deleted.
func (s *Service) DetachEvent(ctx context.Context, eventID uuid.UUID) error {
	return s.repo.DetachEvent(ctx, eventID)
}

func (s *Service) galleryVisible(ctx context.Context, role rbac.Role) (bool, error) {
	allowEmployee := false
	if s.settings != nil {
		cfg, err := s.settings.Current(ctx)
		if err != nil {
			return false, err
		}
		allowEmployee = cfg.AllowEmployeeGallery
	}
	return rbac.GalleryVisible(role, allowEmployee), nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, id uuid.UUID) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{ActorID: actorID, Action: action, Entity: "evidence_photo", EntityID: id.String()})
}
