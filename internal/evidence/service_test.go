package evidence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/lossdesk/lossdesk/internal/platform/httpx"
	"github.com/lossdesk/lossdesk/internal/rbac"
	"github.com/lossdesk/lossdesk/internal/settings"
)

type stubRepo struct {
	photos map[uuid.UUID]Photo
}

func newStubRepo() *stubRepo {
	return &stubRepo{photos: map[uuid.UUID]Photo{}}
}

func (r *stubRepo) Get(_ context.Context, id uuid.UUID) (Photo, error) {
	p, ok := r.photos[id]
	if !ok {
		return Photo{}, httpx.ErrNotFound
	}
	return p, nil
}

func (r *stubRepo) List(_ context.Context, req ListPhotosRequest) ([]Photo, int, error) {
	var out []Photo
	for _, p := range r.photos {
		if req.EventID != nil && (p.EventID == nil || *p.EventID != *req.EventID) {
			continue
		}
		if req.Unlinked && (p.EventID != nil || p.ProductID != nil) {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (r *stubRepo) Create(_ context.Context, p Photo) (Photo, error) {
	r.photos[p.ID] = p
	return p, nil
}

func (r *stubRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.photos[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(r.photos, id)
	return nil
}

func (r *stubRepo) DetachEvent(_ context.Context, eventID uuid.UUID) error {
	for id, p := range r.photos {
		if p.EventID != nil && *p.EventID == eventID {
			p.EventID = nil
			r.photos[id] = p
		}
	}
	return nil
}

type stubSettings struct {
	allowEmployeeGallery bool
}

func (s *stubSettings) Current(context.Context) (settings.Settings, error) {
	cfg := settings.Defaults()
	cfg.AllowEmployeeGallery = s.allowEmployeeGallery
	return cfg, nil
}

func TestGalleryEmployeeFlag(t *testing.T) {
	repo := newStubRepo()
	flags := &stubSettings{allowEmployeeGallery: false}
	svc := NewService(repo, flags, nil)

	_, err := svc.Register(context.Background(), RegisterPhotoRequest{URL: "https://cdn.example.com/p/1.jpg"}, 10, rbac.RoleEmployee)
	require.NoError(t, err)

	// Managers always see the gallery; employees only behind the flag.
	_, total, err := svc.Gallery(context.Background(), ListPhotosRequest{}, rbac.RoleManager)
	require.NoError(t, err)
	require.Equal(t, 1, total)

	_, _, err = svc.Gallery(context.Background(), ListPhotosRequest{}, rbac.RoleEmployee)
	require.ErrorIs(t, err, httpx.ErrForbidden)

	flags.allowEmployeeGallery = true
	_, total, err = svc.Gallery(context.Background(), ListPhotosRequest{}, rbac.RoleEmployee)
	require.NoError(t, err)
	require.Equal(t, 1, total)
}

func TestRegisterRequiresUploadPermission(t *testing.T) {
	svc := NewService(newStubRepo(), &stubSettings{}, nil)

	_, err := svc.Register(context.Background(), RegisterPhotoRequest{URL: "https://cdn.example.com/p/2.jpg"}, 40, rbac.RoleAuditor)
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestRemoveRequiresDeletePermission(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, &stubSettings{}, nil)

	photo, err := svc.Register(context.Background(), RegisterPhotoRequest{URL: "https://cdn.example.com/p/3.jpg"}, 10, rbac.RoleEmployee)
	require.NoError(t, err)

	err = svc.Remove(context.Background(), photo.ID, 10, rbac.RoleEmployee)
	require.ErrorIs(t, err, httpx.ErrForbidden)

	err = svc.Remove(context.Background(), photo.ID, 20, rbac.RoleManager)
	require.NoError(t, err)

	err = svc.Remove(context.Background(), photo.ID, 20, rbac.RoleManager)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestDetachEventNullifiesLinks(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, &stubSettings{}, nil)

	eventID := uuid.New()
	photo, err := svc.Register(context.Background(), RegisterPhotoRequest{
		URL:     "https://cdn.example.com/p/4.jpg",
		EventID: &eventID,
	}, 20, rbac.RoleManager)
	require.NoError(t, err)

	require.NoError(t, svc.DetachEvent(context.Background(), eventID))

	got, err := repo.Get(context.Background(), photo.ID)
	require.NoError(t, err)
	require.Nil(t, got.EventID)
}
