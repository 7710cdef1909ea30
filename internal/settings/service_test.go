package settings

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	stored Settings
	gets   int
}

func (s *stubRepo) Get(ctx context.Context) (Settings, error) {
	s.gets++
	return s.stored, nil
}

func (s *stubRepo) Save(ctx context.Context, next Settings) (Settings, error) {
	next.UpdatedAt = time.Now().UTC()
	s.stored = next
	return next, nil
}

func TestCurrentUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := &stubRepo{stored: Settings{LockApprovedEvents: true}}
	svc := NewService(repo, client, time.Minute)
	ctx := context.Background()

	first, err := svc.Current(ctx)
	require.NoError(t, err)
	require.True(t, first.LockApprovedEvents)

	_, err = svc.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, repo.gets)
}

func TestUpdateRefreshesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := &stubRepo{}
	svc := NewService(repo, client, time.Minute)
	ctx := context.Background()

	_, err := svc.Current(ctx)
	require.NoError(t, err)

	_, err = svc.Update(ctx, Settings{AllowEmployeeGallery: true})
	require.NoError(t, err)

	current, err := svc.Current(ctx)
	require.NoError(t, err)
	require.True(t, current.AllowEmployeeGallery)
	require.Equal(t, 1, repo.gets)
}

func TestCurrentWithoutRedisFallsThrough(t *testing.T) {
	repo := &stubRepo{stored: Defaults()}
	svc := NewService(repo, nil, 0)

	current, err := svc.Current(context.Background())
	require.NoError(t, err)
	require.True(t, current.LockApprovedEvents)
	require.False(t, current.AllowEmployeeGallery)
}
