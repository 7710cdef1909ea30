package settings

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKey = "settings:current"

// Service exposes the runtime settings with a read-through Redis cache.
// Settings gate mutations on the hot path, so every lookup going to
// PostgreSQL would be wasteful.
type Service struct {
	repo  Repository
	redis *redis.Client
	ttl   time.Duration
}

// NewService constructs a settings Service.
func NewService(repo Repository, client *redis.Client, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Service{repo: repo, redis: client, ttl: ttl}
}

// Current returns the active settings.
func (s *Service) Current(ctx context.Context) (Settings, error) {
	if s == nil || s.repo == nil {
		return Settings{}, errors.New("settings service not initialised")
	}
	if s.redis != nil {
		raw, err := s.redis.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var cached Settings
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}
	current, err := s.repo.Get(ctx)
	if err != nil {
		return Settings{}, err
	}
	s.cache(ctx, current)
	return current, nil
}

// Update stores new settings and refreshes the cache.
func (s *Service) Update(ctx context.Context, next Settings) (Settings, error) {
	stored, err := s.repo.Save(ctx, next)
	if err != nil {
		return Settings{}, err
	}
	s.cache(ctx, stored)
	return stored, nil
}

func (s *Service) cache(ctx context.Context, value Settings) {
	if s.redis == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = s.redis.Set(ctx, cacheKey, raw, s.ttl).Err()
}
