package users

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/lossdesk/lossdesk/internal/platform/httpx"
	"github.com/lossdesk/lossdesk/internal/rbac"
	"github.com/lossdesk/lossdesk/internal/shared"
)

// Service carries user administration rules.
type Service struct {
	repo  Repository
	audit *shared.AuditLogger
}

// NewService constructs a users Service.
func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.Get(ctx, id)
}

// Create provisions a new account with one of the fixed roles.
func (s *Service) Create(ctx context.Context, req CreateUserRequest, actorID int64) (User, error) {
	role, ok := rbac.ParseRole(req.Role)
	if !ok {
		return User{}, fmt.Errorf("%w: unknown role %q", httpx.ErrValidation, req.Role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	created, err := s.repo.Create(ctx, User{
		Email: strings.ToLower(strings.TrimSpace(req.Email)),
		Name:  strings.TrimSpace(req.Name),
		Role:  string(role),
	}, string(hash))
	if err != nil {
		return User{}, err
	}
	s.record(ctx, actorID, "user.create", created.ID, map[string]any{"role": created.Role})
	return created, nil
}

// Update applies partial account changes, including role reassignment.
func (s *Service) Update(ctx context.Context, id int64, req UpdateUserRequest, actorID int64) (User, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	if req.Name != nil {
		existing.Name = strings.TrimSpace(*req.Name)
	}
	if req.Role != nil {
		role, ok := rbac.ParseRole(*req.Role)
		if !ok {
			return User{}, fmt.Errorf("%w: unknown role %q", httpx.ErrValidation, *req.Role)
		}
		existing.Role = string(role)
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	var hash *string
	if req.Password != nil {
		h, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, fmt.Errorf("hash password: %w", err)
		}
		hs := string(h)
		hash = &hs
	}
	updated, err := s.repo.Update(ctx, existing, hash)
	if err != nil {
		return User{}, err
	}
	s.record(ctx, actorID, "user.update", updated.ID, map[string]any{"role": updated.Role, "active": updated.IsActive})
	return updated, nil
}

func (s *Service) record(ctx context.Context, actorID int64, action string, userID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user",
		EntityID: strconv.FormatInt(userID, 10),
		Meta:     meta,
	})
}
