// Package user implements admin management of user accounts.
package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/documentor-api/internal/domain"
	"github.com/documentor-api/internal/pkg/id"
	"github.com/documentor-api/internal/pkg/validate"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldFullName = "full_name"
	fieldRole     = "role"
	fieldIsActive = "is_active"
)

type Service interface {
	List(ctx context.Context, q domain.ListQuery) ([]domain.User, domain.Pagination, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Create(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)
	Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error)
	SetStatus(ctx context.Context, userID string, active bool) (*domain.User, error)
	Toggle(ctx context.Context, userID string) (*domain.User, error)
	Delete(ctx context.Context, userID string) error
}

type userStore interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) (*domain.User, error)
	ChangeEmail(ctx context.Context, userID, oldEmail, newEmail string) error
	Delete(ctx context.Context, u *domain.User) error
	List(ctx context.Context, q domain.ListQuery) ([]domain.User, int, error)
}

type service struct {
	repo userStore
	now  func() time.Time
}

type ServiceDeps struct {
	UserRepo userStore
	Clock    func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{repo: deps.UserRepo, now: deps.Clock}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) List(ctx context.Context, q domain.ListQuery) ([]domain.User, domain.Pagination, error) {
	q = q.Normalize("-created_at")
	users, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return users, domain.NewPagination(q.Page, q.Limit, total), nil
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

func (s *service) Create(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	req.Email = normalizeEmail(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	role := req.Role
	if role == "" {
		role = domain.RoleEndUser
	}
	now := s.now().UTC()
	u := &domain.User{
		UserID:    id.NewAt(now),
		Email:     req.Email,
		FullName:  req.FullName,
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error) {
	if req.Email != nil {
		e := normalizeEmail(*req.Email)
		req.Email = &e
	}
	if req.FullName != nil {
		n := strings.TrimSpace(*req.FullName)
		req.FullName = &n
	}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	current, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Email != nil && *req.Email != current.Email {
		if err := s.repo.ChangeEmail(ctx, userID, current.Email, *req.Email); err != nil {
			return nil, err
		}
	}
	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates[fieldFullName] = *req.FullName
	}
	if req.Role != nil {
		updates[fieldRole] = *req.Role
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, userID)
	}
	return s.repo.Update(ctx, userID, updates)
}

func (s *service) SetStatus(ctx context.Context, userID string, active bool) (*domain.User, error) {
	return s.repo.Update(ctx, userID, map[string]interface{}{fieldIsActive: active})
}

func (s *service) Toggle(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.SetStatus(ctx, userID, !u.IsActive)
}

func (s *service) Delete(ctx context.Context, userID string) error {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, u); err != nil {
		return fmt.Errorf("delete user %s: %w", userID, err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
