// Package app manages client applications registered against the API.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/documentor-api/internal/domain"
	"github.com/documentor-api/internal/pkg/id"
	"github.com/documentor-api/internal/pkg/validate"
)

const (
	fieldName        = "name"
	fieldDescription = "description"
	fieldIsActive    = "is_active"
)

type Service interface {
	List(ctx context.Context, q domain.ListQuery) ([]domain.App, domain.Pagination, error)
	Get(ctx context.Context, appID string) (*domain.App, error)
	Create(ctx context.Context, req domain.CreateAppRequest) (*domain.App, error)
	Update(ctx context.Context, appID string, req domain.UpdateAppRequest) (*domain.App, error)
	SetStatus(ctx context.Context, appID string, active bool) (*domain.App, error)
	Delete(ctx context.Context, appID string) error
}

type appStore interface {
	Create(ctx context.Context, a *domain.App) error
	Get(ctx context.Context, appID string) (*domain.App, error)
	GetByName(ctx context.Context, name string) (*domain.App, error)
	Update(ctx context.Context, appID string, updates map[string]interface{}) (*domain.App, error)
	Delete(ctx context.Context, appID string) error
	List(ctx context.Context, q domain.ListQuery) ([]domain.App, int, error)
}

type userGetter interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type service struct {
	repo  appStore
	users userGetter
	now   func() time.Time
}

type ServiceDeps struct {
	AppRepo  appStore
	UserRepo userGetter
	Clock    func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{repo: deps.AppRepo, users: deps.UserRepo, now: deps.Clock}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) List(ctx context.Context, q domain.ListQuery) ([]domain.App, domain.Pagination, error) {
	q = q.Normalize("-created_at")
	apps, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return apps, domain.NewPagination(q.Page, q.Limit, total), nil
}

func (s *service) Get(ctx context.Context, appID string) (*domain.App, error) {
	return s.repo.Get(ctx, appID)
}

func (s *service) Create(ctx context.Context, req domain.CreateAppRequest) (*domain.App, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, req.Name); err != nil {
		return nil, err
	}
	if _, err := s.users.Get(ctx, req.OwnerID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("owner %s does not exist: %w", req.OwnerID, domain.ErrBadRequest)
		}
		return nil, err
	}
	now := s.now().UTC()
	a := &domain.App{
		AppID:       id.NewAt(now),
		OwnerID:     req.OwnerID,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive == nil || *req.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) Update(ctx context.Context, appID string, req domain.UpdateAppRequest) (*domain.App, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	current, err := s.repo.Get(ctx, appID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != current.Name {
			if err := s.ensureNameFree(ctx, name); err != nil {
				return nil, err
			}
		}
		updates[fieldName] = name
	}
	if req.Description != nil {
		updates[fieldDescription] = *req.Description
	}
	if req.IsActive != nil {
		updates[fieldIsActive] = *req.IsActive
	}
	if len(updates) == 0 {
		return current, nil
	}
	return s.repo.Update(ctx, appID, updates)
}

func (s *service) SetStatus(ctx context.Context, appID string, active bool) (*domain.App, error) {
	return s.repo.Update(ctx, appID, map[string]interface{}{fieldIsActive: active})
}

func (s *service) Delete(ctx context.Context, appID string) error {
	return s.repo.Delete(ctx, appID)
}

func (s *service) ensureNameFree(ctx context.Context, name string) error {
	_, err := s.repo.GetByName(ctx, name)
	switch {
	case err == nil:
		return fmt.Errorf("app with this name already exists: %w", domain.ErrConflict)
	case errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		return err
	}
}
