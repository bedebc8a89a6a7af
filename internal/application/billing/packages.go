// Package billing manages plans, subscriptions and the payment
// transactions recorded against them. Stripe identifiers are stored as
// opaque data.
package billing

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
	fieldName           = "name"
	fieldStripePriceID  = "stripe_price_id"
	fieldType           = "type"
	fieldIsActive       = "is_active"
	fieldStatus         = "status"
	fieldCancelAtPeriod = "cancel_at_period_end"
)

type PackageService interface {
	List(ctx context.Context, q domain.ListQuery) ([]domain.Package, domain.Pagination, error)
	Get(ctx context.Context, packageID string) (*domain.Package, error)
	Create(ctx context.Context, req domain.CreatePackageRequest) (*domain.Package, error)
	Update(ctx context.Context, packageID string, req domain.UpdatePackageRequest) (*domain.Package, error)
	SetStatus(ctx context.Context, packageID string, active bool) (*domain.Package, error)
	Delete(ctx context.Context, packageID string) error
}

type packageStore interface {
	Create(ctx context.Context, p *domain.Package) error
	Get(ctx context.Context, packageID string) (*domain.Package, error)
	GetByName(ctx context.Context, name string) (*domain.Package, error)
	Update(ctx context.Context, packageID string, updates map[string]interface{}) (*domain.Package, error)
	Delete(ctx context.Context, packageID string) error
	List(ctx context.Context, q domain.ListQuery) ([]domain.Package, int, error)
}

type packageService struct {
	repo packageStore
	now  func() time.Time
}

func NewPackageService(repo packageStore, clock func() time.Time) PackageService {
	if clock == nil {
		clock = time.Now
	}
	return &packageService{repo: repo, now: clock}
}

func (s *packageService) List(ctx context.Context, q domain.ListQuery) ([]domain.Package, domain.Pagination, error) {
	q = q.Normalize("-created_at")
	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return items, domain.NewPagination(q.Page, q.Limit, total), nil
}

func (s *packageService) Get(ctx context.Context, packageID string) (*domain.Package, error) {
	return s.repo.Get(ctx, packageID)
}

func (s *packageService) Create(ctx context.Context, req domain.CreatePackageRequest) (*domain.Package, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, req.Name); err != nil {
		return nil, err
	}
	typ := req.Type
	if typ == "" {
		typ = domain.PackageTypeUser
	}
	now := s.now().UTC()
	p := &domain.Package{
		PackageID:     id.NewAt(now),
		Name:          req.Name,
		StripePriceID: req.StripePriceID,
		Type:          typ,
		IsActive:      req.IsActive == nil || *req.IsActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *packageService) Update(ctx context.Context, packageID string, req domain.UpdatePackageRequest) (*domain.Package, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	current, err := s.repo.Get(ctx, packageID)
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
	if req.StripePriceID != nil {
		updates[fieldStripePriceID] = *req.StripePriceID
	}
	if req.Type != nil {
		updates[fieldType] = *req.Type
	}
	if req.IsActive != nil {
		updates[fieldIsActive] = *req.IsActive
	}
	if len(updates) == 0 {
		return current, nil
	}
	return s.repo.Update(ctx, packageID, updates)
}

func (s *packageService) SetStatus(ctx context.Context, packageID string, active bool) (*domain.Package, error) {
	return s.repo.Update(ctx, packageID, map[string]interface{}{fieldIsActive: active})
}

func (s *packageService) Delete(ctx context.Context, packageID string) error {
	return s.repo.Delete(ctx, packageID)
}

func (s *packageService) ensureNameFree(ctx context.Context, name string) error {
	_, err := s.repo.GetByName(ctx, name)
	switch {
	case err == nil:
		return fmt.Errorf("package with this name already exists: %w", domain.ErrConflict)
	case errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		return err
	}
}
