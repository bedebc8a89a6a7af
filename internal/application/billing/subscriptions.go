package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/documentor-api/internal/domain"
	"github.com/documentor-api/internal/pkg/id"
	"github.com/documentor-api/internal/pkg/validate"
)

type SubscriptionService interface {
	List(ctx context.Context, q domain.ListQuery) ([]domain.Subscription, domain.Pagination, error)
	Get(ctx context.Context, subscriptionID string) (*domain.Subscription, error)
	Create(ctx context.Context, req domain.CreateSubscriptionRequest) (*domain.Subscription, error)
	UpdateStatus(ctx context.Context, subscriptionID string, status string) (*domain.Subscription, error)
	Cancel(ctx context.Context, subscriptionID string, cancelAt *time.Time) (*domain.Subscription, error)
}

type subscriptionStore interface {
	Create(ctx context.Context, s *domain.Subscription) error
	Get(ctx context.Context, subscriptionID string) (*domain.Subscription, error)
	Update(ctx context.Context, subscriptionID string, updates map[string]interface{}) (*domain.Subscription, error)
	List(ctx context.Context, q domain.ListQuery) ([]domain.Subscription, int, error)
}

type packageGetter interface {
	Get(ctx context.Context, packageID string) (*domain.Package, error)
}

type subscriptionService struct {
	repo     subscriptionStore
	packages packageGetter
	now      func() time.Time
}

func NewSubscriptionService(repo subscriptionStore, packages packageGetter, clock func() time.Time) SubscriptionService {
	if clock == nil {
		clock = time.Now
	}
	return &subscriptionService{repo: repo, packages: packages, now: clock}
}

func (s *subscriptionService) List(ctx context.Context, q domain.ListQuery) ([]domain.Subscription, domain.Pagination, error) {
	q = q.Normalize("-start_date")
	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return items, domain.NewPagination(q.Page, q.Limit, total), nil
}

func (s *subscriptionService) Get(ctx context.Context, subscriptionID string) (*domain.Subscription, error) {
	return s.repo.Get(ctx, subscriptionID)
}

func (s *subscriptionService) Create(ctx context.Context, req domain.CreateSubscriptionRequest) (*domain.Subscription, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	pkg, err := s.packages.Get(ctx, req.PackageID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("package %s does not exist: %w", req.PackageID, domain.ErrBadRequest)
		}
		return nil, err
	}
	if !pkg.IsActive {
		return nil, fmt.Errorf("package %s is not active: %w", req.PackageID, domain.ErrBadRequest)
	}
	status := req.Status
	if status == "" {
		status = domain.SubscriptionActive
	}
	sub := &domain.Subscription{
		SubscriptionID:       id.NewAt(s.now()),
		UserID:               req.UserID,
		AppID:                req.AppID,
		PackageID:            req.PackageID,
		StripeSubscriptionID: req.StripeSubscriptionID,
		StartDate:            req.StartDate.UTC(),
		EndDate:              req.EndDate.UTC(),
		Status:               status,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *subscriptionService) UpdateStatus(ctx context.Context, subscriptionID string, status string) (*domain.Subscription, error) {
	if !domain.ValidSubscriptionStatus(status) {
		return nil, fmt.Errorf("invalid status %q: %w", status, domain.ErrBadRequest)
	}
	return s.repo.Update(ctx, subscriptionID, map[string]interface{}{fieldStatus: status})
}

// Cancel marks the subscription canceled. Without cancelAt the current
// period end is used.
func (s *subscriptionService) Cancel(ctx context.Context, subscriptionID string, cancelAt *time.Time) (*domain.Subscription, error) {
	sub, err := s.repo.Get(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.Status == domain.SubscriptionCanceled {
		return nil, fmt.Errorf("subscription already canceled: %w", domain.ErrConflict)
	}
	at := sub.EndDate
	if cancelAt != nil {
		at = cancelAt.UTC()
	}
	return s.repo.Update(ctx, subscriptionID, map[string]interface{}{
		fieldStatus:         domain.SubscriptionCanceled,
		fieldCancelAtPeriod: at,
	})
}
