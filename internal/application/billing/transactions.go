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

type TransactionService interface {
	List(ctx context.Context, q domain.ListQuery) ([]domain.Transaction, domain.Pagination, error)
	Get(ctx context.Context, transactionID string) (*domain.Transaction, error)
	Create(ctx context.Context, req domain.CreateTransactionRequest) (*domain.Transaction, error)
	UpdateStatus(ctx context.Context, transactionID string, req domain.TransactionStatusRequest) (*domain.Transaction, error)
}

type transactionStore interface {
	Create(ctx context.Context, t *domain.Transaction) error
	Get(ctx context.Context, transactionID string) (*domain.Transaction, error)
	Update(ctx context.Context, transactionID string, updates map[string]interface{}) (*domain.Transaction, error)
	List(ctx context.Context, q domain.ListQuery) ([]domain.Transaction, int, error)
}

type subscriptionGetter interface {
	Get(ctx context.Context, subscriptionID string) (*domain.Subscription, error)
}

type transactionService struct {
	repo          transactionStore
	subscriptions subscriptionGetter
	now           func() time.Time
}

func NewTransactionService(repo transactionStore, subs subscriptionGetter, clock func() time.Time) TransactionService {
	if clock == nil {
		clock = time.Now
	}
	return &transactionService{repo: repo, subscriptions: subs, now: clock}
}

func (s *transactionService) List(ctx context.Context, q domain.ListQuery) ([]domain.Transaction, domain.Pagination, error) {
	q = q.Normalize("-timestamp")
	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return items, domain.NewPagination(q.Page, q.Limit, total), nil
}

func (s *transactionService) Get(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return s.repo.Get(ctx, transactionID)
}

func (s *transactionService) Create(ctx context.Context, req domain.CreateTransactionRequest) (*domain.Transaction, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.subscriptions.Get(ctx, req.SubscriptionID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("subscription %s does not exist: %w", req.SubscriptionID, domain.ErrBadRequest)
		}
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = domain.TransactionPending
	}
	now := s.now().UTC()
	t := &domain.Transaction{
		TransactionID:         id.NewAt(now),
		SubscriptionID:        req.SubscriptionID,
		StripePaymentIntentID: req.StripePaymentIntentID,
		StripeInvoiceID:       req.StripeInvoiceID,
		Amount:                req.Amount,
		Currency:              req.Currency,
		Status:                status,
		IsActive:              true,
		Timestamp:             now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *transactionService) UpdateStatus(ctx context.Context, transactionID string, req domain.TransactionStatusRequest) (*domain.Transaction, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{fieldStatus: req.Status}
	if req.IsActive != nil {
		updates[fieldIsActive] = *req.IsActive
	}
	return s.repo.Update(ctx, transactionID, updates)
}
