// Package apidoc manages the public endpoint documentation shown to
// integrators.
package apidoc

import (
	"context"
	"strings"
	"time"

	"github.com/documentor-api/internal/domain"
	"github.com/documentor-api/internal/pkg/id"
	"github.com/documentor-api/internal/pkg/validate"
)

type Service interface {
	List(ctx context.Context, q domain.ListQuery) ([]domain.APIDoc, domain.Pagination, error)
	Get(ctx context.Context, docID string) (*domain.APIDoc, error)
	Create(ctx context.Context, createdBy string, req domain.CreateAPIDocRequest) (*domain.APIDoc, error)
	Update(ctx context.Context, docID string, req domain.UpdateAPIDocRequest) (*domain.APIDoc, error)
	SetStatus(ctx context.Context, docID string, active bool) (*domain.APIDoc, error)
	Delete(ctx context.Context, docID string) error
}

type docStore interface {
	Create(ctx context.Context, d *domain.APIDoc) error
	Get(ctx context.Context, docID string) (*domain.APIDoc, error)
	Update(ctx context.Context, docID string, updates map[string]interface{}) (*domain.APIDoc, error)
	Delete(ctx context.Context, docID string) error
	List(ctx context.Context, q domain.ListQuery) ([]domain.APIDoc, int, error)
}

type service struct {
	repo docStore
	now  func() time.Time
}

func NewService(repo docStore, clock func() time.Time) Service {
	if clock == nil {
		clock = time.Now
	}
	return &service{repo: repo, now: clock}
}

func (s *service) List(ctx context.Context, q domain.ListQuery) ([]domain.APIDoc, domain.Pagination, error) {
	q = q.Normalize("-created_at")
	docs, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return docs, domain.NewPagination(q.Page, q.Limit, total), nil
}

func (s *service) Get(ctx context.Context, docID string) (*domain.APIDoc, error) {
	return s.repo.Get(ctx, docID)
}

func (s *service) Create(ctx context.Context, createdBy string, req domain.CreateAPIDocRequest) (*domain.APIDoc, error) {
	req.Method = strings.ToUpper(strings.TrimSpace(req.Method))
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	d := &domain.APIDoc{
		APIDocID:       id.NewAt(now),
		URL:            req.URL,
		Method:         req.Method,
		Payload:        req.Payload,
		Response:       req.Response,
		Authentication: req.Authentication,
		Description:    req.Description,
		DemoURL:        req.DemoURL,
		CreatedBy:      createdBy,
		IsActive:       req.IsActive == nil || *req.IsActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *service) Update(ctx context.Context, docID string, req domain.UpdateAPIDocRequest) (*domain.APIDoc, error) {
	if req.Method != nil {
		m := strings.ToUpper(strings.TrimSpace(*req.Method))
		req.Method = &m
	}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	setIf(updates, "url", req.URL)
	setIf(updates, "method", req.Method)
	setIf(updates, "payload", req.Payload)
	setIf(updates, "response", req.Response)
	setIf(updates, "authentication", req.Authentication)
	setIf(updates, "description", req.Description)
	setIf(updates, "demo_url", req.DemoURL)
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, docID)
	}
	return s.repo.Update(ctx, docID, updates)
}

func (s *service) SetStatus(ctx context.Context, docID string, active bool) (*domain.APIDoc, error) {
	return s.repo.Update(ctx, docID, map[string]interface{}{"is_active": active})
}

func (s *service) Delete(ctx context.Context, docID string) error {
	return s.repo.Delete(ctx, docID)
}

func setIf(updates map[string]interface{}, field string, v *string) {
	if v != nil {
		updates[field] = *v
	}
}
