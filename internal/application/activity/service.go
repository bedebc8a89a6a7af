// Package activity keeps the audit log and the conversion history, and
// serves both to the admin area.
package activity

import (
	"context"
	"log/slog"
	"time"

	"github.com/documentor-api/internal/domain"
	"github.com/documentor-api/internal/pkg/id"
)

// auditTimeout bounds an audit write detached from the request context.
const auditTimeout = 5 * time.Second

type Service interface {
	// Record appends an audit entry. Failures are logged, never returned,
	// so auditing cannot break the operation being audited.
	Record(ctx context.Context, level, actor string, details map[string]any)
	RecordHistory(ctx context.Context, h *domain.History) error

	ListLogs(ctx context.Context, q domain.ListQuery) ([]domain.ActivityLog, domain.Pagination, error)
	GetLog(ctx context.Context, logID string) (*domain.ActivityLog, error)
	ListHistories(ctx context.Context, q domain.ListQuery) ([]domain.History, domain.Pagination, error)
	GetHistory(ctx context.Context, historyID string) (*domain.History, error)
}

type logStore interface {
	Create(ctx context.Context, l *domain.ActivityLog) error
	Get(ctx context.Context, logID string) (*domain.ActivityLog, error)
	List(ctx context.Context, q domain.ListQuery) ([]domain.ActivityLog, int, error)
}

type historyStore interface {
	Create(ctx context.Context, h *domain.History) error
	Get(ctx context.Context, historyID string) (*domain.History, error)
	List(ctx context.Context, q domain.ListQuery) ([]domain.History, int, error)
}

type service struct {
	logs      logStore
	histories historyStore
	now       func() time.Time
}

type ServiceDeps struct {
	LogRepo     logStore
	HistoryRepo historyStore
	Clock       func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{logs: deps.LogRepo, histories: deps.HistoryRepo, now: deps.Clock}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) Record(ctx context.Context, level, actor string, details map[string]any) {
	now := s.now().UTC()
	entry := &domain.ActivityLog{
		LogID:     id.NewAt(now),
		Type:      level,
		CreatedBy: actor,
		Details:   details,
		CreatedAt: now,
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()
	if err := s.logs.Create(ctx, entry); err != nil {
		slog.Warn("failed to write activity log", "actor", actor, "type", level, "err", err)
	}
}

func (s *service) RecordHistory(ctx context.Context, h *domain.History) error {
	if h.HistoryID == "" {
		h.HistoryID = id.NewAt(s.now())
	}
	if h.Timestamp.IsZero() {
		h.Timestamp = s.now().UTC()
	}
	return s.histories.Create(ctx, h)
}

func (s *service) ListLogs(ctx context.Context, q domain.ListQuery) ([]domain.ActivityLog, domain.Pagination, error) {
	q = q.Normalize("-created_at")
	items, total, err := s.logs.List(ctx, q)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return items, domain.NewPagination(q.Page, q.Limit, total), nil
}

func (s *service) GetLog(ctx context.Context, logID string) (*domain.ActivityLog, error) {
	return s.logs.Get(ctx, logID)
}

func (s *service) ListHistories(ctx context.Context, q domain.ListQuery) ([]domain.History, domain.Pagination, error) {
	q = q.Normalize("-timestamp")
	items, total, err := s.histories.List(ctx, q)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return items, domain.NewPagination(q.Page, q.Limit, total), nil
}

func (s *service) GetHistory(ctx context.Context, historyID string) (*domain.History, error) {
	return s.histories.Get(ctx, historyID)
}
