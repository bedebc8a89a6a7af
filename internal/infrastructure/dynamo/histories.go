package dynamo

import (
	"context"

	"github.com/documentor-api/internal/domain"
)

// HistoryRepo is append-only: conversions are recorded, never edited.
type HistoryRepo struct {
	t table[domain.History]
}

func NewHistoryRepo(api API, tableName string) *HistoryRepo {
	return &HistoryRepo{t: table[domain.History]{
		api:         api,
		name:        tableName,
		entity:      "history",
		pk:          "history_id",
		search:      []string{"req_text", "res_text"},
		defaultSort: "-timestamp",
	}}
}

func (r *HistoryRepo) Create(ctx context.Context, v *domain.History) error { return r.t.create(ctx, v) }

func (r *HistoryRepo) Get(ctx context.Context, id string) (*domain.History, error) { return r.t.get(ctx, id) }

func (r *HistoryRepo) List(ctx context.Context, q domain.ListQuery) ([]domain.History, int, error) {
	return r.t.list(ctx, q)
}

func (r *HistoryRepo) Count(ctx context.Context, filters map[string]any) (int, error) {
	return r.t.count(ctx, filters)
}
