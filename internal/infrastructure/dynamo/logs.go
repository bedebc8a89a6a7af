package dynamo

import (
	"context"

	"github.com/documentor-api/internal/domain"
)

// LogRepo persists the audit trail shown in the admin log viewer.
type LogRepo struct {
	t table[domain.ActivityLog]
}

func NewLogRepo(api API, tableName string) *LogRepo {
	return &LogRepo{t: table[domain.ActivityLog]{
		api:         api,
		name:        tableName,
		entity:      "log",
		pk:          "log_id",
		search:      []string{"type", "created_by"},
		defaultSort: "-created_at",
	}}
}

func (r *LogRepo) Create(ctx context.Context, v *domain.ActivityLog) error { return r.t.create(ctx, v) }

func (r *LogRepo) Get(ctx context.Context, id string) (*domain.ActivityLog, error) { return r.t.get(ctx, id) }

func (r *LogRepo) List(ctx context.Context, q domain.ListQuery) ([]domain.ActivityLog, int, error) {
	return r.t.list(ctx, q)
}

func (r *LogRepo) Count(ctx context.Context, filters map[string]any) (int, error) {
	return r.t.count(ctx, filters)
}
