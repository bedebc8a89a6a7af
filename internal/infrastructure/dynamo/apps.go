package dynamo

import (
	"context"

	"github.com/documentor-api/internal/domain"
)

// AppRepo stores client applications.
type AppRepo struct {
	t table[domain.App]
}

func NewAppRepo(api API, tableName string) *AppRepo {
	return &AppRepo{t: table[domain.App]{
		api:         api,
		name:        tableName,
		entity:      "app",
		pk:          "app_id",
		search:      []string{"name", "description"},
		defaultSort: "-created_at",
		touch:       true,
	}}
}

func (r *AppRepo) Create(ctx context.Context, v *domain.App) error { return r.t.create(ctx, v) }

func (r *AppRepo) Get(ctx context.Context, id string) (*domain.App, error) { return r.t.get(ctx, id) }

// GetByName scans for an exact name match.
func (r *AppRepo) GetByName(ctx context.Context, name string) (*domain.App, error) {
	return r.t.findOne(ctx, fieldName, name)
}

func (r *AppRepo) Update(ctx context.Context, id string, updates map[string]interface{}) (*domain.App, error) {
	return r.t.update(ctx, id, updates)
}

func (r *AppRepo) Delete(ctx context.Context, id string) error { return r.t.delete(ctx, id) }

func (r *AppRepo) List(ctx context.Context, q domain.ListQuery) ([]domain.App, int, error) {
	return r.t.list(ctx, q)
}

func (r *AppRepo) Count(ctx context.Context, filters map[string]any) (int, error) {
	return r.t.count(ctx, filters)
}
