package dynamo

import (
	"context"

	"github.com/documentor-api/internal/domain"
)

type APIDocRepo struct {
	t table[domain.APIDoc]
}

func NewAPIDocRepo(api API, tableName string) *APIDocRepo {
	return &APIDocRepo{t: table[domain.APIDoc]{
		api:         api,
		name:        tableName,
		entity:      "api doc",
		pk:          "api_doc_id",
		search:      []string{"url", "description"},
		defaultSort: "-created_at",
		touch:       true,
	}}
}

func (r *APIDocRepo) Create(ctx context.Context, v *domain.APIDoc) error { return r.t.create(ctx, v) }

func (r *APIDocRepo) Get(ctx context.Context, id string) (*domain.APIDoc, error) { return r.t.get(ctx, id) }

func (r *APIDocRepo) Update(ctx context.Context, id string, updates map[string]interface{}) (*domain.APIDoc, error) {
	return r.t.update(ctx, id, updates)
}

func (r *APIDocRepo) Delete(ctx context.Context, id string) error { return r.t.delete(ctx, id) }

func (r *APIDocRepo) List(ctx context.Context, q domain.ListQuery) ([]domain.APIDoc, int, error) {
	return r.t.list(ctx, q)
}

func (r *APIDocRepo) Count(ctx context.Context, filters map[string]any) (int, error) {
	return r.t.count(ctx, filters)
}
