package dynamo

import (
	"context"

	"github.com/documentor-api/internal/domain"
)

type PackageRepo struct {
	t table[domain.Package]
}

func NewPackageRepo(api API, tableName string) *PackageRepo {
	return &PackageRepo{t: table[domain.Package]{
		api:         api,
		name:        tableName,
		entity:      "package",
		pk:          "package_id",
		search:      []string{"name", "stripe_price_id"},
		defaultSort: "-created_at",
		touch:       true,
	}}
}

func (r *PackageRepo) Create(ctx context.Context, v *domain.Package) error { return r.t.create(ctx, v) }

func (r *PackageRepo) Get(ctx context.Context, id string) (*domain.Package, error) { return r.t.get(ctx, id) }

// GetByName scans for an exact name match.
func (r *PackageRepo) GetByName(ctx context.Context, name string) (*domain.Package, error) {
	return r.t.findOne(ctx, fieldName, name)
}

func (r *PackageRepo) Update(ctx context.Context, id string, updates map[string]interface{}) (*domain.Package, error) {
	return r.t.update(ctx, id, updates)
}

func (r *PackageRepo) Delete(ctx context.Context, id string) error { return r.t.delete(ctx, id) }

func (r *PackageRepo) List(ctx context.Context, q domain.ListQuery) ([]domain.Package, int, error) {
	return r.t.list(ctx, q)
}

func (r *PackageRepo) Count(ctx context.Context, filters map[string]any) (int, error) {
	return r.t.count(ctx, filters)
}
