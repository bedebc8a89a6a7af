package dynamo

import (
	"context"

	"github.com/documentor-api/internal/domain"
)

type SubscriptionRepo struct {
	t table[domain.Subscription]
}

func NewSubscriptionRepo(api API, tableName string) *SubscriptionRepo {
	return &SubscriptionRepo{t: table[domain.Subscription]{
		api:         api,
		name:        tableName,
		entity:      "subscription",
		pk:          "subscription_id",
		search:      []string{"stripe_subscription_id"},
		defaultSort: "-start_date",
	}}
}

func (r *SubscriptionRepo) Create(ctx context.Context, v *domain.Subscription) error { return r.t.create(ctx, v) }

func (r *SubscriptionRepo) Get(ctx context.Context, id string) (*domain.Subscription, error) { return r.t.get(ctx, id) }

func (r *SubscriptionRepo) Update(ctx context.Context, id string, updates map[string]interface{}) (*domain.Subscription, error) {
	return r.t.update(ctx, id, updates)
}

func (r *SubscriptionRepo) List(ctx context.Context, q domain.ListQuery) ([]domain.Subscription, int, error) {
	return r.t.list(ctx, q)
}

func (r *SubscriptionRepo) Count(ctx context.Context, filters map[string]any) (int, error) {
	return r.t.count(ctx, filters)
}
