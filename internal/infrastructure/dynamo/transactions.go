package dynamo

import (
	"context"

	"github.com/documentor-api/internal/domain"
)

// TransactionRepo stores payment records. Transactions are never deleted.
type TransactionRepo struct {
	t table[domain.Transaction]
}

func NewTransactionRepo(api API, tableName string) *TransactionRepo {
	return &TransactionRepo{t: table[domain.Transaction]{
		api:         api,
		name:        tableName,
		entity:      "transaction",
		pk:          "transaction_id",
		search:      []string{"stripe_payment_intent_id", "stripe_invoice_id"},
		defaultSort: "-timestamp",
	}}
}

func (r *TransactionRepo) Create(ctx context.Context, v *domain.Transaction) error { return r.t.create(ctx, v) }

func (r *TransactionRepo) Get(ctx context.Context, id string) (*domain.Transaction, error) { return r.t.get(ctx, id) }

func (r *TransactionRepo) Update(ctx context.Context, id string, updates map[string]interface{}) (*domain.Transaction, error) {
	return r.t.update(ctx, id, updates)
}

func (r *TransactionRepo) List(ctx context.Context, q domain.ListQuery) ([]domain.Transaction, int, error) {
	return r.t.list(ctx, q)
}

func (r *TransactionRepo) Count(ctx context.Context, filters map[string]any) (int, error) {
	return r.t.count(ctx, filters)
}
