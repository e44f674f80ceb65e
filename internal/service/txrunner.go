package service

import (
	"context"

	"alertdesk.app/intake/core/db"
	"alertdesk.app/intake/internal/store"
)

// StoreProvider exposes only the stores needed by a transactional operation.
type StoreProvider interface {
	Integrations() store.IntegrationStore
	FilterRules() store.FilterRuleStore
	FieldMappings() store.FieldMappingStore
}

// TxRunner runs functions within a transaction and provides stores bound to that transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(stores StoreProvider) error) error
}

type dbTxRunner struct {
	db *db.DB
}

// NewTxRunner builds a TxRunner backed by the core DB.
func NewTxRunner(db *db.DB) TxRunner {
	return &dbTxRunner{db: db}
}

func (r *dbTxRunner) WithTx(ctx context.Context, fn func(stores StoreProvider) error) error {
	return r.db.WithTx(ctx, func(q db.DBTX) error {
		return fn(store.NewStores(q))
	})
}
