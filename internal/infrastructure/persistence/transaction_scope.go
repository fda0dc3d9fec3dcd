package persistence

import (
	"context"

	"github.com/storecore/backend/internal/application/txn"
	"github.com/storecore/backend/internal/domain/catalog"
	"github.com/storecore/backend/internal/domain/inventory"
	"github.com/storecore/backend/internal/domain/order"
	"github.com/storecore/backend/internal/domain/payment"
	"github.com/storecore/backend/internal/domain/returns"
	"gorm.io/gorm"
)

// GormScope implements txn.Scope using GORM transactions. POS sales,
// return receipts, and payment reconciliation each run their whole unit
// through one Execute call, so every repository write inside commits or
// rolls back together.
type GormScope struct {
	db *gorm.DB
}

// NewGormScope creates a new GormScope
func NewGormScope(db *gorm.DB) *GormScope {
	return &GormScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormScope) Execute(ctx context.Context, fn func(repos txn.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepositories{tx: tx})
	})
}

// gormRepositories provides access to all repositories within a transaction
type gormRepositories struct {
	tx *gorm.DB
}

// Products returns the product repository scoped to the current transaction
func (r *gormRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// Variants returns the variant repository scoped to the current transaction
func (r *gormRepositories) Variants() catalog.VariantRepository {
	return NewGormVariantRepository(r.tx)
}

// Ledger returns the ledger repository scoped to the current transaction
func (r *gormRepositories) Ledger() inventory.LedgerRepository {
	return NewGormLedgerRepository(r.tx)
}

// Orders returns the order repository scoped to the current transaction
func (r *gormRepositories) Orders() order.Repository {
	return NewGormOrderRepository(r.tx)
}

// Shipments returns the shipment repository scoped to the current transaction
func (r *gormRepositories) Shipments() order.ShipmentRepository {
	return NewGormShipmentRepository(r.tx)
}

// Transactions returns the payment transaction repository scoped to the current transaction
func (r *gormRepositories) Transactions() payment.Repository {
	return NewGormTransactionRepository(r.tx)
}

// Returns returns the return repository scoped to the current transaction
func (r *gormRepositories) Returns() returns.Repository {
	return NewGormReturnRepository(r.tx)
}

// Ensure GormScope implements txn.Scope
var _ txn.Scope = (*GormScope)(nil)

// Ensure gormRepositories implements txn.Repositories
var _ txn.Repositories = (*gormRepositories)(nil)
