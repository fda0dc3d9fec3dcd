package txn

import (
	"context"

	"github.com/storecore/backend/internal/domain/catalog"
	"github.com/storecore/backend/internal/domain/inventory"
	"github.com/storecore/backend/internal/domain/order"
	"github.com/storecore/backend/internal/domain/payment"
	"github.com/storecore/backend/internal/domain/returns"
)

// Scope provides transactional access to the storecore repositories.
// When a function is executed within a scope, all repository operations
// are part of the same database transaction and commit or roll back
// atomically. POS sales, return receipts, and payment reconciliation all
// compose stock changes with their own writes through this interface, so
// a failure at any step leaves zero partial state.
type Scope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories provides access to all repositories within a transaction.
// Every repository returned shares the same underlying database
// transaction.
type Repositories interface {
	// Products returns the product repository scoped to the current transaction
	Products() catalog.ProductRepository
	// Variants returns the variant repository scoped to the current transaction
	Variants() catalog.VariantRepository
	// Ledger returns the ledger repository scoped to the current transaction
	Ledger() inventory.LedgerRepository
	// Orders returns the order repository scoped to the current transaction
	Orders() order.Repository
	// Shipments returns the shipment repository scoped to the current transaction
	Shipments() order.ShipmentRepository
	// Transactions returns the payment transaction repository scoped to the current transaction
	Transactions() payment.Repository
	// Returns returns the return repository scoped to the current transaction
	Returns() returns.Repository
}

// NoOpScope is a scope that doesn't actually use transactions. Useful for
// tests and for callers that already run inside a transaction.
type NoOpScope struct {
	ProductRepo     catalog.ProductRepository
	VariantRepo     catalog.VariantRepository
	LedgerRepo      inventory.LedgerRepository
	OrderRepo       order.Repository
	ShipmentRepo    order.ShipmentRepository
	TransactionRepo payment.Repository
	ReturnRepo      returns.Repository
}

// Execute runs the function without a real transaction.
func (s *NoOpScope) Execute(_ context.Context, fn func(repos Repositories) error) error {
	return fn(s)
}

// Products returns the product repository.
func (s *NoOpScope) Products() catalog.ProductRepository {
	return s.ProductRepo
}

// Variants returns the variant repository.
func (s *NoOpScope) Variants() catalog.VariantRepository {
	return s.VariantRepo
}

// Ledger returns the ledger repository.
func (s *NoOpScope) Ledger() inventory.LedgerRepository {
	return s.LedgerRepo
}

// Orders returns the order repository.
func (s *NoOpScope) Orders() order.Repository {
	return s.OrderRepo
}

// Shipments returns the shipment repository.
func (s *NoOpScope) Shipments() order.ShipmentRepository {
	return s.ShipmentRepo
}

// Transactions returns the payment transaction repository.
func (s *NoOpScope) Transactions() payment.Repository {
	return s.TransactionRepo
}

// Returns returns the return repository.
func (s *NoOpScope) Returns() returns.Repository {
	return s.ReturnRepo
}

// Ensure NoOpScope implements both interfaces
var _ Scope = (*NoOpScope)(nil)
var _ Repositories = (*NoOpScope)(nil)
