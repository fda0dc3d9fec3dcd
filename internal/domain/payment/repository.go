package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/storecore/backend/internal/domain/shared"
)

// Repository defines the interface for payment transaction persistence.
// Transactions can be superseded but never deleted, so there is no Delete.
type Repository interface {
	// FindByID finds a transaction by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// FindByReference finds a transaction by its external provider
	// reference. Returns nil without error when no transaction carries the
	// reference: unknown references are provider noise, not a failure.
	FindByReference(ctx context.Context, reference string) (*Transaction, error)

	// FindByOrder finds all payment attempts for an order, newest first
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]Transaction, error)

	// Save creates or updates a transaction
	Save(ctx context.Context, tx *Transaction) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, tx *Transaction) error

	// Count counts transactions matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
