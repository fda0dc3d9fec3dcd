package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storecore/backend/internal/domain/shared"
)

// LedgerRepository defines the interface for ledger entry persistence.
// The ledger is append-only: Create is the only write operation, there is
// deliberately no update or delete path.
type LedgerRepository interface {
	// FindByID finds a ledger entry by ID
	FindByID(ctx context.Context, id uuid.UUID) (*LedgerEntry, error)

	// FindByVariant finds entries for a variant, newest first
	FindByVariant(ctx context.Context, variantID uuid.UUID, filter shared.Filter) ([]LedgerEntry, error)

	// FindByOrder finds entries correlated to an order
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]LedgerEntry, error)

	// FindAll finds entries with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]LedgerEntry, error)

	// FindByDateRange finds entries within a date range
	FindByDateRange(ctx context.Context, start, end time.Time, filter shared.Filter) ([]LedgerEntry, error)

	// Create appends a new entry
	Create(ctx context.Context, entry *LedgerEntry) error

	// Count counts entries matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByVariant counts entries for a variant
	CountByVariant(ctx context.Context, variantID uuid.UUID) (int64, error)

	// SumQuantityChange sums the signed quantity changes for a variant.
	// Used to verify the materialized stock quantity against the ledger.
	SumQuantityChange(ctx context.Context, variantID uuid.UUID) (int, error)
}

// LedgerFilter extends shared.Filter with ledger-specific filters
type LedgerFilter struct {
	shared.Filter
	VariantID   *uuid.UUID
	OrderID     *uuid.UUID
	ChangeType  *ChangeType
	PerformedBy *uuid.UUID
	StartDate   *time.Time
	EndDate     *time.Time
}
