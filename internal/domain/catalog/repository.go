package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/storecore/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindAll finds all products with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// FindActive finds all active products
	FindActive(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// Count counts products matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// VariantRepository defines the interface for product variant persistence.
// Variants are never hard-deleted: once an order item references a variant
// the row must survive for the order's lifetime, so there is no Delete.
type VariantRepository interface {
	// FindByID finds a variant by ID
	FindByID(ctx context.Context, id uuid.UUID) (*ProductVariant, error)

	// FindBySKU finds a variant by its unique SKU
	FindBySKU(ctx context.Context, sku string) (*ProductVariant, error)

	// FindByProduct finds all variants of a product
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]ProductVariant, error)

	// FindAll finds all variants with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]ProductVariant, error)

	// FindBelowThreshold finds active variants at or below their low-stock threshold
	FindBelowThreshold(ctx context.Context, filter shared.Filter) ([]ProductVariant, error)

	// Save creates or updates a variant
	Save(ctx context.Context, variant *ProductVariant) error

	// SaveWithLock saves with optimistic locking (version check).
	// Returns CONCURRENCY_CONFLICT if the stored version does not match.
	SaveWithLock(ctx context.Context, variant *ProductVariant) error

	// ExistsBySKU checks if a SKU is already taken
	ExistsBySKU(ctx context.Context, sku string) (bool, error)

	// Count counts variants matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
