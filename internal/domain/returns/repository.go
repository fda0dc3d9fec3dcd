package returns

import (
	"context"

	"github.com/google/uuid"
	"github.com/storecore/backend/internal/domain/shared"
)

// Repository defines the interface for return persistence
type Repository interface {
	// FindByID finds a return by ID, items included
	FindByID(ctx context.Context, id uuid.UUID) (*Return, error)

	// FindByRMANumber finds a return by its unique RMA number
	FindByRMANumber(ctx context.Context, rmaNumber string) (*Return, error)

	// FindByOrder finds all returns raised against an order
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]Return, error)

	// FindAll finds returns with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Return, error)

	// FindByStatus finds returns by status
	FindByStatus(ctx context.Context, status Status, filter shared.Filter) ([]Return, error)

	// Save creates or updates a return together with its items
	Save(ctx context.Context, r *Return) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, r *Return) error

	// Count counts returns matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsByRMANumber checks if an RMA number is already issued
	ExistsByRMANumber(ctx context.Context, rmaNumber string) (bool, error)

	// GenerateRMANumber issues the next RMA-YYYYMMDD-NNNN number
	GenerateRMANumber(ctx context.Context) (string, error)
}
