package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storecore/backend/internal/domain/shared"
)

// Repository defines the interface for order persistence. Orders are never
// deleted: they are a financial record, so the interface has no Delete.
type Repository interface {
	// FindByID finds an order by ID, items included
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order by its unique number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// FindAll finds orders with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// FindByCustomer finds orders for a customer
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Order, error)

	// FindByStatus finds orders by status
	FindByStatus(ctx context.Context, status OrderStatus, filter shared.Filter) ([]Order, error)

	// Save creates or updates an order together with its items
	Save(ctx context.Context, o *Order) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, o *Order) error

	// Count counts orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByStatus counts orders per status for the summary view
	CountByStatus(ctx context.Context) (map[OrderStatus]int64, error)

	// ExistsByOrderNumber checks if an order number is already issued
	ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error)

	// GenerateOrderNumber issues the next ORD-YYYYMMDD-NNNN number.
	// Numbers are stable once issued and never reused; a unique constraint
	// backs collisions under concurrent POS terminals.
	GenerateOrderNumber(ctx context.Context) (string, error)
}

// ShipmentRepository defines the interface for shipment persistence
type ShipmentRepository interface {
	// FindByID finds a shipment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Shipment, error)

	// FindByOrder finds the shipment for an order, nil if none exists
	FindByOrder(ctx context.Context, orderID uuid.UUID) (*Shipment, error)

	// FindAll finds shipments with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Shipment, error)

	// Save creates or updates a shipment
	Save(ctx context.Context, s *Shipment) error

	// Count counts shipments matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// Filter extends shared.Filter with order-specific filters
type Filter struct {
	shared.Filter
	Status        *OrderStatus
	PaymentStatus *PaymentStatus
	CustomerID    *uuid.UUID
	Source        *Source
	StartDate     *time.Time
	EndDate       *time.Time
}
