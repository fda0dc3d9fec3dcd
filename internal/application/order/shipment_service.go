package order

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storecore/backend/internal/application/txn"
	"github.com/storecore/backend/internal/domain/order"
	"github.com/storecore/backend/internal/domain/shared"
)

// ShipmentService dispatches home-delivery orders. Creating a shipment and
// marking the order SHIPPED happen in one transactional unit, as do
// delivery confirmation on both aggregates.
type ShipmentService struct {
	scope          txn.Scope
	shipmentRepo   order.ShipmentRepository
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
}

// NewShipmentService creates a new ShipmentService
func NewShipmentService(scope txn.Scope, shipmentRepo order.ShipmentRepository, logger *zap.Logger) *ShipmentService {
	return &ShipmentService{
		scope:        scope,
		shipmentRepo: shipmentRepo,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for post-commit events
func (s *ShipmentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateShipment creates a shipment for a PROCESSING home-delivery order
// and transitions the order to SHIPPED atomically. The delivery address is
// snapshotted from the order.
func (s *ShipmentService) CreateShipment(ctx context.Context, cmd CreateShipmentCommand) (*ShipmentResponse, error) {
	var created *order.Shipment
	var shipped *order.Order

	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		o, err := repos.Orders().FindByID(ctx, cmd.OrderID)
		if err != nil {
			return err
		}
		if o == nil {
			return shared.ErrNotFound
		}
		if o.DeliveryMethod != order.DeliveryMethodHomeDelivery {
			return shared.NewDomainError("INVALID_DELIVERY_METHOD", "Only home-delivery orders can be shipped")
		}
		if o.ShippingAddress == nil {
			return shared.NewDomainError("INVALID_ADDRESS", "Order has no shipping address")
		}

		existing, err := repos.Shipments().FindByOrder(ctx, o.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return shared.NewDomainError("ALREADY_EXISTS", "Order already has a shipment")
		}

		if err := o.MarkShipped(); err != nil {
			return err
		}

		shipment, err := order.NewShipment(o.ID, cmd.Carrier, cmd.TrackingNumber, *o.ShippingAddress)
		if err != nil {
			return err
		}

		if err := repos.Shipments().Save(ctx, shipment); err != nil {
			return err
		}
		if err := repos.Orders().SaveWithLock(ctx, o); err != nil {
			return err
		}

		created = shipment
		shipped = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishOrderEvents(ctx, shipped)
	return ToShipmentResponse(created), nil
}

// MarkDelivered confirms delivery: the shipment gets its actual delivery
// timestamp and the order completes, atomically.
func (s *ShipmentService) MarkDelivered(ctx context.Context, shipmentID uuid.UUID) (*ShipmentResponse, error) {
	var delivered *order.Shipment
	var completed *order.Order

	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		shipment, err := repos.Shipments().FindByID(ctx, shipmentID)
		if err != nil {
			return err
		}
		if shipment == nil {
			return shared.ErrNotFound
		}

		o, err := repos.Orders().FindByID(ctx, shipment.OrderID)
		if err != nil {
			return err
		}
		if o == nil {
			return shared.ErrNotFound
		}

		if err := shipment.MarkDelivered(); err != nil {
			return err
		}
		if err := o.MarkDelivered(); err != nil {
			return err
		}

		if err := repos.Shipments().Save(ctx, shipment); err != nil {
			return err
		}
		if err := repos.Orders().SaveWithLock(ctx, o); err != nil {
			return err
		}

		delivered = shipment
		completed = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishOrderEvents(ctx, completed)
	return ToShipmentResponse(delivered), nil
}

// GetByID returns a shipment by ID
func (s *ShipmentService) GetByID(ctx context.Context, id uuid.UUID) (*ShipmentResponse, error) {
	shipment, err := s.shipmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, shared.ErrNotFound
	}
	return ToShipmentResponse(shipment), nil
}

// GetByOrder returns the shipment for an order
func (s *ShipmentService) GetByOrder(ctx context.Context, orderID uuid.UUID) (*ShipmentResponse, error) {
	shipment, err := s.shipmentRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, shared.ErrNotFound
	}
	return ToShipmentResponse(shipment), nil
}

// List returns shipments with pagination
func (s *ShipmentService) List(ctx context.Context, filter shared.Filter) ([]ShipmentResponse, int64, error) {
	shipments, err := s.shipmentRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.shipmentRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ShipmentResponse, len(shipments))
	for i := range shipments {
		responses[i] = *ToShipmentResponse(&shipments[i])
	}
	return responses, total, nil
}

func (s *ShipmentService) publishOrderEvents(ctx context.Context, o *order.Order) {
	if s.eventPublisher == nil || o == nil {
		return
	}
	events := o.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	o.ClearDomainEvents()
}
