package order

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storecore/backend/internal/application/txn"
	"github.com/storecore/backend/internal/domain/order"
	"github.com/storecore/backend/internal/domain/payment"
	"github.com/storecore/backend/internal/domain/shared"
)

// OrderService handles online checkout and fulfillment transitions.
// Online orders never deduct stock here: availability is checked
// advisorily at checkout, and the deduction happens when the payment
// confirms (reconciliation layer).
type OrderService struct {
	scope          txn.Scope
	orderRepo      order.Repository
	deliveryFee    decimal.Decimal
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
}

// NewOrderService creates a new OrderService. deliveryFee is the flat
// home-delivery fee from configuration; store pickup is free.
func NewOrderService(scope txn.Scope, orderRepo order.Repository, deliveryFee decimal.Decimal, logger *zap.Logger) *OrderService {
	return &OrderService{
		scope:       scope,
		orderRepo:   orderRepo,
		deliveryFee: deliveryFee,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for post-commit events
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateOrder places an online checkout order. The order starts
// PENDING/PENDING together with a pending payment transaction carrying the
// provider reference; the webhook or staff verification later confirms it.
func (s *OrderService) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*OrderResponse, error) {
	deliveryMethod := order.DeliveryMethod(cmd.DeliveryMethod)
	if !deliveryMethod.IsValid() {
		return nil, shared.NewDomainError("INVALID_DELIVERY_METHOD", "Invalid delivery method")
	}
	if len(cmd.Items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Order must contain at least one item")
	}
	if cmd.MobileMoney.Provider == "" || cmd.MobileMoney.PhoneNumber == "" || cmd.MobileMoney.Reference == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_DETAILS", "Mobile money provider, phone number and reference are required")
	}

	deliveryFee := decimal.Zero
	if deliveryMethod == order.DeliveryMethodHomeDelivery {
		deliveryFee = s.deliveryFee
	}

	var created *order.Order
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		orderNumber, err := repos.Orders().GenerateOrderNumber(ctx)
		if err != nil {
			return err
		}

		o, err := order.NewOnlineOrder(
			orderNumber,
			cmd.CustomerID,
			order.PaymentMethodMobileMoney,
			deliveryMethod,
			cmd.Address.ToDomain(),
			deliveryFee,
		)
		if err != nil {
			return err
		}

		for _, line := range cmd.Items {
			item, err := buildOrderItem(ctx, repos, line.VariantID, line.Quantity)
			if err != nil {
				return err
			}
			if err := o.AddItem(item); err != nil {
				return err
			}
		}

		if err := repos.Orders().Save(ctx, o); err != nil {
			return err
		}

		tx, err := payment.NewTransaction(
			o.ID,
			o.Total,
			order.PaymentMethodMobileMoney,
			cmd.MobileMoney.Provider,
			cmd.MobileMoney.Reference,
		)
		if err != nil {
			return err
		}
		if err := repos.Transactions().Save(ctx, tx); err != nil {
			return err
		}

		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, created)
	return ToOrderResponse(created), nil
}

// buildOrderItem resolves a variant and product, checks availability
// advisorily, and snapshots the line. Stock is NOT deducted here.
func buildOrderItem(ctx context.Context, repos txn.Repositories, variantID uuid.UUID, quantity int) (*order.OrderItem, error) {
	variant, err := repos.Variants().FindByID(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if variant == nil || !variant.IsActive() {
		return nil, shared.NewDomainError("INVALID_VARIANT", fmt.Sprintf("Variant %s is unknown or inactive", variantID))
	}
	if !variant.CanFulfill(quantity) {
		return nil, shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Insufficient stock for %s: %d available", variant.SKU, variant.StockQuantity))
	}

	product, err := repos.Products().FindByID(ctx, variant.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive() {
		return nil, shared.NewDomainError("INVALID_VARIANT", fmt.Sprintf("Product for variant %s is unavailable", variant.SKU))
	}

	unitPrice := product.BasePrice.Add(variant.AdditionalPrice)
	return order.NewOrderItem(variant.ID, product.ID, product.Name, variant.SKU, variant.Details(), quantity, unitPrice)
}

// GetByID returns an order by ID
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.findOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToOrderResponse(o), nil
}

// GetByNumber returns an order by its unique number
func (s *OrderService) GetByNumber(ctx context.Context, orderNumber string) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, shared.ErrNotFound
	}
	return ToOrderResponse(o), nil
}

// List returns orders with filtering and pagination
func (s *OrderService) List(ctx context.Context, query ListOrdersQuery) ([]OrderResponse, int64, error) {
	filter := shared.DefaultFilter()
	if query.Page > 0 {
		filter.Page = query.Page
	}
	if query.PageSize > 0 {
		filter.PageSize = query.PageSize
	}
	filter.Filters = map[string]interface{}{}
	if query.Status != nil {
		status := order.OrderStatus(*query.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Invalid order status filter")
		}
		filter.Filters["status"] = status.String()
	}
	if query.PaymentStatus != nil {
		ps := order.PaymentStatus(*query.PaymentStatus)
		if !ps.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Invalid payment status filter")
		}
		filter.Filters["payment_status"] = ps.String()
	}
	if query.Source != nil {
		src := order.Source(*query.Source)
		if !src.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_SOURCE", "Invalid order source filter")
		}
		filter.Filters["source"] = src.String()
	}
	if query.CustomerID != nil {
		filter.Filters["customer_id"] = *query.CustomerID
	}
	if query.StartDate != nil {
		filter.Filters["start_date"] = *query.StartDate
	}
	if query.EndDate != nil {
		filter.Filters["end_date"] = *query.EndDate
	}

	orders, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orderRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = *ToOrderResponse(&orders[i])
	}
	return responses, total, nil
}

// StatusSummary reports order counts per status
func (s *OrderService) StatusSummary(ctx context.Context) (*StatusSummaryResponse, error) {
	counts, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	summary := &StatusSummaryResponse{Counts: make(map[string]int64, len(counts))}
	for status, count := range counts {
		summary.Counts[status.String()] = count
		summary.Total += count
	}
	return summary, nil
}

// TransitionOrder routes a target status to the matching aggregate
// operation. SHIPPED is rejected here: shipping requires carrier and
// tracking data, so it goes through the shipment service.
func (s *OrderService) TransitionOrder(ctx context.Context, orderID uuid.UUID, cmd TransitionOrderCommand) (*OrderResponse, error) {
	target := order.OrderStatus(cmd.Target)
	if !target.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown target status")
	}
	if target == order.OrderStatusShipped {
		return nil, shared.NewDomainError("VALIDATION", "Shipping requires carrier and tracking data; create a shipment instead")
	}

	var updated *order.Order
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		o, err := repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return shared.ErrNotFound
		}

		switch target {
		case order.OrderStatusConfirmed:
			err = o.Confirm()
		case order.OrderStatusProcessing:
			err = o.StartProcessing()
		case order.OrderStatusReadyForPickup:
			err = o.MarkReadyForPickup()
		case order.OrderStatusDelivered:
			if o.DeliveryMethod == order.DeliveryMethodStorePickup {
				err = o.ConfirmPickup()
			} else {
				err = o.MarkDelivered()
			}
		case order.OrderStatusCancelled:
			err = o.Cancel(cmd.Reason)
		default:
			err = shared.NewDomainError("INVALID_STATE_TRANSITION",
				fmt.Sprintf("Cannot transition to %s directly", target))
		}
		if err != nil {
			return err
		}

		if err := repos.Orders().SaveWithLock(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, updated)
	return ToOrderResponse(updated), nil
}

func (s *OrderService) findOrder(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, shared.ErrNotFound
	}
	return o, nil
}

func (s *OrderService) publishEvents(ctx context.Context, o *order.Order) {
	if s.eventPublisher == nil || o == nil {
		return
	}
	events := o.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	// Publish after commit (errors are logged by the event bus, not propagated)
	_ = s.eventPublisher.Publish(ctx, events...)
	o.ClearDomainEvents()
}
