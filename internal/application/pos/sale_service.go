package pos

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appinventory "github.com/storecore/backend/internal/application/inventory"
	apporder "github.com/storecore/backend/internal/application/order"
	"github.com/storecore/backend/internal/application/txn"
	"github.com/storecore/backend/internal/domain/inventory"
	"github.com/storecore/backend/internal/domain/order"
	"github.com/storecore/backend/internal/domain/payment"
	"github.com/storecore/backend/internal/domain/shared"
	"github.com/storecore/backend/internal/infrastructure/telemetry"
)

// SaleService executes point-of-sale checkouts. A sale is all-or-nothing:
// the order, its item snapshots, one ledger entry per line, and the payment
// transaction commit in a single transactional unit, or none of them do.
type SaleService struct {
	scope          txn.Scope
	stockService   *appinventory.StockService
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
}

// NewSaleService creates a new SaleService
func NewSaleService(scope txn.Scope, stockService *appinventory.StockService, logger *zap.Logger) *SaleService {
	return &SaleService{
		scope:        scope,
		stockService: stockService,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for post-commit events
func (s *SaleService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// resolvedLine is a checkout line with its catalog snapshot attached
type resolvedLine struct {
	item      *order.OrderItem
	variantID uuid.UUID
	quantity  int
	sku       string
}

// ExecuteSale runs a POS checkout. Cash sales complete immediately
// (PAID, change due returned); mobile-money sales persist PENDING until the
// provider confirms through the reconciliation layer.
func (s *SaleService) ExecuteSale(ctx context.Context, cmd ExecuteSaleCommand) (*SaleResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "pos_sale", "execute",
		telemetry.WithAttribute("payment_method", cmd.PaymentMethod),
		telemetry.WithAttribute("items_count", len(cmd.Items)),
	)
	defer span.End()

	method := order.PaymentMethod(cmd.PaymentMethod)
	if err := validateSaleCommand(cmd, method); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var result *SaleResult
	var committed *order.Order

	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		lines, subtotal, err := s.resolveLines(ctx, repos, cmd.Items)
		if err != nil {
			return err
		}

		var changeDue *decimal.Decimal
		if method == order.PaymentMethodCash {
			received := *cmd.PaymentDetails.AmountReceived
			if received.LessThan(subtotal) {
				return shared.ErrInsufficientPayment
			}
			change := received.Sub(subtotal)
			changeDue = &change
		}

		orderNumber, err := repos.Orders().GenerateOrderNumber(ctx)
		if err != nil {
			return err
		}

		paymentStatus := order.PaymentStatusPaid
		if method == order.PaymentMethodMobileMoney {
			paymentStatus = order.PaymentStatusPending
		}

		o, err := order.NewInStoreOrder(orderNumber, cmd.CustomerID, method, paymentStatus)
		if err != nil {
			return err
		}
		for _, line := range lines {
			if err := o.AddItem(line.item); err != nil {
				return err
			}
		}
		if err := repos.Orders().Save(ctx, o); err != nil {
			return err
		}

		// deduct stock per line through the single mutation path
		for _, line := range lines {
			_, err := s.stockService.AdjustWithRepos(ctx, repos, appinventory.AdjustStockCommand{
				VariantID:      line.variantID,
				QuantityChange: -line.quantity,
				ChangeType:     inventory.ChangeTypeSale,
				Reason:         fmt.Sprintf("POS sale %s", orderNumber),
				PerformedBy:    cmd.CashierID,
				OrderID:        &o.ID,
			})
			if err != nil {
				return err
			}
		}

		tx, err := s.buildTransaction(o, method, cmd)
		if err != nil {
			return err
		}
		if err := repos.Transactions().Save(ctx, tx); err != nil {
			return err
		}

		committed = o
		result = &SaleResult{
			Order:         apporder.ToOrderResponse(o),
			TransactionID: tx.ID,
			ChangeDue:     changeDue,
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, committed.ID,
		telemetry.SpanAttrOrderNumber, committed.OrderNumber,
		telemetry.SpanAttrAmount, committed.Total.String(),
	)

	if s.eventPublisher != nil && committed != nil {
		events := committed.GetDomainEvents()
		if len(events) > 0 {
			_ = s.eventPublisher.Publish(ctx, events...)
			committed.ClearDomainEvents()
		}
	}

	return result, nil
}

// resolveLines loads each variant and product, confirms availability, and
// snapshots the lines. The first failing line aborts the whole sale.
func (s *SaleService) resolveLines(ctx context.Context, repos txn.Repositories, items []SaleItem) ([]resolvedLine, decimal.Decimal, error) {
	lines := make([]resolvedLine, 0, len(items))
	subtotal := decimal.Zero

	for _, saleItem := range items {
		variant, err := repos.Variants().FindByID(ctx, saleItem.VariantID)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if variant == nil || !variant.IsActive() {
			return nil, decimal.Zero, shared.NewDomainError("INVALID_VARIANT",
				fmt.Sprintf("Variant %s is unknown or inactive", saleItem.VariantID))
		}
		if !variant.CanFulfill(saleItem.Quantity) {
			return nil, decimal.Zero, shared.NewDomainError("INSUFFICIENT_STOCK",
				fmt.Sprintf("Insufficient stock for %s: %d available", variant.SKU, variant.StockQuantity))
		}

		product, err := repos.Products().FindByID(ctx, variant.ProductID)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if product == nil || !product.IsActive() {
			return nil, decimal.Zero, shared.NewDomainError("INVALID_VARIANT",
				fmt.Sprintf("Product for variant %s is unavailable", variant.SKU))
		}

		unitPrice := product.BasePrice.Add(variant.AdditionalPrice)
		item, err := order.NewOrderItem(variant.ID, product.ID, product.Name, variant.SKU, variant.Details(), saleItem.Quantity, unitPrice)
		if err != nil {
			return nil, decimal.Zero, err
		}

		lines = append(lines, resolvedLine{
			item:      item,
			variantID: variant.ID,
			quantity:  saleItem.Quantity,
			sku:       variant.SKU,
		})
		subtotal = subtotal.Add(item.LineTotal)
	}

	return lines, subtotal, nil
}

func (s *SaleService) buildTransaction(o *order.Order, method order.PaymentMethod, cmd ExecuteSaleCommand) (*payment.Transaction, error) {
	if method == order.PaymentMethodCash {
		return payment.NewCompletedTransaction(o.ID, o.Total, method, cmd.CashierID)
	}
	return payment.NewTransaction(o.ID, o.Total, method, cmd.PaymentDetails.Provider, cmd.PaymentDetails.Reference)
}

func validateSaleCommand(cmd ExecuteSaleCommand, method order.PaymentMethod) error {
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Invalid payment method")
	}
	if cmd.CashierID == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Cashier ID is required")
	}
	if len(cmd.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Sale must contain at least one item")
	}
	for _, item := range cmd.Items {
		if item.Quantity <= 0 {
			return shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be positive")
		}
	}

	switch method {
	case order.PaymentMethodCash:
		if cmd.PaymentDetails.AmountReceived == nil {
			return shared.NewDomainError("INVALID_PAYMENT_DETAILS", "Cash sales require the amount received")
		}
	case order.PaymentMethodMobileMoney:
		if cmd.PaymentDetails.Provider == "" || cmd.PaymentDetails.PhoneNumber == "" || cmd.PaymentDetails.Reference == "" {
			return shared.NewDomainError("INVALID_PAYMENT_DETAILS", "Mobile money sales require provider, phone number and reference")
		}
	}
	return nil
}
