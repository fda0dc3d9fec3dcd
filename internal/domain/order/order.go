package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storecore/backend/internal/domain/catalog"
	"github.com/storecore/backend/internal/domain/shared"
)

// OrderStatus represents the fulfillment status of an order
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "PENDING"
	OrderStatusConfirmed      OrderStatus = "CONFIRMED"
	OrderStatusProcessing     OrderStatus = "PROCESSING"
	OrderStatusReadyForPickup OrderStatus = "READY_FOR_PICKUP"
	OrderStatusShipped        OrderStatus = "SHIPPED"
	OrderStatusDelivered      OrderStatus = "DELIVERED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusReadyForPickup, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal returns true for states with no outgoing transitions
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status.
// CANCELLED is reachable from every non-terminal state.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if target == OrderStatusCancelled {
		return !s.IsTerminal()
	}
	switch s {
	case OrderStatusPending:
		return target == OrderStatusConfirmed
	case OrderStatusConfirmed:
		return target == OrderStatusProcessing
	case OrderStatusProcessing:
		return target == OrderStatusReadyForPickup || target == OrderStatusShipped
	case OrderStatusReadyForPickup:
		return target == OrderStatusDelivered
	case OrderStatusShipped:
		return target == OrderStatusDelivered
	}
	return false
}

// PaymentStatus represents the payment status of an order. It evolves
// independently of the fulfillment status but gates some transitions.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// PaymentMethod represents how an order is paid
type PaymentMethod string

const (
	PaymentMethodCash        PaymentMethod = "CASH"
	PaymentMethodMobileMoney PaymentMethod = "MOBILE_MONEY"
)

// IsValid checks if the method is a valid PaymentMethod
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCash || m == PaymentMethodMobileMoney
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// DeliveryMethod represents how an order reaches the customer
type DeliveryMethod string

const (
	DeliveryMethodHomeDelivery DeliveryMethod = "HOME_DELIVERY"
	DeliveryMethodStorePickup  DeliveryMethod = "STORE_PICKUP"
)

// IsValid checks if the method is a valid DeliveryMethod
func (m DeliveryMethod) IsValid() bool {
	return m == DeliveryMethodHomeDelivery || m == DeliveryMethodStorePickup
}

// String returns the string representation of DeliveryMethod
func (m DeliveryMethod) String() string {
	return string(m)
}

// Source represents the sales channel an order came through
type Source string

const (
	SourceOnline  Source = "ONLINE"
	SourceInStore Source = "IN_STORE"
)

// IsValid checks if the source is valid
func (s Source) IsValid() bool {
	return s == SourceOnline || s == SourceInStore
}

// String returns the string representation of Source
func (s Source) String() string {
	return string(s)
}

// ShippingAddress is the delivery address snapshot captured when a
// home-delivery order is placed. It stays frozen even if the customer
// later changes their saved addresses.
type ShippingAddress struct {
	RecipientName string `gorm:"type:varchar(100)" json:"recipient_name"`
	Phone         string `gorm:"type:varchar(30)" json:"phone"`
	Line1         string `gorm:"type:varchar(200)" json:"line1"`
	Line2         string `gorm:"type:varchar(200)" json:"line2,omitempty"`
	City          string `gorm:"type:varchar(100)" json:"city"`
	Region        string `gorm:"type:varchar(100)" json:"region,omitempty"`
	PostalCode    string `gorm:"type:varchar(20)" json:"postal_code,omitempty"`
}

// Validate checks the address has the fields delivery needs
func (a ShippingAddress) Validate() error {
	if a.RecipientName == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "Recipient name is required")
	}
	if a.Line1 == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "Address line is required")
	}
	if a.City == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "City is required")
	}
	return nil
}

// OrderItem represents a line item in an order. Product name, SKU, variant
// details and price are snapshots taken at time of sale and are intentionally
// immutable even if the catalog later changes.
type OrderItem struct {
	ID              uuid.UUID               `gorm:"type:uuid;primaryKey"`
	OrderID         uuid.UUID               `gorm:"type:uuid;not null;index"`
	VariantID       uuid.UUID               `gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID               `gorm:"type:uuid;not null"`
	ProductName     string                  `gorm:"type:varchar(200);not null"`
	SKU             string                  `gorm:"type:varchar(64);not null"`
	VariantDetails  catalog.VariantDetails  `gorm:"embedded;embeddedPrefix:variant_"`
	Quantity        int                     `gorm:"not null"`
	PriceAtPurchase decimal.Decimal         `gorm:"type:decimal(18,2);not null"`
	LineTotal       decimal.Decimal         `gorm:"type:decimal(18,2);not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// NewOrderItem creates a new order line item snapshot
func NewOrderItem(
	variantID, productID uuid.UUID,
	productName, sku string,
	details catalog.VariantDetails,
	quantity int,
	priceAtPurchase decimal.Decimal,
) (*OrderItem, error) {
	if variantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_VARIANT", "Variant ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if priceAtPurchase.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	now := time.Now()
	return &OrderItem{
		ID:              uuid.New(),
		VariantID:       variantID,
		ProductID:       productID,
		ProductName:     productName,
		SKU:             sku,
		VariantDetails:  details,
		Quantity:        quantity,
		PriceAtPurchase: priceAtPurchase,
		LineTotal:       priceAtPurchase.Mul(decimal.NewFromInt(int64(quantity))),
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Order is the purchase aggregate root. Orders are created once, then
// mutated only through the state machine and payment reconciliation; they
// are never deleted (financial record).
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber     string           `gorm:"type:varchar(30);not null;uniqueIndex"`
	CustomerID      *uuid.UUID       `gorm:"type:uuid;index"`
	Status          OrderStatus      `gorm:"type:varchar(20);not null;index"`
	PaymentMethod   PaymentMethod    `gorm:"type:varchar(20);not null"`
	PaymentStatus   PaymentStatus    `gorm:"type:varchar(20);not null;index"`
	DeliveryMethod  DeliveryMethod   `gorm:"type:varchar(20);not null"`
	Source          Source           `gorm:"type:varchar(10);not null;index"`
	Subtotal        decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	DeliveryFee     decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	Total           decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	ShippingAddress *ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_"`
	Items           []OrderItem      `gorm:"-"`
	CompletedAt     *time.Time       `gorm:"type:timestamptz"`
	CancelledAt     *time.Time       `gorm:"type:timestamptz"`
	CancelReason    string           `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOnlineOrder creates a new online checkout order. It starts PENDING
// with payment PENDING; stock is not deducted until the payment confirms.
func NewOnlineOrder(
	orderNumber string,
	customerID *uuid.UUID,
	paymentMethod PaymentMethod,
	deliveryMethod DeliveryMethod,
	address *ShippingAddress,
	deliveryFee decimal.Decimal,
) (*Order, error) {
	if err := validateOrderNumber(orderNumber); err != nil {
		return nil, err
	}
	if !paymentMethod.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Invalid payment method")
	}
	if !deliveryMethod.IsValid() {
		return nil, shared.NewDomainError("INVALID_DELIVERY_METHOD", "Invalid delivery method")
	}
	if deliveryFee.IsNegative() {
		return nil, shared.NewDomainError("INVALID_FEE", "Delivery fee cannot be negative")
	}
	if deliveryMethod == DeliveryMethodHomeDelivery {
		if address == nil {
			return nil, shared.NewDomainError("INVALID_ADDRESS", "Home delivery requires a shipping address")
		}
		if err := address.Validate(); err != nil {
			return nil, err
		}
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		CustomerID:        customerID,
		Status:            OrderStatusPending,
		PaymentMethod:     paymentMethod,
		PaymentStatus:     PaymentStatusPending,
		DeliveryMethod:    deliveryMethod,
		Source:            SourceOnline,
		Subtotal:          decimal.Zero,
		DeliveryFee:       deliveryFee,
		Total:             deliveryFee,
		ShippingAddress:   address,
		Items:             make([]OrderItem, 0),
	}

	order.AddDomainEvent(NewOrderCreatedEvent(order))

	return order, nil
}

// NewInStoreOrder creates a POS order. Payment is collected in person
// before persistence, so the order is born in the terminal DELIVERED state
// with completed_at stamped; there is no pending fulfillment window.
// Payment status is PAID for cash and PENDING for mobile money awaiting
// external confirmation.
func NewInStoreOrder(
	orderNumber string,
	customerID *uuid.UUID,
	paymentMethod PaymentMethod,
	paymentStatus PaymentStatus,
) (*Order, error) {
	if err := validateOrderNumber(orderNumber); err != nil {
		return nil, err
	}
	if !paymentMethod.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Invalid payment method")
	}
	if paymentStatus != PaymentStatusPaid && paymentStatus != PaymentStatusPending {
		return nil, shared.NewDomainError("INVALID_PAYMENT_STATUS", "In-store orders start paid or pending confirmation")
	}

	now := time.Now()
	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		CustomerID:        customerID,
		Status:            OrderStatusDelivered,
		PaymentMethod:     paymentMethod,
		PaymentStatus:     paymentStatus,
		DeliveryMethod:    DeliveryMethodStorePickup,
		Source:            SourceInStore,
		Subtotal:          decimal.Zero,
		DeliveryFee:       decimal.Zero,
		Total:             decimal.Zero,
		Items:             make([]OrderItem, 0),
		CompletedAt:       &now,
	}

	order.AddDomainEvent(NewOrderCreatedEvent(order))

	return order, nil
}

// AddItem attaches a line item snapshot and recalculates the totals.
// Online orders accept items only while PENDING; in-store orders assemble
// their items right after construction, inside the same transaction that
// persists them.
func (o *Order) AddItem(item *OrderItem) error {
	if o.Source == SourceOnline && o.Status != OrderStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Cannot add items to a placed order")
	}
	if o.Status == OrderStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot add items to a cancelled order")
	}
	for _, existing := range o.Items {
		if existing.VariantID == item.VariantID {
			return shared.NewDomainError("DUPLICATE_VARIANT", "Variant already in order, adjust its quantity instead")
		}
	}

	item.OrderID = o.ID
	o.Items = append(o.Items, *item)
	o.recalculateTotals()
	o.UpdatedAt = time.Now()

	return nil
}

// FindItem returns the order item with the given ID, or nil
func (o *Order) FindItem(itemID uuid.UUID) *OrderItem {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i]
		}
	}
	return nil
}

// Confirm transitions PENDING -> CONFIRMED
func (o *Order) Confirm() error {
	if !o.Status.CanTransitionTo(OrderStatusConfirmed) {
		return o.invalidTransition(OrderStatusConfirmed)
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot confirm order without items")
	}

	o.Status = OrderStatusConfirmed
	o.touch()

	o.AddDomainEvent(NewOrderConfirmedEvent(o))

	return nil
}

// StartProcessing transitions CONFIRMED -> PROCESSING
func (o *Order) StartProcessing() error {
	if !o.Status.CanTransitionTo(OrderStatusProcessing) {
		return o.invalidTransition(OrderStatusProcessing)
	}
	if err := o.ensureCanProgress(); err != nil {
		return err
	}

	o.Status = OrderStatusProcessing
	o.touch()

	return nil
}

// MarkReadyForPickup transitions PROCESSING -> READY_FOR_PICKUP for
// store-pickup orders
func (o *Order) MarkReadyForPickup() error {
	if !o.Status.CanTransitionTo(OrderStatusReadyForPickup) {
		return o.invalidTransition(OrderStatusReadyForPickup)
	}
	if o.DeliveryMethod != DeliveryMethodStorePickup {
		return shared.NewDomainError("INVALID_DELIVERY_METHOD", "Only store-pickup orders can be marked ready for pickup")
	}
	if err := o.ensureCanProgress(); err != nil {
		return err
	}

	o.Status = OrderStatusReadyForPickup
	o.touch()

	return nil
}

// MarkShipped transitions PROCESSING -> SHIPPED for home-delivery orders.
// Driven by shipment creation; the shipment comes into existence in the
// same transaction.
func (o *Order) MarkShipped() error {
	if !o.Status.CanTransitionTo(OrderStatusShipped) {
		return o.invalidTransition(OrderStatusShipped)
	}
	if o.DeliveryMethod != DeliveryMethodHomeDelivery {
		return shared.NewDomainError("INVALID_DELIVERY_METHOD", "Only home-delivery orders can be shipped")
	}
	if err := o.ensureCanProgress(); err != nil {
		return err
	}

	o.Status = OrderStatusShipped
	o.touch()

	o.AddDomainEvent(NewOrderShippedEvent(o))

	return nil
}

// MarkDelivered transitions SHIPPED -> DELIVERED (home delivery) and
// stamps completed_at
func (o *Order) MarkDelivered() error {
	if o.Status != OrderStatusShipped {
		return o.invalidTransition(OrderStatusDelivered)
	}

	now := time.Now()
	o.Status = OrderStatusDelivered
	o.CompletedAt = &now
	o.touch()

	o.AddDomainEvent(NewOrderDeliveredEvent(o))

	return nil
}

// ConfirmPickup transitions READY_FOR_PICKUP -> DELIVERED (store pickup)
// and stamps completed_at
func (o *Order) ConfirmPickup() error {
	if o.Status != OrderStatusReadyForPickup {
		return o.invalidTransition(OrderStatusDelivered)
	}

	now := time.Now()
	o.Status = OrderStatusDelivered
	o.CompletedAt = &now
	o.touch()

	o.AddDomainEvent(NewOrderDeliveredEvent(o))

	return nil
}

// Cancel cancels the order from any non-terminal state. Cancelling a paid
// order does not refund it here; the OrderCancelled event carries WasPaid
// so payment reconciliation can act on the refund obligation.
func (o *Order) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return o.invalidTransition(OrderStatusCancelled)
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	wasPaid := o.PaymentStatus == PaymentStatusPaid
	now := time.Now()
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.touch()

	o.AddDomainEvent(NewOrderCancelledEvent(o, wasPaid))

	return nil
}

// MarkPaid records a confirmed payment
func (o *Order) MarkPaid() error {
	if o.PaymentStatus == PaymentStatusPaid {
		return nil
	}
	if o.PaymentStatus == PaymentStatusRefunded {
		return shared.NewDomainError("INVALID_STATE", "Cannot mark a refunded order as paid")
	}

	o.PaymentStatus = PaymentStatusPaid
	o.touch()

	o.AddDomainEvent(NewOrderPaidEvent(o))

	return nil
}

// MarkPaymentFailed records a failed payment attempt
func (o *Order) MarkPaymentFailed() error {
	if o.PaymentStatus == PaymentStatusPaid || o.PaymentStatus == PaymentStatusRefunded {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot fail payment in %s status", o.PaymentStatus))
	}

	o.PaymentStatus = PaymentStatusFailed
	o.touch()

	return nil
}

// MarkRefunded records a completed refund. Stock is not re-credited here;
// that is the return subsystem's job if goods physically come back.
func (o *Order) MarkRefunded() error {
	if o.PaymentStatus != PaymentStatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Only paid orders can be refunded")
	}

	o.PaymentStatus = PaymentStatusRefunded
	o.touch()

	return nil
}

// IsDelivered returns true if the order reached its DELIVERED terminal state
func (o *Order) IsDelivered() bool {
	return o.Status == OrderStatusDelivered
}

// IsCancelled returns true if the order was cancelled
func (o *Order) IsCancelled() bool {
	return o.Status == OrderStatusCancelled
}

// IsTerminal returns true if the order is in a terminal state
func (o *Order) IsTerminal() bool {
	return o.Status.IsTerminal()
}

// ItemCount returns the number of line items
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// TotalQuantity returns the sum of all item quantities
func (o *Order) TotalQuantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// ensureCanProgress enforces the payment gate: an order must not progress
// past CONFIRMED while its payment has failed.
func (o *Order) ensureCanProgress() error {
	if o.PaymentStatus == PaymentStatusFailed {
		return shared.NewDomainError("INVALID_STATE", "Order cannot progress while payment has failed")
	}
	return nil
}

func (o *Order) invalidTransition(target OrderStatus) error {
	return shared.NewDomainError("INVALID_STATE_TRANSITION",
		fmt.Sprintf("Cannot transition order from %s to %s", o.Status, target))
}

func (o *Order) recalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.LineTotal)
	}
	o.Subtotal = subtotal
	o.Total = subtotal.Add(o.DeliveryFee)
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

func validateOrderNumber(orderNumber string) error {
	if orderNumber == "" {
		return shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 30 {
		return shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 30 characters")
	}
	return nil
}
