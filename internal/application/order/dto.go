package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storecore/backend/internal/domain/order"
)

// CheckoutItem is one line of an online checkout request
type CheckoutItem struct {
	VariantID uuid.UUID `json:"variant_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// ShippingAddressRequest is the structured delivery address for home delivery
type ShippingAddressRequest struct {
	RecipientName string `json:"recipient_name" binding:"required,max=100"`
	Phone         string `json:"phone" binding:"required,max=30"`
	Line1         string `json:"line1" binding:"required,max=200"`
	Line2         string `json:"line2" binding:"max=200"`
	City          string `json:"city" binding:"required,max=100"`
	Region        string `json:"region" binding:"max=100"`
	PostalCode    string `json:"postal_code" binding:"max=20"`
}

// ToDomain converts the request address to the domain value
func (r *ShippingAddressRequest) ToDomain() *order.ShippingAddress {
	if r == nil {
		return nil
	}
	return &order.ShippingAddress{
		RecipientName: r.RecipientName,
		Phone:         r.Phone,
		Line1:         r.Line1,
		Line2:         r.Line2,
		City:          r.City,
		Region:        r.Region,
		PostalCode:    r.PostalCode,
	}
}

// MobileMoneyDetails carries the provider handshake for an online checkout
type MobileMoneyDetails struct {
	Provider    string `json:"provider" binding:"required,max=50"`
	PhoneNumber string `json:"phone_number" binding:"required,max=32"`
	Reference   string `json:"reference" binding:"required,max=100"`
}

// CreateOrderCommand is the input for an online checkout
type CreateOrderCommand struct {
	CustomerID     *uuid.UUID              `json:"customer_id"`
	Items          []CheckoutItem          `json:"items" binding:"required,min=1,dive"`
	DeliveryMethod string                  `json:"delivery_method" binding:"required,oneof=HOME_DELIVERY STORE_PICKUP"`
	Address        *ShippingAddressRequest `json:"address"`
	MobileMoney    MobileMoneyDetails      `json:"mobile_money" binding:"required"`
}

// TransitionOrderCommand is the input for a fulfillment transition
type TransitionOrderCommand struct {
	Target string    `json:"target" binding:"required"`
	Actor  uuid.UUID `json:"-"`
	Reason string    `json:"reason" binding:"max=255"`
}

// OrderItemResponse is the read model for an order line
type OrderItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	VariantID       uuid.UUID       `json:"variant_id"`
	ProductID       uuid.UUID       `json:"product_id"`
	ProductName     string          `json:"product_name"`
	SKU             string          `json:"sku"`
	Size            string          `json:"size,omitempty"`
	Color           string          `json:"color,omitempty"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

// ShippingAddressResponse is the read model for a shipping address
type ShippingAddressResponse struct {
	RecipientName string `json:"recipient_name"`
	Phone         string `json:"phone"`
	Line1         string `json:"line1"`
	Line2         string `json:"line2,omitempty"`
	City          string `json:"city"`
	Region        string `json:"region,omitempty"`
	PostalCode    string `json:"postal_code,omitempty"`
}

// OrderResponse is the read model for an order
type OrderResponse struct {
	ID              uuid.UUID                `json:"id"`
	OrderNumber     string                   `json:"order_number"`
	CustomerID      *uuid.UUID               `json:"customer_id,omitempty"`
	Status          string                   `json:"status"`
	PaymentMethod   string                   `json:"payment_method"`
	PaymentStatus   string                   `json:"payment_status"`
	DeliveryMethod  string                   `json:"delivery_method"`
	Source          string                   `json:"source"`
	Subtotal        decimal.Decimal          `json:"subtotal"`
	DeliveryFee     decimal.Decimal          `json:"delivery_fee"`
	Total           decimal.Decimal          `json:"total"`
	Items           []OrderItemResponse      `json:"items"`
	ShippingAddress *ShippingAddressResponse `json:"shipping_address,omitempty"`
	CompletedAt     *time.Time               `json:"completed_at,omitempty"`
	CancelledAt     *time.Time               `json:"cancelled_at,omitempty"`
	CancelReason    string                   `json:"cancel_reason,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// ToOrderResponse converts a domain order to its read model
func ToOrderResponse(o *order.Order) *OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i := range o.Items {
		item := &o.Items[i]
		items[i] = OrderItemResponse{
			ID:              item.ID,
			VariantID:       item.VariantID,
			ProductID:       item.ProductID,
			ProductName:     item.ProductName,
			SKU:             item.SKU,
			Size:            item.VariantDetails.Size,
			Color:           item.VariantDetails.Color,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtPurchase,
			LineTotal:       item.LineTotal,
		}
	}

	resp := &OrderResponse{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		CustomerID:     o.CustomerID,
		Status:         o.Status.String(),
		PaymentMethod:  o.PaymentMethod.String(),
		PaymentStatus:  o.PaymentStatus.String(),
		DeliveryMethod: o.DeliveryMethod.String(),
		Source:         o.Source.String(),
		Subtotal:       o.Subtotal,
		DeliveryFee:    o.DeliveryFee,
		Total:          o.Total,
		Items:          items,
		CompletedAt:    o.CompletedAt,
		CancelledAt:    o.CancelledAt,
		CancelReason:   o.CancelReason,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
	if o.ShippingAddress != nil {
		resp.ShippingAddress = &ShippingAddressResponse{
			RecipientName: o.ShippingAddress.RecipientName,
			Phone:         o.ShippingAddress.Phone,
			Line1:         o.ShippingAddress.Line1,
			Line2:         o.ShippingAddress.Line2,
			City:          o.ShippingAddress.City,
			Region:        o.ShippingAddress.Region,
			PostalCode:    o.ShippingAddress.PostalCode,
		}
	}
	return resp
}

// ListOrdersQuery carries the optional list filters
type ListOrdersQuery struct {
	Status        *string
	PaymentStatus *string
	CustomerID    *uuid.UUID
	Source        *string
	StartDate     *time.Time
	EndDate       *time.Time
	Page          int
	PageSize      int
}

// StatusSummaryResponse reports order counts per fulfillment status
type StatusSummaryResponse struct {
	Counts map[string]int64 `json:"counts"`
	Total  int64            `json:"total"`
}

// CreateShipmentCommand is the input for dispatching an order. The
// delivery address is snapshotted from the order, not supplied here.
type CreateShipmentCommand struct {
	OrderID        uuid.UUID `json:"order_id" binding:"required"`
	Carrier        string    `json:"carrier" binding:"required,max=100"`
	TrackingNumber string    `json:"tracking_number" binding:"required,max=100"`
	Actor          uuid.UUID `json:"-"`
}

// ShipmentResponse is the read model for a shipment
type ShipmentResponse struct {
	ID             uuid.UUID               `json:"id"`
	OrderID        uuid.UUID               `json:"order_id"`
	Carrier        string                  `json:"carrier"`
	TrackingNumber string                  `json:"tracking_number"`
	Status         string                  `json:"status"`
	Address        ShippingAddressResponse `json:"address"`
	ActualDelivery *time.Time              `json:"actual_delivery,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
}

// ToShipmentResponse converts a domain shipment to its read model
func ToShipmentResponse(s *order.Shipment) *ShipmentResponse {
	return &ShipmentResponse{
		ID:             s.ID,
		OrderID:        s.OrderID,
		Carrier:        s.Carrier,
		TrackingNumber: s.TrackingNumber,
		Status:         s.Status.String(),
		Address: ShippingAddressResponse{
			RecipientName: s.Address.RecipientName,
			Phone:         s.Address.Phone,
			Line1:         s.Address.Line1,
			Line2:         s.Address.Line2,
			City:          s.Address.City,
			Region:        s.Address.Region,
			PostalCode:    s.Address.PostalCode,
		},
		ActualDelivery: s.ActualDelivery,
		CreatedAt:      s.CreatedAt,
	}
}
