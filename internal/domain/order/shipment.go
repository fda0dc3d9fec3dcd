package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/storecore/backend/internal/domain/shared"
)

// ShipmentStatus represents the status of a shipment
type ShipmentStatus string

const (
	ShipmentStatusInTransit ShipmentStatus = "IN_TRANSIT"
	ShipmentStatusDelivered ShipmentStatus = "DELIVERED"
)

// String returns the string representation of ShipmentStatus
func (s ShipmentStatus) String() string {
	return string(s)
}

// Shipment is the carrier handoff record for a home-delivery order.
// At most one shipment exists per order; creating it is what flips the
// order to SHIPPED.
type Shipment struct {
	shared.BaseAggregateRoot
	OrderID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	TrackingNumber string          `gorm:"type:varchar(100);not null"`
	Carrier        string          `gorm:"type:varchar(100);not null"`
	Status         ShipmentStatus  `gorm:"type:varchar(20);not null"`
	Address        ShippingAddress `gorm:"embedded;embeddedPrefix:address_"`
	ActualDelivery *time.Time      `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (Shipment) TableName() string {
	return "shipments"
}

// NewShipment creates a new in-transit shipment for an order. The address
// is snapshotted from the order at shipment time.
func NewShipment(orderID uuid.UUID, carrier, trackingNumber string, address ShippingAddress) (*Shipment, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if carrier == "" {
		return nil, shared.NewDomainError("INVALID_CARRIER", "Carrier cannot be empty")
	}
	if trackingNumber == "" {
		return nil, shared.NewDomainError("INVALID_TRACKING_NUMBER", "Tracking number cannot be empty")
	}
	if err := address.Validate(); err != nil {
		return nil, err
	}

	return &Shipment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		TrackingNumber:    trackingNumber,
		Carrier:           carrier,
		Status:            ShipmentStatusInTransit,
		Address:           address,
	}, nil
}

// MarkDelivered records the delivery and stamps the actual delivery time
func (s *Shipment) MarkDelivered() error {
	if s.Status == ShipmentStatusDelivered {
		return shared.NewDomainError("INVALID_STATE", "Shipment is already delivered")
	}

	now := time.Now()
	s.Status = ShipmentStatusDelivered
	s.ActualDelivery = &now
	s.UpdatedAt = now
	s.IncrementVersion()

	return nil
}

// IsDelivered returns true if the shipment reached the customer
func (s *Shipment) IsDelivered() bool {
	return s.Status == ShipmentStatusDelivered
}
