package catalog

import (
	"github.com/google/uuid"
	"github.com/storecore/backend/internal/domain/shared"
)

// Event types for the catalog context
const (
	EventTypeProductCreated  = "catalog.product.created"
	EventTypeVariantCreated  = "catalog.variant.created"
	EventTypeVariantLowStock = "catalog.variant.low_stock"
)

// ProductCreatedEvent is published when a product is created
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(product *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, "Product", product.ID),
		ProductID:       product.ID,
		Name:            product.Name,
	}
}

// VariantCreatedEvent is published when a variant is created
type VariantCreatedEvent struct {
	shared.BaseDomainEvent
	VariantID uuid.UUID `json:"variant_id"`
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
}

// NewVariantCreatedEvent creates a new VariantCreatedEvent
func NewVariantCreatedEvent(variant *ProductVariant) *VariantCreatedEvent {
	return &VariantCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVariantCreated, "ProductVariant", variant.ID),
		VariantID:       variant.ID,
		ProductID:       variant.ProductID,
		SKU:             variant.SKU,
	}
}

// VariantLowStockEvent is published when an adjustment leaves stock at or
// below the variant's alert threshold
type VariantLowStockEvent struct {
	shared.BaseDomainEvent
	VariantID uuid.UUID `json:"variant_id"`
	SKU       string    `json:"sku"`
	Quantity  int       `json:"quantity"`
	Threshold int       `json:"threshold"`
}

// NewVariantLowStockEvent creates a new VariantLowStockEvent
func NewVariantLowStockEvent(variant *ProductVariant) *VariantLowStockEvent {
	return &VariantLowStockEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVariantLowStock, "ProductVariant", variant.ID),
		VariantID:       variant.ID,
		SKU:             variant.SKU,
		Quantity:        variant.StockQuantity,
		Threshold:       variant.LowStockThreshold,
	}
}
