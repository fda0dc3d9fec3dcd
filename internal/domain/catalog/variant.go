package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storecore/backend/internal/domain/shared"
)

// VariantStatus represents the status of a product variant
type VariantStatus string

const (
	VariantStatusActive   VariantStatus = "active"
	VariantStatusInactive VariantStatus = "inactive"
)

// ProductVariant is the unit inventory is tracked against: one size/color
// combination of a product. StockQuantity is a materialized view of the
// inventory ledger's running sum for this variant and must never go
// negative. It is mutated exclusively through the stock adjustment path;
// no other code writes it.
type ProductVariant struct {
	shared.BaseAggregateRoot
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	SKU               string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	Size              string          `gorm:"type:varchar(32)"`
	Color             string          `gorm:"type:varchar(32)"`
	AdditionalPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	StockQuantity     int             `gorm:"not null;default:0"`
	LowStockThreshold int             `gorm:"not null;default:0"`
	Status            VariantStatus   `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (ProductVariant) TableName() string {
	return "variants"
}

// NewProductVariant creates a new variant with zero stock. Initial stock
// arrives through a RESTOCK adjustment so the ledger covers it.
func NewProductVariant(productID uuid.UUID, sku, size, color string, additionalPrice decimal.Decimal) (*ProductVariant, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if err := validateSKU(sku); err != nil {
		return nil, err
	}

	variant := &ProductVariant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		SKU:               strings.ToUpper(sku),
		Size:              size,
		Color:             color,
		AdditionalPrice:   additionalPrice,
		StockQuantity:     0,
		Status:            VariantStatusActive,
	}

	variant.AddDomainEvent(NewVariantCreatedEvent(variant))

	return variant, nil
}

// ApplyStockChange applies a signed quantity delta to the materialized
// stock. The resulting quantity must stay non-negative; violations reject
// the change without mutating anything. Callers persist the paired ledger
// entry in the same transaction.
func (v *ProductVariant) ApplyStockChange(delta int) error {
	if delta == 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity change cannot be zero")
	}

	newQuantity := v.StockQuantity + delta
	if newQuantity < 0 {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Insufficient stock for %s: only %d units remain", v.SKU, v.StockQuantity))
	}

	v.StockQuantity = newQuantity
	v.UpdatedAt = time.Now()
	v.IncrementVersion()

	return nil
}

// CanFulfill reports whether the requested quantity is available
func (v *ProductVariant) CanFulfill(quantity int) bool {
	return quantity > 0 && v.StockQuantity >= quantity
}

// IsBelowThreshold reports whether stock is at or below the alert threshold
func (v *ProductVariant) IsBelowThreshold() bool {
	return v.LowStockThreshold > 0 && v.StockQuantity <= v.LowStockThreshold
}

// SetLowStockThreshold sets the low-stock alert threshold
func (v *ProductVariant) SetLowStockThreshold(threshold int) error {
	if threshold < 0 {
		return shared.NewDomainError("INVALID_THRESHOLD", "Threshold cannot be negative")
	}

	v.LowStockThreshold = threshold
	v.UpdatedAt = time.Now()
	v.IncrementVersion()

	return nil
}

// UpdateDetails updates size, color and price delta
func (v *ProductVariant) UpdateDetails(size, color string, additionalPrice decimal.Decimal) {
	v.Size = size
	v.Color = color
	v.AdditionalPrice = additionalPrice
	v.UpdatedAt = time.Now()
	v.IncrementVersion()
}

// Deactivate soft-deactivates the variant. Variants referenced by any order
// are never hard-deleted; they stop being sellable instead.
func (v *ProductVariant) Deactivate() error {
	if v.Status == VariantStatusInactive {
		return shared.NewDomainError("INVALID_STATE", "Variant is already inactive")
	}

	v.Status = VariantStatusInactive
	v.UpdatedAt = time.Now()
	v.IncrementVersion()

	return nil
}

// Activate puts the variant back on sale
func (v *ProductVariant) Activate() error {
	if v.Status == VariantStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Variant is already active")
	}

	v.Status = VariantStatusActive
	v.UpdatedAt = time.Now()
	v.IncrementVersion()

	return nil
}

// IsActive returns true if the variant is sellable
func (v *ProductVariant) IsActive() bool {
	return v.Status == VariantStatusActive
}

// Details returns the denormalized size/color snapshot orders capture at
// time of sale
func (v *ProductVariant) Details() VariantDetails {
	return VariantDetails{
		Size:  v.Size,
		Color: v.Color,
	}
}

// VariantDetails is the structured size/color snapshot stored on order
// items. It stays frozen even if the variant later changes.
type VariantDetails struct {
	Size  string `json:"size"`
	Color string `json:"color"`
}

// String renders the details for receipts and logs
func (d VariantDetails) String() string {
	switch {
	case d.Size != "" && d.Color != "":
		return d.Size + "/" + d.Color
	case d.Size != "":
		return d.Size
	default:
		return d.Color
	}
}

func validateSKU(sku string) error {
	if strings.TrimSpace(sku) == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 64 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 64 characters")
	}
	return nil
}
