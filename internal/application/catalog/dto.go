package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storecore/backend/internal/domain/catalog"
)

// CreateProductRequest is the input for creating a product
type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required,max=200"`
	Description string          `json:"description" binding:"max=2000"`
	BasePrice   decimal.Decimal `json:"base_price" binding:"required"`
}

// UpdateProductRequest is the input for updating a product
type UpdateProductRequest struct {
	Name        string           `json:"name" binding:"required,max=200"`
	Description string           `json:"description" binding:"max=2000"`
	BasePrice   *decimal.Decimal `json:"base_price"`
}

// ProductResponse is the read model for a product
type ProductResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	BasePrice   decimal.Decimal `json:"base_price"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToProductResponse converts a domain product to its read model
func ToProductResponse(p *catalog.Product) *ProductResponse {
	return &ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		BasePrice:   p.BasePrice,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// CreateVariantRequest is the input for creating a variant
type CreateVariantRequest struct {
	ProductID         uuid.UUID       `json:"product_id" binding:"required"`
	SKU               string          `json:"sku" binding:"required,max=64"`
	Size              string          `json:"size" binding:"max=32"`
	Color             string          `json:"color" binding:"max=32"`
	AdditionalPrice   decimal.Decimal `json:"additional_price"`
	LowStockThreshold int             `json:"low_stock_threshold" binding:"min=0"`
}

// VariantResponse is the read model for a variant
type VariantResponse struct {
	ID                uuid.UUID       `json:"id"`
	ProductID         uuid.UUID       `json:"product_id"`
	SKU               string          `json:"sku"`
	Size              string          `json:"size,omitempty"`
	Color             string          `json:"color,omitempty"`
	AdditionalPrice   decimal.Decimal `json:"additional_price"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	StockQuantity     int             `json:"stock_quantity"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	Status            string          `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ToVariantResponse converts a domain variant to its read model. The unit
// price is resolved server-side from the product base price plus the
// variant's additional price.
func ToVariantResponse(v *catalog.ProductVariant, basePrice decimal.Decimal) *VariantResponse {
	return &VariantResponse{
		ID:                v.ID,
		ProductID:         v.ProductID,
		SKU:               v.SKU,
		Size:              v.Size,
		Color:             v.Color,
		AdditionalPrice:   v.AdditionalPrice,
		UnitPrice:         basePrice.Add(v.AdditionalPrice),
		StockQuantity:     v.StockQuantity,
		LowStockThreshold: v.LowStockThreshold,
		Status:            string(v.Status),
		CreatedAt:         v.CreatedAt,
		UpdatedAt:         v.UpdatedAt,
	}
}
