package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storecore/backend/internal/domain/catalog"
	"github.com/storecore/backend/internal/domain/shared"
)

// CatalogService handles product and variant management. Stock quantities
// are read here but never written: all stock mutation goes through the
// stock adjustment service.
type CatalogService struct {
	productRepo catalog.ProductRepository
	variantRepo catalog.VariantRepository
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(productRepo catalog.ProductRepository, variantRepo catalog.VariantRepository) *CatalogService {
	return &CatalogService{
		productRepo: productRepo,
		variantRepo: variantRepo,
	}
}

// CreateProduct creates a new product
func (s *CatalogService) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.Name, req.Description, req.BasePrice)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// GetProduct returns a product by ID
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// ListProducts returns products with pagination
func (s *CatalogService) ListProducts(ctx context.Context, filter shared.Filter) ([]ProductResponse, int64, error) {
	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = *ToProductResponse(&products[i])
	}
	return responses, total, nil
}

// UpdateProduct updates a product's details and optionally its base price
func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := product.Update(req.Name, req.Description); err != nil {
		return nil, err
	}
	if req.BasePrice != nil {
		if err := product.UpdateBasePrice(*req.BasePrice); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// DeactivateProduct soft-deactivates a product
func (s *CatalogService) DeactivateProduct(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// CreateVariant creates a new variant starting at zero stock
func (s *CatalogService) CreateVariant(ctx context.Context, req CreateVariantRequest) (*VariantResponse, error) {
	product, err := s.findProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	exists, err := s.variantRepo.ExistsBySKU(ctx, req.SKU)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Variant with this SKU already exists")
	}

	variant, err := catalog.NewProductVariant(req.ProductID, req.SKU, req.Size, req.Color, req.AdditionalPrice)
	if err != nil {
		return nil, err
	}
	if req.LowStockThreshold > 0 {
		if err := variant.SetLowStockThreshold(req.LowStockThreshold); err != nil {
			return nil, err
		}
	}

	if err := s.variantRepo.Save(ctx, variant); err != nil {
		return nil, err
	}
	return ToVariantResponse(variant, product.BasePrice), nil
}

// GetVariant returns a variant by ID
func (s *CatalogService) GetVariant(ctx context.Context, id uuid.UUID) (*VariantResponse, error) {
	variant, err := s.variantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if variant == nil {
		return nil, shared.ErrNotFound
	}
	return s.toVariantResponse(ctx, variant)
}

// GetVariantBySKU returns a variant by its unique SKU
func (s *CatalogService) GetVariantBySKU(ctx context.Context, sku string) (*VariantResponse, error) {
	variant, err := s.variantRepo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if variant == nil {
		return nil, shared.ErrNotFound
	}
	return s.toVariantResponse(ctx, variant)
}

// ListVariants returns variants, optionally scoped to one product
func (s *CatalogService) ListVariants(ctx context.Context, productID *uuid.UUID, filter shared.Filter) ([]VariantResponse, int64, error) {
	var variants []catalog.ProductVariant
	var err error
	if productID != nil {
		variants, err = s.variantRepo.FindByProduct(ctx, *productID, filter)
	} else {
		variants, err = s.variantRepo.FindAll(ctx, filter)
	}
	if err != nil {
		return nil, 0, err
	}
	total, err := s.variantRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses, err := s.toVariantResponses(ctx, variants)
	if err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

// ListLowStockVariants returns active variants at or below their threshold
func (s *CatalogService) ListLowStockVariants(ctx context.Context, filter shared.Filter) ([]VariantResponse, error) {
	variants, err := s.variantRepo.FindBelowThreshold(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.toVariantResponses(ctx, variants)
}

// DeactivateVariant soft-deactivates a variant. Variants are never
// hard-deleted: order items reference them for their whole lifetime.
func (s *CatalogService) DeactivateVariant(ctx context.Context, id uuid.UUID) (*VariantResponse, error) {
	variant, err := s.variantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if variant == nil {
		return nil, shared.ErrNotFound
	}
	if err := variant.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.variantRepo.Save(ctx, variant); err != nil {
		return nil, err
	}
	return s.toVariantResponse(ctx, variant)
}

func (s *CatalogService) findProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, shared.ErrNotFound
	}
	return product, nil
}

func (s *CatalogService) toVariantResponse(ctx context.Context, variant *catalog.ProductVariant) (*VariantResponse, error) {
	basePrice := decimal.Zero
	product, err := s.productRepo.FindByID(ctx, variant.ProductID)
	if err != nil {
		return nil, err
	}
	if product != nil {
		basePrice = product.BasePrice
	}
	return ToVariantResponse(variant, basePrice), nil
}

func (s *CatalogService) toVariantResponses(ctx context.Context, variants []catalog.ProductVariant) ([]VariantResponse, error) {
	// cache base prices per product to avoid refetching for sibling variants
	prices := make(map[uuid.UUID]decimal.Decimal)
	responses := make([]VariantResponse, len(variants))
	for i := range variants {
		basePrice, ok := prices[variants[i].ProductID]
		if !ok {
			product, err := s.productRepo.FindByID(ctx, variants[i].ProductID)
			if err != nil {
				return nil, err
			}
			if product != nil {
				basePrice = product.BasePrice
			}
			prices[variants[i].ProductID] = basePrice
		}
		responses[i] = *ToVariantResponse(&variants[i], basePrice)
	}
	return responses, nil
}
