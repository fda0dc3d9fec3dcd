package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storecore/backend/internal/domain/catalog"
	"github.com/storecore/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// FindAll finds all products matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	var products []catalog.Product
	query := r.applyFilters(r.db.WithContext(ctx).Model(&catalog.Product{}), filter)
	if err := applyFilter(query, filter, ProductSortFields).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindActive finds all active products
func (r *GormProductRepository) FindActive(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	var products []catalog.Product
	query := r.applyFilters(r.db.WithContext(ctx).Model(&catalog.Product{}), filter).
		Where("status = ?", catalog.ProductStatusActive)
	if err := applyFilter(query, filter, ProductSortFields).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilters(r.db.WithContext(ctx).Model(&catalog.Product{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilters applies product-specific filters to the query
func (r *GormProductRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		}
	}
	return query
}

// GormVariantRepository implements catalog.VariantRepository using GORM
type GormVariantRepository struct {
	db *gorm.DB
}

// NewGormVariantRepository creates a new GormVariantRepository
func NewGormVariantRepository(db *gorm.DB) *GormVariantRepository {
	return &GormVariantRepository{db: db}
}

// FindByID finds a variant by its ID
func (r *GormVariantRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ProductVariant, error) {
	var variant catalog.ProductVariant
	if err := r.db.WithContext(ctx).First(&variant, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &variant, nil
}

// FindBySKU finds a variant by its unique SKU
func (r *GormVariantRepository) FindBySKU(ctx context.Context, sku string) (*catalog.ProductVariant, error) {
	var variant catalog.ProductVariant
	if err := r.db.WithContext(ctx).First(&variant, "sku = ?", sku).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &variant, nil
}

// FindByProduct finds all variants of a product
func (r *GormVariantRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]catalog.ProductVariant, error) {
	var variants []catalog.ProductVariant
	query := r.db.WithContext(ctx).Model(&catalog.ProductVariant{}).
		Where("product_id = ?", productID)
	if err := applyFilter(query, filter, VariantSortFields).Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

// FindAll finds all variants matching the filter
func (r *GormVariantRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.ProductVariant, error) {
	var variants []catalog.ProductVariant
	query := r.applyFilters(r.db.WithContext(ctx).Model(&catalog.ProductVariant{}), filter)
	if err := applyFilter(query, filter, VariantSortFields).Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

// FindBelowThreshold finds active variants at or below their low-stock threshold
func (r *GormVariantRepository) FindBelowThreshold(ctx context.Context, filter shared.Filter) ([]catalog.ProductVariant, error) {
	var variants []catalog.ProductVariant
	query := r.db.WithContext(ctx).Model(&catalog.ProductVariant{}).
		Where("status = ?", catalog.VariantStatusActive).
		Where("stock_quantity <= low_stock_threshold")
	if err := applyFilter(query, filter, VariantSortFields).Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

// Save creates or updates a variant
func (r *GormVariantRepository) Save(ctx context.Context, variant *catalog.ProductVariant) error {
	return r.db.WithContext(ctx).Save(variant).Error
}

// SaveWithLock saves a variant with optimistic locking. The WHERE clause
// pins the previous version; zero rows affected means another writer got
// there first.
func (r *GormVariantRepository) SaveWithLock(ctx context.Context, variant *catalog.ProductVariant) error {
	result := r.db.WithContext(ctx).Model(variant).
		Where("id = ? AND version = ?", variant.ID, variant.Version-1).
		Updates(map[string]interface{}{
			"size":                variant.Size,
			"color":               variant.Color,
			"additional_price":    variant.AdditionalPrice,
			"stock_quantity":      variant.StockQuantity,
			"low_stock_threshold": variant.LowStockThreshold,
			"status":              variant.Status,
			"version":             variant.Version,
			"updated_at":          variant.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// ExistsBySKU checks if a SKU is already taken
func (r *GormVariantRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&catalog.ProductVariant{}).
		Where("sku = ?", sku).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count counts variants matching the filter
func (r *GormVariantRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilters(r.db.WithContext(ctx).Model(&catalog.ProductVariant{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilters applies variant-specific filters to the query
func (r *GormVariantRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("sku ILIKE ?", "%"+filter.Search+"%")
	}
	for key, value := range filter.Filters {
		switch key {
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		}
	}
	return query
}

// Ensure the repositories implement their interfaces
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
var _ catalog.VariantRepository = (*GormVariantRepository)(nil)
