package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/storecore/backend/internal/domain/inventory"
	"github.com/storecore/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormLedgerRepository implements inventory.LedgerRepository using GORM.
// The ledger is append-only: Create is the only write path, there is no
// UPDATE or DELETE statement anywhere in this file.
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// FindByID finds a ledger entry by its ID
func (r *GormLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.LedgerEntry, error) {
	var entry inventory.LedgerEntry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// FindByVariant finds entries for a variant, newest first
func (r *GormLedgerRepository) FindByVariant(ctx context.Context, variantID uuid.UUID, filter shared.Filter) ([]inventory.LedgerEntry, error) {
	var entries []inventory.LedgerEntry
	query := r.db.WithContext(ctx).Model(&inventory.LedgerEntry{}).
		Where("variant_id = ?", variantID).
		Order("entry_date DESC")
	if err := applyPagination(query, filter).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByOrder finds entries correlated to an order
func (r *GormLedgerRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]inventory.LedgerEntry, error) {
	var entries []inventory.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("entry_date DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindAll finds entries matching the filter
func (r *GormLedgerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.LedgerEntry, error) {
	var entries []inventory.LedgerEntry
	query := r.applyFilters(r.db.WithContext(ctx).Model(&inventory.LedgerEntry{}), filter)
	if err := applyFilter(query, filter, LedgerSortFields).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByDateRange finds entries within a date range
func (r *GormLedgerRepository) FindByDateRange(ctx context.Context, start, end time.Time, filter shared.Filter) ([]inventory.LedgerEntry, error) {
	var entries []inventory.LedgerEntry
	query := r.applyFilters(r.db.WithContext(ctx).Model(&inventory.LedgerEntry{}), filter).
		Where("entry_date >= ? AND entry_date <= ?", start, end)
	if err := applyFilter(query, filter, LedgerSortFields).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Create appends a new ledger entry
func (r *GormLedgerRepository) Create(ctx context.Context, entry *inventory.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// Count counts entries matching the filter
func (r *GormLedgerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilters(r.db.WithContext(ctx).Model(&inventory.LedgerEntry{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByVariant counts entries for a variant
func (r *GormLedgerRepository) CountByVariant(ctx context.Context, variantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&inventory.LedgerEntry{}).
		Where("variant_id = ?", variantID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumQuantityChange sums the signed quantity changes for a variant. An empty
// ledger sums to zero, which is exactly the stock a variant with no history
// should have.
func (r *GormLedgerRepository) SumQuantityChange(ctx context.Context, variantID uuid.UUID) (int, error) {
	var sum int64
	if err := r.db.WithContext(ctx).Model(&inventory.LedgerEntry{}).
		Where("variant_id = ?", variantID).
		Select("COALESCE(SUM(quantity_change), 0)").
		Scan(&sum).Error; err != nil {
		return 0, err
	}
	return int(sum), nil
}

// applyFilters applies ledger-specific filters to the query
func (r *GormLedgerRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "variant_id":
			query = query.Where("variant_id = ?", value)
		case "order_id":
			query = query.Where("order_id = ?", value)
		case "change_type":
			query = query.Where("change_type = ?", value)
		case "performed_by":
			query = query.Where("performed_by = ?", value)
		}
	}
	return query
}

// Ensure GormLedgerRepository implements LedgerRepository
var _ inventory.LedgerRepository = (*GormLedgerRepository)(nil)
