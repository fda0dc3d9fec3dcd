package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storecore/backend/internal/domain/payment"
	"github.com/storecore/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormTransactionRepository implements payment.Repository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByID finds a transaction by its ID
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Transaction, error) {
	var tx payment.Transaction
	if err := r.db.WithContext(ctx).First(&tx, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tx, nil
}

// FindByReference finds a transaction by its external provider reference.
// Unknown references resolve to nil: providers replay and misroute events,
// and the caller decides whether that is worth logging.
func (r *GormTransactionRepository) FindByReference(ctx context.Context, reference string) (*payment.Transaction, error) {
	if reference == "" {
		return nil, nil
	}
	var tx payment.Transaction
	if err := r.db.WithContext(ctx).First(&tx, "reference = ?", reference).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tx, nil
}

// FindByOrder finds all payment attempts for an order, newest first
func (r *GormTransactionRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]payment.Transaction, error) {
	var transactions []payment.Transaction
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// Save creates or updates a transaction
func (r *GormTransactionRepository) Save(ctx context.Context, tx *payment.Transaction) error {
	return r.db.WithContext(ctx).Save(tx).Error
}

// SaveWithLock saves a transaction with optimistic locking
func (r *GormTransactionRepository) SaveWithLock(ctx context.Context, tx *payment.Transaction) error {
	result := r.db.WithContext(ctx).Model(tx).
		Where("id = ? AND version = ?", tx.ID, tx.Version-1).
		Updates(map[string]interface{}{
			"status":      tx.Status,
			"verified_by": tx.VerifiedBy,
			"verified_at": tx.VerifiedAt,
			"version":     tx.Version,
			"updated_at":  tx.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Count counts transactions matching the filter
func (r *GormTransactionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&payment.Transaction{})
	for key, value := range filter.Filters {
		switch key {
		case "order_id":
			query = query.Where("order_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "provider":
			query = query.Where("provider = ?", value)
		}
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormTransactionRepository implements payment.Repository
var _ payment.Repository = (*GormTransactionRepository)(nil)
