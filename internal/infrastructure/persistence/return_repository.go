package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storecore/backend/internal/domain/returns"
	"github.com/storecore/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormReturnRepository implements returns.Repository using GORM. Return
// items carry the staff-assessed condition from the moment they are
// created, so like order items they are written once and never updated.
type GormReturnRepository struct {
	db *gorm.DB
}

// NewGormReturnRepository creates a new GormReturnRepository
func NewGormReturnRepository(db *gorm.DB) *GormReturnRepository {
	return &GormReturnRepository{db: db}
}

// FindByID finds a return by its ID, items included
func (r *GormReturnRepository) FindByID(ctx context.Context, id uuid.UUID) (*returns.Return, error) {
	var ret returns.Return
	if err := r.db.WithContext(ctx).First(&ret, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadItems(ctx, []*returns.Return{&ret}); err != nil {
		return nil, err
	}
	return &ret, nil
}

// FindByRMANumber finds a return by its unique RMA number, items included
func (r *GormReturnRepository) FindByRMANumber(ctx context.Context, rmaNumber string) (*returns.Return, error) {
	var ret returns.Return
	if err := r.db.WithContext(ctx).First(&ret, "rma_number = ?", rmaNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadItems(ctx, []*returns.Return{&ret}); err != nil {
		return nil, err
	}
	return &ret, nil
}

// FindByOrder finds all returns raised against an order
func (r *GormReturnRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]returns.Return, error) {
	var rets []returns.Return
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&rets).Error; err != nil {
		return nil, err
	}
	if err := r.loadItemsForSlice(ctx, rets); err != nil {
		return nil, err
	}
	return rets, nil
}

// FindAll finds returns matching the filter
func (r *GormReturnRepository) FindAll(ctx context.Context, filter shared.Filter) ([]returns.Return, error) {
	var rets []returns.Return
	query := r.applyFilters(r.db.WithContext(ctx).Model(&returns.Return{}), filter)
	if err := applyFilter(query, filter, ReturnSortFields).Find(&rets).Error; err != nil {
		return nil, err
	}
	if err := r.loadItemsForSlice(ctx, rets); err != nil {
		return nil, err
	}
	return rets, nil
}

// FindByStatus finds returns by status
func (r *GormReturnRepository) FindByStatus(ctx context.Context, status returns.Status, filter shared.Filter) ([]returns.Return, error) {
	var rets []returns.Return
	query := r.db.WithContext(ctx).Model(&returns.Return{}).
		Where("status = ?", status)
	if err := applyFilter(query, filter, ReturnSortFields).Find(&rets).Error; err != nil {
		return nil, err
	}
	if err := r.loadItemsForSlice(ctx, rets); err != nil {
		return nil, err
	}
	return rets, nil
}

// Save creates or updates a return together with its items
func (r *GormReturnRepository) Save(ctx context.Context, ret *returns.Return) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(ret).Error; err != nil {
			return err
		}
		if len(ret.Items) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&ret.Items).Error
	})
}

// SaveWithLock saves a return with optimistic locking. Only the header
// columns a state transition can touch are written.
func (r *GormReturnRepository) SaveWithLock(ctx context.Context, ret *returns.Return) error {
	result := r.db.WithContext(ctx).Model(ret).
		Where("id = ? AND version = ?", ret.ID, ret.Version-1).
		Updates(map[string]interface{}{
			"status":        ret.Status,
			"approved_by":   ret.ApprovedBy,
			"approved_at":   ret.ApprovedAt,
			"rejected_by":   ret.RejectedBy,
			"rejected_at":   ret.RejectedAt,
			"reject_reason": ret.RejectReason,
			"received_by":   ret.ReceivedBy,
			"received_at":   ret.ReceivedAt,
			"refunded_at":   ret.RefundedAt,
			"completed_at":  ret.CompletedAt,
			"version":       ret.Version,
			"updated_at":    ret.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Count counts returns matching the filter
func (r *GormReturnRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilters(r.db.WithContext(ctx).Model(&returns.Return{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByRMANumber checks if an RMA number is already issued
func (r *GormReturnRepository) ExistsByRMANumber(ctx context.Context, rmaNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&returns.Return{}).
		Where("rma_number = ?", rmaNumber).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateRMANumber issues the next RMA-YYYYMMDD-NNNN number. Collisions
// under concurrency land on the rma_number unique constraint and the
// caller retries.
func (r *GormReturnRepository) GenerateRMANumber(ctx context.Context) (string, error) {
	return nextDailyNumber(ctx, r.db, &returns.Return{}, "rma_number", "RMA")
}

// loadItems fills the Items slice of the given returns in one batch query
func (r *GormReturnRepository) loadItems(ctx context.Context, rets []*returns.Return) error {
	if len(rets) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(rets))
	for i, ret := range rets {
		ids[i] = ret.ID
	}

	var items []returns.ReturnItem
	if err := r.db.WithContext(ctx).
		Where("return_id IN ?", ids).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return err
	}

	byReturn := make(map[uuid.UUID][]returns.ReturnItem, len(rets))
	for _, item := range items {
		byReturn[item.ReturnID] = append(byReturn[item.ReturnID], item)
	}
	for _, ret := range rets {
		ret.Items = byReturn[ret.ID]
	}
	return nil
}

func (r *GormReturnRepository) loadItemsForSlice(ctx context.Context, rets []returns.Return) error {
	ptrs := make([]*returns.Return, len(rets))
	for i := range rets {
		ptrs[i] = &rets[i]
	}
	return r.loadItems(ctx, ptrs)
}

// applyFilters applies return-specific filters to the query
func (r *GormReturnRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("rma_number ILIKE ?", "%"+filter.Search+"%")
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "order_id":
			query = query.Where("order_id = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		}
	}
	return query
}

// Ensure GormReturnRepository implements returns.Repository
var _ returns.Repository = (*GormReturnRepository)(nil)
