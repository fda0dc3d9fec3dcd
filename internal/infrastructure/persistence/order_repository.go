package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storecore/backend/internal/domain/order"
	"github.com/storecore/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements order.Repository using GORM. Order items
// are persisted manually because the aggregate deliberately keeps them out
// of GORM's association machinery.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID, items included
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadItems(ctx, []*order.Order{&o}); err != nil {
		return nil, err
	}
	return &o, nil
}

// FindByOrderNumber finds an order by its unique number, items included
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).First(&o, "order_number = ?", orderNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadItems(ctx, []*order.Order{&o}); err != nil {
		return nil, err
	}
	return &o, nil
}

// FindAll finds orders matching the filter
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	var orders []order.Order
	query := r.applyFilters(r.db.WithContext(ctx).Model(&order.Order{}), filter)
	if err := applyFilter(query, filter, OrderSortFields).Find(&orders).Error; err != nil {
		return nil, err
	}
	if err := r.loadItemsForSlice(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByCustomer finds orders for a customer
func (r *GormOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	var orders []order.Order
	query := r.db.WithContext(ctx).Model(&order.Order{}).
		Where("customer_id = ?", customerID)
	if err := applyFilter(query, filter, OrderSortFields).Find(&orders).Error; err != nil {
		return nil, err
	}
	if err := r.loadItemsForSlice(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByStatus finds orders by status
func (r *GormOrderRepository) FindByStatus(ctx context.Context, status order.OrderStatus, filter shared.Filter) ([]order.Order, error) {
	var orders []order.Order
	query := r.db.WithContext(ctx).Model(&order.Order{}).
		Where("status = ?", status)
	if err := applyFilter(query, filter, OrderSortFields).Find(&orders).Error; err != nil {
		return nil, err
	}
	if err := r.loadItemsForSlice(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Save creates or updates an order together with its items. Items are
// immutable once written, so replays only insert the rows that are missing.
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(o).Error; err != nil {
			return err
		}
		if len(o.Items) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&o.Items).Error
	})
}

// SaveWithLock saves an order with optimistic locking. Only the columns a
// state transition can touch are written; items never change after creation.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	result := r.db.WithContext(ctx).Model(o).
		Where("id = ? AND version = ?", o.ID, o.Version-1).
		Updates(map[string]interface{}{
			"status":         o.Status,
			"payment_status": o.PaymentStatus,
			"completed_at":   o.CompletedAt,
			"cancelled_at":   o.CancelledAt,
			"cancel_reason":  o.CancelReason,
			"version":        o.Version,
			"updated_at":     o.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilters(r.db.WithContext(ctx).Model(&order.Order{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts orders per status for the summary view
func (r *GormOrderRepository) CountByStatus(ctx context.Context) (map[order.OrderStatus]int64, error) {
	type statusCount struct {
		Status order.OrderStatus
		Count  int64
	}
	var rows []statusCount
	if err := r.db.WithContext(ctx).Model(&order.Order{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[order.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// ExistsByOrderNumber checks if an order number is already issued
func (r *GormOrderRepository) ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&order.Order{}).
		Where("order_number = ?", orderNumber).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateOrderNumber issues the next ORD-YYYYMMDD-NNNN number by scanning
// the highest number issued today. Two terminals can race to the same
// candidate; the unique constraint on order_number rejects the loser and
// the caller retries through the POS path.
func (r *GormOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	return nextDailyNumber(ctx, r.db, &order.Order{}, "order_number", "ORD")
}

// loadItems fills the Items slice of the given orders in one batch query
func (r *GormOrderRepository) loadItems(ctx context.Context, orders []*order.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	var items []order.OrderItem
	if err := r.db.WithContext(ctx).
		Where("order_id IN ?", ids).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return err
	}

	byOrder := make(map[uuid.UUID][]order.OrderItem, len(orders))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}
	for _, o := range orders {
		o.Items = byOrder[o.ID]
	}
	return nil
}

func (r *GormOrderRepository) loadItemsForSlice(ctx context.Context, orders []order.Order) error {
	ptrs := make([]*order.Order, len(orders))
	for i := range orders {
		ptrs[i] = &orders[i]
	}
	return r.loadItems(ctx, ptrs)
}

// applyFilters applies order-specific filters to the query
func (r *GormOrderRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("order_number ILIKE ?", "%"+filter.Search+"%")
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "payment_status":
			query = query.Where("payment_status = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "source":
			query = query.Where("source = ?", value)
		case "start_date":
			query = query.Where("created_at >= ?", value)
		case "end_date":
			query = query.Where("created_at <= ?", value)
		}
	}
	return query
}

// nextDailyNumber issues the next PREFIX-YYYYMMDD-NNNN number for a table
// by scanning the highest suffix issued today. Shared between order and
// RMA numbering.
func nextDailyNumber(ctx context.Context, db *gorm.DB, model interface{}, column, prefix string) (string, error) {
	day := time.Now().Format("20060102")
	dayPrefix := fmt.Sprintf("%s-%s-", prefix, day)

	var last string
	err := db.WithContext(ctx).Model(model).
		Select(column).
		Where(column+" LIKE ?", dayPrefix+"%").
		Order(column + " DESC").
		Limit(1).
		Scan(&last).Error
	if err != nil {
		return "", err
	}

	next := 1
	if last != "" {
		suffix := strings.TrimPrefix(last, dayPrefix)
		n, err := strconv.Atoi(suffix)
		if err != nil {
			return "", fmt.Errorf("malformed number %q in %s: %w", last, column, err)
		}
		next = n + 1
	}
	return fmt.Sprintf("%s%04d", dayPrefix, next), nil
}

// Ensure GormOrderRepository implements order.Repository
var _ order.Repository = (*GormOrderRepository)(nil)
