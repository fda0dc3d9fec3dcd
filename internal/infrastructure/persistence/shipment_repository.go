package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storecore/backend/internal/domain/order"
	"github.com/storecore/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormShipmentRepository implements order.ShipmentRepository using GORM
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates a new GormShipmentRepository
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// FindByID finds a shipment by its ID
func (r *GormShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Shipment, error) {
	var shipment order.Shipment
	if err := r.db.WithContext(ctx).First(&shipment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shipment, nil
}

// FindByOrder finds the shipment for an order, nil if none exists
func (r *GormShipmentRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) (*order.Shipment, error) {
	var shipment order.Shipment
	if err := r.db.WithContext(ctx).First(&shipment, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shipment, nil
}

// FindAll finds shipments matching the filter
func (r *GormShipmentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Shipment, error) {
	var shipments []order.Shipment
	query := r.applyFilters(r.db.WithContext(ctx).Model(&order.Shipment{}), filter)
	if err := applyFilter(query, filter, ShipmentSortFields).Find(&shipments).Error; err != nil {
		return nil, err
	}
	return shipments, nil
}

// Save creates or updates a shipment
func (r *GormShipmentRepository) Save(ctx context.Context, s *order.Shipment) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// Count counts shipments matching the filter
func (r *GormShipmentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilters(r.db.WithContext(ctx).Model(&order.Shipment{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilters applies shipment-specific filters to the query
func (r *GormShipmentRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("tracking_number ILIKE ?", "%"+filter.Search+"%")
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "carrier":
			query = query.Where("carrier = ?", value)
		}
	}
	return query
}

// Ensure GormShipmentRepository implements ShipmentRepository
var _ order.ShipmentRepository = (*GormShipmentRepository)(nil)
