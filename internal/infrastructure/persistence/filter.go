package persistence

import (
	"github.com/storecore/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// applySort applies the validated ORDER BY clause from the filter.
func applySort(db *gorm.DB, filter shared.Filter, allowedFields map[string]bool) *gorm.DB {
	orderBy := ValidateSortField(filter.OrderBy, allowedFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return db.Order(orderBy + " " + orderDir)
}

// applyPagination applies LIMIT/OFFSET from the filter with sane defaults.
func applyPagination(db *gorm.DB, filter shared.Filter) *gorm.DB {
	return db.Offset(filter.Offset()).Limit(filter.Limit())
}

// applyFilter applies sorting and pagination together. Repositories add
// their own WHERE clauses before calling this.
func applyFilter(db *gorm.DB, filter shared.Filter, allowedFields map[string]bool) *gorm.DB {
	return applyPagination(applySort(db, filter, allowedFields), filter)
}
