package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed
// fields. Returns the defaultField if the input is invalid, empty, or not in
// the whitelist. Sort columns are interpolated into ORDER BY, so everything
// that reaches the query goes through the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"base_price": true,
	"status":     true,
}

// VariantSortFields contains allowed sort fields for product variants
var VariantSortFields = map[string]bool{
	"id":                  true,
	"created_at":          true,
	"updated_at":          true,
	"sku":                 true,
	"product_id":          true,
	"size":                true,
	"color":               true,
	"additional_price":    true,
	"stock_quantity":      true,
	"low_stock_threshold": true,
	"status":              true,
}

// LedgerSortFields contains allowed sort fields for ledger entries
var LedgerSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"entry_date":        true,
	"variant_id":        true,
	"change_type":       true,
	"quantity_change":   true,
	"previous_quantity": true,
	"new_quantity":      true,
	"performed_by":      true,
	"order_id":          true,
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"order_number":   true,
	"customer_id":    true,
	"status":         true,
	"payment_status": true,
	"payment_method": true,
	"source":         true,
	"subtotal":       true,
	"total":          true,
	"completed_at":   true,
	"cancelled_at":   true,
}

// ShipmentSortFields contains allowed sort fields for shipments
var ShipmentSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"order_id":        true,
	"tracking_number": true,
	"carrier":         true,
	"status":          true,
	"actual_delivery": true,
}

// TransactionSortFields contains allowed sort fields for payment transactions
var TransactionSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"order_id":    true,
	"amount":      true,
	"method":      true,
	"provider":    true,
	"reference":   true,
	"status":      true,
	"verified_at": true,
}

// ReturnSortFields contains allowed sort fields for returns
var ReturnSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"rma_number":   true,
	"order_id":     true,
	"customer_id":  true,
	"status":       true,
	"reason":       true,
	"approved_at":  true,
	"received_at":  true,
	"refunded_at":  true,
	"completed_at": true,
}
