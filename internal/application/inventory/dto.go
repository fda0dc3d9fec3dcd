package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/storecore/backend/internal/domain/inventory"
)

// AdjustStockCommand is the input for a stock adjustment
type AdjustStockCommand struct {
	VariantID      uuid.UUID
	QuantityChange int
	ChangeType     inventory.ChangeType
	Reason         string
	PerformedBy    uuid.UUID
	OrderID        *uuid.UUID
}

// AdjustStockResult is the outcome of a committed stock adjustment
type AdjustStockResult struct {
	VariantID     uuid.UUID `json:"variant_id"`
	SKU           string    `json:"sku"`
	NewQuantity   int       `json:"new_quantity"`
	LedgerEntryID uuid.UUID `json:"ledger_entry_id"`
}

// LedgerEntryDTO is the read model for a ledger entry
type LedgerEntryDTO struct {
	ID               uuid.UUID  `json:"id"`
	VariantID        uuid.UUID  `json:"variant_id"`
	ChangeType       string     `json:"change_type"`
	QuantityChange   int        `json:"quantity_change"`
	PreviousQuantity int        `json:"previous_quantity"`
	NewQuantity      int        `json:"new_quantity"`
	Reason           string     `json:"reason,omitempty"`
	PerformedBy      uuid.UUID  `json:"performed_by"`
	OrderID          *uuid.UUID `json:"order_id,omitempty"`
	EntryDate        time.Time  `json:"entry_date"`
}

// ToLedgerEntryDTO converts a domain ledger entry to its read model
func ToLedgerEntryDTO(e *inventory.LedgerEntry) LedgerEntryDTO {
	return LedgerEntryDTO{
		ID:               e.ID,
		VariantID:        e.VariantID,
		ChangeType:       e.ChangeType.String(),
		QuantityChange:   e.QuantityChange,
		PreviousQuantity: e.PreviousQuantity,
		NewQuantity:      e.NewQuantity,
		Reason:           e.Reason,
		PerformedBy:      e.PerformedBy,
		OrderID:          e.OrderID,
		EntryDate:        e.EntryDate,
	}
}

// LedgerVerification reports a variant's materialized quantity against the
// ledger's running sum
type LedgerVerification struct {
	VariantID            uuid.UUID `json:"variant_id"`
	SKU                  string    `json:"sku"`
	MaterializedQuantity int       `json:"materialized_quantity"`
	LedgerSum            int       `json:"ledger_sum"`
	Consistent           bool      `json:"consistent"`
}
