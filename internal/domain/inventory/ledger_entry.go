package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/storecore/backend/internal/domain/shared"
)

// ChangeType classifies why a ledger entry exists. It is informational
// metadata: the arithmetic is identical for every type, the type documents
// intent for the audit trail.
type ChangeType string

const (
	// ChangeTypeRestock represents operator-driven stock intake (typically positive)
	ChangeTypeRestock ChangeType = "RESTOCK"
	// ChangeTypeAdjustment represents a manual correction (either sign)
	ChangeTypeAdjustment ChangeType = "ADJUSTMENT"
	// ChangeTypeSale represents a system-driven deduction for a sale (negative)
	ChangeTypeSale ChangeType = "SALE"
	// ChangeTypeReturn represents a system-driven re-credit for a restockable return (positive)
	ChangeTypeReturn ChangeType = "RETURN"
)

// String returns the string representation of ChangeType
func (t ChangeType) String() string {
	return string(t)
}

// IsValid returns true if the change type is valid
func (t ChangeType) IsValid() bool {
	switch t {
	case ChangeTypeRestock, ChangeTypeAdjustment, ChangeTypeSale, ChangeTypeReturn:
		return true
	}
	return false
}

// LedgerEntry is an immutable fact recording one stock change for a variant.
// Entries are append-only: once created they are never updated or deleted,
// and the variant's materialized stock quantity must always equal the
// running sum of its entries' QuantityChange values.
type LedgerEntry struct {
	shared.BaseEntity
	VariantID        uuid.UUID  `gorm:"type:uuid;not null;index:idx_ledger_variant_time,priority:1"`
	ChangeType       ChangeType `gorm:"type:varchar(20);not null;index"`
	QuantityChange   int        `gorm:"not null"`
	PreviousQuantity int        `gorm:"not null"`
	NewQuantity      int        `gorm:"not null"`
	Reason           string     `gorm:"type:varchar(255)"`
	PerformedBy      uuid.UUID  `gorm:"type:uuid;not null"`
	OrderID          *uuid.UUID `gorm:"type:uuid;index"`
	EntryDate        time.Time  `gorm:"type:timestamptz;not null;index:idx_ledger_variant_time,priority:2"`
}

// TableName returns the table name for GORM
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// NewLedgerEntry creates a new ledger entry. The structural invariant
// NewQuantity = PreviousQuantity + QuantityChange is enforced here, as is
// NewQuantity >= 0; a change that would violate either never becomes an
// entry.
func NewLedgerEntry(
	variantID uuid.UUID,
	changeType ChangeType,
	quantityChange int,
	previousQuantity int,
	reason string,
	performedBy uuid.UUID,
) (*LedgerEntry, error) {
	if variantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_VARIANT", "Variant ID cannot be empty")
	}
	if !changeType.IsValid() {
		return nil, shared.NewDomainError("INVALID_CHANGE_TYPE", "Invalid stock change type")
	}
	if quantityChange == 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity change cannot be zero")
	}
	if previousQuantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Previous quantity cannot be negative")
	}
	if performedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Performed-by actor cannot be empty")
	}

	newQuantity := previousQuantity + quantityChange
	if newQuantity < 0 {
		return nil, shared.NewDomainError("INSUFFICIENT_STOCK", "Stock change would drive quantity negative")
	}

	return &LedgerEntry{
		BaseEntity:       shared.NewBaseEntity(),
		VariantID:        variantID,
		ChangeType:       changeType,
		QuantityChange:   quantityChange,
		PreviousQuantity: previousQuantity,
		NewQuantity:      newQuantity,
		Reason:           reason,
		PerformedBy:      performedBy,
		EntryDate:        time.Now(),
	}, nil
}

// WithOrderID correlates the entry to the order that caused it
func (e *LedgerEntry) WithOrderID(orderID uuid.UUID) *LedgerEntry {
	e.OrderID = &orderID
	return e
}

// IsIncrease returns true if the entry added stock
func (e *LedgerEntry) IsIncrease() bool {
	return e.QuantityChange > 0
}

// IsDecrease returns true if the entry removed stock
func (e *LedgerEntry) IsDecrease() bool {
	return e.QuantityChange < 0
}
