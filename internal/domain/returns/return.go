package returns

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/storecore/backend/internal/domain/shared"
)

// Status represents the status of a return (RMA)
type Status string

const (
	StatusRequested Status = "REQUESTED"
	StatusApproved  Status = "APPROVED"
	StatusReceived  Status = "RECEIVED"
	StatusRefunded  Status = "REFUNDED"
	StatusRejected  Status = "REJECTED"
	StatusCompleted Status = "COMPLETED"
)

// IsValid checks if the status is a valid return Status
func (s Status) IsValid() bool {
	switch s {
	case StatusRequested, StatusApproved, StatusReceived, StatusRefunded, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true for states with no outgoing transitions
func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusCompleted
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusRequested:
		return target == StatusApproved || target == StatusRejected
	case StatusApproved:
		return target == StatusReceived
	case StatusReceived:
		return target == StatusRefunded || target == StatusCompleted
	case StatusRefunded:
		return target == StatusCompleted
	case StatusRejected, StatusCompleted:
		return false
	}
	return false
}

// ItemCondition describes the physical state of a returned unit
type ItemCondition string

const (
	ConditionUnopened     ItemCondition = "UNOPENED"
	ConditionOpenedUnused ItemCondition = "OPENED_UNUSED"
	ConditionDefective    ItemCondition = "DEFECTIVE"
	ConditionDamaged      ItemCondition = "DAMAGED"
)

// IsValid checks if the condition is valid
func (c ItemCondition) IsValid() bool {
	switch c {
	case ConditionUnopened, ConditionOpenedUnused, ConditionDefective, ConditionDamaged:
		return true
	}
	return false
}

// String returns the string representation of ItemCondition
func (c ItemCondition) String() string {
	return string(c)
}

// DefaultRestockable returns whether units in this condition go back to
// sellable inventory by default. Staff may override per item at
// return-creation time.
func (c ItemCondition) DefaultRestockable() bool {
	return c == ConditionUnopened || c == ConditionOpenedUnused
}

// ReturnItem is one returned line, referencing the original order item it
// came from. Restockable decides whether receipt re-credits the ledger.
type ReturnItem struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey"`
	ReturnID    uuid.UUID     `gorm:"type:uuid;not null;index"`
	OrderItemID uuid.UUID     `gorm:"type:uuid;not null"`
	VariantID   uuid.UUID     `gorm:"type:uuid;not null"`
	Quantity    int           `gorm:"not null"`
	Condition   ItemCondition `gorm:"type:varchar(20);not null"`
	Restockable bool          `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (ReturnItem) TableName() string {
	return "return_items"
}

// NewReturnItem creates a return line item. Restockable defaults from the
// condition; pass an override to let staff force either way.
func NewReturnItem(
	orderItemID, variantID uuid.UUID,
	quantity int,
	condition ItemCondition,
	restockableOverride *bool,
) (*ReturnItem, error) {
	if orderItemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER_ITEM", "Order item ID cannot be empty")
	}
	if variantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_VARIANT", "Variant ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Return quantity must be positive")
	}
	if !condition.IsValid() {
		return nil, shared.NewDomainError("INVALID_CONDITION", "Invalid item condition")
	}

	restockable := condition.DefaultRestockable()
	if restockableOverride != nil {
		restockable = *restockableOverride
	}

	now := time.Now()
	return &ReturnItem{
		ID:          uuid.New(),
		OrderItemID: orderItemID,
		VariantID:   variantID,
		Quantity:    quantity,
		Condition:   condition,
		Restockable: restockable,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Return is the RMA aggregate root: a customer's request to send goods
// back against a delivered order.
type Return struct {
	shared.BaseAggregateRoot
	RMANumber    string       `gorm:"type:varchar(30);not null;uniqueIndex"`
	OrderID      uuid.UUID    `gorm:"type:uuid;not null;index"`
	CustomerID   *uuid.UUID   `gorm:"type:uuid;index"`
	Status       Status       `gorm:"type:varchar(20);not null;index"`
	Reason       string       `gorm:"type:varchar(100);not null"`
	Description  string       `gorm:"type:text"`
	Items        []ReturnItem `gorm:"-"`
	RequestedBy  uuid.UUID    `gorm:"type:uuid;not null"`
	ApprovedBy   *uuid.UUID   `gorm:"type:uuid"`
	ApprovedAt   *time.Time   `gorm:"type:timestamptz"`
	RejectedBy   *uuid.UUID   `gorm:"type:uuid"`
	RejectedAt   *time.Time   `gorm:"type:timestamptz"`
	RejectReason string       `gorm:"type:varchar(255)"`
	ReceivedBy   *uuid.UUID   `gorm:"type:uuid"`
	ReceivedAt   *time.Time   `gorm:"type:timestamptz"`
	RefundedAt   *time.Time   `gorm:"type:timestamptz"`
	CompletedAt  *time.Time   `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (Return) TableName() string {
	return "returns"
}

// NewReturn creates a return in REQUESTED status. Order eligibility and
// item provenance are validated by the application service before this
// constructor runs; the aggregate enforces its own shape.
func NewReturn(
	rmaNumber string,
	orderID uuid.UUID,
	customerID *uuid.UUID,
	reason, description string,
	requestedBy uuid.UUID,
) (*Return, error) {
	if rmaNumber == "" {
		return nil, shared.NewDomainError("INVALID_RMA_NUMBER", "RMA number cannot be empty")
	}
	if len(rmaNumber) > 30 {
		return nil, shared.NewDomainError("INVALID_RMA_NUMBER", "RMA number cannot exceed 30 characters")
	}
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Return reason is required")
	}
	if requestedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Requesting actor cannot be empty")
	}

	r := &Return{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		RMANumber:         rmaNumber,
		OrderID:           orderID,
		CustomerID:        customerID,
		Status:            StatusRequested,
		Reason:            reason,
		Description:       description,
		Items:             make([]ReturnItem, 0),
		RequestedBy:       requestedBy,
	}

	r.AddDomainEvent(NewReturnRequestedEvent(r))

	return r, nil
}

// AddItem attaches a return line item. Only allowed while REQUESTED.
func (r *Return) AddItem(item *ReturnItem) error {
	if r.Status != StatusRequested {
		return shared.NewDomainError("INVALID_STATE", "Cannot add items after the return is processed")
	}
	for _, existing := range r.Items {
		if existing.OrderItemID == item.OrderItemID {
			return shared.NewDomainError("DUPLICATE_ITEM", "Order item already in this return")
		}
	}

	item.ReturnID = r.ID
	r.Items = append(r.Items, *item)
	r.UpdatedAt = time.Now()

	return nil
}

// Approve transitions REQUESTED -> APPROVED
func (r *Return) Approve(approvedBy uuid.UUID) error {
	if !r.Status.CanTransitionTo(StatusApproved) {
		return r.invalidTransition(StatusApproved)
	}
	if len(r.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot approve a return without items")
	}

	now := time.Now()
	r.Status = StatusApproved
	r.ApprovedBy = &approvedBy
	r.ApprovedAt = &now
	r.touch()

	return nil
}

// Reject transitions REQUESTED -> REJECTED
func (r *Return) Reject(rejectedBy uuid.UUID, reason string) error {
	if !r.Status.CanTransitionTo(StatusRejected) {
		return r.invalidTransition(StatusRejected)
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Reject reason is required")
	}

	now := time.Now()
	r.Status = StatusRejected
	r.RejectedBy = &rejectedBy
	r.RejectedAt = &now
	r.RejectReason = reason
	r.touch()

	return nil
}

// MarkReceived transitions APPROVED -> RECEIVED. This is the restock
// trigger: the caller re-credits stock for restockable items in the same
// transaction. The status guard makes a second receive attempt fail, so
// the re-credit happens exactly once.
func (r *Return) MarkReceived(receivedBy uuid.UUID) error {
	if !r.Status.CanTransitionTo(StatusReceived) {
		return r.invalidTransition(StatusReceived)
	}

	now := time.Now()
	r.Status = StatusReceived
	r.ReceivedBy = &receivedBy
	r.ReceivedAt = &now
	r.touch()

	r.AddDomainEvent(NewReturnReceivedEvent(r))

	return nil
}

// MarkRefunded transitions RECEIVED -> REFUNDED
func (r *Return) MarkRefunded() error {
	if !r.Status.CanTransitionTo(StatusRefunded) {
		return r.invalidTransition(StatusRefunded)
	}

	now := time.Now()
	r.Status = StatusRefunded
	r.RefundedAt = &now
	r.touch()

	return nil
}

// Complete transitions RECEIVED or REFUNDED -> COMPLETED
func (r *Return) Complete() error {
	if !r.Status.CanTransitionTo(StatusCompleted) {
		return r.invalidTransition(StatusCompleted)
	}

	now := time.Now()
	r.Status = StatusCompleted
	r.CompletedAt = &now
	r.touch()

	return nil
}

// RestockableItems returns the items whose receipt re-credits inventory
func (r *Return) RestockableItems() []ReturnItem {
	items := make([]ReturnItem, 0, len(r.Items))
	for _, item := range r.Items {
		if item.Restockable {
			items = append(items, item)
		}
	}
	return items
}

// RestockableQuantity returns the total unit count receipt will re-credit
func (r *Return) RestockableQuantity() int {
	total := 0
	for _, item := range r.Items {
		if item.Restockable {
			total += item.Quantity
		}
	}
	return total
}

// IsTerminal returns true if the return is in a terminal state
func (r *Return) IsTerminal() bool {
	return r.Status.IsTerminal()
}

func (r *Return) invalidTransition(target Status) error {
	return shared.NewDomainError("INVALID_STATE_TRANSITION",
		fmt.Sprintf("Cannot transition return from %s to %s", r.Status, target))
}

func (r *Return) touch() {
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}
