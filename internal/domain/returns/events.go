package returns

import (
	"github.com/google/uuid"
	"github.com/storecore/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeReturn = "Return"

// Event type constants
const (
	EventTypeReturnRequested = "return.requested"
	EventTypeReturnReceived  = "return.received"
)

// ReturnRequestedEvent is raised when a customer requests a return
type ReturnRequestedEvent struct {
	shared.BaseDomainEvent
	ReturnID  uuid.UUID `json:"return_id"`
	RMANumber string    `json:"rma_number"`
	OrderID   uuid.UUID `json:"order_id"`
	Reason    string    `json:"reason"`
}

// NewReturnRequestedEvent creates a new ReturnRequestedEvent
func NewReturnRequestedEvent(r *Return) *ReturnRequestedEvent {
	return &ReturnRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnRequested, AggregateTypeReturn, r.ID),
		ReturnID:        r.ID,
		RMANumber:       r.RMANumber,
		OrderID:         r.OrderID,
		Reason:          r.Reason,
	}
}

// ReturnReceivedEvent is raised when returned goods physically arrive.
// RestockedQuantity is what the receipt re-credited to inventory.
type ReturnReceivedEvent struct {
	shared.BaseDomainEvent
	ReturnID          uuid.UUID `json:"return_id"`
	RMANumber         string    `json:"rma_number"`
	OrderID           uuid.UUID `json:"order_id"`
	RestockedQuantity int       `json:"restocked_quantity"`
}

// NewReturnReceivedEvent creates a new ReturnReceivedEvent
func NewReturnReceivedEvent(r *Return) *ReturnReceivedEvent {
	return &ReturnReceivedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeReturnReceived, AggregateTypeReturn, r.ID),
		ReturnID:          r.ID,
		RMANumber:         r.RMANumber,
		OrderID:           r.OrderID,
		RestockedQuantity: r.RestockableQuantity(),
	}
}
