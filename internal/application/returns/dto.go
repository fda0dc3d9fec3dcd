package returns

import (
	"time"

	"github.com/google/uuid"

	"github.com/storecore/backend/internal/domain/returns"
)

// CreateReturnItem is one line of a return request
type CreateReturnItem struct {
	OrderItemID uuid.UUID `json:"order_item_id" binding:"required"`
	Quantity    int       `json:"quantity" binding:"required,min=1"`
	Condition   string    `json:"condition" binding:"required,oneof=UNOPENED OPENED_UNUSED DEFECTIVE DAMAGED"`
	Restockable *bool     `json:"restockable"`
}

// CreateReturnCommand is the input for raising a return
type CreateReturnCommand struct {
	OrderID     uuid.UUID          `json:"order_id" binding:"required"`
	CustomerID  *uuid.UUID         `json:"customer_id"`
	Reason      string             `json:"reason" binding:"required,max=100"`
	Description string             `json:"description" binding:"max=2000"`
	Items       []CreateReturnItem `json:"items" binding:"required,min=1,dive"`
	RequestedBy uuid.UUID          `json:"-"`
}

// TransitionReturnCommand is the input for a return state transition
type TransitionReturnCommand struct {
	Target string    `json:"target" binding:"required"`
	Actor  uuid.UUID `json:"-"`
	Reason string    `json:"reason" binding:"max=255"`
}

// ReturnItemResponse is the read model for a return line
type ReturnItemResponse struct {
	ID          uuid.UUID `json:"id"`
	OrderItemID uuid.UUID `json:"order_item_id"`
	VariantID   uuid.UUID `json:"variant_id"`
	Quantity    int       `json:"quantity"`
	Condition   string    `json:"condition"`
	Restockable bool      `json:"restockable"`
}

// ReturnResponse is the read model for a return
type ReturnResponse struct {
	ID           uuid.UUID            `json:"id"`
	RMANumber    string               `json:"rma_number"`
	OrderID      uuid.UUID            `json:"order_id"`
	CustomerID   *uuid.UUID           `json:"customer_id,omitempty"`
	Status       string               `json:"status"`
	Reason       string               `json:"reason"`
	Description  string               `json:"description,omitempty"`
	Items        []ReturnItemResponse `json:"items"`
	RequestedBy  uuid.UUID            `json:"requested_by"`
	ApprovedAt   *time.Time           `json:"approved_at,omitempty"`
	RejectedAt   *time.Time           `json:"rejected_at,omitempty"`
	RejectReason string               `json:"reject_reason,omitempty"`
	ReceivedAt   *time.Time           `json:"received_at,omitempty"`
	RefundedAt   *time.Time           `json:"refunded_at,omitempty"`
	CompletedAt  *time.Time           `json:"completed_at,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// ToReturnResponse converts a domain return to its read model
func ToReturnResponse(r *returns.Return) *ReturnResponse {
	items := make([]ReturnItemResponse, len(r.Items))
	for i := range r.Items {
		item := &r.Items[i]
		items[i] = ReturnItemResponse{
			ID:          item.ID,
			OrderItemID: item.OrderItemID,
			VariantID:   item.VariantID,
			Quantity:    item.Quantity,
			Condition:   item.Condition.String(),
			Restockable: item.Restockable,
		}
	}

	return &ReturnResponse{
		ID:           r.ID,
		RMANumber:    r.RMANumber,
		OrderID:      r.OrderID,
		CustomerID:   r.CustomerID,
		Status:       r.Status.String(),
		Reason:       r.Reason,
		Description:  r.Description,
		Items:        items,
		RequestedBy:  r.RequestedBy,
		ApprovedAt:   r.ApprovedAt,
		RejectedAt:   r.RejectedAt,
		RejectReason: r.RejectReason,
		ReceivedAt:   r.ReceivedAt,
		RefundedAt:   r.RefundedAt,
		CompletedAt:  r.CompletedAt,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
