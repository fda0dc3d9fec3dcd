package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storecore/backend/internal/domain/payment"
)

// WebhookPayload is the provider's payment event notification
type WebhookPayload struct {
	Reference string `json:"reference" binding:"required,max=100"`
	Outcome   string `json:"outcome" binding:"required,oneof=SUCCEEDED FAILED CANCELLED REFUNDED"`
	Provider  string `json:"provider" binding:"max=50"`
	EventID   string `json:"event_id" binding:"max=100"`
}

// VerifyPaymentCommand is the input for staff manual verification
type VerifyPaymentCommand struct {
	TransactionID uuid.UUID `json:"transaction_id" binding:"required"`
	Outcome       string    `json:"outcome" binding:"required,oneof=SUCCEEDED FAILED CANCELLED REFUNDED"`
	Actor         uuid.UUID `json:"-"`
}

// TransactionResponse is the read model for a payment transaction
type TransactionResponse struct {
	ID         uuid.UUID       `json:"id"`
	OrderID    uuid.UUID       `json:"order_id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Provider   string          `json:"provider,omitempty"`
	Reference  string          `json:"reference,omitempty"`
	Status     string          `json:"status"`
	VerifiedBy *uuid.UUID      `json:"verified_by,omitempty"`
	VerifiedAt *time.Time      `json:"verified_at,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ToTransactionResponse converts a domain transaction to its read model
func ToTransactionResponse(tx *payment.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:         tx.ID,
		OrderID:    tx.OrderID,
		Amount:     tx.Amount,
		Method:     tx.Method.String(),
		Provider:   tx.Provider,
		Reference:  tx.Reference,
		Status:     tx.Status.String(),
		VerifiedBy: tx.VerifiedBy,
		VerifiedAt: tx.VerifiedAt,
		CreatedAt:  tx.CreatedAt,
		UpdatedAt:  tx.UpdatedAt,
	}
}
