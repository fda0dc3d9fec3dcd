package payment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storecore/backend/internal/domain/order"
	"github.com/storecore/backend/internal/domain/shared"
)

// TransactionStatus represents the status of a payment attempt
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
	TransactionStatusRefunded  TransactionStatus = "REFUNDED"
)

// IsValid checks if the status is a valid TransactionStatus
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusFailed,
		TransactionStatusCancelled, TransactionStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of TransactionStatus
func (s TransactionStatus) String() string {
	return string(s)
}

// IsTerminal returns true for statuses a transaction cannot leave, except
// COMPLETED which may still move to REFUNDED
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusFailed || s == TransactionStatusCancelled || s == TransactionStatusRefunded
}

// Outcome is the result reported by the external payment provider for a
// payment attempt, via webhook or manual verification.
type Outcome string

const (
	OutcomeSucceeded Outcome = "SUCCEEDED"
	OutcomeFailed    Outcome = "FAILED"
	OutcomeCancelled Outcome = "CANCELLED"
	OutcomeRefunded  Outcome = "REFUNDED"
)

// IsValid checks if the outcome is valid
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeSucceeded, OutcomeFailed, OutcomeCancelled, OutcomeRefunded:
		return true
	}
	return false
}

// String returns the string representation of Outcome
func (o Outcome) String() string {
	return string(o)
}

// Transaction records one payment attempt for an order. Attempts can be
// superseded by newer ones but are never deleted.
type Transaction struct {
	shared.BaseAggregateRoot
	OrderID    uuid.UUID           `gorm:"type:uuid;not null;index"`
	Amount     decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	Method     order.PaymentMethod `gorm:"type:varchar(20);not null"`
	Provider   string              `gorm:"type:varchar(50)"`
	Reference  string              `gorm:"type:varchar(100);index"`
	Status     TransactionStatus   `gorm:"type:varchar(20);not null;index"`
	VerifiedBy *uuid.UUID          `gorm:"type:uuid"`
	VerifiedAt *time.Time          `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (Transaction) TableName() string {
	return "transactions"
}

// NewTransaction creates a pending payment transaction. Reference is the
// external provider correlation ID; it is required for provider-driven
// methods so webhooks can find their transaction, and empty for cash.
func NewTransaction(
	orderID uuid.UUID,
	amount decimal.Decimal,
	method order.PaymentMethod,
	provider, reference string,
) (*Transaction, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Invalid payment method")
	}
	if method == order.PaymentMethodMobileMoney {
		if provider == "" {
			return nil, shared.NewDomainError("INVALID_PROVIDER", "Mobile money requires a provider")
		}
		if reference == "" {
			return nil, shared.NewDomainError("INVALID_REFERENCE", "Mobile money requires a provider reference")
		}
	}

	return &Transaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		Amount:            amount,
		Method:            method,
		Provider:          provider,
		Reference:         reference,
		Status:            TransactionStatusPending,
	}, nil
}

// NewCompletedTransaction creates a transaction already settled, for
// in-person cash tenders where the money changed hands before persistence.
func NewCompletedTransaction(
	orderID uuid.UUID,
	amount decimal.Decimal,
	method order.PaymentMethod,
	verifiedBy uuid.UUID,
) (*Transaction, error) {
	tx, err := NewTransaction(orderID, amount, method, "", "")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	tx.Status = TransactionStatusCompleted
	tx.VerifiedBy = &verifiedBy
	tx.VerifiedAt = &now

	return tx, nil
}

// Complete settles the transaction after the provider confirms payment
func (t *Transaction) Complete(verifiedBy *uuid.UUID) error {
	if t.Status == TransactionStatusCompleted {
		return nil
	}
	if t.Status != TransactionStatusPending {
		return t.invalidTransition(TransactionStatusCompleted)
	}

	now := time.Now()
	t.Status = TransactionStatusCompleted
	t.VerifiedBy = verifiedBy
	t.VerifiedAt = &now
	t.touch()

	return nil
}

// Fail records a declined or errored payment attempt
func (t *Transaction) Fail() error {
	if t.Status == TransactionStatusFailed {
		return nil
	}
	if t.Status != TransactionStatusPending {
		return t.invalidTransition(TransactionStatusFailed)
	}

	t.Status = TransactionStatusFailed
	t.touch()

	return nil
}

// Cancel records a payment attempt abandoned before settlement
func (t *Transaction) Cancel() error {
	if t.Status == TransactionStatusCancelled {
		return nil
	}
	if t.Status != TransactionStatusPending {
		return t.invalidTransition(TransactionStatusCancelled)
	}

	t.Status = TransactionStatusCancelled
	t.touch()

	return nil
}

// Refund records that the provider returned the funds
func (t *Transaction) Refund() error {
	if t.Status == TransactionStatusRefunded {
		return nil
	}
	if t.Status != TransactionStatusCompleted {
		return t.invalidTransition(TransactionStatusRefunded)
	}

	t.Status = TransactionStatusRefunded
	t.touch()

	return nil
}

// Reflects reports whether the transaction's status already embodies the
// given provider outcome. Used by reconciliation for idempotency: a
// replayed event whose outcome is already reflected is a no-op.
func (t *Transaction) Reflects(outcome Outcome) bool {
	switch outcome {
	case OutcomeSucceeded:
		return t.Status == TransactionStatusCompleted
	case OutcomeFailed:
		return t.Status == TransactionStatusFailed
	case OutcomeCancelled:
		return t.Status == TransactionStatusCancelled
	case OutcomeRefunded:
		return t.Status == TransactionStatusRefunded
	}
	return false
}

func (t *Transaction) invalidTransition(target TransactionStatus) error {
	return shared.NewDomainError("INVALID_STATE",
		fmt.Sprintf("Cannot transition transaction from %s to %s", t.Status, target))
}

func (t *Transaction) touch() {
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}
