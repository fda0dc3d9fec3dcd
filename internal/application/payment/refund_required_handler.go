package payment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/storecore/backend/internal/domain/order"
	"github.com/storecore/backend/internal/domain/payment"
	"github.com/storecore/backend/internal/domain/shared"
)

// RefundRequiredHandler watches for cancelled orders that were already
// paid. The cancellation itself does not move money; this handler records
// the refund obligation so staff (or a future provider integration) can
// settle it.
type RefundRequiredHandler struct {
	transactionRepo payment.Repository
	logger          *zap.Logger
	notifier        RefundNotifier
}

// RefundNotifier is the interface for surfacing refund obligations
type RefundNotifier interface {
	// NotifyRefundRequired reports that a paid order was cancelled
	NotifyRefundRequired(ctx context.Context, obligation RefundObligation) error
}

// RefundObligation describes a refund that staff must settle
type RefundObligation struct {
	OrderID       string `json:"order_id"`
	OrderNumber   string `json:"order_number"`
	Amount        string `json:"amount"`
	TransactionID string `json:"transaction_id,omitempty"`
	Reference     string `json:"reference,omitempty"`
}

// NewRefundRequiredHandler creates a new handler for cancelled-order events
func NewRefundRequiredHandler(transactionRepo payment.Repository, logger *zap.Logger) *RefundRequiredHandler {
	return &RefundRequiredHandler{
		transactionRepo: transactionRepo,
		logger:          logger,
	}
}

// WithNotifier sets the notifier for refund obligations
func (h *RefundRequiredHandler) WithNotifier(notifier RefundNotifier) *RefundRequiredHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *RefundRequiredHandler) EventTypes() []string {
	return []string{order.EventTypeOrderCancelled}
}

// Handle processes an OrderCancelledEvent, acting only when the order had
// been paid before cancellation.
func (h *RefundRequiredHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	cancelled, ok := event.(*order.OrderCancelledEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", order.EventTypeOrderCancelled),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			order.EventTypeOrderCancelled, event.EventType())
	}

	if !cancelled.WasPaid {
		return nil
	}

	obligation := RefundObligation{
		OrderID:     cancelled.OrderID.String(),
		OrderNumber: cancelled.OrderNumber,
		Amount:      cancelled.Total.String(),
	}

	// best effort: the settled transaction gives staff the provider
	// reference to refund against
	transactions, err := h.transactionRepo.FindByOrder(ctx, cancelled.OrderID)
	if err != nil {
		h.logger.Error("failed to load transactions for cancelled order",
			zap.String("order_number", cancelled.OrderNumber),
			zap.Error(err),
		)
	} else {
		for i := range transactions {
			if transactions[i].Status == payment.TransactionStatusCompleted {
				obligation.TransactionID = transactions[i].ID.String()
				obligation.Reference = transactions[i].Reference
				break
			}
		}
	}

	h.logger.Warn("paid order cancelled, refund required",
		zap.String("order_id", obligation.OrderID),
		zap.String("order_number", obligation.OrderNumber),
		zap.String("amount", obligation.Amount),
		zap.String("reference", obligation.Reference),
		zap.String("reason", cancelled.Reason),
	)

	if h.notifier != nil {
		if err := h.notifier.NotifyRefundRequired(ctx, obligation); err != nil {
			// notification failure must not fail the event handling
			h.logger.Error("failed to send refund notification",
				zap.String("order_number", obligation.OrderNumber),
				zap.Error(err),
			)
		}
	}

	return nil
}
