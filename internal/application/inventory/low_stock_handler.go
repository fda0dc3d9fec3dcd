package inventory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/storecore/backend/internal/domain/catalog"
	"github.com/storecore/backend/internal/domain/shared"
)

// LowStockHandler handles VariantLowStock events and raises operator
// alerts when an adjustment leaves a variant at or below its threshold.
type LowStockHandler struct {
	logger   *zap.Logger
	notifier StockAlertNotifier
}

// StockAlertNotifier is the interface for sending stock alerts.
// Implementations can support different channels (in-app, email, SMS, etc.)
type StockAlertNotifier interface {
	// SendAlert sends a stock alert notification
	SendAlert(ctx context.Context, alert StockAlert) error
}

// StockAlert represents a stock level alert
type StockAlert struct {
	VariantID string `json:"variant_id"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
	Threshold int    `json:"threshold"`
	AlertType string `json:"alert_type"` // "low_stock", "out_of_stock"
}

// NewLowStockHandler creates a new handler for low stock events
func NewLowStockHandler(logger *zap.Logger) *LowStockHandler {
	return &LowStockHandler{
		logger: logger,
	}
}

// WithNotifier sets the notifier for sending alerts
func (h *LowStockHandler) WithNotifier(notifier StockAlertNotifier) *LowStockHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockHandler) EventTypes() []string {
	return []string{catalog.EventTypeVariantLowStock}
}

// Handle processes a VariantLowStockEvent
func (h *LowStockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	lowStockEvent, ok := event.(*catalog.VariantLowStockEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", catalog.EventTypeVariantLowStock),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			catalog.EventTypeVariantLowStock, event.EventType())
	}

	h.logger.Warn("variant stock at or below threshold",
		zap.String("variant_id", lowStockEvent.VariantID.String()),
		zap.String("sku", lowStockEvent.SKU),
		zap.Int("quantity", lowStockEvent.Quantity),
		zap.Int("threshold", lowStockEvent.Threshold),
	)

	alertType := "low_stock"
	if lowStockEvent.Quantity == 0 {
		alertType = "out_of_stock"
	}

	if h.notifier != nil {
		alert := StockAlert{
			VariantID: lowStockEvent.VariantID.String(),
			SKU:       lowStockEvent.SKU,
			Quantity:  lowStockEvent.Quantity,
			Threshold: lowStockEvent.Threshold,
			AlertType: alertType,
		}
		if err := h.notifier.SendAlert(ctx, alert); err != nil {
			// notification failure must not fail the event handling
			h.logger.Error("failed to send stock alert notification",
				zap.String("sku", alert.SKU),
				zap.Error(err),
			)
		}
	}

	return nil
}
