package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appinventory "github.com/storecore/backend/internal/application/inventory"
	"github.com/storecore/backend/internal/application/txn"
	"github.com/storecore/backend/internal/domain/inventory"
	"github.com/storecore/backend/internal/domain/order"
	"github.com/storecore/backend/internal/domain/payment"
	"github.com/storecore/backend/internal/domain/shared"
	"github.com/storecore/backend/internal/infrastructure/telemetry"
)

// duplicateSuppressionTTL bounds how long a processed webhook key is
// remembered for the fast-path. DB state remains the source of truth.
const duplicateSuppressionTTL = 24 * time.Hour

// ReconciliationService applies external payment outcomes to transactions
// and their orders. It is idempotent: replayed events whose outcome the
// transaction already reflects are no-ops, and an optional idempotency
// store suppresses rapid duplicates before the DB round-trip.
type ReconciliationService struct {
	scope            txn.Scope
	transactionRepo  payment.Repository
	stockService     *appinventory.StockService
	idempotencyStore shared.IdempotencyStore
	logger           *zap.Logger
	eventPublisher   shared.EventPublisher
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	scope txn.Scope,
	transactionRepo payment.Repository,
	stockService *appinventory.StockService,
	logger *zap.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		scope:           scope,
		transactionRepo: transactionRepo,
		stockService:    stockService,
		logger:          logger,
	}
}

// SetIdempotencyStore sets the duplicate-suppression store. Optional: the
// service stays correct without it, just slower under webhook replays.
func (s *ReconciliationService) SetIdempotencyStore(store shared.IdempotencyStore) {
	s.idempotencyStore = store
}

// SetEventPublisher sets the event publisher for post-commit events
func (s *ReconciliationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ApplyPaymentEvent reconciles one provider event by external reference.
// Unknown references are logged and swallowed: providers retry and send
// noise, and rejecting them would only trigger more retries.
func (s *ReconciliationService) ApplyPaymentEvent(ctx context.Context, externalReference string, outcome payment.Outcome, verifiedBy *uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment_reconciliation", "apply_event",
		telemetry.WithAttribute(telemetry.SpanAttrReference, externalReference),
		telemetry.WithAttribute("outcome", string(outcome)),
	)
	defer span.End()

	if externalReference == "" {
		return shared.NewDomainError("VALIDATION", "External reference is required")
	}
	if !outcome.IsValid() {
		return shared.NewDomainError("VALIDATION", "Unknown payment outcome")
	}

	if s.suppressDuplicate(ctx, externalReference, outcome) {
		telemetry.AddEvent(span, "duplicate_suppressed")
		s.logger.Debug("duplicate payment event suppressed",
			zap.String("reference", externalReference),
			zap.String("outcome", string(outcome)),
		)
		return nil
	}

	tx, err := s.transactionRepo.FindByReference(ctx, externalReference)
	if err != nil {
		return err
	}
	if tx == nil {
		telemetry.AddEvent(span, "unknown_reference_ignored")
		s.logger.Warn("payment event for unknown reference ignored",
			zap.String("reference", externalReference),
			zap.String("outcome", string(outcome)),
		)
		return nil
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrTransactionID, tx.ID)
	if err := s.apply(ctx, tx.ID, outcome, verifiedBy); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	return nil
}

// VerifyPayment is the staff manual-verification path: same reconciliation
// core, addressed by transaction ID instead of provider reference.
func (s *ReconciliationService) VerifyPayment(ctx context.Context, cmd VerifyPaymentCommand) (*TransactionResponse, error) {
	outcome := payment.Outcome(cmd.Outcome)
	if !outcome.IsValid() {
		return nil, shared.NewDomainError("VALIDATION", "Unknown payment outcome")
	}
	if cmd.Actor == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Verifying staff member is required")
	}

	tx, err := s.transactionRepo.FindByID(ctx, cmd.TransactionID)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, shared.ErrNotFound
	}

	if err := s.apply(ctx, tx.ID, outcome, &cmd.Actor); err != nil {
		return nil, err
	}

	updated, err := s.transactionRepo.FindByID(ctx, cmd.TransactionID)
	if err != nil {
		return nil, err
	}
	return ToTransactionResponse(updated), nil
}

// apply runs the reconciliation unit: flip the transaction, mirror the
// outcome onto the order's payment status, and for a confirmed ONLINE
// order deduct stock, all atomically.
func (s *ReconciliationService) apply(ctx context.Context, transactionID uuid.UUID, outcome payment.Outcome, verifiedBy *uuid.UUID) error {
	var committedOrder *order.Order

	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		tx, err := repos.Transactions().FindByID(ctx, transactionID)
		if err != nil {
			return err
		}
		if tx == nil {
			return shared.ErrNotFound
		}

		if tx.Reflects(outcome) {
			s.logger.Info("payment event already reflected, skipping",
				zap.String("transaction_id", tx.ID.String()),
				zap.String("outcome", string(outcome)),
			)
			return nil
		}

		o, err := repos.Orders().FindByID(ctx, tx.OrderID)
		if err != nil {
			return err
		}
		if o == nil {
			return shared.ErrNotFound
		}

		wasPending := tx.Status == payment.TransactionStatusPending

		switch outcome {
		case payment.OutcomeSucceeded:
			if err := tx.Complete(verifiedBy); err != nil {
				return err
			}
			if err := o.MarkPaid(); err != nil {
				return err
			}
			// the one-time PENDING->COMPLETED flip is the stock-deduction
			// moment for online orders
			if wasPending && o.Source == order.SourceOnline {
				s.deductOrderStock(ctx, repos, o, tx)
			}
		case payment.OutcomeFailed:
			if err := tx.Fail(); err != nil {
				return err
			}
			if err := o.MarkPaymentFailed(); err != nil {
				return err
			}
		case payment.OutcomeCancelled:
			if err := tx.Cancel(); err != nil {
				return err
			}
			// a cancelled attempt leaves the order unpaid and blocked
			if err := o.MarkPaymentFailed(); err != nil {
				return err
			}
		case payment.OutcomeRefunded:
			if err := tx.Refund(); err != nil {
				return err
			}
			// stock is not re-credited here; that is the return subsystem's job
			if err := o.MarkRefunded(); err != nil {
				return err
			}
		}

		if err := repos.Transactions().SaveWithLock(ctx, tx); err != nil {
			return err
		}
		if err := repos.Orders().SaveWithLock(ctx, o); err != nil {
			return err
		}

		committedOrder = o
		return nil
	})
	if err != nil {
		return err
	}

	if s.eventPublisher != nil && committedOrder != nil {
		events := committedOrder.GetDomainEvents()
		if len(events) > 0 {
			_ = s.eventPublisher.Publish(ctx, events...)
			committedOrder.ClearDomainEvents()
		}
	}

	return nil
}

// deductOrderStock deducts every order line through the stock adjustment
// path. A line the stock cannot cover does not unwind the payment: the
// funds moved, so the shortfall is logged and left for staff to resolve.
func (s *ReconciliationService) deductOrderStock(ctx context.Context, repos txn.Repositories, o *order.Order, tx *payment.Transaction) {
	performedBy := uuid.Nil
	if tx.VerifiedBy != nil {
		performedBy = *tx.VerifiedBy
	}
	if performedBy == uuid.Nil {
		if o.CustomerID != nil {
			performedBy = *o.CustomerID
		} else {
			performedBy = o.ID
		}
	}

	for i := range o.Items {
		item := &o.Items[i]
		_, err := s.stockService.AdjustWithRepos(ctx, repos, appinventory.AdjustStockCommand{
			VariantID:      item.VariantID,
			QuantityChange: -item.Quantity,
			ChangeType:     inventory.ChangeTypeSale,
			Reason:         fmt.Sprintf("Payment confirmed for %s", o.OrderNumber),
			PerformedBy:    performedBy,
			OrderID:        &o.ID,
		})
		if err != nil {
			s.logger.Error("stock deduction failed after payment confirmation",
				zap.String("order_number", o.OrderNumber),
				zap.String("sku", item.SKU),
				zap.Int("quantity", item.Quantity),
				zap.Error(err),
			)
		}
	}
}

// GetTransaction returns a transaction by ID
func (s *ReconciliationService) GetTransaction(ctx context.Context, id uuid.UUID) (*TransactionResponse, error) {
	tx, err := s.transactionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, shared.ErrNotFound
	}
	return ToTransactionResponse(tx), nil
}

// ListByOrder returns all payment attempts for an order
func (s *ReconciliationService) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]TransactionResponse, error) {
	transactions, err := s.transactionRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	responses := make([]TransactionResponse, len(transactions))
	for i := range transactions {
		responses[i] = *ToTransactionResponse(&transactions[i])
	}
	return responses, nil
}

// suppressDuplicate is the pre-DB fast path. Store failures only disable
// the fast path; correctness comes from Reflects inside the unit.
func (s *ReconciliationService) suppressDuplicate(ctx context.Context, reference string, outcome payment.Outcome) bool {
	if s.idempotencyStore == nil {
		return false
	}
	key := fmt.Sprintf("payment:%s:%s", reference, outcome)
	fresh, err := s.idempotencyStore.MarkProcessed(ctx, key, duplicateSuppressionTTL)
	if err != nil {
		s.logger.Warn("idempotency store unavailable, falling back to DB check", zap.Error(err))
		return false
	}
	return !fresh
}
