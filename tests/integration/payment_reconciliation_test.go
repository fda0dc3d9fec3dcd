package integration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apppayment "github.com/storecore/backend/internal/application/payment"
	"github.com/storecore/backend/internal/domain/order"
	"github.com/storecore/backend/internal/domain/payment"
	"github.com/storecore/backend/internal/infrastructure/cache"
	"github.com/storecore/backend/internal/infrastructure/persistence"
)

// onlineOrderFixture is a persisted ONLINE pickup order with one pending
// mobile-money transaction, ready for reconciliation.
type onlineOrderFixture struct {
	order       *order.Order
	transaction *payment.Transaction
	variantID   uuid.UUID
	quantity    int
}

func seedOnlineOrder(t *testing.T, tdb *TestDB, initialStock, quantity int) onlineOrderFixture {
	t.Helper()
	ctx := context.Background()

	svc := newStockService(tdb)
	variant := seedVariant(t, tdb, "WEB")
	restock(t, svc, variant.ID, initialStock)

	orderRepo := persistence.NewGormOrderRepository(tdb.DB)
	orderNumber, err := orderRepo.GenerateOrderNumber(ctx)
	require.NoError(t, err)

	customerID := uuid.New()
	o, err := order.NewOnlineOrder(orderNumber, &customerID,
		order.PaymentMethodMobileMoney, order.DeliveryMethodStorePickup, nil, decimal.Zero)
	require.NoError(t, err)

	item, err := order.NewOrderItem(variant.ID, variant.ProductID,
		"Canvas Tote", variant.SKU, variant.Details(), quantity, decimal.NewFromInt(25))
	require.NoError(t, err)
	require.NoError(t, o.AddItem(item))
	require.NoError(t, orderRepo.Save(ctx, o))

	tx, err := payment.NewTransaction(o.ID, o.Total, order.PaymentMethodMobileMoney,
		"mpesa", "ref-"+uuid.NewString())
	require.NoError(t, err)
	transactionRepo := persistence.NewGormTransactionRepository(tdb.DB)
	require.NoError(t, transactionRepo.Save(ctx, tx))

	return onlineOrderFixture{order: o, transaction: tx, variantID: variant.ID, quantity: quantity}
}

func newReconciliationService(tdb *TestDB) *apppayment.ReconciliationService {
	return apppayment.NewReconciliationService(
		persistence.NewGormScope(tdb.DB),
		persistence.NewGormTransactionRepository(tdb.DB),
		newStockService(tdb),
		zap.NewNop(),
	)
}

// TestPaymentWebhook_ReplayIsIdempotent delivers the same SUCCEEDED event
// three times. The transaction completes once, the order flips to PAID
// once, and stock is deducted exactly once.
func TestPaymentWebhook_ReplayIsIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewSharedTestDB(t)
	ctx := context.Background()

	fx := seedOnlineOrder(t, tdb, 10, 3)
	svc := newReconciliationService(tdb)

	for i := 0; i < 3; i++ {
		err := svc.ApplyPaymentEvent(ctx, fx.transaction.Reference, payment.OutcomeSucceeded, nil)
		require.NoError(t, err, "replay %d should be a no-op, not an error", i)
	}

	transactionRepo := persistence.NewGormTransactionRepository(tdb.DB)
	tx, err := transactionRepo.FindByID(ctx, fx.transaction.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.TransactionStatusCompleted, tx.Status)

	orderRepo := persistence.NewGormOrderRepository(tdb.DB)
	o, err := orderRepo.FindByID(ctx, fx.order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentStatusPaid, o.PaymentStatus)

	variantRepo := persistence.NewGormVariantRepository(tdb.DB)
	variant, err := variantRepo.FindByID(ctx, fx.variantID)
	require.NoError(t, err)
	assert.Equal(t, 10-fx.quantity, variant.StockQuantity, "stock deducted exactly once despite replays")

	ledgerRepo := persistence.NewGormLedgerRepository(tdb.DB)
	count, err := ledgerRepo.CountByVariant(ctx, fx.variantID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count, "one restock entry and one sale entry")
}

// TestPaymentWebhook_ReplayWithSuppressionStore exercises the fast path:
// an idempotency store short-circuits duplicates before the DB round-trip,
// with the same observable outcome.
func TestPaymentWebhook_ReplayWithSuppressionStore(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewSharedTestDB(t)
	ctx := context.Background()

	fx := seedOnlineOrder(t, tdb, 8, 2)
	svc := newReconciliationService(tdb)
	svc.SetIdempotencyStore(cache.NewInMemoryIdempotencyStore())

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.ApplyPaymentEvent(ctx, fx.transaction.Reference, payment.OutcomeSucceeded, nil))
	}

	variantRepo := persistence.NewGormVariantRepository(tdb.DB)
	variant, err := variantRepo.FindByID(ctx, fx.variantID)
	require.NoError(t, err)
	assert.Equal(t, 6, variant.StockQuantity)
}

// TestPaymentWebhook_UnknownReferenceIgnored verifies provider noise for a
// reference we never issued is swallowed without error or side effects.
func TestPaymentWebhook_UnknownReferenceIgnored(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewSharedTestDB(t)
	svc := newReconciliationService(tdb)

	err := svc.ApplyPaymentEvent(context.Background(), "ref-never-issued", payment.OutcomeSucceeded, nil)
	assert.NoError(t, err)
}

// TestPaymentWebhook_FailureBlocksOrder confirms a FAILED outcome marks the
// order's payment failed and leaves stock untouched.
func TestPaymentWebhook_FailureBlocksOrder(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewSharedTestDB(t)
	ctx := context.Background()

	fx := seedOnlineOrder(t, tdb, 10, 4)
	svc := newReconciliationService(tdb)

	require.NoError(t, svc.ApplyPaymentEvent(ctx, fx.transaction.Reference, payment.OutcomeFailed, nil))

	transactionRepo := persistence.NewGormTransactionRepository(tdb.DB)
	tx, err := transactionRepo.FindByID(ctx, fx.transaction.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.TransactionStatusFailed, tx.Status)

	orderRepo := persistence.NewGormOrderRepository(tdb.DB)
	o, err := orderRepo.FindByID(ctx, fx.order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentStatusFailed, o.PaymentStatus)

	variantRepo := persistence.NewGormVariantRepository(tdb.DB)
	variant, err := variantRepo.FindByID(ctx, fx.variantID)
	require.NoError(t, err)
	assert.Equal(t, 10, variant.StockQuantity, "failed payments never touch stock")
}
