package payment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appinventory "github.com/storecore/backend/internal/application/inventory"
	"github.com/storecore/backend/internal/domain/catalog"
	"github.com/storecore/backend/internal/domain/inventory"
	"github.com/storecore/backend/internal/domain/order"
	"github.com/storecore/backend/internal/domain/payment"
	"github.com/storecore/backend/internal/domain/shared"
	"github.com/storecore/backend/tests/testutil"
)

// fakeIdempotencyStore is an in-memory SETNX stand-in
type fakeIdempotencyStore struct {
	mu    sync.Mutex
	keys  map[string]bool
	calls int
	err   error
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{keys: make(map[string]bool)}
}

func (s *fakeIdempotencyStore) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return false, s.err
	}
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *fakeIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[key], nil
}

func (s *fakeIdempotencyStore) Close() error { return nil }

type reconciliationFixture struct {
	svc     *ReconciliationService
	store   *testutil.MemStore
	order   *order.Order
	tx      *payment.Transaction
	variant *catalog.ProductVariant
}

func setupReconciliation(t *testing.T) *reconciliationFixture {
	t.Helper()

	store := testutil.NewMemStore()
	scope := store.Scope()
	stockSvc := appinventory.NewStockService(scope, scope.VariantRepo, scope.LedgerRepo)
	svc := NewReconciliationService(scope, scope.TransactionRepo, stockSvc, zap.NewNop())

	product, err := catalog.NewProduct("Classic Tee", "", decimal.NewFromInt(50))
	require.NoError(t, err)
	store.SeedProduct(product)

	variant, err := catalog.NewProductVariant(product.ID, "TEE-M-BLK", "M", "Black", decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, variant.ApplyStockChange(10))
	store.SeedVariant(variant)

	customerID := uuid.New()
	o, err := order.NewOnlineOrder("ORD-20260825-0001", &customerID,
		order.PaymentMethodMobileMoney, order.DeliveryMethodStorePickup, nil, decimal.Zero)
	require.NoError(t, err)

	item, err := order.NewOrderItem(variant.ID, product.ID, product.Name, variant.SKU, variant.Details(), 2, decimal.NewFromInt(50))
	require.NoError(t, err)
	require.NoError(t, o.AddItem(item))
	store.SeedOrder(o)

	tx, err := payment.NewTransaction(o.ID, o.Total, order.PaymentMethodMobileMoney, "MTN", "MM-REF-001")
	require.NoError(t, err)
	store.SeedTransaction(tx)

	return &reconciliationFixture{svc: svc, store: store, order: o, tx: tx, variant: variant}
}

func (f *reconciliationFixture) reload(t *testing.T) (*payment.Transaction, *order.Order, *catalog.ProductVariant) {
	t.Helper()
	ctx := context.Background()
	tx, err := f.store.Scope().TransactionRepo.FindByID(ctx, f.tx.ID)
	require.NoError(t, err)
	o, err := f.store.Scope().OrderRepo.FindByID(ctx, f.order.ID)
	require.NoError(t, err)
	v, err := f.store.Scope().VariantRepo.FindByID(ctx, f.variant.ID)
	require.NoError(t, err)
	return tx, o, v
}

func TestApplyPaymentEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("SUCCEEDED settles the transaction and deducts online stock", func(t *testing.T) {
		f := setupReconciliation(t)

		require.NoError(t, f.svc.ApplyPaymentEvent(ctx, "MM-REF-001", payment.OutcomeSucceeded, nil))

		tx, o, v := f.reload(t)
		assert.Equal(t, payment.TransactionStatusCompleted, tx.Status)
		assert.Nil(t, tx.VerifiedBy)
		require.NotNil(t, tx.VerifiedAt)
		assert.Equal(t, order.PaymentStatusPaid, o.PaymentStatus)
		assert.Equal(t, 8, v.StockQuantity)

		entries := f.store.LedgerEntries()
		require.Len(t, entries, 1)
		assert.Equal(t, inventory.ChangeTypeSale, entries[0].ChangeType)
		assert.Equal(t, -2, entries[0].QuantityChange)
		require.NotNil(t, entries[0].OrderID)
		assert.Equal(t, f.order.ID, *entries[0].OrderID)
	})

	t.Run("replayed SUCCEEDED event is a no-op", func(t *testing.T) {
		f := setupReconciliation(t)

		require.NoError(t, f.svc.ApplyPaymentEvent(ctx, "MM-REF-001", payment.OutcomeSucceeded, nil))
		require.NoError(t, f.svc.ApplyPaymentEvent(ctx, "MM-REF-001", payment.OutcomeSucceeded, nil))

		_, _, v := f.reload(t)
		assert.Equal(t, 8, v.StockQuantity, "stock deducted exactly once")
		assert.Len(t, f.store.LedgerEntries(), 1)
	})

	t.Run("unknown reference is swallowed with a warning", func(t *testing.T) {
		f := setupReconciliation(t)

		require.NoError(t, f.svc.ApplyPaymentEvent(ctx, "MM-REF-404", payment.OutcomeSucceeded, nil))

		tx, o, v := f.reload(t)
		assert.Equal(t, payment.TransactionStatusPending, tx.Status)
		assert.Equal(t, order.PaymentStatusPending, o.PaymentStatus)
		assert.Equal(t, 10, v.StockQuantity)
	})

	t.Run("FAILED marks the order payment failed without touching stock", func(t *testing.T) {
		f := setupReconciliation(t)

		require.NoError(t, f.svc.ApplyPaymentEvent(ctx, "MM-REF-001", payment.OutcomeFailed, nil))

		tx, o, v := f.reload(t)
		assert.Equal(t, payment.TransactionStatusFailed, tx.Status)
		assert.Equal(t, order.PaymentStatusFailed, o.PaymentStatus)
		assert.Equal(t, 10, v.StockQuantity)
		assert.Empty(t, f.store.LedgerEntries())
	})

	t.Run("CANCELLED maps to a failed order payment", func(t *testing.T) {
		f := setupReconciliation(t)

		require.NoError(t, f.svc.ApplyPaymentEvent(ctx, "MM-REF-001", payment.OutcomeCancelled, nil))

		tx, o, _ := f.reload(t)
		assert.Equal(t, payment.TransactionStatusCancelled, tx.Status)
		assert.Equal(t, order.PaymentStatusFailed, o.PaymentStatus)
	})

	t.Run("REFUNDED does not re-credit stock", func(t *testing.T) {
		f := setupReconciliation(t)

		require.NoError(t, f.svc.ApplyPaymentEvent(ctx, "MM-REF-001", payment.OutcomeSucceeded, nil))
		require.NoError(t, f.svc.ApplyPaymentEvent(ctx, "MM-REF-001", payment.OutcomeRefunded, nil))

		tx, o, v := f.reload(t)
		assert.Equal(t, payment.TransactionStatusRefunded, tx.Status)
		assert.Equal(t, order.PaymentStatusRefunded, o.PaymentStatus)
		assert.Equal(t, 8, v.StockQuantity, "refund leaves the sale deduction in place")
		assert.Len(t, f.store.LedgerEntries(), 1)
	})

	t.Run("REFUNDED before settlement is rejected", func(t *testing.T) {
		f := setupReconciliation(t)

		err := f.svc.ApplyPaymentEvent(ctx, "MM-REF-001", payment.OutcomeRefunded, nil)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})

	t.Run("in-store settlement does not deduct stock again", func(t *testing.T) {
		f := setupReconciliation(t)

		customerID := uuid.New()
		o, err := order.NewInStoreOrder("ORD-20260825-0002", &customerID,
			order.PaymentMethodMobileMoney, order.PaymentStatusPending)
		require.NoError(t, err)
		item, err := order.NewOrderItem(f.variant.ID, f.variant.ProductID, "Classic Tee", f.variant.SKU, f.variant.Details(), 3, decimal.NewFromInt(50))
		require.NoError(t, err)
		require.NoError(t, o.AddItem(item))
		f.store.SeedOrder(o)

		tx, err := payment.NewTransaction(o.ID, o.Total, order.PaymentMethodMobileMoney, "MTN", "MM-POS-009")
		require.NoError(t, err)
		f.store.SeedTransaction(tx)

		require.NoError(t, f.svc.ApplyPaymentEvent(ctx, "MM-POS-009", payment.OutcomeSucceeded, nil))

		// the POS path deducted at sale time, reconciliation must not repeat it
		v, err := f.store.Scope().VariantRepo.FindByID(ctx, f.variant.ID)
		require.NoError(t, err)
		assert.Equal(t, 10, v.StockQuantity)
		assert.Empty(t, f.store.LedgerEntries())
	})

	t.Run("stock shortfall at confirmation keeps the payment settled", func(t *testing.T) {
		f := setupReconciliation(t)

		// drain the variant behind the pending order's back
		ctx := context.Background()
		v, err := f.store.Scope().VariantRepo.FindByID(ctx, f.variant.ID)
		require.NoError(t, err)
		require.NoError(t, v.ApplyStockChange(-9))
		require.NoError(t, f.store.Scope().VariantRepo.Save(ctx, v))

		require.NoError(t, f.svc.ApplyPaymentEvent(ctx, "MM-REF-001", payment.OutcomeSucceeded, nil))

		tx, o, after := f.reload(t)
		assert.Equal(t, payment.TransactionStatusCompleted, tx.Status, "funds moved, the settlement stands")
		assert.Equal(t, order.PaymentStatusPaid, o.PaymentStatus)
		assert.Equal(t, 1, after.StockQuantity, "the uncoverable line is left for staff")
		assert.Empty(t, f.store.LedgerEntries())
	})

	t.Run("rejects blank reference and unknown outcome", func(t *testing.T) {
		f := setupReconciliation(t)

		err := f.svc.ApplyPaymentEvent(ctx, "", payment.OutcomeSucceeded, nil)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION", domainErr.Code)

		err = f.svc.ApplyPaymentEvent(ctx, "MM-REF-001", payment.Outcome("SETTLED"), nil)
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION", domainErr.Code)
	})
}

func TestApplyPaymentEventFastPath(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate webhooks are suppressed before the DB lookup", func(t *testing.T) {
		f := setupReconciliation(t)
		idem := newFakeIdempotencyStore()
		f.svc.SetIdempotencyStore(idem)

		require.NoError(t, f.svc.ApplyPaymentEvent(ctx, "MM-REF-001", payment.OutcomeSucceeded, nil))
		require.NoError(t, f.svc.ApplyPaymentEvent(ctx, "MM-REF-001", payment.OutcomeSucceeded, nil))

		assert.Equal(t, 2, idem.calls)
		tx, _, _ := f.reload(t)
		assert.Equal(t, payment.TransactionStatusCompleted, tx.Status)
	})

	t.Run("distinct outcomes for one reference are not conflated", func(t *testing.T) {
		f := setupReconciliation(t)
		f.svc.SetIdempotencyStore(newFakeIdempotencyStore())

		require.NoError(t, f.svc.ApplyPaymentEvent(ctx, "MM-REF-001", payment.OutcomeSucceeded, nil))
		require.NoError(t, f.svc.ApplyPaymentEvent(ctx, "MM-REF-001", payment.OutcomeRefunded, nil))

		tx, _, _ := f.reload(t)
		assert.Equal(t, payment.TransactionStatusRefunded, tx.Status)
	})

	t.Run("store outage only disables the fast path", func(t *testing.T) {
		f := setupReconciliation(t)
		idem := newFakeIdempotencyStore()
		idem.err = errors.New("connection refused")
		f.svc.SetIdempotencyStore(idem)

		require.NoError(t, f.svc.ApplyPaymentEvent(ctx, "MM-REF-001", payment.OutcomeSucceeded, nil))

		tx, _, _ := f.reload(t)
		assert.Equal(t, payment.TransactionStatusCompleted, tx.Status)
	})
}

func TestVerifyPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("staff verification settles by transaction ID", func(t *testing.T) {
		f := setupReconciliation(t)
		staff := uuid.New()

		resp, err := f.svc.VerifyPayment(ctx, VerifyPaymentCommand{
			TransactionID: f.tx.ID,
			Outcome:       "SUCCEEDED",
			Actor:         staff,
		})
		require.NoError(t, err)

		assert.Equal(t, "COMPLETED", resp.Status)
		require.NotNil(t, resp.VerifiedBy)
		assert.Equal(t, staff, *resp.VerifiedBy)

		_, o, v := f.reload(t)
		assert.Equal(t, order.PaymentStatusPaid, o.PaymentStatus)
		assert.Equal(t, 8, v.StockQuantity, "verification is the online deduction moment too")
	})

	t.Run("verification replay is a no-op", func(t *testing.T) {
		f := setupReconciliation(t)
		staff := uuid.New()

		cmd := VerifyPaymentCommand{TransactionID: f.tx.ID, Outcome: "SUCCEEDED", Actor: staff}
		_, err := f.svc.VerifyPayment(ctx, cmd)
		require.NoError(t, err)
		_, err = f.svc.VerifyPayment(ctx, cmd)
		require.NoError(t, err)

		assert.Len(t, f.store.LedgerEntries(), 1)
	})

	t.Run("requires a known transaction and an actor", func(t *testing.T) {
		f := setupReconciliation(t)

		_, err := f.svc.VerifyPayment(ctx, VerifyPaymentCommand{
			TransactionID: uuid.New(), Outcome: "SUCCEEDED", Actor: uuid.New(),
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)

		_, err = f.svc.VerifyPayment(ctx, VerifyPaymentCommand{
			TransactionID: f.tx.ID, Outcome: "SUCCEEDED",
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_ACTOR", domainErr.Code)
	})
}

func TestReconciliationQueries(t *testing.T) {
	ctx := context.Background()

	t.Run("finds transactions by ID and order", func(t *testing.T) {
		f := setupReconciliation(t)

		got, err := f.svc.GetTransaction(ctx, f.tx.ID)
		require.NoError(t, err)
		assert.Equal(t, f.tx.ID, got.ID)
		assert.Equal(t, "MM-REF-001", got.Reference)

		byOrder, err := f.svc.ListByOrder(ctx, f.order.ID)
		require.NoError(t, err)
		require.Len(t, byOrder, 1)
		assert.Equal(t, f.tx.ID, byOrder[0].ID)

		_, err = f.svc.GetTransaction(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
