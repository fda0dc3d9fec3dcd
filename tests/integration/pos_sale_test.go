package integration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apppos "github.com/storecore/backend/internal/application/pos"
	"github.com/storecore/backend/internal/domain/order"
	"github.com/storecore/backend/internal/domain/payment"
	"github.com/storecore/backend/internal/infrastructure/persistence"
)

func newSaleService(tdb *TestDB) *apppos.SaleService {
	return apppos.NewSaleService(
		persistence.NewGormScope(tdb.DB),
		newStockService(tdb),
		zap.NewNop(),
	)
}

// TestPOSSale_CashCheckout runs a cash sale end to end: the order lands
// DELIVERED and PAID, change due is computed, stock is deducted, and a
// completed transaction exists.
func TestPOSSale_CashCheckout(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	ctx := context.Background()

	stockSvc := newStockService(tdb)
	variant := seedVariant(t, tdb, "POS")
	restock(t, stockSvc, variant.ID, 10)

	received := decimal.NewFromInt(100)
	result, err := newSaleService(tdb).ExecuteSale(ctx, apppos.ExecuteSaleCommand{
		CashierID:     uuid.New(),
		PaymentMethod: "CASH",
		PaymentDetails: apppos.PaymentDetails{
			AmountReceived: &received,
		},
		Items: []apppos.SaleItem{{VariantID: variant.ID, Quantity: 3}},
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	// base price 25 x 3 = 75, change 25
	require.NotNil(t, result.ChangeDue)
	assert.True(t, result.ChangeDue.Equal(decimal.NewFromInt(25)), "change due was %s", result.ChangeDue)
	assert.Equal(t, order.OrderStatusDelivered.String(), result.Order.Status)
	assert.Equal(t, order.PaymentStatusPaid.String(), result.Order.PaymentStatus)

	variantRepo := persistence.NewGormVariantRepository(tdb.DB)
	fresh, err := variantRepo.FindByID(ctx, variant.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, fresh.StockQuantity)

	transactionRepo := persistence.NewGormTransactionRepository(tdb.DB)
	tx, err := transactionRepo.FindByID(ctx, result.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, payment.TransactionStatusCompleted, tx.Status)
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(75)))
}

// TestPOSSale_InsufficientStockRollsBackEverything submits a sale where the
// second line exceeds available stock. The whole checkout aborts: no order,
// no transaction, no ledger entries, no stock change.
func TestPOSSale_InsufficientStockRollsBackEverything(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	ctx := context.Background()

	stockSvc := newStockService(tdb)
	okVariant := seedVariant(t, tdb, "OK")
	restock(t, stockSvc, okVariant.ID, 10)
	shortVariant := seedVariant(t, tdb, "SHORT")
	restock(t, stockSvc, shortVariant.ID, 1)

	received := decimal.NewFromInt(500)
	_, err := newSaleService(tdb).ExecuteSale(ctx, apppos.ExecuteSaleCommand{
		CashierID:     uuid.New(),
		PaymentMethod: "CASH",
		PaymentDetails: apppos.PaymentDetails{
			AmountReceived: &received,
		},
		Items: []apppos.SaleItem{
			{VariantID: okVariant.ID, Quantity: 2},
			{VariantID: shortVariant.ID, Quantity: 5},
		},
	})
	require.Error(t, err)

	variantRepo := persistence.NewGormVariantRepository(tdb.DB)
	ok, err := variantRepo.FindByID(ctx, okVariant.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, ok.StockQuantity)

	var orderCount int64
	require.NoError(t, tdb.DB.Model(&order.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount, "no order row may survive the rollback")

	ledgerRepo := persistence.NewGormLedgerRepository(tdb.DB)
	count, err := ledgerRepo.CountByVariant(ctx, okVariant.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "only the seed restock entry")
}

// TestPOSSale_MobileMoneyStaysPending verifies a mobile-money sale persists
// with payment PENDING and deducts stock immediately; the reconciliation
// layer later settles the transaction.
func TestPOSSale_MobileMoneyStaysPending(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	ctx := context.Background()

	stockSvc := newStockService(tdb)
	variant := seedVariant(t, tdb, "MOMO")
	restock(t, stockSvc, variant.ID, 5)

	reference := "ref-" + uuid.NewString()
	result, err := newSaleService(tdb).ExecuteSale(ctx, apppos.ExecuteSaleCommand{
		CashierID:     uuid.New(),
		PaymentMethod: "MOBILE_MONEY",
		PaymentDetails: apppos.PaymentDetails{
			Provider:    "mpesa",
			PhoneNumber: "+254700000001",
			Reference:   reference,
		},
		Items: []apppos.SaleItem{{VariantID: variant.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Nil(t, result.ChangeDue)
	assert.Equal(t, order.PaymentStatusPending.String(), result.Order.PaymentStatus)

	variantRepo := persistence.NewGormVariantRepository(tdb.DB)
	fresh, err := variantRepo.FindByID(ctx, variant.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, fresh.StockQuantity, "in-store stock leaves the shelf at sale time")

	transactionRepo := persistence.NewGormTransactionRepository(tdb.DB)
	tx, err := transactionRepo.FindByReference(ctx, reference)
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.Equal(t, payment.TransactionStatusPending, tx.Status)
}
