package pos

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appinventory "github.com/storecore/backend/internal/application/inventory"
	"github.com/storecore/backend/internal/domain/catalog"
	"github.com/storecore/backend/internal/domain/inventory"
	"github.com/storecore/backend/internal/domain/shared"
	"github.com/storecore/backend/tests/testutil"
)

func setupSaleService(t *testing.T) (*SaleService, *testutil.MemStore) {
	t.Helper()
	store := testutil.NewMemStore()
	scope := store.Scope()
	stockSvc := appinventory.NewStockService(scope, scope.VariantRepo, scope.LedgerRepo)
	return NewSaleService(scope, stockSvc, zap.NewNop()), store
}

func seedVariant(t *testing.T, store *testutil.MemStore, sku string, basePrice, additional int64, stock int) *catalog.ProductVariant {
	t.Helper()

	product, err := catalog.NewProduct("Classic Tee", "", decimal.NewFromInt(basePrice))
	require.NoError(t, err)
	store.SeedProduct(product)

	variant, err := catalog.NewProductVariant(product.ID, sku, "M", "Black", decimal.NewFromInt(additional))
	require.NoError(t, err)
	if stock > 0 {
		require.NoError(t, variant.ApplyStockChange(stock))
	}
	store.SeedVariant(variant)
	return variant
}

func cashSale(variantID uuid.UUID, quantity int, received int64) ExecuteSaleCommand {
	amount := decimal.NewFromInt(received)
	return ExecuteSaleCommand{
		CashierID:      uuid.New(),
		PaymentMethod:  "CASH",
		PaymentDetails: PaymentDetails{AmountReceived: &amount},
		Items:          []SaleItem{{VariantID: variantID, Quantity: quantity}},
	}
}

func mobileMoneySale(variantID uuid.UUID, quantity int) ExecuteSaleCommand {
	return ExecuteSaleCommand{
		CashierID:     uuid.New(),
		PaymentMethod: "MOBILE_MONEY",
		PaymentDetails: PaymentDetails{
			Provider:    "MTN",
			PhoneNumber: "+233201234567",
			Reference:   "MM-POS-001",
		},
		Items: []SaleItem{{VariantID: variantID, Quantity: quantity}},
	}
}

func TestExecuteSaleCash(t *testing.T) {
	ctx := context.Background()

	t.Run("completes sale with change due", func(t *testing.T) {
		svc, store := setupSaleService(t)
		variant := seedVariant(t, store, "TEE-M-BLK", 50, 5, 10)

		result, err := svc.ExecuteSale(ctx, cashSale(variant.ID, 2, 120))
		require.NoError(t, err)

		// unit price 55, subtotal 110, change 10
		assert.Equal(t, "DELIVERED", result.Order.Status)
		assert.Equal(t, "PAID", result.Order.PaymentStatus)
		assert.Equal(t, "IN_STORE", result.Order.Source)
		assert.NotNil(t, result.Order.CompletedAt)
		assert.True(t, result.Order.Subtotal.Equal(decimal.NewFromInt(110)))
		require.NotNil(t, result.ChangeDue)
		assert.True(t, result.ChangeDue.Equal(decimal.NewFromInt(10)))

		// stock deducted with an order-correlated SALE ledger entry
		stored, err := store.Scope().VariantRepo.FindByID(ctx, variant.ID)
		require.NoError(t, err)
		assert.Equal(t, 8, stored.StockQuantity)

		entries := store.LedgerEntries()
		require.Len(t, entries, 1)
		assert.Equal(t, inventory.ChangeTypeSale, entries[0].ChangeType)
		assert.Equal(t, -2, entries[0].QuantityChange)
		require.NotNil(t, entries[0].OrderID)
		assert.Equal(t, result.Order.ID, *entries[0].OrderID)

		// completed cash transaction
		tx, err := store.Scope().TransactionRepo.FindByID(ctx, result.TransactionID)
		require.NoError(t, err)
		assert.Equal(t, "COMPLETED", tx.Status.String())
	})

	t.Run("rejects insufficient payment before any write", func(t *testing.T) {
		svc, store := setupSaleService(t)
		variant := seedVariant(t, store, "TEE-M-BLK", 50, 0, 10)

		_, err := svc.ExecuteSale(ctx, cashSale(variant.ID, 2, 99))
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_PAYMENT", domainErr.Code)

		assertNothingPersisted(t, store, variant.ID, 10)
	})

	t.Run("requires amount received", func(t *testing.T) {
		svc, store := setupSaleService(t)
		variant := seedVariant(t, store, "TEE-M-BLK", 50, 0, 10)

		cmd := cashSale(variant.ID, 1, 50)
		cmd.PaymentDetails.AmountReceived = nil
		_, err := svc.ExecuteSale(ctx, cmd)
		require.Error(t, err)
	})

	t.Run("exact payment has zero change", func(t *testing.T) {
		svc, store := setupSaleService(t)
		variant := seedVariant(t, store, "TEE-M-BLK", 50, 0, 10)

		result, err := svc.ExecuteSale(ctx, cashSale(variant.ID, 1, 50))
		require.NoError(t, err)
		require.NotNil(t, result.ChangeDue)
		assert.True(t, result.ChangeDue.IsZero())
	})
}

func TestExecuteSaleMobileMoney(t *testing.T) {
	ctx := context.Background()

	t.Run("persists pending payment awaiting confirmation", func(t *testing.T) {
		svc, store := setupSaleService(t)
		variant := seedVariant(t, store, "TEE-M-BLK", 50, 0, 10)

		result, err := svc.ExecuteSale(ctx, mobileMoneySale(variant.ID, 1))
		require.NoError(t, err)

		assert.Equal(t, "DELIVERED", result.Order.Status)
		assert.Equal(t, "PENDING", result.Order.PaymentStatus)
		assert.Nil(t, result.ChangeDue)

		tx, err := store.Scope().TransactionRepo.FindByReference(ctx, "MM-POS-001")
		require.NoError(t, err)
		require.NotNil(t, tx)
		assert.Equal(t, "PENDING", tx.Status.String())
	})

	t.Run("requires provider details", func(t *testing.T) {
		svc, store := setupSaleService(t)
		variant := seedVariant(t, store, "TEE-M-BLK", 50, 0, 10)

		cmd := mobileMoneySale(variant.ID, 1)
		cmd.PaymentDetails.Reference = ""
		_, err := svc.ExecuteSale(ctx, cmd)
		require.Error(t, err)
		assertNothingPersisted(t, store, variant.ID, 10)
	})
}

func TestExecuteSaleAtomicity(t *testing.T) {
	ctx := context.Background()

	t.Run("insufficient stock on any line aborts everything", func(t *testing.T) {
		svc, store := setupSaleService(t)
		ok := seedVariant(t, store, "TEE-M-BLK", 50, 0, 10)
		short := seedVariant(t, store, "TEE-L-BLK", 50, 0, 1)

		cmd := cashSale(ok.ID, 2, 500)
		cmd.Items = append(cmd.Items, SaleItem{VariantID: short.ID, Quantity: 5})

		_, err := svc.ExecuteSale(ctx, cmd)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)
		assert.Contains(t, domainErr.Message, "TEE-L-BLK")

		assertNothingPersisted(t, store, ok.ID, 10)
		assertNothingPersisted(t, store, short.ID, 1)
	})

	t.Run("unknown variant aborts the sale", func(t *testing.T) {
		svc, store := setupSaleService(t)
		ok := seedVariant(t, store, "TEE-M-BLK", 50, 0, 10)

		cmd := cashSale(ok.ID, 1, 500)
		cmd.Items = append(cmd.Items, SaleItem{VariantID: uuid.New(), Quantity: 1})

		_, err := svc.ExecuteSale(ctx, cmd)
		require.Error(t, err)
		assertNothingPersisted(t, store, ok.ID, 10)
	})

	t.Run("rejects empty items", func(t *testing.T) {
		svc, _ := setupSaleService(t)
		amount := decimal.NewFromInt(100)
		_, err := svc.ExecuteSale(ctx, ExecuteSaleCommand{
			CashierID:      uuid.New(),
			PaymentMethod:  "CASH",
			PaymentDetails: PaymentDetails{AmountReceived: &amount},
		})
		require.Error(t, err)
	})

	t.Run("rejects duplicate variant lines", func(t *testing.T) {
		svc, store := setupSaleService(t)
		variant := seedVariant(t, store, "TEE-M-BLK", 50, 0, 10)

		cmd := cashSale(variant.ID, 1, 500)
		cmd.Items = append(cmd.Items, SaleItem{VariantID: variant.ID, Quantity: 1})

		_, err := svc.ExecuteSale(ctx, cmd)
		require.Error(t, err)
		assertNothingPersisted(t, store, variant.ID, 10)
	})
}

// assertNothingPersisted checks the all-or-nothing contract after a failed sale
func assertNothingPersisted(t *testing.T, store *testutil.MemStore, variantID uuid.UUID, expectedStock int) {
	t.Helper()
	ctx := context.Background()

	orders, err := store.Scope().OrderRepo.Count(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Zero(t, orders, "no order must survive a failed sale")

	transactions, err := store.Scope().TransactionRepo.Count(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Zero(t, transactions, "no transaction must survive a failed sale")

	assert.Empty(t, store.LedgerEntries(), "no ledger entry must survive a failed sale")

	variant, err := store.Scope().VariantRepo.FindByID(ctx, variantID)
	require.NoError(t, err)
	assert.Equal(t, expectedStock, variant.StockQuantity, "stock must be untouched")
}
