package order

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storecore/backend/internal/domain/catalog"
	domainorder "github.com/storecore/backend/internal/domain/order"
	"github.com/storecore/backend/internal/domain/shared"
	"github.com/storecore/backend/tests/testutil"
)

func setupOrderService(t *testing.T) (*OrderService, *testutil.MemStore) {
	t.Helper()
	store := testutil.NewMemStore()
	scope := store.Scope()
	svc := NewOrderService(scope, scope.OrderRepo, decimal.NewFromInt(10), zap.NewNop())
	return svc, store
}

// seedStockedVariant creates a product + variant with the given stock
func seedStockedVariant(t *testing.T, store *testutil.MemStore, sku string, stock int) *catalog.ProductVariant {
	t.Helper()

	product, err := catalog.NewProduct("Classic Tee", "", decimal.NewFromInt(50))
	require.NoError(t, err)
	store.SeedProduct(product)

	variant, err := catalog.NewProductVariant(product.ID, sku, "M", "Black", decimal.NewFromInt(5))
	require.NoError(t, err)
	if stock > 0 {
		require.NoError(t, variant.ApplyStockChange(stock))
	}
	store.SeedVariant(variant)
	return variant
}

func testAddressRequest() *ShippingAddressRequest {
	return &ShippingAddressRequest{
		RecipientName: "Ama Mensah",
		Phone:         "+233201234567",
		Line1:         "12 Ring Road",
		City:          "Accra",
	}
}

func checkoutCmd(variantID uuid.UUID, quantity int, deliveryMethod string) CreateOrderCommand {
	customerID := uuid.New()
	return CreateOrderCommand{
		CustomerID:     &customerID,
		Items:          []CheckoutItem{{VariantID: variantID, Quantity: quantity}},
		DeliveryMethod: deliveryMethod,
		Address:        testAddressRequest(),
		MobileMoney: MobileMoneyDetails{
			Provider:    "MTN",
			PhoneNumber: "+233201234567",
			Reference:   "MM-REF-001",
		},
	}
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending order with pending transaction", func(t *testing.T) {
		svc, store := setupOrderService(t)
		variant := seedStockedVariant(t, store, "TEE-M-BLK", 10)

		resp, err := svc.CreateOrder(ctx, checkoutCmd(variant.ID, 2, "HOME_DELIVERY"))
		require.NoError(t, err)

		assert.Equal(t, "PENDING", resp.Status)
		assert.Equal(t, "PENDING", resp.PaymentStatus)
		assert.Equal(t, "ONLINE", resp.Source)
		assert.Regexp(t, `^ORD-\d{8}-\d{4}$`, resp.OrderNumber)
		// unit price 55 = base 50 + additional 5; delivery fee 10
		assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(110)))
		assert.True(t, resp.Total.Equal(decimal.NewFromInt(120)))

		// pending transaction carries the provider reference
		tx, err := store.Scope().TransactionRepo.FindByReference(ctx, "MM-REF-001")
		require.NoError(t, err)
		require.NotNil(t, tx)
		assert.Equal(t, resp.ID, tx.OrderID)
		assert.True(t, tx.Amount.Equal(resp.Total))

		// stock is NOT deducted at checkout
		stored, err := store.Scope().VariantRepo.FindByID(ctx, variant.ID)
		require.NoError(t, err)
		assert.Equal(t, 10, stored.StockQuantity)
		assert.Empty(t, store.LedgerEntries())
	})

	t.Run("store pickup has no delivery fee", func(t *testing.T) {
		svc, store := setupOrderService(t)
		variant := seedStockedVariant(t, store, "TEE-M-BLK", 10)

		cmd := checkoutCmd(variant.ID, 1, "STORE_PICKUP")
		cmd.Address = nil
		resp, err := svc.CreateOrder(ctx, cmd)
		require.NoError(t, err)
		assert.True(t, resp.DeliveryFee.IsZero())
		assert.True(t, resp.Total.Equal(resp.Subtotal))
	})

	t.Run("advisory availability check rejects oversized lines", func(t *testing.T) {
		svc, store := setupOrderService(t)
		variant := seedStockedVariant(t, store, "TEE-M-BLK", 2)

		_, err := svc.CreateOrder(ctx, checkoutCmd(variant.ID, 3, "HOME_DELIVERY"))
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)

		// nothing persisted
		total, err := store.Scope().OrderRepo.Count(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("rejects inactive variant", func(t *testing.T) {
		svc, store := setupOrderService(t)
		variant := seedStockedVariant(t, store, "TEE-M-BLK", 10)

		loaded, err := store.Scope().VariantRepo.FindByID(ctx, variant.ID)
		require.NoError(t, err)
		require.NoError(t, loaded.Deactivate())
		require.NoError(t, store.Scope().VariantRepo.Save(ctx, loaded))

		_, err = svc.CreateOrder(ctx, checkoutCmd(variant.ID, 1, "HOME_DELIVERY"))
		require.Error(t, err)
	})

	t.Run("rejects missing mobile money details", func(t *testing.T) {
		svc, store := setupOrderService(t)
		variant := seedStockedVariant(t, store, "TEE-M-BLK", 10)

		cmd := checkoutCmd(variant.ID, 1, "HOME_DELIVERY")
		cmd.MobileMoney.Reference = ""
		_, err := svc.CreateOrder(ctx, cmd)
		require.Error(t, err)
	})

	t.Run("home delivery requires an address", func(t *testing.T) {
		svc, store := setupOrderService(t)
		variant := seedStockedVariant(t, store, "TEE-M-BLK", 10)

		cmd := checkoutCmd(variant.ID, 1, "HOME_DELIVERY")
		cmd.Address = nil
		_, err := svc.CreateOrder(ctx, cmd)
		require.Error(t, err)
	})
}

func TestTransitionOrder(t *testing.T) {
	ctx := context.Background()

	placeOrder := func(t *testing.T, svc *OrderService, store *testutil.MemStore, deliveryMethod string) *OrderResponse {
		t.Helper()
		variant := seedStockedVariant(t, store, "TEE-M-BLK", 10)
		cmd := checkoutCmd(variant.ID, 1, deliveryMethod)
		if deliveryMethod == "STORE_PICKUP" {
			cmd.Address = nil
		}
		resp, err := svc.CreateOrder(ctx, cmd)
		require.NoError(t, err)
		return resp
	}

	transition := func(svc *OrderService, id uuid.UUID, target string) (*OrderResponse, error) {
		return svc.TransitionOrder(ctx, id, TransitionOrderCommand{Target: target, Actor: uuid.New()})
	}

	t.Run("walks the pickup lifecycle", func(t *testing.T) {
		svc, store := setupOrderService(t)
		placed := placeOrder(t, svc, store, "STORE_PICKUP")

		for _, target := range []string{"CONFIRMED", "PROCESSING", "READY_FOR_PICKUP", "DELIVERED"} {
			resp, err := transition(svc, placed.ID, target)
			require.NoError(t, err)
			assert.Equal(t, target, resp.Status)
		}

		final, err := svc.GetByID(ctx, placed.ID)
		require.NoError(t, err)
		assert.NotNil(t, final.CompletedAt)
	})

	t.Run("rejects shipped as a transition target", func(t *testing.T) {
		svc, store := setupOrderService(t)
		placed := placeOrder(t, svc, store, "HOME_DELIVERY")

		_, err := transition(svc, placed.ID, "SHIPPED")
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION", domainErr.Code)
	})

	t.Run("rejects illegal transition and changes nothing", func(t *testing.T) {
		svc, store := setupOrderService(t)
		placed := placeOrder(t, svc, store, "STORE_PICKUP")

		_, err := transition(svc, placed.ID, "PROCESSING")
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE_TRANSITION", domainErr.Code)

		current, err := svc.GetByID(ctx, placed.ID)
		require.NoError(t, err)
		assert.Equal(t, "PENDING", current.Status)
	})

	t.Run("cancels with reason", func(t *testing.T) {
		svc, store := setupOrderService(t)
		placed := placeOrder(t, svc, store, "STORE_PICKUP")

		resp, err := svc.TransitionOrder(ctx, placed.ID, TransitionOrderCommand{
			Target: "CANCELLED",
			Actor:  uuid.New(),
			Reason: "customer changed mind",
		})
		require.NoError(t, err)
		assert.Equal(t, "CANCELLED", resp.Status)
		assert.Equal(t, "customer changed mind", resp.CancelReason)
	})

	t.Run("unknown order is not found", func(t *testing.T) {
		svc, _ := setupOrderService(t)
		_, err := transition(svc, uuid.New(), "CONFIRMED")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("unknown target status is rejected", func(t *testing.T) {
		svc, store := setupOrderService(t)
		placed := placeOrder(t, svc, store, "STORE_PICKUP")
		_, err := transition(svc, placed.ID, "TELEPORTED")
		require.Error(t, err)
	})
}

func TestOrderQueries(t *testing.T) {
	ctx := context.Background()
	svc, store := setupOrderService(t)
	variant := seedStockedVariant(t, store, "TEE-M-BLK", 10)

	placed, err := svc.CreateOrder(ctx, checkoutCmd(variant.ID, 1, "HOME_DELIVERY"))
	require.NoError(t, err)

	t.Run("gets by number", func(t *testing.T) {
		found, err := svc.GetByNumber(ctx, placed.OrderNumber)
		require.NoError(t, err)
		assert.Equal(t, placed.ID, found.ID)

		_, err = svc.GetByNumber(ctx, "ORD-19700101-0001")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("status summary counts", func(t *testing.T) {
		summary, err := svc.StatusSummary(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), summary.Counts[domainorder.OrderStatusPending.String()])
		assert.Equal(t, int64(1), summary.Total)
	})
}
