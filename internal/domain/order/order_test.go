package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storecore/backend/internal/domain/catalog"
	"github.com/storecore/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAddress() *ShippingAddress {
	return &ShippingAddress{
		RecipientName: "Ama Mensah",
		Phone:         "+233201234567",
		Line1:         "12 Ring Road",
		City:          "Accra",
	}
}

func createTestOnlineOrder(t *testing.T) *Order {
	t.Helper()
	o, err := NewOnlineOrder("ORD-20260825-0001", nil, PaymentMethodMobileMoney,
		DeliveryMethodHomeDelivery, testAddress(), decimal.NewFromInt(10))
	require.NoError(t, err)

	item, err := NewOrderItem(uuid.New(), uuid.New(), "Classic Tee", "TEE-M-BLK",
		catalog.VariantDetails{Size: "M", Color: "Black"}, 2, decimal.NewFromInt(50))
	require.NoError(t, err)
	require.NoError(t, o.AddItem(item))

	return o
}

func TestOrderStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name   string
		from   OrderStatus
		to     OrderStatus
		want   bool
	}{
		{"pending to confirmed", OrderStatusPending, OrderStatusConfirmed, true},
		{"pending to cancelled", OrderStatusPending, OrderStatusCancelled, true},
		{"pending to delivered directly", OrderStatusPending, OrderStatusDelivered, false},
		{"pending to processing directly", OrderStatusPending, OrderStatusProcessing, false},
		{"confirmed to processing", OrderStatusConfirmed, OrderStatusProcessing, true},
		{"confirmed to shipped directly", OrderStatusConfirmed, OrderStatusShipped, false},
		{"processing to shipped", OrderStatusProcessing, OrderStatusShipped, true},
		{"processing to ready for pickup", OrderStatusProcessing, OrderStatusReadyForPickup, true},
		{"processing to delivered directly", OrderStatusProcessing, OrderStatusDelivered, false},
		{"ready for pickup to delivered", OrderStatusReadyForPickup, OrderStatusDelivered, true},
		{"shipped to delivered", OrderStatusShipped, OrderStatusDelivered, true},
		{"shipped to cancelled", OrderStatusShipped, OrderStatusCancelled, true},
		{"delivered is terminal", OrderStatusDelivered, OrderStatusCancelled, false},
		{"cancelled is terminal", OrderStatusCancelled, OrderStatusConfirmed, false},
		{"cancelled cannot be recancelled", OrderStatusCancelled, OrderStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestNewOnlineOrder(t *testing.T) {
	t.Run("creates pending order with pending payment", func(t *testing.T) {
		customerID := uuid.New()
		o, err := NewOnlineOrder("ORD-20260825-0001", &customerID, PaymentMethodMobileMoney,
			DeliveryMethodHomeDelivery, testAddress(), decimal.NewFromInt(10))
		require.NoError(t, err)

		assert.Equal(t, OrderStatusPending, o.Status)
		assert.Equal(t, PaymentStatusPending, o.PaymentStatus)
		assert.Equal(t, SourceOnline, o.Source)
		assert.Nil(t, o.CompletedAt)
		assert.Len(t, o.GetDomainEvents(), 1)
	})

	t.Run("home delivery requires an address", func(t *testing.T) {
		_, err := NewOnlineOrder("ORD-20260825-0002", nil, PaymentMethodMobileMoney,
			DeliveryMethodHomeDelivery, nil, decimal.Zero)
		require.Error(t, err)
	})

	t.Run("store pickup needs no address", func(t *testing.T) {
		o, err := NewOnlineOrder("ORD-20260825-0003", nil, PaymentMethodMobileMoney,
			DeliveryMethodStorePickup, nil, decimal.Zero)
		require.NoError(t, err)
		assert.Nil(t, o.ShippingAddress)
	})

	t.Run("rejects invalid payment method", func(t *testing.T) {
		_, err := NewOnlineOrder("ORD-20260825-0004", nil, PaymentMethod("CHEQUE"),
			DeliveryMethodStorePickup, nil, decimal.Zero)
		require.Error(t, err)
	})

	t.Run("rejects empty order number", func(t *testing.T) {
		_, err := NewOnlineOrder("", nil, PaymentMethodCash, DeliveryMethodStorePickup, nil, decimal.Zero)
		require.Error(t, err)
	})
}

func TestNewInStoreOrder(t *testing.T) {
	t.Run("cash sale is born delivered and paid", func(t *testing.T) {
		o, err := NewInStoreOrder("ORD-20260825-0010", nil, PaymentMethodCash, PaymentStatusPaid)
		require.NoError(t, err)

		assert.Equal(t, OrderStatusDelivered, o.Status)
		assert.Equal(t, PaymentStatusPaid, o.PaymentStatus)
		assert.Equal(t, SourceInStore, o.Source)
		assert.Equal(t, DeliveryMethodStorePickup, o.DeliveryMethod)
		require.NotNil(t, o.CompletedAt)
	})

	t.Run("mobile money sale starts payment pending", func(t *testing.T) {
		o, err := NewInStoreOrder("ORD-20260825-0011", nil, PaymentMethodMobileMoney, PaymentStatusPending)
		require.NoError(t, err)
		assert.Equal(t, PaymentStatusPending, o.PaymentStatus)
		assert.Equal(t, OrderStatusDelivered, o.Status)
	})

	t.Run("rejects failed payment status at creation", func(t *testing.T) {
		_, err := NewInStoreOrder("ORD-20260825-0012", nil, PaymentMethodCash, PaymentStatusFailed)
		require.Error(t, err)
	})
}

func TestOrderAddItem(t *testing.T) {
	t.Run("recalculates totals", func(t *testing.T) {
		o := createTestOnlineOrder(t)

		assert.True(t, o.Subtotal.Equal(decimal.NewFromInt(100)))
		assert.True(t, o.Total.Equal(decimal.NewFromInt(110)))

		item, err := NewOrderItem(uuid.New(), uuid.New(), "Classic Tee", "TEE-L-BLK",
			catalog.VariantDetails{Size: "L", Color: "Black"}, 1, decimal.NewFromFloat(42.50))
		require.NoError(t, err)
		require.NoError(t, o.AddItem(item))

		assert.True(t, o.Subtotal.Equal(decimal.NewFromFloat(142.50)))
		assert.True(t, o.Total.Equal(decimal.NewFromFloat(152.50)))
	})

	t.Run("rejects duplicate variant", func(t *testing.T) {
		o := createTestOnlineOrder(t)
		dup, err := NewOrderItem(o.Items[0].VariantID, uuid.New(), "Classic Tee", "TEE-M-BLK",
			catalog.VariantDetails{Size: "M", Color: "Black"}, 1, decimal.NewFromInt(50))
		require.NoError(t, err)
		require.Error(t, o.AddItem(dup))
	})

	t.Run("rejects items on a placed online order", func(t *testing.T) {
		o := createTestOnlineOrder(t)
		require.NoError(t, o.Confirm())

		item, err := NewOrderItem(uuid.New(), uuid.New(), "Classic Tee", "TEE-S-BLK",
			catalog.VariantDetails{Size: "S", Color: "Black"}, 1, decimal.NewFromInt(50))
		require.NoError(t, err)
		require.Error(t, o.AddItem(item))
	})
}

func TestOrderLifecycleHomeDelivery(t *testing.T) {
	o := createTestOnlineOrder(t)

	require.NoError(t, o.Confirm())
	assert.Equal(t, OrderStatusConfirmed, o.Status)

	require.NoError(t, o.MarkPaid())
	require.NoError(t, o.StartProcessing())
	assert.Equal(t, OrderStatusProcessing, o.Status)

	require.Error(t, o.MarkReadyForPickup(), "home delivery order cannot go ready for pickup")

	require.NoError(t, o.MarkShipped())
	assert.Equal(t, OrderStatusShipped, o.Status)

	require.NoError(t, o.MarkDelivered())
	assert.Equal(t, OrderStatusDelivered, o.Status)
	require.NotNil(t, o.CompletedAt)

	require.Error(t, o.Cancel("too late"), "delivered is terminal")
}

func TestOrderLifecycleStorePickup(t *testing.T) {
	o, err := NewOnlineOrder("ORD-20260825-0020", nil, PaymentMethodMobileMoney,
		DeliveryMethodStorePickup, nil, decimal.Zero)
	require.NoError(t, err)

	item, err := NewOrderItem(uuid.New(), uuid.New(), "Classic Tee", "TEE-M-RED",
		catalog.VariantDetails{Size: "M", Color: "Red"}, 1, decimal.NewFromInt(50))
	require.NoError(t, err)
	require.NoError(t, o.AddItem(item))

	require.NoError(t, o.Confirm())
	require.NoError(t, o.StartProcessing())

	require.Error(t, o.MarkShipped(), "pickup order cannot be shipped")

	require.NoError(t, o.MarkReadyForPickup())
	assert.Equal(t, OrderStatusReadyForPickup, o.Status)

	require.NoError(t, o.ConfirmPickup())
	assert.Equal(t, OrderStatusDelivered, o.Status)
	require.NotNil(t, o.CompletedAt)
}

func TestOrderPaymentGating(t *testing.T) {
	o := createTestOnlineOrder(t)
	require.NoError(t, o.Confirm())
	require.NoError(t, o.MarkPaymentFailed())

	err := o.StartProcessing()
	require.Error(t, err, "order must not progress past CONFIRMED while payment failed")

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)

	// payment recovery unblocks progress
	require.NoError(t, o.MarkPaid())
	require.NoError(t, o.StartProcessing())
}

func TestOrderCancel(t *testing.T) {
	t.Run("unpaid cancellation carries no refund obligation", func(t *testing.T) {
		o := createTestOnlineOrder(t)
		o.ClearDomainEvents()

		require.NoError(t, o.Cancel("customer changed mind"))
		assert.Equal(t, OrderStatusCancelled, o.Status)
		require.NotNil(t, o.CancelledAt)

		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		cancelled, ok := events[0].(*OrderCancelledEvent)
		require.True(t, ok)
		assert.False(t, cancelled.WasPaid)
	})

	t.Run("paid cancellation flags the refund obligation", func(t *testing.T) {
		o := createTestOnlineOrder(t)
		require.NoError(t, o.Confirm())
		require.NoError(t, o.MarkPaid())
		o.ClearDomainEvents()

		require.NoError(t, o.Cancel("out of stock"))

		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		cancelled, ok := events[0].(*OrderCancelledEvent)
		require.True(t, ok)
		assert.True(t, cancelled.WasPaid)
		// the state machine itself never touches payment status
		assert.Equal(t, PaymentStatusPaid, o.PaymentStatus)
	})

	t.Run("requires a reason", func(t *testing.T) {
		o := createTestOnlineOrder(t)
		require.Error(t, o.Cancel(""))
		assert.Equal(t, OrderStatusPending, o.Status)
	})
}

func TestOrderPaymentStatus(t *testing.T) {
	t.Run("mark paid is idempotent", func(t *testing.T) {
		o := createTestOnlineOrder(t)
		require.NoError(t, o.MarkPaid())
		require.NoError(t, o.MarkPaid())
		assert.Equal(t, PaymentStatusPaid, o.PaymentStatus)
	})

	t.Run("refund requires paid", func(t *testing.T) {
		o := createTestOnlineOrder(t)
		require.Error(t, o.MarkRefunded())

		require.NoError(t, o.MarkPaid())
		require.NoError(t, o.MarkRefunded())
		assert.Equal(t, PaymentStatusRefunded, o.PaymentStatus)
	})

	t.Run("cannot fail a paid order", func(t *testing.T) {
		o := createTestOnlineOrder(t)
		require.NoError(t, o.MarkPaid())
		require.Error(t, o.MarkPaymentFailed())
	})

	t.Run("cannot repay a refunded order", func(t *testing.T) {
		o := createTestOnlineOrder(t)
		require.NoError(t, o.MarkPaid())
		require.NoError(t, o.MarkRefunded())
		require.Error(t, o.MarkPaid())
	})
}

func TestOrderInvalidTransitionLeavesStateUntouched(t *testing.T) {
	o := createTestOnlineOrder(t)
	before := o.Status
	version := o.Version

	require.Error(t, o.MarkDelivered())
	require.Error(t, o.StartProcessing())
	require.Error(t, o.MarkShipped())

	assert.Equal(t, before, o.Status)
	assert.Equal(t, version, o.Version)
	assert.Nil(t, o.CompletedAt)
}
