package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storecore/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestVariant(t *testing.T) *ProductVariant {
	t.Helper()
	v, err := NewProductVariant(uuid.New(), "TEE-M-BLK", "M", "Black", decimal.Zero)
	require.NoError(t, err)
	return v
}

func TestNewProductVariant(t *testing.T) {
	t.Run("creates active variant with zero stock", func(t *testing.T) {
		v := createTestVariant(t)

		assert.Equal(t, 0, v.StockQuantity)
		assert.True(t, v.IsActive())
		assert.Equal(t, "TEE-M-BLK", v.SKU)
		assert.Len(t, v.GetDomainEvents(), 1)
	})

	t.Run("uppercases the SKU", func(t *testing.T) {
		v, err := NewProductVariant(uuid.New(), "tee-m-blk", "M", "Black", decimal.Zero)
		require.NoError(t, err)
		assert.Equal(t, "TEE-M-BLK", v.SKU)
	})

	t.Run("rejects empty SKU", func(t *testing.T) {
		_, err := NewProductVariant(uuid.New(), "  ", "M", "Black", decimal.Zero)
		require.Error(t, err)
	})

	t.Run("rejects nil product", func(t *testing.T) {
		_, err := NewProductVariant(uuid.Nil, "TEE-M-BLK", "M", "Black", decimal.Zero)
		require.Error(t, err)
	})
}

func TestApplyStockChange(t *testing.T) {
	t.Run("applies positive and negative deltas", func(t *testing.T) {
		v := createTestVariant(t)

		require.NoError(t, v.ApplyStockChange(5))
		assert.Equal(t, 5, v.StockQuantity)

		require.NoError(t, v.ApplyStockChange(-3))
		assert.Equal(t, 2, v.StockQuantity)
	})

	t.Run("rejects change driving stock negative", func(t *testing.T) {
		v := createTestVariant(t)
		require.NoError(t, v.ApplyStockChange(2))

		err := v.ApplyStockChange(-3)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)
		assert.Equal(t, 2, v.StockQuantity, "rejected change must not mutate stock")
	})

	t.Run("rejects zero delta", func(t *testing.T) {
		v := createTestVariant(t)
		require.Error(t, v.ApplyStockChange(0))
	})

	t.Run("increments version per applied change", func(t *testing.T) {
		v := createTestVariant(t)
		before := v.Version
		require.NoError(t, v.ApplyStockChange(1))
		assert.Equal(t, before+1, v.Version)
	})
}

func TestCanFulfill(t *testing.T) {
	v := createTestVariant(t)
	require.NoError(t, v.ApplyStockChange(5))

	assert.True(t, v.CanFulfill(5))
	assert.True(t, v.CanFulfill(1))
	assert.False(t, v.CanFulfill(6))
	assert.False(t, v.CanFulfill(0))
	assert.False(t, v.CanFulfill(-1))
}

func TestLowStockThreshold(t *testing.T) {
	v := createTestVariant(t)
	require.NoError(t, v.SetLowStockThreshold(3))
	require.NoError(t, v.ApplyStockChange(10))

	assert.False(t, v.IsBelowThreshold())

	require.NoError(t, v.ApplyStockChange(-7))
	assert.True(t, v.IsBelowThreshold())

	require.Error(t, v.SetLowStockThreshold(-1))
}

func TestVariantActivation(t *testing.T) {
	v := createTestVariant(t)

	require.NoError(t, v.Deactivate())
	assert.False(t, v.IsActive())
	require.Error(t, v.Deactivate())

	require.NoError(t, v.Activate())
	assert.True(t, v.IsActive())
	require.Error(t, v.Activate())
}

func TestVariantDetailsString(t *testing.T) {
	assert.Equal(t, "M/Black", VariantDetails{Size: "M", Color: "Black"}.String())
	assert.Equal(t, "M", VariantDetails{Size: "M"}.String())
	assert.Equal(t, "Black", VariantDetails{Color: "Black"}.String())
}
