package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	t.Run("creates active product", func(t *testing.T) {
		p, err := NewProduct("Classic Tee", "100% cotton", decimal.NewFromInt(50))
		require.NoError(t, err)

		assert.True(t, p.IsActive())
		assert.True(t, p.BasePrice.Equal(decimal.NewFromInt(50)))
		assert.Len(t, p.GetDomainEvents(), 1)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewProduct("  ", "", decimal.Zero)
		require.Error(t, err)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		_, err := NewProduct("Classic Tee", "", decimal.NewFromInt(-1))
		require.Error(t, err)
	})
}

func TestProductUpdateBasePrice(t *testing.T) {
	p, err := NewProduct("Classic Tee", "", decimal.NewFromInt(50))
	require.NoError(t, err)

	require.NoError(t, p.UpdateBasePrice(decimal.NewFromInt(60)))
	assert.True(t, p.BasePrice.Equal(decimal.NewFromInt(60)))

	require.Error(t, p.UpdateBasePrice(decimal.NewFromInt(-5)))
}

func TestProductActivation(t *testing.T) {
	p, err := NewProduct("Classic Tee", "", decimal.NewFromInt(50))
	require.NoError(t, err)

	require.NoError(t, p.Deactivate())
	assert.False(t, p.IsActive())
	require.Error(t, p.Deactivate())

	require.NoError(t, p.Activate())
	assert.True(t, p.IsActive())
}
