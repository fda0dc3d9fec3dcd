package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/storecore/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeTypeIsValid(t *testing.T) {
	tests := []struct {
		name       string
		changeType ChangeType
		want       bool
	}{
		{"restock", ChangeTypeRestock, true},
		{"adjustment", ChangeTypeAdjustment, true},
		{"sale", ChangeTypeSale, true},
		{"return", ChangeTypeReturn, true},
		{"empty", ChangeType(""), false},
		{"unknown", ChangeType("TRANSFER"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.changeType.IsValid())
		})
	}
}

func TestNewLedgerEntry(t *testing.T) {
	variantID := uuid.New()
	actorID := uuid.New()

	t.Run("creates entry with computed new quantity", func(t *testing.T) {
		entry, err := NewLedgerEntry(variantID, ChangeTypeSale, -3, 5, "POS sale", actorID)
		require.NoError(t, err)

		assert.Equal(t, variantID, entry.VariantID)
		assert.Equal(t, ChangeTypeSale, entry.ChangeType)
		assert.Equal(t, -3, entry.QuantityChange)
		assert.Equal(t, 5, entry.PreviousQuantity)
		assert.Equal(t, 2, entry.NewQuantity)
		assert.Equal(t, actorID, entry.PerformedBy)
		assert.Nil(t, entry.OrderID)
		assert.False(t, entry.EntryDate.IsZero())
	})

	t.Run("positive change increases quantity", func(t *testing.T) {
		entry, err := NewLedgerEntry(variantID, ChangeTypeRestock, 10, 2, "weekly delivery", actorID)
		require.NoError(t, err)

		assert.Equal(t, 12, entry.NewQuantity)
		assert.True(t, entry.IsIncrease())
		assert.False(t, entry.IsDecrease())
	})

	t.Run("rejects change that would drive quantity negative", func(t *testing.T) {
		entry, err := NewLedgerEntry(variantID, ChangeTypeSale, -3, 2, "POS sale", actorID)
		require.Error(t, err)
		assert.Nil(t, entry)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)
	})

	t.Run("rejects zero change", func(t *testing.T) {
		_, err := NewLedgerEntry(variantID, ChangeTypeAdjustment, 0, 5, "noop", actorID)
		require.Error(t, err)
	})

	t.Run("rejects invalid change type", func(t *testing.T) {
		_, err := NewLedgerEntry(variantID, ChangeType("TRANSFER"), 1, 5, "", actorID)
		require.Error(t, err)
	})

	t.Run("rejects nil variant", func(t *testing.T) {
		_, err := NewLedgerEntry(uuid.Nil, ChangeTypeRestock, 1, 0, "", actorID)
		require.Error(t, err)
	})

	t.Run("rejects nil actor", func(t *testing.T) {
		_, err := NewLedgerEntry(variantID, ChangeTypeRestock, 1, 0, "", uuid.Nil)
		require.Error(t, err)
	})

	t.Run("rejects negative previous quantity", func(t *testing.T) {
		_, err := NewLedgerEntry(variantID, ChangeTypeRestock, 1, -1, "", actorID)
		require.Error(t, err)
	})
}

func TestLedgerEntryWithOrderID(t *testing.T) {
	orderID := uuid.New()
	entry, err := NewLedgerEntry(uuid.New(), ChangeTypeReturn, 1, 0, "restockable return", uuid.New())
	require.NoError(t, err)

	entry.WithOrderID(orderID)

	require.NotNil(t, entry.OrderID)
	assert.Equal(t, orderID, *entry.OrderID)
}

func TestLedgerEntryStructuralInvariant(t *testing.T) {
	// new_quantity = previous_quantity + quantity_change holds for every
	// entry the constructor lets through
	cases := []struct {
		previous int
		change   int
	}{
		{0, 5},
		{5, -5},
		{100, -37},
		{3, 1},
	}

	for _, c := range cases {
		entry, err := NewLedgerEntry(uuid.New(), ChangeTypeAdjustment, c.change, c.previous, "", uuid.New())
		require.NoError(t, err)
		assert.Equal(t, entry.PreviousQuantity+entry.QuantityChange, entry.NewQuantity)
		assert.GreaterOrEqual(t, entry.NewQuantity, 0)
	}
}
