package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShipment(t *testing.T) {
	t.Run("creates in-transit shipment", func(t *testing.T) {
		s, err := NewShipment(uuid.New(), "DHL", "DHL123456789", *testAddress())
		require.NoError(t, err)

		assert.Equal(t, ShipmentStatusInTransit, s.Status)
		assert.Nil(t, s.ActualDelivery)
		assert.False(t, s.IsDelivered())
	})

	t.Run("rejects missing carrier", func(t *testing.T) {
		_, err := NewShipment(uuid.New(), "", "DHL123456789", *testAddress())
		require.Error(t, err)
	})

	t.Run("rejects missing tracking number", func(t *testing.T) {
		_, err := NewShipment(uuid.New(), "DHL", "", *testAddress())
		require.Error(t, err)
	})

	t.Run("rejects incomplete address", func(t *testing.T) {
		_, err := NewShipment(uuid.New(), "DHL", "DHL123456789", ShippingAddress{City: "Accra"})
		require.Error(t, err)
	})
}

func TestShipmentMarkDelivered(t *testing.T) {
	s, err := NewShipment(uuid.New(), "DHL", "DHL123456789", *testAddress())
	require.NoError(t, err)

	require.NoError(t, s.MarkDelivered())
	assert.True(t, s.IsDelivered())
	require.NotNil(t, s.ActualDelivery)

	require.Error(t, s.MarkDelivered(), "delivery is recorded once")
}
