package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapturingHandler_RecordsEvents(t *testing.T) {
	handler := NewCapturingHandler("StockAdjusted", "OrderCreated")
	assert.Equal(t, []string{"StockAdjusted", "OrderCreated"}, handler.EventTypes())

	event := NewStubEvent("StockAdjusted")
	require.NoError(t, handler.Handle(context.Background(), event))

	require.Equal(t, 1, handler.Count())
	assert.Equal(t, event, handler.Captured()[0])
}

func TestCapturingHandler_FailWith(t *testing.T) {
	handler := NewCapturingHandler("StockAdjusted")
	handler.FailWith(assert.AnError)

	err := handler.Handle(context.Background(), NewStubEvent("StockAdjusted"))
	assert.Equal(t, assert.AnError, err)
	assert.Equal(t, 1, handler.Count(), "failing handlers still record the delivery")

	handler.FailWith(nil)
	assert.NoError(t, handler.Handle(context.Background(), NewStubEvent("StockAdjusted")))
}

func TestCapturingHandler_Reset(t *testing.T) {
	handler := NewCapturingHandler("StockAdjusted")
	handler.FailWith(assert.AnError)
	_ = handler.Handle(context.Background(), NewStubEvent("StockAdjusted"))

	handler.Reset()

	assert.Equal(t, 0, handler.Count())
	assert.NoError(t, handler.Handle(context.Background(), NewStubEvent("StockAdjusted")))
}

func TestNewStubEvent(t *testing.T) {
	event := NewStubEvent("OrderCreated")

	assert.NotEqual(t, uuid.Nil, event.EventID())
	assert.Equal(t, "OrderCreated", event.EventType())
	assert.Equal(t, "StubAggregate", event.AggregateType())
	assert.False(t, event.OccurredAt().IsZero())
	assert.Equal(t, "stub-payload", event.Payload)
}

func TestNewStubEventWithID(t *testing.T) {
	id := uuid.New()
	event := NewStubEventWithID(id, "PaymentVerified")

	assert.Equal(t, id, event.EventID())
	assert.Equal(t, "PaymentVerified", event.EventType())
}

func TestWaitForCondition(t *testing.T) {
	t.Run("eventually true", func(t *testing.T) {
		done := make(chan struct{})
		go func() {
			time.Sleep(20 * time.Millisecond)
			close(done)
		}()

		met := WaitForCondition(t, func() bool {
			select {
			case <-done:
				return true
			default:
				return false
			}
		}, 200*time.Millisecond, 10*time.Millisecond)
		assert.True(t, met)
	})

	t.Run("never true", func(t *testing.T) {
		met := WaitForCondition(t, func() bool { return false },
			50*time.Millisecond, 10*time.Millisecond)
		assert.False(t, met)
	})
}

func TestWaitForEventCount(t *testing.T) {
	handler := NewCapturingHandler("StockAdjusted")

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = handler.Handle(context.Background(), NewStubEvent("StockAdjusted"))
		_ = handler.Handle(context.Background(), NewStubEvent("StockAdjusted"))
	}()

	assert.True(t, WaitForEventCount(t, handler, 2, 200*time.Millisecond))
}
