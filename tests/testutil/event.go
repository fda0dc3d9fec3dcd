package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/storecore/backend/internal/domain/shared"
)

// CapturingHandler is a shared.EventHandler that records what it receives.
// Safe for concurrent delivery.
type CapturingHandler struct {
	mu         sync.Mutex
	eventTypes []string
	captured   []shared.DomainEvent
	failWith   error
}

// NewCapturingHandler subscribes to the given event types.
func NewCapturingHandler(eventTypes ...string) *CapturingHandler {
	return &CapturingHandler{eventTypes: eventTypes}
}

// EventTypes returns the subscribed event types.
func (h *CapturingHandler) EventTypes() []string {
	return h.eventTypes
}

// Handle records the event and returns the configured failure, if any.
func (h *CapturingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.captured = append(h.captured, event)
	return h.failWith
}

// Captured returns a copy of every recorded event.
func (h *CapturingHandler) Captured() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]shared.DomainEvent, len(h.captured))
	copy(out, h.captured)
	return out
}

// Count returns how many events were delivered.
func (h *CapturingHandler) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.captured)
}

// FailWith makes subsequent Handle calls return err. Pass nil to clear.
func (h *CapturingHandler) FailWith(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failWith = err
}

// Reset drops recorded events and clears any configured failure.
func (h *CapturingHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.captured = nil
	h.failWith = nil
}

// StubEvent is a minimal domain event for bus and handler tests.
type StubEvent struct {
	shared.BaseDomainEvent
	Payload string
}

// NewStubEvent creates a stub event of the given type with a fresh ID.
func NewStubEvent(eventType string) *StubEvent {
	return &StubEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "StubAggregate", uuid.New()),
		Payload:         "stub-payload",
	}
}

// NewStubEventWithID creates a stub event carrying a fixed event ID, for
// dedup and idempotency tests.
func NewStubEventWithID(eventID uuid.UUID, eventType string) *StubEvent {
	e := NewStubEvent(eventType)
	e.ID = eventID
	return e
}

// WaitForCondition polls until the condition holds or the timeout passes.
func WaitForCondition(t *testing.T, condition func() bool, timeout, interval time.Duration) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(interval)
	}
	return false
}

// WaitForEventCount polls until the handler has captured at least n events.
func WaitForEventCount(t *testing.T, handler *CapturingHandler, n int, timeout time.Duration) bool {
	t.Helper()

	return WaitForCondition(t, func() bool {
		return handler.Count() >= n
	}, timeout, 10*time.Millisecond)
}
