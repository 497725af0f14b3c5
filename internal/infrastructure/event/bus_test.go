package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingHandler struct {
	mu     sync.Mutex
	types  []string
	events []shared.DomainEvent
	err    error
	panics bool
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.mu.Lock()
	h.events = append(h.events, event)
	h.mu.Unlock()
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func (h *recordingHandler) received() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.events...)
}

func newTestEvent(eventType string) shared.DomainEvent {
	e := shared.NewBaseDomainEvent(eventType, "component", uuid.New())
	return &e
}

func TestInMemoryEventBus_DispatchByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))

	stockHandler := &recordingHandler{types: []string{"component.stock_below_threshold"}}
	movementHandler := &recordingHandler{types: []string{"component.movement_applied"}}
	bus.Subscribe(stockHandler)
	bus.Subscribe(movementHandler)

	err := bus.Publish(context.Background(),
		newTestEvent("component.stock_below_threshold"),
		newTestEvent("component.movement_applied"),
		newTestEvent("component.movement_applied"),
	)

	require.NoError(t, err)
	assert.Len(t, stockHandler.received(), 1)
	assert.Len(t, movementHandler.received(), 2)
}

func TestInMemoryEventBus_WildcardReceivesAll(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	wildcard := &recordingHandler{}
	bus.Subscribe(wildcard)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("component.created"),
		newTestEvent("user.logged_in"),
	))

	assert.Len(t, wildcard.received(), 2)
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := &recordingHandler{types: []string{"component.created"}}
	bus.Subscribe(handler, "component.deactivated")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("component.created")))
	assert.Empty(t, handler.received())

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("component.deactivated")))
	assert.Len(t, handler.received(), 1)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := &recordingHandler{types: []string{"component.created"}}
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("component.created")))
	assert.Empty(t, handler.received())
}

func TestInMemoryEventBus_FailingHandlerDoesNotBlockOthers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := &recordingHandler{types: []string{"component.created"}, err: errors.New("boom")}
	healthy := &recordingHandler{types: []string{"component.created"}}
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("component.created")))
	assert.Len(t, healthy.received(), 1)
}

func TestInMemoryEventBus_RecoversFromPanic(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	panicking := &recordingHandler{types: []string{"component.created"}, panics: true}
	healthy := &recordingHandler{types: []string{"component.created"}}
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NotPanics(t, func() {
		_ = bus.Publish(context.Background(), newTestEvent("component.created"))
	})
	assert.Len(t, healthy.received(), 1)
}
