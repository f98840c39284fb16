package messaging

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivelog-hub/drivelog/internal/domain/booking"
	"github.com/drivelog-hub/drivelog/internal/domain/shared"
)

func syncBus() *InMemoryEventBus {
	cfg := DefaultInMemoryConfig()
	cfg.AsyncMode = false
	return NewInMemoryEventBus(cfg)
}

func TestInMemoryEventBusDeliversByType(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	var created, denied, all int
	require.NoError(t, bus.Subscribe(shared.EventBookingCreated, func(shared.Event) error {
		created++
		return nil
	}))
	require.NoError(t, bus.Subscribe(shared.EventBookingDenied, func(shared.Event) error {
		denied++
		return nil
	}))
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		all++
		return nil
	}))

	b := &booking.Booking{ID: "book-1", UserID: "u1", SlotID: "slot-1", TemplateID: 1, CreatedAt: time.Now()}
	require.NoError(t, bus.Publish(booking.NewCreatedEvent(b)))
	require.NoError(t, bus.Publish(booking.NewDeniedEvent("u1", "slot-1", "this date is already fully booked")))

	assert.Equal(t, 1, created)
	assert.Equal(t, 1, denied)
	assert.Equal(t, 2, all)

	snap := bus.Metrics().Snapshot()
	assert.Equal(t, int64(2), snap.TotalPublished)
	assert.Equal(t, int64(4), snap.TotalHandlerExecs)
	assert.Equal(t, 1.0, snap.HandlerSuccessRate)
}

func TestInMemoryEventBusHandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	var reached bool
	require.NoError(t, bus.Subscribe(shared.EventBookingCreated, func(shared.Event) error {
		return errors.New("boom")
	}))
	require.NoError(t, bus.Subscribe(shared.EventBookingCreated, func(shared.Event) error {
		reached = true
		return nil
	}))

	b := &booking.Booking{ID: "book-1", UserID: "u1", SlotID: "slot-1", TemplateID: 1, CreatedAt: time.Now()}
	require.NoError(t, bus.Publish(booking.NewCreatedEvent(b)))

	assert.True(t, reached)
	assert.Equal(t, int64(1), bus.Metrics().Snapshot().HandlerFailures)
}

func TestInMemoryEventBusAsyncDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(DefaultInMemoryConfig())

	var mu sync.Mutex
	var got []string
	require.NoError(t, bus.Subscribe(shared.EventBookingCreated, func(e shared.Event) error {
		mu.Lock()
		got = append(got, e.AggregateID())
		mu.Unlock()
		return nil
	}))

	for i := 0; i < 20; i++ {
		b := &booking.Booking{ID: "book", UserID: "u1", SlotID: "slot-1", TemplateID: 1, CreatedAt: time.Now()}
		require.NoError(t, bus.Publish(booking.NewCreatedEvent(b)))
	}

	// Close waits for in-flight handlers.
	require.NoError(t, bus.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, got, 20)
}

func TestInMemoryEventBusClosed(t *testing.T) {
	bus := syncBus()
	require.NoError(t, bus.Close())

	b := &booking.Booking{ID: "book-1", UserID: "u1", SlotID: "slot-1", TemplateID: 1, CreatedAt: time.Now()}
	assert.ErrorIs(t, bus.Publish(booking.NewCreatedEvent(b)), ErrEventBusClosed)
	assert.ErrorIs(t, bus.Subscribe(shared.EventBookingCreated, func(shared.Event) error { return nil }), ErrEventBusClosed)

	// Close is idempotent.
	require.NoError(t, bus.Close())
}
