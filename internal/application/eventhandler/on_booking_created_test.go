package eventhandler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivelog-hub/drivelog/internal/domain/booking"
	"github.com/drivelog-hub/drivelog/internal/domain/shared"
)

type countingBookingRepo struct {
	counts map[string]int
}

func (r *countingBookingRepo) Create(_ context.Context, _ *booking.Booking) error { return nil }

func (r *countingBookingRepo) Delete(_ context.Context, _ string) error { return nil }

func (r *countingBookingRepo) CountBySlot(_ context.Context, slotID string) (int, error) {
	return r.counts[slotID], nil
}

func (r *countingBookingRepo) ListByUser(_ context.Context, _ string) ([]booking.Booking, error) {
	return nil, nil
}

type memCounter struct {
	counts map[string]int
}

func (c *memCounter) Get(_ context.Context, slotID string) (int, bool, error) {
	count, ok := c.counts[slotID]
	return count, ok, nil
}

func (c *memCounter) Set(_ context.Context, slotID string, count int) error {
	c.counts[slotID] = count
	return nil
}

func (c *memCounter) Increment(_ context.Context, slotID string) (int, error) {
	c.counts[slotID]++
	return c.counts[slotID], nil
}

func (c *memCounter) Forget(_ context.Context, slotID string) error {
	delete(c.counts, slotID)
	return nil
}

func TestOnBookingCreated(t *testing.T) {
	repo := &countingBookingRepo{counts: map[string]int{"slot-1": 7}}
	counter := &memCounter{counts: map[string]int{"slot-1": 3}}
	handler := NewOnBookingCreatedHandler(repo, counter, nil)

	b := &booking.Booking{
		ID:         "book-1",
		UserID:     "u1",
		SlotID:     "slot-1",
		TemplateID: 2,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, handler.Handle(booking.NewCreatedEvent(b)))

	// Кеш выравнивается по авторитетному количеству, не инкрементируется.
	assert.Equal(t, 7, counter.counts["slot-1"])
	assert.Equal(t, shared.EventBookingCreated, handler.EventType())
}

func TestOnBookingCreatedIgnoresOtherEvents(t *testing.T) {
	repo := &countingBookingRepo{counts: map[string]int{}}
	counter := &memCounter{counts: map[string]int{}}
	handler := NewOnBookingCreatedHandler(repo, counter, nil)

	err := handler.Handle(booking.NewDeniedEvent("u1", "slot-1", "this date is already fully booked"))
	require.NoError(t, err)
	assert.Empty(t, counter.counts)
}

func TestOnBookingDenied(t *testing.T) {
	handler := NewOnBookingDeniedHandler(nil)
	require.NoError(t, handler.Handle(booking.NewDeniedEvent("u1", "slot-1", "this date is already fully booked")))
	assert.Equal(t, shared.EventBookingDenied, handler.EventType())
}
