package command

import (
	"context"
	"fmt"

	"github.com/drivelog-hub/drivelog/internal/domain/booking"
	"github.com/drivelog-hub/drivelog/internal/domain/shared"
	"github.com/drivelog-hub/drivelog/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CANCEL BOOKING COMMAND
// Студент может снять свою бронь до начала занятия. Счётчик слота после
// отмены сбрасывается, а не уменьшается: следующая проверка пересчитает
// его из Postgres, и закравшаяся рассинхронизация исчезнет вместе с ним.
// ══════════════════════════════════════════════════════════════════════════════

// CancelBookingCommand contains the cancellation request.
type CancelBookingCommand struct {
	// UserID is the student canceling their booking.
	UserID string

	// BookingID is the booking to cancel.
	BookingID string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c CancelBookingCommand) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("cancel_booking: user_id is required: %w", shared.ErrInvalidID)
	}
	if c.BookingID == "" {
		return fmt.Errorf("cancel_booking: booking_id is required: %w", shared.ErrInvalidID)
	}
	return nil
}

// CancelBookingHandler handles CancelBookingCommand.
type CancelBookingHandler struct {
	bookings booking.BookingRepository
	counters booking.CounterCache // optional
	events   shared.EventPublisher
	logger   *logger.Logger
}

// NewCancelBookingHandler creates a new CancelBookingHandler.
func NewCancelBookingHandler(
	bookings booking.BookingRepository,
	counters booking.CounterCache,
	events shared.EventPublisher,
	log *logger.Logger,
) *CancelBookingHandler {
	if log == nil {
		log = logger.Default()
	}
	return &CancelBookingHandler{
		bookings: bookings,
		counters: counters,
		events:   events,
		logger:   log.With(logger.Component("cancel_booking")),
	}
}

// Handle removes the booking after confirming it belongs to the caller.
// A booking owned by another student surfaces as ErrBookingNotFound, so
// the API cannot be used to probe other students' bookings.
func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	owned, err := h.bookings.ListByUser(ctx, cmd.UserID)
	if err != nil {
		return err
	}

	var target *booking.Booking
	for i := range owned {
		if owned[i].ID == cmd.BookingID {
			target = &owned[i]
			break
		}
	}
	if target == nil {
		return booking.ErrBookingNotFound
	}

	if err := h.bookings.Delete(ctx, cmd.BookingID); err != nil {
		return err
	}

	if h.counters != nil {
		if err := h.counters.Forget(ctx, target.SlotID); err != nil {
			h.logger.Warn("failed to reset booking counter", logger.SlotID(target.SlotID), logger.Err(err))
		}
	}

	h.logger.Info("booking canceled",
		logger.BookingID(cmd.BookingID),
		logger.UserID(cmd.UserID),
		logger.SlotID(target.SlotID),
	)

	if h.events != nil {
		if err := h.events.Publish(booking.NewCanceledEvent(target)); err != nil {
			h.logger.Warn("failed to publish booking.canceled", logger.Err(err))
		}
	}

	return nil
}
