// Package eventhandler содержит обработчики доменных событий.
package eventhandler

import (
	"context"
	"fmt"

	"github.com/drivelog-hub/drivelog/internal/domain/booking"
	"github.com/drivelog-hub/drivelog/internal/domain/shared"
	"github.com/drivelog-hub/drivelog/pkg/logger"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON BOOKING CREATED HANDLER
// Обрабатывает событие новой брони: пересчитывает занятость слота
// из хранилища и кладёт актуальное значение в кеш счётчиков.
//
// Почему пересчёт, а не инкремент: команда бронирования уже делает
// быстрый инкремент; обработчик выравнивает кеш по авторитетному
// количеству в хранилище, чтобы проверка "слот заполнен" не расходилась
// с реальностью после гонок или потерянных инкрементов.
// ═══════════════════════════════════════════════════════════════════════════

// OnBookingCreatedHandler обрабатывает событие создания брони.
type OnBookingCreatedHandler struct {
	bookings booking.BookingRepository
	counters booking.CounterCache
	logger   *logger.Logger
}

// NewOnBookingCreatedHandler создаёт новый обработчик.
func NewOnBookingCreatedHandler(
	bookings booking.BookingRepository,
	counters booking.CounterCache,
	log *logger.Logger,
) *OnBookingCreatedHandler {
	if log == nil {
		log = logger.Default()
	}
	return &OnBookingCreatedHandler{
		bookings: bookings,
		counters: counters,
		logger:   log.With(logger.Component("on_booking_created")),
	}
}

// Handle реализует shared.EventHandler.
func (h *OnBookingCreatedHandler) Handle(event shared.Event) error {
	ctx := context.Background()

	created, ok := event.(booking.CreatedEvent)
	if !ok {
		h.logger.Warn("received non-CreatedEvent",
			logger.String("event_type", string(event.EventType())),
		)
		return nil
	}

	h.logger.Info("processing booking created event",
		logger.BookingID(created.BookingID),
		logger.SlotID(created.SlotID),
		logger.UserID(created.UserID),
	)

	if h.counters == nil {
		h.logger.Debug("counter cache not configured, skipping")
		return nil
	}

	count, err := h.bookings.CountBySlot(ctx, created.SlotID)
	if err != nil {
		return fmt.Errorf("count bookings for slot %s: %w", created.SlotID, err)
	}

	if err := h.counters.Set(ctx, created.SlotID, count); err != nil {
		return fmt.Errorf("refresh booking counter for slot %s: %w", created.SlotID, err)
	}

	h.logger.Debug("booking counter refreshed",
		logger.SlotID(created.SlotID),
		logger.Int("count", count),
	)

	return nil
}

// EventType возвращает тип события, который обрабатывает этот handler.
func (h *OnBookingCreatedHandler) EventType() shared.EventType {
	return shared.EventBookingCreated
}
