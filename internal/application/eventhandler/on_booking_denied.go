package eventhandler

import (
	"github.com/drivelog-hub/drivelog/internal/domain/booking"
	"github.com/drivelog-hub/drivelog/internal/domain/shared"
	"github.com/drivelog-hub/drivelog/pkg/logger"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON BOOKING DENIED HANDLER
// Учитывает отказы в бронировании. Сами отказы — нормальное поведение
// (студент ещё не готов к типу занятия), но их распределение по причинам
// подсказывает школе, каких слотов не хватает в расписании.
// ═══════════════════════════════════════════════════════════════════════════

// OnBookingDeniedHandler логирует отказы для последующего анализа.
type OnBookingDeniedHandler struct {
	logger *logger.Logger
}

// NewOnBookingDeniedHandler создаёт новый обработчик.
func NewOnBookingDeniedHandler(log *logger.Logger) *OnBookingDeniedHandler {
	if log == nil {
		log = logger.Default()
	}
	return &OnBookingDeniedHandler{
		logger: log.With(logger.Component("on_booking_denied")),
	}
}

// Handle реализует shared.EventHandler.
func (h *OnBookingDeniedHandler) Handle(event shared.Event) error {
	denied, ok := event.(booking.DeniedEvent)
	if !ok {
		h.logger.Warn("received non-DeniedEvent",
			logger.String("event_type", string(event.EventType())),
		)
		return nil
	}

	h.logger.Info("booking denied",
		logger.UserID(denied.UserID),
		logger.SlotID(denied.SlotID),
		logger.String("reason", denied.Reason),
	)
	return nil
}

// EventType возвращает тип события, который обрабатывает этот handler.
func (h *OnBookingDeniedHandler) EventType() shared.EventType {
	return shared.EventBookingDenied
}
