// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"fmt"

	"github.com/drivelog-hub/drivelog/internal/domain/booking"
	"github.com/drivelog-hub/drivelog/internal/domain/shared"
	"github.com/drivelog-hub/drivelog/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHECK ELIGIBILITY QUERY
// Запрос, который календарь выполняет при выборе слота: можно ли
// бронировать, и какую строку занятости показать. Ничего не изменяет;
// фиксация брони - отдельная команда.
// ══════════════════════════════════════════════════════════════════════════════

// CheckEligibilityQuery содержит параметры проверки допуска.
type CheckEligibilityQuery struct {
	// UserID - студент.
	UserID string

	// SlotID - выбранный слот.
	SlotID string
}

// Validate проверяет параметры запроса.
func (q CheckEligibilityQuery) Validate() error {
	if q.UserID == "" {
		return fmt.Errorf("check_eligibility: user_id is required: %w", shared.ErrInvalidID)
	}
	if q.SlotID == "" {
		return fmt.Errorf("check_eligibility: slot_id is required: %w", shared.ErrInvalidID)
	}
	return nil
}

// EligibilityView - данные для панели информации о слоте.
type EligibilityView struct {
	// SlotID - проверенный слот.
	SlotID string

	// Decision - решение движка.
	Decision booking.Decision

	// StatusLine - строка занятости "Booking status n/cap".
	// Пустая, если для типа слота не настроена вместимость.
	StatusLine string
}

// CheckEligibilityHandler обрабатывает CheckEligibilityQuery.
type CheckEligibilityHandler struct {
	engine   *booking.Engine
	slots    booking.SlotRepository
	lessons  booking.LessonRepository
	counters booking.CounterCache // опционально: быстрый счётчик для отображения
	logger   *logger.Logger
}

// NewCheckEligibilityHandler создаёт обработчик.
func NewCheckEligibilityHandler(
	engine *booking.Engine,
	slots booking.SlotRepository,
	lessons booking.LessonRepository,
	counters booking.CounterCache,
	log *logger.Logger,
) *CheckEligibilityHandler {
	if log == nil {
		log = logger.Default()
	}
	return &CheckEligibilityHandler{
		engine:   engine,
		slots:    slots,
		lessons:  lessons,
		counters: counters,
		logger:   log.With(logger.Component("check_eligibility")),
	}
}

// Handle выполняет проверку на снимке данных.
func (h *CheckEligibilityHandler) Handle(ctx context.Context, q CheckEligibilityQuery) (*EligibilityView, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	slot, err := h.slots.GetByID(ctx, q.SlotID)
	if err != nil {
		return nil, err
	}

	// Для отображения допустим кешированный счётчик; при промахе кеша
	// остаётся значение из хранилища.
	if h.counters != nil {
		if count, ok, err := h.counters.Get(ctx, q.SlotID); err == nil && ok {
			slot.CurrentBookingCount = count
		} else if err != nil {
			h.logger.Debug("booking counter cache unavailable", logger.SlotID(q.SlotID), logger.Err(err))
		}
	}

	history, err := h.lessons.ListByUser(ctx, q.UserID)
	if err != nil {
		return nil, err
	}

	decision, err := h.engine.CanBook(history, slot)
	if err != nil {
		return nil, shared.WrapDomainError("booking", "CanBook", shared.ErrInvalidState, "eligibility check failed", err)
	}

	view := &EligibilityView{
		SlotID:   slot.ID,
		Decision: decision,
	}
	if line, ok := slot.StatusLine(); ok {
		view.StatusLine = line
	}

	return view, nil
}
