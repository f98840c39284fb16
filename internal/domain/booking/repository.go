package booking

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем данных.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// LessonRepository читает историю уроков студента.
type LessonRepository interface {
	// ListByUser возвращает все уроки студента в хронологическом порядке.
	ListByUser(ctx context.Context, userID string) ([]Lesson, error)

	// ListByAppointment возвращает уроки, привязанные к слоту.
	ListByAppointment(ctx context.Context, slotID string) ([]Lesson, error)
}

// SlotRepository читает слоты расписания.
type SlotRepository interface {
	// GetByID возвращает слот со свежим CurrentBookingCount.
	// Возвращает ErrSlotNotFound, если слота нет.
	GetByID(ctx context.Context, id string) (AppointmentSlot, error)

	// ListUpcoming возвращает слоты, начинающиеся не раньше from.
	ListUpcoming(ctx context.Context, from time.Time) ([]AppointmentSlot, error)
}

// SlotWriter создаёт слоты расписания. Отделён от SlotRepository:
// запись в расписание доступна только инструкторам.
type SlotWriter interface {
	// CreateSlot сохраняет новый слот.
	CreateSlot(ctx context.Context, slot AppointmentSlot) error
}

// BookingRepository управляет фиксацией броней.
type BookingRepository interface {
	// Create фиксирует бронь.
	// Возвращает ErrAlreadyBooked, если у студента уже есть бронь на слот.
	Create(ctx context.Context, b *Booking) error

	// Delete снимает бронь.
	// Возвращает ErrBookingNotFound, если брони нет.
	Delete(ctx context.Context, id string) error

	// CountBySlot возвращает число броней на слот.
	CountBySlot(ctx context.Context, slotID string) (int, error)

	// ListByUser возвращает брони студента.
	ListByUser(ctx context.Context, userID string) ([]Booking, error)
}

// CounterCache - быстрый кеш счётчиков броней по слотам.
// Кеш вторичен: источник истины - BookingRepository.CountBySlot.
type CounterCache interface {
	// Get возвращает закешированный счётчик; ok == false - промах.
	Get(ctx context.Context, slotID string) (int, bool, error)

	// Set записывает счётчик.
	Set(ctx context.Context, slotID string, count int) error

	// Increment атомарно увеличивает счётчик и возвращает новое значение.
	Increment(ctx context.Context, slotID string) (int, error)

	// Forget сбрасывает счётчик слота.
	Forget(ctx context.Context, slotID string) error
}
