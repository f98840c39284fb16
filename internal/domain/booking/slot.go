package booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/drivelog-hub/drivelog/internal/domain/curriculum"
)

// ══════════════════════════════════════════════════════════════════════════════
// ДОМЕННЫЕ ОШИБКИ
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrSlotNotFound - слот не найден.
	ErrSlotNotFound = errors.New("booking: appointment slot not found")

	// ErrBookingNotFound - бронь не найдена.
	ErrBookingNotFound = errors.New("booking: booking not found")

	// ErrAlreadyBooked - у студента уже есть бронь на этот слот.
	ErrAlreadyBooked = errors.New("booking: slot already booked by this user")

	// ErrInvalidSlot - слот с некорректными полями.
	ErrInvalidSlot = errors.New("booking: invalid appointment slot")
)

// ══════════════════════════════════════════════════════════════════════════════
// СЛОТ РАСПИСАНИЯ
// ══════════════════════════════════════════════════════════════════════════════

// AppointmentSlot - бронируемая единица расписания.
// CurrentBookingCount - снимок на момент решения; перед фиксацией брони
// вызывающая сторона обязана перечитать свежее значение.
type AppointmentSlot struct {
	// ID - уникальный идентификатор слота.
	ID string

	// Type - тип занятия; определяет вместимость.
	Type curriculum.LessonType

	// StartTime - начало слота.
	StartTime time.Time

	// AvailableUnits - количество единиц по LessonDuration в слоте.
	AvailableUnits int

	// InstructorName - инструктор слота.
	InstructorName string

	// CurrentBookingCount - текущее число броней (снимок, >= 0).
	CurrentBookingCount int
}

// Validate проверяет корректность полей слота.
func (s AppointmentSlot) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidSlot)
	}
	if !s.Type.IsValid() {
		return fmt.Errorf("%w: unknown lesson type %q", ErrInvalidSlot, s.Type)
	}
	if s.AvailableUnits <= 0 {
		return fmt.Errorf("%w: available units must be positive", ErrInvalidSlot)
	}
	if s.CurrentBookingCount < 0 {
		return fmt.Errorf("%w: booking count cannot be negative", ErrInvalidSlot)
	}
	return nil
}

// EndTime возвращает конец слота.
func (s AppointmentSlot) EndTime() time.Time {
	return s.StartTime.Add(time.Duration(s.AvailableUnits) * LessonDuration)
}

// FullyBooked проверяет, занят ли слот полностью.
// Для типов без настроенной вместимости слот считается занятым (fail closed).
func (s AppointmentSlot) FullyBooked() bool {
	capacity, ok := s.Type.Capacity()
	if !ok {
		return true
	}
	return s.CurrentBookingCount >= capacity
}

// StatusLine возвращает строку занятости для UI: "Booking status n/cap".
// ok == false - для типа не настроена вместимость и строка не определена.
func (s AppointmentSlot) StatusLine() (string, bool) {
	capacity, ok := s.Type.Capacity()
	if !ok {
		return "", false
	}
	return fmt.Sprintf("Booking status %d/%d", s.CurrentBookingCount, capacity), true
}

// ══════════════════════════════════════════════════════════════════════════════
// БРОНЬ
// ══════════════════════════════════════════════════════════════════════════════

// Booking - подтверждённая бронь студента на слот.
type Booking struct {
	// ID - уникальный идентификатор брони.
	ID string

	// UserID - студент.
	UserID string

	// SlotID - забронированный слот.
	SlotID string

	// TemplateID - шаг учебного плана, под который сделана бронь.
	TemplateID int

	// CreatedAt - время фиксации брони.
	CreatedAt time.Time
}
