package booking

import (
	"errors"
	"fmt"

	"github.com/drivelog-hub/drivelog/internal/domain/curriculum"
)

// ══════════════════════════════════════════════════════════════════════════════
// ДВИЖОК ДОПУСКА К БРОНИРОВАНИЮ
// Решение - не ошибка, а полноценный результат с объяснением для UI.
// Проверка вместимости идёт первой; проверки независимы, и любой
// из них достаточно для отказа.
// ══════════════════════════════════════════════════════════════════════════════

// Decision - результат проверки допуска.
type Decision struct {
	// Allowed - разрешена ли бронь.
	Allowed bool

	// Reason - человекочитаемое объяснение для UI.
	Reason string

	// TemplateID - шаг учебного плана, под который идёт бронь
	// (заполнен только при Allowed == true).
	TemplateID int
}

func allow(templateID int) Decision {
	return Decision{Allowed: true, Reason: "you can book this lesson", TemplateID: templateID}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Engine проверяет допуск студента к бронированию слота.
// Движок держит только неизменяемый каталог; история уроков и слот
// передаются при каждом вызове явно, без чтения сессии из глобального
// состояния.
type Engine struct {
	catalog *curriculum.Catalog
}

// NewEngine создаёт движок над загруженным каталогом.
func NewEngine(catalog *curriculum.Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// Catalog возвращает каталог движка.
func (e *Engine) Catalog() *curriculum.Catalog {
	return e.catalog
}

// CanBook решает, может ли студент с данной историей уроков забронировать
// слот. Ошибка возвращается только при дефекте данных (неизвестный шаблон
// в истории); отказ по правилам - это Decision, а не ошибка.
func (e *Engine) CanBook(history []Lesson, slot AppointmentSlot) (Decision, error) {
	// Вместимость проверяется первой: её сообщение важнее для UI.
	capacity, ok := slot.Type.Capacity()
	if !ok {
		return deny(fmt.Sprintf("no booking capacity is defined for %s lessons", slot.Type)), nil
	}
	if slot.CurrentBookingCount >= capacity {
		return deny("this date is already fully booked"), nil
	}

	current, hasCompleted, err := MostRecentCompletedTemplateID(e.catalog, history)
	if err != nil {
		return Decision{}, err
	}

	if !hasCompleted {
		return e.decideForNewStudent(slot), nil
	}

	next, err := e.catalog.NextTemplateOfType(current, slot.Type)
	if err != nil {
		if errors.Is(err, curriculum.ErrNoFurtherTemplate) {
			return deny(fmt.Sprintf("no further %s lessons are available in the curriculum", slot.Type)), nil
		}
		return Decision{}, err
	}

	// Допуск есть только к непосредственно следующему шагу учебного плана.
	if next.ID == current+1 {
		return allow(next.ID), nil
	}

	remaining := next.ID - 1 - current
	return deny(e.prerequisiteReason(slot.Type, remaining)), nil
}

// decideForNewStudent решает допуск для студента без пройденных шагов:
// доступен только первый шаг учебного плана.
func (e *Engine) decideForNewStudent(slot AppointmentSlot) Decision {
	first := e.catalog.First()
	if first.Type == slot.Type {
		return allow(first.ID)
	}

	next, err := e.catalog.NextTemplateOfType(0, slot.Type)
	if err != nil {
		return deny(fmt.Sprintf("the curriculum has no %s lessons", slot.Type))
	}

	remaining := next.ID - 1
	return deny(fmt.Sprintf(
		"you are not suitable to book %s yet as it is required that you have %d %s lessons before your first %s",
		slot.Type, remaining, first.Type, slot.Type,
	))
}

// prerequisiteReason формирует отказ с количеством недостающих занятий
// дополняющего типа.
func (e *Engine) prerequisiteReason(desired curriculum.LessonType, remaining int) string {
	if complement, ok := desired.Complement(); ok {
		return fmt.Sprintf(
			"you are not suitable to book a %s lesson yet, you would have to book %d more %s lessons",
			desired, remaining, complement,
		)
	}
	return fmt.Sprintf(
		"you are not suitable to book a %s lesson yet, you would have to complete %d more earlier lessons",
		desired, remaining,
	)
}
