// Package curriculum содержит доменную модель учебного плана автошколы:
// типы занятий, шаблоны уроков и упорядоченный каталог (syllabus).
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package curriculum

// ══════════════════════════════════════════════════════════════════════════════
// ТИП ЗАНЯТИЯ
// ══════════════════════════════════════════════════════════════════════════════

// LessonType - закрытое перечисление типов занятий.
// Тип определяет вместимость слота и порядок прохождения учебного плана.
type LessonType string

const (
	// Theoretical - теоретическое занятие в классе.
	Theoretical LessonType = "theoretical"
	// Practical - практическое занятие за рулём.
	Practical LessonType = "practical"
	// Manoeuvre - занятие на закрытой площадке (kravlegård).
	Manoeuvre LessonType = "manoeuvre"
	// Slippery - занятие на скользкой дороге (glatbane).
	Slippery LessonType = "slippery"
	// Other - прочие занятия.
	Other LessonType = "other"
)

// IsValid проверяет, что тип занятия корректен.
func (t LessonType) IsValid() bool {
	switch t {
	case Theoretical, Practical, Manoeuvre, Slippery, Other:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление типа.
func (t LessonType) String() string {
	return string(t)
}

// Complement возвращает дополняющий тип для сообщений о прогрессе:
// теория и практика чередуются в учебном плане.
// Для остальных типов дополняющего типа нет (ok == false).
func (t LessonType) Complement() (LessonType, bool) {
	switch t {
	case Theoretical:
		return Practical, true
	case Practical:
		return Theoretical, true
	default:
		return "", false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ВМЕСТИМОСТЬ
// Таблица вместимости централизована здесь, а не размазана по условиям.
// Для типов без настроенной вместимости политика fail closed:
// бронирование всегда отклоняется (ok == false).
// ══════════════════════════════════════════════════════════════════════════════

// slotCapacities - вместимость слота по типу занятия.
var slotCapacities = map[LessonType]int{
	Theoretical: 24,
	Practical:   1,
}

// Capacity возвращает вместимость слота для данного типа занятия.
// ok == false означает, что вместимость не настроена.
func (t LessonType) Capacity() (int, bool) {
	capacity, ok := slotCapacities[t]
	return capacity, ok
}
