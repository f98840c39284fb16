// Package booking содержит доменную модель бронирования занятий:
// уроки студента, слоты расписания и движок проверки допуска.
// Ядро чистое: все данные (каталог, история уроков, счётчики броней)
// передаются снаружи как снимки, пакет не держит собственного состояния.
package booking

import (
	"time"

	"github.com/drivelog-hub/drivelog/internal/domain/curriculum"
)

// ══════════════════════════════════════════════════════════════════════════════
// УРОК
// ══════════════════════════════════════════════════════════════════════════════

// LessonDuration - длительность одной единицы занятия.
const LessonDuration = 45 * time.Minute

// Lesson - запись студента по одному шаблону учебного плана.
// Уроки создаются внешними процессами (посещаемость, расписание);
// здесь они только читаются.
type Lesson struct {
	// UserID - студент, которому принадлежит запись.
	UserID string

	// AppointmentID - слот, в рамках которого шёл урок.
	AppointmentID string

	// TemplateID - шаг учебного плана, по которому идёт урок.
	TemplateID int

	// ProgressUnits - набранные единицы прогресса.
	// Монотонно не убывают до завершения шага.
	ProgressUnits int

	// Completed - отмечен ли урок завершённым.
	Completed bool

	// InstructorName - инструктор, проводивший урок.
	InstructorName string

	// EndDate - когда урок закончился.
	EndDate time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// ПРОГРЕСС СТУДЕНТА
// Шаг учебного плана считается пройденным, когда ПОСЛЕДНЯЯ запись
// по его шаблону завершена и прогресс равен требуемому порогу.
// ══════════════════════════════════════════════════════════════════════════════

// templateDone проверяет завершённость шага по его последней записи.
func templateDone(last Lesson, tmpl curriculum.LessonTemplate) bool {
	return last.Completed && last.ProgressUnits == tmpl.RequiredProgressUnits
}

// MostRecentCompletedTemplateID возвращает наибольший TemplateID среди
// пройденных шагов студента. ok == false - пройденных шагов ещё нет.
// Неизвестный TemplateID в истории - ошибка данных, она пробрасывается.
func MostRecentCompletedTemplateID(catalog *curriculum.Catalog, history []Lesson) (int, bool, error) {
	lastPerTemplate := make(map[int]Lesson, len(history))
	for _, lesson := range history {
		lastPerTemplate[lesson.TemplateID] = lesson
	}

	highest := 0
	for templateID, last := range lastPerTemplate {
		tmpl, err := catalog.FindTemplate(templateID)
		if err != nil {
			return 0, false, err
		}
		if templateDone(last, tmpl) && templateID > highest {
			highest = templateID
		}
	}

	if highest == 0 {
		return 0, false, nil
	}
	return highest, true, nil
}

// TemplateStatus - статус одного шага учебного плана для журнала вождения.
type TemplateStatus struct {
	// Template - сам шаг.
	Template curriculum.LessonTemplate

	// Attempted - есть ли хотя бы одна запись по шагу.
	Attempted bool

	// Completed - пройден ли шаг.
	Completed bool

	// ProgressUnits - прогресс по последней записи.
	ProgressUnits int

	// InstructorName - инструктор последней записи.
	InstructorName string

	// CompletedAt - дата завершения (для пройденных шагов).
	CompletedAt time.Time
}

// TrackProgress строит статус каждого шага учебного плана по истории уроков.
// Это данные, которые журнал вождения показывает студенту.
func TrackProgress(catalog *curriculum.Catalog, history []Lesson) []TemplateStatus {
	lastPerTemplate := make(map[int]Lesson, len(history))
	for _, lesson := range history {
		lastPerTemplate[lesson.TemplateID] = lesson
	}

	statuses := make([]TemplateStatus, 0, catalog.Len())
	for _, tmpl := range catalog.Templates() {
		status := TemplateStatus{Template: tmpl}
		if last, ok := lastPerTemplate[tmpl.ID]; ok {
			status.Attempted = true
			status.ProgressUnits = last.ProgressUnits
			status.InstructorName = last.InstructorName
			if templateDone(last, tmpl) {
				status.Completed = true
				status.CompletedAt = last.EndDate
			}
		}
		statuses = append(statuses, status)
	}

	return statuses
}
