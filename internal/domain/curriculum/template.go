package curriculum

import (
	"errors"
	"fmt"
)

// ══════════════════════════════════════════════════════════════════════════════
// ДОМЕННЫЕ ОШИБКИ
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrTemplateNotFound - шаблон с указанным id не найден в каталоге.
	// Это ошибка данных/конфигурации, а не пользовательского ввода.
	ErrTemplateNotFound = errors.New("curriculum: lesson template not found")

	// ErrNoFurtherTemplate - после указанной позиции нет шаблона нужного типа.
	// Отличается от ErrTemplateNotFound: учебный план для этого типа исчерпан.
	ErrNoFurtherTemplate = errors.New("curriculum: no further template of requested type")

	// ErrEmptyCatalog - каталог не может быть пустым.
	ErrEmptyCatalog = errors.New("curriculum: catalog is empty")

	// ErrInvalidTemplate - шаблон с некорректными полями.
	ErrInvalidTemplate = errors.New("curriculum: invalid template")

	// ErrBrokenOrdering - идентификаторы шаблонов не строго возрастают
	// непрерывно от 1.
	ErrBrokenOrdering = errors.New("curriculum: template ids must be contiguous from 1")
)

// ══════════════════════════════════════════════════════════════════════════════
// ШАБЛОН УРОКА
// ══════════════════════════════════════════════════════════════════════════════

// FirstTemplateID - идентификатор первого шага учебного плана.
// У него нет предварительных условий.
const FirstTemplateID = 1

// LessonTemplate - один шаг учебного плана.
// Шаблоны образуют полный порядок по ID; этот порядок и есть
// цепочка предварительных условий.
type LessonTemplate struct {
	// ID - положительный, глобально упорядоченный и уникальный идентификатор.
	ID int

	// Type - тип занятия.
	Type LessonType

	// Title - название шага.
	Title string

	// Description - описание для журнала вождения.
	Description string

	// RequiredProgressUnits - сколько единиц прогресса нужно набрать,
	// чтобы шаг считался завершённым.
	RequiredProgressUnits int
}

// Validate проверяет корректность полей шаблона.
func (t LessonTemplate) Validate() error {
	if t.ID < FirstTemplateID {
		return fmt.Errorf("%w: id %d must be positive", ErrInvalidTemplate, t.ID)
	}
	if !t.Type.IsValid() {
		return fmt.Errorf("%w: unknown lesson type %q", ErrInvalidTemplate, t.Type)
	}
	if t.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidTemplate)
	}
	if t.RequiredProgressUnits <= 0 {
		return fmt.Errorf("%w: required progress units must be positive", ErrInvalidTemplate)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// КАТАЛОГ
// Каталог загружается один раз за сессию и после этого неизменяем.
// ══════════════════════════════════════════════════════════════════════════════

// Catalog - неизменяемый, упорядоченный по ID каталог шаблонов.
type Catalog struct {
	templates []LessonTemplate
}

// NewCatalog создаёт каталог из списка шаблонов.
// Шаблоны должны идти в порядке строго возрастающих ID без разрывов,
// начиная с FirstTemplateID.
func NewCatalog(templates []LessonTemplate) (*Catalog, error) {
	if len(templates) == 0 {
		return nil, ErrEmptyCatalog
	}

	owned := make([]LessonTemplate, len(templates))
	copy(owned, templates)

	for i, t := range owned {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if t.ID != FirstTemplateID+i {
			return nil, fmt.Errorf("%w: got id %d at position %d", ErrBrokenOrdering, t.ID, i)
		}
	}

	return &Catalog{templates: owned}, nil
}

// Len возвращает количество шаблонов в каталоге.
func (c *Catalog) Len() int {
	return len(c.templates)
}

// Templates возвращает копию всех шаблонов в порядке учебного плана.
func (c *Catalog) Templates() []LessonTemplate {
	out := make([]LessonTemplate, len(c.templates))
	copy(out, c.templates)
	return out
}

// FindTemplate возвращает шаблон по идентификатору.
// Возвращает ErrTemplateNotFound, если такого шаблона нет.
func (c *Catalog) FindTemplate(id int) (LessonTemplate, error) {
	idx := id - FirstTemplateID
	if idx < 0 || idx >= len(c.templates) {
		return LessonTemplate{}, fmt.Errorf("%w: id %d", ErrTemplateNotFound, id)
	}
	return c.templates[idx], nil
}

// First возвращает первый шаблон учебного плана.
func (c *Catalog) First() LessonTemplate {
	return c.templates[0]
}

// NextTemplateOfType возвращает первый шаблон указанного типа строго
// после afterID. Моделирует "следующий шаг этого типа, который студент
// может попытаться забронировать".
// Возвращает ErrNoFurtherTemplate, если таких шаблонов больше нет.
func (c *Catalog) NextTemplateOfType(afterID int, desiredType LessonType) (LessonTemplate, error) {
	for _, t := range c.templates {
		if t.ID > afterID && t.Type == desiredType {
			return t, nil
		}
	}
	return LessonTemplate{}, fmt.Errorf("%w: type %s after id %d", ErrNoFurtherTemplate, desiredType, afterID)
}
