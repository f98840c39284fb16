package postgres

import (
	"context"
	"fmt"

	"github.com/drivelog-hub/drivelog/internal/domain/curriculum"
)

// ══════════════════════════════════════════════════════════════════════════════
// CURRICULUM REPOSITORY IMPLEMENTATION
// Учебный план меняется редко (раз в несколько лет, при изменении
// законодательства), поэтому каталог читается целиком при старте и при
// явном обновлении, а не по одному шаблону.
// ══════════════════════════════════════════════════════════════════════════════

// CurriculumRepository implements curriculum.Repository for PostgreSQL.
type CurriculumRepository struct {
	conn *Connection
}

// NewCurriculumRepository creates a new CurriculumRepository.
func NewCurriculumRepository(conn *Connection) *CurriculumRepository {
	return &CurriculumRepository{conn: conn}
}

// LoadCatalog reads the full ordered curriculum.
func (r *CurriculumRepository) LoadCatalog(ctx context.Context) (*curriculum.Catalog, error) {
	query := `
		SELECT id, lesson_type, title, description, required_progress_units
		FROM lesson_templates
		ORDER BY id
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load curriculum: %w", err)
	}
	defer rows.Close()

	var templates []curriculum.LessonTemplate
	for rows.Next() {
		var tmpl curriculum.LessonTemplate
		var lessonType string
		if err := rows.Scan(&tmpl.ID, &lessonType, &tmpl.Title, &tmpl.Description, &tmpl.RequiredProgressUnits); err != nil {
			return nil, fmt.Errorf("scan lesson template: %w", err)
		}
		tmpl.Type = curriculum.LessonType(lessonType)
		templates = append(templates, tmpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load curriculum: %w", err)
	}

	return curriculum.NewCatalog(templates)
}

// SaveTemplate upserts one curriculum step. Used by administrative tooling
// when the school revises its plan.
func (r *CurriculumRepository) SaveTemplate(ctx context.Context, tmpl curriculum.LessonTemplate) error {
	if err := tmpl.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO lesson_templates (id, lesson_type, title, description, required_progress_units)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			lesson_type = EXCLUDED.lesson_type,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			required_progress_units = EXCLUDED.required_progress_units
	`

	if _, err := r.conn.Exec(ctx, query,
		tmpl.ID, string(tmpl.Type), tmpl.Title, tmpl.Description, tmpl.RequiredProgressUnits,
	); err != nil {
		return fmt.Errorf("save lesson template: %w", err)
	}
	return nil
}
