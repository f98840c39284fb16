package curriculum

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем данных.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository загружает учебный план из хранилища.
type Repository interface {
	// LoadCatalog загружает все шаблоны в порядке ID и собирает каталог.
	// Вызывается один раз при старте сессии; каталог далее неизменяем.
	LoadCatalog(ctx context.Context) (*Catalog, error)
}
