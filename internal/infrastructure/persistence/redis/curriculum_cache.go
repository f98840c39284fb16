package redis

import (
	"context"
	"errors"

	"github.com/drivelog-hub/drivelog/internal/domain/curriculum"
	"github.com/drivelog-hub/drivelog/pkg/logger"
)

// CachedCurriculumRepository decorates a curriculum.Repository with a
// Redis cache. Every eligibility check walks the catalog, so keeping it
// out of PostgreSQL saves the hottest read path a round trip.
type CachedCurriculumRepository struct {
	inner  curriculum.Repository
	cache  *Cache
	logger *logger.Logger
}

// NewCachedCurriculumRepository wraps inner with the cache.
func NewCachedCurriculumRepository(inner curriculum.Repository, cache *Cache, log *logger.Logger) *CachedCurriculumRepository {
	if log == nil {
		log = logger.Default()
	}
	return &CachedCurriculumRepository{
		inner:  inner,
		cache:  cache,
		logger: log.With(logger.Component("curriculum_cache")),
	}
}

const catalogKey = PrefixCurriculum + "catalog"

// LoadCatalog returns the cached catalog, falling back to the inner
// repository. Cache failures degrade to the database, never to an error.
func (r *CachedCurriculumRepository) LoadCatalog(ctx context.Context) (*curriculum.Catalog, error) {
	var templates []curriculum.LessonTemplate
	err := r.cache.Get(ctx, catalogKey, &templates)
	if err == nil {
		catalog, buildErr := curriculum.NewCatalog(templates)
		if buildErr == nil {
			return catalog, nil
		}
		// A catalog that no longer validates means stale cache data.
		r.logger.Warn("cached curriculum is invalid, reloading", logger.Err(buildErr))
	} else if !errors.Is(err, ErrCacheMiss) {
		r.logger.Warn("curriculum cache unavailable", logger.Err(err))
	}

	catalog, err := r.inner.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, catalogKey, catalog.Templates(), TTLCurriculumCatalog); err != nil {
		r.logger.Warn("failed to cache curriculum", logger.Err(err))
	}

	return catalog, nil
}

// Invalidate drops the cached catalog. Called after the school saves a
// revised plan.
func (r *CachedCurriculumRepository) Invalidate(ctx context.Context) error {
	return r.cache.Delete(ctx, catalogKey)
}
