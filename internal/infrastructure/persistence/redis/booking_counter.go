package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ══════════════════════════════════════════════════════════════════════════════
// BOOKING COUNTER CACHE
// Реализация booking.CounterCache на Redis. Счётчик на слот живёт под
// ключом "bookingcount:<slotID>" с TTL: если фоновая синхронизация
// остановится, устаревший счётчик сам исчезнет и проверки вернутся к
// авторитетному COUNT(*) в PostgreSQL.
// ══════════════════════════════════════════════════════════════════════════════

// BookingCounterCache implements booking.CounterCache using Redis.
type BookingCounterCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewBookingCounterCache creates a counter cache with the default TTL.
func NewBookingCounterCache(cache *Cache) *BookingCounterCache {
	return &BookingCounterCache{cache: cache, ttl: TTLBookingCounter}
}

// WithTTL overrides the counter TTL.
func (c *BookingCounterCache) WithTTL(ttl time.Duration) *BookingCounterCache {
	c.ttl = ttl
	return c
}

func counterKey(slotID string) string {
	return PrefixBookingCount + slotID
}

// Get returns the cached counter for a slot; ok is false on a miss.
func (c *BookingCounterCache) Get(ctx context.Context, slotID string) (int, bool, error) {
	if slotID == "" {
		return 0, false, ErrCacheKeyEmpty
	}

	count, err := c.cache.client.Get(ctx, counterKey(slotID)).Int()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get booking counter: %w", err)
	}
	return count, true, nil
}

// Set writes the counter with the configured TTL.
func (c *BookingCounterCache) Set(ctx context.Context, slotID string, count int) error {
	if slotID == "" {
		return ErrCacheKeyEmpty
	}
	return c.cache.client.Set(ctx, counterKey(slotID), count, c.ttl).Err()
}

// Increment atomically bumps the counter and refreshes its TTL.
func (c *BookingCounterCache) Increment(ctx context.Context, slotID string) (int, error) {
	if slotID == "" {
		return 0, ErrCacheKeyEmpty
	}

	key := counterKey(slotID)
	pipe := c.cache.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("increment booking counter: %w", err)
	}
	return int(incr.Val()), nil
}

// Forget drops the counter for a slot.
func (c *BookingCounterCache) Forget(ctx context.Context, slotID string) error {
	if slotID == "" {
		return ErrCacheKeyEmpty
	}
	return c.cache.client.Del(ctx, counterKey(slotID)).Err()
}
