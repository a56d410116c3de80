package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Cache is a string key/value store. Implementations live in package cache.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// CacheObserver is notified of cache hits and misses.
type CacheObserver interface {
	CacheHit()
	CacheMiss()
}

// Cached memoizes a HolidayCalendar per year. Holidays are a pure function of
// the year, so entries never expire. Cache failures are logged and the year
// is recomputed.
type Cached struct {
	source   HolidayCalendar
	cache    Cache
	observer CacheObserver
	logger   *slog.Logger
}

// NewCached wraps source with cache. observer may be nil.
func NewCached(source HolidayCalendar, cache Cache, observer CacheObserver, logger *slog.Logger) *Cached {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cached{source: source, cache: cache, observer: observer, logger: logger}
}

// CacheKey is the cache key of a year's holidays.
func CacheKey(year int) string {
	return fmt.Sprintf("holidays:co:%d", year)
}

// Holidays implements HolidayCalendar.
func (c *Cached) Holidays(ctx context.Context, year int) ([]Holiday, error) {
	key := CacheKey(year)

	raw, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.WarnContext(ctx, "holiday cache read failed", slog.String("key", key), slog.Any("error", err))
	}
	if ok {
		var holidays []Holiday
		if err := json.Unmarshal([]byte(raw), &holidays); err == nil {
			c.hit()
			return holidays, nil
		}
		c.logger.WarnContext(ctx, "discarding corrupt holiday cache entry", slog.String("key", key))
	}
	c.miss()

	holidays, err := c.source.Holidays(ctx, year)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(holidays)
	if err != nil {
		return nil, fmt.Errorf("encode holidays %d: %w", year, err)
	}
	if err := c.cache.Set(ctx, key, string(encoded)); err != nil {
		c.logger.WarnContext(ctx, "holiday cache write failed", slog.String("key", key), slog.Any("error", err))
	}
	return holidays, nil
}

func (c *Cached) hit() {
	if c.observer != nil {
		c.observer.CacheHit()
	}
}

func (c *Cached) miss() {
	if c.observer != nil {
		c.observer.CacheMiss()
	}
}
