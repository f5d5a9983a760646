package geocode

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/iudanet/jobtrail/internal/client/storage"
	"github.com/iudanet/jobtrail/internal/models"
)

const (
	// DefaultCacheTTL срок жизни записи кэша
	DefaultCacheTTL = 7 * 24 * time.Hour
	// DefaultCacheSize максимальное количество адресов в кэше
	DefaultCacheSize = 1000
)

// NormalizeKey приводит адрес к ключу кэша: нижний регистр, одиночные пробелы
func NormalizeKey(address string) string {
	return strings.ToLower(strings.Join(strings.Fields(address), " "))
}

// Cache keeps geocode results for a TTL. Reads use Peek so that once the
// cache is full the oldest written entry is evicted first. Entries are
// written through to the persistent store, which is loaded on first use.
type Cache struct {
	entries *lru.Cache[string, models.GeocodeCacheEntry]
	store   storage.GeocodeCacheStorage
	logger  *slog.Logger
	now     func() time.Time
	ttl     time.Duration
	warm    sync.Once
}

// CacheOption настраивает Cache
type CacheOption func(*Cache)

// WithCacheClock подменяет часы (для тестов)
func WithCacheClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

// NewCache creates a cache of at most size entries. store may be nil for an
// in-memory cache.
func NewCache(store storage.GeocodeCacheStorage, size int, ttl time.Duration, logger *slog.Logger, opts ...CacheOption) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	c := &Cache{
		store:  store,
		logger: logger,
		now:    time.Now,
		ttl:    ttl,
	}
	for _, opt := range opts {
		opt(c)
	}

	entries, err := lru.NewWithEvict(size, c.onEvict)
	if err != nil {
		return nil, fmt.Errorf("failed to create geocode cache: %w", err)
	}
	c.entries = entries
	return c, nil
}

// onEvict удаляет вытесненную запись из постоянного хранилища
func (c *Cache) onEvict(key string, _ models.GeocodeCacheEntry) {
	if c.store == nil {
		return
	}
	if err := c.store.DeleteGeocode(context.Background(), key); err != nil {
		c.logger.Warn("Failed to delete evicted geocode entry", slog.String("key", key), slog.Any("error", err))
	}
}

func (c *Cache) expired(e models.GeocodeCacheEntry) bool {
	return c.now().Sub(e.Timestamp) >= c.ttl
}

// load заполняет кэш из хранилища в порядке записи, просроченные записи удаляет
func (c *Cache) load(ctx context.Context) {
	if c.store == nil {
		return
	}

	stored, err := c.store.LoadGeocodes(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "Failed to load geocode cache", slog.Any("error", err))
		return
	}

	sort.Slice(stored, func(i, j int) bool {
		return stored[i].Timestamp.Before(stored[j].Timestamp)
	})

	loaded := 0
	for _, e := range stored {
		if c.expired(*e) {
			if err := c.store.DeleteGeocode(ctx, e.Key); err != nil {
				c.logger.WarnContext(ctx, "Failed to delete expired geocode entry", slog.String("key", e.Key), slog.Any("error", err))
			}
			continue
		}
		c.entries.Add(e.Key, *e)
		loaded++
	}

	c.logger.DebugContext(ctx, "Geocode cache loaded", slog.Int("entries", loaded))
}

// Get returns a cached result for address. Expired entries are removed and
// reported as a miss.
func (c *Cache) Get(ctx context.Context, address string) (models.GeocodeResult, bool) {
	c.warm.Do(func() { c.load(ctx) })

	key := NormalizeKey(address)
	e, ok := c.entries.Peek(key)
	if !ok {
		return models.GeocodeResult{}, false
	}
	if c.expired(e) {
		c.entries.Remove(key)
		return models.GeocodeResult{}, false
	}
	return e.Result, true
}

// Put stores result for address if the result is cacheable
func (c *Cache) Put(ctx context.Context, address string, result models.GeocodeResult) {
	if !result.Cacheable() {
		return
	}
	c.warm.Do(func() { c.load(ctx) })

	entry := models.GeocodeCacheEntry{
		Key:       NormalizeKey(address),
		Timestamp: c.now(),
		Result:    result,
	}

	c.entries.Add(entry.Key, entry)

	if c.store != nil {
		if err := c.store.SaveGeocode(ctx, &entry); err != nil {
			c.logger.WarnContext(ctx, "Failed to persist geocode entry", slog.String("key", entry.Key), slog.Any("error", err))
		}
	}
}

// Len returns the number of cached entries, expired ones included
func (c *Cache) Len() int {
	return c.entries.Len()
}
