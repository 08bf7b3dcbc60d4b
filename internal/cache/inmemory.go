package cache

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/printprice/printprice/internal/config"
	"github.com/printprice/printprice/internal/logger"
)

// DefaultExpiration is the TTL repositories use for entity entries.
const DefaultExpiration = 30 * time.Minute

// cleanupInterval controls how often expired entries are swept.
const cleanupInterval = time.Hour

// memoryCache backs Cache with an in-process go-cache store. When disabled it
// stays a valid Cache that stores nothing and always misses, so repositories
// call it unconditionally.
type memoryCache struct {
	store   *gocache.Cache
	enabled bool
}

func New(cfg *config.Configuration, log *logger.Logger) Cache {
	if !cfg.Cache.Enabled {
		log.Infow("entity cache disabled, repositories will hit the database on every read")
	}
	return &memoryCache{
		store:   gocache.New(DefaultExpiration, cleanupInterval),
		enabled: cfg.Cache.Enabled,
	}
}

func (c *memoryCache) Get(_ context.Context, key string) (any, bool) {
	if !c.enabled {
		return nil, false
	}
	return c.store.Get(key)
}

func (c *memoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) {
	if !c.enabled {
		return
	}
	c.store.Set(key, value, ttl)
}

func (c *memoryCache) Delete(_ context.Context, key string) {
	if !c.enabled {
		return
	}
	c.store.Delete(key)
}

func (c *memoryCache) DeleteByPrefix(_ context.Context, prefix string) {
	if !c.enabled {
		return
	}
	for key := range c.store.Items() {
		if strings.HasPrefix(key, prefix) {
			c.store.Delete(key)
		}
	}
}
