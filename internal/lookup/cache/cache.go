// Package cache keeps recent lookup results in an LRU with a fixed TTL so a
// repeated query within the window skips every upstream call.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"lookupbot/internal/lookup/models"
	"lookupbot/internal/platform/metrics"
)

// ResultCache is safe for concurrent use. A nil *ResultCache never hits.
type ResultCache struct {
	lru     *expirable.LRU[string, models.LookupResult]
	metrics *metrics.Metrics
}

// New returns nil when ttl is not positive, which disables caching.
func New(size int, ttl time.Duration, m *metrics.Metrics) *ResultCache {
	if ttl <= 0 {
		return nil
	}
	if size <= 0 {
		size = 512
	}
	return &ResultCache{
		lru:     expirable.NewLRU[string, models.LookupResult](size, nil, ttl),
		metrics: m,
	}
}

func key(domain models.Domain, query string) string {
	return string(domain) + "\x00" + query
}

// Get returns a deep copy of the cached result. LookedUpAt is the time of
// the lookup that populated the entry, not of the hit.
func (c *ResultCache) Get(domain models.Domain, query string) (*models.LookupResult, bool) {
	if c == nil {
		return nil, false
	}
	res, ok := c.lru.Get(key(domain, query))
	if !ok {
		c.metrics.RecordCacheMiss()
		return nil, false
	}
	c.metrics.RecordCacheHit()
	return res.Clone(), true
}

// Set stores only successful lookups; failures are always retried.
func (c *ResultCache) Set(domain models.Domain, query string, res *models.LookupResult) {
	if c == nil || res == nil {
		return
	}
	c.lru.Add(key(domain, query), *res.Clone())
}

func (c *ResultCache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

func (c *ResultCache) Purge() {
	if c != nil {
		c.lru.Purge()
	}
}
