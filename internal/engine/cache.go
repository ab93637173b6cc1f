package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/ji-annnn/PixelFruit/internal/histogram"
	"github.com/ji-annnn/PixelFruit/internal/pixel"
)

// CacheConfig controls the processed-result cache.
type CacheConfig struct {
	// MaxSize is the entry bound; the oldest entry by timestamp is
	// evicted when exceeded.
	MaxSize int

	// TTL is the sliding expiry: entries older than this are discarded
	// lazily on read. Reading a live entry refreshes its timestamp.
	TTL time.Duration

	// Enabled turns caching off entirely when false.
	Enabled bool
}

// DefaultCacheConfig matches interactive-editing use: a handful of
// recent results kept for a few minutes.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MaxSize: 20,
		TTL:     5 * time.Minute,
		Enabled: true,
	}
}

// CacheStats is a read-only view of cache effectiveness.
type CacheStats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Entries int    `json:"entries"`
}

type cacheEntry struct {
	buf       *pixel.Buffer
	timestamp time.Time
}

// resultCache is a bounded map keyed by (dimensions, content sample,
// serialized operation list). Same mutex-guarded-map shape as the image
// cache it replaced; eviction is LRU by timestamp.
type resultCache struct {
	mu      sync.Mutex
	cfg     CacheConfig
	entries map[string]*cacheEntry
	hits    uint64
	misses  uint64
	now     func() time.Time // swappable for TTL tests
}

func newResultCache(cfg CacheConfig) *resultCache {
	return &resultCache{
		cfg:     cfg,
		entries: make(map[string]*cacheEntry),
		now:     time.Now,
	}
}

// cacheKey fingerprints a request: buffer dimensions, a low-cost
// content sample, and the serialized operation list.
func cacheKey(buf *pixel.Buffer, ops []Operation) string {
	return fmt.Sprintf("%dx%d:%016x:%s",
		buf.Width, buf.Height, histogram.SampleHash(buf), serializeOps(ops))
}

// get returns a copy of the cached result, or nil. Expired entries are
// dropped on read; live entries have their timestamp refreshed.
func (c *resultCache) get(key string) *pixel.Buffer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.cfg.Enabled {
		return nil
	}
	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil
	}
	if c.cfg.TTL > 0 && c.now().Sub(e.timestamp) > c.cfg.TTL {
		delete(c.entries, key)
		c.misses++
		return nil
	}
	e.timestamp = c.now()
	c.hits++
	return e.buf.Clone()
}

// put stores a copy of buf and evicts the oldest entries past MaxSize.
func (c *resultCache) put(key string, buf *pixel.Buffer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.cfg.Enabled {
		return
	}
	c.entries[key] = &cacheEntry{buf: buf.Clone(), timestamp: c.now()}

	for c.cfg.MaxSize > 0 && len(c.entries) > c.cfg.MaxSize {
		oldestKey := ""
		var oldest time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.timestamp.Before(oldest) {
				oldestKey = k
				oldest = e.timestamp
			}
		}
		delete(c.entries, oldestKey)
	}
}

func (c *resultCache) configure(cfg CacheConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
	if !cfg.Enabled {
		c.entries = make(map[string]*cacheEntry)
	}
}

func (c *resultCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

func (c *resultCache) stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Hits: c.hits, Misses: c.misses, Entries: len(c.entries)}
}
