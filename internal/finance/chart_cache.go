package finance

import (
	"sync"
	"time"

	"portfolioLab/internal/metrics"
)

// chartCache keeps rendered PNGs for a short TTL so repeated commands skip rendering.
type chartCache struct {
	mu      sync.Mutex
	entries map[string]chartCacheEntry
	ttl     time.Duration
	metrics *metrics.Registry
	now     func() time.Time
}

func newChartCache(ttl time.Duration, m *metrics.Registry) *chartCache {
	return &chartCache{entries: map[string]chartCacheEntry{}, ttl: ttl, metrics: m, now: time.Now}
}

func (c *chartCache) get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[key]; ok {
		if c.now().Before(entry.createdAt.Add(c.ttl)) {
			img := make([]byte, len(entry.image))
			copy(img, entry.image)
			c.metrics.ChartCache(true)
			return img, true
		}
		delete(c.entries, key)
	}
	c.metrics.ChartCache(false)
	return nil, false
}

// set stores img and drops every expired entry.
func (c *chartCache) set(key string, img []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, e := range c.entries {
		if !now.Before(e.createdAt.Add(c.ttl)) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = chartCacheEntry{createdAt: now, image: img}
}

// render returns the cached image for key or builds, stores and returns a fresh one.
func (c *chartCache) render(key string, build func() ([]byte, error)) ([]byte, error) {
	if img, ok := c.get(key); ok {
		return img, nil
	}
	img, err := build()
	if err != nil {
		return nil, err
	}
	c.set(key, img)
	return img, nil
}
