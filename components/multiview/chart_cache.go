package multiview

import (
	"fmt"
	"hash/fnv"
	"sync"
	"time"
)

// RenderCache memoizes rendered chart markup.
type RenderCache interface {
	GetOrRender(key string, render func() (string, error)) (string, error)
}

// DefaultChartCacheSize bounds the number of charts kept by NewChartCache.
const DefaultChartCacheSize = 256

// ChartCache keeps chart markup for a fixed TTL. Expired entries are swept
// whenever the cache is full.
type ChartCache struct {
	mu     sync.Mutex
	ttl    time.Duration
	max    int
	now    func() time.Time
	charts map[string]chartEntry
}

type chartEntry struct {
	markup   string
	storedAt time.Time
}

// NewChartCache returns a cache holding charts for ttl. ttl <= 0 turns the
// cache into a pass-through.
func NewChartCache(ttl time.Duration) *ChartCache {
	return &ChartCache{
		ttl:    ttl,
		max:    DefaultChartCacheSize,
		now:    time.Now,
		charts: map[string]chartEntry{},
	}
}

// GetOrRender serves key from the cache or calls render and keeps its result.
// Render errors are not cached.
func (c *ChartCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if c == nil || c.ttl <= 0 {
		return render()
	}
	c.mu.Lock()
	entry, ok := c.charts[key]
	if ok && c.now().Sub(entry.storedAt) < c.ttl {
		c.mu.Unlock()
		return entry.markup, nil
	}
	c.mu.Unlock()

	markup, err := render()
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.charts) >= c.max {
		c.sweepLocked()
	}
	if len(c.charts) < c.max {
		c.charts[key] = chartEntry{markup: markup, storedAt: c.now()}
	}
	return markup, nil
}

// Len returns the number of stored charts, expired ones included.
func (c *ChartCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.charts)
}

func (c *ChartCache) sweepLocked() {
	now := c.now()
	for key, entry := range c.charts {
		if now.Sub(entry.storedAt) >= c.ttl {
			delete(c.charts, key)
		}
	}
}

// chartKey identifies a panel chart by id, chart kind and the settings that
// change its markup. Position and visibility are not part of the key.
func chartKey(p Panel, kind string) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s\x00%s\x00%d", p.Type, p.Title, p.RefreshIntervalSeconds)
	return fmt.Sprintf("%s:%s:%016x", p.ID, kind, h.Sum64())
}
