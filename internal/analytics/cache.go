package analytics

import (
	"sync"
	"time"
)

// statsCache holds the last computed stats for a limited time
type statsCache struct {
	mu          sync.RWMutex
	stats       []Stats
	lastRefresh time.Time
	valid       bool
	ttl         time.Duration
	now         func() time.Time
}

func newStatsCache(ttl time.Duration) *statsCache {
	return &statsCache{ttl: ttl, now: time.Now}
}

// get returns the cached stats if they are still fresh
func (c *statsCache) get() ([]Stats, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.valid || c.now().Sub(c.lastRefresh) > c.ttl {
		return nil, false
	}
	return c.stats, true
}

func (c *statsCache) set(stats []Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats = stats
	c.lastRefresh = c.now()
	c.valid = true
}

func (c *statsCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats = nil
	c.valid = false
}
