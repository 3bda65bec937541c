package wx

import (
	"sort"
	"sync"
	"time"

	"github.com/skywatch/metarboard/pkg/logger"
)

// Snapshot is one complete collection cycle's worth of observations
type Snapshot struct {
	Observations map[string]Observation `json:"observations"`
	LastUpdated  time.Time              `json:"last_updated"`
}

// Sorted returns the snapshot's observations ordered by station id
func (s *Snapshot) Sorted() []Observation {
	observations := make([]Observation, 0, len(s.Observations))
	for _, obs := range s.Observations {
		observations = append(observations, obs)
	}
	sort.Slice(observations, func(i, j int) bool {
		return observations[i].StationID < observations[j].StationID
	})
	return observations
}

// Cache holds the latest observation snapshot with thread-safe access
type Cache struct {
	snapshot  *Snapshot
	expiresAt time.Time
	expiry    time.Duration
	logger    *logger.Logger
	mu        sync.RWMutex
}

// NewCache creates a new observation cache
func NewCache(expiry time.Duration, log *logger.Logger) *Cache {
	return &Cache{
		expiry: expiry,
		logger: log.Named("wx-cache"),
	}
}

// Get returns the current snapshot, or nil when nothing has been
// collected yet
func (c *Cache) Get() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Set replaces the cached snapshot
func (c *Cache) Set(observations map[string]Observation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshot = &Snapshot{
		Observations: observations,
		LastUpdated:  time.Now(),
	}
	c.expiresAt = time.Now().Add(c.expiry)

	c.logger.Debug("Observation snapshot cached",
		logger.Int("stations", len(observations)),
		logger.Time("expires_at", c.expiresAt))
}

// IsExpired checks if the cached snapshot has expired
func (c *Cache) IsExpired() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot == nil || time.Now().After(c.expiresAt)
}

// GetStats returns cache statistics
func (c *Cache) GetStats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := map[string]interface{}{
		"has_data":   c.snapshot != nil,
		"is_expired": c.snapshot == nil || time.Now().After(c.expiresAt),
	}
	if c.snapshot != nil {
		stats["stations"] = len(c.snapshot.Observations)
		stats["last_updated"] = c.snapshot.LastUpdated
	}
	return stats
}
