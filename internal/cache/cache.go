// Package cache provides the in-process TTL+LRU cache that sits between
// the memory store and its partition files.
package cache

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cortexlab/memstore/internal/model"
)

// Config controls cache behavior. It is runtime-adjustable via
// Reconfigure.
type Config struct {
	Enabled         bool
	TTL             time.Duration
	MaxEntries      int
	CleanupInterval time.Duration
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:         true,
		TTL:             60 * time.Second,
		MaxEntries:      100,
		CleanupInterval: 120 * time.Second,
	}
}

// entry wraps a cached partition. insertedAt alone decides expiry (the
// TTL is fixed from insertion, never sliding); lastAccessAt only orders
// LRU eviction.
type entry struct {
	partition    *model.Partition
	insertedAt   time.Time
	lastAccessAt time.Time
}

// Cache is a TTL+LRU map keyed by partition path. It is constructed with
// its configuration and injected into the store; there is no package
// level instance. Safe for concurrent use: the background sweep shares
// the map with callers.
type Cache struct {
	mu      sync.Mutex
	cfg     Config
	entries map[string]*entry
	stop    chan struct{}
	log     *logrus.Logger
}

// New creates a cache and, when enabled with a positive cleanup
// interval, starts its background sweep.
func New(cfg Config, log *logrus.Logger) *Cache {
	if log == nil {
		log = logrus.New()
	}
	c := &Cache{
		cfg:     cfg,
		entries: make(map[string]*entry),
		log:     log,
	}
	c.startSweepLocked()
	return c
}

// Get returns the cached partition for key, if present and unexpired.
// A hit updates the entry's last access time.
func (c *Cache) Get(key string) (*model.Partition, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.cfg.Enabled {
		return nil, false
	}
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.expired(e, time.Now()) {
		delete(c.entries, key)
		return nil, false
	}
	e.lastAccessAt = time.Now()
	return e.partition, true
}

// Put inserts or refreshes the cached partition for key, evicting the
// least recently accessed entry first when at capacity.
func (c *Cache) Put(key string, p *model.Partition) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.cfg.Enabled {
		return
	}
	if _, exists := c.entries[key]; !exists && c.cfg.MaxEntries > 0 && len(c.entries) >= c.cfg.MaxEntries {
		c.evictOldest()
	}
	now := time.Now()
	c.entries[key] = &entry{partition: p, insertedAt: now, lastAccessAt: now}
}

// Invalidate removes the cached partition for key, forcing a disk reload
// on the next read.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes every cached partition.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

// Size returns the number of cached partitions.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns the cached partition paths, for diagnostics.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}

// Config returns the active configuration.
func (c *Cache) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// Reconfigure replaces the configuration and restarts the background
// sweep. Disabling the cache drops all entries.
func (c *Cache) Reconfigure(cfg Config) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopSweepLocked()
	c.cfg = cfg
	if !cfg.Enabled {
		c.entries = make(map[string]*entry)
	}
	c.startSweepLocked()
}

// Stop terminates the background sweep. The cache remains usable; only
// the timer is released.
func (c *Cache) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopSweepLocked()
}

func (c *Cache) expired(e *entry, now time.Time) bool {
	return c.cfg.TTL > 0 && now.Sub(e.insertedAt) >= c.cfg.TTL
}

// evictOldest removes the entry with the oldest last access time.
// Caller holds the mutex.
func (c *Cache) evictOldest() {
	var victim string
	var oldest time.Time
	for k, e := range c.entries {
		if victim == "" || e.lastAccessAt.Before(oldest) {
			victim = k
			oldest = e.lastAccessAt
		}
	}
	if victim != "" {
		delete(c.entries, victim)
		c.log.WithField("partition", victim).Debug("cache: evicted LRU entry")
	}
}

// startSweepLocked launches the sweep goroutine. Caller holds the mutex.
func (c *Cache) startSweepLocked() {
	if !c.cfg.Enabled || c.cfg.CleanupInterval <= 0 {
		return
	}
	stop := make(chan struct{})
	c.stop = stop
	go c.sweep(stop, c.cfg.CleanupInterval)
}

// stopSweepLocked signals the sweep goroutine to exit. Caller holds the
// mutex.
func (c *Cache) stopSweepLocked() {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

func (c *Cache) sweep(stop chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}

func (c *Cache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for k, e := range c.entries {
		if c.expired(e, now) {
			delete(c.entries, k)
			c.log.WithField("partition", k).Debug("cache: swept expired entry")
		}
	}
}
