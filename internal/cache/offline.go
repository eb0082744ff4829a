// Package cache keeps the last fetched weather per city so the dashboard can
// fall back to it when the network is unavailable.
package cache

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/i474232898/cloudcast/internal/common"
	"github.com/i474232898/cloudcast/internal/store"
	"github.com/i474232898/cloudcast/internal/weather"
)

// DefaultCapacity is the number of cities kept.
const DefaultCapacity = 5

// Offline is a bounded, insertion-ordered city -> weather cache persisted as a
// single JSON blob. Storage failures are logged and never returned.
type Offline struct {
	mu       sync.Mutex
	kv       store.KV
	capacity int
	now      func() time.Time

	// entries is ordered by first insertion; index 0 is evicted first.
	entries []weather.CacheEntry
}

// Option configures an Offline cache.
type Option func(*Offline)

// WithCapacity overrides DefaultCapacity. Values <= 0 are ignored.
func WithCapacity(n int) Option {
	return func(c *Offline) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Offline) {
		c.now = now
	}
}

// NewOffline creates the cache and rehydrates it from kv.
func NewOffline(kv store.KV, opts ...Option) *Offline {
	c := &Offline{
		kv:       kv,
		capacity: DefaultCapacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.entries = c.load()
	return c
}

func (c *Offline) load() []weather.CacheEntry {
	raw, err := c.kv.Get(store.KeyWeatherCache)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("WARN: cache: failed to load cached weather data: %v", err)
		}
		return nil
	}

	var entries []weather.CacheEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		log.Printf("WARN: cache: discarding corrupt cached weather data: %v", err)
		return nil
	}

	// One entry per city, even if the blob was edited by hand.
	seen := make(map[string]bool, len(entries))
	out := entries[:0]
	for _, e := range entries {
		e.CityKey = common.CityKey(e.CityKey)
		if e.CityKey == "" || seen[e.CityKey] {
			continue
		}
		seen[e.CityKey] = true
		out = append(out, e)
	}
	if len(out) > c.capacity {
		out = out[len(out)-c.capacity:]
	}
	return out
}

// persist writes the whole cache. Caller holds c.mu.
func (c *Offline) persist() {
	data, err := json.Marshal(c.entries)
	if err != nil {
		log.Printf("WARN: cache: failed to encode weather cache: %v", err)
		return
	}
	if err := c.kv.Set(store.KeyWeatherCache, string(data)); err != nil {
		log.Printf("WARN: cache: failed to persist weather cache: %v", err)
	}
}

// Put stores the latest data for city. An existing entry is replaced in place
// and keeps its original eviction position; a new city is appended and the
// oldest-inserted city is evicted once the capacity is exceeded.
func (c *Offline) Put(city string, current weather.Snapshot, forecast weather.Forecast) {
	key := common.CityKey(city)
	if key == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry := weather.CacheEntry{
		CityKey:   key,
		Current:   current,
		Forecast:  forecast,
		FetchedAt: c.now().UnixMilli(),
	}

	replaced := false
	for i := range c.entries {
		if c.entries[i].CityKey == key {
			c.entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		c.entries = append(c.entries, entry)
	}

	if over := len(c.entries) - c.capacity; over > 0 {
		c.entries = append([]weather.CacheEntry(nil), c.entries[over:]...)
	}

	c.persist()
}

// Get returns the entry for city if it is younger than ttl. Stale entries are
// left in place; only SweepExpired removes them.
func (c *Offline) Get(city string, ttl time.Duration) (weather.CacheEntry, bool) {
	key := common.CityKey(city)

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for _, e := range c.entries {
		if e.CityKey != key {
			continue
		}
		if e.Age(now) < ttl {
			return e, true
		}
		return weather.CacheEntry{}, false
	}
	return weather.CacheEntry{}, false
}

// SweepExpired removes every entry at least ttl old and returns how many were
// removed. Storage is only rewritten when something was removed.
func (c *Offline) SweepExpired(ttl time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	kept := make([]weather.CacheEntry, 0, len(c.entries))
	for _, e := range c.entries {
		if e.Age(now) < ttl {
			kept = append(kept, e)
		}
	}

	removed := len(c.entries) - len(kept)
	if removed > 0 {
		c.entries = kept
		c.persist()
		log.Printf("INFO: cache: swept %d expired entries", removed)
	}
	return removed
}

// Cities lists cached city keys in insertion order.
func (c *Offline) Cities() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.CityKey
	}
	return out
}

// Len returns the number of cached cities.
func (c *Offline) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Capacity returns the maximum number of cached cities.
func (c *Offline) Capacity() int {
	return c.capacity
}
