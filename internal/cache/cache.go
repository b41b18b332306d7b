package cache

import (
	"sync"
	"time"

	"github.com/custodia-labs/nova/internal/core/domain"
	"github.com/custodia-labs/nova/internal/logger"
	"github.com/custodia-labs/nova/internal/metrics"
)

// Default configuration values.
const (
	DefaultMaxEntries = domain.DefaultCacheMaxEntries
	DefaultTTL        = domain.DefaultCacheTTL
)

// Config holds configuration for a result cache.
type Config struct {
	// Name labels log lines and metrics.
	Name string

	// Enabled turns the cache on; a disabled cache misses every lookup.
	Enabled bool

	// MaxEntries bounds the number of live entries (default: 1000).
	MaxEntries int

	// TTL is how long an entry stays valid (default: 24h).
	TTL time.Duration
}

// Validator reports whether a payload is a usable result.
// Empty or placeholder results must fail it.
type Validator[T any] func(payload T) bool

// Entry is one cached result. Entries are replaced wholesale, never mutated.
type Entry[T any] struct {
	Key       string
	Payload   T
	CreatedAt time.Time
}

type slot[T any] struct {
	entry Entry[T]
	live  bool
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// Cache is a bounded FIFO cache with TTL and validity checks.
// It is safe for concurrent use.
type Cache[T any] struct {
	mu    sync.Mutex
	cfg   Config
	valid Validator[T]
	now   func() time.Time

	// slots is a ring of cfg.MaxEntries slots. Occupied slots run from
	// head for used positions; removed entries leave dead slots behind
	// until they are compacted away or reach the head.
	slots []slot[T]
	head  int
	used  int
	live  int
	index map[string]int
}

// New creates a cache. A nil validator accepts every payload.
func New[T any](cfg Config, valid Validator[T], opts ...Option) *Cache[T] {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Name == "" {
		cfg.Name = "default"
	}
	if valid == nil {
		valid = func(T) bool { return true }
	}

	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	return &Cache[T]{
		cfg:   cfg,
		valid: valid,
		now:   o.now,
		slots: make([]slot[T], cfg.MaxEntries),
		index: make(map[string]int, cfg.MaxEntries),
	}
}

// Get returns the payload for key. Expired and invalid entries are
// removed and reported as absent so the caller recomputes.
func (c *Cache[T]) Get(key string) (T, bool) {
	var zero T
	if !c.cfg.Enabled {
		return zero, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	pos, ok := c.index[key]
	if !ok {
		metrics.CacheRequests.WithLabelValues(c.cfg.Name, metrics.CacheMiss).Inc()
		return zero, false
	}

	entry := c.slots[pos].entry
	if c.expired(entry) {
		logger.Debug("cache %s: entry %s expired", c.cfg.Name, short(key))
		c.removeAt(pos)
		metrics.CacheRequests.WithLabelValues(c.cfg.Name, metrics.CacheExpired).Inc()
		return zero, false
	}
	if !c.valid(entry.Payload) {
		logger.Warn("cache %s: %v for %s, removing", c.cfg.Name, domain.ErrCorruptedCacheEntry, short(key))
		c.removeAt(pos)
		metrics.CacheRequests.WithLabelValues(c.cfg.Name, metrics.CacheInvalid).Inc()
		return zero, false
	}

	metrics.CacheRequests.WithLabelValues(c.cfg.Name, metrics.CacheHit).Inc()
	return entry.Payload, true
}

// Put stores payload under key and reports whether it was stored.
// Payloads failing validation are skipped. An existing key is replaced
// and counts as a fresh insertion.
func (c *Cache[T]) Put(key string, payload T) bool {
	if !c.cfg.Enabled {
		return false
	}
	if !c.valid(payload) {
		logger.Debug("cache %s: not caching invalid result for %s", c.cfg.Name, short(key))
		metrics.CacheRejects.WithLabelValues(c.cfg.Name).Inc()
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if pos, ok := c.index[key]; ok {
		c.removeAt(pos)
	}

	capacity := len(c.slots)
	if c.used == capacity && c.live < c.used {
		c.compact()
	}
	if c.used == capacity {
		c.evictOldest()
	}

	pos := (c.head + c.used) % capacity
	c.slots[pos] = slot[T]{
		entry: Entry[T]{Key: key, Payload: payload, CreatedAt: c.now()},
		live:  true,
	}
	c.index[key] = pos
	c.used++
	c.live++
	metrics.CacheEntries.WithLabelValues(c.cfg.Name).Set(float64(c.live))
	return true
}

// Remove deletes key and reports whether it was present.
func (c *Cache[T]) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	pos, ok := c.index[key]
	if !ok {
		return false
	}
	c.removeAt(pos)
	return true
}

// Sweep removes every expired or invalid entry and returns how many
// were removed.
func (c *Cache[T]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var stale []int
	for i := 0; i < c.used; i++ {
		pos := (c.head + i) % len(c.slots)
		s := c.slots[pos]
		if s.live && (c.expired(s.entry) || !c.valid(s.entry.Payload)) {
			stale = append(stale, pos)
		}
	}
	for _, pos := range stale {
		c.removeAt(pos)
	}

	if len(stale) > 0 {
		logger.Info("cache %s: swept %d stale entries", c.cfg.Name, len(stale))
	}
	return len(stale)
}

// Len returns the number of live entries, expired ones included until
// they are looked up or swept.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.live
}

// Keys returns live keys from oldest to newest insertion.
func (c *Cache[T]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, c.live)
	for i := 0; i < c.used; i++ {
		s := c.slots[(c.head+i)%len(c.slots)]
		if s.live {
			keys = append(keys, s.entry.Key)
		}
	}
	return keys
}

// Clear removes every entry.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.slots = make([]slot[T], len(c.slots))
	c.index = make(map[string]int, len(c.slots))
	c.head, c.used, c.live = 0, 0, 0
	metrics.CacheEntries.WithLabelValues(c.cfg.Name).Set(0)
}

// Capacity returns MaxEntries.
func (c *Cache[T]) Capacity() int {
	return len(c.slots)
}

func (c *Cache[T]) expired(e Entry[T]) bool {
	return c.now().Sub(e.CreatedAt) > c.cfg.TTL
}

// removeAt kills the slot at pos (caller must hold lock).
func (c *Cache[T]) removeAt(pos int) {
	s := &c.slots[pos]
	if !s.live {
		return
	}
	delete(c.index, s.entry.Key)
	*s = slot[T]{}
	c.live--

	// Dead slots at either end of the occupied run are reclaimed at once.
	for c.used > 0 && !c.slots[c.head].live {
		c.head = (c.head + 1) % len(c.slots)
		c.used--
	}
	for c.used > 0 && !c.slots[(c.head+c.used-1)%len(c.slots)].live {
		c.used--
	}
	if c.used == 0 {
		c.head = 0
	}
	metrics.CacheEntries.WithLabelValues(c.cfg.Name).Set(float64(c.live))
}

// evictOldest drops the entry at head (caller must hold lock).
func (c *Cache[T]) evictOldest() {
	s := c.slots[c.head]
	if s.live {
		delete(c.index, s.entry.Key)
		c.live--
		metrics.CacheEvictions.WithLabelValues(c.cfg.Name).Inc()
		logger.Debug("cache %s: evicted %s", c.cfg.Name, short(s.entry.Key))
	}
	c.slots[c.head] = slot[T]{}
	c.head = (c.head + 1) % len(c.slots)
	c.used--
}

// compact packs live slots to the front of the ring, keeping their
// order (caller must hold lock).
func (c *Cache[T]) compact() {
	packed := make([]slot[T], len(c.slots))
	n := 0
	for i := 0; i < c.used; i++ {
		s := c.slots[(c.head+i)%len(c.slots)]
		if !s.live {
			continue
		}
		packed[n] = s
		c.index[s.entry.Key] = n
		n++
	}
	c.slots = packed
	c.head = 0
	c.used = n
}

func short(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}
