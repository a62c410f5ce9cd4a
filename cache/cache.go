package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/poiesic/answerit/core"
)

// Defaults chosen for a single-process QA service: large enough to absorb
// repeated popular queries, small enough that stale answers age out quickly.
const (
	DefaultMaxEntries = 256
	DefaultTTL        = 300 * time.Second
)

// Stats is a point-in-time snapshot of cache occupancy.
type Stats struct {
	Size    int
	MaxSize int
}

// QueryCache is an LRU cache with per-entry TTL for fully assembled
// responses. Keys are normalized with core.NormalizeQuery so trivial
// variants of the same question share an entry. Expired entries are
// collected lazily on access; a single mutex guards all state, which is
// plenty at the request rates a cache like this sees.
type QueryCache struct {
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	entries    map[string]*list.Element
	order      *list.List // front = most recently used

	// now is the clock; tests replace it to step time deterministically.
	now func() time.Time
}

type cacheEntry struct {
	key      string
	response *core.Response
	storedAt time.Time
}

// Option configures a QueryCache.
type Option func(*QueryCache)

// WithMaxEntries overrides the entry capacity. Values below 1 are ignored.
func WithMaxEntries(n int) Option {
	return func(c *QueryCache) {
		if n >= 1 {
			c.maxEntries = n
		}
	}
}

// WithTTL overrides the entry lifetime. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(c *QueryCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(c *QueryCache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewQueryCache creates a cache with the default capacity and TTL unless
// overridden by options.
func NewQueryCache(opts ...Option) *QueryCache {
	c := &QueryCache{
		maxEntries: DefaultMaxEntries,
		ttl:        DefaultTTL,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached response for the query, or nil on a miss. A hit
// refreshes the entry's recency but not its TTL; an expired entry is removed
// and reported as a miss.
func (c *QueryCache) Get(query string) *core.Response {
	key := core.NormalizeQuery(query)

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return nil
	}

	entry := elem.Value.(*cacheEntry)
	if c.now().Sub(entry.storedAt) > c.ttl {
		c.removeLocked(elem)
		return nil
	}

	c.order.MoveToFront(elem)
	return entry.response
}

// Set stores a response under the normalized query key. Storing an existing
// key overwrites the value, resets its TTL, and refreshes recency. When the
// cache is full the least recently used entry is evicted.
func (c *QueryCache) Set(query string, response *core.Response) {
	key := core.NormalizeQuery(query)

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*cacheEntry)
		entry.response = response
		entry.storedAt = c.now()
		c.order.MoveToFront(elem)
		return
	}

	elem := c.order.PushFront(&cacheEntry{
		key:      key,
		response: response,
		storedAt: c.now(),
	})
	c.entries[key] = elem

	if c.order.Len() > c.maxEntries {
		if oldest := c.order.Back(); oldest != nil {
			c.removeLocked(oldest)
		}
	}
}

// Stats returns the current occupancy. Expired-but-uncollected entries
// still count toward Size; they disappear on next access.
func (c *QueryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Size:    c.order.Len(),
		MaxSize: c.maxEntries,
	}
}

// Clear drops every entry.
func (c *QueryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.order.Init()
}

func (c *QueryCache) removeLocked(elem *list.Element) {
	entry := elem.Value.(*cacheEntry)
	delete(c.entries, entry.key)
	c.order.Remove(elem)
}
