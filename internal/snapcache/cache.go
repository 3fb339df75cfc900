// Package snapcache is a bounded memo keyed by entity, day keys and content
// signature. Entries are evicted oldest-first once the cap is exceeded, and an
// optional TTL marks entries stale for fields that must be revalidated often.
package snapcache

import (
	"container/list"
	"strings"
	"sync"
	"time"
)

// Key identifies a cached computation. Salt carries parameters that change
// the shape of the result, such as display limits.
type Key struct {
	EntityID  int
	DayKeys   string
	Signature string
	Salt      string
}

func NewKey(entityID int, signature, salt string, dayKeys ...string) Key {
	return Key{EntityID: entityID, DayKeys: strings.Join(dayKeys, ","), Signature: signature, Salt: salt}
}

type Freshness int

const (
	Miss Freshness = iota
	Fresh
	Stale
)

// Observer receives cache events; pkg/metrics.DashboardMetrics implements it.
type Observer interface {
	CacheHit(cache string)
	CacheMiss(cache string)
	CacheStale(cache string)
	CacheEvict(cache string)
}

type Option func(*settings)

type settings struct {
	ttl      time.Duration
	now      func() time.Time
	observer Observer
}

// WithTTL makes entries older than ttl report Stale.
func WithTTL(ttl time.Duration) Option {
	return func(s *settings) { s.ttl = ttl }
}

func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

func WithObserver(o Observer) Option {
	return func(s *settings) { s.observer = o }
}

type entry[V any] struct {
	key      Key
	value    V
	storedAt time.Time
}

type Cache[V any] struct {
	name     string
	capacity int
	settings

	mu    sync.Mutex
	items map[Key]*list.Element
	order *list.List
}

func New[V any](name string, capacity int, opts ...Option) *Cache[V] {
	s := settings{now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	if capacity <= 0 {
		capacity = 1
	}
	return &Cache[V]{
		name:     name,
		capacity: capacity,
		settings: s,
		items:    map[Key]*list.Element{},
		order:    list.New(),
	}
}

func (c *Cache[V]) Name() string {
	return c.name
}

// Get returns the entry regardless of age.
func (c *Cache[V]) Get(key Key) (V, bool) {
	value, freshness := c.lookup(key, false)
	return value, freshness != Miss
}

// GetFresh reports whether the entry is fresh, stale (older than the TTL) or
// missing. Stale values are returned so callers can keep serving them.
func (c *Cache[V]) GetFresh(key Key) (V, Freshness) {
	return c.lookup(key, true)
}

func (c *Cache[V]) lookup(key Key, checkTTL bool) (V, Freshness) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.notify(Observer.CacheMiss)
		var zero V
		return zero, Miss
	}
	e := elem.Value.(*entry[V])
	if checkTTL && c.ttl > 0 && c.now().Sub(e.storedAt) > c.ttl {
		c.notify(Observer.CacheStale)
		return e.value, Stale
	}
	c.notify(Observer.CacheHit)
	return e.value, Fresh
}

// Put stores value and moves the key to the newest position.
func (c *Cache[V]) Put(key Key, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.order.Remove(elem)
	}
	c.items[key] = c.order.PushBack(&entry[V]{key: key, value: value, storedAt: c.now()})
	for c.order.Len() > c.capacity {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*entry[V]).key)
		c.notify(Observer.CacheEvict)
	}
}

// Forget drops every entry of an entity.
func (c *Cache[V]) Forget(entityID int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, elem := range c.items {
		if key.EntityID != entityID {
			continue
		}
		c.order.Remove(elem)
		delete(c.items, key)
		removed++
	}
	return removed
}

// ForgetStale drops the entries of entityID whose signature differs from
// signature, keeping the current one.
func (c *Cache[V]) ForgetStale(entityID int, signature string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, elem := range c.items {
		if key.EntityID != entityID || key.Signature == signature {
			continue
		}
		c.order.Remove(elem)
		delete(c.items, key)
		removed++
	}
	return removed
}

func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache[V]) notify(event func(Observer, string)) {
	if c.observer == nil {
		return
	}
	event(c.observer, c.name)
}
