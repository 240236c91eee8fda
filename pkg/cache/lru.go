package cache

import (
	"fmt"
	"sync"
	"time"

	"umkmorder/pkg/logger"
	"umkmorder/pkg/metric"
)

// Eviction reasons reported to metrics.
const (
	ReasonCapacity = "capacity"
	ReasonExpired  = "expired"
	ReasonPurged   = "purged"
)

var _ Cache[string, any] = (*LRUCache[string, any])(nil)

type node[K comparable, V any] struct {
	key        K
	value      V
	expires    time.Time
	prev, next *node[K, V]
}

func (n *node[K, V]) expired(now time.Time) bool {
	return !n.expires.IsZero() && now.After(n.expires)
}

type eviction[K comparable, V any] struct {
	key   K
	value V
}

// LRUCache evicts the least recently used entry once capacity is reached.
// The eviction callback runs outside the lock, so it may call back into the
// cache.
type LRUCache[K comparable, V any] struct {
	mu       sync.Mutex
	items    map[K]*node[K, V]
	root     node[K, V] // root.next is most recent, root.prev least recent
	capacity int

	name      string
	now       func() time.Time
	log       logger.Logger
	metrics   metric.Cache
	onEvicted func(key K, value V)
	stop      chan struct{}
}

// NewLRUCache creates a cache whose metrics are labelled with name.
func NewLRUCache[K comparable, V any](
	name string,
	capacity int,
	log logger.Logger,
	metrics metric.Cache,
	opts ...Option,
) (*LRUCache[K, V], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("cache.NewLRUCache: capacity must be positive, got %d", capacity)
	}

	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	c := &LRUCache[K, V]{
		items:    make(map[K]*node[K, V], capacity),
		capacity: capacity,
		name:     name,
		now:      o.now,
		log:      log,
		metrics:  metrics,
	}
	c.root.next = &c.root
	c.root.prev = &c.root
	return c, nil
}

func (c *LRUCache[K, V]) Get(key K) (V, bool) {
	var zero V

	c.mu.Lock()
	n, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		c.metrics.Miss(c.name)
		return zero, false
	}

	if n.expired(c.now()) {
		evicted := c.evict(n, ReasonExpired)
		c.mu.Unlock()
		c.metrics.Miss(c.name)
		c.notify(evicted)
		return zero, false
	}

	c.moveToFront(n)
	value := n.value
	c.mu.Unlock()

	c.metrics.Hit(c.name)
	return value, true
}

func (c *LRUCache[K, V]) Put(key K, value V, ttl time.Duration) {
	var expires time.Time
	if ttl > 0 {
		expires = c.now().Add(ttl)
	}

	var evicted []eviction[K, V]

	c.mu.Lock()
	if n, ok := c.items[key]; ok {
		n.value = value
		n.expires = expires
		c.moveToFront(n)
		c.mu.Unlock()
		return
	}

	if len(c.items) >= c.capacity {
		evicted = c.evict(c.root.prev, ReasonCapacity)
	}

	n := &node[K, V]{key: key, value: value, expires: expires}
	c.pushFront(n)
	c.items[key] = n
	size := len(c.items)
	c.mu.Unlock()

	c.metrics.Size(c.name, size)
	c.notify(evicted)
}

// Remove drops key and reports whether it was present. The eviction callback
// is not invoked.
func (c *LRUCache[K, V]) Remove(key K) bool {
	c.mu.Lock()
	n, ok := c.items[key]
	if ok {
		c.unlink(n)
		delete(c.items, key)
	}
	size := len(c.items)
	c.mu.Unlock()

	if ok {
		c.metrics.Size(c.name, size)
	}
	return ok
}

// Has reports whether key holds an unexpired entry without touching recency.
func (c *LRUCache[K, V]) Has(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.items[key]
	return ok && !n.expired(c.now())
}

func (c *LRUCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *LRUCache[K, V]) Capacity() int {
	return c.capacity
}

// Purge empties the cache, invoking the eviction callback for every entry.
func (c *LRUCache[K, V]) Purge() {
	c.mu.Lock()
	evicted := make([]eviction[K, V], 0, len(c.items))
	for n := c.root.next; n != &c.root; n = n.next {
		evicted = append(evicted, eviction[K, V]{key: n.key, value: n.value})
	}
	clear(c.items)
	c.root.next = &c.root
	c.root.prev = &c.root
	c.mu.Unlock()

	for range evicted {
		c.metrics.Eviction(c.name, ReasonPurged)
	}
	c.metrics.Size(c.name, 0)
	c.notify(evicted)
}

// StartCleanup removes expired entries every interval until StopCleanup.
// Calling it again restarts the loop with the new interval.
func (c *LRUCache[K, V]) StartCleanup(interval time.Duration) {
	if interval <= 0 {
		return
	}

	stop := make(chan struct{})

	c.mu.Lock()
	if c.stop != nil {
		close(c.stop)
	}
	c.stop = stop
	c.mu.Unlock()

	go c.runCleanup(interval, stop)
}

func (c *LRUCache[K, V]) StopCleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

func (c *LRUCache[K, V]) SetOnEvicted(onEvicted func(key K, value V)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvicted = onEvicted
}

func (c *LRUCache[K, V]) runCleanup(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-stop:
			return
		}
	}
}

func (c *LRUCache[K, V]) removeExpired() {
	now := c.now()

	c.mu.Lock()
	var evicted []eviction[K, V]
	for n := c.root.prev; n != &c.root; {
		prev := n.prev
		if n.expired(now) {
			evicted = append(evicted, c.evict(n, ReasonExpired)...)
		}
		n = prev
	}
	remaining := len(c.items)
	c.mu.Unlock()

	if len(evicted) > 0 {
		c.log.Debugw("cache cleanup completed",
			"cache", c.name,
			"removed", len(evicted),
			"remaining", remaining,
		)
	}
	c.notify(evicted)
}

// evict unlinks n and records metrics. Callers hold mu and pass the result
// to notify after unlocking.
func (c *LRUCache[K, V]) evict(n *node[K, V], reason string) []eviction[K, V] {
	c.unlink(n)
	delete(c.items, n.key)
	c.metrics.Eviction(c.name, reason)
	c.metrics.Size(c.name, len(c.items))
	return []eviction[K, V]{{key: n.key, value: n.value}}
}

func (c *LRUCache[K, V]) notify(evicted []eviction[K, V]) {
	if len(evicted) == 0 {
		return
	}

	c.mu.Lock()
	onEvicted := c.onEvicted
	c.mu.Unlock()

	if onEvicted == nil {
		return
	}
	for _, e := range evicted {
		onEvicted(e.key, e.value)
	}
}

func (c *LRUCache[K, V]) pushFront(n *node[K, V]) {
	n.prev = &c.root
	n.next = c.root.next
	c.root.next.prev = n
	c.root.next = n
}

func (c *LRUCache[K, V]) unlink(n *node[K, V]) {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev, n.next = nil, nil
}

func (c *LRUCache[K, V]) moveToFront(n *node[K, V]) {
	if c.root.next == n {
		return
	}
	c.unlink(n)
	c.pushFront(n)
}
