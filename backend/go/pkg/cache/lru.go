package cache

import (
	"container/list"
	"fmt"
	"sync"
	"time"
)

// Config 配置 LRU 缓存。
type Config struct {
	// Capacity 是缓存的最大元素数量，必须大于 0。
	Capacity int
	// TTL 是元素的存活时间。如果为0，则元素永不过期。
	TTL time.Duration
	// Now 是时钟，默认为 time.Now。
	Now func() time.Time
}

type entry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
}

// LRU 是一个支持泛型、线程安全、带可选过期时间的 LRU 缓存。
type LRU[K comparable, V any] struct {
	config Config
	ll     *list.List
	items  map[K]*list.Element
	mu     sync.Mutex
}

// New 使用指定的配置创建一个 LRU 缓存实例。
func New[K comparable, V any](config Config) (*LRU[K, V], error) {
	if config.Capacity <= 0 {
		return nil, fmt.Errorf("cache capacity must be positive, got %d", config.Capacity)
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &LRU[K, V]{
		config: config,
		ll:     list.New(),
		items:  make(map[K]*list.Element),
	}, nil
}

// Get 返回 key 对应的值，并把它标记为最近使用。过期的元素在读取时淘汰。
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		return zero, false
	}
	e := el.Value.(*entry[K, V])
	if c.config.TTL > 0 && !c.config.Now().Before(e.expiresAt) {
		c.remove(el)
		return zero, false
	}
	c.ll.MoveToFront(el)
	return e.value, true
}

// Put 添加或更新一个键值对，必要时淘汰最久未使用的元素。
func (c *LRU[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if c.config.TTL > 0 {
		expiresAt = c.config.Now().Add(c.config.TTL)
	}

	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry[K, V])
		e.value = value
		e.expiresAt = expiresAt
		c.ll.MoveToFront(el)
		return
	}

	c.items[key] = c.ll.PushFront(&entry[K, V]{key: key, value: value, expiresAt: expiresAt})
	for c.ll.Len() > c.config.Capacity {
		c.remove(c.ll.Back())
	}
}

// Len 返回当前缓存中的条目数量（含尚未被淘汰的过期条目）。
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// remove 假设已持有锁。
func (c *LRU[K, V]) remove(el *list.Element) {
	c.ll.Remove(el)
	delete(c.items, el.Value.(*entry[K, V]).key)
}
