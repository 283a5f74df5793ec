package mustache

import (
	"container/list"
	"sync"
	"time"
)

// CacheConfig contains configuration options for the parse cache.
type CacheConfig struct {
	// MaxSize is the maximum number of templates to cache. 0 disables caching.
	MaxSize int
	// TTL is the time-to-live for cached templates. 0 means no expiration.
	TTL time.Duration
}

// Cache memoizes parsed templates by their source text. Parsing is pure, so
// a cached entry is indistinguishable from a fresh parse.
type Cache struct {
	mu     sync.Mutex
	items  map[string]*cacheEntry
	lru    *list.List
	config CacheConfig
}

type cacheEntry struct {
	key      string
	template *Template
	expiry   time.Time
	element  *list.Element
}

// NewCache creates a cache with the given configuration.
func NewCache(config CacheConfig) *Cache {
	return &Cache{
		items:  make(map[string]*cacheEntry),
		lru:    list.New(),
		config: config,
	}
}

// Parse returns the cached template for text, parsing it on a miss.
func (c *Cache) Parse(text string) *Template {
	if c.config.MaxSize <= 0 {
		return Parse(text)
	}
	if tmpl, ok := c.Get(text); ok {
		return tmpl
	}
	tmpl := Parse(text)
	c.Set(text, tmpl)
	return tmpl
}

// Get retrieves a template without parsing.
func (c *Cache) Get(key string) (*Template, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.items[key]
	if !exists {
		return nil, false
	}
	if c.config.TTL > 0 && time.Now().After(entry.expiry) {
		c.removeLocked(entry)
		return nil, false
	}
	c.lru.MoveToFront(entry.element)
	return entry.template, true
}

// Set adds a template, evicting the least recently used entry when full.
func (c *Cache) Set(key string, tmpl *Template) {
	if c.config.MaxSize <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var expiry time.Time
	if c.config.TTL > 0 {
		expiry = time.Now().Add(c.config.TTL)
	}

	if existing, exists := c.items[key]; exists {
		existing.template = tmpl
		existing.expiry = expiry
		c.lru.MoveToFront(existing.element)
		return
	}

	if c.lru.Len() >= c.config.MaxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.removeLocked(oldest.Value.(*cacheEntry))
		}
	}

	entry := &cacheEntry{key: key, template: tmpl, expiry: expiry}
	entry.element = c.lru.PushFront(entry)
	c.items[key] = entry
}

func (c *Cache) removeLocked(entry *cacheEntry) {
	delete(c.items, entry.key)
	c.lru.Remove(entry.element)
}

// Remove drops one template from the cache.
func (c *Cache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, exists := c.items[key]; exists {
		c.removeLocked(entry)
	}
}

// Clear removes all templates.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*cacheEntry)
	c.lru = list.New()
}

// Size returns the number of cached templates.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
