package desktop

import (
	"sync"

	"github.com/golang/groupcache/lru"
)

// DefaultProtocolCacheSize bounds the protocol existence cache.
const DefaultProtocolCacheSize = 128

// ProtocolCache remembers which schemes have a handler. It lives for the
// whole process and holds at most its size in schemes, dropping the least
// recently used. Entries are never refreshed, so handler registrations made
// while the browser runs are picked up on the next start or after eviction.
type ProtocolCache struct {
	mu    sync.Mutex
	known *lru.Cache
}

// NewProtocolCache creates a cache holding up to size schemes.
func NewProtocolCache(size int) *ProtocolCache {
	if size <= 0 {
		size = DefaultProtocolCacheSize
	}
	return &ProtocolCache{known: lru.New(size)}
}

// Get returns the cached answer for scheme.
func (c *ProtocolCache) Get(scheme string) (known, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.known.Get(scheme)
	if !ok {
		return false, false
	}
	return v.(bool), true
}

// Add records whether scheme has a handler.
func (c *ProtocolCache) Add(scheme string, known bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.known.Add(scheme, known)
}

// Len returns the number of cached schemes.
func (c *ProtocolCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.known.Len()
}
