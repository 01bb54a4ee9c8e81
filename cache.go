package diffview

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache is the pluggable chunk store behind the renderer, with
// get-or-compute semantics. Chunk computation is atomic per key: either the
// full chunk list is stored under the key, or nothing is, so partial chunk
// sets are never served. Implementations must be safe for concurrent use;
// duplicate concurrent computations of one key are tolerable, but
// implementations should prefer computing once and fanning the result out.
type Cache interface {
	GetOrCompute(key string, compute func() ([]Chunk, error)) ([]Chunk, error)
}

// MemoryCache is an in-process Cache. Concurrent callers of the same key
// share one computation through singleflight; errors are returned to all
// waiters and never cached.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]Chunk
	group   singleflight.Group
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]Chunk)}
}

func (c *MemoryCache) GetOrCompute(key string, compute func() ([]Chunk, error)) ([]Chunk, error) {
	c.mu.RLock()
	chunks, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return chunks, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// A previous flight may have stored the value while we queued.
		c.mu.RLock()
		chunks, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return chunks, nil
		}

		chunks, err := compute()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = chunks
		c.mu.Unlock()
		return chunks, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Chunk), nil
}

// Purge drops one cached key.
func (c *MemoryCache) Purge(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len reports how many chunk lists are cached.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
