package vfs

import "sync"

// BlobCache holds the raw bytes of every currently-open blob, keyed by
// object id. It is a plain map with no eviction policy of its own: entries
// are populated on first open and removed on final release, per the blob
// Descriptor Manager's refcount. The buffer is immutable once populated,
// so concurrent reads against the same id never race.
type BlobCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewBlobCache returns an empty cache.
func NewBlobCache() *BlobCache {
	return &BlobCache{data: make(map[string][]byte)}
}

// Get returns the cached bytes for id, if present.
func (c *BlobCache) Get(id string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.data[id]
	return data, ok
}

// Put populates the cache entry for id.
func (c *BlobCache) Put(id string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[id] = data
}

// Delete evicts the cache entry for id, if any.
func (c *BlobCache) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, id)
}

// Len returns the number of currently cached blobs.
func (c *BlobCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}
