package store

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryBackend keeps entries in process memory with expiration
type MemoryBackend struct {
	cache *gocache.Cache
}

// NewMemoryBackend creates a memory backend. Expired entries are swept
// on the given interval.
func NewMemoryBackend(defaultTTL, cleanupInterval time.Duration) *MemoryBackend {
	return &MemoryBackend{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

func (b *MemoryBackend) Get(key string) ([]byte, bool) {
	if val, found := b.cache.Get(key); found {
		return val.([]byte), true
	}
	return nil, false
}

func (b *MemoryBackend) Set(key string, value []byte, ttl time.Duration) error {
	b.cache.Set(key, value, ttl)
	return nil
}

func (b *MemoryBackend) Delete(key string) error {
	b.cache.Delete(key)
	return nil
}

func (b *MemoryBackend) Clear() error {
	b.cache.Flush()
	return nil
}
