package store

import "time"

// TieredBackend reads through a fast preferred tier into a slower
// fallback tier, promoting fallback hits into the preferred tier.
// Writes go to both; a preferred-tier write failure does not block the
// fallback write, so data outlives a degraded memory tier.
type TieredBackend struct {
	preferred Backend
	fallback  Backend
}

// NewTieredBackend composes two backends
func NewTieredBackend(preferred, fallback Backend) *TieredBackend {
	return &TieredBackend{preferred: preferred, fallback: fallback}
}

func (b *TieredBackend) Get(key string) ([]byte, bool) {
	if val, found := b.preferred.Get(key); found {
		return val, true
	}

	if val, found := b.fallback.Get(key); found {
		// Promote so the next read stays in the fast tier
		_ = b.preferred.Set(key, val, 0)
		return val, true
	}

	return nil, false
}

func (b *TieredBackend) Set(key string, value []byte, ttl time.Duration) error {
	perr := b.preferred.Set(key, value, ttl)
	if err := b.fallback.Set(key, value, ttl); err != nil {
		return err
	}
	return perr
}

func (b *TieredBackend) Delete(key string) error {
	perr := b.preferred.Delete(key)
	if err := b.fallback.Delete(key); err != nil {
		return err
	}
	return perr
}

func (b *TieredBackend) Clear() error {
	perr := b.preferred.Clear()
	if err := b.fallback.Clear(); err != nil {
		return err
	}
	return perr
}
