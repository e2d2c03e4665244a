// Package store persists extracted facts, sections, and detection
// results between runs. Values are JSON blobs behind a small key-value
// Backend interface; the default backend keeps a memory tier in front
// of a disk tier so repeated analyses of the same document skip the
// disk entirely.
package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a document has no stored value for the
// requested kind.
var ErrNotFound = errors.New("store: not found")

// Backend is a byte-oriented key-value layer with per-entry TTLs
type Backend interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}
