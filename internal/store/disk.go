package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DiskBackend persists entries as files under a directory. It survives
// process restarts, which the memory tier does not.
type DiskBackend struct {
	dir string
	ttl time.Duration
}

// NewDiskBackend creates a disk backend rooted at dir
func NewDiskBackend(dir string, ttl time.Duration) *DiskBackend {
	return &DiskBackend{
		dir: dir,
		ttl: ttl,
	}
}

type diskEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (b *DiskBackend) Get(key string) ([]byte, bool) {
	path := b.path(key)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry diskEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	if time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false
	}

	return entry.Data, true
}

func (b *DiskBackend) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = b.ttl
	}

	entry := diskEntry{
		Data:      value,
		ExpiresAt: time.Now().Add(ttl),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	if err := os.MkdirAll(b.dir, 0755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	if err := os.WriteFile(b.path(key), data, 0644); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}

	return nil
}

func (b *DiskBackend) Delete(key string) error {
	err := os.Remove(b.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (b *DiskBackend) Clear() error {
	return os.RemoveAll(b.dir)
}

// path hashes the key so arbitrary document ids make safe file names
func (b *DiskBackend) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(b.dir, hex.EncodeToString(sum[:])+".json")
}
