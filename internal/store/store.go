package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mkratov/concordia/internal/model"
)

const keyPrefix = "concordia:v1"

// Store is the typed persistence layer over a Backend. Each document
// owns three independent entries: its facts, its sections, and its
// latest detection result.
type Store struct {
	backend Backend
	ttl     time.Duration
}

// New creates a store over the given backend. A zero ttl means entries
// use the backend's default expiry.
func New(backend Backend, ttl time.Duration) *Store {
	return &Store{backend: backend, ttl: ttl}
}

// Open builds the default tiered store from configuration: go-cache in
// memory backed by files under cfg.Dir (or the user cache directory
// when unset).
func Open(cfg model.StoreConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("resolve store dir: %w", err)
		}
		dir = filepath.Join(base, "concordia")
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}

	backend := NewTieredBackend(
		NewMemoryBackend(ttl, 10*time.Minute),
		NewDiskBackend(dir, ttl),
	)
	return New(backend, ttl), nil
}

// SaveFacts stores the extracted facts for a document
func (s *Store) SaveFacts(documentID string, facts []model.Fact) error {
	return s.save(factsKey(documentID), facts)
}

// GetFacts loads the facts for a document. Returns ErrNotFound when
// the document was never analyzed or its entry expired.
func (s *Store) GetFacts(documentID string) ([]model.Fact, error) {
	var facts []model.Fact
	if err := s.load(factsKey(documentID), &facts); err != nil {
		return nil, err
	}
	return facts, nil
}

// SaveSections stores the document's section list
func (s *Store) SaveSections(documentID string, sections []model.Section) error {
	return s.save(sectionsKey(documentID), sections)
}

// GetSections loads the document's section list
func (s *Store) GetSections(documentID string) ([]model.Section, error) {
	var sections []model.Section
	if err := s.load(sectionsKey(documentID), &sections); err != nil {
		return nil, err
	}
	return sections, nil
}

// SaveResult stores a detection result, replacing any previous run
func (s *Store) SaveResult(documentID string, result *model.DetectionResult) error {
	return s.save(resultKey(documentID), result)
}

// GetResult loads the latest detection result for a document
func (s *Store) GetResult(documentID string) (*model.DetectionResult, error) {
	var result model.DetectionResult
	if err := s.load(resultKey(documentID), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteDocument removes everything stored for a document
func (s *Store) DeleteDocument(documentID string) error {
	var firstErr error
	for _, key := range []string{factsKey(documentID), sectionsKey(documentID), resultKey(documentID)} {
		if err := s.backend.Delete(key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Clear removes all stored documents
func (s *Store) Clear() error {
	return s.backend.Clear()
}

func (s *Store) save(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.backend.Set(key, data, s.ttl); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}

func (s *Store) load(key string, dst any) error {
	data, found := s.backend.Get(key)
	if !found {
		return ErrNotFound
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func factsKey(documentID string) string    { return keyPrefix + ":facts:" + documentID }
func sectionsKey(documentID string) string { return keyPrefix + ":sections:" + documentID }
func resultKey(documentID string) string   { return keyPrefix + ":result:" + documentID }
