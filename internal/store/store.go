package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/paperdeck/paperdeck/internal/domain"
)

// Bucket names
var (
	bucketAssets    = []byte("assets")
	bucketSelection = []byte("selection")
)

// AssetStore implements domain.ListingCache using BoltDB. The cache keeps
// the last listing returned by the shelf server so the shelf renders
// instantly on startup and stays browsable while offline.
type AssetStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// NewAssetStore opens (or creates) the cache for one server. An empty
// baseCacheDir yields a memory-only store with no persistence.
func NewAssetStore(baseCacheDir, serverURL string) (*AssetStore, error) {
	if baseCacheDir == "" {
		return &AssetStore{cache: make(map[string][]byte)}, nil
	}

	dir := baseCacheDir
	if serverURL != "" {
		dir = filepath.Join(baseCacheDir, hashServerURL(serverURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "paperdeck.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketAssets, bucketSelection} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &AssetStore{db: db, cache: make(map[string][]byte)}, nil
}

func hashServerURL(serverURL string) string {
	normalized := strings.TrimRight(strings.ToLower(serverURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *AssetStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *AssetStore) get(bucket []byte, key string, dest interface{}) bool {
	cacheKey := string(bucket) + ":" + key

	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	// Read from BoltDB
	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *AssetStore) set(bucket []byte, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		return b.Put([]byte(key), data)
	})
}

// === Listing ===

// GetAssets returns the cached asset collection
func (s *AssetStore) GetAssets() ([]domain.Asset, bool) {
	var assets []domain.Asset
	ok := s.get(bucketAssets, "list", &assets)
	return assets, ok
}

// SaveAssets replaces the cached collection wholesale, including with an
// empty list: stale entries must never survive a refresh.
func (s *AssetStore) SaveAssets(assets []domain.Asset) error {
	return s.set(bucketAssets, "list", assets)
}

// === Current selection ===

// GetCurrent returns the path of the last server-acknowledged selection
func (s *AssetStore) GetCurrent() (string, bool) {
	var path string
	ok := s.get(bucketSelection, "current", &path)
	return path, ok && path != ""
}

// SaveCurrent records the path of an acknowledged selection
func (s *AssetStore) SaveCurrent(path string) error {
	return s.set(bucketSelection, "current", path)
}

