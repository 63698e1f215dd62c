package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketResume   = []byte("resume")
	bucketTrailers = []byte("trailers")
)

// TrailerPosition remembers how far a trailer preview played
type TrailerPosition struct {
	Key      string        `json:"key"`
	Position time.Duration `json:"position"`
}

// DeviceStore implements domain.ResumeStore using BoltDB.
type DeviceStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// NewDeviceStore opens marquee.db under dir. An empty dir keeps
// everything in memory.
func NewDeviceStore(dir string) (*DeviceStore, error) {
	if dir == "" {
		return &DeviceStore{cache: make(map[string][]byte)}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "marquee.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketResume, bucketTrailers} {
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

	return &DeviceStore{db: db, cache: make(map[string][]byte)}, nil
}

func (s *DeviceStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

// get decodes the stored value into dest. Missing keys and values that
// fail to decode both report false.
func (s *DeviceStore) get(bucket []byte, key string, dest interface{}) bool {
	cacheKey := string(bucket) + ":" + key

	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

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

func (s *DeviceStore) set(bucket []byte, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.setRaw(bucket, key, data)
}

func (s *DeviceStore) setRaw(bucket []byte, key string, data []byte) error {
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

func (s *DeviceStore) delete(bucket []byte, key string) {
	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	delete(s.cache, cacheKey)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b != nil {
			b.Delete([]byte(key))
		}
		return nil
	})
}

// === Resume positions ===

// LoadResume returns the last watched episode of a series. Unparseable
// records read as absent.
func (s *DeviceStore) LoadResume(seriesID string) (domain.ResumePosition, bool) {
	var pos domain.ResumePosition
	if !s.get(bucketResume, seriesID, &pos) {
		return domain.ResumePosition{}, false
	}
	if pos.Season < 1 || pos.Episode < 1 {
		return domain.ResumePosition{}, false
	}
	return pos, true
}

// SaveResume records the last watched episode of a series
func (s *DeviceStore) SaveResume(seriesID string, pos domain.ResumePosition) error {
	if pos.UpdatedAt.IsZero() {
		pos.UpdatedAt = time.Now()
	}
	return s.set(bucketResume, seriesID, pos)
}

// ClearResume forgets a series' position
func (s *DeviceStore) ClearResume(seriesID string) {
	s.delete(bucketResume, seriesID)
}

// === Trailer positions ===

// LoadTrailerPosition returns where the trailer preview of an item stopped
func (s *DeviceStore) LoadTrailerPosition(item domain.MediaItem) (TrailerPosition, bool) {
	var tp TrailerPosition
	ok := s.get(bucketTrailers, item.Key(), &tp)
	return tp, ok && tp.Key != ""
}

// SaveTrailerPosition records where the trailer preview of an item stopped.
// An empty key or zero position clears the record.
func (s *DeviceStore) SaveTrailerPosition(item domain.MediaItem, tp TrailerPosition) error {
	if tp.Key == "" || tp.Position <= 0 {
		s.delete(bucketTrailers, item.Key())
		return nil
	}
	return s.set(bucketTrailers, item.Key(), tp)
}
