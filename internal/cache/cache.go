package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

var (
	// ErrItemTooLarge is returned when an item exceeds the cache capacity.
	ErrItemTooLarge = errors.New("item too large for cache")

	// ErrClosed is returned when writing to a closed cache.
	ErrClosed = errors.New("cache is closed")
)

// Stats holds counters for one cache tier.
type Stats struct {
	Capacity  int64
	Size      int64
	Items     int64
	Hits      int64
	Misses    int64
	Evictions int64
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (s Stats) HitRate() float64 {
	if s.Hits+s.Misses == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Hits+s.Misses)
}

// Cache is implemented by both tiers.
type Cache interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte) error
	Delete(key string) error
	Clear() error
	Contains(key string) bool
	Size() int64
	Stats() Stats
}

// Key derives the cache key of an utterance.
func Key(engine, voiceID, text string) string {
	h := sha256.New()
	for _, part := range []string{engine, voiceID, text} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Config configures a Manager.
type Config struct {
	MemoryCapacity   int64  // bytes
	DiskCapacity     int64  // bytes
	Dir              string // directory of the disk cache
	CompressionLevel int    // zstd level, 0 disables compression
	TTL              time.Duration
}

// DefaultConfig returns a 16MB memory tier in front of a 100MB disk tier
// whose entries expire after a week.
func DefaultConfig(dir string) Config {
	return Config{
		MemoryCapacity:   16 << 20,
		DiskCapacity:     100 << 20,
		Dir:              dir,
		CompressionLevel: 3,
		TTL:              7 * 24 * time.Hour,
	}
}
