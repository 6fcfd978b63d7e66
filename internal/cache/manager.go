package cache

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Manager looks entries up in memory first, then on disk, promoting disk
// hits into memory.
type Manager struct {
	memory *MemoryCache
	disk   *DiskCache
	ttl    time.Duration

	mu         sync.Mutex
	promotions int64
}

// ManagerStats aggregates both tiers.
type ManagerStats struct {
	Memory     Stats
	Disk       Stats
	Promotions int64
}

// NewManager opens the disk tier in cfg.Dir and prunes expired entries.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Dir == "" {
		return nil, errors.New("cache directory is required")
	}

	disk, err := NewDiskCache(cfg.Dir, cfg.DiskCapacity, cfg.CompressionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create disk cache: %w", err)
	}

	m := &Manager{
		memory: NewMemoryCache(cfg.MemoryCapacity),
		disk:   disk,
		ttl:    cfg.TTL,
	}
	if cfg.TTL > 0 {
		if n := disk.RemoveOlderThan(time.Now().Add(-cfg.TTL)); n > 0 {
			log.Debug("pruned expired audio", "count", n)
		}
	}
	return m, nil
}

// Get returns the cached value for key.
func (m *Manager) Get(key string) ([]byte, bool) {
	if data, ok := m.memory.Get(key); ok {
		return data, true
	}

	data, ok := m.disk.Get(key)
	if !ok {
		return nil, false
	}
	if err := m.memory.Put(key, data); err == nil {
		m.mu.Lock()
		m.promotions++
		m.mu.Unlock()
	}
	return data, true
}

// Put stores value in both tiers. A value too large for the memory tier
// is still written to disk.
func (m *Manager) Put(key string, value []byte) error {
	if err := m.memory.Put(key, value); err != nil && !errors.Is(err, ErrItemTooLarge) {
		return fmt.Errorf("memory cache: %w", err)
	}
	if err := m.disk.Put(key, value); err != nil {
		return fmt.Errorf("disk cache: %w", err)
	}
	return nil
}

// Delete removes key from both tiers.
func (m *Manager) Delete(key string) error {
	_ = m.memory.Delete(key)
	return m.disk.Delete(key)
}

// Clear empties both tiers.
func (m *Manager) Clear() error {
	_ = m.memory.Clear()
	return m.disk.Clear()
}

// Contains reports whether either tier holds key.
func (m *Manager) Contains(key string) bool {
	return m.memory.Contains(key) || m.disk.Contains(key)
}

// Size returns the bytes held on disk.
func (m *Manager) Size() int64 {
	return m.disk.Size()
}

// Stats merges both tiers: a lookup misses only when the disk misses too.
func (m *Manager) Stats() Stats {
	mem, disk := m.memory.Stats(), m.disk.Stats()
	return Stats{
		Capacity:  disk.Capacity,
		Size:      disk.Size,
		Items:     disk.Items,
		Hits:      mem.Hits + disk.Hits,
		Misses:    disk.Misses,
		Evictions: disk.Evictions,
	}
}

// Detailed returns counters for both tiers.
func (m *Manager) Detailed() ManagerStats {
	m.mu.Lock()
	promotions := m.promotions
	m.mu.Unlock()
	return ManagerStats{
		Memory:     m.memory.Stats(),
		Disk:       m.disk.Stats(),
		Promotions: promotions,
	}
}

// Close persists the disk index.
func (m *Manager) Close() error {
	return m.disk.Close()
}

var (
	_ Cache = (*MemoryCache)(nil)
	_ Cache = (*DiskCache)(nil)
	_ Cache = (*Manager)(nil)
)
