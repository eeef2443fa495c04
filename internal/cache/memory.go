package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func (e memoryEntry) expired() bool {
	if e.expiresAt.IsZero() {
		return false
	}
	return time.Now().After(e.expiresAt)
}

// Memory is an in-memory Store used for development and tests. A janitor
// goroutine sweeps expired entries so long-lived processes do not grow
// unbounded.
type Memory struct {
	mu    sync.Mutex
	items map[string]memoryEntry
	done  chan struct{}
}

// NewMemory creates an in-memory cache. cleanupInterval <= 0 disables the
// background sweep; expired entries are then dropped lazily on Get.
func NewMemory(cleanupInterval time.Duration) *Memory {
	m := &Memory{
		items: make(map[string]memoryEntry),
		done:  make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go m.janitor(cleanupInterval)
	}
	return m
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.items[key]
	if !ok {
		return "", ErrNotFound
	}
	if entry.expired() {
		delete(m.items, key)
		return "", ErrNotFound
	}
	return entry.value, nil
}

// Set implements Store. A non-positive ttl stores the value without
// expiration.
func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	m.mu.Lock()
	m.items[key] = entry
	m.mu.Unlock()
	return nil
}

// Delete implements Store.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

// Close stops the janitor goroutine.
func (m *Memory) Close() {
	select {
	case <-m.done:
	default:
		close(m.done)
	}
}

func (m *Memory) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.mu.Lock()
			for key, entry := range m.items {
				if entry.expired() {
					delete(m.items, key)
				}
			}
			m.mu.Unlock()
		}
	}
}
