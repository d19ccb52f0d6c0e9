package cache

import (
	"context"
	"path"
	"sync"
	"time"

	"parking-lot-manager/internal/pkg/clock"
	"parking-lot-manager/internal/usecase/shared"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryIndex is the CacheIndex used when no Redis address is configured.
type MemoryIndex struct {
	mu      sync.RWMutex
	clock   clock.Clock
	entries map[string]entry
}

var _ shared.CacheIndex = (*MemoryIndex)(nil)

func NewMemoryIndex(clk clock.Clock) *MemoryIndex {
	return &MemoryIndex{clock: clk, entries: make(map[string]entry)}
}

func (m *MemoryIndex) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if now := m.clock.Now(); e.expired(now) {
		m.mu.Lock()
		// A Set may have replaced the entry since the read lock was released.
		if cur, ok := m.entries[key]; ok && cur.expired(now) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *MemoryIndex) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = m.clock.Now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

// Invalidate uses path.Match, which treats ':' as an ordinary character like Redis globbing does.
func (m *MemoryIndex) Invalidate(_ context.Context, pattern string) (int, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for key := range m.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.entries, key)
			n++
		}
	}
	return n, nil
}

func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
