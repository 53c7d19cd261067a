package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

type entry struct {
	data      []byte
	expiresAt time.Time
}

// Memory is a process-local Store. Values are JSON-encoded like the Redis
// driver so both behave the same for callers.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: map[string]entry{}, now: time.Now}
}

func (m *Memory) Driver() string { return "memory" }

func (m *Memory) Get(_ context.Context, key string, dest interface{}) bool {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || (!e.expiresAt.IsZero() && m.now().After(e.expiresAt)) {
		metrics.CacheMisses.WithLabelValues("memory").Inc()
		return false
	}
	if err := json.Unmarshal(e.data, dest); err != nil {
		metrics.CacheMisses.WithLabelValues("memory").Inc()
		return false
	}

	metrics.CacheHits.WithLabelValues("memory").Inc()
	return true
}

// Set stores value. A ttl of zero never expires.
func (m *Memory) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	e := entry{data: data}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

func (m *Memory) Forget(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	m.mu.Unlock()
	return nil
}
