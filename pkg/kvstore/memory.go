package kvstore

import (
	"sync"

	"github.com/cognizone/skoslens/errors"
)

// Memory is a thread-safe in-memory store. Its contents live only for the
// lifetime of the process, which makes it the required scope for anything
// that must never reach durable storage (session credentials).
type Memory struct {
	mu      sync.RWMutex
	items   map[string]string
	stats   *Statistics   // ALWAYS initialized
	metrics *storeMetrics // Optional, if metrics enabled
}

// NewMemory creates a new session-scoped in-memory store.
// Returns an error if metrics registration fails when requested.
func NewMemory(options ...Option) (*Memory, error) {
	opts := applyOptions(options...)

	// Stats are ALWAYS initialized - observability is not optional
	stats := NewStatistics()

	var metrics *storeMetrics
	if opts.metricsReg != nil && opts.metricsPrefix != "" {
		var err error
		metrics, err = newStoreMetrics(opts.metricsReg, opts.metricsPrefix)
		if err != nil {
			return nil, errors.Wrap(err, "kvstore", "NewMemory", "metrics registration")
		}
	}

	return &Memory{
		items:   make(map[string]string),
		stats:   stats,
		metrics: metrics,
	}, nil
}

// Get retrieves a value by key.
func (m *Memory) Get(key string) (string, bool) {
	m.mu.RLock()
	value, exists := m.items[key]
	m.mu.RUnlock()

	if exists {
		m.stats.Hit()
		if m.metrics != nil {
			m.metrics.recordHit()
		}
	} else {
		m.stats.Miss()
		if m.metrics != nil {
			m.metrics.recordMiss()
		}
	}

	return value, exists
}

// Set stores a value with the given key.
func (m *Memory) Set(key, value string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	m.mu.Lock()
	_, exists := m.items[key]
	m.items[key] = value
	size := len(m.items)
	m.mu.Unlock()

	m.stats.Set()
	m.stats.UpdateSize(int64(size))
	if m.metrics != nil {
		m.metrics.recordSet()
		m.metrics.updateSize(size)
	}

	return !exists, nil // true if a new entry was created
}

// Delete removes an entry by key.
func (m *Memory) Delete(key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	m.mu.Lock()
	_, exists := m.items[key]
	if exists {
		delete(m.items, key)
	}
	size := len(m.items)
	m.mu.Unlock()

	if exists {
		m.stats.Delete()
		m.stats.UpdateSize(int64(size))
		if m.metrics != nil {
			m.metrics.recordDelete()
			m.metrics.updateSize(size)
		}
	}

	return exists, nil
}

// Clear removes all entries from the store.
func (m *Memory) Clear() error {
	m.mu.Lock()
	m.items = make(map[string]string)
	m.mu.Unlock()

	m.stats.UpdateSize(0)
	if m.metrics != nil {
		m.metrics.updateSize(0)
	}

	return nil
}

// Size returns the current number of entries in the store.
func (m *Memory) Size() int {
	m.mu.RLock()
	size := len(m.items)
	m.mu.RUnlock()
	return size
}

// Keys returns a slice of all keys currently in the store.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	keys := make([]string, 0, len(m.items))
	for key := range m.items {
		keys = append(keys, key)
	}
	m.mu.RUnlock()
	return keys
}

// Stats returns store statistics.
func (m *Memory) Stats() *Statistics {
	return m.stats
}

// Close shuts down the store. For the memory store this is a no-op.
func (m *Memory) Close() error {
	return nil
}

var _ Store = (*Memory)(nil)
