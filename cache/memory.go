package cache

import (
	"sync"
	"time"
)

// Memory is a Store that lives as long as the process. It is meant for tests and for running without persistence.
type Memory struct {
	Now func() time.Time // defaults to time.Now

	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemory returns an empty Memory store using now as clock, nil means time.Now.
func NewMemory(now func() time.Time) *Memory {
	return &Memory{Now: now, entries: make(map[string]Entry)}
}

func (m *Memory) Read(key string) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	return e, ok
}

func (m *Memory) Write(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = make(map[string]Entry)
	}
	m.entries[key] = Entry{Timestamp: stamp(m.Now), Data: append([]byte(nil), data...)}
	return nil
}

func (m *Memory) Clear(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
