package journal

import (
	"context"
	"sync"
)

// DefaultMemoryLimit is the number of entries a [Memory] journal keeps when
// no limit is given.
const DefaultMemoryLimit = 4096

// Memory keeps the most recent entries in process.
type Memory struct {
	mu      sync.Mutex
	limit   int
	entries []Entry
}

// NewMemory creates an in-memory journal keeping at most limit entries.
// A limit <= 0 uses [DefaultMemoryLimit].
func NewMemory(limit int) *Memory {
	if limit <= 0 {
		limit = DefaultMemoryLimit
	}
	return &Memory{limit: limit}
}

// Append stores e, evicting the oldest entry when full.
func (m *Memory) Append(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) == m.limit {
		m.entries = append(m.entries[:0], m.entries[1:]...)
	}
	m.entries = append(m.entries, e)
	return nil
}

// Entries returns the stored entries of session.
func (m *Memory) Entries(_ context.Context, session string) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Entry
	for _, e := range m.entries {
		if keep(e, session) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Close does nothing.
func (m *Memory) Close() error { return nil }

var _ Journal = (*Memory)(nil)
