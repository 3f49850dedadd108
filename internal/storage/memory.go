package storage

import (
	"context"
	"sync"

	"medrecords/internal/core"
)

// MemoryAdapter keeps the collection in process memory. It backs the memory
// data backend and the store tests; contents are lost on exit.
type MemoryAdapter struct {
	mu      sync.Mutex
	records []core.Record
	saved   bool

	// FailSave, when set, makes the next Save calls return this error.
	FailSave error
	// SaveCalls counts Save invocations, successful or not.
	SaveCalls int
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{}
}

// Seed replaces the stored collection without counting as a save.
func (m *MemoryAdapter) Seed(records []core.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append([]core.Record(nil), records...)
	m.saved = true
}

func (m *MemoryAdapter) Load(_ context.Context) ([]core.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.saved {
		return []core.Record{}, nil
	}
	return append([]core.Record(nil), m.records...), nil
}

func (m *MemoryAdapter) Save(_ context.Context, records []core.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	if m.FailSave != nil {
		return m.FailSave
	}
	m.records = append([]core.Record(nil), records...)
	m.saved = true
	return nil
}
