package store

import (
	"context"
	"sync"

	"github.com/rojanmagar2001/sitemap404/internal/ledger"
)

// Memory keeps the ledger in process. Used for dry runs and tests.
type Memory struct {
	mu      sync.Mutex
	records []ledger.Record
	saves   int
}

func NewMemory(records ...ledger.Record) *Memory {
	return &Memory{records: records}
}

func (m *Memory) Load(_ context.Context) (*ledger.Ledger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ledger.New(m.records), nil
}

func (m *Memory) Save(_ context.Context, l *ledger.Ledger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = l.Records()
	m.saves++
	return nil
}

// Saves returns how many times Save was called.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
