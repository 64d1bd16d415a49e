package arbitrage

import (
	"context"
	"sync"
)

// MockStorage is an in-memory storage implementation for testing batch runs.
// This mock lives in the arbitrage package to avoid import cycles.
type MockStorage struct {
	items  map[int32][]*Opportunity
	writes []int32
	err    error
	mu     sync.Mutex
}

// NewMockStorage creates a new mock storage for arbitrage tests.
func NewMockStorage() *MockStorage {
	return &MockStorage{
		items: make(map[int32][]*Opportunity),
	}
}

// StoreItemOpportunities replaces the stored list for itemID.
func (m *MockStorage) StoreItemOpportunities(ctx context.Context, itemID int32, opps []*Opportunity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	copied := make([]*Opportunity, len(opps))
	copy(copied, opps)
	m.items[itemID] = copied
	m.writes = append(m.writes, itemID)
	return nil
}

// Close is a no-op for mock storage.
func (m *MockStorage) Close() error {
	return nil
}

// SetError makes every subsequent store call fail with err.
func (m *MockStorage) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Seed stores a list without recording a write.
func (m *MockStorage) Seed(itemID int32, opps []*Opportunity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[itemID] = opps
}

// Get returns the stored list for itemID.
func (m *MockStorage) Get(itemID int32) ([]*Opportunity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	opps, ok := m.items[itemID]
	return opps, ok
}

// Writes returns the item ids written, in write order.
func (m *MockStorage) Writes() []int32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]int32, len(m.writes))
	copy(result, m.writes)
	return result
}
