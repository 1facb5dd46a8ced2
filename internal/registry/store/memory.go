package store

import (
	"context"
	"sync"

	"marketfactory/internal/registry/models"
)

// InMemoryStore is a process-local replica of the market registry. The
// replication feed and seeding call Append; queries only read.
type InMemoryStore struct {
	mu      sync.RWMutex
	markets []models.MarketID
}

// NewInMemoryStore creates a store pre-populated with ids, in order.
func NewInMemoryStore(ids ...models.MarketID) *InMemoryStore {
	s := &InMemoryStore{}
	s.markets = append(s.markets, ids...)
	return s
}

// Append adds ids to the end of the registry. No validation or deduplication
// happens here; the factory's write path owns both.
func (s *InMemoryStore) Append(_ context.Context, ids ...models.MarketID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markets = append(s.markets, ids...)
	return nil
}

// Len returns the number of market IDs held.
func (s *InMemoryStore) Len(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.markets)), nil
}

// Get returns the market ID at index, or ok == false when out of bounds.
func (s *InMemoryStore) Get(_ context.Context, index uint64) (models.MarketID, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index >= uint64(len(s.markets)) {
		return "", false, nil
	}
	return s.markets[index], true, nil
}

// All returns a copy of the registry taken under a single read lock.
func (s *InMemoryStore) All(_ context.Context) ([]models.MarketID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.MarketID, len(s.markets))
	copy(out, s.markets)
	return out, nil
}

// Range returns a copy of [start, end), clipped to the current length.
func (s *InMemoryStore) Range(_ context.Context, start, end uint64) ([]models.MarketID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := uint64(len(s.markets))
	end = min(end, n)
	if start >= end {
		return []models.MarketID{}, nil
	}
	out := make([]models.MarketID, end-start)
	copy(out, s.markets[start:end])
	return out, nil
}
