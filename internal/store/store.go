// Package store holds the most recent evaluation results, newest first.
package store

import (
	"sync"

	"github.com/sells-group/price-check/internal/model"
)

// Store is a bounded, deduplicated, newest-first list of results.
// All methods are safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	items    []model.PricedItem
	capacity int
}

// New creates a store holding at most capacity items.
func New(capacity int) *Store {
	return &Store{capacity: normalizeCapacity(capacity)}
}

func normalizeCapacity(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// UpsertFront replaces any entry for the same item id and puts item first,
// evicting from the back past capacity.
func (s *Store) UpsertFront(item model.PricedItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(item.ItemID)
	s.items = append(s.items, model.PricedItem{})
	copy(s.items[1:], s.items)
	s.items[0] = item
	s.trimLocked()
}

// Remove deletes the entry for itemID and reports whether one existed.
func (s *Store) Remove(itemID uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(itemID)
}

func (s *Store) removeLocked(itemID uint32) bool {
	for i := range s.items {
		if s.items[i].ItemID == itemID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Store) trimLocked() {
	if len(s.items) > s.capacity {
		clear(s.items[s.capacity:])
		s.items = s.items[:s.capacity]
	}
}

// Snapshot returns a copy of the current contents.
func (s *Store) Snapshot() []model.PricedItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.PricedItem, len(s.items))
	for i, it := range s.items {
		if it.MarketPrice != nil {
			p := *it.MarketPrice
			it.MarketPrice = &p
		}
		out[i] = it
	}
	return out
}

// Clear empties the store.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

// Len returns the number of stored items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Capacity returns the current bound.
func (s *Store) Capacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capacity
}

// SetCapacity changes the bound and trims the oldest entries if needed.
func (s *Store) SetCapacity(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.capacity = normalizeCapacity(n)
	s.trimLocked()
}
