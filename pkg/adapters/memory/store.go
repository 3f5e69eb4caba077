package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/dialoguetree/pkg/domain"
)

// Store implements ports.HistoryStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.Histories
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.Histories),
	}
}

// Save stores a deep copy of h under slotID.
func (s *Store) Save(ctx context.Context, slotID string, h domain.Histories) error {
	copied := h.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[slotID] = copied
	return nil
}

// Load returns a copy of the records saved under slotID, so callers cannot mutate the store.
func (s *Store) Load(ctx context.Context, slotID string) (domain.Histories, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.data[slotID]
	if !ok {
		return nil, domain.ErrHistoryNotFound
	}
	return h.Clone(), nil
}

// Delete removes a slot.
func (s *Store) Delete(ctx context.Context, slotID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, slotID)
	return nil
}

// List returns the saved slots in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slots := make([]string, 0, len(s.data))
	for id := range s.data {
		slots = append(slots, id)
	}
	slices.Sort(slots)
	return slots, nil
}
