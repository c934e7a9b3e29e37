package store

import (
	"context"
	"strconv"
	"sync"

	"items-api/models"
)

// MemoryItemStore keeps items in an ordered slice owned by the process.
// Ids come from a counter that only moves forward, so an id is never handed
// out twice even after deletes.
type MemoryItemStore struct {
	mu     sync.RWMutex
	items  []models.Item
	nextID int
}

var _ ItemStore = (*MemoryItemStore)(nil)

// NewMemoryItemStore returns a store seeded with SeedItems.
func NewMemoryItemStore() *MemoryItemStore {
	s := &MemoryItemStore{}
	s.Reset()
	return s
}

// Reset drops every item and restores the seed records.
func (s *MemoryItemStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = SeedItems()
	s.nextID = len(s.items) + 1
}

func (s *MemoryItemStore) List(_ context.Context) ([]models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Item, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *MemoryItemStore) Get(_ context.Context, id string) (models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Item{}, ErrItemNotFound
	}
	return s.items[i], nil
}

func (s *MemoryItemStore) Insert(_ context.Context, in models.CreateItemInput) (models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := models.NewItem(strconv.Itoa(s.nextID), in)
	s.nextID++
	s.items = append(s.items, item)
	return item, nil
}

func (s *MemoryItemStore) Update(_ context.Context, id string, in models.UpdateItemInput) (models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Item{}, ErrItemNotFound
	}
	s.items[i] = in.Apply(s.items[i])
	return s.items[i], nil
}

func (s *MemoryItemStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrItemNotFound
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

// indexOf must be called with s.mu held.
func (s *MemoryItemStore) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}
