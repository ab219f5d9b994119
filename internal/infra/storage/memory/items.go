// Package memory provides mutex-guarded in-process implementations of the
// persistence contracts. They back the test suites and the no-database dev
// mode; semantics mirror the mongo layer, including uniqueness rules.
package memory

import (
	"context"
	"sort"
	"sync"

	"wayfarer/internal/domain/catalog"
)

type ItemStore struct {
	mu    sync.RWMutex
	items map[catalog.ItemID]catalog.Item
}

func NewItemStore() *ItemStore {
	return &ItemStore{items: make(map[catalog.ItemID]catalog.Item)}
}

// NewItemStores builds one store per catalog kind, matching the per-kind
// collection split of the mongo layer.
func NewItemStores() catalog.Stores {
	kinds := catalog.Kinds()
	stores := make(catalog.Stores, len(kinds))
	for _, kind := range kinds {
		stores[kind] = NewItemStore()
	}
	return stores
}

func (s *ItemStore) ByID(_ context.Context, id catalog.ItemID) (*catalog.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return cloneItem(item), nil
}

func (s *ItemStore) List(_ context.Context, limit, offset int) ([]*catalog.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]*catalog.Item, 0, len(s.items))
	for _, item := range s.items {
		all = append(all, cloneItem(item))
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return page(all, limit, offset), nil
}

func (s *ItemStore) Save(_ context.Context, item *catalog.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = *cloneItem(*item)
	return nil
}

func (s *ItemStore) Delete(_ context.Context, id catalog.ItemID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *ItemStore) UpdateRating(_ context.Context, id catalog.ItemID, average float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return catalog.ErrNotFound
	}
	item.AverageRating = average
	s.items[id] = item
	return nil
}

func cloneItem(item catalog.Item) *catalog.Item {
	item.Tags = append([]string(nil), item.Tags...)
	item.Highlights = append([]string(nil), item.Highlights...)
	return &item
}

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}
