package memory

import (
	"context"
	"sort"
	"sync"

	"wayfarer/internal/domain/catalog"
)

type DestinationRepository struct {
	mu      sync.RWMutex
	records map[catalog.DestinationID]catalog.Destination
}

func NewDestinationRepository() *DestinationRepository {
	return &DestinationRepository{records: make(map[catalog.DestinationID]catalog.Destination)}
}

func (r *DestinationRepository) ByID(_ context.Context, id catalog.DestinationID) (*catalog.Destination, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	destination, ok := r.records[id]
	if !ok {
		return nil, catalog.ErrDestinationNotFound
	}
	return cloneDestination(destination), nil
}

func (r *DestinationRepository) List(_ context.Context, limit, offset int) ([]*catalog.Destination, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*catalog.Destination
	for _, destination := range r.records {
		out = append(out, cloneDestination(destination))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

func (r *DestinationRepository) Save(_ context.Context, destination *catalog.Destination) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[destination.ID] = *cloneDestination(*destination)
	return nil
}

func (r *DestinationRepository) Delete(_ context.Context, id catalog.DestinationID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return catalog.ErrDestinationNotFound
	}
	delete(r.records, id)
	return nil
}

func cloneDestination(destination catalog.Destination) *catalog.Destination {
	destination.Tags = append([]string(nil), destination.Tags...)
	return &destination
}
