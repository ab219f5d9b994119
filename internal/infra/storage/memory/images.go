package memory

import (
	"context"
	"sort"
	"sync"

	"wayfarer/internal/domain/images"
)

type ImageRepository struct {
	mu      sync.RWMutex
	records map[images.ImageID]images.Image
}

func NewImageRepository() *ImageRepository {
	return &ImageRepository{records: make(map[images.ImageID]images.Image)}
}

func (r *ImageRepository) ByID(_ context.Context, id images.ImageID) (*images.Image, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	image, ok := r.records[id]
	if !ok {
		return nil, images.ErrNotFound
	}
	return cloneImage(image), nil
}

func (r *ImageRepository) ListByEntity(_ context.Context, entity images.EntityRef) ([]*images.Image, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*images.Image
	for _, image := range r.records {
		if image.Entity == entity {
			out = append(out, cloneImage(image))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsPrimary != out[j].IsPrimary {
			return out[i].IsPrimary
		}
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *ImageRepository) Insert(_ context.Context, image *images.Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[image.ID] = *cloneImage(*image)
	return nil
}

func (r *ImageRepository) Save(_ context.Context, image *images.Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[image.ID]; !ok {
		return images.ErrNotFound
	}
	r.records[image.ID] = *cloneImage(*image)
	return nil
}

func (r *ImageRepository) Delete(_ context.Context, id images.ImageID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return images.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *ImageRepository) DeleteByIDs(_ context.Context, ids []images.ImageID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		delete(r.records, id)
	}
	return nil
}

func (r *ImageRepository) DeleteByEntity(_ context.Context, entity images.EntityRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, image := range r.records {
		if image.Entity == entity {
			delete(r.records, id)
		}
	}
	return nil
}

func (r *ImageRepository) UnsetPrimary(_ context.Context, entity images.EntityRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, image := range r.records {
		if image.Entity == entity && image.IsPrimary {
			image.IsPrimary = false
			r.records[id] = image
		}
	}
	return nil
}

func cloneImage(image images.Image) *images.Image {
	image.Tags = append([]string(nil), image.Tags...)
	return &image
}
