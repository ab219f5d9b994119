package memory

import (
	"context"
	"sort"
	"sync"

	"wayfarer/internal/domain/catalog"
	"wayfarer/internal/domain/reviews"
)

type ReviewRepository struct {
	mu      sync.RWMutex
	records map[reviews.ReviewID]reviews.Review
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{records: make(map[reviews.ReviewID]reviews.Review)}
}

func (r *ReviewRepository) ByID(_ context.Context, id reviews.ReviewID) (*reviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	review, ok := r.records[id]
	if !ok {
		return nil, reviews.ErrNotFound
	}
	return cloneReview(review), nil
}

func (r *ReviewRepository) ByReviewer(_ context.Context, reviewerID string, item catalog.Ref) (*reviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, review := range r.records {
		if review.ReviewerID == reviewerID && review.Item == item {
			return cloneReview(review), nil
		}
	}
	return nil, reviews.ErrNotFound
}

func (r *ReviewRepository) ListByItem(_ context.Context, item catalog.Ref) ([]*reviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*reviews.Review
	for _, review := range r.records {
		if review.Item == item {
			out = append(out, cloneReview(review))
		}
	}
	sortReviews(out)
	return out, nil
}

func (r *ReviewRepository) ListByReviewer(_ context.Context, reviewerID string) ([]*reviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*reviews.Review
	for _, review := range r.records {
		if review.ReviewerID == reviewerID {
			out = append(out, cloneReview(review))
		}
	}
	sortReviews(out)
	return out, nil
}

// Insert enforces the one-review-per-reviewer-per-item rule under the lock,
// the same guarantee the mongo layer gets from its unique index.
func (r *ReviewRepository) Insert(_ context.Context, review *reviews.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.records {
		if existing.ReviewerID == review.ReviewerID && existing.Item == review.Item {
			return reviews.ErrDuplicate
		}
	}
	r.records[review.ID] = *cloneReview(*review)
	return nil
}

func (r *ReviewRepository) Save(_ context.Context, review *reviews.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[review.ID]; !ok {
		return reviews.ErrNotFound
	}
	r.records[review.ID] = *cloneReview(*review)
	return nil
}

func (r *ReviewRepository) Delete(_ context.Context, id reviews.ReviewID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return reviews.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *ReviewRepository) DeleteByItem(_ context.Context, item catalog.Ref) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, review := range r.records {
		if review.Item == item {
			delete(r.records, id)
		}
	}
	return nil
}

func cloneReview(review reviews.Review) *reviews.Review {
	review.ImageIDs = append([]string(nil), review.ImageIDs...)
	review.ClearEvents()
	return &review
}

func sortReviews(out []*reviews.Review) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
}
