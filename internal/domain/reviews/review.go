package reviews

import (
	"context"
	"errors"
	"strings"
	"time"

	"wayfarer/internal/domain/catalog"
	"wayfarer/internal/domain/shared/events"
)

var (
	ErrInvalidRating = errors.New("reviews: rating must be between 1 and 5")
	ErrNotFound      = errors.New("reviews: not found")
	ErrDuplicate     = errors.New("reviews: item already reviewed by this user")
	ErrNotOwner      = errors.New("reviews: review belongs to another user")
	ErrEmptyPatch    = errors.New("reviews: nothing to update")
)

type ReviewID string

// Review is one user's rating of one catalog item. The (reviewer, item)
// pair is unique; the storage layer backs that with a compound index.
type Review struct {
	ID         ReviewID
	ReviewerID string
	Item       catalog.Ref
	Rating     int
	Comment    string
	ImageIDs   []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ReviewID) (*Review, error)
	// ByReviewer returns the reviewer's review of the item, or ErrNotFound.
	ByReviewer(ctx context.Context, reviewerID string, item catalog.Ref) (*Review, error)
	ListByItem(ctx context.Context, item catalog.Ref) ([]*Review, error)
	ListByReviewer(ctx context.Context, reviewerID string) ([]*Review, error)
	// Insert persists a new review and returns ErrDuplicate when another
	// review by the same reviewer for the same item already exists.
	Insert(ctx context.Context, review *Review) error
	Save(ctx context.Context, review *Review) error
	Delete(ctx context.Context, id ReviewID) error
	DeleteByItem(ctx context.Context, item catalog.Ref) error
}

type SubmitParams struct {
	ID         ReviewID
	ReviewerID string
	Item       catalog.Ref
	Rating     int
	Comment    string
	ImageIDs   []string
	CreatedAt  time.Time
}

func Submit(params SubmitParams) (*Review, error) {
	if params.Rating < 1 || params.Rating > 5 {
		return nil, ErrInvalidRating
	}
	if !params.Item.Kind.Valid() {
		return nil, catalog.ErrUnknownKind
	}
	if strings.TrimSpace(params.ReviewerID) == "" {
		return nil, errors.New("reviews: reviewer id required")
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	review := &Review{
		ID:         params.ID,
		ReviewerID: params.ReviewerID,
		Item:       params.Item,
		Rating:     params.Rating,
		Comment:    strings.TrimSpace(params.Comment),
		ImageIDs:   append([]string(nil), params.ImageIDs...),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	review.Record(ReviewSubmitted{ReviewID: review.ID, Item: review.Item, ReviewerID: review.ReviewerID, Rating: review.Rating, At: now})
	return review, nil
}

// Patch carries the fields an owner may change. Nil means leave as is;
// ImageIDs are appended, never replaced.
type Patch struct {
	Rating   *int
	Comment  *string
	ImageIDs []string
}

func (p Patch) Empty() bool {
	return p.Rating == nil && p.Comment == nil && len(p.ImageIDs) == 0
}

func (r *Review) Apply(patch Patch, now time.Time) error {
	if patch.Empty() {
		return ErrEmptyPatch
	}
	if patch.Rating != nil {
		if *patch.Rating < 1 || *patch.Rating > 5 {
			return ErrInvalidRating
		}
		r.Rating = *patch.Rating
	}
	if patch.Comment != nil {
		r.Comment = strings.TrimSpace(*patch.Comment)
	}
	if len(patch.ImageIDs) > 0 {
		r.ImageIDs = append(r.ImageIDs, patch.ImageIDs...)
	}
	r.UpdatedAt = now.UTC()
	r.Record(ReviewUpdated{ReviewID: r.ID, Item: r.Item, Rating: r.Rating, At: r.UpdatedAt})
	return nil
}

func (r *Review) OwnedBy(userID string) bool {
	return r.ReviewerID == userID
}
