package reviews

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"wayfarer/internal/app/policies"
	domaincatalog "wayfarer/internal/domain/catalog"
	domainevents "wayfarer/internal/domain/shared/events"
	domainimages "wayfarer/internal/domain/images"
	domainreviews "wayfarer/internal/domain/reviews"
)

// ImageCascade drops a deleted review's image attachments, blobs included.
type ImageCascade interface {
	DeleteByIDs(ctx context.Context, ids []domainimages.ImageID) error
}

// Service owns the review ledger and keeps item average ratings in step with
// it. Aggregation runs synchronously after every mutation but is best-effort:
// a failed recomputation never fails the mutation, it only marks the result
// as unsynced.
type Service struct {
	Reviews domainreviews.Repository
	Items   domaincatalog.Stores
	Images  ImageCascade
	Events  policies.EventPublisher
	Logger  *slog.Logger
}

type CreateParams struct {
	ReviewerID string
	Item       domaincatalog.Ref
	Rating     int
	Comment    string
	ImageIDs   []string
	Now        time.Time
}

// MutationResult carries the aggregation outcome alongside the review, so
// callers can detect a stale average instead of the failure being swallowed.
type MutationResult struct {
	Review        *domainreviews.Review
	RatingSynced  bool
	AverageRating float64
}

type DeleteResult struct {
	RatingSynced  bool
	AverageRating float64
}

type CanReviewResult struct {
	Allowed  bool
	Existing *domainreviews.Review
}

func (s *Service) Create(ctx context.Context, params CreateParams) (MutationResult, error) {
	if params.Rating < 1 || params.Rating > 5 {
		return MutationResult{}, domainreviews.ErrInvalidRating
	}
	store, err := s.Items.Lookup(params.Item.Kind)
	if err != nil {
		return MutationResult{}, err
	}
	if _, err := store.ByID(ctx, params.Item.ItemID); err != nil {
		return MutationResult{}, err
	}

	// Pre-check keeps the friendly conflict error; the repository's unique
	// index closes the race two concurrent creates would otherwise win.
	if existing, err := s.Reviews.ByReviewer(ctx, params.ReviewerID, params.Item); err == nil && existing != nil {
		return MutationResult{}, domainreviews.ErrDuplicate
	} else if err != nil && !errors.Is(err, domainreviews.ErrNotFound) {
		return MutationResult{}, err
	}

	now := params.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	review, err := domainreviews.Submit(domainreviews.SubmitParams{
		ID:         domainreviews.ReviewID(uuid.NewString()),
		ReviewerID: params.ReviewerID,
		Item:       params.Item,
		Rating:     params.Rating,
		Comment:    params.Comment,
		ImageIDs:   params.ImageIDs,
		CreatedAt:  now,
	})
	if err != nil {
		return MutationResult{}, err
	}
	if err := s.Reviews.Insert(ctx, review); err != nil {
		return MutationResult{}, err
	}

	result := MutationResult{Review: review}
	result.AverageRating, result.RatingSynced = s.refreshAverage(ctx, params.Item)

	s.publish(ctx, review.PendingEvents())
	review.ClearEvents()

	if s.Logger != nil {
		s.Logger.Info("review created", "review_id", review.ID, "item", review.Item.String(), "reviewer_id", review.ReviewerID, "rating", review.Rating, "rating_synced", result.RatingSynced)
	}
	return result, nil
}

func (s *Service) Update(ctx context.Context, reviewID domainreviews.ReviewID, actorID string, patch domainreviews.Patch, now time.Time) (MutationResult, error) {
	review, err := s.Reviews.ByID(ctx, reviewID)
	if err != nil {
		return MutationResult{}, err
	}
	if !review.OwnedBy(actorID) {
		return MutationResult{}, domainreviews.ErrNotOwner
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	if err := review.Apply(patch, now); err != nil {
		return MutationResult{}, err
	}
	if err := s.Reviews.Save(ctx, review); err != nil {
		return MutationResult{}, err
	}

	result := MutationResult{Review: review}
	result.AverageRating, result.RatingSynced = s.refreshAverage(ctx, review.Item)

	s.publish(ctx, review.PendingEvents())
	review.ClearEvents()

	if s.Logger != nil {
		s.Logger.Info("review updated", "review_id", review.ID, "item", review.Item.String(), "rating_synced", result.RatingSynced)
	}
	return result, nil
}

func (s *Service) Delete(ctx context.Context, reviewID domainreviews.ReviewID, actorID string, now time.Time) (DeleteResult, error) {
	review, err := s.Reviews.ByID(ctx, reviewID)
	if err != nil {
		return DeleteResult{}, err
	}
	if !review.OwnedBy(actorID) {
		return DeleteResult{}, domainreviews.ErrNotOwner
	}
	if len(review.ImageIDs) > 0 && s.Images != nil {
		ids := make([]domainimages.ImageID, 0, len(review.ImageIDs))
		for _, id := range review.ImageIDs {
			ids = append(ids, domainimages.ImageID(id))
		}
		if err := s.Images.DeleteByIDs(ctx, ids); err != nil {
			return DeleteResult{}, err
		}
	}
	if err := s.Reviews.Delete(ctx, review.ID); err != nil {
		return DeleteResult{}, err
	}

	var result DeleteResult
	result.AverageRating, result.RatingSynced = s.refreshAverage(ctx, review.Item)

	if now.IsZero() {
		now = time.Now().UTC()
	}
	s.publish(ctx, []domainevents.DomainEvent{
		domainreviews.ReviewDeleted{ReviewID: review.ID, Item: review.Item, At: now.UTC()},
	})

	if s.Logger != nil {
		s.Logger.Info("review deleted", "review_id", review.ID, "item", review.Item.String(), "rating_synced", result.RatingSynced)
	}
	return result, nil
}

// CanReview reports whether the reviewer may still review the item. It does
// not reserve anything; Create remains the enforcement point.
func (s *Service) CanReview(ctx context.Context, reviewerID string, item domaincatalog.Ref) (CanReviewResult, error) {
	store, err := s.Items.Lookup(item.Kind)
	if err != nil {
		return CanReviewResult{}, err
	}
	if _, err := store.ByID(ctx, item.ItemID); err != nil {
		return CanReviewResult{}, err
	}
	existing, err := s.Reviews.ByReviewer(ctx, reviewerID, item)
	if err != nil {
		if errors.Is(err, domainreviews.ErrNotFound) {
			return CanReviewResult{Allowed: true}, nil
		}
		return CanReviewResult{}, err
	}
	return CanReviewResult{Allowed: false, Existing: existing}, nil
}

func (s *Service) ListByItem(ctx context.Context, item domaincatalog.Ref) ([]*domainreviews.Review, error) {
	if _, err := s.Items.Lookup(item.Kind); err != nil {
		return nil, err
	}
	return s.Reviews.ListByItem(ctx, item)
}

func (s *Service) ListByReviewer(ctx context.Context, reviewerID string) ([]*domainreviews.Review, error) {
	return s.Reviews.ListByReviewer(ctx, reviewerID)
}

// refreshAverage recomputes the item's average from its full review set and
// writes it back. Errors are logged and reported through the sync flag only;
// the review mutation that triggered the refresh already succeeded.
func (s *Service) refreshAverage(ctx context.Context, item domaincatalog.Ref) (average float64, synced bool) {
	average, err := s.recomputeAverage(ctx, item)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("rating aggregation failed", "item", item.String(), "error", err)
		}
		return 0, false
	}
	return average, true
}

func (s *Service) recomputeAverage(ctx context.Context, item domaincatalog.Ref) (float64, error) {
	store, err := s.Items.Lookup(item.Kind)
	if err != nil {
		return 0, err
	}
	all, err := s.Reviews.ListByItem(ctx, item)
	if err != nil {
		return 0, err
	}
	average := 0.0
	if len(all) > 0 {
		total := 0
		for _, review := range all {
			total += review.Rating
		}
		average = roundTenth(float64(total) / float64(len(all)))
	}
	if err := store.UpdateRating(ctx, item.ItemID, average); err != nil {
		return 0, err
	}
	return average, nil
}

// roundTenth rounds half-up at the tenths digit: 3.45 -> 3.5, 3.44 -> 3.4.
func roundTenth(x float64) float64 {
	return math.Floor(x*10+0.5) / 10
}

func (s *Service) publish(ctx context.Context, pending []domainevents.DomainEvent) {
	if s.Events == nil {
		return
	}
	for _, event := range pending {
		if err := s.Events.Publish(ctx, event); err != nil && s.Logger != nil {
			s.Logger.Warn("event publish failed", "event", event.EventName(), "aggregate_id", event.AggregateID(), "error", err)
		}
	}
}
