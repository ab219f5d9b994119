package dto

import (
	"time"

	domainreviews "wayfarer/internal/domain/reviews"
)

// Review is the public review payload.
type Review struct {
	ID         string    `json:"id"`
	ReviewerID string    `json:"reviewer_id"`
	ItemType   string    `json:"item_type"`
	ItemID     string    `json:"item_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	ImageIDs   []string  `json:"image_ids,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ReviewCollection struct {
	Items []Review `json:"items"`
	Total int      `json:"total"`
}

// ReviewMutation reports the review alongside the aggregation outcome, so
// callers can tell when the item's average is stale.
type ReviewMutation struct {
	Review        Review  `json:"review"`
	RatingSynced  bool    `json:"rating_synced"`
	AverageRating float64 `json:"average_rating"`
}

func MapReview(review *domainreviews.Review) Review {
	if review == nil {
		return Review{}
	}
	return Review{
		ID:         string(review.ID),
		ReviewerID: review.ReviewerID,
		ItemType:   string(review.Item.Kind),
		ItemID:     string(review.Item.ItemID),
		Rating:     review.Rating,
		Comment:    review.Comment,
		ImageIDs:   review.ImageIDs,
		CreatedAt:  review.CreatedAt,
		UpdatedAt:  review.UpdatedAt,
	}
}

func MapReviews(reviews []*domainreviews.Review) ReviewCollection {
	out := ReviewCollection{Items: make([]Review, 0, len(reviews))}
	for _, review := range reviews {
		out.Items = append(out.Items, MapReview(review))
	}
	out.Total = len(out.Items)
	return out
}
