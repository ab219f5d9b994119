package reviews

import (
	"errors"
	"testing"
	"time"

	"wayfarer/internal/domain/catalog"
)

func TestSubmitValidation(t *testing.T) {
	item := catalog.Ref{Kind: catalog.KindStay, ItemID: "stay-1"}
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	for _, rating := range []int{0, 6, -1} {
		_, err := Submit(SubmitParams{ID: "r1", ReviewerID: "u1", Item: item, Rating: rating, CreatedAt: now})
		if !errors.Is(err, ErrInvalidRating) {
			t.Fatalf("rating %d: expected ErrInvalidRating, got %v", rating, err)
		}
	}

	_, err := Submit(SubmitParams{ID: "r1", ReviewerID: "u1", Item: catalog.Ref{Kind: "museum", ItemID: "m-1"}, Rating: 3, CreatedAt: now})
	if !errors.Is(err, catalog.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestSubmitRecordsEvent(t *testing.T) {
	item := catalog.Ref{Kind: catalog.KindTrip, ItemID: "trip-1"}
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	review, err := Submit(SubmitParams{ID: "r1", ReviewerID: "u1", Item: item, Rating: 5, Comment: "  great ", CreatedAt: now})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if review.Comment != "great" {
		t.Fatalf("expected trimmed comment, got %q", review.Comment)
	}
	pending := review.PendingEvents()
	if len(pending) != 1 || pending[0].EventName() != "review.submitted" {
		t.Fatalf("expected one review.submitted event, got %v", pending)
	}
}

func TestApplyPatch(t *testing.T) {
	item := catalog.Ref{Kind: catalog.KindRental, ItemID: "car-1"}
	created := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	later := created.Add(48 * time.Hour)

	review, err := Submit(SubmitParams{ID: "r1", ReviewerID: "u1", Item: item, Rating: 2, ImageIDs: []string{"img-1"}, CreatedAt: created})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	review.ClearEvents()

	if err := review.Apply(Patch{}, later); !errors.Is(err, ErrEmptyPatch) {
		t.Fatalf("expected ErrEmptyPatch, got %v", err)
	}

	bad := 9
	if err := review.Apply(Patch{Rating: &bad}, later); !errors.Is(err, ErrInvalidRating) {
		t.Fatalf("expected ErrInvalidRating, got %v", err)
	}

	rating := 4
	comment := "better than expected"
	if err := review.Apply(Patch{Rating: &rating, Comment: &comment, ImageIDs: []string{"img-2"}}, later); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if review.Rating != 4 || review.Comment != comment {
		t.Fatalf("patch not applied: rating=%d comment=%q", review.Rating, review.Comment)
	}
	if len(review.ImageIDs) != 2 || review.ImageIDs[1] != "img-2" {
		t.Fatalf("expected appended image ids, got %v", review.ImageIDs)
	}
	if !review.UpdatedAt.Equal(later) {
		t.Fatalf("expected UpdatedAt %v, got %v", later, review.UpdatedAt)
	}
	if review.CreatedAt != created {
		t.Fatalf("CreatedAt must not change, got %v", review.CreatedAt)
	}
}

func TestOwnedBy(t *testing.T) {
	review := &Review{ReviewerID: "u1"}
	if !review.OwnedBy("u1") || review.OwnedBy("u2") {
		t.Fatal("ownership check failed")
	}
}
