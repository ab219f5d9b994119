package reviews

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	imagesapp "wayfarer/internal/app/images"
	domaincatalog "wayfarer/internal/domain/catalog"
	domainimages "wayfarer/internal/domain/images"
	domainreviews "wayfarer/internal/domain/reviews"
	"wayfarer/internal/infra/storage/memory"
)

func newTestService(t *testing.T) (*Service, domaincatalog.Ref) {
	t.Helper()
	items := memory.NewItemStores()
	item, err := domaincatalog.NewItem(domaincatalog.CreateItemParams{
		ID:         "stay-1",
		Kind:       domaincatalog.KindStay,
		Name:       "Harbor Loft",
		PriceCents: 120000,
		OwnerID:    "owner-1",
		CreatedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("NewItem returned error: %v", err)
	}
	store, err := items.Lookup(domaincatalog.KindStay)
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if err := store.Save(context.Background(), item); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	svc := &Service{
		Reviews: memory.NewReviewRepository(),
		Items:   items,
		Images:  memory.NewImageRepository(),
	}
	return svc, item.Ref()
}

func itemAverage(t *testing.T, svc *Service, ref domaincatalog.Ref) float64 {
	t.Helper()
	store, err := svc.Items.Lookup(ref.Kind)
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	item, err := store.ByID(context.Background(), ref.ItemID)
	if err != nil {
		t.Fatalf("ByID returned error: %v", err)
	}
	return item.AverageRating
}

func TestCreateRecomputesAverage(t *testing.T) {
	ctx := context.Background()
	svc, ref := newTestService(t)

	for i, rating := range []int{4, 5, 3} {
		result, err := svc.Create(ctx, CreateParams{
			ReviewerID: string(rune('a' + i)),
			Item:       ref,
			Rating:     rating,
		})
		if err != nil {
			t.Fatalf("Create %d returned error: %v", i, err)
		}
		if !result.RatingSynced {
			t.Fatalf("Create %d: expected rating synced", i)
		}
	}
	if got := itemAverage(t, svc, ref); got != 4.0 {
		t.Fatalf("expected average 4.0 after [4 5 3], got %v", got)
	}

	result, err := svc.Create(ctx, CreateParams{ReviewerID: "d", Item: ref, Rating: 2})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if result.AverageRating != 3.5 {
		t.Fatalf("expected average 3.5 after adding 2, got %v", result.AverageRating)
	}

	if _, err := svc.Delete(ctx, result.Review.ID, "d", time.Now()); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if got := itemAverage(t, svc, ref); got != 4.0 {
		t.Fatalf("expected average back to 4.0 after delete, got %v", got)
	}
}

func TestCreateRejectsDuplicateThenAllowsUpdate(t *testing.T) {
	ctx := context.Background()
	svc, ref := newTestService(t)

	first, err := svc.Create(ctx, CreateParams{ReviewerID: "u1", Item: ref, Rating: 5})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	_, err = svc.Create(ctx, CreateParams{ReviewerID: "u1", Item: ref, Rating: 1})
	if !errors.Is(err, domainreviews.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	rating := 3
	updated, err := svc.Update(ctx, first.Review.ID, "u1", domainreviews.Patch{Rating: &rating}, time.Now())
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Review.Rating != 3 {
		t.Fatalf("expected rating 3, got %d", updated.Review.Rating)
	}
	if updated.AverageRating != 3.0 {
		t.Fatalf("expected average 3.0, got %v", updated.AverageRating)
	}
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc, ref := newTestService(t)

	_, err := svc.Create(ctx, CreateParams{ReviewerID: "u1", Item: ref, Rating: 0})
	if !errors.Is(err, domainreviews.ErrInvalidRating) {
		t.Fatalf("expected ErrInvalidRating, got %v", err)
	}

	_, err = svc.Create(ctx, CreateParams{ReviewerID: "u1", Item: domaincatalog.Ref{Kind: "museum", ItemID: "m-1"}, Rating: 4})
	if !errors.Is(err, domaincatalog.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}

	_, err = svc.Create(ctx, CreateParams{ReviewerID: "u1", Item: domaincatalog.Ref{Kind: ref.Kind, ItemID: "ghost"}, Rating: 4})
	if !errors.Is(err, domaincatalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing item, got %v", err)
	}
}

func TestUpdateAndDeleteRequireOwnership(t *testing.T) {
	ctx := context.Background()
	svc, ref := newTestService(t)

	created, err := svc.Create(ctx, CreateParams{ReviewerID: "u1", Item: ref, Rating: 4})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	rating := 5
	if _, err := svc.Update(ctx, created.Review.ID, "intruder", domainreviews.Patch{Rating: &rating}, time.Now()); !errors.Is(err, domainreviews.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner on update, got %v", err)
	}
	if _, err := svc.Delete(ctx, created.Review.ID, "intruder", time.Now()); !errors.Is(err, domainreviews.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner on delete, got %v", err)
	}
}

func TestCanReviewLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, ref := newTestService(t)

	check, err := svc.CanReview(ctx, "u1", ref)
	if err != nil {
		t.Fatalf("CanReview returned error: %v", err)
	}
	if !check.Allowed || check.Existing != nil {
		t.Fatalf("expected allowed with no existing review, got %+v", check)
	}

	created, err := svc.Create(ctx, CreateParams{ReviewerID: "u1", Item: ref, Rating: 4})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	check, err = svc.CanReview(ctx, "u1", ref)
	if err != nil {
		t.Fatalf("CanReview returned error: %v", err)
	}
	if check.Allowed || check.Existing == nil || check.Existing.ID != created.Review.ID {
		t.Fatalf("expected blocked with existing review, got %+v", check)
	}

	if _, err := svc.Delete(ctx, created.Review.ID, "u1", time.Now()); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	check, err = svc.CanReview(ctx, "u1", ref)
	if err != nil {
		t.Fatalf("CanReview returned error: %v", err)
	}
	if !check.Allowed {
		t.Fatal("expected allowed again after delete")
	}
}

func TestEmptyReviewSetResetsAverage(t *testing.T) {
	ctx := context.Background()
	svc, ref := newTestService(t)

	created, err := svc.Create(ctx, CreateParams{ReviewerID: "u1", Item: ref, Rating: 5})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if got := itemAverage(t, svc, ref); got != 5.0 {
		t.Fatalf("expected average 5.0, got %v", got)
	}

	result, err := svc.Delete(ctx, created.Review.ID, "u1", time.Now())
	if err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if !result.RatingSynced || result.AverageRating != 0 {
		t.Fatalf("expected synced zero average, got %+v", result)
	}
	if got := itemAverage(t, svc, ref); got != 0 {
		t.Fatalf("expected stored average 0, got %v", got)
	}
}

type failingRatingStore struct {
	domaincatalog.Store
}

func (failingRatingStore) UpdateRating(context.Context, domaincatalog.ItemID, float64) error {
	return errors.New("rating write refused")
}

func TestAggregationFailureKeepsMutation(t *testing.T) {
	ctx := context.Background()
	svc, ref := newTestService(t)
	store, err := svc.Items.Lookup(ref.Kind)
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	svc.Items[ref.Kind] = failingRatingStore{Store: store}

	result, err := svc.Create(ctx, CreateParams{ReviewerID: "u1", Item: ref, Rating: 4})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if result.RatingSynced {
		t.Fatal("expected unsynced result when the rating write fails")
	}
	if result.AverageRating != 0 {
		t.Fatalf("expected zero average on failed sync, got %v", result.AverageRating)
	}

	stored, err := svc.Reviews.ByReviewer(ctx, "u1", ref)
	if err != nil {
		t.Fatalf("review was not persisted: %v", err)
	}
	if stored.Rating != 4 {
		t.Fatalf("expected stored rating 4, got %d", stored.Rating)
	}

	deleted, err := svc.Delete(ctx, stored.ID, "u1", time.Now())
	if err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if deleted.RatingSynced {
		t.Fatal("expected unsynced delete result when the rating write fails")
	}
	if _, err := svc.Reviews.ByReviewer(ctx, "u1", ref); !errors.Is(err, domainreviews.ErrNotFound) {
		t.Fatalf("expected review gone despite failed sync, got %v", err)
	}
}

type stubBlobStore struct {
	removed []string
}

func (s *stubBlobStore) Upload(_ context.Context, key string, reader io.Reader, _ string) (string, error) {
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	return "https://cdn.example.test/" + key, nil
}

func (s *stubBlobStore) Remove(_ context.Context, key string) error {
	s.removed = append(s.removed, key)
	return nil
}

func TestDeleteCascadesReviewImages(t *testing.T) {
	ctx := context.Background()
	svc, ref := newTestService(t)
	imageRepo := memory.NewImageRepository()
	blobs := &stubBlobStore{}
	svc.Images = &imagesapp.Service{Images: imageRepo, Blobs: blobs}

	created, err := svc.Create(ctx, CreateParams{ReviewerID: "u1", Item: ref, Rating: 5, ImageIDs: []string{"img-9"}})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	attachment, err := domainimages.New(domainimages.CreateParams{
		ID:           "img-9",
		OwnerID:      "u1",
		Entity:       domainimages.EntityRef{Type: domainimages.EntityReview, ID: string(created.Review.ID)},
		OriginalName: "view.jpg",
	})
	if err != nil {
		t.Fatalf("New image returned error: %v", err)
	}
	if err := imageRepo.Insert(ctx, attachment); err != nil {
		t.Fatalf("Insert image returned error: %v", err)
	}

	if _, err := svc.Delete(ctx, created.Review.ID, "u1", time.Now()); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := imageRepo.ByID(ctx, "img-9"); !errors.Is(err, domainimages.ErrNotFound) {
		t.Fatalf("expected attachment metadata gone, got %v", err)
	}
	if len(blobs.removed) != 1 {
		t.Fatalf("expected one blob reclaimed, got %d", len(blobs.removed))
	}
}

func TestRoundTenthHalfUp(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{3.45, 3.5},
		{3.44, 3.4},
		{10.0 / 3.0, 3.3},
		{11.0 / 3.0, 3.7},
		{4.0, 4.0},
		{0, 0},
	}
	for _, tc := range cases {
		if got := roundTenth(tc.in); got != tc.want {
			t.Fatalf("roundTenth(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
