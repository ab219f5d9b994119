package catalog

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	imagesapp "wayfarer/internal/app/images"
	"wayfarer/internal/app/policies"
	domaincatalog "wayfarer/internal/domain/catalog"
	domainimages "wayfarer/internal/domain/images"
	domainreviews "wayfarer/internal/domain/reviews"
	"wayfarer/internal/infra/storage/memory"
)

type fakeBlobStore struct {
	removed []string
}

func (f *fakeBlobStore) Upload(_ context.Context, key string, reader io.Reader, _ string) (string, error) {
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	return "https://cdn.example.test/" + key, nil
}

func (f *fakeBlobStore) Remove(_ context.Context, key string) error {
	f.removed = append(f.removed, key)
	return nil
}

type testEnv struct {
	svc    *Service
	images *memory.ImageRepository
	blobs  *fakeBlobStore
}

func newTestEnv() testEnv {
	images := memory.NewImageRepository()
	blobs := &fakeBlobStore{}
	return testEnv{
		svc: &Service{
			Items:        memory.NewItemStores(),
			Destinations: memory.NewDestinationRepository(),
			Reviews:      memory.NewReviewRepository(),
			Images:       &imagesapp.Service{Images: images, Blobs: blobs},
		},
		images: images,
		blobs:  blobs,
	}
}

func TestCreateItemPerKind(t *testing.T) {
	ctx := context.Background()
	svc := newTestEnv().svc

	for _, kind := range domaincatalog.Kinds() {
		item, err := svc.CreateItem(ctx, CreateItemParams{
			Kind:       kind,
			Name:       "Sample " + kind.Display(),
			PriceCents: 9900,
			OwnerID:    "owner-1",
		})
		if err != nil {
			t.Fatalf("CreateItem(%s) returned error: %v", kind, err)
		}
		got, err := svc.GetItem(ctx, item.Ref())
		if err != nil {
			t.Fatalf("GetItem(%s) returned error: %v", kind, err)
		}
		if got.Kind != kind {
			t.Fatalf("expected kind %s, got %s", kind, got.Kind)
		}
	}

	if _, err := svc.CreateItem(ctx, CreateItemParams{Kind: "museum", Name: "x", OwnerID: "o"}); !errors.Is(err, domaincatalog.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestUpdateItemOwnership(t *testing.T) {
	ctx := context.Background()
	svc := newTestEnv().svc

	item, err := svc.CreateItem(ctx, CreateItemParams{Kind: domaincatalog.KindStay, Name: "Old Name", PriceCents: 100, OwnerID: "owner-1"})
	if err != nil {
		t.Fatalf("CreateItem returned error: %v", err)
	}

	name := "New Name"
	if _, err := svc.UpdateItem(ctx, item.Ref(), policies.Actor{ID: "someone"}, ItemPatch{Name: &name}, time.Now()); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	price := int64(200)
	updated, err := svc.UpdateItem(ctx, item.Ref(), policies.Actor{ID: "owner-1"}, ItemPatch{Name: &name, PriceCents: &price}, time.Now())
	if err != nil {
		t.Fatalf("UpdateItem returned error: %v", err)
	}
	if updated.Name != name || updated.PriceCents != 200 {
		t.Fatalf("patch not applied: %+v", updated)
	}
}

func TestDeleteItemCascades(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := env.svc

	item, err := svc.CreateItem(ctx, CreateItemParams{Kind: domaincatalog.KindRental, Name: "City Car", PriceCents: 4500, OwnerID: "owner-1"})
	if err != nil {
		t.Fatalf("CreateItem returned error: %v", err)
	}
	ref := item.Ref()

	review, err := domainreviews.Submit(domainreviews.SubmitParams{
		ID:         "rev-1",
		ReviewerID: "u1",
		Item:       ref,
		Rating:     4,
	})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if err := svc.Reviews.Insert(ctx, review); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}

	entity := domainimages.EntityRef{Type: domainimages.EntityType(ref.Kind), ID: string(ref.ItemID)}
	image, err := domainimages.New(domainimages.CreateParams{
		ID:           "img-1",
		OwnerID:      "owner-1",
		Entity:       entity,
		OriginalName: "car.jpg",
	})
	if err != nil {
		t.Fatalf("New image returned error: %v", err)
	}
	if err := env.images.Insert(ctx, image); err != nil {
		t.Fatalf("Insert image returned error: %v", err)
	}

	if err := svc.DeleteItem(ctx, ref, policies.Actor{ID: "owner-1"}); err != nil {
		t.Fatalf("DeleteItem returned error: %v", err)
	}

	if _, err := svc.GetItem(ctx, ref); !errors.Is(err, domaincatalog.ErrNotFound) {
		t.Fatalf("expected item gone, got %v", err)
	}
	left, err := svc.Reviews.ListByItem(ctx, ref)
	if err != nil {
		t.Fatalf("ListByItem returned error: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("expected reviews removed, got %d", len(left))
	}
	orphans, err := env.images.ListByEntity(ctx, entity)
	if err != nil {
		t.Fatalf("ListByEntity returned error: %v", err)
	}
	if len(orphans) != 0 {
		t.Fatalf("expected images removed, got %d", len(orphans))
	}
	if len(env.blobs.removed) != 1 {
		t.Fatalf("expected one blob reclaimed, got %d", len(env.blobs.removed))
	}
}

func TestDestinationLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newTestEnv().svc

	destination, err := svc.CreateDestination(ctx, CreateDestinationParams{Name: "Kotor", Country: "Montenegro"})
	if err != nil {
		t.Fatalf("CreateDestination returned error: %v", err)
	}

	all, err := svc.ListDestinations(ctx, 0, 0)
	if err != nil {
		t.Fatalf("ListDestinations returned error: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 destination, got %d", len(all))
	}

	if err := svc.DeleteDestination(ctx, destination.ID, policies.Actor{ID: "u1"}); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner for non-admin delete, got %v", err)
	}
	if err := svc.DeleteDestination(ctx, destination.ID, policies.Actor{ID: "staff", Admin: true}); err != nil {
		t.Fatalf("DeleteDestination returned error: %v", err)
	}
	if _, err := svc.GetDestination(ctx, destination.ID); !errors.Is(err, domaincatalog.ErrDestinationNotFound) {
		t.Fatalf("expected ErrDestinationNotFound, got %v", err)
	}
}
