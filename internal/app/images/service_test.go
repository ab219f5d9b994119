package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"wayfarer/internal/app/policies"
	domainimages "wayfarer/internal/domain/images"
	"wayfarer/internal/infra/storage/memory"
)

type fakeBlobStore struct {
	uploads []string
	removed []string
	fail    bool
}

func (f *fakeBlobStore) Upload(_ context.Context, key string, reader io.Reader, _ string) (string, error) {
	if f.fail {
		return "", errors.New("blob store down")
	}
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	f.uploads = append(f.uploads, key)
	return "https://cdn.example.test/" + key, nil
}

func (f *fakeBlobStore) Remove(_ context.Context, key string) error {
	f.removed = append(f.removed, key)
	return nil
}

func newTestService() (*Service, *fakeBlobStore) {
	blobs := &fakeBlobStore{}
	return &Service{Images: memory.NewImageRepository(), Blobs: blobs}, blobs
}

func uploadParams(owner string, entity domainimages.EntityRef, name string) UploadParams {
	return UploadParams{
		OwnerID:      owner,
		Entity:       entity,
		OriginalName: name,
		ContentType:  "image/jpeg",
		SizeBytes:    int64(len(name)),
		Payload:      strings.NewReader(name),
		Now:          time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestUploadStoresBlobAndMetadata(t *testing.T) {
	ctx := context.Background()
	svc, blobs := newTestService()
	entity := domainimages.EntityRef{Type: domainimages.EntityType("stay"), ID: "stay-1"}

	image, err := svc.Upload(ctx, uploadParams("u1", entity, "front.jpg"))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if image.URL == "" || !strings.HasPrefix(image.URL, "https://cdn.example.test/stay/stay-1/") {
		t.Fatalf("unexpected url %q", image.URL)
	}
	if len(blobs.uploads) != 1 {
		t.Fatalf("expected one blob upload, got %d", len(blobs.uploads))
	}

	stored, err := svc.Get(ctx, image.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if stored.OriginalName != "front.jpg" || stored.OwnerID != "u1" {
		t.Fatalf("metadata not persisted: %+v", stored)
	}
}

func TestUploadRejectsMissingPayload(t *testing.T) {
	svc, _ := newTestService()
	params := uploadParams("u1", domainimages.EntityRef{Type: domainimages.EntityUser, ID: "u1"}, "avatar.png")
	params.Payload = nil
	if _, err := svc.Upload(context.Background(), params); !errors.Is(err, ErrNoPayload) {
		t.Fatalf("expected ErrNoPayload, got %v", err)
	}
}

func TestSinglePrimaryInvariant(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	entity := domainimages.EntityRef{Type: domainimages.EntityType("trip"), ID: "trip-1"}

	first := uploadParams("u1", entity, "one.jpg")
	first.IsPrimary = true
	a, err := svc.Upload(ctx, first)
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	second := uploadParams("u1", entity, "two.jpg")
	second.IsPrimary = true
	b, err := svc.Upload(ctx, second)
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	all, err := svc.ListByEntity(ctx, entity)
	if err != nil {
		t.Fatalf("ListByEntity returned error: %v", err)
	}
	primaries := 0
	for _, image := range all {
		if image.IsPrimary {
			primaries++
			if image.ID != b.ID {
				t.Fatalf("expected %s to be primary, got %s", b.ID, image.ID)
			}
		}
	}
	if primaries != 1 {
		t.Fatalf("expected exactly one primary, got %d", primaries)
	}
	if all[0].ID != b.ID {
		t.Fatal("expected primary image listed first")
	}

	// Promoting the demoted image hands the flag back.
	yes := true
	if _, err := svc.UpdateMetadata(ctx, a.ID, policies.Actor{ID: "u1"}, MetadataPatch{IsPrimary: &yes}, time.Now()); err != nil {
		t.Fatalf("UpdateMetadata returned error: %v", err)
	}
	all, err = svc.ListByEntity(ctx, entity)
	if err != nil {
		t.Fatalf("ListByEntity returned error: %v", err)
	}
	primaries = 0
	for _, image := range all {
		if image.IsPrimary {
			primaries++
			if image.ID != a.ID {
				t.Fatalf("expected %s primary after promotion, got %s", a.ID, image.ID)
			}
		}
	}
	if primaries != 1 {
		t.Fatalf("expected exactly one primary after promotion, got %d", primaries)
	}
}

func TestUploadManyMarksFirstPrimary(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	entity := domainimages.EntityRef{Type: domainimages.EntityType("restaurant"), ID: "r-1"}

	batch := make([]UploadParams, 0, 3)
	for i := 0; i < 3; i++ {
		batch = append(batch, uploadParams("u1", entity, fmt.Sprintf("photo-%d.jpg", i)))
	}
	uploaded, err := svc.UploadMany(ctx, batch)
	if err != nil {
		t.Fatalf("UploadMany returned error: %v", err)
	}
	if len(uploaded) != 3 {
		t.Fatalf("expected 3 uploads, got %d", len(uploaded))
	}
	if !uploaded[0].IsPrimary || uploaded[1].IsPrimary || uploaded[2].IsPrimary {
		t.Fatal("expected only the first upload to be primary")
	}

	if _, err := svc.UploadMany(ctx, nil); !errors.Is(err, ErrNoPayload) {
		t.Fatalf("expected ErrNoPayload for empty batch, got %v", err)
	}
}

func TestUpdateMetadataOwnership(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	entity := domainimages.EntityRef{Type: domainimages.EntityReview, ID: "rev-1"}

	image, err := svc.Upload(ctx, uploadParams("u1", entity, "snap.jpg"))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	description := "sunset from the deck"
	if _, err := svc.UpdateMetadata(ctx, image.ID, policies.Actor{ID: "u2"}, MetadataPatch{Description: &description}, time.Now()); !errors.Is(err, domainimages.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	updated, err := svc.UpdateMetadata(ctx, image.ID, policies.Actor{ID: "admin", Admin: true}, MetadataPatch{Description: &description, Tags: []string{"sunset"}}, time.Now())
	if err != nil {
		t.Fatalf("UpdateMetadata (admin) returned error: %v", err)
	}
	if updated.Description != description || len(updated.Tags) != 1 {
		t.Fatalf("patch not applied: %+v", updated)
	}
}

func TestDeleteByEntityReclaimsBlobs(t *testing.T) {
	ctx := context.Background()
	svc, blobs := newTestService()
	entity := domainimages.EntityRef{Type: domainimages.EntityType("rental"), ID: "rental-1"}

	for _, name := range []string{"front.jpg", "side.jpg"} {
		if _, err := svc.Upload(ctx, uploadParams("u1", entity, name)); err != nil {
			t.Fatalf("Upload returned error: %v", err)
		}
	}
	other := domainimages.EntityRef{Type: domainimages.EntityType("rental"), ID: "rental-2"}
	kept, err := svc.Upload(ctx, uploadParams("u1", other, "keep.jpg"))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	if err := svc.DeleteByEntity(ctx, entity); err != nil {
		t.Fatalf("DeleteByEntity returned error: %v", err)
	}
	left, err := svc.ListByEntity(ctx, entity)
	if err != nil {
		t.Fatalf("ListByEntity returned error: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("expected no images left, got %d", len(left))
	}
	if len(blobs.removed) != 2 {
		t.Fatalf("expected 2 blobs reclaimed, got %d", len(blobs.removed))
	}
	if _, err := svc.Get(ctx, kept.ID); err != nil {
		t.Fatalf("image of another entity was removed: %v", err)
	}
}

func TestDeleteByIDsSkipsMissing(t *testing.T) {
	ctx := context.Background()
	svc, blobs := newTestService()
	entity := domainimages.EntityRef{Type: domainimages.EntityReview, ID: "rev-7"}

	image, err := svc.Upload(ctx, uploadParams("u1", entity, "snap.jpg"))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	if err := svc.DeleteByIDs(ctx, []domainimages.ImageID{image.ID, "ghost"}); err != nil {
		t.Fatalf("DeleteByIDs returned error: %v", err)
	}
	if _, err := svc.Get(ctx, image.ID); !errors.Is(err, domainimages.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if len(blobs.removed) != 1 {
		t.Fatalf("expected 1 blob reclaimed, got %d", len(blobs.removed))
	}
}

func TestDeleteRemovesBlob(t *testing.T) {
	ctx := context.Background()
	svc, blobs := newTestService()
	entity := domainimages.EntityRef{Type: domainimages.EntityDestination, ID: "dest-1"}

	image, err := svc.Upload(ctx, uploadParams("u1", entity, "pier.jpg"))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if err := svc.Delete(ctx, image.ID, policies.Actor{ID: "u2"}); !errors.Is(err, domainimages.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if err := svc.Delete(ctx, image.ID, policies.Actor{ID: "u1"}); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := svc.Get(ctx, image.ID); !errors.Is(err, domainimages.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if len(blobs.removed) != 1 {
		t.Fatalf("expected one blob removal, got %d", len(blobs.removed))
	}
}
