package images

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"wayfarer/internal/app/policies"
	domainimages "wayfarer/internal/domain/images"
)

var ErrNoPayload = errors.New("images: no image payload provided")

// Service stores image binaries in the blob store and their metadata in the
// repository. It owns the single-primary-per-entity rule.
type Service struct {
	Images domainimages.Repository
	Blobs  policies.BlobStore
	Logger *slog.Logger
}

type UploadParams struct {
	OwnerID      string
	Entity       domainimages.EntityRef
	OriginalName string
	ContentType  string
	SizeBytes    int64
	Payload      io.Reader
	IsPrimary    bool
	Tags         []string
	Description  string
	Now          time.Time
}

func (s *Service) Upload(ctx context.Context, params UploadParams) (*domainimages.Image, error) {
	if params.Payload == nil {
		return nil, ErrNoPayload
	}
	id := domainimages.ImageID(uuid.NewString())
	url, err := s.Blobs.Upload(ctx, objectKey(params.Entity, id), params.Payload, params.ContentType)
	if err != nil {
		return nil, err
	}
	image, err := domainimages.New(domainimages.CreateParams{
		ID:           id,
		OwnerID:      params.OwnerID,
		Entity:       params.Entity,
		OriginalName: params.OriginalName,
		ContentType:  params.ContentType,
		SizeBytes:    params.SizeBytes,
		URL:          url,
		IsPrimary:    params.IsPrimary,
		Tags:         params.Tags,
		Description:  params.Description,
		CreatedAt:    params.Now,
	})
	if err != nil {
		return nil, err
	}
	if image.IsPrimary {
		if err := s.Images.UnsetPrimary(ctx, image.Entity); err != nil {
			return nil, err
		}
	}
	if err := s.Images.Insert(ctx, image); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("image uploaded", "image_id", image.ID, "entity_type", image.Entity.Type, "entity_id", image.Entity.ID, "primary", image.IsPrimary)
	}
	return image, nil
}

// UploadMany stores a batch for one entity; the first image becomes primary.
func (s *Service) UploadMany(ctx context.Context, batch []UploadParams) ([]*domainimages.Image, error) {
	if len(batch) == 0 {
		return nil, ErrNoPayload
	}
	out := make([]*domainimages.Image, 0, len(batch))
	for i, params := range batch {
		params.IsPrimary = i == 0
		image, err := s.Upload(ctx, params)
		if err != nil {
			return out, err
		}
		out = append(out, image)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id domainimages.ImageID) (*domainimages.Image, error) {
	return s.Images.ByID(ctx, id)
}

func (s *Service) ListByEntity(ctx context.Context, entity domainimages.EntityRef) ([]*domainimages.Image, error) {
	if _, err := domainimages.ParseEntityType(string(entity.Type)); err != nil {
		return nil, err
	}
	return s.Images.ListByEntity(ctx, entity)
}

type MetadataPatch struct {
	IsPrimary   *bool
	Tags        []string
	Description *string
}

// UpdateMetadata edits flags owned by the uploader (or an admin). Promoting
// an image to primary demotes every other primary of the same entity first.
func (s *Service) UpdateMetadata(ctx context.Context, id domainimages.ImageID, actor policies.Actor, patch MetadataPatch, now time.Time) (*domainimages.Image, error) {
	image, err := s.Images.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanActOn(image.OwnerID) {
		return nil, domainimages.ErrNotOwner
	}
	if patch.IsPrimary != nil && *patch.IsPrimary && !image.IsPrimary {
		if err := s.Images.UnsetPrimary(ctx, image.Entity); err != nil {
			return nil, err
		}
	}
	if patch.IsPrimary != nil {
		image.IsPrimary = *patch.IsPrimary
	}
	if patch.Tags != nil {
		image.Tags = append([]string(nil), patch.Tags...)
	}
	if patch.Description != nil {
		image.Description = *patch.Description
	}
	if now.IsZero() {
		now = time.Now()
	}
	image.UpdatedAt = now.UTC()
	if err := s.Images.Save(ctx, image); err != nil {
		return nil, err
	}
	return image, nil
}

func (s *Service) Delete(ctx context.Context, id domainimages.ImageID, actor policies.Actor) error {
	image, err := s.Images.ByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanActOn(image.OwnerID) {
		return domainimages.ErrNotOwner
	}
	if err := s.Images.Delete(ctx, id); err != nil {
		return err
	}
	s.removeBlob(ctx, image)
	return nil
}

// DeleteByEntity removes every image attached to the entity, blobs included.
// Cascades from item and destination deletes land here.
func (s *Service) DeleteByEntity(ctx context.Context, entity domainimages.EntityRef) error {
	all, err := s.Images.ListByEntity(ctx, entity)
	if err != nil {
		return err
	}
	for _, image := range all {
		s.removeBlob(ctx, image)
	}
	return s.Images.DeleteByEntity(ctx, entity)
}

// DeleteByIDs removes a known set of images, blobs included. Missing ids are
// skipped so a half-finished earlier cascade can be retried.
func (s *Service) DeleteByIDs(ctx context.Context, ids []domainimages.ImageID) error {
	for _, id := range ids {
		image, err := s.Images.ByID(ctx, id)
		if err != nil {
			if errors.Is(err, domainimages.ErrNotFound) {
				continue
			}
			return err
		}
		s.removeBlob(ctx, image)
	}
	return s.Images.DeleteByIDs(ctx, ids)
}

// removeBlob is best-effort: the metadata row is already gone or about to go,
// and an unreachable bucket must not fail the caller's delete.
func (s *Service) removeBlob(ctx context.Context, image *domainimages.Image) {
	if s.Blobs == nil {
		return
	}
	if err := s.Blobs.Remove(ctx, objectKey(image.Entity, image.ID)); err != nil && s.Logger != nil {
		s.Logger.Warn("blob removal failed", "image_id", image.ID, "error", err)
	}
}

func objectKey(entity domainimages.EntityRef, id domainimages.ImageID) string {
	return string(entity.Type) + "/" + entity.ID + "/" + string(id)
}
