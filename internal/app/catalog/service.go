package catalog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"wayfarer/internal/app/policies"
	domaincatalog "wayfarer/internal/domain/catalog"
	domainimages "wayfarer/internal/domain/images"
	domainreviews "wayfarer/internal/domain/reviews"
)

var ErrNotOwner = errors.New("catalog: item belongs to another user")

// ImageCascade is the slice of the image service entity deletion needs:
// dropping every attached image, stored blobs included.
type ImageCascade interface {
	DeleteByEntity(ctx context.Context, entity domainimages.EntityRef) error
}

// Service is the owner-scoped CRUD surface over the five item kinds and
// destinations. Deleting an item cascades to its reviews and images.
type Service struct {
	Items        domaincatalog.Stores
	Destinations domaincatalog.DestinationRepository
	Reviews      domainreviews.Repository
	Images       ImageCascade
	Logger       *slog.Logger
}

type CreateItemParams struct {
	Kind          domaincatalog.Kind
	Name          string
	Description   string
	Location      string
	DestinationID string
	Category      string
	Tags          []string
	Highlights    []string
	PriceCents    int64
	OwnerID       string
	Now           time.Time
}

func (s *Service) CreateItem(ctx context.Context, params CreateItemParams) (*domaincatalog.Item, error) {
	store, err := s.Items.Lookup(params.Kind)
	if err != nil {
		return nil, err
	}
	item, err := domaincatalog.NewItem(domaincatalog.CreateItemParams{
		ID:            domaincatalog.ItemID(uuid.NewString()),
		Kind:          params.Kind,
		Name:          params.Name,
		Description:   params.Description,
		Location:      params.Location,
		DestinationID: params.DestinationID,
		Category:      params.Category,
		Tags:          params.Tags,
		Highlights:    params.Highlights,
		PriceCents:    params.PriceCents,
		OwnerID:       params.OwnerID,
		CreatedAt:     params.Now,
	})
	if err != nil {
		return nil, err
	}
	if err := store.Save(ctx, item); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("catalog item created", "item", item.Ref().String(), "owner_id", item.OwnerID)
	}
	return item, nil
}

func (s *Service) GetItem(ctx context.Context, ref domaincatalog.Ref) (*domaincatalog.Item, error) {
	store, err := s.Items.Lookup(ref.Kind)
	if err != nil {
		return nil, err
	}
	return store.ByID(ctx, ref.ItemID)
}

func (s *Service) ListItems(ctx context.Context, kind domaincatalog.Kind, limit, offset int) ([]*domaincatalog.Item, error) {
	store, err := s.Items.Lookup(kind)
	if err != nil {
		return nil, err
	}
	return store.List(ctx, limit, offset)
}

type ItemPatch struct {
	Name        *string
	Description *string
	Location    *string
	Category    *string
	Tags        []string
	Highlights  []string
	PriceCents  *int64
}

// UpdateItem merges owner-editable fields. The rating field is owned by the
// review aggregator and is never touched here.
func (s *Service) UpdateItem(ctx context.Context, ref domaincatalog.Ref, actor policies.Actor, patch ItemPatch, now time.Time) (*domaincatalog.Item, error) {
	store, err := s.Items.Lookup(ref.Kind)
	if err != nil {
		return nil, err
	}
	item, err := store.ByID(ctx, ref.ItemID)
	if err != nil {
		return nil, err
	}
	if !actor.CanActOn(item.OwnerID) {
		return nil, ErrNotOwner
	}
	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Location != nil {
		item.Location = *patch.Location
	}
	if patch.Category != nil {
		item.Category = *patch.Category
	}
	if patch.Tags != nil {
		item.Tags = append([]string(nil), patch.Tags...)
	}
	if patch.Highlights != nil {
		item.Highlights = append([]string(nil), patch.Highlights...)
	}
	if patch.PriceCents != nil {
		item.PriceCents = *patch.PriceCents
	}
	if now.IsZero() {
		now = time.Now()
	}
	item.UpdatedAt = now.UTC()
	if err := store.Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes the item and everything hanging off it: its reviews and
// the images attached to it.
func (s *Service) DeleteItem(ctx context.Context, ref domaincatalog.Ref, actor policies.Actor) error {
	store, err := s.Items.Lookup(ref.Kind)
	if err != nil {
		return err
	}
	item, err := store.ByID(ctx, ref.ItemID)
	if err != nil {
		return err
	}
	if !actor.CanActOn(item.OwnerID) {
		return ErrNotOwner
	}
	if s.Reviews != nil {
		if err := s.Reviews.DeleteByItem(ctx, ref); err != nil {
			return err
		}
	}
	if s.Images != nil {
		entity := domainimages.EntityRef{Type: domainimages.EntityType(ref.Kind), ID: string(ref.ItemID)}
		if err := s.Images.DeleteByEntity(ctx, entity); err != nil {
			return err
		}
	}
	if err := store.Delete(ctx, ref.ItemID); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Info("catalog item deleted", "item", ref.String())
	}
	return nil
}

type CreateDestinationParams struct {
	Name        string
	Country     string
	Description string
	Tags        []string
	Now         time.Time
}

func (s *Service) CreateDestination(ctx context.Context, params CreateDestinationParams) (*domaincatalog.Destination, error) {
	destination, err := domaincatalog.NewDestination(
		domaincatalog.DestinationID(uuid.NewString()),
		params.Name, params.Country, params.Description, params.Tags, params.Now,
	)
	if err != nil {
		return nil, err
	}
	if err := s.Destinations.Save(ctx, destination); err != nil {
		return nil, err
	}
	return destination, nil
}

func (s *Service) GetDestination(ctx context.Context, id domaincatalog.DestinationID) (*domaincatalog.Destination, error) {
	return s.Destinations.ByID(ctx, id)
}

func (s *Service) ListDestinations(ctx context.Context, limit, offset int) ([]*domaincatalog.Destination, error) {
	return s.Destinations.List(ctx, limit, offset)
}

func (s *Service) DeleteDestination(ctx context.Context, id domaincatalog.DestinationID, actor policies.Actor) error {
	if !actor.Admin {
		return ErrNotOwner
	}
	if _, err := s.Destinations.ByID(ctx, id); err != nil {
		return err
	}
	if s.Images != nil {
		entity := domainimages.EntityRef{Type: domainimages.EntityDestination, ID: string(id)}
		if err := s.Images.DeleteByEntity(ctx, entity); err != nil {
			return err
		}
	}
	return s.Destinations.Delete(ctx, id)
}
