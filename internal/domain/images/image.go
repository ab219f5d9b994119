package images

import (
	"context"
	"errors"
	"strings"
	"time"

	"wayfarer/internal/domain/catalog"
)

var (
	ErrUnknownEntityType = errors.New("images: unknown entity type")
	ErrNotFound          = errors.New("images: not found")
	ErrNotOwner          = errors.New("images: image belongs to another user")
	ErrNameRequired      = errors.New("images: original file name is required")
	ErrOwnerRequired     = errors.New("images: uploader is required")
)

// EntityType names an attachment point. It covers the five catalog kinds
// plus the image-only targets.
type EntityType string

const (
	EntityDestination EntityType = "destination"
	EntityUser        EntityType = "user"
	EntityReview      EntityType = "review"
)

// ParseEntityType accepts any catalog kind or one of the image-only targets.
func ParseEntityType(raw string) (EntityType, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if _, err := catalog.ParseKind(normalized); err == nil {
		return EntityType(normalized), nil
	}
	switch EntityType(normalized) {
	case EntityDestination, EntityUser, EntityReview:
		return EntityType(normalized), nil
	default:
		return "", ErrUnknownEntityType
	}
}

// EntityRef is the polymorphic attachment point of an image.
type EntityRef struct {
	Type EntityType
	ID   string
}

type ImageID string

// Image holds upload metadata; the binary lives in object storage behind URL.
type Image struct {
	ID           ImageID
	OwnerID      string
	Entity       EntityRef
	OriginalName string
	ContentType  string
	SizeBytes    int64
	URL          string
	IsPrimary    bool
	Tags         []string
	Description  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ImageID) (*Image, error)
	// ListByEntity returns an entity's images, primary first, newest next.
	ListByEntity(ctx context.Context, entity EntityRef) ([]*Image, error)
	Insert(ctx context.Context, image *Image) error
	Save(ctx context.Context, image *Image) error
	Delete(ctx context.Context, id ImageID) error
	DeleteByIDs(ctx context.Context, ids []ImageID) error
	DeleteByEntity(ctx context.Context, entity EntityRef) error
	// UnsetPrimary clears the primary flag on every image of the entity.
	UnsetPrimary(ctx context.Context, entity EntityRef) error
}

type CreateParams struct {
	ID           ImageID
	OwnerID      string
	Entity       EntityRef
	OriginalName string
	ContentType  string
	SizeBytes    int64
	URL          string
	IsPrimary    bool
	Tags         []string
	Description  string
	CreatedAt    time.Time
}

func New(params CreateParams) (*Image, error) {
	if _, err := ParseEntityType(string(params.Entity.Type)); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Entity.ID) == "" {
		return nil, errors.New("images: entity id is required")
	}
	if strings.TrimSpace(params.OriginalName) == "" {
		return nil, ErrNameRequired
	}
	if strings.TrimSpace(params.OwnerID) == "" {
		return nil, ErrOwnerRequired
	}
	contentType := strings.TrimSpace(params.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Image{
		ID:           params.ID,
		OwnerID:      params.OwnerID,
		Entity:       params.Entity,
		OriginalName: strings.TrimSpace(params.OriginalName),
		ContentType:  contentType,
		SizeBytes:    params.SizeBytes,
		URL:          params.URL,
		IsPrimary:    params.IsPrimary,
		Tags:         append([]string(nil), params.Tags...),
		Description:  strings.TrimSpace(params.Description),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (i *Image) OwnedBy(userID string) bool {
	return i.OwnerID == userID
}
