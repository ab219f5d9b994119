package dto

import (
	"time"

	domainimages "wayfarer/internal/domain/images"
)

// Image is the public image metadata payload. The binary itself is served
// from object storage via URL.
type Image struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	EntityType   string    `json:"entity_type"`
	EntityID     string    `json:"entity_id"`
	OriginalName string    `json:"original_name"`
	ContentType  string    `json:"content_type"`
	SizeBytes    int64     `json:"size_bytes"`
	URL          string    `json:"url"`
	IsPrimary    bool      `json:"is_primary"`
	Tags         []string  `json:"tags,omitempty"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ImageCollection struct {
	Items []Image `json:"items"`
	Total int     `json:"total"`
}

func MapImage(image *domainimages.Image) Image {
	if image == nil {
		return Image{}
	}
	return Image{
		ID:           string(image.ID),
		OwnerID:      image.OwnerID,
		EntityType:   string(image.Entity.Type),
		EntityID:     image.Entity.ID,
		OriginalName: image.OriginalName,
		ContentType:  image.ContentType,
		SizeBytes:    image.SizeBytes,
		URL:          image.URL,
		IsPrimary:    image.IsPrimary,
		Tags:         image.Tags,
		Description:  image.Description,
		CreatedAt:    image.CreatedAt,
		UpdatedAt:    image.UpdatedAt,
	}
}

func MapImages(images []*domainimages.Image) ImageCollection {
	out := ImageCollection{Items: make([]Image, 0, len(images))}
	for _, image := range images {
		out.Items = append(out.Items, MapImage(image))
	}
	out.Total = len(out.Items)
	return out
}
