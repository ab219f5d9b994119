package dto

import (
	"time"

	domaincatalog "wayfarer/internal/domain/catalog"
)

// Item is the public catalog payload.
type Item struct {
	ID            string    `json:"id"`
	Kind          string    `json:"kind"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Location      string    `json:"location,omitempty"`
	DestinationID string    `json:"destination_id,omitempty"`
	Category      string    `json:"category,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	Highlights    []string  `json:"highlights,omitempty"`
	PriceCents    int64     `json:"price_cents"`
	AverageRating float64   `json:"average_rating"`
	OwnerID       string    `json:"owner_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ItemCollection struct {
	Items []Item `json:"items"`
	Total int    `json:"total"`
}

func MapItem(item *domaincatalog.Item) Item {
	if item == nil {
		return Item{}
	}
	return Item{
		ID:            string(item.ID),
		Kind:          string(item.Kind),
		Name:          item.Name,
		Description:   item.Description,
		Location:      item.Location,
		DestinationID: item.DestinationID,
		Category:      item.Category,
		Tags:          item.Tags,
		Highlights:    item.Highlights,
		PriceCents:    item.PriceCents,
		AverageRating: item.AverageRating,
		OwnerID:       item.OwnerID,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
}

func MapItems(items []*domaincatalog.Item) ItemCollection {
	out := ItemCollection{Items: make([]Item, 0, len(items))}
	for _, item := range items {
		out.Items = append(out.Items, MapItem(item))
	}
	out.Total = len(out.Items)
	return out
}

type Destination struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Country     string    `json:"country,omitempty"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func MapDestination(d *domaincatalog.Destination) Destination {
	if d == nil {
		return Destination{}
	}
	return Destination{
		ID:          string(d.ID),
		Name:        d.Name,
		Country:     d.Country,
		Description: d.Description,
		Tags:        d.Tags,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
