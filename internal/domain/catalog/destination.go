package catalog

import (
	"context"
	"errors"
	"strings"
	"time"
)

var ErrDestinationNotFound = errors.New("catalog: destination not found")

type DestinationID string

// Destination groups catalog items by place. It is not reviewable or
// bookable itself; images may attach to it.
type Destination struct {
	ID          DestinationID
	Name        string
	Country     string
	Description string
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type DestinationRepository interface {
	ByID(ctx context.Context, id DestinationID) (*Destination, error)
	List(ctx context.Context, limit, offset int) ([]*Destination, error)
	Save(ctx context.Context, destination *Destination) error
	Delete(ctx context.Context, id DestinationID) error
}

func NewDestination(id DestinationID, name, country, description string, tags []string, now time.Time) (*Destination, error) {
	if strings.TrimSpace(string(id)) == "" {
		return nil, ErrIDRequired
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Destination{
		ID:          id,
		Name:        name,
		Country:     strings.TrimSpace(country),
		Description: strings.TrimSpace(description),
		Tags:        append([]string(nil), tags...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
