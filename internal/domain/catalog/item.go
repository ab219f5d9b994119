package catalog

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrIDRequired    = errors.New("catalog: item id is required")
	ErrNameRequired  = errors.New("catalog: item name is required")
	ErrOwnerRequired = errors.New("catalog: item owner is required")
	ErrNotFound      = errors.New("catalog: item not found")
)

type ItemID string

// Item is a bookable catalog entry. All five kinds share the same shape;
// the kind tag selects the backing collection.
type Item struct {
	ID            ItemID
	Kind          Kind
	Name          string
	Description   string
	Location      string
	DestinationID string
	Category      string
	Tags          []string
	Highlights    []string
	PriceCents    int64
	AverageRating float64
	OwnerID       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Store is the per-kind persistence contract.
type Store interface {
	ByID(ctx context.Context, id ItemID) (*Item, error)
	List(ctx context.Context, limit, offset int) ([]*Item, error)
	Save(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id ItemID) error
	// UpdateRating writes only the averageRating field.
	UpdateRating(ctx context.Context, id ItemID, average float64) error
}

// Stores is the static kind -> store lookup table. A miss here means the
// caller supplied an unknown type tag, not that an item is absent.
type Stores map[Kind]Store

func (s Stores) Lookup(kind Kind) (Store, error) {
	store, ok := s[kind]
	if !ok {
		return nil, ErrUnknownKind
	}
	return store, nil
}

type CreateItemParams struct {
	ID            ItemID
	Kind          Kind
	Name          string
	Description   string
	Location      string
	DestinationID string
	Category      string
	Tags          []string
	Highlights    []string
	PriceCents    int64
	OwnerID       string
	CreatedAt     time.Time
}

func NewItem(params CreateItemParams) (*Item, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	if !params.Kind.Valid() {
		return nil, ErrUnknownKind
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if strings.TrimSpace(params.OwnerID) == "" {
		return nil, ErrOwnerRequired
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Item{
		ID:            ItemID(id),
		Kind:          params.Kind,
		Name:          name,
		Description:   strings.TrimSpace(params.Description),
		Location:      strings.TrimSpace(params.Location),
		DestinationID: strings.TrimSpace(params.DestinationID),
		Category:      strings.TrimSpace(params.Category),
		Tags:          append([]string(nil), params.Tags...),
		Highlights:    append([]string(nil), params.Highlights...),
		PriceCents:    params.PriceCents,
		OwnerID:       params.OwnerID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (i *Item) Ref() Ref {
	return Ref{Kind: i.Kind, ItemID: i.ID}
}
