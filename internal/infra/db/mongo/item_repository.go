package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaincatalog "wayfarer/internal/domain/catalog"
)

// ItemRepository persists one catalog kind in its own collection.
type ItemRepository struct {
	col  *mongo.Collection
	kind domaincatalog.Kind
}

// NewItemStores builds the kind -> store lookup table over per-kind collections.
func NewItemStores(db *mongo.Database) domaincatalog.Stores {
	stores := domaincatalog.Stores{}
	for kind, collection := range map[domaincatalog.Kind]string{
		domaincatalog.KindTrip:       "trips",
		domaincatalog.KindStay:       "stays",
		domaincatalog.KindRestaurant: "restaurants",
		domaincatalog.KindRental:     "rentals",
		domaincatalog.KindActivity:   "activities",
	} {
		stores[kind] = &ItemRepository{col: db.Collection(collection), kind: kind}
	}
	return stores
}

func (r *ItemRepository) ByID(ctx context.Context, id domaincatalog.ItemID) (*domaincatalog.Item, error) {
	var doc itemDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaincatalog.ErrNotFound
		}
		return nil, err
	}
	return doc.toItem(r.kind), nil
}

func (r *ItemRepository) List(ctx context.Context, limit, offset int) ([]*domaincatalog.Item, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []*domaincatalog.Item
	for cursor.Next(ctx) {
		var doc itemDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		items = append(items, doc.toItem(r.kind))
	}
	return items, cursor.Err()
}

func (r *ItemRepository) Save(ctx context.Context, item *domaincatalog.Item) error {
	doc := newItemDocument(item)
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, opts)
	return err
}

func (r *ItemRepository) Delete(ctx context.Context, id domaincatalog.ItemID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domaincatalog.ErrNotFound
	}
	return nil
}

func (r *ItemRepository) UpdateRating(ctx context.Context, id domaincatalog.ItemID, average float64) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": string(id)}, bson.M{"$set": bson.M{
		"average_rating": average,
		"updated_at":     time.Now().UnixMilli(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domaincatalog.ErrNotFound
	}
	return nil
}

type itemDocument struct {
	ID            string   `bson:"_id"`
	Name          string   `bson:"name"`
	Description   string   `bson:"description,omitempty"`
	Location      string   `bson:"location,omitempty"`
	DestinationID string   `bson:"destination_id,omitempty"`
	Category      string   `bson:"category,omitempty"`
	Tags          []string `bson:"tags,omitempty"`
	Highlights    []string `bson:"highlights,omitempty"`
	PriceCents    int64    `bson:"price_cents"`
	AverageRating float64  `bson:"average_rating"`
	OwnerID       string   `bson:"owner_id"`
	CreatedAt     int64    `bson:"created_at"`
	UpdatedAt     int64    `bson:"updated_at"`
}

func newItemDocument(item *domaincatalog.Item) itemDocument {
	return itemDocument{
		ID:            string(item.ID),
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
		CreatedAt:     item.CreatedAt.UnixMilli(),
		UpdatedAt:     item.UpdatedAt.UnixMilli(),
	}
}

func (d itemDocument) toItem(kind domaincatalog.Kind) *domaincatalog.Item {
	return &domaincatalog.Item{
		ID:            domaincatalog.ItemID(d.ID),
		Kind:          kind,
		Name:          d.Name,
		Description:   d.Description,
		Location:      d.Location,
		DestinationID: d.DestinationID,
		Category:      d.Category,
		Tags:          d.Tags,
		Highlights:    d.Highlights,
		PriceCents:    d.PriceCents,
		AverageRating: d.AverageRating,
		OwnerID:       d.OwnerID,
		CreatedAt:     timestampToTime(d.CreatedAt),
		UpdatedAt:     timestampToTime(d.UpdatedAt),
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
