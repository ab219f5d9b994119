package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaincatalog "wayfarer/internal/domain/catalog"
)

type DestinationRepository struct {
	col *mongo.Collection
}

func NewDestinationRepository(db *mongo.Database) *DestinationRepository {
	return &DestinationRepository{col: db.Collection("destinations")}
}

func (r *DestinationRepository) ByID(ctx context.Context, id domaincatalog.DestinationID) (*domaincatalog.Destination, error) {
	var doc destinationDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaincatalog.ErrDestinationNotFound
		}
		return nil, err
	}
	return doc.toDestination(), nil
}

func (r *DestinationRepository) List(ctx context.Context, limit, offset int) ([]*domaincatalog.Destination, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
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

	var destinations []*domaincatalog.Destination
	for cursor.Next(ctx) {
		var doc destinationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		destinations = append(destinations, doc.toDestination())
	}
	return destinations, cursor.Err()
}

func (r *DestinationRepository) Save(ctx context.Context, destination *domaincatalog.Destination) error {
	doc := newDestinationDocument(destination)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *DestinationRepository) Delete(ctx context.Context, id domaincatalog.DestinationID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domaincatalog.ErrDestinationNotFound
	}
	return nil
}

type destinationDocument struct {
	ID          string   `bson:"_id"`
	Name        string   `bson:"name"`
	Country     string   `bson:"country,omitempty"`
	Description string   `bson:"description,omitempty"`
	Tags        []string `bson:"tags,omitempty"`
	CreatedAt   int64    `bson:"created_at"`
	UpdatedAt   int64    `bson:"updated_at"`
}

func newDestinationDocument(destination *domaincatalog.Destination) destinationDocument {
	return destinationDocument{
		ID:          string(destination.ID),
		Name:        destination.Name,
		Country:     destination.Country,
		Description: destination.Description,
		Tags:        destination.Tags,
		CreatedAt:   destination.CreatedAt.UnixMilli(),
		UpdatedAt:   destination.UpdatedAt.UnixMilli(),
	}
}

func (d destinationDocument) toDestination() *domaincatalog.Destination {
	return &domaincatalog.Destination{
		ID:          domaincatalog.DestinationID(d.ID),
		Name:        d.Name,
		Country:     d.Country,
		Description: d.Description,
		Tags:        d.Tags,
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
	}
}
