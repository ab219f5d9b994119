package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainimages "wayfarer/internal/domain/images"
)

type ImageRepository struct {
	col *mongo.Collection
}

func NewImageRepository(db *mongo.Database) *ImageRepository {
	return &ImageRepository{col: db.Collection("images")}
}

func (r *ImageRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "entity_type", Value: 1}, {Key: "entity_id", Value: 1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
	})
	return err
}

func (r *ImageRepository) ByID(ctx context.Context, id domainimages.ImageID) (*domainimages.Image, error) {
	var doc imageDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainimages.ErrNotFound
		}
		return nil, err
	}
	return doc.toImage(), nil
}

func (r *ImageRepository) ListByEntity(ctx context.Context, entity domainimages.EntityRef) ([]*domainimages.Image, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "is_primary", Value: -1},
		{Key: "created_at", Value: -1},
	})
	cursor, err := r.col.Find(ctx, entityFilter(entity), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var images []*domainimages.Image
	for cursor.Next(ctx) {
		var doc imageDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		images = append(images, doc.toImage())
	}
	return images, cursor.Err()
}

func (r *ImageRepository) Insert(ctx context.Context, image *domainimages.Image) error {
	_, err := r.col.InsertOne(ctx, newImageDocument(image))
	return err
}

func (r *ImageRepository) Save(ctx context.Context, image *domainimages.Image) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": string(image.ID)}, newImageDocument(image))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainimages.ErrNotFound
	}
	return nil
}

func (r *ImageRepository) Delete(ctx context.Context, id domainimages.ImageID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainimages.ErrNotFound
	}
	return nil
}

func (r *ImageRepository) DeleteByIDs(ctx context.Context, ids []domainimages.ImageID) error {
	if len(ids) == 0 {
		return nil
	}
	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, string(id))
	}
	_, err := r.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": raw}})
	return err
}

func (r *ImageRepository) DeleteByEntity(ctx context.Context, entity domainimages.EntityRef) error {
	_, err := r.col.DeleteMany(ctx, entityFilter(entity))
	return err
}

func (r *ImageRepository) UnsetPrimary(ctx context.Context, entity domainimages.EntityRef) error {
	filter := entityFilter(entity)
	filter["is_primary"] = true
	_, err := r.col.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"is_primary": false}})
	return err
}

func entityFilter(entity domainimages.EntityRef) bson.M {
	return bson.M{"entity_type": string(entity.Type), "entity_id": entity.ID}
}

type imageDocument struct {
	ID           string   `bson:"_id"`
	OwnerID      string   `bson:"owner_id"`
	EntityType   string   `bson:"entity_type"`
	EntityID     string   `bson:"entity_id"`
	OriginalName string   `bson:"original_name"`
	ContentType  string   `bson:"content_type"`
	SizeBytes    int64    `bson:"size_bytes"`
	URL          string   `bson:"url"`
	IsPrimary    bool     `bson:"is_primary"`
	Tags         []string `bson:"tags,omitempty"`
	Description  string   `bson:"description,omitempty"`
	CreatedAt    int64    `bson:"created_at"`
	UpdatedAt    int64    `bson:"updated_at"`
}

func newImageDocument(image *domainimages.Image) imageDocument {
	return imageDocument{
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
		CreatedAt:    image.CreatedAt.UnixMilli(),
		UpdatedAt:    image.UpdatedAt.UnixMilli(),
	}
}

func (d imageDocument) toImage() *domainimages.Image {
	return &domainimages.Image{
		ID:           domainimages.ImageID(d.ID),
		OwnerID:      d.OwnerID,
		Entity:       domainimages.EntityRef{Type: domainimages.EntityType(d.EntityType), ID: d.EntityID},
		OriginalName: d.OriginalName,
		ContentType:  d.ContentType,
		SizeBytes:    d.SizeBytes,
		URL:          d.URL,
		IsPrimary:    d.IsPrimary,
		Tags:         d.Tags,
		Description:  d.Description,
		CreatedAt:    timestampToTime(d.CreatedAt),
		UpdatedAt:    timestampToTime(d.UpdatedAt),
	}
}
