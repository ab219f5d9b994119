package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaincatalog "wayfarer/internal/domain/catalog"
	domainreviews "wayfarer/internal/domain/reviews"
)

type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{col: db.Collection("reviews")}
}

// EnsureIndexes creates the compound unique index that closes the
// check-then-write race on duplicate reviews, plus the item lookup index.
func (r *ReviewRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "reviewer_id", Value: 1},
				{Key: "item_type", Value: 1},
				{Key: "item_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "item_type", Value: 1},
				{Key: "item_id", Value: 1},
			},
		},
	})
	return err
}

func (r *ReviewRepository) ByID(ctx context.Context, id domainreviews.ReviewID) (*domainreviews.Review, error) {
	var doc reviewDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainreviews.ErrNotFound
		}
		return nil, err
	}
	return doc.toReview(), nil
}

func (r *ReviewRepository) ByReviewer(ctx context.Context, reviewerID string, item domaincatalog.Ref) (*domainreviews.Review, error) {
	filter := bson.M{
		"reviewer_id": reviewerID,
		"item_type":   string(item.Kind),
		"item_id":     string(item.ItemID),
	}
	var doc reviewDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainreviews.ErrNotFound
		}
		return nil, err
	}
	return doc.toReview(), nil
}

func (r *ReviewRepository) ListByItem(ctx context.Context, item domaincatalog.Ref) ([]*domainreviews.Review, error) {
	filter := bson.M{"item_type": string(item.Kind), "item_id": string(item.ItemID)}
	return r.list(ctx, filter)
}

func (r *ReviewRepository) ListByReviewer(ctx context.Context, reviewerID string) ([]*domainreviews.Review, error) {
	return r.list(ctx, bson.M{"reviewer_id": reviewerID})
}

func (r *ReviewRepository) list(ctx context.Context, filter bson.M) ([]*domainreviews.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reviews []*domainreviews.Review
	for cursor.Next(ctx) {
		var doc reviewDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		reviews = append(reviews, doc.toReview())
	}
	return reviews, cursor.Err()
}

func (r *ReviewRepository) Insert(ctx context.Context, review *domainreviews.Review) error {
	_, err := r.col.InsertOne(ctx, newReviewDocument(review))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainreviews.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *ReviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	doc := newReviewDocument(review)
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainreviews.ErrNotFound
	}
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id domainreviews.ReviewID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainreviews.ErrNotFound
	}
	return nil
}

func (r *ReviewRepository) DeleteByItem(ctx context.Context, item domaincatalog.Ref) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"item_type": string(item.Kind), "item_id": string(item.ItemID)})
	return err
}

type reviewDocument struct {
	ID         string   `bson:"_id"`
	ReviewerID string   `bson:"reviewer_id"`
	ItemType   string   `bson:"item_type"`
	ItemID     string   `bson:"item_id"`
	Rating     int      `bson:"rating"`
	Comment    string   `bson:"comment,omitempty"`
	ImageIDs   []string `bson:"image_ids,omitempty"`
	CreatedAt  int64    `bson:"created_at"`
	UpdatedAt  int64    `bson:"updated_at"`
}

func newReviewDocument(review *domainreviews.Review) reviewDocument {
	return reviewDocument{
		ID:         string(review.ID),
		ReviewerID: review.ReviewerID,
		ItemType:   string(review.Item.Kind),
		ItemID:     string(review.Item.ItemID),
		Rating:     review.Rating,
		Comment:    review.Comment,
		ImageIDs:   review.ImageIDs,
		CreatedAt:  review.CreatedAt.UnixMilli(),
		UpdatedAt:  review.UpdatedAt.UnixMilli(),
	}
}

func (d reviewDocument) toReview() *domainreviews.Review {
	return &domainreviews.Review{
		ID:         domainreviews.ReviewID(d.ID),
		ReviewerID: d.ReviewerID,
		Item: domaincatalog.Ref{
			Kind:   domaincatalog.Kind(d.ItemType),
			ItemID: domaincatalog.ItemID(d.ItemID),
		},
		Rating:    d.Rating,
		Comment:   d.Comment,
		ImageIDs:  d.ImageIDs,
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
	}
}
