package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/scrubline/scrubline-backend-go/database"
	"github.com/scrubline/scrubline-backend-go/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoReviewRepository struct {
	coll *mongo.Collection
}

func NewMongoReviewRepository(store *database.Store) *MongoReviewRepository {
	return &MongoReviewRepository{coll: store.Collection(database.Reviews)}
}

func (r *MongoReviewRepository) Upsert(ctx context.Context, rv *models.Review) (bool, error) {
	now := time.Now()
	filter := bson.M{
		"productId": rv.ProductID,
		"userId":    rv.UserID,
		"orderId":   rv.OrderID,
	}
	set := bson.M{
		"username":  rv.Username,
		"rating":    rv.Rating,
		"comment":   rv.Comment,
		"updatedAt": now,
	}
	if rv.Image != "" {
		set["image"] = rv.Image
	}

	res, err := r.coll.UpdateOne(ctx, filter,
		bson.M{"$set": set, "$setOnInsert": bson.M{"createdAt": now}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, fmt.Errorf("failed to save review: %w", err)
	}
	rv.UpdatedAt = now
	if res.UpsertedCount > 0 {
		if id, ok := res.UpsertedID.(primitive.ObjectID); ok {
			rv.ID = id
		}
		rv.CreatedAt = now
		return true, nil
	}

	var existing struct {
		ID        primitive.ObjectID `bson:"_id"`
		CreatedAt time.Time          `bson:"createdAt"`
	}
	opts := options.FindOne().SetProjection(bson.M{"_id": 1, "createdAt": 1})
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&existing); err != nil {
		return false, fmt.Errorf("failed to load review: %w", err)
	}
	rv.ID = existing.ID
	rv.CreatedAt = existing.CreatedAt
	return false, nil
}

func (r *MongoReviewRepository) ListByProduct(ctx context.Context, productID string) ([]models.Review, error) {
	return r.list(ctx, bson.M{"productId": productID})
}

func (r *MongoReviewRepository) ListByUser(ctx context.Context, userID string) ([]models.Review, error) {
	return r.list(ctx, bson.M{"userId": userID})
}

func (r *MongoReviewRepository) list(ctx context.Context, filter bson.M) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	return reviews, nil
}
