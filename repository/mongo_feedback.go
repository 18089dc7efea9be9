package repository

import (
	"context"
	"fmt"

	"github.com/scrubline/scrubline-backend-go/database"
	"github.com/scrubline/scrubline-backend-go/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoFeedbackRepository struct {
	coll *mongo.Collection
}

func NewMongoFeedbackRepository(store *database.Store) *MongoFeedbackRepository {
	return &MongoFeedbackRepository{coll: store.Collection(database.Feedback)}
}

func (r *MongoFeedbackRepository) Create(ctx context.Context, f *models.Feedback) error {
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, f); err != nil {
		return fmt.Errorf("failed to save feedback: %w", err)
	}
	return nil
}

func (r *MongoFeedbackRepository) List(ctx context.Context, feedbackType string) ([]models.Feedback, error) {
	filter := bson.M{}
	if feedbackType != "" {
		filter["type"] = feedbackType
	}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find feedback: %w", err)
	}
	defer cursor.Close(ctx)

	items := []models.Feedback{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode feedback: %w", err)
	}
	return items, nil
}
