package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/scrubline/scrubline-backend-go/database"
	"github.com/scrubline/scrubline-backend-go/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoSettingsRepository struct {
	coll *mongo.Collection
}

func NewMongoSettingsRepository(store *database.Store) *MongoSettingsRepository {
	return &MongoSettingsRepository{coll: store.Collection(database.Settings)}
}

func (r *MongoSettingsRepository) Get(ctx context.Context) (models.Settings, error) {
	var s models.Settings
	err := r.coll.FindOne(ctx, bson.M{"key": models.StoreSettingsKey}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return s, nil
}

func (r *MongoSettingsRepository) Save(ctx context.Context, s models.Settings) (models.Settings, error) {
	s.Key = models.StoreSettingsKey
	s.UpdatedAt = time.Now()
	_, err := r.coll.ReplaceOne(ctx,
		bson.M{"key": models.StoreSettingsKey},
		s,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to save settings: %w", err)
	}
	return s, nil
}
