package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/scrubline/scrubline-backend-go/database"
	"github.com/scrubline/scrubline-backend-go/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoAddressRepository struct {
	coll *mongo.Collection
}

func NewMongoAddressRepository(store *database.Store) *MongoAddressRepository {
	return &MongoAddressRepository{coll: store.Collection(database.Addresses)}
}

// ListByUser returns the addresses oldest first. Promotion after a delete
// relies on this order.
func (r *MongoAddressRepository) ListByUser(ctx context.Context, userID string) ([]models.Address, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find addresses: %w", err)
	}
	defer cursor.Close(ctx)

	addresses := []models.Address{}
	if err := cursor.All(ctx, &addresses); err != nil {
		return nil, fmt.Errorf("failed to decode addresses: %w", err)
	}
	return addresses, nil
}

func (r *MongoAddressRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.Address, error) {
	var addr models.Address
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&addr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find address: %w", err)
	}
	return &addr, nil
}

func (r *MongoAddressRepository) Insert(ctx context.Context, addr *models.Address) error {
	if addr.ID.IsZero() {
		addr.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, addr); err != nil {
		return fmt.Errorf("failed to insert address: %w", err)
	}
	return nil
}

func (r *MongoAddressRepository) Update(ctx context.Context, id primitive.ObjectID, fields Fields) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return fmt.Errorf("failed to update address: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoAddressRepository) UnsetPrimary(ctx context.Context, userID string) error {
	_, err := r.coll.UpdateMany(ctx,
		bson.M{"userId": userID, "primary": true},
		bson.M{"$set": bson.M{"primary": false, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to clear primary address: %w", err)
	}
	return nil
}

func (r *MongoAddressRepository) SetPrimary(ctx context.Context, id primitive.ObjectID) error {
	return r.Update(ctx, id, Fields{"primary": true, "updatedAt": time.Now()})
}

func (r *MongoAddressRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
