package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/scrubline/scrubline-backend-go/database"
	"github.com/scrubline/scrubline-backend-go/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoWishlistRepository struct {
	coll *mongo.Collection
}

func NewMongoWishlistRepository(store *database.Store) *MongoWishlistRepository {
	return &MongoWishlistRepository{coll: store.Collection(database.Wishlists)}
}

func (r *MongoWishlistRepository) FindByEmail(ctx context.Context, email string) (*models.Wishlist, error) {
	var raw bson.M
	filter := bson.M{"email": EmailPattern(email)}
	if err := r.coll.FindOne(ctx, filter).Decode(&raw); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find wishlist: %w", err)
	}
	w := models.DecodeWishlist(raw)
	return &w, nil
}

func (r *MongoWishlistRepository) Create(ctx context.Context, w *models.Wishlist) error {
	if w.ID.IsZero() {
		w.ID = primitive.NewObjectID()
	}
	if w.Items == nil {
		w.Items = []models.WishlistItem{}
	}
	if _, err := r.coll.InsertOne(ctx, w); err != nil {
		return fmt.Errorf("failed to create wishlist: %w", err)
	}
	return nil
}

// AddItem appends item to the wishlist for email, creating the wishlist on
// first use. The filter skips lists that already hold the product, so a
// concurrent add either matches nothing or collides on the unique email index.
func (r *MongoWishlistRepository) AddItem(ctx context.Context, email string, item models.WishlistItem) error {
	filter := bson.M{
		"email":     EmailPattern(email),
		"items.id":  bson.M{"$ne": item.ID},
		"items._id": bson.M{"$ne": item.ID},
	}
	now := time.Now()
	update := bson.M{
		"$push":        bson.M{"items": item},
		"$set":         bson.M{"updatedAt": now},
		"$setOnInsert": bson.M{"email": strings.ToLower(email), "createdAt": now},
	}
	_, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to add wishlist item: %w", err)
	}
	return nil
}

func (r *MongoWishlistRepository) ReplaceItems(ctx context.Context, id primitive.ObjectID, items []models.WishlistItem) error {
	if items == nil {
		items = []models.WishlistItem{}
	}
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"items": items, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update wishlist: %w", err)
	}
	return nil
}

// EmailPattern matches an email exactly, ignoring case.
func EmailPattern(email string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(email) + "$", Options: "i"}
}
