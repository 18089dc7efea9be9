package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Collection names.
const (
	Users     = "users"
	Products  = "products"
	Orders    = "orders"
	Addresses = "addresses"
	Wishlists = "wishlists"
	Reviews   = "reviews"
	Feedback  = "feedback"
	Settings  = "settings"
)

// Store owns the process-wide MongoDB client. It is opened once at startup and
// handed to the repositories.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	log    *zap.Logger
}

func Connect(ctx context.Context, uri, dbName string, log *zap.Logger) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Info("Connected to MongoDB", zap.String("db", dbName))
	return &Store{client: client, db: client.Database(dbName), log: log}, nil
}

// NewStore wraps an already connected database. Tests use it with mtest.
func NewStore(db *mongo.Database, log *zap.Logger) *Store {
	return &Store{client: db.Client(), db: db, log: log}
}

func (s *Store) DB() *mongo.Database {
	return s.db
}

func (s *Store) Collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// Ping is used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	s.log.Info("Disconnected from MongoDB")
	return nil
}

// EnsureIndexes creates the indexes the application relies on. Existing
// documents that violate them (duplicate legacy emails, for instance) make the
// call fail, which is logged and otherwise ignored.
func (s *Store) EnsureIndexes(ctx context.Context) {
	indexes := map[string][]mongo.IndexModel{
		Users: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		Orders: {
			{Keys: bson.D{{Key: "orderId", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
			{Keys: bson.D{{Key: "customer.email", Value: 1}}},
			{Keys: bson.D{{Key: "customerEmail", Value: 1}}},
			{Keys: bson.D{{Key: "userId", Value: 1}}},
			{Keys: bson.D{{Key: "orderDate", Value: -1}}},
		},
		Addresses: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
		Wishlists: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetCollation(&options.Collation{Locale: "en", Strength: 2}),
			},
		},
		Reviews: {
			{
				Keys:    bson.D{{Key: "productId", Value: 1}, {Key: "userId", Value: 1}, {Key: "orderId", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		Settings: {
			{Keys: bson.D{{Key: "key", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			s.log.Warn("Failed to create indexes", zap.String("collection", coll), zap.Error(err))
		}
	}
}
