package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/scrubline/scrubline-backend-go/database"
	"github.com/scrubline/scrubline-backend-go/metrics"
	"github.com/scrubline/scrubline-backend-go/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoOrderRepository struct {
	coll *mongo.Collection
}

func NewMongoOrderRepository(store *database.Store) *MongoOrderRepository {
	return &MongoOrderRepository{coll: store.Collection(database.Orders)}
}

func (r *MongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	defer metrics.TrackDBOperation("insert")(time.Now())
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, order); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (r *MongoOrderRepository) Find(ctx context.Context, q OrderQuery) ([]models.Order, int64, error) {
	defer metrics.TrackDBOperation("find")(time.Now())
	filter := OrderFilter(q)

	opts := options.Find().SetSort(bson.D{{Key: "orderDate", Value: -1}, {Key: "createdAt", Value: -1}})
	if q.Limit > 0 {
		opts.SetSkip(q.Skip()).SetLimit(int64(q.Limit))
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find orders: %w", err)
	}
	orders, err := decodeOrders(ctx, cursor)
	if err != nil {
		return nil, 0, err
	}

	total := int64(len(orders))
	if q.Limit > 0 {
		total, err = r.coll.CountDocuments(ctx, filter)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to count orders: %w", err)
		}
	}
	return orders, total, nil
}

func (r *MongoOrderRepository) Get(ctx context.Context, id string) (*models.Order, error) {
	var raw bson.M
	if err := r.coll.FindOne(ctx, orderIDFilter(id)).Decode(&raw); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	order := models.DecodeOrder(raw)
	return &order, nil
}

func (r *MongoOrderRepository) Update(ctx context.Context, id primitive.ObjectID, fields Fields) (*models.Order, error) {
	var raw bson.M
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M(fields)},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	order := models.DecodeOrder(raw)
	return &order, nil
}

func (r *MongoOrderRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// OrderFilter builds the selector for q. Ownership is an OR across the nested
// and flat shapes; the status filter is an OR across the two status fields.
func OrderFilter(q OrderQuery) bson.M {
	var clauses []bson.M

	var owner []bson.M
	if q.Email != "" {
		owner = append(owner,
			bson.M{"customer.email": q.Email},
			bson.M{"customerEmail": q.Email},
		)
	}
	if q.UserID != "" {
		owner = append(owner,
			bson.M{"customer.id": q.UserID},
			bson.M{"userId": q.UserID},
		)
		if oid, err := primitive.ObjectIDFromHex(q.UserID); err == nil {
			owner = append(owner, bson.M{"userId": oid})
		}
	}
	if len(owner) > 0 {
		clauses = append(clauses, bson.M{"$or": owner})
	}

	if q.Status != "" {
		status := primitive.Regex{Pattern: "^" + regexp.QuoteMeta(q.Status) + "$", Options: "i"}
		clauses = append(clauses, bson.M{"$or": []bson.M{
			{"status": status},
			{"deliveryStatus": status},
		}})
	}

	switch len(clauses) {
	case 0:
		return bson.M{}
	case 1:
		return clauses[0]
	}
	return bson.M{"$and": clauses}
}

func orderIDFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"$or": []bson.M{{"_id": oid}, {"orderId": id}}}
	}
	return bson.M{"orderId": id}
}

func decodeOrders(ctx context.Context, cursor *mongo.Cursor) ([]models.Order, error) {
	defer cursor.Close(ctx)

	orders := []models.Order{}
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode order: %w", err)
		}
		orders = append(orders, models.DecodeOrder(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}
	return orders, nil
}
