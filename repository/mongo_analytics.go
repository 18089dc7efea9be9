package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/scrubline/scrubline-backend-go/database"
	"github.com/scrubline/scrubline-backend-go/metrics"
	"github.com/scrubline/scrubline-backend-go/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Revenue grouping periods.
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

var periodFormats = map[string]string{
	PeriodDay:   "%Y-%m-%d",
	PeriodWeek:  "%G-W%V",
	PeriodMonth: "%Y-%m",
}

func ValidPeriod(period string) bool {
	_, ok := periodFormats[period]
	return ok
}

// MongoAnalyticsRepository recomputes every figure from the raw collections on
// each call.
type MongoAnalyticsRepository struct {
	orders   *mongo.Collection
	users    *mongo.Collection
	products *mongo.Collection
}

func NewMongoAnalyticsRepository(store *database.Store) *MongoAnalyticsRepository {
	return &MongoAnalyticsRepository{
		orders:   store.Collection(database.Orders),
		users:    store.Collection(database.Users),
		products: store.Collection(database.Products),
	}
}

func (r *MongoAnalyticsRepository) Totals(ctx context.Context) (Totals, error) {
	defer metrics.TrackDBOperation("count")(time.Now())
	var t Totals
	var err error

	if t.Users, err = r.users.CountDocuments(ctx, bson.M{}); err != nil {
		return t, fmt.Errorf("failed to count users: %w", err)
	}
	if t.Orders, err = r.orders.CountDocuments(ctx, bson.M{}); err != nil {
		return t, fmt.Errorf("failed to count orders: %w", err)
	}
	if t.Products, err = r.products.CountDocuments(ctx, bson.M{}); err != nil {
		return t, fmt.Errorf("failed to count products: %w", err)
	}

	cursor, err := r.orders.Aggregate(ctx, RevenueTotalPipeline())
	if err != nil {
		return t, fmt.Errorf("failed to sum revenue: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Revenue float64 `bson:"revenue"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return t, fmt.Errorf("failed to decode revenue: %w", err)
	}
	if len(rows) > 0 {
		t.Revenue = rows[0].Revenue
	}
	return t, nil
}

func (r *MongoAnalyticsRepository) RecentOrders(ctx context.Context, n int64) ([]models.Order, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "orderDate", Value: -1}, {Key: "createdAt", Value: -1}}).
		SetLimit(n)
	cursor, err := r.orders.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find recent orders: %w", err)
	}
	return decodeOrders(ctx, cursor)
}

func (r *MongoAnalyticsRepository) RevenueSeries(ctx context.Context, period string) ([]RevenuePoint, error) {
	pipeline, err := RevenuePipeline(period)
	if err != nil {
		return nil, err
	}
	points := []RevenuePoint{}
	if err := r.aggregate(ctx, pipeline, &points); err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue: %w", err)
	}
	return points, nil
}

func (r *MongoAnalyticsRepository) TopProducts(ctx context.Context, n int64) ([]ProductSales, error) {
	sales := []ProductSales{}
	if err := r.aggregate(ctx, TopProductsPipeline(n), &sales); err != nil {
		return nil, fmt.Errorf("failed to aggregate top products: %w", err)
	}
	return sales, nil
}

func (r *MongoAnalyticsRepository) PaymentMethods(ctx context.Context) ([]PaymentMethodCount, error) {
	counts := []PaymentMethodCount{}
	if err := r.aggregate(ctx, PaymentMethodsPipeline(), &counts); err != nil {
		return nil, fmt.Errorf("failed to aggregate payment methods: %w", err)
	}
	return counts, nil
}

func (r *MongoAnalyticsRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline, out interface{}) error {
	defer metrics.TrackDBOperation("aggregate")(time.Now())
	cursor, err := r.orders.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

// amountExpr coerces totalAmount to a double. Legacy documents store it as a
// string; anything unparseable counts as 0.
func amountExpr() bson.M {
	return toDouble("$totalAmount")
}

func toDouble(field interface{}) bson.M {
	return bson.M{"$convert": bson.M{
		"input":   field,
		"to":      "double",
		"onError": 0,
		"onNull":  0,
	}}
}

func RevenueTotalPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": nil, "revenue": bson.M{"$sum": amountExpr()}}}},
	}
}

// RevenuePipeline groups orders into date-string buckets. Orders without a
// usable date are dropped.
func RevenuePipeline(period string) (mongo.Pipeline, error) {
	format, ok := periodFormats[period]
	if !ok {
		return nil, fmt.Errorf("unknown period %q", period)
	}
	date := bson.M{"$convert": bson.M{
		"input":   bson.M{"$ifNull": bson.A{"$orderDate", "$createdAt"}},
		"to":      "date",
		"onError": nil,
		"onNull":  nil,
	}}
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":     bson.M{"$dateToString": bson.M{"format": format, "date": date}},
			"revenue": bson.M{"$sum": amountExpr()},
			"orders":  bson.M{"$sum": 1},
		}}},
		{{Key: "$match", Value: bson.M{"_id": bson.M{"$ne": nil}}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}, nil
}

// TopProductsPipeline ranks products by quantity sold. Item product ids are
// read from productId, id or the legacy _id.
func TopProductsPipeline(n int64) mongo.Pipeline {
	productID := bson.M{"$toString": bson.M{"$ifNull": bson.A{
		"$items.productId",
		bson.M{"$ifNull": bson.A{"$items.id", "$items._id"}},
	}}}
	quantity := toDouble("$items.quantity")
	return mongo.Pipeline{
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$group", Value: bson.M{
			"_id":      productID,
			"name":     bson.M{"$first": "$items.name"},
			"quantity": bson.M{"$sum": quantity},
			"revenue":  bson.M{"$sum": bson.M{"$multiply": bson.A{toDouble("$items.price"), quantity}}},
		}}},
		{{Key: "$match", Value: bson.M{"_id": bson.M{"$ne": nil}}}},
		{{Key: "$sort", Value: bson.D{{Key: "quantity", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: n}},
	}
}

// PaymentMethodsPipeline counts orders per payment method; a missing or empty
// method is reported as "Other".
func PaymentMethodsPipeline() mongo.Pipeline {
	method := bson.M{"$cond": bson.A{
		bson.M{"$eq": bson.A{bson.M{"$ifNull": bson.A{"$paymentMethod", ""}}, ""}},
		"Other",
		"$paymentMethod",
	}}
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":     method,
			"count":   bson.M{"$sum": 1},
			"revenue": bson.M{"$sum": amountExpr()},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
}
