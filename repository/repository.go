package repository

import (
	"context"
	"errors"

	"github.com/scrubline/scrubline-backend-go/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// Fields is a partial document used for $set style updates.
type Fields map[string]interface{}

// OrderQuery selects orders. Email and UserID are matched against both the
// nested and the flat legacy document shapes; Status matches either status
// field. Limit 0 disables pagination.
type OrderQuery struct {
	Email  string
	UserID string
	Status string
	Limit  int
	Page   int
}

func (q OrderQuery) Skip() int64 {
	if q.Limit <= 0 || q.Page <= 1 {
		return 0
	}
	return int64((q.Page - 1) * q.Limit)
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	// Find returns the matching page and the total number of matches.
	Find(ctx context.Context, q OrderQuery) ([]models.Order, int64, error)
	// Get looks an order up by document id or client order id.
	Get(ctx context.Context, id string) (*models.Order, error)
	Update(ctx context.Context, id primitive.ObjectID, fields Fields) (*models.Order, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type AddressRepository interface {
	// ListByUser returns the user's addresses oldest first.
	ListByUser(ctx context.Context, userID string) ([]models.Address, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Address, error)
	Insert(ctx context.Context, addr *models.Address) error
	Update(ctx context.Context, id primitive.ObjectID, fields Fields) error
	UnsetPrimary(ctx context.Context, userID string) error
	SetPrimary(ctx context.Context, id primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type WishlistRepository interface {
	// FindByEmail matches the email case-insensitively.
	FindByEmail(ctx context.Context, email string) (*models.Wishlist, error)
	Create(ctx context.Context, w *models.Wishlist) error
	// AddItem appends item unless the product is already listed, creating
	// the wishlist when the email has none.
	AddItem(ctx context.Context, email string, item models.WishlistItem) error
	ReplaceItems(ctx context.Context, id primitive.ObjectID, items []models.WishlistItem) error
}

type ReviewRepository interface {
	// Upsert writes the review keyed by (productId, userId, orderId) and reports
	// whether a new document was created.
	Upsert(ctx context.Context, r *models.Review) (bool, error)
	ListByProduct(ctx context.Context, productID string) ([]models.Review, error)
	ListByUser(ctx context.Context, userID string) ([]models.Review, error)
}

type ProductFilter struct {
	Category    string
	Subcategory string
	Status      string
	Search      string
}

type ProductRepository interface {
	List(ctx context.Context, f ProductFilter) ([]models.Product, error)
	Get(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, id string, fields Fields) (*models.Product, error)
	Delete(ctx context.Context, id string) error
}

type UserFilter struct {
	Role   string
	Status string
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, id string, fields Fields) (*models.User, error)
	List(ctx context.Context, f UserFilter) ([]models.User, error)
	Delete(ctx context.Context, id string) error
}

type FeedbackRepository interface {
	Create(ctx context.Context, f *models.Feedback) error
	List(ctx context.Context, feedbackType string) ([]models.Feedback, error)
}

type SettingsRepository interface {
	// Get returns the stored settings or the defaults when none were saved.
	Get(ctx context.Context) (models.Settings, error)
	Save(ctx context.Context, s models.Settings) (models.Settings, error)
}

type RevenuePoint struct {
	Period  string  `bson:"_id" json:"period"`
	Revenue float64 `bson:"revenue" json:"revenue"`
	Orders  int64   `bson:"orders" json:"orders"`
}

type ProductSales struct {
	ProductID string  `bson:"_id" json:"productId"`
	Name      string  `bson:"name" json:"name"`
	Quantity  float64 `bson:"quantity" json:"quantity"`
	Revenue   float64 `bson:"revenue" json:"revenue"`
}

type PaymentMethodCount struct {
	Method  string  `bson:"_id" json:"method"`
	Count   int64   `bson:"count" json:"count"`
	Revenue float64 `bson:"revenue" json:"revenue"`
}

type Totals struct {
	Users    int64
	Orders   int64
	Products int64
	Revenue  float64
}

type AnalyticsRepository interface {
	Totals(ctx context.Context) (Totals, error)
	RecentOrders(ctx context.Context, n int64) ([]models.Order, error)
	RevenueSeries(ctx context.Context, period string) ([]RevenuePoint, error)
	TopProducts(ctx context.Context, n int64) ([]ProductSales, error)
	PaymentMethods(ctx context.Context) ([]PaymentMethodCount, error)
}
