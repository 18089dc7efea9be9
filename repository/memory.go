package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/scrubline/scrubline-backend-go/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// applyFields performs a top-level $set of fields on doc and decodes the
// result into out, the same way the driver would round trip it.
func applyFields(doc interface{}, fields Fields, out interface{}) error {
	data, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	var m bson.M
	if err := bson.Unmarshal(data, &m); err != nil {
		return err
	}
	for k, v := range fields {
		m[k] = v
	}
	if data, err = bson.Marshal(m); err != nil {
		return err
	}
	return bson.Unmarshal(data, out)
}

type MemoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[primitive.ObjectID]*models.Order
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: make(map[primitive.ObjectID]*models.Order)}
}

func (r *MemoryOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.OrderID != "" {
		for _, existing := range r.orders {
			if existing.OrderID == order.OrderID {
				return ErrDuplicate
			}
		}
	}
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	orderCopy := *order
	r.orders[order.ID] = &orderCopy
	return nil
}

func (r *MemoryOrderRepository) Find(_ context.Context, q OrderQuery) ([]models.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []models.Order{}
	for _, o := range r.orders {
		if q.Email != "" || q.UserID != "" {
			if !o.BelongsTo(q.UserID, q.Email) {
				continue
			}
		}
		if q.Status != "" && !strings.EqualFold(o.Status, q.Status) && !strings.EqualFold(o.DeliveryStatus, q.Status) {
			continue
		}
		matched = append(matched, *o)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].OrderDate.After(matched[j].OrderDate)
	})

	total := int64(len(matched))
	if q.Limit > 0 {
		start := q.Skip()
		if start >= total {
			return []models.Order{}, total, nil
		}
		end := start + int64(q.Limit)
		if end > total {
			end = total
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

func (r *MemoryOrderRepository) Get(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.orders {
		if o.ID.Hex() == id || o.OrderID == id {
			orderCopy := *o
			return &orderCopy, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryOrderRepository) Update(_ context.Context, id primitive.ObjectID, fields Fields) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	var raw bson.M
	if err := applyFields(o, fields, &raw); err != nil {
		return nil, err
	}
	updated := models.DecodeOrder(raw)
	r.orders[id] = &updated
	orderCopy := updated
	return &orderCopy, nil
}

func (r *MemoryOrderRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

type MemoryAddressRepository struct {
	mu        sync.RWMutex
	addresses map[primitive.ObjectID]*models.Address
}

func NewMemoryAddressRepository() *MemoryAddressRepository {
	return &MemoryAddressRepository{addresses: make(map[primitive.ObjectID]*models.Address)}
}

func (r *MemoryAddressRepository) ListByUser(_ context.Context, userID string) ([]models.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Address{}
	for _, a := range r.addresses {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out, nil
}

func (r *MemoryAddressRepository) Get(_ context.Context, id primitive.ObjectID) (*models.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.addresses[id]
	if !ok {
		return nil, ErrNotFound
	}
	addrCopy := *a
	return &addrCopy, nil
}

func (r *MemoryAddressRepository) Insert(_ context.Context, addr *models.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if addr.ID.IsZero() {
		addr.ID = primitive.NewObjectID()
	}
	addrCopy := *addr
	r.addresses[addr.ID] = &addrCopy
	return nil
}

func (r *MemoryAddressRepository) Update(_ context.Context, id primitive.ObjectID, fields Fields) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.addresses[id]
	if !ok {
		return ErrNotFound
	}
	var updated models.Address
	if err := applyFields(a, fields, &updated); err != nil {
		return err
	}
	r.addresses[id] = &updated
	return nil
}

func (r *MemoryAddressRepository) UnsetPrimary(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.addresses {
		if a.UserID == userID && a.Primary {
			a.Primary = false
			a.UpdatedAt = time.Now()
		}
	}
	return nil
}

func (r *MemoryAddressRepository) SetPrimary(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.addresses[id]
	if !ok {
		return ErrNotFound
	}
	a.Primary = true
	a.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryAddressRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.addresses[id]; !ok {
		return ErrNotFound
	}
	delete(r.addresses, id)
	return nil
}

type MemoryWishlistRepository struct {
	mu        sync.RWMutex
	wishlists map[primitive.ObjectID]*models.Wishlist
}

func NewMemoryWishlistRepository() *MemoryWishlistRepository {
	return &MemoryWishlistRepository{wishlists: make(map[primitive.ObjectID]*models.Wishlist)}
}

func (r *MemoryWishlistRepository) FindByEmail(_ context.Context, email string) (*models.Wishlist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, w := range r.wishlists {
		if strings.EqualFold(w.Email, email) {
			return copyWishlist(w), nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryWishlistRepository) Create(_ context.Context, w *models.Wishlist) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if w.ID.IsZero() {
		w.ID = primitive.NewObjectID()
	}
	r.wishlists[w.ID] = copyWishlist(w)
	return nil
}

func (r *MemoryWishlistRepository) AddItem(_ context.Context, email string, item models.WishlistItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, w := range r.wishlists {
		if !strings.EqualFold(w.Email, email) {
			continue
		}
		if w.Contains(item.ID) {
			return nil
		}
		w.Items = append(w.Items, item)
		w.UpdatedAt = now
		return nil
	}
	id := primitive.NewObjectID()
	r.wishlists[id] = &models.Wishlist{
		ID:        id,
		Email:     strings.ToLower(email),
		Items:     []models.WishlistItem{item},
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

func (r *MemoryWishlistRepository) ReplaceItems(_ context.Context, id primitive.ObjectID, items []models.WishlistItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.wishlists[id]
	if !ok {
		return ErrNotFound
	}
	w.Items = append([]models.WishlistItem{}, items...)
	w.UpdatedAt = time.Now()
	return nil
}

func copyWishlist(w *models.Wishlist) *models.Wishlist {
	c := *w
	c.Items = append([]models.WishlistItem{}, w.Items...)
	return &c
}
