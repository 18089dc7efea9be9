package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/scrubline/scrubline-backend-go/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type reviewKey struct {
	productID, userID, orderID string
}

type MemoryReviewRepository struct {
	mu      sync.RWMutex
	reviews map[reviewKey]*models.Review
}

func NewMemoryReviewRepository() *MemoryReviewRepository {
	return &MemoryReviewRepository{reviews: make(map[reviewKey]*models.Review)}
}

func (r *MemoryReviewRepository) Upsert(_ context.Context, rv *models.Review) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	key := reviewKey{rv.ProductID, rv.UserID, rv.OrderID}
	if existing, ok := r.reviews[key]; ok {
		existing.Username = rv.Username
		existing.Rating = rv.Rating
		existing.Comment = rv.Comment
		if rv.Image != "" {
			existing.Image = rv.Image
		}
		existing.UpdatedAt = now
		rv.ID = existing.ID
		rv.CreatedAt = existing.CreatedAt
		rv.UpdatedAt = now
		return false, nil
	}

	rv.ID = primitive.NewObjectID()
	rv.CreatedAt = now
	rv.UpdatedAt = now
	reviewCopy := *rv
	r.reviews[key] = &reviewCopy
	return true, nil
}

func (r *MemoryReviewRepository) ListByProduct(_ context.Context, productID string) ([]models.Review, error) {
	return r.list(func(rv *models.Review) bool { return rv.ProductID == productID }), nil
}

func (r *MemoryReviewRepository) ListByUser(_ context.Context, userID string) ([]models.Review, error) {
	return r.list(func(rv *models.Review) bool { return rv.UserID == userID }), nil
}

func (r *MemoryReviewRepository) list(match func(*models.Review) bool) []models.Review {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Review{}
	for _, rv := range r.reviews {
		if match(rv) {
			out = append(out, *rv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]*models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == u.Email {
			return ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	userCopy := *u
	r.users[u.ID] = &userCopy
	return nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			userCopy := *u
			return &userCopy, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	u, ok := r.users[oid]
	if !ok {
		return nil, ErrNotFound
	}
	userCopy := *u
	return &userCopy, nil
}

func (r *MemoryUserRepository) Update(_ context.Context, id string, fields Fields) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	u, ok := r.users[oid]
	if !ok {
		return nil, ErrNotFound
	}
	var updated models.User
	if err := applyFields(u, fields, &updated); err != nil {
		return nil, err
	}
	r.users[oid] = &updated
	userCopy := updated
	return &userCopy, nil
}

func (r *MemoryUserRepository) List(_ context.Context, f UserFilter) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.User{}
	for _, u := range r.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Status != "" && u.Status != f.Status {
			continue
		}
		userCopy := *u
		userCopy.Password = ""
		out = append(out, userCopy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	if _, ok := r.users[oid]; !ok {
		return ErrNotFound
	}
	delete(r.users, oid)
	return nil
}

type MemoryFeedbackRepository struct {
	mu    sync.RWMutex
	items []models.Feedback
}

func NewMemoryFeedbackRepository() *MemoryFeedbackRepository {
	return &MemoryFeedbackRepository{}
}

func (r *MemoryFeedbackRepository) Create(_ context.Context, f *models.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	r.items = append(r.items, *f)
	return nil
}

func (r *MemoryFeedbackRepository) List(_ context.Context, feedbackType string) ([]models.Feedback, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Feedback{}
	for i := len(r.items) - 1; i >= 0; i-- {
		if feedbackType == "" || r.items[i].Type == feedbackType {
			out = append(out, r.items[i])
		}
	}
	return out, nil
}

type MemorySettingsRepository struct {
	mu       sync.RWMutex
	settings *models.Settings
}

func NewMemorySettingsRepository() *MemorySettingsRepository {
	return &MemorySettingsRepository{}
}

func (r *MemorySettingsRepository) Get(_ context.Context) (models.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.settings == nil {
		return models.DefaultSettings(), nil
	}
	return *r.settings, nil
}

func (r *MemorySettingsRepository) Save(_ context.Context, s models.Settings) (models.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s.Key = models.StoreSettingsKey
	s.UpdatedAt = time.Now()
	r.settings = &s
	return s, nil
}
