package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/scrubline/scrubline-backend-go/apperrors"
	"github.com/scrubline/scrubline-backend-go/models"
	"github.com/scrubline/scrubline-backend-go/repository"
)

const (
	WishlistAdd    = "add"
	WishlistRemove = "remove"
)

type WishlistProduct struct {
	ID       string  `json:"id"`
	LegacyID string  `json:"_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Category string  `json:"category"`
}

func (p WishlistProduct) productID() string {
	if p.ID != "" {
		return p.ID
	}
	return p.LegacyID
}

type WishlistToggleInput struct {
	Email     string          `json:"email"`
	Action    string          `json:"action"`
	ProductID string          `json:"productId"`
	Product   WishlistProduct `json:"product"`
}

type WishlistPage struct {
	Email string                `json:"email"`
	Items []models.WishlistItem `json:"items"`
	Page
}

type WishlistResult struct {
	Action string                `json:"action"`
	Items  []models.WishlistItem `json:"items"`
}

type WishlistService struct {
	wishlists repository.WishlistRepository
}

func NewWishlistService(wishlists repository.WishlistRepository) *WishlistService {
	return &WishlistService{wishlists: wishlists}
}

func (s *WishlistService) Get(ctx context.Context, email string, page, limit int) (*WishlistPage, error) {
	if email == "" {
		return nil, apperrors.BadRequest("email is required")
	}
	if page < 1 {
		page = 1
	}
	if limit < 0 {
		limit = 0
	}

	items := []models.WishlistItem{}
	w, err := s.wishlists.FindByEmail(ctx, email)
	switch {
	case err == nil:
		items = w.Items
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	total := int64(len(items))
	if limit > 0 {
		start := (page - 1) * limit
		if start > len(items) {
			start = len(items)
		}
		end := start + limit
		if end > len(items) {
			end = len(items)
		}
		items = items[start:end]
	}
	return &WishlistPage{Email: email, Items: items, Page: newPage(total, page, limit, len(items))}, nil
}

// Toggle adds or removes a product. Without an explicit action the product is
// removed when present and added otherwise. Adding a present product and
// removing an absent one are no-ops.
func (s *WishlistService) Toggle(ctx context.Context, in WishlistToggleInput) (*WishlistResult, error) {
	if in.Email == "" {
		return nil, apperrors.BadRequest("email is required")
	}
	productID := in.ProductID
	if productID == "" {
		productID = in.Product.productID()
	}
	if productID == "" {
		return nil, apperrors.BadRequest("productId is required")
	}

	w, err := s.wishlists.FindByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	action := strings.ToLower(strings.TrimSpace(in.Action))
	switch action {
	case "":
		action = WishlistAdd
		if w != nil && w.Contains(productID) {
			action = WishlistRemove
		}
	case WishlistAdd, WishlistRemove:
	default:
		return nil, apperrors.BadRequest("action must be add or remove")
	}

	if action == WishlistRemove {
		return s.remove(ctx, w, productID)
	}
	return s.add(ctx, w, in.Email, productID, in.Product)
}

func (s *WishlistService) add(ctx context.Context, w *models.Wishlist, email, productID string, p WishlistProduct) (*WishlistResult, error) {
	item := models.WishlistItem{
		ID:       productID,
		Name:     p.Name,
		Price:    p.Price,
		Image:    p.Image,
		Category: p.Category,
		AddedAt:  time.Now().UTC(),
	}

	if w != nil && w.Contains(productID) {
		return &WishlistResult{Action: WishlistAdd, Items: w.Items}, nil
	}
	if err := s.wishlists.AddItem(ctx, email, item); err != nil {
		return nil, err
	}
	if w == nil {
		return &WishlistResult{Action: WishlistAdd, Items: []models.WishlistItem{item}}, nil
	}
	return &WishlistResult{Action: WishlistAdd, Items: append(w.Items, item)}, nil
}

func (s *WishlistService) remove(ctx context.Context, w *models.Wishlist, productID string) (*WishlistResult, error) {
	if w == nil {
		return &WishlistResult{Action: WishlistRemove, Items: []models.WishlistItem{}}, nil
	}

	kept := make([]models.WishlistItem, 0, len(w.Items))
	for _, item := range w.Items {
		if !item.Matches(productID) {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(w.Items) {
		return &WishlistResult{Action: WishlistRemove, Items: w.Items}, nil
	}
	if err := s.wishlists.ReplaceItems(ctx, w.ID, kept); err != nil {
		return nil, err
	}
	return &WishlistResult{Action: WishlistRemove, Items: kept}, nil
}
