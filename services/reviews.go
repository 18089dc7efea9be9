package services

import (
	"context"
	"strings"

	"github.com/scrubline/scrubline-backend-go/apperrors"
	"github.com/scrubline/scrubline-backend-go/models"
	"github.com/scrubline/scrubline-backend-go/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ReviewInput struct {
	ProductID string `json:"productId" validate:"required"`
	OrderID   string `json:"orderId" validate:"required"`
	Rating    int    `json:"rating" validate:"min=1,max=5"`
	Comment   string `json:"comment"`
	Image     string `json:"image"`
}

type ReviewService struct {
	reviews repository.ReviewRepository
	users   repository.UserRepository
	log     *zap.Logger
}

func NewReviewService(reviews repository.ReviewRepository, users repository.UserRepository, log *zap.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, users: users, log: log}
}

// Submit writes the caller's review for a product bought in an order. A second
// submission for the same product and order replaces the first.
func (s *ReviewService) Submit(ctx context.Context, caller *Caller, in ReviewInput) (*models.Review, bool, error) {
	if !caller.Authenticated() {
		return nil, false, apperrors.Unauthorized("authentication required")
	}
	in.ProductID = strings.TrimSpace(in.ProductID)
	in.OrderID = strings.TrimSpace(in.OrderID)
	if in.ProductID == "" || in.OrderID == "" {
		return nil, false, apperrors.BadRequest("productId and orderId are required")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, false, apperrors.BadRequest("rating must be between 1 and 5")
	}

	review := &models.Review{
		ProductID: in.ProductID,
		UserID:    caller.UserID,
		OrderID:   in.OrderID,
		Username:  s.username(ctx, caller),
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
		Image:     in.Image,
	}
	created, err := s.reviews.Upsert(ctx, review)
	if err != nil {
		return nil, false, err
	}
	return review, created, nil
}

func (s *ReviewService) username(ctx context.Context, caller *Caller) string {
	if s.users != nil {
		u, err := s.users.FindByID(ctx, caller.UserID)
		if err == nil && u.FullName() != "" {
			return u.FullName()
		}
		if err != nil {
			s.log.Debug("Review author lookup failed", zap.String("user_id", caller.UserID), zap.Error(err))
		}
	}
	if i := strings.Index(caller.Email, "@"); i > 0 {
		return caller.Email[:i]
	}
	return caller.Email
}

func (s *ReviewService) ListByUser(ctx context.Context, userID string) ([]models.Review, error) {
	return s.reviews.ListByUser(ctx, userID)
}

// Summary returns a product's reviews with their average rating, 0 when there
// are none.
func (s *ReviewService) Summary(ctx context.Context, productID string) (*models.ReviewSummary, error) {
	if productID == "" {
		return nil, apperrors.BadRequest("productId is required")
	}
	reviews, err := s.reviews.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	summary := &models.ReviewSummary{ProductID: productID, Count: len(reviews), Reviews: reviews}
	if len(reviews) > 0 {
		sum := 0
		for _, r := range reviews {
			sum += r.Rating
		}
		summary.AverageRating = decimal.NewFromInt(int64(sum)).
			Div(decimal.NewFromInt(int64(len(reviews)))).
			Round(1).
			InexactFloat64()
	}
	return summary, nil
}
