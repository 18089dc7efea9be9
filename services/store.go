package services

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/scrubline/scrubline-backend-go/apperrors"
	"github.com/scrubline/scrubline-backend-go/models"
	"github.com/scrubline/scrubline-backend-go/repository"
)

const defaultFeedbackType = "general"

type FeedbackInput struct {
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required"`
	Type    string `json:"type"`
}

type FeedbackService struct {
	feedback repository.FeedbackRepository
}

func NewFeedbackService(feedback repository.FeedbackRepository) *FeedbackService {
	return &FeedbackService{feedback: feedback}
}

func (s *FeedbackService) Submit(ctx context.Context, in FeedbackInput) (*models.Feedback, error) {
	email := strings.TrimSpace(in.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.BadRequest("a valid email is required")
	}
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, apperrors.BadRequest("message is required")
	}
	kind := strings.ToLower(strings.TrimSpace(in.Type))
	if kind == "" {
		kind = defaultFeedbackType
	}

	f := &models.Feedback{Email: email, Message: message, Type: kind, CreatedAt: time.Now().UTC()}
	if err := s.feedback.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *FeedbackService) List(ctx context.Context, feedbackType string) ([]models.Feedback, error) {
	return s.feedback.List(ctx, strings.ToLower(strings.TrimSpace(feedbackType)))
}

type SettingsUpdate struct {
	StoreName             *string  `json:"storeName"`
	Currency              *string  `json:"currency"`
	TaxRate               *float64 `json:"taxRate"`
	ShippingFee           *float64 `json:"shippingFee"`
	FreeShippingThreshold *float64 `json:"freeShippingThreshold"`
	ContactEmail          *string  `json:"contactEmail"`
}

type SettingsService struct {
	settings repository.SettingsRepository
}

func NewSettingsService(settings repository.SettingsRepository) *SettingsService {
	return &SettingsService{settings: settings}
}

func (s *SettingsService) Get(ctx context.Context) (models.Settings, error) {
	return s.settings.Get(ctx)
}

func (s *SettingsService) Update(ctx context.Context, in SettingsUpdate) (models.Settings, error) {
	current, err := s.settings.Get(ctx)
	if err != nil {
		return models.Settings{}, err
	}

	if v, ok := trimmed(in.StoreName); ok {
		if v == "" {
			return models.Settings{}, apperrors.BadRequest("storeName cannot be empty")
		}
		current.StoreName = v
	}
	if v, ok := trimmed(in.Currency); ok {
		if len(v) != 3 {
			return models.Settings{}, apperrors.BadRequest("currency must be a 3 letter code")
		}
		current.Currency = strings.ToUpper(v)
	}
	if in.TaxRate != nil {
		if *in.TaxRate < 0 || *in.TaxRate > 1 {
			return models.Settings{}, apperrors.BadRequest("taxRate must be between 0 and 1")
		}
		current.TaxRate = *in.TaxRate
	}
	if in.ShippingFee != nil {
		if *in.ShippingFee < 0 {
			return models.Settings{}, apperrors.BadRequest("shippingFee cannot be negative")
		}
		current.ShippingFee = *in.ShippingFee
	}
	if in.FreeShippingThreshold != nil {
		if *in.FreeShippingThreshold < 0 {
			return models.Settings{}, apperrors.BadRequest("freeShippingThreshold cannot be negative")
		}
		current.FreeShippingThreshold = *in.FreeShippingThreshold
	}
	if v, ok := trimmed(in.ContactEmail); ok {
		if v != "" {
			if _, err := mail.ParseAddress(v); err != nil {
				return models.Settings{}, apperrors.BadRequest("contactEmail is not a valid email")
			}
		}
		current.ContactEmail = v
	}

	return s.settings.Save(ctx, current)
}
