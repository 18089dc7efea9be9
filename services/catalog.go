package services

import (
	"context"
	"errors"
	"time"

	"github.com/scrubline/scrubline-backend-go/apperrors"
	"github.com/scrubline/scrubline-backend-go/metrics"
	"github.com/scrubline/scrubline-backend-go/models"
	"github.com/scrubline/scrubline-backend-go/repository"
	"go.uber.org/zap"
)

type ProductInput struct {
	Name          string   `json:"name" validate:"required"`
	Description   string   `json:"description"`
	Price         float64  `json:"price" validate:"gte=0"`
	OriginalPrice *float64 `json:"originalPrice"`
	Category      string   `json:"category" validate:"required"`
	Subcategory   string   `json:"subcategory"`
	Sizes         []string `json:"sizes"`
	Colors        []string `json:"colors"`
	Stock         int      `json:"stock" validate:"gte=0"`
	Image         string   `json:"image"`
}

type ProductUpdate struct {
	Name          *string   `json:"name"`
	Description   *string   `json:"description"`
	Price         *float64  `json:"price"`
	OriginalPrice *float64  `json:"originalPrice"`
	Category      *string   `json:"category"`
	Subcategory   *string   `json:"subcategory"`
	Sizes         *[]string `json:"sizes"`
	Colors        *[]string `json:"colors"`
	Stock         *int      `json:"stock"`
	Status        *string   `json:"status"`
	Image         *string   `json:"image"`
}

// CatalogService reads and writes products in MongoDB and degrades to a local
// JSON file when the database fails.
type CatalogService struct {
	primary  repository.ProductRepository
	fallback repository.ProductRepository
	log      *zap.Logger
}

func NewCatalogService(primary, fallback repository.ProductRepository, log *zap.Logger) *CatalogService {
	return &CatalogService{primary: primary, fallback: fallback, log: log}
}

func (s *CatalogService) List(ctx context.Context, f repository.ProductFilter) ([]models.Product, error) {
	products, err := s.primary.List(ctx, f)
	if err == nil || s.fallback == nil {
		return products, err
	}
	s.log.Warn("Product listing failed, reading fallback file", zap.Error(err))
	return s.fallback.List(ctx, f)
}

func (s *CatalogService) Get(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.primary.Get(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) && s.fallback != nil {
		s.log.Warn("Product lookup failed, reading fallback file", zap.String("id", id), zap.Error(err))
		p, err = s.fallback.Get(ctx, id)
	}
	if err != nil {
		return nil, notFound(err, "product not found")
	}
	return p, nil
}

// Create inserts a product. Its status is derived from the stock level here
// and never recomputed afterwards.
func (s *CatalogService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	if in.Name == "" || in.Category == "" {
		return nil, apperrors.BadRequest("name and category are required")
	}
	if in.Price < 0 || in.Stock < 0 {
		return nil, apperrors.BadRequest("price and stock cannot be negative")
	}
	if in.Sizes == nil {
		in.Sizes = []string{}
	}
	if in.Colors == nil {
		in.Colors = []string{}
	}

	now := time.Now().UTC()
	p := &models.Product{
		Name:          in.Name,
		Description:   in.Description,
		Price:         in.Price,
		OriginalPrice: in.OriginalPrice,
		Category:      in.Category,
		Subcategory:   in.Subcategory,
		Sizes:         in.Sizes,
		Colors:        in.Colors,
		Stock:         in.Stock,
		Status:        models.StatusForStock(in.Stock),
		Image:         in.Image,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.primary.Create(ctx, p)
	if err == nil || s.fallback == nil {
		return p, err
	}

	s.log.Warn("Product insert failed, writing fallback file", zap.String("name", p.Name), zap.Error(err))
	if ferr := s.fallback.Create(ctx, p); ferr != nil {
		return nil, errors.Join(err, ferr)
	}
	metrics.FallbackWrites.WithLabelValues("catalog").Inc()
	return p, nil
}

func (s *CatalogService) Update(ctx context.Context, id string, in ProductUpdate) (*models.Product, error) {
	fields := repository.Fields{}
	if v, ok := trimmed(in.Name); ok {
		if v == "" {
			return nil, apperrors.BadRequest("name cannot be empty")
		}
		fields["name"] = v
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, apperrors.BadRequest("price cannot be negative")
		}
		fields["price"] = *in.Price
	}
	if in.OriginalPrice != nil {
		fields["originalPrice"] = *in.OriginalPrice
	}
	if v, ok := trimmed(in.Category); ok {
		fields["category"] = v
	}
	if v, ok := trimmed(in.Subcategory); ok {
		fields["subcategory"] = v
	}
	if in.Sizes != nil {
		fields["sizes"] = *in.Sizes
	}
	if in.Colors != nil {
		fields["colors"] = *in.Colors
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return nil, apperrors.BadRequest("stock cannot be negative")
		}
		fields["stock"] = *in.Stock
	}
	if v, ok := trimmed(in.Status); ok {
		if v != models.ProductStatusActive && v != models.ProductStatusOutOfStock {
			return nil, apperrors.BadRequest("status must be active or out_of_stock")
		}
		fields["status"] = v
	}
	if in.Image != nil {
		fields["image"] = *in.Image
	}
	if len(fields) == 0 {
		return nil, apperrors.BadRequest("no fields to update")
	}
	fields["updatedAt"] = time.Now().UTC()

	p, err := s.primary.Update(ctx, id, fields)
	if err != nil {
		return nil, notFound(err, "product not found")
	}
	return p, nil
}

func (s *CatalogService) Delete(ctx context.Context, id string) error {
	return notFound(s.primary.Delete(ctx, id), "product not found")
}
