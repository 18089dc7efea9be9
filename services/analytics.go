package services

import (
	"context"

	"github.com/scrubline/scrubline-backend-go/apperrors"
	"github.com/scrubline/scrubline-backend-go/models"
	"github.com/scrubline/scrubline-backend-go/repository"
	"github.com/shopspring/decimal"
)

const (
	recentOrdersLimit = 5
	topProductsLimit  = 5
)

type Dashboard struct {
	TotalUsers    int64          `json:"totalUsers"`
	TotalOrders   int64          `json:"totalOrders"`
	TotalProducts int64          `json:"totalProducts"`
	TotalRevenue  float64        `json:"totalRevenue"`
	RecentOrders  []models.Order `json:"recentOrders"`
}

type RevenueReport struct {
	Period string                    `json:"period"`
	Points []repository.RevenuePoint `json:"data"`
}

type Breakdown struct {
	TotalOrders       int64                           `json:"totalOrders"`
	TotalRevenue      float64                         `json:"totalRevenue"`
	AverageOrderValue float64                         `json:"averageOrderValue"`
	TopProducts       []repository.ProductSales       `json:"topProducts"`
	PaymentMethods    []repository.PaymentMethodCount `json:"paymentMethods"`
}

// AnalyticsService recomputes every figure from the collections on each call.
type AnalyticsService struct {
	analytics repository.AnalyticsRepository
}

func NewAnalyticsService(analytics repository.AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{analytics: analytics}
}

func (s *AnalyticsService) Dashboard(ctx context.Context) (*Dashboard, error) {
	totals, err := s.analytics.Totals(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.analytics.RecentOrders(ctx, recentOrdersLimit)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		TotalUsers:    totals.Users,
		TotalOrders:   totals.Orders,
		TotalProducts: totals.Products,
		TotalRevenue:  round2(totals.Revenue),
		RecentOrders:  recent,
	}, nil
}

// Revenue groups revenue by day, week or month. An empty period means month.
func (s *AnalyticsService) Revenue(ctx context.Context, period string) (*RevenueReport, error) {
	if period == "" {
		period = repository.PeriodMonth
	}
	if !repository.ValidPeriod(period) {
		return nil, apperrors.BadRequest("period must be day, week or month")
	}
	points, err := s.analytics.RevenueSeries(ctx, period)
	if err != nil {
		return nil, err
	}
	return &RevenueReport{Period: period, Points: points}, nil
}

func (s *AnalyticsService) Breakdown(ctx context.Context) (*Breakdown, error) {
	totals, err := s.analytics.Totals(ctx)
	if err != nil {
		return nil, err
	}
	top, err := s.analytics.TopProducts(ctx, topProductsLimit)
	if err != nil {
		return nil, err
	}
	methods, err := s.analytics.PaymentMethods(ctx)
	if err != nil {
		return nil, err
	}
	return &Breakdown{
		TotalOrders:       totals.Orders,
		TotalRevenue:      round2(totals.Revenue),
		AverageOrderValue: AverageOrderValue(totals.Revenue, totals.Orders),
		TopProducts:       top,
		PaymentMethods:    methods,
	}, nil
}

// AverageOrderValue is revenue per order, 0 when there are no orders.
func AverageOrderValue(revenue float64, orders int64) float64 {
	if orders <= 0 {
		return 0
	}
	return decimal.NewFromFloat(revenue).Div(decimal.NewFromInt(orders)).Round(2).InexactFloat64()
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
