package services

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/scrubline/scrubline-backend-go/models"
	"github.com/scrubline/scrubline-backend-go/repository"
	"github.com/scrubline/scrubline-backend-go/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func newOrderService(opts OrderOptions) (*OrderService, *repository.MemoryOrderRepository) {
	repo := repository.NewMemoryOrderRepository()
	svc := NewOrderService(repo, repository.NewMemorySettingsRepository(), utils.NewPaymentProcessor(), nil, opts, zap.NewNop())
	return svc, repo
}

func sampleOrder() CreateOrderInput {
	return CreateOrderInput{
		CustomerName:  "A B",
		CustomerEmail: "a@b.com",
		Items:         []models.OrderItem{{Name: "X", Quantity: 1, Price: 500}},
		TotalAmount:   590.0,
		PaymentMethod: "upi",
	}
}

func TestOrderService_CreateThenListByEmail(t *testing.T) {
	svc, _ := newOrderService(OrderOptions{GuestLookup: true})
	ctx := context.Background()

	order, err := svc.Create(ctx, nil, sampleOrder())
	require.NoError(t, err)
	assert.False(t, order.ID.IsZero())
	assert.NotEmpty(t, order.OrderID)

	list, err := svc.List(ctx, nil, repository.OrderQuery{Email: "a@b.com"})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, order.ID, list.Orders[0].ID)
	assert.Equal(t, int64(1), list.Total)
	assert.False(t, list.HasMore)
}

func TestOrderService_CreateStoresSubmittedTotal(t *testing.T) {
	svc, repo := newOrderService(OrderOptions{})
	ctx := context.Background()

	in := sampleOrder()
	in.Items = []models.OrderItem{{ProductID: "p1", Price: 100, Quantity: 2}}
	in.TotalAmount = 236.0
	order, err := svc.Create(ctx, nil, in)
	require.NoError(t, err)

	stored, err := repo.Get(ctx, order.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 236.0, stored.TotalAmount)

	in.TotalAmount = 999.0
	order, err = svc.Create(ctx, nil, in)
	require.NoError(t, err)
	assert.Equal(t, 999.0, order.TotalAmount)
}

func TestOrderService_StrictTotalsRejectsMismatch(t *testing.T) {
	svc, _ := newOrderService(OrderOptions{StrictTotals: true})

	in := sampleOrder()
	in.Items = []models.OrderItem{{ProductID: "p1", Price: 100, Quantity: 2}}
	in.TotalAmount = 200.0
	_, err := svc.Create(context.Background(), nil, in)
	assert.Equal(t, http.StatusBadRequest, errCode(t, err))

	in.TotalAmount = "236"
	_, err = svc.Create(context.Background(), nil, in)
	assert.NoError(t, err)
}

func TestOrderService_CreateValidation(t *testing.T) {
	svc, _ := newOrderService(OrderOptions{})
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*CreateOrderInput)
	}{
		{"missing email", func(in *CreateOrderInput) { in.CustomerEmail = "" }},
		{"missing name", func(in *CreateOrderInput) { in.CustomerName = "" }},
		{"only first name", func(in *CreateOrderInput) { in.CustomerName = ""; in.FirstName = "A" }},
		{"no items", func(in *CreateOrderInput) { in.Items = nil }},
		{"no total", func(in *CreateOrderInput) { in.TotalAmount = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := sampleOrder()
			tt.mutate(&in)
			_, err := svc.Create(ctx, nil, in)
			assert.Equal(t, http.StatusBadRequest, errCode(t, err))
		})
	}
}

func TestOrderService_CreateRescuesNameAndDerivesPayment(t *testing.T) {
	svc, _ := newOrderService(OrderOptions{})
	ctx := context.Background()

	in := sampleOrder()
	in.CustomerName = ""
	in.FirstName = "Asha"
	in.LastName = "Rao"
	in.PaymentMethod = "COD"
	order, err := svc.Create(ctx, customer("u1", "a@b.com"), in)
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", order.Customer.Name)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Empty(t, order.TransactionID)
	assert.Equal(t, "u1", order.UserID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.OrderStatusPending, order.DeliveryStatus)

	in = sampleOrder()
	in.Customer = &models.Customer{Name: "Nested Name", Email: "nested@b.com"}
	order, err = svc.Create(ctx, nil, in)
	require.NoError(t, err)
	assert.Equal(t, "Nested Name", order.Customer.Name)
	assert.Equal(t, "nested@b.com", order.Customer.Email)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	assert.NotEmpty(t, order.TransactionID)
}

func TestOrderService_CreatePublishesEvent(t *testing.T) {
	pub := new(MockPublisher)
	svc := NewOrderService(repository.NewMemoryOrderRepository(), repository.NewMemorySettingsRepository(),
		utils.NewPaymentProcessor(), pub, OrderOptions{}, zap.NewNop())

	var wg sync.WaitGroup
	wg.Add(1)
	pub.On("OrderCreated", mock.Anything, mock.AnythingOfType("*models.Order")).
		Return(nil).
		Run(func(args mock.Arguments) {
			assert.Equal(t, "a@b.com", args.Get(1).(*models.Order).Customer.Email)
			wg.Done()
		})

	_, err := svc.Create(context.Background(), nil, sampleOrder())
	require.NoError(t, err)

	wg.Wait()
	pub.AssertExpectations(t)
}

func TestOrderService_ListMatchesLegacyShape(t *testing.T) {
	svc, repo := newOrderService(OrderOptions{GuestLookup: true})
	ctx := context.Background()

	legacy := models.DecodeOrder(bson.M{
		"customerName":   "Old Buyer",
		"customerEmail":  "a@b.com",
		"deliveryStatus": "Delivered",
		"totalAmount":    "120",
	})
	require.NoError(t, repo.Create(ctx, &legacy))
	_, err := svc.Create(ctx, nil, sampleOrder())
	require.NoError(t, err)

	list, err := svc.List(ctx, nil, repository.OrderQuery{Email: "a@b.com"})
	require.NoError(t, err)
	assert.Len(t, list.Orders, 2)

	delivered, err := svc.List(ctx, nil, repository.OrderQuery{Email: "a@b.com", Status: "delivered"})
	require.NoError(t, err)
	require.Len(t, delivered.Orders, 1)
	assert.Equal(t, "Old Buyer", delivered.Orders[0].Customer.Name)
}

func TestOrderService_ListAuthorization(t *testing.T) {
	ctx := context.Background()
	svc, _ := newOrderService(OrderOptions{GuestLookup: false})
	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, nil, sampleOrder())
		require.NoError(t, err)
	}

	_, err := svc.List(ctx, customer("u1", "a@b.com"), repository.OrderQuery{})
	assert.Equal(t, http.StatusBadRequest, errCode(t, err))

	_, err = svc.List(ctx, nil, repository.OrderQuery{Email: "a@b.com"})
	assert.Equal(t, http.StatusUnauthorized, errCode(t, err))

	_, err = svc.List(ctx, customer("u1", "someone@else.com"), repository.OrderQuery{Email: "a@b.com"})
	assert.Equal(t, http.StatusForbidden, errCode(t, err))

	own, err := svc.List(ctx, customer("u1", "A@B.com"), repository.OrderQuery{Email: "a@b.com"})
	require.NoError(t, err)
	assert.Len(t, own.Orders, 3)

	all, err := svc.List(ctx, admin(), repository.OrderQuery{Limit: 2, Page: 1})
	require.NoError(t, err)
	assert.Len(t, all.Orders, 2)
	assert.Equal(t, int64(3), all.Total)
	assert.True(t, all.HasMore)

	last, err := svc.List(ctx, admin(), repository.OrderQuery{Limit: 2, Page: 2})
	require.NoError(t, err)
	assert.Len(t, last.Orders, 1)
	assert.False(t, last.HasMore)
}

func TestOrderService_Get(t *testing.T) {
	ctx := context.Background()
	svc, _ := newOrderService(OrderOptions{GuestLookup: true})
	in := sampleOrder()
	in.OrderID = "ORD-42"
	order, err := svc.Create(ctx, customer("u1", "a@b.com"), in)
	require.NoError(t, err)

	got, err := svc.Get(ctx, customer("u1", "a@b.com"), "ORD-42", "")
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = svc.Get(ctx, admin(), order.ID.Hex(), "")
	assert.NoError(t, err)

	_, err = svc.Get(ctx, nil, "ORD-42", "A@b.com")
	assert.NoError(t, err)

	_, err = svc.Get(ctx, customer("u2", "x@y.com"), "ORD-42", "")
	assert.Equal(t, http.StatusNotFound, errCode(t, err))

	_, err = svc.Get(ctx, nil, "ORD-missing", "a@b.com")
	assert.Equal(t, http.StatusNotFound, errCode(t, err))
}

func TestOrderService_UpdateSyncsStatusFields(t *testing.T) {
	ctx := context.Background()
	pub := new(MockPublisher)
	pub.On("OrderCreated", mock.Anything, mock.Anything).Return(nil)

	var wg sync.WaitGroup
	wg.Add(1)
	pub.On("OrderUpdated", mock.Anything, mock.AnythingOfType("*models.Order")).
		Return(nil).
		Run(func(mock.Arguments) { wg.Done() })

	svc := NewOrderService(repository.NewMemoryOrderRepository(), repository.NewMemorySettingsRepository(),
		utils.NewPaymentProcessor(), pub, OrderOptions{}, zap.NewNop())
	order, err := svc.Create(ctx, nil, sampleOrder())
	require.NoError(t, err)

	_, err = svc.Update(ctx, customer("u1", "a@b.com"), order.ID.Hex(), UpdateOrderInput{Status: strPtr("shipped")})
	assert.Equal(t, http.StatusForbidden, errCode(t, err))

	_, err = svc.Update(ctx, admin(), order.ID.Hex(), UpdateOrderInput{})
	assert.Equal(t, http.StatusBadRequest, errCode(t, err))

	updated, err := svc.Update(ctx, admin(), order.OrderID, UpdateOrderInput{DeliveryStatus: strPtr("out for delivery")})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusOutForDelivery, updated.Status)
	assert.Equal(t, models.OrderStatusOutForDelivery, updated.DeliveryStatus)
	assert.Equal(t, 590.0, updated.TotalAmount)

	wg.Wait()
	pub.AssertCalled(t, "OrderUpdated", mock.Anything, mock.Anything)

	_, err = svc.Update(ctx, admin(), "ORD-missing", UpdateOrderInput{Status: strPtr("shipped")})
	assert.Equal(t, http.StatusNotFound, errCode(t, err))
}

func TestOrderService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, repo := newOrderService(OrderOptions{})
	order, err := svc.Create(ctx, nil, sampleOrder())
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, errCode(t, svc.Delete(ctx, nil, order.ID.Hex())))
	require.NoError(t, svc.Delete(ctx, admin(), order.ID.Hex()))

	_, err = repo.Get(ctx, order.ID.Hex())
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, errCode(t, svc.Delete(ctx, admin(), order.ID.Hex())))
}

func TestIsLegacyQuery(t *testing.T) {
	tests := []struct {
		name string
		body map[string]interface{}
		want bool
	}{
		{"email only", map[string]interface{}{"email": "a@b.com"}, true},
		{"user id and status", map[string]interface{}{"userId": "u1", "status": "pending"}, true},
		{"new order", map[string]interface{}{"customerEmail": "a@b.com", "items": []interface{}{}}, false},
		{"email with items", map[string]interface{}{"email": "a@b.com", "items": []interface{}{}}, false},
		{"email with customer name", map[string]interface{}{"email": "a@b.com", "customerName": "A"}, false},
		{"empty", map[string]interface{}{}, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsLegacyQuery(tt.body))
		})
	}
}

func TestNewOrderID(t *testing.T) {
	a, b := NewOrderID(), NewOrderID()
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^ORD-\d+-[0-9A-F]{6}$`, a)
}

func TestOrderService_CreateNormalizesCartShapedItems(t *testing.T) {
	svc, repo := newOrderService(OrderOptions{})
	ctx := context.Background()

	body := `{
		"customerName": "A B",
		"customerEmail": "a@b.com",
		"items": [
			{"id": "p1", "name": "Scrub top", "price": "500", "quantity": "1"},
			{"_id": "p2", "price": 40, "quantity": 2},
			{"productId": "p3", "id": "ignored", "price": 10, "quantity": 1}
		],
		"totalAmount": "590"
	}`
	var in CreateOrderInput
	require.NoError(t, json.Unmarshal([]byte(body), &in))

	order, err := svc.Create(ctx, nil, in)
	require.NoError(t, err)

	stored, err := repo.Get(ctx, order.ID.Hex())
	require.NoError(t, err)
	require.Len(t, stored.Items, 3)
	assert.Equal(t, models.OrderItem{ProductID: "p1", Name: "Scrub top", Price: 500, Quantity: 1}, stored.Items[0])
	assert.Equal(t, "p2", stored.Items[1].ProductID)
	assert.Equal(t, 2, stored.Items[1].Quantity)
	assert.Equal(t, "p3", stored.Items[2].ProductID)
	assert.Equal(t, 590.0, stored.TotalAmount)
}

func TestOrderService_CreateRejectsReplayedOrderID(t *testing.T) {
	svc, repo := newOrderService(OrderOptions{GuestLookup: true})
	ctx := context.Background()

	in := sampleOrder()
	in.OrderID = "ORD-1"
	_, err := svc.Create(ctx, nil, in)
	require.NoError(t, err)

	_, err = svc.Create(ctx, nil, in)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, errCode(t, err))

	orders, total, err := repo.Find(ctx, repository.OrderQuery{Email: "a@b.com"})
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, int64(1), total)
}
