package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/scrubline/scrubline-backend-go/cart"
	"github.com/scrubline/scrubline-backend-go/apperrors"
	"github.com/scrubline/scrubline-backend-go/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_ReportsJSONFieldNames(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"required", &services.AddressInput{Address: "1 Main St", Pincode: "411001"}, "city is required"},
		{"email", &services.FeedbackInput{Email: "nope", Message: "hi"}, "email must be a valid email"},
		{"min", &services.SignupInput{Email: "a@b.com", Password: "short", FirstName: "A", LastName: "B"}, "password must be at least 8"},
		{"max", &services.ReviewInput{ProductID: "p1", OrderID: "o1", Rating: 9}, "rating must be at most 5"},
		{"cart items missing", &quoteRequest{}, "items is required"},
		{"cart item id", &quoteRequest{Items: []cart.Item{{Price: 5, Quantity: 1}}}, "productId is required"},
		{"cart item price", &quoteRequest{Items: []cart.Item{{ProductID: "p1", Price: -5, Quantity: 1}}}, "price must be at least 0"},
		{"cart item quantity", &quoteRequest{Items: []cart.Item{{ProductID: "p1", Price: 5, Quantity: -2}}}, "quantity must be at least 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.in)
			require.Error(t, err)
			code, message := apperrors.Status(err)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, tt.want, message)
		})
	}

	assert.NoError(t, v.Validate(&services.FeedbackInput{Email: "a@b.com", Message: "hi"}))
	assert.NoError(t, v.Validate(map[string]interface{}{"email": "a@b.com"}))
}

func TestQueryInt(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?page=3&limit=-2&bad=x", nil), httptest.NewRecorder())

	assert.Equal(t, 3, queryInt(c, "page", 1))
	assert.Equal(t, 0, queryInt(c, "limit", 0))
	assert.Equal(t, 7, queryInt(c, "bad", 7))
	assert.Equal(t, 1, queryInt(c, "missing", 1))
}

func TestOrderID_Precedence(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodPut, "/api/orders?id=from-query", nil), httptest.NewRecorder())
	assert.Equal(t, "from-query", orderID(c, "from-body"))

	c.SetParamNames("id")
	c.SetParamValues("from-path")
	assert.Equal(t, "from-path", orderID(c, "from-body"))

	c = e.NewContext(httptest.NewRequest(http.MethodPut, "/api/orders", nil), httptest.NewRecorder())
	assert.Equal(t, "from-body", orderID(c, "from-body"))
}
