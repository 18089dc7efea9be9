package services

import (
	"context"
	"testing"

	"github.com/scrubline/scrubline-backend-go/apperrors"
	"github.com/scrubline/scrubline-backend-go/models"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func errCode(t *testing.T, err error) int {
	t.Helper()
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	return appErr.Code
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) OrderCreated(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPublisher) OrderUpdated(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPublisher) Close() {
	m.Called()
}

func admin() *Caller {
	return &Caller{UserID: "admin-1", Email: "admin@scrubline.in", Role: models.RoleAdmin}
}

func customer(id, email string) *Caller {
	return &Caller{UserID: id, Email: email, Role: models.RoleCustomer}
}

func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }
func boolPtr(v bool) *bool        { return &v }
