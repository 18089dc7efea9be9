package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/scrubline/scrubline-backend-go/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedbackService(t *testing.T) {
	ctx := context.Background()
	svc := NewFeedbackService(repository.NewMemoryFeedbackRepository())

	f, err := svc.Submit(ctx, FeedbackInput{Email: "a@b.com", Message: " Sizes run small "})
	require.NoError(t, err)
	assert.Equal(t, "general", f.Type)
	assert.Equal(t, "Sizes run small", f.Message)

	_, err = svc.Submit(ctx, FeedbackInput{Email: "a@b.com", Message: "Late delivery", Type: "Complaint"})
	require.NoError(t, err)

	_, err = svc.Submit(ctx, FeedbackInput{Email: "nope", Message: "hi"})
	assert.Equal(t, http.StatusBadRequest, errCode(t, err))
	_, err = svc.Submit(ctx, FeedbackInput{Email: "a@b.com"})
	assert.Equal(t, http.StatusBadRequest, errCode(t, err))

	complaints, err := svc.List(ctx, "complaint")
	require.NoError(t, err)
	require.Len(t, complaints, 1)
	assert.Equal(t, "Late delivery", complaints[0].Message)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSettingsService(t *testing.T) {
	ctx := context.Background()
	svc := NewSettingsService(repository.NewMemorySettingsRepository())

	s, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.18, s.TaxRate)

	s, err = svc.Update(ctx, SettingsUpdate{Currency: strPtr("usd"), ShippingFee: floatPtr(50), FreeShippingThreshold: floatPtr(500)})
	require.NoError(t, err)
	assert.Equal(t, "USD", s.Currency)
	assert.Equal(t, 0.18, s.TaxRate)

	s, err = svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50.0, s.ShippingFee)

	for _, in := range []SettingsUpdate{
		{TaxRate: floatPtr(1.5)},
		{Currency: strPtr("rupees")},
		{ShippingFee: floatPtr(-1)},
		{ContactEmail: strPtr("bad")},
		{StoreName: strPtr(" ")},
	} {
		_, err := svc.Update(ctx, in)
		assert.Equal(t, http.StatusBadRequest, errCode(t, err))
	}
}
