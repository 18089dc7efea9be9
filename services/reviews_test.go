package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/scrubline/scrubline-backend-go/models"
	"github.com/scrubline/scrubline-backend-go/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReviewService_UpsertByTriple(t *testing.T) {
	ctx := context.Background()
	users := repository.NewMemoryUserRepository()
	u := &models.User{Email: "a@b.com", FirstName: "Asha", LastName: "Rao"}
	require.NoError(t, users.Create(ctx, u))
	svc := NewReviewService(repository.NewMemoryReviewRepository(), users, zap.NewNop())
	caller := customer(u.ID.Hex(), "a@b.com")

	review, created, err := svc.Submit(ctx, caller, ReviewInput{ProductID: "p1", OrderID: "o1", Rating: 3, Comment: "ok"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Asha Rao", review.Username)

	_, created, err = svc.Submit(ctx, caller, ReviewInput{ProductID: "p1", OrderID: "o1", Rating: 5, Comment: "great"})
	require.NoError(t, err)
	assert.False(t, created)

	_, created, err = svc.Submit(ctx, caller, ReviewInput{ProductID: "p1", OrderID: "o2", Rating: 4})
	require.NoError(t, err)
	assert.True(t, created)

	summary, err := svc.Summary(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Count)
	assert.Equal(t, 4.5, summary.AverageRating)

	mine, err := svc.ListByUser(ctx, caller.UserID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestReviewService_Validation(t *testing.T) {
	ctx := context.Background()
	svc := NewReviewService(repository.NewMemoryReviewRepository(), nil, zap.NewNop())

	_, _, err := svc.Submit(ctx, nil, ReviewInput{ProductID: "p1", OrderID: "o1", Rating: 5})
	assert.Equal(t, http.StatusUnauthorized, errCode(t, err))

	for _, rating := range []int{0, 6, -1} {
		_, _, err = svc.Submit(ctx, customer("u1", "a@b.com"), ReviewInput{ProductID: "p1", OrderID: "o1", Rating: rating})
		assert.Equal(t, http.StatusBadRequest, errCode(t, err))
	}

	_, _, err = svc.Submit(ctx, customer("u1", "a@b.com"), ReviewInput{ProductID: "p1", Rating: 5})
	assert.Equal(t, http.StatusBadRequest, errCode(t, err))

	review, _, err := svc.Submit(ctx, customer("u1", "nurse@b.com"), ReviewInput{ProductID: "p1", OrderID: "o1", Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, "nurse", review.Username)
}

func TestReviewService_SummaryWithoutReviews(t *testing.T) {
	svc := NewReviewService(repository.NewMemoryReviewRepository(), nil, zap.NewNop())
	summary, err := svc.Summary(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Count)
	assert.Equal(t, 0.0, summary.AverageRating)
	assert.Empty(t, summary.Reviews)
}
