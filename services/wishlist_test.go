package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/scrubline/scrubline-backend-go/models"
	"github.com/scrubline/scrubline-backend-go/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishlistService_AddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := NewWishlistService(repository.NewMemoryWishlistRepository())

	in := WishlistToggleInput{Email: "Nurse@Example.com", Action: WishlistAdd, Product: WishlistProduct{ID: "p1", Name: "Cap", Price: 199}}
	_, err := svc.Toggle(ctx, in)
	require.NoError(t, err)

	in.Email = "nurse@example.com"
	res, err := svc.Toggle(ctx, in)
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)

	page, err := svc.Get(ctx, "NURSE@example.com", 1, 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "p1", page.Items[0].ID)
}

func TestWishlistService_RemoveMissingIsNoop(t *testing.T) {
	ctx := context.Background()
	svc := NewWishlistService(repository.NewMemoryWishlistRepository())

	res, err := svc.Toggle(ctx, WishlistToggleInput{Email: "a@b.com", Action: WishlistRemove, ProductID: "p1"})
	require.NoError(t, err)
	assert.Empty(t, res.Items)

	_, err = svc.Toggle(ctx, WishlistToggleInput{Email: "a@b.com", Action: WishlistAdd, ProductID: "p1"})
	require.NoError(t, err)

	res, err = svc.Toggle(ctx, WishlistToggleInput{Email: "a@b.com", Action: WishlistRemove, ProductID: "p9"})
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
}

func TestWishlistService_RemoveMatchesLegacyID(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryWishlistRepository()
	require.NoError(t, repo.Create(ctx, &models.Wishlist{
		Email: "a@b.com",
		Items: []models.WishlistItem{{LegacyID: "p1", Name: "Old"}, {ID: "p2", Name: "New"}},
	}))
	svc := NewWishlistService(repo)

	res, err := svc.Toggle(ctx, WishlistToggleInput{Email: "a@b.com", Action: WishlistAdd, ProductID: "p1"})
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)

	res, err = svc.Toggle(ctx, WishlistToggleInput{Email: "a@b.com", ProductID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, WishlistRemove, res.Action)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "p2", res.Items[0].ID)
}

func TestWishlistService_GetPaginates(t *testing.T) {
	ctx := context.Background()
	svc := NewWishlistService(repository.NewMemoryWishlistRepository())
	for _, id := range []string{"p1", "p2", "p3"} {
		_, err := svc.Toggle(ctx, WishlistToggleInput{Email: "a@b.com", ProductID: id})
		require.NoError(t, err)
	}

	page, err := svc.Get(ctx, "a@b.com", 2, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "p3", page.Items[0].ID)
	assert.Equal(t, int64(3), page.Total)
	assert.False(t, page.HasMore)

	empty, err := svc.Get(ctx, "nobody@b.com", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
}

func TestWishlistService_Validation(t *testing.T) {
	svc := NewWishlistService(repository.NewMemoryWishlistRepository())

	_, err := svc.Toggle(context.Background(), WishlistToggleInput{ProductID: "p1"})
	assert.Equal(t, http.StatusBadRequest, errCode(t, err))

	_, err = svc.Toggle(context.Background(), WishlistToggleInput{Email: "a@b.com"})
	assert.Equal(t, http.StatusBadRequest, errCode(t, err))

	_, err = svc.Toggle(context.Background(), WishlistToggleInput{Email: "a@b.com", ProductID: "p1", Action: "flip"})
	assert.Equal(t, http.StatusBadRequest, errCode(t, err))
}
