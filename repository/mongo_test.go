package repository

import (
	"context"
	"testing"
	"time"

	"github.com/scrubline/scrubline-backend-go/database"
	"github.com/scrubline/scrubline-backend-go/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoReviewRepository_Upsert(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("created", func(mt *mtest.T) {
		repo := NewMongoReviewRepository(newMockStore(mt))
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: int32(1)},
			bson.E{Key: "nModified", Value: int32(0)},
			bson.E{Key: "upserted", Value: bson.A{bson.D{
				{Key: "index", Value: int32(0)},
				{Key: "_id", Value: id},
			}}},
		))

		rv := &models.Review{ProductID: "p1", UserID: "u1", OrderID: "o1", Rating: 5}
		created, err := repo.Upsert(context.Background(), rv)
		require.NoError(mt, err)
		assert.True(mt, created)
		assert.Equal(mt, id, rv.ID)
	})

	mt.Run("updated", func(mt *mtest.T) {
		repo := NewMongoReviewRepository(newMockStore(mt))
		id := primitive.NewObjectID()
		createdAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(
				bson.E{Key: "n", Value: int32(1)},
				bson.E{Key: "nModified", Value: int32(1)},
			),
			mtest.CreateCursorResponse(0, mt.DB.Name()+"."+database.Reviews, mtest.FirstBatch, bson.D{
				{Key: "_id", Value: id},
				{Key: "createdAt", Value: createdAt},
			}),
		)

		rv := &models.Review{ProductID: "p1", UserID: "u1", OrderID: "o1", Rating: 3}
		created, err := repo.Upsert(context.Background(), rv)
		require.NoError(mt, err)
		assert.False(mt, created)
		assert.Equal(mt, id, rv.ID)
		assert.True(mt, createdAt.Equal(rv.CreatedAt))
	})
}

func TestMongoSettingsRepository_DefaultsWhenMissing(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("missing", func(mt *mtest.T) {
		repo := NewMongoSettingsRepository(newMockStore(mt))
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+"."+database.Settings, mtest.FirstBatch))

		s, err := repo.Get(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, models.DefaultSettings(), s)
	})
}

func TestMongoWishlistRepository_FindByEmail(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("legacy item ids", func(mt *mtest.T) {
		repo := NewMongoWishlistRepository(newMockStore(mt))
		legacyID := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+"."+database.Wishlists, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "email", Value: "Nurse@Example.com"},
			{Key: "items", Value: bson.A{
				bson.D{{Key: "_id", Value: legacyID}, {Key: "name", Value: "Cap"}},
				bson.D{{Key: "id", Value: "p2"}, {Key: "name", Value: "Clogs"}},
			}},
		}))

		w, err := repo.FindByEmail(context.Background(), "nurse@example.com")
		require.NoError(mt, err)
		assert.Equal(mt, "Nurse@Example.com", w.Email)
		assert.True(mt, w.Contains(legacyID.Hex()))
		assert.True(mt, w.Contains("p2"))
	})
}

func TestEmailPattern(t *testing.T) {
	p := EmailPattern("a.b+c@x.com")
	assert.Equal(t, `^a\.b\+c@x\.com$`, p.Pattern)
	assert.Equal(t, "i", p.Options)
}

func TestRevenuePipeline(t *testing.T) {
	_, err := RevenuePipeline("year")
	assert.Error(t, err)

	for period, format := range map[string]string{PeriodDay: "%Y-%m-%d", PeriodWeek: "%G-W%V", PeriodMonth: "%Y-%m"} {
		pipeline, err := RevenuePipeline(period)
		require.NoError(t, err)
		require.Len(t, pipeline, 3)
		group := pipeline[0][0].Value.(bson.M)
		key := group["_id"].(bson.M)["$dateToString"].(bson.M)
		assert.Equal(t, format, key["format"])
	}
}

func TestPaymentMethodsPipeline_GroupsMissingAsOther(t *testing.T) {
	pipeline := PaymentMethodsPipeline()
	group := pipeline[0][0].Value.(bson.M)
	cond := group["_id"].(bson.M)["$cond"].(bson.A)
	assert.Equal(t, "Other", cond[1])
}

func TestTopProductsPipeline_Limit(t *testing.T) {
	pipeline := TopProductsPipeline(5)
	last := pipeline[len(pipeline)-1][0]
	assert.Equal(t, "$limit", last.Key)
	assert.Equal(t, int64(5), last.Value)
}

func TestMongoWishlistRepository_AddItem(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("upserts", func(mt *mtest.T) {
		repo := NewMongoWishlistRepository(newMockStore(mt))
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: int32(1)},
			bson.E{Key: "nModified", Value: int32(0)},
			bson.E{Key: "upserted", Value: bson.A{bson.D{
				{Key: "index", Value: int32(0)},
				{Key: "_id", Value: primitive.NewObjectID()},
			}}},
		))

		err := repo.AddItem(context.Background(), "Nurse@Example.com", models.WishlistItem{ID: "p1", Name: "Cap"})
		require.NoError(mt, err)
	})

	mt.Run("concurrent insert lost the race", func(mt *mtest.T) {
		repo := NewMongoWishlistRepository(newMockStore(mt))
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: wishlists index: email_1",
		}))

		err := repo.AddItem(context.Background(), "nurse@example.com", models.WishlistItem{ID: "p1", Name: "Cap"})
		assert.NoError(mt, err)
	})
}

func TestMongoAddressRepository_ListByUserSortsOldestFirst(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("sort", func(mt *mtest.T) {
		repo := NewMongoAddressRepository(newMockStore(mt))
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+"."+database.Addresses, mtest.FirstBatch))

		addresses, err := repo.ListByUser(context.Background(), "u1")
		require.NoError(mt, err)
		assert.Empty(mt, addresses)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		sort, ok := started.Command.Lookup("sort").DocumentOK()
		require.True(mt, ok)
		elems, err := sort.Elements()
		require.NoError(mt, err)
		require.Len(mt, elems, 2)
		assert.Equal(mt, "createdAt", elems[0].Key())
		assert.Equal(mt, "_id", elems[1].Key())
	})
}
