package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/oceanharvest/storefront-api/internal/models"
)

// recordingCache captures invalidations so cache-key hygiene is
// observable without Redis.
type recordingCache struct {
	invalidated []string
}

func (r *recordingCache) Get(context.Context, string) (*models.Product, bool) { return nil, false }

func (r *recordingCache) Set(context.Context, *models.Product) {}

func (r *recordingCache) Invalidate(_ context.Context, pcode string) {
	r.invalidated = append(r.invalidated, pcode)
}

func TestUpdateInvalidatesStoredPcode(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("stale pcode in request", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		rc := &recordingCache{}
		s := NewProductStore(mt.Coll, rc)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "storefront.products", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "pcode", Value: "P1"},
			{Key: "itemName", Value: "Jasmine Rice 5kg"},
			{Key: "price", Value: 12.50},
		}))
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		// The edit request carries a wrong pcode; the cache entry that
		// must drop is the one keyed by the stored pcode.
		err := s.Update(context.Background(), oid.Hex(), &models.Product{Pcode: "P9", ItemName: "Jasmine Rice 5kg", Price: 11.00})
		require.NoError(mt, err)
		assert.Equal(mt, []string{"P1"}, rc.invalidated)
	})

	mt.Run("missing product", func(mt *mtest.T) {
		rc := &recordingCache{}
		s := NewProductStore(mt.Coll, rc)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "storefront.products", mtest.FirstBatch))

		err := s.Update(context.Background(), primitive.NewObjectID().Hex(), &models.Product{Pcode: "P1"})
		require.Error(mt, err)
		assert.Empty(mt, rc.invalidated)
	})
}
