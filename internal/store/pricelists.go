package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oceanharvest/storefront-api/internal/apperr"
	"github.com/oceanharvest/storefront-api/internal/models"
)

// PriceListStore reads and writes the per-customer price override
// documents, one per customerId.
type PriceListStore struct {
	coll *mongo.Collection
}

func NewPriceListStore(coll *mongo.Collection) *PriceListStore {
	return &PriceListStore{coll: coll}
}

// GetByCustomerID finds a price list by exact customerId match.
func (s *PriceListStore) GetByCustomerID(ctx context.Context, customerID string) (*models.PriceList, error) {
	var pl models.PriceList
	err := s.coll.FindOne(ctx, bson.M{"customerId": customerID}).Decode(&pl)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.New(apperr.KindNotFound, "No price list found for this customer ID")
		}
		return nil, apperr.Wrap(apperr.KindUpstream, "failed to load price list", err)
	}
	return &pl, nil
}

// GetByCustomerIDFold finds a price list matching customerId without
// regard to case. Customer ids sometimes arrive with inconsistent
// casing from upstream systems.
func (s *PriceListStore) GetByCustomerIDFold(ctx context.Context, customerID string) (*models.PriceList, error) {
	collation := &options.Collation{Locale: "en", Strength: 2}

	var pl models.PriceList
	err := s.coll.FindOne(ctx, bson.M{"customerId": customerID},
		options.FindOne().SetCollation(collation)).Decode(&pl)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.New(apperr.KindNotFound, "No price list found for this customer ID")
		}
		return nil, apperr.Wrap(apperr.KindUpstream, "failed to load price list", err)
	}
	return &pl, nil
}

// UpsertItem inserts or updates the entry for item.Pcode in the
// customer's price list, creating the list when it doesn't exist yet.
// An existing pcode entry is always updated in place, never duplicated.
func (s *PriceListStore) UpsertItem(ctx context.Context, customerID string, item models.PriceListItem) error {
	now := time.Now()

	// 1. Try updating an existing entry for this pcode.
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"customerId": customerID, "items.pcode": item.Pcode},
		bson.M{"$set": bson.M{
			"items.$.itemName": item.ItemName,
			"items.$.price":    item.Price,
			"items.$.notes":    item.Notes,
			"updatedAt":        now,
		}})
	if err != nil {
		return apperr.Wrap(apperr.KindUpstream, "failed to update price list item", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	// 2. No entry for this pcode yet: append it, creating the document
	// if the customer has no price list at all.
	_, err = s.coll.UpdateOne(ctx,
		bson.M{"customerId": customerID},
		bson.M{
			"$push":        bson.M{"items": item},
			"$set":         bson.M{"updatedAt": now},
			"$setOnInsert": bson.M{"customerId": customerID},
		},
		options.Update().SetUpsert(true))
	if err != nil {
		return apperr.Wrap(apperr.KindUpstream, "failed to add price list item", err)
	}
	return nil
}

// RemoveItem removes the entry for pcode from the customer's price
// list. Missing list or missing item both come back as not-found.
func (s *PriceListStore) RemoveItem(ctx context.Context, customerID, pcode string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"customerId": customerID},
		bson.M{"$pull": bson.M{"items": bson.M{"pcode": pcode}}})
	if err != nil {
		return apperr.Wrap(apperr.KindUpstream, "failed to remove price list item", err)
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.KindNotFound, "Price list not found for this customer")
	}
	if res.ModifiedCount == 0 {
		return apperr.New(apperr.KindNotFound, "Item not found in price list")
	}
	return nil
}
