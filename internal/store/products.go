package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oceanharvest/storefront-api/internal/apperr"
	"github.com/oceanharvest/storefront-api/internal/models"
)

// productCache is the slice of the catalogue cache the store drives.
// *cache.ProductCache satisfies it, nil receiver included.
type productCache interface {
	Get(ctx context.Context, pcode string) (*models.Product, bool)
	Set(ctx context.Context, p *models.Product)
	Invalidate(ctx context.Context, pcode string)
}

// ProductStore reads and writes the catalogue. Lookups by pcode go
// through the optional Redis cache; writes invalidate it.
type ProductStore struct {
	coll  *mongo.Collection
	cache productCache
}

func NewProductStore(coll *mongo.Collection, c productCache) *ProductStore {
	return &ProductStore{coll: coll, cache: c}
}

// GetByPcode looks a product up by its product code, case-sensitively.
func (s *ProductStore) GetByPcode(ctx context.Context, pcode string) (*models.Product, error) {
	if p, ok := s.cache.Get(ctx, pcode); ok {
		return p, nil
	}

	var p models.Product
	err := s.coll.FindOne(ctx, bson.M{"pcode": pcode}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.Newf(apperr.KindNotFound, "Product %s not found", pcode)
		}
		return nil, apperr.Wrap(apperr.KindUpstream, "failed to load product", err)
	}

	s.cache.Set(ctx, &p)
	return &p, nil
}

// GetByID looks a product up by its document id (hex string). Cart
// entries are keyed by this id.
func (s *ProductStore) GetByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "Invalid product id")
	}

	var p models.Product
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.New(apperr.KindNotFound, "Product not found")
		}
		return nil, apperr.Wrap(apperr.KindUpstream, "failed to load product", err)
	}
	return &p, nil
}

// List returns the whole catalogue sorted by item name, the order the
// storefront renders it in.
func (s *ProductStore) List(ctx context.Context) ([]models.Product, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "itemName", Value: 1}}))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "failed to list products", err)
	}
	defer cur.Close(ctx)

	var products []models.Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "failed to decode products", err)
	}
	return products, nil
}

// Insert adds a new catalogue item. The pcode must be unique.
func (s *ProductStore) Insert(ctx context.Context, p *models.Product) error {
	existing, err := s.GetByPcode(ctx, p.Pcode)
	if err != nil && !apperr.IsKind(err, apperr.KindNotFound) {
		return err
	}
	if existing != nil {
		return apperr.Newf(apperr.KindConflict, "Product %s already exists", p.Pcode)
	}

	if _, err := s.coll.InsertOne(ctx, p); err != nil {
		return apperr.Wrap(apperr.KindUpstream, "failed to insert product", err)
	}
	s.cache.Invalidate(ctx, p.Pcode)
	return nil
}

// Update replaces the mutable fields of a product by document id. The
// pcode itself is immutable, so the cache entry to drop is keyed by
// the stored pcode, never by whatever the request carried.
func (s *ProductStore) Update(ctx context.Context, id string, p *models.Product) error {
	stored, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"itemName":      p.ItemName,
		"price":         p.Price,
		"baseUnit":      p.BaseUnit,
		"packagingSize": p.PackagingSize,
		"uomOptions":    p.UOMOptions,
		"category":      p.Category,
		"image":         p.Image,
		"bestseller":    p.Bestseller,
	}}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": stored.ID}, update)
	if err != nil {
		return apperr.Wrap(apperr.KindUpstream, "failed to update product", err)
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.KindNotFound, "Product not found")
	}
	s.cache.Invalidate(ctx, stored.Pcode)
	return nil
}

// Remove deletes a product by document id.
func (s *ProductStore) Remove(ctx context.Context, id string) error {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": p.ID}); err != nil {
		return apperr.Wrap(apperr.KindUpstream, "failed to remove product", err)
	}
	s.cache.Invalidate(ctx, p.Pcode)
	return nil
}
