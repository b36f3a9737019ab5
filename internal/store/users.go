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

// UserStore reads and writes customer documents, including the cart
// map that lives on them.
type UserStore struct {
	coll *mongo.Collection
}

func NewUserStore(coll *mongo.Collection) *UserStore {
	return &UserStore{coll: coll}
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "Invalid user id")
	}

	var u models.User
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.New(apperr.KindNotFound, "User not found")
		}
		return nil, apperr.Wrap(apperr.KindUpstream, "failed to load user", err)
	}
	return &u, nil
}

func (s *UserStore) GetByCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	var u models.User
	err := s.coll.FindOne(ctx, bson.M{"customerId": customerID}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.New(apperr.KindNotFound, "Invalid Customer ID")
		}
		return nil, apperr.Wrap(apperr.KindUpstream, "failed to load user", err)
	}
	return &u, nil
}

// Exists reports whether a user already claims the email or, when set,
// the customerId.
func (s *UserStore) Exists(ctx context.Context, email, customerID string) (bool, error) {
	or := []bson.M{{"email": email}}
	if customerID != "" {
		or = append(or, bson.M{"customerId": customerID})
	}
	count, err := s.coll.CountDocuments(ctx, bson.M{"$or": or})
	if err != nil {
		return false, apperr.Wrap(apperr.KindUpstream, "failed to check existing users", err)
	}
	return count > 0, nil
}

func (s *UserStore) Insert(ctx context.Context, u *models.User) (string, error) {
	res, err := s.coll.InsertOne(ctx, u)
	if err != nil {
		return "", apperr.Wrap(apperr.KindUpstream, "failed to create user", err)
	}
	oid, _ := res.InsertedID.(primitive.ObjectID)
	return oid.Hex(), nil
}

// List returns every customer for the admin back office, newest first.
func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "failed to list users", err)
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "failed to decode users", err)
	}
	return users, nil
}

// UpdateAdminFields sets the admin-managed fields on a user: the
// business customerId and the product codes visible to them.
func (s *UserStore) UpdateAdminFields(ctx context.Context, id, customerID string, productsAvailable []string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.New(apperr.KindValidation, "Invalid user id")
	}
	if productsAvailable == nil {
		productsAvailable = []string{}
	}

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"customerId":        customerID,
		"productsAvailable": productsAvailable,
	}})
	if err != nil {
		return apperr.Wrap(apperr.KindUpstream, "failed to update user", err)
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.KindNotFound, "User not found")
	}
	return nil
}

// GetCart loads the cart map off the user document. A missing map is
// an empty cart, never an error.
func (s *UserStore) GetCart(ctx context.Context, userID string) (models.CartData, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.CartData == nil {
		return models.CartData{}, nil
	}
	return u.CartData, nil
}

// SaveCart replaces the cart map on the user document. Last write
// wins; a single customer drives their own cart from one session.
func (s *UserStore) SaveCart(ctx context.Context, userID string, cart models.CartData) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return apperr.New(apperr.KindValidation, "Invalid user id")
	}
	if cart == nil {
		cart = models.CartData{}
	}

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"cartData": cart}})
	if err != nil {
		return apperr.Wrap(apperr.KindUpstream, "failed to save cart", err)
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.KindNotFound, "User not found")
	}
	return nil
}
