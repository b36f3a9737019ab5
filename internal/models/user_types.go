package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartData is the per-customer cart: product document id -> (uom -> quantity).
// Quantities are always positive; a zero quantity removes the entry.
type CartData map[string]map[string]int

// Clone returns a deep copy, so snapshots can't be mutated by later
// cart writes.
func (c CartData) Clone() CartData {
	out := make(CartData, len(c))
	for itemID, sizes := range c {
		cp := make(map[string]int, len(sizes))
		for uom, qty := range sizes {
			cp[uom] = qty
		}
		out[itemID] = cp
	}
	return out
}

// IsEmpty reports whether the cart holds no line at all.
func (c CartData) IsEmpty() bool {
	for _, sizes := range c {
		if len(sizes) > 0 {
			return false
		}
	}
	return true
}

// User is a storefront customer in the 'users' collection. The cart
// lives on the user document, exactly one cart per customer.
type User struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name              string             `bson:"name" json:"name"`
	Email             string             `bson:"email" json:"email"`
	Password          string             `bson:"password" json:"-"`
	CustomerID        string             `bson:"customerId,omitempty" json:"customerId"` // join key into price lists
	Phone             string             `bson:"phone" json:"phone"`
	Company           string             `bson:"company" json:"company"`
	Address           string             `bson:"address" json:"address"`
	PostalCode        string             `bson:"postalCode" json:"postalCode"`
	Role              string             `bson:"role" json:"role"`
	CartData          CartData           `bson:"cartData" json:"cartData"`
	ProductsAvailable []string           `bson:"productsAvailable" json:"productsAvailable"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
}
