package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UOMOption is one unit-of-measure a product can be ordered in, with
// the quantity of base units a single UOM represents (e.g. CTN of 12).
type UOMOption struct {
	Code      string  `bson:"code" json:"code"`
	QtyPerUOM float64 `bson:"qtyPerUOM" json:"qtyPerUOM"`
}

// Product is a catalogue item in the 'products' collection.
// Field names match the legacy documents so existing data keeps working.
type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Pcode         string             `bson:"pcode" json:"pcode"`
	ItemName      string             `bson:"itemName" json:"itemName"`
	Price         float64            `bson:"price" json:"price"` // base unit price, overridable per customer
	BaseUnit      string             `bson:"baseUnit" json:"baseUnit"`
	PackagingSize string             `bson:"packagingSize" json:"packagingSize"`
	UOMOptions    []UOMOption        `bson:"uomOptions" json:"uomOptions"`
	Category      string             `bson:"category,omitempty" json:"category"`
	Image         []string           `bson:"image" json:"image"`
	Bestseller    bool               `bson:"bestseller" json:"bestseller"`
	Date          time.Time          `bson:"date" json:"date"`
}
