package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PriceListItem is one per-customer price override, keyed by pcode.
type PriceListItem struct {
	Pcode    string  `bson:"pcode" json:"pcode"`
	ItemName string  `bson:"itemName" json:"itemName"`
	Price    float64 `bson:"price" json:"price"`
	Notes    string  `bson:"notes" json:"notes"`
}

// PriceList is the customer-specific override table, one document per
// customerId in the 'pricelists' collection. The write path keeps
// items unique per pcode; storage is never trusted to guarantee it.
type PriceList struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID   string             `bson:"customerId" json:"customerId"`
	CustomerName string             `bson:"customerName,omitempty" json:"customerName"`
	Items        []PriceListItem    `bson:"items" json:"items"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// FindItem returns the override for pcode, matching case-sensitively.
func (pl *PriceList) FindItem(pcode string) (PriceListItem, bool) {
	if pl == nil {
		return PriceListItem{}, false
	}
	for _, item := range pl.Items {
		if item.Pcode == pcode {
			return item, true
		}
	}
	return PriceListItem{}, false
}
