package pricing

import (
	"context"

	"github.com/oceanharvest/storefront-api/internal/apperr"
	"github.com/oceanharvest/storefront-api/internal/models"
)

// Source says where a resolved price came from.
type Source string

const (
	SourceOverride  Source = "override"  // customer price-list entry
	SourceCatalogue Source = "catalogue" // product base price
)

// ResolvedPrice is the effective unit price for one (customer, pcode)
// pair.
type ResolvedPrice struct {
	UnitPrice float64 `json:"unitPrice"`
	Source    Source  `json:"source"`
}

// Catalogue is the slice of the product store the resolver needs.
type Catalogue interface {
	GetByPcode(ctx context.Context, pcode string) (*models.Product, error)
}

// PriceLists is the slice of the price-list store the resolver needs.
// GetByCustomerIDFold matches customerId without regard to case.
type PriceLists interface {
	GetByCustomerID(ctx context.Context, customerID string) (*models.PriceList, error)
	GetByCustomerIDFold(ctx context.Context, customerID string) (*models.PriceList, error)
}

// Resolver maps a (customer, pcode) pair to the effective unit price:
// the customer's price-list override when one exists, otherwise the
// catalogue base price. Read-only.
type Resolver struct {
	catalogue  Catalogue
	priceLists PriceLists
}

func NewResolver(catalogue Catalogue, priceLists PriceLists) *Resolver {
	return &Resolver{catalogue: catalogue, priceLists: priceLists}
}

// Resolve returns the effective unit price for pcode as seen by the
// customer. pcode matching is case-sensitive; customerId matching
// falls back to a case-insensitive lookup because upstream systems
// enter customer ids with inconsistent casing.
func (r *Resolver) Resolve(ctx context.Context, customerID, pcode string) (ResolvedPrice, error) {
	if customerID != "" {
		pl, err := r.lookupPriceList(ctx, customerID)
		if err != nil {
			return ResolvedPrice{}, err
		}
		if item, ok := pl.FindItem(pcode); ok {
			return ResolvedPrice{UnitPrice: item.Price, Source: SourceOverride}, nil
		}
	}

	product, err := r.catalogue.GetByPcode(ctx, pcode)
	if err != nil {
		return ResolvedPrice{}, err
	}
	return ResolvedPrice{UnitPrice: product.Price, Source: SourceCatalogue}, nil
}

// lookupPriceList tries the exact customerId first, then the
// case-insensitive fallback. No price list at all is not an error,
// the caller falls through to catalogue pricing.
func (r *Resolver) lookupPriceList(ctx context.Context, customerID string) (*models.PriceList, error) {
	pl, err := r.priceLists.GetByCustomerID(ctx, customerID)
	if err == nil {
		return pl, nil
	}
	if !apperr.IsKind(err, apperr.KindNotFound) {
		return nil, err
	}

	pl, err = r.priceLists.GetByCustomerIDFold(ctx, customerID)
	if err == nil {
		return pl, nil
	}
	if apperr.IsKind(err, apperr.KindNotFound) {
		return nil, nil
	}
	return nil, err
}
