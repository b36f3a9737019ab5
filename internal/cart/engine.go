package cart

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/oceanharvest/storefront-api/internal/apperr"
	"github.com/oceanharvest/storefront-api/internal/models"
	"github.com/oceanharvest/storefront-api/internal/pricing"
)

// Store is where the cart map lives (the user document).
type Store interface {
	GetCart(ctx context.Context, userID string) (models.CartData, error)
	SaveCart(ctx context.Context, userID string, cart models.CartData) error
}

// Catalogue validates product ids and supplies pcodes for pricing.
type Catalogue interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
}

// Resolver prices a (customer, pcode) pair.
type Resolver interface {
	Resolve(ctx context.Context, customerID, pcode string) (pricing.ResolvedPrice, error)
}

// Engine maintains the per-customer cart: product id -> uom -> qty.
// Mutations are read-modify-write on the whole map, last write wins.
type Engine struct {
	store     Store
	catalogue Catalogue
	resolver  Resolver
}

func NewEngine(store Store, catalogue Catalogue, resolver Resolver) *Engine {
	return &Engine{store: store, catalogue: catalogue, resolver: resolver}
}

// Add increments the quantity for (itemID, uom) by qty, creating the
// entry when it doesn't exist. qty must be positive.
func (e *Engine) Add(ctx context.Context, userID, itemID, uom string, qty int) (models.CartData, error) {
	if qty <= 0 {
		return nil, apperr.New(apperr.KindValidation, "Quantity must be a positive number")
	}
	if uom == "" {
		return nil, apperr.New(apperr.KindValidation, "Unit of measure is required")
	}

	// Reject ids that don't resolve in the catalogue up front rather
	// than letting them surface at checkout.
	if _, err := e.catalogue.GetByID(ctx, itemID); err != nil {
		return nil, err
	}

	cart, err := e.store.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if cart[itemID] == nil {
		cart[itemID] = map[string]int{}
	}
	cart[itemID][uom] += qty

	if err := e.store.SaveCart(ctx, userID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Set writes the absolute quantity for (itemID, uom). A quantity of
// zero removes the uom entry; a product left with no uom entries is
// removed entirely.
func (e *Engine) Set(ctx context.Context, userID, itemID, uom string, qty int) (models.CartData, error) {
	if qty < 0 {
		return nil, apperr.New(apperr.KindValidation, "Quantity must not be negative")
	}
	if uom == "" {
		return nil, apperr.New(apperr.KindValidation, "Unit of measure is required")
	}

	cart, err := e.store.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if qty == 0 {
		if sizes, ok := cart[itemID]; ok {
			delete(sizes, uom)
			if len(sizes) == 0 {
				delete(cart, itemID)
			}
		}
	} else {
		if cart[itemID] == nil {
			cart[itemID] = map[string]int{}
		}
		cart[itemID][uom] = qty
	}

	if err := e.store.SaveCart(ctx, userID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Remove drops the whole product entry regardless of its uom
// breakdown. Reports not-found when the product isn't in the cart.
func (e *Engine) Remove(ctx context.Context, userID, itemID string) (models.CartData, error) {
	cart, err := e.store.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if _, ok := cart[itemID]; !ok {
		return nil, apperr.New(apperr.KindNotFound, "Item not found in cart")
	}
	delete(cart, itemID)

	if err := e.store.SaveCart(ctx, userID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear empties the cart. Used after checkout and on logout.
func (e *Engine) Clear(ctx context.Context, userID string) error {
	return e.store.SaveCart(ctx, userID, models.CartData{})
}

// Snapshot returns a copy of the cart safe to price and assemble from
// while later mutations land.
func (e *Engine) Snapshot(ctx context.Context, userID string) (models.CartData, error) {
	cart, err := e.store.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return cart.Clone(), nil
}

// Total prices the snapshot through the resolver, so the cart total a
// customer sees always matches what checkout will charge. Lines whose
// product has vanished from the catalogue are skipped with a warning;
// an empty cart totals zero.
func (e *Engine) Total(ctx context.Context, userID, customerID string) (decimal.Decimal, error) {
	cart, err := e.store.GetCart(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for itemID, sizes := range cart {
		product, err := e.catalogue.GetByID(ctx, itemID)
		if err != nil {
			if apperr.IsKind(err, apperr.KindNotFound) {
				log.Warn().Str("itemId", itemID).Msg("cart references missing product, skipping in total")
				continue
			}
			return decimal.Zero, err
		}

		resolved, err := e.resolver.Resolve(ctx, customerID, product.Pcode)
		if err != nil {
			return decimal.Zero, err
		}

		price := decimal.NewFromFloat(resolved.UnitPrice)
		for _, qty := range sizes {
			total = total.Add(price.Mul(decimal.NewFromInt(int64(qty))))
		}
	}
	return total, nil
}
