package order

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/oceanharvest/storefront-api/internal/apperr"
	"github.com/oceanharvest/storefront-api/internal/models"
	"github.com/oceanharvest/storefront-api/internal/pricing"
)

// GST is charged on the subtotal of every order.
var gstRate = decimal.NewFromFloat(0.09)

// PaymentMethodCOD and PaymentMethodStripe are the two checkout paths.
const (
	PaymentMethodCOD    = "COD"
	PaymentMethodStripe = "Stripe"
)

// LineStore persists and mutates order lines.
type LineStore interface {
	InsertLines(ctx context.Context, lines []models.OrderLine) error
	OrderIDExists(ctx context.Context, orderID string) (bool, error)
	UpdateStatus(ctx context.Context, orderID, status string) (int64, error)
	MarkPaid(ctx context.Context, orderID, status string) (int64, error)
	DeleteOrder(ctx context.Context, orderID string) (int64, error)
	ListAll(ctx context.Context) ([]models.OrderLine, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.OrderLine, error)
	DeleteUnpaidBefore(ctx context.Context, method string, cutoff time.Time) (int64, error)
}

// Catalogue supplies product details for cart entries.
type Catalogue interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
}

// Resolver prices a (customer, pcode) pair.
type Resolver interface {
	Resolve(ctx context.Context, customerID, pcode string) (pricing.ResolvedPrice, error)
}

// CartClearer empties a customer's cart after a successful checkout.
type CartClearer interface {
	Clear(ctx context.Context, userID string) error
}

// DeliveryInfo is the customer/delivery snapshot frozen onto every
// line of an order.
type DeliveryInfo struct {
	Name         string
	Email        string
	Phone        string
	Company      string
	Address      string
	PostalCode   string
	DeliveryDate string
	Remarks      string
}

// PlacedOrder is what a successful checkout hands back to the caller.
type PlacedOrder struct {
	OrderID       string  `json:"orderId"`
	SubtotalPrice float64 `json:"subtotalPrice"`
	TotalPrice    float64 `json:"totalPrice"`
	LineCount     int     `json:"lineCount"`

	// The persisted lines, for callers that need them (the payment
	// gateway builds its line items from these). Not serialized.
	Lines []models.OrderLine `json:"-"`
}

// Service assembles carts into orders and drives the order lifecycle.
type Service struct {
	lines     LineStore
	catalogue Catalogue
	resolver  Resolver
	carts     CartClearer
}

func NewService(lines LineStore, catalogue Catalogue, resolver Resolver, carts CartClearer) *Service {
	return &Service{lines: lines, catalogue: catalogue, resolver: resolver, carts: carts}
}

// Place converts a cart snapshot into persisted order lines sharing
// one order id. All lines are written in a single insert: either the
// whole order lands or none of it does. The cart clear afterwards is
// best-effort; an order already placed is never rolled back because
// the cart failed to empty.
func (s *Service) Place(ctx context.Context, user *models.User, snapshot models.CartData, info DeliveryInfo, method string) (*PlacedOrder, error) {
	if snapshot.IsEmpty() {
		return nil, apperr.New(apperr.KindValidation, "Your cart is empty")
	}
	if method != PaymentMethodCOD && method != PaymentMethodStripe {
		return nil, apperr.Newf(apperr.KindValidation, "Unknown payment method %q", method)
	}

	orderID, err := s.newOrderID(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	status := StatusPlaced
	if method == PaymentMethodStripe {
		status = StatusPaymentPending
	}

	var lines []models.OrderLine
	subtotal := decimal.Zero

	// Stable iteration order so the lines of an order are persisted
	// and reported deterministically.
	for _, itemID := range sortedKeys(snapshot) {
		sizes := snapshot[itemID]

		product, err := s.catalogue.GetByID(ctx, itemID)
		if err != nil {
			return nil, err
		}

		resolved, err := s.resolver.Resolve(ctx, user.CustomerID, product.Pcode)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(resolved.UnitPrice) || math.IsInf(resolved.UnitPrice, 0) {
			return nil, apperr.Newf(apperr.KindConflict, "Invalid price for product %s", product.Pcode)
		}
		unitPrice := decimal.NewFromFloat(resolved.UnitPrice)

		for _, uom := range sortedUOMs(sizes) {
			qty := sizes[uom]
			if qty <= 0 {
				return nil, apperr.Newf(apperr.KindValidation, "Invalid quantity for product %s", product.Pcode)
			}

			lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(qty)))
			subtotal = subtotal.Add(lineTotal)

			lines = append(lines, models.OrderLine{
				OrderID:       orderID,
				Date:          now,
				CustomerID:    user.CustomerID,
				CustomerName:  info.Name,
				Email:         info.Email,
				Phone:         info.Phone,
				Company:       info.Company,
				Address:       info.Address,
				PostalCode:    info.PostalCode,
				DeliveryDate:  info.DeliveryDate,
				Remarks:       info.Remarks,
				ProductName:   product.ItemName,
				Pcode:         product.Pcode,
				UOM:           uom,
				Quantity:      qty,
				UnitPrice:     unitPrice.InexactFloat64(),
				OrderPrice:    lineTotal.InexactFloat64(),
				PaymentMethod: method,
				Payment:       false,
				Status:        status,
			})
		}
	}

	total := subtotal.Add(subtotal.Mul(gstRate))

	// Every line carries the shared order-level money fields.
	for i := range lines {
		lines[i].SubtotalPrice = subtotal.InexactFloat64()
		lines[i].TotalPrice = total.InexactFloat64()
	}

	if err := s.lines.InsertLines(ctx, lines); err != nil {
		// No cart clear: the order is not placed, the caller retries.
		return nil, err
	}

	// Gateway orders keep their cart until the payment confirmation
	// lands; a cancelled checkout must leave the cart intact.
	if method != PaymentMethodStripe {
		if err := s.carts.Clear(ctx, user.ID.Hex()); err != nil {
			log.Warn().Err(err).Str("orderId", orderID).Msg("order placed but cart clear failed")
		}
	}

	return &PlacedOrder{
		OrderID:       orderID,
		SubtotalPrice: subtotal.InexactFloat64(),
		TotalPrice:    total.InexactFloat64(),
		LineCount:     len(lines),
		Lines:         lines,
	}, nil
}

// newOrderID generates an order id unique across concurrent checkouts
// and re-validates it against storage before use.
func (s *Service) newOrderID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		id := fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), suffix)

		exists, err := s.lines.OrderIDExists(ctx, id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
	}
	return "", apperr.New(apperr.KindConflict, "Could not allocate an order id")
}

// SetStatus applies a new lifecycle status to every line of the order.
// Any status may move to any other; the admin back office relies on
// unrestricted transitions.
func (s *Service) SetStatus(ctx context.Context, orderID, status string) error {
	if !ValidStatus(status) {
		return apperr.Newf(apperr.KindValidation, "Unknown order status %q", status)
	}

	matched, err := s.lines.UpdateStatus(ctx, orderID, status)
	if err != nil {
		return err
	}
	if matched == 0 {
		return apperr.New(apperr.KindNotFound, "Order not found")
	}
	return nil
}

// ConfirmPayment flips a gateway order to paid and clears the payer's
// cart. Called from the payment success callback.
func (s *Service) ConfirmPayment(ctx context.Context, orderID, userID string) error {
	matched, err := s.lines.MarkPaid(ctx, orderID, StatusPlaced)
	if err != nil {
		return err
	}
	if matched == 0 {
		return apperr.New(apperr.KindNotFound, "Order not found")
	}

	if err := s.carts.Clear(ctx, userID); err != nil {
		log.Warn().Err(err).Str("orderId", orderID).Msg("payment confirmed but cart clear failed")
	}
	return nil
}

// FailPayment removes every line of the order. This is the one path
// that physically deletes committed orders, and it is idempotent: a
// repeated failure callback finds nothing to delete and succeeds.
func (s *Service) FailPayment(ctx context.Context, orderID string) error {
	deleted, err := s.lines.DeleteOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		log.Info().Str("orderId", orderID).Msg("payment failure for already-deleted order, no-op")
	}
	return nil
}

// ListAll returns every order grouped by order id for the admin view.
func (s *Service) ListAll(ctx context.Context) ([]models.OrderSummary, error) {
	lines, err := s.lines.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return Group(lines), nil
}

// ListForCustomer returns one customer's orders, grouped.
func (s *Service) ListForCustomer(ctx context.Context, customerID string) ([]models.OrderSummary, error) {
	lines, err := s.lines.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return Group(lines), nil
}

// SweepUnpaid deletes gateway orders that never got a payment
// confirmation before the cutoff.
func (s *Service) SweepUnpaid(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.lines.DeleteUnpaidBefore(ctx, PaymentMethodStripe, cutoff)
}

// Group folds order lines into per-order summaries, preserving the
// order the lines arrived in. Grouping is strictly a read-side
// concern.
func Group(lines []models.OrderLine) []models.OrderSummary {
	var summaries []models.OrderSummary
	index := map[string]int{}

	for _, line := range lines {
		i, ok := index[line.OrderID]
		if !ok {
			summaries = append(summaries, models.OrderSummary{
				OrderID:       line.OrderID,
				Date:          line.Date,
				CustomerID:    line.CustomerID,
				CustomerName:  line.CustomerName,
				Email:         line.Email,
				Phone:         line.Phone,
				Company:       line.Company,
				Address:       line.Address,
				PostalCode:    line.PostalCode,
				DeliveryDate:  line.DeliveryDate,
				Remarks:       line.Remarks,
				SubtotalPrice: line.SubtotalPrice,
				TotalPrice:    line.TotalPrice,
				PaymentMethod: line.PaymentMethod,
				Payment:       line.Payment,
				Status:        line.Status,
			})
			i = len(summaries) - 1
			index[line.OrderID] = i
		}

		summaries[i].Items = append(summaries[i].Items, models.OrderSummaryItem{
			ProductName: line.ProductName,
			Pcode:       line.Pcode,
			UOM:         line.UOM,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			OrderPrice:  line.OrderPrice,
		})
	}
	return summaries
}

func sortedKeys(cart models.CartData) []string {
	keys := make([]string, 0, len(cart))
	for k := range cart {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedUOMs(sizes map[string]int) []string {
	uoms := make([]string, 0, len(sizes))
	for u := range sizes {
		uoms = append(uoms, u)
	}
	sort.Strings(uoms)
	return uoms
}
