package payments

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"

	"github.com/oceanharvest/storefront-api/internal/apperr"
	"github.com/oceanharvest/storefront-api/internal/models"
)

// Client creates Stripe checkout sessions for the gateway payment
// flow. When no secret key is configured the gateway path is disabled
// and callers get a validation error instead of a broken redirect.
type Client struct {
	enabled  bool
	currency string
}

func NewClient(secretKey, currency string) *Client {
	if secretKey == "" {
		return &Client{enabled: false, currency: currency}
	}
	stripe.Key = secretKey
	return &Client{enabled: true, currency: currency}
}

func (c *Client) Enabled() bool {
	return c.enabled
}

// CreateCheckoutSession builds a session covering every line of the
// order plus GST as its own line item, and returns the hosted
// checkout URL. The verify callback hits /verify with the orderId on
// both the success and cancel paths.
func (c *Client) CreateCheckoutSession(orderID string, lines []models.OrderLine, gstAmount float64, origin string) (string, error) {
	if !c.enabled {
		return "", apperr.New(apperr.KindValidation, "Online payment is not available")
	}

	var lineItems []*stripe.CheckoutSessionLineItemParams
	for _, line := range lines {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(c.currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(fmt.Sprintf("%s (%s)", line.ProductName, line.UOM)),
				},
				UnitAmount: stripe.Int64(toCents(line.UnitPrice)),
			},
			Quantity: stripe.Int64(int64(line.Quantity)),
		})
	}

	lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency: stripe.String(c.currency),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String("GST (9%)"),
			},
			UnitAmount: stripe.Int64(toCents(gstAmount)),
		},
		Quantity: stripe.Int64(1),
	})

	params := &stripe.CheckoutSessionParams{
		SuccessURL: stripe.String(fmt.Sprintf("%s/verify?success=true&orderId=%s", origin, orderID)),
		CancelURL:  stripe.String(fmt.Sprintf("%s/verify?success=false&orderId=%s", origin, orderID)),
		LineItems:  lineItems,
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
	}

	sess, err := session.New(params)
	if err != nil {
		return "", apperr.Wrap(apperr.KindUpstream, "failed to create checkout session", err)
	}
	return sess.URL, nil
}

// toCents converts a currency amount to integer cents, rounding
// half-up the way the amounts are displayed.
func toCents(amount float64) int64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0
	}
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
