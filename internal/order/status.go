package order

// Lifecycle statuses. Admins may move an order between any of these
// directly; the back office relies on unrestricted transitions.
const (
	StatusPlaced         = "Order Placed"
	StatusPaymentPending = "Payment Pending"
	StatusProcessing     = "Processing"
	StatusShipped        = "Shipped"
	StatusDelivered      = "Delivered"
	StatusCancelled      = "Cancelled"
)

var statuses = map[string]bool{
	StatusPlaced:         true,
	StatusPaymentPending: true,
	StatusProcessing:     true,
	StatusShipped:        true,
	StatusDelivered:      true,
	StatusCancelled:      true,
}

// ValidStatus reports whether s is a known lifecycle status label.
func ValidStatus(s string) bool {
	return statuses[s]
}
