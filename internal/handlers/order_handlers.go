package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/oceanharvest/storefront-api/internal/order"
)

//
// --- Order Handlers ---
//

// CustomerInfoInput is the delivery snapshot frozen onto the order.
type CustomerInfoInput struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Phone        string `json:"phone" binding:"required"`
	Company      string `json:"company"`
	Address      string `json:"address" binding:"required"`
	PostalCode   string `json:"postalCode" binding:"required"`
	DeliveryDate string `json:"deliveryDate"`
	Remarks      string `json:"remarks"`
}

func (in *CustomerInfoInput) toDeliveryInfo() order.DeliveryInfo {
	return order.DeliveryInfo{
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		Company:      in.Company,
		Address:      in.Address,
		PostalCode:   in.PostalCode,
		DeliveryDate: in.DeliveryDate,
		Remarks:      in.Remarks,
	}
}

// PlaceOrderInput is the JSON body for checkout. The items and totals
// are computed server-side from the customer's stored cart; the client
// supplies only the delivery details.
type PlaceOrderInput struct {
	CustomerInfo CustomerInfoInput `json:"customerInfo" binding:"required"`
}

// PlaceOrder is the handler for POST /api/order/place (the COD path).
func (h *Handlers) PlaceOrder(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input PlaceOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadInput(c, err)
		return
	}

	// 2. --- Load the customer and a cart snapshot ---
	user, err := h.Users.GetByID(c, userID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	snapshot, err := h.Cart.Snapshot(c, user.ID.Hex())
	if err != nil {
		respondErr(c, err)
		return
	}

	// 3. --- Assemble and persist the order ---
	placed, err := h.Orders.Place(c, user, snapshot, input.CustomerInfo.toDeliveryInfo(), order.PaymentMethodCOD)
	if err != nil {
		respondErr(c, err)
		return
	}

	respondOK(c, gin.H{
		"message":       "Order Placed",
		"orderId":       placed.OrderID,
		"subtotalPrice": placed.SubtotalPrice,
		"totalPrice":    placed.TotalPrice,
	})
}

// PlaceOrderStripe is the handler for POST /api/order/stripe. The
// order is persisted immediately in "Payment Pending" with the payment
// flag down; the caller is redirected to the hosted checkout page.
func (h *Handlers) PlaceOrderStripe(c *gin.Context) {
	var input PlaceOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadInput(c, err)
		return
	}

	user, err := h.Users.GetByID(c, userID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	snapshot, err := h.Cart.Snapshot(c, user.ID.Hex())
	if err != nil {
		respondErr(c, err)
		return
	}

	placed, err := h.Orders.Place(c, user, snapshot, input.CustomerInfo.toDeliveryInfo(), order.PaymentMethodStripe)
	if err != nil {
		respondErr(c, err)
		return
	}

	gstAmount := placed.TotalPrice - placed.SubtotalPrice
	sessionURL, err := h.Payments.CreateCheckoutSession(placed.OrderID, placed.Lines, gstAmount, c.GetHeader("Origin"))
	if err != nil {
		respondErr(c, err)
		return
	}

	respondOK(c, gin.H{"session_url": sessionURL, "orderId": placed.OrderID})
}

// VerifyPaymentInput is the gateway confirmation callback body.
type VerifyPaymentInput struct {
	OrderID string `json:"orderId" binding:"required"`
	Success *bool  `json:"success" binding:"required"`
}

// VerifyPayment is the handler for POST /api/order/verify. Success
// flips the order to paid and clears the cart; failure deletes the
// order's lines. Repeated failure callbacks are a no-op, never an
// error.
func (h *Handlers) VerifyPayment(c *gin.Context) {
	var input VerifyPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadInput(c, err)
		return
	}

	if *input.Success {
		if err := h.Orders.ConfirmPayment(c, input.OrderID, userID(c)); err != nil {
			respondErr(c, err)
			return
		}
		respondOK(c, gin.H{"message": "Payment confirmed"})
		return
	}

	if err := h.Orders.FailPayment(c, input.OrderID); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"message": "Order cancelled"})
}

// UserOrders is the handler for POST /api/order/userorders. Returns
// the logged-in customer's orders grouped by order id.
func (h *Handlers) UserOrders(c *gin.Context) {
	user, err := h.Users.GetByID(c, userID(c))
	if err != nil {
		respondErr(c, err)
		return
	}

	orders, err := h.Orders.ListForCustomer(c, user.CustomerID)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"orders": orders})
}

// AllOrders is the handler for GET /api/order/list (admin).
func (h *Handlers) AllOrders(c *gin.Context) {
	orders, err := h.Orders.ListAll(c)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"orders": orders})
}

// UpdateStatusInput moves an order to a new lifecycle status.
type UpdateStatusInput struct {
	OrderID string `json:"orderId" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

// UpdateStatus is the handler for POST /api/order/status (admin). The
// new status lands on every line of the order.
func (h *Handlers) UpdateStatus(c *gin.Context) {
	var input UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadInput(c, err)
		return
	}

	if err := h.Orders.SetStatus(c, input.OrderID, input.Status); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"message": "Status updated"})
}
