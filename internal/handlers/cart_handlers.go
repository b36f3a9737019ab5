package handlers

import (
	"github.com/gin-gonic/gin"
)

//
// --- Cart Handlers ---
//

// SizeInput is the strictly-typed (uom, quantity) pair. Malformed
// shapes are rejected up front instead of coerced.
type SizeInput struct {
	UOM      string `json:"uom" binding:"required"`
	Quantity int    `json:"quantity"`
}

// CartItemInput is the JSON body shared by cart add/update.
type CartItemInput struct {
	ItemID string    `json:"itemId" binding:"required"`
	Size   SizeInput `json:"size" binding:"required"`
}

// GetCart is the handler for GET /api/cart/get. Returns the nested
// product -> uom -> quantity mapping.
func (h *Handlers) GetCart(c *gin.Context) {
	cartData, err := h.Cart.Snapshot(c, userID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"cartData": cartData})
}

// AddToCart is the handler for POST /api/cart/add. Quantities for an
// existing (item, uom) pair accumulate.
func (h *Handlers) AddToCart(c *gin.Context) {
	var input CartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadInput(c, err)
		return
	}

	cartData, err := h.Cart.Add(c, userID(c), input.ItemID, input.Size.UOM, input.Size.Quantity)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"cartData": cartData, "message": "Item added to cart"})
}

// UpdateCart is the handler for POST /api/cart/update. This is an
// absolute set; a quantity of zero removes the (item, uom) entry.
func (h *Handlers) UpdateCart(c *gin.Context) {
	var input CartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadInput(c, err)
		return
	}

	cartData, err := h.Cart.Set(c, userID(c), input.ItemID, input.Size.UOM, input.Size.Quantity)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"cartData": cartData})
}

// RemoveFromCartInput identifies the product entry to drop.
type RemoveFromCartInput struct {
	ItemID string `json:"itemId" binding:"required"`
}

// RemoveFromCart is the handler for POST /api/cart/remove. Drops the
// whole product entry regardless of its uom breakdown.
func (h *Handlers) RemoveFromCart(c *gin.Context) {
	var input RemoveFromCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadInput(c, err)
		return
	}

	cartData, err := h.Cart.Remove(c, userID(c), input.ItemID)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"cartData": cartData, "message": "Item removed from cart"})
}

// CartTotal is the handler for GET /api/cart/total. The total goes
// through the same price resolution as checkout, so what the cart
// shows is what the order will charge.
func (h *Handlers) CartTotal(c *gin.Context) {
	user, err := h.Users.GetByID(c, userID(c))
	if err != nil {
		respondErr(c, err)
		return
	}

	total, err := h.Cart.Total(c, user.ID.Hex(), user.CustomerID)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"total": total.Round(2).InexactFloat64()})
}
