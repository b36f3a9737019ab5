package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/oceanharvest/storefront-api/internal/apperr"
	"github.com/oceanharvest/storefront-api/internal/models"
)

//
// --- Price List Handlers ---
//
// These routes serve both the storefront (bearer token) and the ERP
// integration (static API key); the middleware admits either scheme.
//

// GetPriceList is the handler for GET /api/pricelist/customer/:customerId.
// Exact customerId match first, then case-insensitive fallback.
func (h *Handlers) GetPriceList(c *gin.Context) {
	customerID := c.Param("customerId")
	if customerID == "" {
		respondErr(c, apperr.New(apperr.KindValidation, "Customer ID is required"))
		return
	}

	priceList, err := h.PriceLists.GetByCustomerID(c, customerID)
	if apperr.IsKind(err, apperr.KindNotFound) {
		priceList, err = h.PriceLists.GetByCustomerIDFold(c, customerID)
	}
	if err != nil {
		respondErr(c, err)
		return
	}

	respondOK(c, gin.H{"priceList": priceList})
}

// PriceListItemInput is the JSON body for upserting one override.
type PriceListItemInput struct {
	Pcode    string   `json:"pcode" binding:"required"`
	ItemName string   `json:"itemName" binding:"required"`
	Price    *float64 `json:"price" binding:"required,gte=0"`
	Notes    string   `json:"notes"`
}

// AddPriceListItem is the handler for
// POST /api/pricelist/customer/:customerId/item (API key only).
// An existing entry for the pcode is updated in place; entries are
// never duplicated within a price list.
func (h *Handlers) AddPriceListItem(c *gin.Context) {
	customerID := c.Param("customerId")
	if customerID == "" {
		respondErr(c, apperr.New(apperr.KindValidation, "Customer ID is required"))
		return
	}

	var input PriceListItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadInput(c, err)
		return
	}

	item := models.PriceListItem{
		Pcode:    input.Pcode,
		ItemName: input.ItemName,
		Price:    *input.Price,
		Notes:    input.Notes,
	}
	if err := h.PriceLists.UpsertItem(c, customerID, item); err != nil {
		respondErr(c, err)
		return
	}

	respondOK(c, gin.H{"message": "Item added to price list"})
}

// RemovePriceListItem is the handler for
// DELETE /api/pricelist/customer/:customerId/item/:pcode (API key only).
func (h *Handlers) RemovePriceListItem(c *gin.Context) {
	customerID := c.Param("customerId")
	pcode := c.Param("pcode")
	if customerID == "" || pcode == "" {
		respondErr(c, apperr.New(apperr.KindValidation, "Customer ID and product code are required"))
		return
	}

	if err := h.PriceLists.RemoveItem(c, customerID, pcode); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"message": "Item removed from price list"})
}

// ResolvePrice is the handler for GET /api/pricelist/resolve. It
// returns the effective unit price one customer pays for one pcode,
// for service-to-service quoting.
func (h *Handlers) ResolvePrice(c *gin.Context) {
	customerID := c.Query("customerId")
	pcode := c.Query("pcode")
	if customerID == "" || pcode == "" {
		respondErr(c, apperr.New(apperr.KindValidation, "customerId and pcode are required"))
		return
	}

	resolved, err := h.Pricing.Resolve(c, customerID, pcode)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"unitPrice": resolved.UnitPrice, "source": resolved.Source})
}
