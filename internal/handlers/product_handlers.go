package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oceanharvest/storefront-api/internal/models"
)

//
// --- Product Handlers ---
//

// UOMOptionInput is one allowed unit-of-measure for a product.
type UOMOptionInput struct {
	Code      string  `json:"code" binding:"required"`
	QtyPerUOM float64 `json:"qtyPerUOM"`
}

// ProductInput is the JSON body for adding or editing a product.
// Image handling is just a list of already-uploaded URLs; upload
// itself happens elsewhere.
type ProductInput struct {
	Pcode         string           `json:"pcode" binding:"required"`
	ItemName      string           `json:"itemName" binding:"required"`
	Price         float64          `json:"price" binding:"gte=0"`
	BaseUnit      string           `json:"baseUnit" binding:"required"`
	PackagingSize string           `json:"packagingSize"`
	UOMOptions    []UOMOptionInput `json:"uomOptions"`
	Category      string           `json:"category"`
	Image         []string         `json:"image" binding:"max=4"`
	Bestseller    bool             `json:"bestseller"`
}

func (in *ProductInput) toModel() *models.Product {
	opts := make([]models.UOMOption, 0, len(in.UOMOptions))
	for _, o := range in.UOMOptions {
		qty := o.QtyPerUOM
		if qty <= 0 {
			qty = 1
		}
		opts = append(opts, models.UOMOption{Code: o.Code, QtyPerUOM: qty})
	}
	image := in.Image
	if image == nil {
		image = []string{}
	}
	return &models.Product{
		Pcode:         in.Pcode,
		ItemName:      in.ItemName,
		Price:         in.Price,
		BaseUnit:      in.BaseUnit,
		PackagingSize: in.PackagingSize,
		UOMOptions:    opts,
		Category:      in.Category,
		Image:         image,
		Bestseller:    in.Bestseller,
		Date:          time.Now(),
	}
}

// AddProduct is the handler for POST /api/product/add (admin).
func (h *Handlers) AddProduct(c *gin.Context) {
	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadInput(c, err)
		return
	}

	if err := h.Products.Insert(c, input.toModel()); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"message": "Product added successfully"})
}

// EditProductInput wraps ProductInput with the document id to update.
type EditProductInput struct {
	ID string `json:"id" binding:"required"`
	ProductInput
}

// EditProduct is the handler for POST /api/product/edit (admin).
func (h *Handlers) EditProduct(c *gin.Context) {
	var input EditProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadInput(c, err)
		return
	}

	if err := h.Products.Update(c, input.ID, input.toModel()); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"message": "Product updated"})
}

// RemoveProductInput identifies the product to delete.
type RemoveProductInput struct {
	ID string `json:"id" binding:"required"`
}

// RemoveProduct is the handler for POST /api/product/remove (admin).
func (h *Handlers) RemoveProduct(c *gin.Context) {
	var input RemoveProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadInput(c, err)
		return
	}

	if err := h.Products.Remove(c, input.ID); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"message": "Product Removed"})
}

// ListProducts is the handler for GET /api/product/list, the full
// public catalogue sorted by item name.
func (h *Handlers) ListProducts(c *gin.Context) {
	products, err := h.Products.List(c)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"products": products})
}

// SingleProductInput identifies one product to fetch.
type SingleProductInput struct {
	ProductID string `json:"productId" binding:"required"`
}

// SingleProduct is the handler for POST /api/product/single.
func (h *Handlers) SingleProduct(c *gin.Context) {
	var input SingleProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadInput(c, err)
		return
	}

	product, err := h.Products.GetByID(c, input.ProductID)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"product": product})
}

// AvailableProducts is the handler for GET /api/product/available.
// It returns only the catalogue entries the logged-in customer has
// been granted, with their personalized unit prices resolved.
func (h *Handlers) AvailableProducts(c *gin.Context) {
	// 1. --- Load the customer and their visibility list ---
	user, err := h.Users.GetByID(c, userID(c))
	if err != nil {
		respondErr(c, err)
		return
	}

	allowed := make(map[string]bool, len(user.ProductsAvailable))
	for _, pcode := range user.ProductsAvailable {
		allowed[pcode] = true
	}

	// 2. --- Filter the catalogue ---
	products, err := h.Products.List(c)
	if err != nil {
		respondErr(c, err)
		return
	}

	type pricedProduct struct {
		models.Product
		UnitPrice   float64 `json:"unitPrice"`
		PriceSource string  `json:"priceSource"`
	}

	visible := []pricedProduct{}
	for _, p := range products {
		if !allowed[p.Pcode] {
			continue
		}

		// 3. --- Resolve the customer's effective price ---
		resolved, err := h.Pricing.Resolve(c, user.CustomerID, p.Pcode)
		if err != nil {
			respondErr(c, err)
			return
		}
		visible = append(visible, pricedProduct{
			Product:     p,
			UnitPrice:   resolved.UnitPrice,
			PriceSource: string(resolved.Source),
		})
	}

	respondOK(c, gin.H{"products": visible})
}
