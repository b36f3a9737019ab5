package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/oceanharvest/storefront-api/internal/apperr"
	"github.com/oceanharvest/storefront-api/internal/auth"
	"github.com/oceanharvest/storefront-api/internal/cart"
	"github.com/oceanharvest/storefront-api/internal/config"
	"github.com/oceanharvest/storefront-api/internal/order"
	"github.com/oceanharvest/storefront-api/internal/payments"
	"github.com/oceanharvest/storefront-api/internal/pricing"
	"github.com/oceanharvest/storefront-api/internal/store"
)

// Handlers holds all dependencies for our handlers.
type Handlers struct {
	Cfg        *config.Config
	JWT        *auth.JWT
	Users      *store.UserStore
	Products   *store.ProductStore
	PriceLists *store.PriceListStore
	Pricing    *pricing.Resolver
	Cart       *cart.Engine
	Orders     *order.Service
	Payments   *payments.Client
}

// userID pulls the authenticated user's id set by the auth middleware.
func userID(c *gin.Context) string {
	raw, _ := c.Get("userID")
	id, _ := raw.(string)
	return id
}

// respondOK sends a successful business result.
func respondOK(c *gin.Context, body gin.H) {
	if body == nil {
		body = gin.H{}
	}
	body["success"] = true
	c.JSON(http.StatusOK, body)
}

// respondErr maps an error onto the wire convention: business-logic
// failures go out as HTTP 200 {success:false, message, kind}; storage
// failures become a generic 500 without internal detail.
func respondErr(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	body := gin.H{"success": false, "message": apperr.Message(err), "kind": string(kind)}

	switch kind {
	case apperr.KindUnauthorized:
		c.JSON(http.StatusUnauthorized, body)
	case apperr.KindUpstream:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, body)
	default:
		c.JSON(http.StatusOK, body)
	}
}

// respondBadInput reports a malformed request body. Same wire shape as
// any other validation failure.
func respondBadInput(c *gin.Context, err error) {
	c.JSON(http.StatusOK, gin.H{
		"success": false,
		"message": "Invalid input: " + err.Error(),
		"kind":    string(apperr.KindValidation),
	})
}
