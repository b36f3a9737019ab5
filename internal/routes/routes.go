package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oceanharvest/storefront-api/internal/handlers"
	"github.com/oceanharvest/storefront-api/internal/middleware"
)

// CORSMiddleware tells the browser the storefront and admin frontends
// may talk to us, including the Authorization header for JWTs.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, X-API-Key, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		// Preflight OPTIONS requests get an empty 204.
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// SetupRouter wires every endpoint to its handler and middleware.
func SetupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()
	router.Use(CORSMiddleware())

	api := router.Group("/api")
	{
		// --- Ping Route (Public) ---
		api.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Auth Routes (Public) ---
		user := api.Group("/user")
		{
			user.POST("/register", h.Register)
			user.POST("/login", h.Login)
			user.POST("/admin", h.AdminLogin)
		}

		// --- Public Catalogue Routes ---
		product := api.Group("/product")
		{
			product.GET("/list", h.ListProducts)
			product.POST("/single", h.SingleProduct)
		}

		// --- Customer Routes (Login Required) ---
		auth := api.Group("/")
		auth.Use(middleware.Auth(h.JWT))
		{
			auth.GET("/user/name", h.GetName)
			auth.GET("/product/available", h.AvailableProducts)

			auth.GET("/cart/get", h.GetCart)
			auth.POST("/cart/add", h.AddToCart)
			auth.POST("/cart/update", h.UpdateCart)
			auth.POST("/cart/remove", h.RemoveFromCart)
			auth.GET("/cart/total", h.CartTotal)

			auth.POST("/order/place", h.PlaceOrder)
			auth.POST("/order/stripe", h.PlaceOrderStripe)
			auth.POST("/order/verify", h.VerifyPayment)
			auth.POST("/order/userorders", h.UserOrders)
		}

		// --- Admin Routes ---
		admin := api.Group("/")
		admin.Use(middleware.Auth(h.JWT), middleware.Admin())
		{
			admin.POST("/product/add", h.AddProduct)
			admin.POST("/product/edit", h.EditProduct)
			admin.POST("/product/remove", h.RemoveProduct)

			admin.GET("/order/list", h.AllOrders)
			admin.POST("/order/status", h.UpdateStatus)

			admin.GET("/user/list", h.ListUsers)
			admin.POST("/user/update", h.UpdateUser)
		}

		// --- Price List Routes ---
		// Reads accept a bearer token OR the service API key; writes
		// are service-to-service only.
		pricelist := api.Group("/pricelist")
		{
			read := pricelist.Group("/")
			read.Use(middleware.AuthOrAPIKey(h.JWT, h.Cfg.PriceListAPIKey))
			{
				read.GET("/customer/:customerId", h.GetPriceList)
				read.GET("/resolve", h.ResolvePrice)
			}

			service := pricelist.Group("/")
			service.Use(middleware.APIKey(h.Cfg.PriceListAPIKey))
			{
				service.POST("/customer/:customerId/item", h.AddPriceListItem)
				service.DELETE("/customer/:customerId/item/:pcode", h.RemovePriceListItem)
			}
		}
	}

	return router
}
