package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oceanharvest/storefront-api/internal/auth"
)

// bearerToken pulls the token out of the Authorization header.
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// Auth validates the bearer token and stores the caller's identity on
// the context. Auth failures are the one place we return a real 401
// instead of the HTTP-200 business-error convention.
func Auth(j *auth.JWT) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization token required", "kind": "unauthorized"})
			c.Abort()
			return
		}

		claims, err := j.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid token, please login again", "kind": "unauthorized"})
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// Admin requires an admin-scoped token. Must run after Auth.
func Admin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if role, _ := c.Get("role"); role != "admin" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Admin access required", "kind": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// APIKey guards the service-to-service price-list routes with a static
// key in the X-API-Key header.
func APIKey(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-API-Key")
		if expected == "" || key != expected {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid API key", "kind": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// AuthOrAPIKey admits callers carrying either a valid bearer token or
// the static API key. Price-list reads serve both the storefront and
// service-to-service integrations, so both schemes guard the same
// resource.
func AuthOrAPIKey(j *auth.JWT, expectedKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key := c.GetHeader("X-API-Key"); key != "" && expectedKey != "" && key == expectedKey {
			c.Next()
			return
		}

		if token, ok := bearerToken(c); ok {
			if claims, err := j.ValidateToken(token); err == nil {
				c.Set("userID", claims.UserID)
				c.Set("role", claims.Role)
				c.Next()
				return
			}
		}

		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not authorized", "kind": "unauthorized"})
		c.Abort()
	}
}
