package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oceanharvest/storefront-api/internal/apperr"
	"github.com/oceanharvest/storefront-api/internal/auth"
	"github.com/oceanharvest/storefront-api/internal/models"
)

//
// --- User / Auth Handlers ---
//

// RegisterInput is the JSON body for customer registration. We accept
// only the fields a customer may set about themselves; customerId and
// productsAvailable are admin-managed.
type RegisterInput struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	CustomerID string `json:"customerId"`
	Phone      string `json:"phone"`
	Company    string `json:"company"`
	Address    string `json:"address"`
	PostalCode string `json:"postalCode"`
}

// Register is the handler for POST /api/user/register.
func (h *Handlers) Register(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadInput(c, err)
		return
	}

	// 2. --- Reject duplicate email / customerId ---
	exists, err := h.Users.Exists(c, input.Email, input.CustomerID)
	if err != nil {
		respondErr(c, err)
		return
	}
	if exists {
		respondErr(c, apperr.New(apperr.KindConflict, "Email or Customer ID already registered"))
		return
	}

	// 3. --- Hash the password ---
	hashed, err := auth.HashPassword(input.Password)
	if err != nil {
		respondErr(c, apperr.Wrap(apperr.KindUpstream, "failed to hash password", err))
		return
	}

	// 4. --- Create the user with an empty cart ---
	user := &models.User{
		Name:              input.Name,
		Email:             input.Email,
		Password:          hashed,
		CustomerID:        input.CustomerID,
		Phone:             input.Phone,
		Company:           input.Company,
		Address:           input.Address,
		PostalCode:        input.PostalCode,
		Role:              "customer",
		CartData:          models.CartData{},
		ProductsAvailable: []string{},
		CreatedAt:         time.Now(),
	}

	id, err := h.Users.Insert(c, user)
	if err != nil {
		respondErr(c, err)
		return
	}

	// 5. --- Issue a token so registration logs the customer in ---
	token, err := h.JWT.GenerateToken(id)
	if err != nil {
		respondErr(c, apperr.Wrap(apperr.KindUpstream, "failed to issue token", err))
		return
	}

	respondOK(c, gin.H{"token": token, "name": user.Name, "customerId": user.CustomerID})
}

// LoginInput logs a customer in by their business customer id.
type LoginInput struct {
	CustomerID string `json:"customerId" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// Login is the handler for POST /api/user/login.
func (h *Handlers) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadInput(c, err)
		return
	}

	user, err := h.Users.GetByCustomerID(c, input.CustomerID)
	if err != nil {
		respondErr(c, err)
		return
	}

	if !auth.CheckPassword(input.Password, user.Password) {
		respondErr(c, apperr.New(apperr.KindValidation, "Invalid password"))
		return
	}

	token, err := h.JWT.GenerateToken(user.ID.Hex())
	if err != nil {
		respondErr(c, apperr.Wrap(apperr.KindUpstream, "failed to issue token", err))
		return
	}

	respondOK(c, gin.H{"token": token, "name": user.Name})
}

// AdminLoginInput carries the back-office credentials.
type AdminLoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLogin is the handler for POST /api/user/admin. Admin identity
// is configured through the environment, not a user document.
func (h *Handlers) AdminLogin(c *gin.Context) {
	var input AdminLoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadInput(c, err)
		return
	}

	if h.Cfg.AdminEmail == "" || input.Email != h.Cfg.AdminEmail || input.Password != h.Cfg.AdminPassword {
		respondErr(c, apperr.New(apperr.KindValidation, "Invalid credentials"))
		return
	}

	token, err := h.JWT.GenerateAdminToken(input.Email)
	if err != nil {
		respondErr(c, apperr.Wrap(apperr.KindUpstream, "failed to issue token", err))
		return
	}

	respondOK(c, gin.H{"token": token})
}

// GetName is the handler for GET /api/user/name, used by the
// storefront greeting.
func (h *Handlers) GetName(c *gin.Context) {
	user, err := h.Users.GetByID(c, userID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"name": user.Name})
}

// ListUsers is the handler for GET /api/user/list (admin).
func (h *Handlers) ListUsers(c *gin.Context) {
	users, err := h.Users.List(c)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"users": users})
}

// UpdateUserInput sets the admin-managed fields on a customer.
type UpdateUserInput struct {
	ID                string   `json:"id" binding:"required"`
	CustomerID        string   `json:"customerId"`
	ProductsAvailable []string `json:"productsAvailable"`
}

// UpdateUser is the handler for POST /api/user/update (admin). It
// assigns the business customerId and the product codes the customer
// can see.
func (h *Handlers) UpdateUser(c *gin.Context) {
	var input UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadInput(c, err)
		return
	}

	if err := h.Users.UpdateAdminFields(c, input.ID, input.CustomerID, input.ProductsAvailable); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"message": "User updated"})
}
