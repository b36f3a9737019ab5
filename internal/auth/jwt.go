package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenLifetime = 72 * time.Hour

// Claims is what a validated token tells us about the caller.
type Claims struct {
	UserID string
	Role   string
}

// JWT signs and validates the bearer tokens used by both the
// storefront and the admin back office.
type JWT struct {
	secret []byte
}

func NewJWT(secret string) *JWT {
	return &JWT{secret: []byte(secret)}
}

// GenerateToken creates a customer token. The subject is the user's
// document id (hex).
func (j *JWT) GenerateToken(userID string) (string, error) {
	return j.sign(jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(tokenLifetime).Unix(),
		"iat": time.Now().Unix(),
	})
}

// GenerateAdminToken creates a token carrying the admin role claim.
// Admin identity is the configured admin email, not a user document.
func (j *JWT) GenerateAdminToken(email string) (string, error) {
	return j.sign(jwt.MapClaims{
		"sub":  email,
		"role": "admin",
		"exp":  time.Now().Add(tokenLifetime).Unix(),
		"iat":  time.Now().Unix(),
	})
}

func (j *JWT) sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

// ValidateToken parses and validates a token string and returns its
// claims.
func (j *JWT) ValidateToken(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return j.secret, nil
	})
	if err != nil {
		return Claims{}, err
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Claims{}, errors.New("invalid token")
	}

	sub, ok := mapClaims["sub"].(string)
	if !ok || sub == "" {
		return Claims{}, errors.New("invalid subject claim")
	}

	role, _ := mapClaims["role"].(string)
	return Claims{UserID: sub, Role: role}, nil
}
