package jwtutil

import (
	"time"

	"dealhub/pkg/config"

	"github.com/golang-jwt/jwt/v4"
)

var (
	secret     = []byte("secret-key")
	expiration = time.Hour * 24
)

// Initialize configures the signing key and token lifetime
func Initialize(cfg *config.JWTConfig) {
	secret = []byte(cfg.SigningKey)
	if cfg.ExpirationHours > 0 {
		expiration = time.Duration(cfg.ExpirationHours) * time.Hour
	}
}

// UserClaims represents the JWT claims for user authentication.
// The service only consumes these as an opaque identity fact; issuing
// happens at login and the claims carry the tenant the user belongs to.
type UserClaims struct {
	Email    string `json:"email"`
	UserID   uint   `json:"user_id"`
	TenantID uint   `json:"tenant_id"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken creates a JWT token with user and tenant information
func GenerateToken(email string, userID, tenantID uint, role string) (string, error) {
	claims := UserClaims{
		Email:    email,
		UserID:   userID,
		TenantID: tenantID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken validates and parses the JWT token
func ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
