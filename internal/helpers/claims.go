package helpers

import (
	"github.com/golang-jwt/jwt/v5"
)

type CustomClaims struct {
	jwt.RegisteredClaims
}

// AuthClaims is what the auth middleware stores in the request context: the
// verified token claims plus the identity loaded from the store.
type AuthClaims struct {
	*CustomClaims
	UserID string `json:"id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
}

func (ac *AuthClaims) IsOwner(userID string) bool {
	return ac.UserID == userID
}
