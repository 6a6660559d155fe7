// internal/pkg/jwt/claims.go
package jwt

import (
	"edman-service/internal/domain/user"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the session identity.
type Claims struct {
	UserID string    `json:"id"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
	Role   user.Role `json:"role"`
	jwt.RegisteredClaims
}

// Principal returns the identity stored in the claims.
func (c *Claims) Principal() *user.Principal {
	return &user.Principal{ID: c.UserID, Email: c.Email, Name: c.Name, Role: c.Role}
}

// VerifyAudience checks if the expected audience is listed in the claims.
func (c *Claims) VerifyAudience(audience string, required bool) bool {
	if len(c.Audience) == 0 {
		return !required
	}
	for _, aud := range c.Audience {
		if aud == audience {
			return true
		}
	}
	return false
}
