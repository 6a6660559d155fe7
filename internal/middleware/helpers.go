// internal/middleware/helpers.go
package middleware

import (
	"time"

	"edman-service/internal/domain/user"

	"github.com/gin-gonic/gin"
)

// CurrentUser returns the authenticated principal, if any.
func CurrentUser(c *gin.Context) (*user.Principal, bool) {
	v, exists := c.Get(ctxUser)
	if !exists {
		return nil, false
	}
	p, ok := v.(*user.Principal)
	return p, ok && p != nil
}

// MustCurrentUser gets the principal from context or panics. Only for routes
// behind Auth.
func MustCurrentUser(c *gin.Context) *user.Principal {
	p, ok := CurrentUser(c)
	if !ok {
		panic("user not found in context")
	}
	return p
}

func GetJTI(c *gin.Context) (string, bool) {
	jti, exists := c.Get(ctxJTI)
	if !exists {
		return "", false
	}
	s, ok := jti.(string)
	return s, ok
}

func GetTokenExpiry(c *gin.Context) (time.Time, bool) {
	v, exists := c.Get(ctxExpiresAt)
	if !exists {
		return time.Time{}, false
	}
	t, ok := v.(time.Time)
	return t, ok
}
