package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"romuo/internal/identity"
)

const identityKey = "romuo.identity"

// Auth resolves the Bearer token into an identity and aborts with 401 when
// it cannot. Handlers behind it may assume IdentityFrom succeeds.
func Auth(resolver identity.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			abort(c, "missing bearer token")
			return
		}
		ident, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, identity.ErrSessionExpired):
				abort(c, "session expired")
			default:
				abort(c, "invalid token")
			}
			return
		}
		c.Set(identityKey, ident)
		c.Next()
	}
}

// RequireRole guards a route group to the given roles. Must run after Auth.
func RequireRole(roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := IdentityFrom(c)
		if !ok {
			abort(c, "missing bearer token")
			return
		}
		for _, r := range roles {
			if ident.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}

// IdentityFrom returns the identity stored by Auth.
func IdentityFrom(c *gin.Context) (identity.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return identity.Identity{}, false
	}
	ident, ok := v.(identity.Identity)
	return ident, ok
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func abort(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}
