package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"restaurant/utils"
)

// Context keys set by AuthMiddleware.
const (
	AccountIDKey = "accountID"
	RoleKey      = "role"
	KindKey      = "kind"
)

type TokenValidator interface {
	ValidateToken(signedToken string) (*utils.JWTClaim, error)
}

// AuthMiddleware accepts a bearer token (or the "token" cookie). With no
// roles listed any authenticated account passes.
func AuthMiddleware(tokens TokenValidator, allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("token")
		if err != nil || token == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token not provided"})
				return
			}
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid Authorization header format"})
				return
			}
			token = parts[1]
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization token"})
			return
		}

		if len(allowedRoles) > 0 && !hasRole(claims.Role, allowedRoles) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}

		c.Set(AccountIDKey, claims.ID)
		c.Set(RoleKey, claims.Role)
		c.Set(KindKey, claims.Kind)

		c.Next()
	}
}

func hasRole(role string, allowed []string) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// HasRole reports whether the authenticated account holds one of roles.
func HasRole(c *gin.Context, roles ...string) bool {
	return hasRole(c.GetString(RoleKey), roles)
}

// RequireRole narrows a group already guarded by AuthMiddleware.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !HasRole(c, allowedRoles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}
		c.Next()
	}
}
