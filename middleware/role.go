package middleware

import (
	"net/http"

	"courtside/models"

	"github.com/gin-gonic/gin"
)

// RequireRole lets the request through only for the listed roles.
// It must run after JWTAuthMiddleware.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		for _, r := range roles {
			if p.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "Role '" + string(p.Role) + "' may not perform this action",
		})
	}
}
