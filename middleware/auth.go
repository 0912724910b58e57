// middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"courtside/models"
	"courtside/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ctxUserID = "userID"
	ctxRole   = "role"
)

// JWTAuthMiddleware validates the bearer token and stores the caller's
// user ID and role on the context.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		principal, err := utils.PrincipalFromToken(tokenString)
		if err != nil {
			zap.L().Debug("Rejected bearer token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(ctxUserID, principal.UserID)
		c.Set(ctxRole, principal.Role)
		c.Next()
	}
}

// PrincipalFrom returns the caller set by JWTAuthMiddleware.
func PrincipalFrom(c *gin.Context) (models.Principal, bool) {
	userID := c.GetString(ctxUserID)
	role, ok := c.Get(ctxRole)
	if userID == "" || !ok {
		return models.Principal{}, false
	}
	r, ok := role.(models.Role)
	if !ok {
		return models.Principal{}, false
	}
	return models.Principal{UserID: userID, Role: r}, true
}
