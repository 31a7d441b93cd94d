package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joy095/settlement/logger"
	"github.com/joy095/settlement/utils"
	"github.com/joy095/settlement/utils/jwt_parse"
)

// Operator roles carried in the token alongside the wallet roles.
const (
	RoleAdmin    = "admin"
	RoleDelivery = "delivery"
)

// AuthMiddleware authenticates the request from its bearer JWT. Tokens are
// issued by the identity service; only the signature, expiry and claims are
// checked here.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !jwt_parse.Authenticate(c) {
			return
		}

		if _, err := utils.GetUserIDFromContext(c); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "INVALID_TOKEN_UID", "error": "Invalid user ID in token."})
			return
		}
		c.Next()
	}
}

// RequireRole allows the request through only when the token's role claim is
// one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := utils.GetRoleFromContext(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		logger.WarnLogger.Warnf("Role %q denied on %s %s", role, c.Request.Method, c.FullPath())
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": "ACCESS_DENIED", "error": "Forbidden: insufficient role."})
	}
}
