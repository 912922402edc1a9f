package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"mdt-app-server/internal/config"
	"mdt-app-server/internal/utils"
)

// AuthMiddleware creates a middleware for JWT authentication.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			utils.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		tokenString := parts[1]
		claims, err := utils.ValidateToken(tokenString, cfg.JWTSecret)
		if err != nil {
			utils.Unauthorized(c, "Invalid token: "+err.Error())
			c.Abort()
			return
		}

		// Set user information in context for downstream handlers
		c.Set("userID", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("isConfirmed", claims.IsConfirmed)
		c.Set("isConsultant", claims.IsConsultant)
		c.Set("isAdmin", claims.IsAdmin)

		c.Next()
	}
}

// ConfirmedRequired blocks users whose account has not yet been
// activated by an administrator. It should be used *after*
// AuthMiddleware.
func ConfirmedRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool("isConfirmed") {
			utils.Forbidden(c, "Your account must be verified by an administrator before you can use the site.")
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminRequired restricts a route to administrators. It should be used
// *after* AuthMiddleware.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool("isAdmin") {
			utils.Forbidden(c, "You do not have permission to access this resource.")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserIDFromContext returns the authenticated user's id.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		return "", false
	}
	idStr, ok := userID.(string)
	return idStr, ok
}
