// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/operator"
	"github.com/your-org/pos-backend/internal/pkg/auth"
)

// AuthMiddleware creates JWT authentication middleware
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	jwtManager := auth.NewJWTManager(cfg)

	return func(c *gin.Context) {
		// Get Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		// Extract token from header
		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		// Validate access token
		claims, err := jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		// Store operator information in context
		c.Set("operator_id", claims.OperatorID)
		c.Set("operator_username", claims.Username)
		c.Set("operator_role", claims.Role)
		c.Set("token_claims", claims)

		c.Next()
	}
}

// RoleMiddleware ensures the operator holds at least the given role
func RoleMiddleware(minimum operator.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("operator_role")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		if !operator.Role(role.(string)).AtLeast(minimum) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Insufficient privileges",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// AdminMiddleware ensures the operator is an admin
func AdminMiddleware() gin.HandlerFunc {
	return RoleMiddleware(operator.RoleAdmin)
}

// GetOperatorIDFromContext extracts operator ID from gin context
func GetOperatorIDFromContext(c *gin.Context) (uint, bool) {
	operatorID, exists := c.Get("operator_id")
	if !exists {
		return 0, false
	}
	return operatorID.(uint), true
}

// GetOperatorUsernameFromContext extracts operator username from gin context
func GetOperatorUsernameFromContext(c *gin.Context) (string, bool) {
	username, exists := c.Get("operator_username")
	if !exists {
		return "", false
	}
	return username.(string), true
}

// GetOperatorRoleFromContext extracts the operator role from gin context
func GetOperatorRoleFromContext(c *gin.Context) (operator.Role, bool) {
	role, exists := c.Get("operator_role")
	if !exists {
		return "", false
	}
	return operator.Role(role.(string)), true
}
