package middleware

import (
	"context"
	"strings"
	"time"

	"clipstream/internal/api/response"
	infraRedis "clipstream/internal/infra/redis"
	"clipstream/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	ContextKeyUserID   = "currentUserID"
	ContextKeyUserRole = "currentUserRole"
	ContextKeyToken    = "currentToken"
)

// AuthRequired verifies the bearer token and rejects tokens that were revoked
// by logout before their natural expiry.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c, "Missing authentication token")
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			response.Unauthorized(c, "Invalid or expired authentication token")
			c.Abort()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		revoked, err := infraRedis.IsTokenRevoked(ctx, token)
		cancel()
		if err == nil && revoked {
			response.Unauthorized(c, "Token has been revoked")
			c.Abort()
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyToken, token)
		c.Next()
	}
}

// GetCurrentUserID returns the authenticated user ID from the request context.
func GetCurrentUserID(c *gin.Context) (int64, bool) {
	val, exists := c.Get(ContextKeyUserID)
	if !exists {
		return 0, false
	}
	userID, ok := val.(int64)
	return userID, ok
}

// GetCurrentToken returns the raw bearer token from the request context.
func GetCurrentToken(c *gin.Context) (string, bool) {
	val, exists := c.Get(ContextKeyToken)
	if !exists {
		return "", false
	}
	token, ok := val.(string)
	return token, ok
}

// UserRoleFetcher resolves a user ID to its role.
type UserRoleFetcher func(userID int64) (string, error)

// AdminRequired gates a route group to admins. Must run after AuthRequired.
func AdminRequired(roleFetcher UserRoleFetcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetCurrentUserID(c)
		if !ok {
			response.Unauthorized(c, "Missing authentication")
			c.Abort()
			return
		}

		role, err := roleFetcher(userID)
		if err != nil {
			response.Unauthorized(c, "User not found")
			c.Abort()
			return
		}

		if role != "admin" {
			response.Forbidden(c, "Admin privileges required")
			c.Abort()
			return
		}

		c.Set(ContextKeyUserRole, role)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
