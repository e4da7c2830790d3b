// api/middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"example.com/backstage/services/assets/internal/models"
	"example.com/backstage/services/assets/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// contextKey is a type for context keys
type contextKey string

// Context keys
const (
	APIKeyContextKey    contextKey = "api_key"
	PrincipalContextKey contextKey = "principal"
)

// APIKeyAuth middleware validates API tokens from the Authorization
// header and records the acting principal (the key's name) for the
// handlers to pass into service calls.
func APIKeyAuth(repo repository.Repository, log *logrus.Logger, requiredLevel models.AuthorizationLevel) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		// Check if Authorization header is present
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		// Extract token from header
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid Authorization header format. Expected: 'Bearer {token}'",
			})
			c.Abort()
			return
		}

		token := parts[1]

		// Validate token
		apiKey, err := repo.GetAPIKeyByKey(c.Request.Context(), token)
		if err != nil {
			log.WithError(err).Warn("Invalid API key")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid API key",
			})
			c.Abort()
			return
		}

		// Check if key is expired
		if apiKey.ExpiresAt != nil && apiKey.ExpiresAt.Before(time.Now()) {
			log.Warn("Expired API key")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "API key expired",
			})
			c.Abort()
			return
		}

		// Check if key has sufficient permissions
		if apiKey.AuthorizationLevel < requiredLevel {
			log.Warnf("Insufficient permissions. Required: %d, Provided: %d",
				requiredLevel, apiKey.AuthorizationLevel)
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Insufficient permissions",
			})
			c.Abort()
			return
		}

		// Update last used timestamp
		now := time.Now()
		apiKey.LastUsedAt = &now
		go func() {
			// Update in a goroutine to avoid blocking the request
			repo.UpdateAPIKey(context.Background(), apiKey)
		}()

		// Store the key and acting principal for handlers
		c.Set(string(APIKeyContextKey), apiKey)
		c.Set(string(PrincipalContextKey), apiKey.Name)

		c.Next()
	}
}

// Principal returns the acting user recorded by the auth middleware.
// Falls back to "system" when the route runs without authentication.
func Principal(c *gin.Context) string {
	if v, ok := c.Get(string(PrincipalContextKey)); ok {
		if name, ok := v.(string); ok && name != "" {
			return name
		}
	}
	return "system"
}
