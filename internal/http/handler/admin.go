package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const adminKeyHeader = "X-Admin-Key"

// RequireAdminAPIKey guards the configuration API. The key may also be sent as
// a bearer token.
func RequireAdminAPIKey(adminAPIKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminAPIKey == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin API not configured"})
			c.Abort()
			return
		}

		apiKey := c.GetHeader(adminKeyHeader)
		if apiKey == "" {
			apiKey, _ = strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		}

		if apiKey == "" || subtle.ConstantTimeCompare([]byte(apiKey), []byte(adminAPIKey)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing API key"})
			c.Abort()
			return
		}

		c.Next()
	}
}
