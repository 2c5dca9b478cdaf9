package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AuthHeader carries the shared key for service-to-service calls.
const AuthHeader = "X-Internal-API-Key"

// InternalAuthMiddleware validates service-to-service authentication against
// the configured API key. An empty key means the deployment is misconfigured;
// every request is rejected with a 500 rather than running open.
func InternalAuthMiddleware(apiKey string) gin.HandlerFunc {
	if apiKey == "" {
		return func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "server misconfigured: auth.api_key not set",
			})
		}
	}
	apiKeyBytes := []byte(apiKey)

	return func(c *gin.Context) {
		key := c.GetHeader(AuthHeader)
		// Constant-time compare to prevent timing attacks
		if subtle.ConstantTimeCompare([]byte(key), apiKeyBytes) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized",
			})
			return
		}
		c.Next()
	}
}
