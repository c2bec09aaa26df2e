package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenAuth validates a static bearer token on dashboard routes. When
// disabled every request passes through; the ingestion endpoint stays
// open either way since devices authenticate by app ID. Enabling auth
// without configuring a token rejects every request rather than
// silently opening the routes.
func TokenAuth(logger *zap.Logger, enabled bool, token string) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	if token == "" {
		logger.Warn("auth enabled but no token configured, rejecting all requests")
		return func(c *gin.Context) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":  "Authentication is not configured",
				"status": http.StatusUnauthorized,
			})
			c.Abort()
		}
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":  "Missing Authorization header",
				"status": http.StatusUnauthorized,
			})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":  "Invalid Authorization header format",
				"status": http.StatusUnauthorized,
			})
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(token)) != 1 {
			logger.Warn("rejected request with bad token", zap.String("path", c.Request.URL.Path))
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":  "Invalid token",
				"status": http.StatusUnauthorized,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
