package middleware

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// InternalAuthMiddleware guards the job endpoints, which are invoked by the
// external scheduler rather than by users. An empty INTERNAL_AUTH_TOKEN
// leaves the endpoints open for local development.
func InternalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := os.Getenv("INTERNAL_AUTH_TOKEN")
		if token != "" && c.GetHeader("X-Internal-Auth") != token {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Forbidden",
			})
			return
		}

		c.Next()
	}
}
