package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RequirePayload() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "payload missing"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// LimitPayload caps the request body at maxBytes. Reads past the cap fail.
func LimitPayload(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
