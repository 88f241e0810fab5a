package middlewares

import (
	"net/http"
	"strings"

	"github.com/coneno/logger"
	"github.com/gin-gonic/gin"
)

// HasAllowedReferer only lets requests through whose Referer starts with one
// of the given prefixes. An empty list disables the check.
func HasAllowedReferer(allowedRefs []string) gin.HandlerFunc {
	refs := make([]string, 0, len(allowedRefs))
	for _, ref := range allowedRefs {
		if ref = strings.TrimSpace(ref); ref != "" {
			refs = append(refs, ref)
		}
	}

	return func(c *gin.Context) {
		if len(refs) == 0 {
			c.Next()
			return
		}
		currentRef := c.Request.Referer()
		for _, ref := range refs {
			if strings.HasPrefix(currentRef, ref) {
				c.Next()
				return
			}
		}
		logger.Error.Printf("unexpected referer in the request: %s", currentRef)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		c.Abort()
	}
}
