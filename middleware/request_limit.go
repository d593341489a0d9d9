package middleware

import (
	"net/http"

	"docuchat-backend/utils"

	"github.com/gin-gonic/gin"
)

// RequestSizeLimit rejects request bodies larger than maxSize. The
// Content-Length check catches honest clients early; MaxBytesReader
// enforces the cap for chunked or lying ones.
func RequestSizeLimit(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			utils.RespondWithError(c, http.StatusRequestEntityTooLarge,
				"request_too_large",
				"Request body exceeds maximum size",
				gin.H{
					"max_size": maxSize,
					"received": c.Request.ContentLength,
				})
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}
