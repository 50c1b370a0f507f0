// Package middleware holds the gin middleware chain of the apiserver.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader is the header carrying the request correlation ID.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// RequestID assigns every request a correlation ID, honoring one supplied by
// the caller.  The ID is echoed in the response and stored in the gin
// context for the logging middleware.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the request's correlation ID, or "" outside the
// middleware chain.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
