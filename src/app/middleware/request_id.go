// Package middleware holds the gin middleware chain for the service.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the trace id to and from clients.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// RequestID tags every request with a trace id. An id supplied by the client
// (proxy, gateway) is reused; otherwise a fresh UUID is minted. The id is
// echoed on the response so callers can quote it when reporting problems.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the trace id set by RequestID, or "" outside the chain.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
