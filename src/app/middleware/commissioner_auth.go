package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"torchtally/src/app/http/response"
)

const commissionerHeader = "X-Commissioner-Token"

// CommissionerAuth guards mutating scoring endpoints with a shared secret.
// Scoring, resets, and prediction locks change every team's standings, so
// only the commissioner (whoever holds the token) may call them.
func CommissionerAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := GetRequestID(c)

		provided := c.GetHeader(commissionerHeader)
		if provided == "" {
			response.Unauthorized(c, "missing X-Commissioner-Token header", requestID)
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			response.Forbidden(c, "invalid commissioner token", requestID)
			c.Abort()
			return
		}

		c.Next()
	}
}
