package middleware

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// Bodies are logged for commissioner auditability but clipped so a large
// outcome payload cannot flood the log.
const maxLoggedBody = 2048

// Logging emits one line per request: method, path, status, latency, trace
// id, and the clipped request/response bodies. Status picks the level, so
// 4xx traffic lands at warn and 5xx at error.
func Logging(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			path += "?" + q
		}

		var reqBody []byte
		if c.Request.Body != nil {
			reqBody, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(reqBody))
		}
		rec := &bodyCapture{ResponseWriter: c.Writer}
		c.Writer = rec

		c.Next()

		status := c.Writer.Status()
		line := fmt.Sprintf("%s %s -> %d in %s [%s] request=%s response=%s",
			c.Request.Method,
			path,
			status,
			time.Since(start).Round(time.Millisecond),
			GetRequestID(c),
			clip(reqBody),
			clip(rec.body.Bytes()),
		)

		switch {
		case status >= 500:
			log.Error(line)
		case status >= 400:
			log.Warn(line)
		default:
			log.Info(line)
		}
	}
}

// bodyCapture tees the response body while delegating to the real writer.
type bodyCapture struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (r *bodyCapture) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *bodyCapture) WriteString(s string) (int, error) {
	r.body.WriteString(s)
	return r.ResponseWriter.WriteString(s)
}

func clip(b []byte) string {
	if len(b) > maxLoggedBody {
		return string(b[:maxLoggedBody]) + "...(clipped)"
	}
	return string(b)
}
