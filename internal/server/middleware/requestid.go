// file: internal/server/middleware/requestid.go
// version: 1.0.0
// guid: 2a3b4c5d-6e7f-8a9b-0c1d-2e3f4a5b6c7d

package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	ulid "github.com/oklog/ulid/v2"
)

// RequestIDKey is the gin context key carrying the per-request ULID.
const RequestIDKey = "request_id"

// RequestID assigns each request a ULID, echoes it in the X-Request-ID
// response header and logs the request outcome.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := ulid.Make().String()
		c.Set(RequestIDKey, id)
		c.Header("X-Request-ID", id)

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := "INFO"
		if status >= 500 {
			level = "ERROR"
		} else if status >= 400 {
			level = "WARN"
		}
		log.Printf("[%s] %s %s (%d) in %v [request-id: %s]",
			level, c.Request.Method, c.Request.URL.Path, status, time.Since(start), id)
	}
}

// GetRequestID returns the request's ULID, or empty when the middleware did
// not run.
func GetRequestID(c *gin.Context) string {
	if id, ok := c.Get(RequestIDKey); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
