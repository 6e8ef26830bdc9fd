package middleware

import (
	"log/slog"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/simp-lee/logger"
)

const (
	requestIDHeader     = "X-Request-ID"
	requestIDContextKey = "request_id"
)

// Upstream ids are reused only when short and limited to letters, digits and '-'.
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,64}$`)

// RequestIDConfig controls how request ids are chosen.
type RequestIDConfig struct {
	// TrustUpstream reuses a well-formed incoming X-Request-ID so a console
	// call and the server log line share one id.
	TrustUpstream bool
	// Generator builds new ids. Nil means uuid.NewString.
	Generator func() string
}

// RequestID tags every request with a fresh UUID and ignores upstream ids.
func RequestID() gin.HandlerFunc {
	return RequestIDWithConfig(RequestIDConfig{})
}

// RequestIDWithConfig tags every request with an id. The id is echoed in the
// X-Request-ID response header, kept in the gin context (see GetRequestID)
// and added to the request context with logger.WithContextAttrs so every
// slog record emitted with that context carries request_id.
func RequestIDWithConfig(cfg RequestIDConfig) gin.HandlerFunc {
	generate := cfg.Generator
	if generate == nil {
		generate = uuid.NewString
	}

	return func(c *gin.Context) {
		var id string
		if cfg.TrustUpstream {
			if upstream := c.GetHeader(requestIDHeader); requestIDPattern.MatchString(upstream) {
				id = upstream
			}
		}
		if id == "" {
			id = generate()
		}

		c.Set(requestIDContextKey, id)
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(
			logger.WithContextAttrs(c.Request.Context(), slog.String(requestIDContextKey, id)),
		)

		c.Next()
	}
}

// GetRequestID returns the id set by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDContextKey)
}
