package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSConfig holds the configuration for the CORS middleware.
type CORSConfig struct {
	// AllowOrigins lists the origins a browser console may be served from.
	// "*" allows any origin. An empty list denies every cross-origin request.
	AllowOrigins []string
	// AllowMethods and AllowHeaders are answered on preflight requests.
	AllowMethods []string
	AllowHeaders []string
	// ExposeHeaders lists response headers a browser client may read.
	ExposeHeaders    []string
	AllowCredentials bool
	// MaxAge is the preflight cache lifetime in seconds.
	MaxAge string
}

// DefaultCORSConfig returns a permissive configuration for development. The
// method list covers the especialidades API, including the PATCH used for
// deactivation.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader, "Retry-After"},
		MaxAge:        "86400",
	}
}

type corsPolicy struct {
	anyOrigin   bool
	origins     map[string]struct{}
	credentials bool

	methods string
	headers string
	expose  string
	maxAge  string
}

func newCORSPolicy(cfg CORSConfig) corsPolicy {
	p := corsPolicy{
		origins:     make(map[string]struct{}, len(cfg.AllowOrigins)),
		credentials: cfg.AllowCredentials,
		methods:     strings.Join(cfg.AllowMethods, ", "),
		headers:     strings.Join(cfg.AllowHeaders, ", "),
		expose:      strings.Join(cfg.ExposeHeaders, ", "),
		maxAge:      strings.TrimSpace(cfg.MaxAge),
	}
	for _, o := range cfg.AllowOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			p.anyOrigin = true
			continue
		}
		if o != "" {
			p.origins[o] = struct{}{}
		}
	}
	return p
}

// allowOrigin returns the Access-Control-Allow-Origin value for origin, or ""
// when the origin is not allowed. With credentials the origin is echoed since
// browsers reject "*" there.
func (p corsPolicy) allowOrigin(origin string) string {
	if _, ok := p.origins[origin]; ok {
		return origin
	}
	if !p.anyOrigin {
		return ""
	}
	if p.credentials {
		return origin
	}
	return "*"
}

// CORSWithConfig returns a gin middleware that handles Cross-Origin Resource
// Sharing. Requests without an Origin header pass through untouched. A
// preflight (OPTIONS carrying Access-Control-Request-Method) from an allowed
// origin is answered with 204; from any other origin it gets 403.
func CORSWithConfig(cfg CORSConfig) gin.HandlerFunc {
	p := newCORSPolicy(cfg)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Add("Vary", "Origin")
		preflight := c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != ""

		allowed := p.allowOrigin(origin)
		if allowed == "" {
			if preflight {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.Next()
			return
		}

		h.Set("Access-Control-Allow-Origin", allowed)
		if p.credentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}

		if !preflight {
			if p.expose != "" {
				h.Set("Access-Control-Expose-Headers", p.expose)
			}
			c.Next()
			return
		}

		h.Add("Vary", "Access-Control-Request-Method")
		h.Add("Vary", "Access-Control-Request-Headers")
		h.Set("Access-Control-Allow-Methods", p.methods)
		h.Set("Access-Control-Allow-Headers", p.headers)
		if p.maxAge != "" {
			h.Set("Access-Control-Max-Age", p.maxAge)
		}
		c.AbortWithStatus(http.StatusNoContent)
	}
}
