package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/admision/internal/domain"
	"github.com/simp-lee/admision/internal/pkg"
)

// Recovery returns a gin middleware that recovers from panics, logs the value
// and stack trace with slog, and answers with the standard error envelope:
//
//	{"code": 500, "kind": "internal", "message": "internal error"}
//
// If the handler already started writing, only the log entry is produced.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.ErrorContext(c.Request.Context(), "panic recovered",
					slog.Any("panic", err),
					slog.String("method", c.Request.Method),
					slog.String("path", c.Request.URL.Path),
					slog.String("stack", string(debug.Stack())),
				)

				if c.Writer.Written() {
					c.Abort()
					return
				}
				pkg.Abort(c, http.StatusInternalServerError, domain.KindInternal, "internal error")
			}
		}()
		c.Next()
	}
}
