package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/admision/internal/pkg"
)

// Timeout attaches a deadline of d to the request context. Handlers see it
// through c.Request.Context(); repository calls honour it and pkg.Error turns
// the resulting context.DeadlineExceeded into 408. A handler that ignores the
// context and has not written anything when the deadline passes also gets 408.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if !c.Writer.Written() && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			pkg.Abort(c, http.StatusRequestTimeout, pkg.KindTimeout, "request timeout")
		}
	}
}
