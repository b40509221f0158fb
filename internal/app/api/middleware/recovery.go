package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/pledge/pkg/logctx"
	"github.com/fatflowers/pledge/pkg/response"
)

// RecoveryMiddleware turns a handler panic into a 500 error body. The stack is
// included in the body only when withStack is set.
func RecoveryMiddleware(base *zap.SugaredLogger, withStack bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			stack := string(debug.Stack())
			msg := fmt.Sprint(r)
			if err, ok := r.(error); ok {
				msg = err.Error()
			}
			logctx.FromGin(c, base).Errorw("panic recovered", "error", msg, "stack", stack)

			body := response.Error("Request failed", msg)
			if withStack {
				body.Stack = stack
			}
			response.Abort(c, http.StatusInternalServerError, body)
		}()
		c.Next()
	}
}

// NotFoundHandler answers unmatched routes.
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.NotFound(c, "Not found", fmt.Sprintf("Route %s %s not found", c.Request.Method, c.Request.URL.Path))
	}
}
