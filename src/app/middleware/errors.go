package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"pokedex/src/app/http/response"
)

// ErrorHandler turns the last error a handler attached with c.Error into the
// JSON error body. Domain errors keep their message; anything else is logged
// and reported as an internal error.
func ErrorHandler(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		if !response.FromDomainError(c, err) {
			RequestLogger(c, log).Error("unhandled error",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", err,
			)
		}
	}
}
