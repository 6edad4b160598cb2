// Package middleware contains HTTP middleware for the Gin router.
package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pokedex/src/infra/logger"
)

const (
	// RequestIDHeader carries the request id in and out of the API.
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey is the gin context key holding the request id.
	RequestIDKey = "request_id"

	requestLoggerKey = "request_logger"
	maxRequestIDLen  = 64
)

// RequestID tags every request with an id and a logger carrying it. An id
// sent by an upstream proxy is kept when it is a short token; anything else
// is replaced with a fresh UUID so clients cannot inject log content.
func RequestID(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if !validRequestID(id) {
			id = uuid.NewString()
		}

		c.Set(RequestIDKey, id)
		c.Set(requestLoggerKey, logger.WithRequestID(log, id))
		c.Header(RequestIDHeader, id)

		c.Next()
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}

// GetRequestID returns the id set by RequestID, or "" outside of it.
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// RequestLogger returns the request-scoped logger, falling back to log when
// RequestID did not run.
func RequestLogger(c *gin.Context, log *slog.Logger) *slog.Logger {
	if v, ok := c.Get(requestLoggerKey); ok {
		if l, ok := v.(*slog.Logger); ok {
			return l
		}
	}
	return logger.WithRequestID(log, GetRequestID(c))
}
