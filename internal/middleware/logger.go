package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const healthPath = "/api/healthz"

// Logger writes one line per request. Health checks are logged at debug so
// they do not drown the access log.
func Logger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		log.WithLevel(accessLevel(c.FullPath(), status)).
			Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Str("path", c.Request.URL.Path).
			Str("client_ip", c.ClientIP()).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Str("request_id", c.GetString(RequestIDHeader)).
			Msg("gateway request")
	}
}

func accessLevel(route string, status int) zerolog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zerolog.ErrorLevel
	case status >= http.StatusBadRequest:
		return zerolog.WarnLevel
	case route == healthPath:
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}
