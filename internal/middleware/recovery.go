package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Recovery turns a handler panic into the gateway's usual {error} body.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			log.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Str("route", c.FullPath()).
				Str("request_id", c.GetString(RequestIDHeader)).
				Msg("handler panicked")
			if !c.Writer.Written() {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
				return
			}
			c.Abort()
		}()
		c.Next()
	}
}
