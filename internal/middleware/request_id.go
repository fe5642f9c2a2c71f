package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/api"
)

const RequestIDHeader = "X-Request-Id"

// RequestID keeps the caller's X-Request-Id or mints one, echoes it back and
// puts it on the request context so backend calls carry the same id.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}

		c.Set(RequestIDHeader, id)
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(api.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}
