package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aciforge/portal/internal/logger"
)

// RequestLoggerMiddleware tags every request with an id and logs method,
// path, status and latency once the handler chain finishes.
func RequestLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := uuid.NewString()
		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		username := ""
		if sess, ok := GetSession(c); ok {
			username = sess.User.Username
		}

		logger.WithRequest(requestID, c.Request.Method, c.Request.URL.Path).
			WithField("status", c.Writer.Status()).
			WithField("latency", time.Since(start).String()).
			WithField("client_ip", c.ClientIP()).
			WithField("username", username).
			Info("request completed")
	}
}
