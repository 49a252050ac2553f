package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aciforge/portal/internal/session"
)

const sessionKey = "session"

// AuthMiddleware resolves the bearer token to a live session. Attachment
// downloads open in a new browser tab, so a token query parameter is
// accepted as a fallback there.
func AuthMiddleware(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""

		authHeader := c.GetHeader("Authorization")
		switch {
		case strings.HasPrefix(authHeader, "Bearer "):
			token = strings.TrimPrefix(authHeader, "Bearer ")
		case authHeader != "":
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format",
			})
			c.Abort()
			return
		default:
			token = c.Query("token")
		}

		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization required",
			})
			c.Abort()
			return
		}

		sess, ok := store.Get(token)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired session",
			})
			c.Abort()
			return
		}

		c.Set(sessionKey, sess)
		c.Next()
	}
}

// GetSession pulls the session attached by AuthMiddleware.
func GetSession(c *gin.Context) (*session.Session, bool) {
	v, exists := c.Get(sessionKey)
	if !exists {
		return nil, false
	}
	sess, ok := v.(*session.Session)
	return sess, ok
}
