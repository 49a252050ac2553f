package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/aciforge/portal/internal/forge"
	"github.com/aciforge/portal/internal/logger"
	"github.com/aciforge/portal/internal/middleware"
	"github.com/aciforge/portal/internal/session"
	"github.com/aciforge/portal/internal/viewmodel"
)

// respondError translates gateway and view-model failures into portal
// responses. A 401 from the remote API is terminal: the local session is
// cleared and the client is told to go back to login. A 403 sends the
// client to the dashboard. Everything else is surfaced with prior state
// preserved; there is no automatic retry.
func respondError(c *gin.Context, store *session.Store, views *ViewRegistry, err error) {
	switch {
	case errors.Is(err, forge.ErrUnauthenticated):
		if sess, ok := middleware.GetSession(c); ok {
			store.Clear(sess.AccessToken)
			views.Drop(sess.AccessToken)
		}
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":    "Session expired",
			"redirect": "/login",
		})
	case errors.Is(err, forge.ErrForbidden), errors.Is(err, viewmodel.ErrNotAllowed):
		c.JSON(http.StatusForbidden, gin.H{
			"error":    "Access denied",
			"redirect": "/dashboard",
		})
	case errors.Is(err, forge.ErrNotFound), errors.Is(err, viewmodel.ErrUnknownRequest):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, viewmodel.ErrBadPageSize):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported page size"})
	default:
		var remote *forge.RemoteError
		if errors.As(err, &remote) && remote.Detail != "" {
			c.JSON(http.StatusBadGateway, gin.H{"error": remote.Detail})
			return
		}
		logger.WithError(err, "controller").Error("Remote API call failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upstream request failed"})
	}
}
