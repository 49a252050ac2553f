package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aciforge/portal/internal/forge"
	"github.com/aciforge/portal/internal/middleware"
	"github.com/aciforge/portal/internal/presets"
	"github.com/aciforge/portal/internal/session"
)

type ToolController struct {
	forge *forge.Client
	store *session.Store
	views *ViewRegistry
}

func NewToolController(client *forge.Client, store *session.Store, views *ViewRegistry) *ToolController {
	return &ToolController{forge: client, store: store, views: views}
}

// GetTools lists the tools granted to the session user.
func (tc *ToolController) GetTools(c *gin.Context) {
	sess, _ := middleware.GetSession(c)
	tools, err := tc.forge.ListTools(c.Request.Context(), sess.AccessToken)
	if err != nil {
		respondError(c, tc.store, tc.views, err)
		return
	}
	c.JSON(http.StatusOK, tools)
}

// CheckAccess asks the remote API whether the user may launch a tool.
func (tc *ToolController) CheckAccess(c *gin.Context) {
	sess, _ := middleware.GetSession(c)
	name := c.Param("name")
	if err := tc.forge.ToolAccess(c.Request.Context(), sess.AccessToken, name); err != nil {
		respondError(c, tc.store, tc.views, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": true, "tool": name})
}

// GetEquipmentPresets serves the static catalog behind the submit form.
func (tc *ToolController) GetEquipmentPresets(c *gin.Context) {
	if category := c.Query("category"); category != "" {
		c.JSON(http.StatusOK, gin.H{
			"categories": presets.Categories,
			"presets":    presets.ByCategory(category),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"categories": presets.Categories,
		"presets":    presets.Equipment,
	})
}
