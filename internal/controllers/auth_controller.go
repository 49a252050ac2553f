package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aciforge/portal/internal/forge"
	"github.com/aciforge/portal/internal/logger"
	"github.com/aciforge/portal/internal/middleware"
	"github.com/aciforge/portal/internal/models"
	"github.com/aciforge/portal/internal/session"
)

type AuthController struct {
	forge *forge.Client
	store *session.Store
	views *ViewRegistry
}

func NewAuthController(client *forge.Client, store *session.Store, views *ViewRegistry) *AuthController {
	return &AuthController{forge: client, store: store, views: views}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
	TokenType    string               `json:"token_type"`
	User         models.User          `json:"user"`
	Capabilities session.Capabilities `json:"capabilities"`
}

// Login delegates credential verification to the remote API and registers
// a local session around the issued token pair.
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := ac.forge.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if err == forge.ErrUnauthenticated {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		respondError(c, ac.store, ac.views, err)
		return
	}

	caps := session.CapabilitiesFor(resp.User)
	ac.store.Put(&session.Session{
		User:         resp.User,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		Capabilities: caps,
		CreatedAt:    time.Now(),
	})

	logger.WithUser(resp.User.Username).Info("User logged in")

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.TokenType,
		User:         resp.User,
		Capabilities: caps,
	})
}

// Logout drops the session and all cached view state.
func (ac *AuthController) Logout(c *gin.Context) {
	sess, ok := middleware.GetSession(c)
	if ok {
		ac.store.Clear(sess.AccessToken)
		ac.views.Drop(sess.AccessToken)
		logger.WithUser(sess.User.Username).Info("User logged out")
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the session identity with its capability set.
func (ac *AuthController) Me(c *gin.Context) {
	sess, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":         sess.User,
		"capabilities": sess.Capabilities,
	})
}
