package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"

	"github.com/aciforge/portal/internal/forge"
	"github.com/aciforge/portal/internal/logger"
	"github.com/aciforge/portal/internal/middleware"
	"github.com/aciforge/portal/internal/models"
	"github.com/aciforge/portal/internal/session"
)

type UserController struct {
	forge *forge.Client
	store *session.Store
	views *ViewRegistry
}

func NewUserController(client *forge.Client, store *session.Store, views *ViewRegistry) *UserController {
	return &UserController{forge: client, store: store, views: views}
}

// requireUserAdmin gates every handler here on the superuser capability.
func (uc *UserController) requireUserAdmin(c *gin.Context) (*session.Session, bool) {
	sess, _ := middleware.GetSession(c)
	if !sess.Capabilities.CanManageUsers {
		c.JSON(http.StatusForbidden, gin.H{"error": "Superuser access required", "redirect": "/dashboard"})
		return nil, false
	}
	return sess, true
}

func (uc *UserController) GetUsers(c *gin.Context) {
	sess, ok := uc.requireUserAdmin(c)
	if !ok {
		return
	}
	users, err := uc.forge.ListUsers(c.Request.Context(), sess.AccessToken)
	if err != nil {
		respondError(c, uc.store, uc.views, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (uc *UserController) CreateUser(c *gin.Context) {
	sess, ok := uc.requireUserAdmin(c)
	if !ok {
		return
	}

	var req models.UserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if problems := validatePasswordStrength(req.Password); len(problems) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Password does not meet requirements",
			"details": problems,
		})
		return
	}

	user, err := uc.forge.CreateUser(c.Request.Context(), sess.AccessToken, req)
	if err != nil {
		respondError(c, uc.store, uc.views, err)
		return
	}

	logger.WithUser(sess.User.Username).WithField("created", user.Username).Info("User created")
	c.JSON(http.StatusCreated, user)
}

func (uc *UserController) UpdateUser(c *gin.Context) {
	sess, ok := uc.requireUserAdmin(c)
	if !ok {
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var req models.UserUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Password != nil {
		if problems := validatePasswordStrength(*req.Password); len(problems) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Password does not meet requirements",
				"details": problems,
			})
			return
		}
	}

	user, err := uc.forge.UpdateUser(c.Request.Context(), sess.AccessToken, id, req)
	if err != nil {
		respondError(c, uc.store, uc.views, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (uc *UserController) DeleteUser(c *gin.Context) {
	sess, ok := uc.requireUserAdmin(c)
	if !ok {
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	// Prevent admins from deleting themselves
	if id == sess.User.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete your own account"})
		return
	}

	if err := uc.forge.DeleteUser(c.Request.Context(), sess.AccessToken, id); err != nil {
		respondError(c, uc.store, uc.views, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// SendCredentials mails login credentials to one user.
func (uc *UserController) SendCredentials(c *gin.Context) {
	sess, ok := uc.requireUserAdmin(c)
	if !ok {
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if err := uc.forge.SendCredentials(c.Request.Context(), sess.AccessToken, id); err != nil {
		respondError(c, uc.store, uc.views, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Credentials email sent"})
}

// SendCredentialsToAll mails credentials to every active user.
func (uc *UserController) SendCredentialsToAll(c *gin.Context) {
	sess, ok := uc.requireUserAdmin(c)
	if !ok {
		return
	}
	if err := uc.forge.SendCredentialsToAll(c.Request.Context(), sess.AccessToken); err != nil {
		respondError(c, uc.store, uc.views, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Credentials emails sent"})
}

func (uc *UserController) GetRoles(c *gin.Context) {
	sess, ok := uc.requireUserAdmin(c)
	if !ok {
		return
	}
	roles, err := uc.forge.ListRoles(c.Request.Context(), sess.AccessToken)
	if err != nil {
		respondError(c, uc.store, uc.views, err)
		return
	}
	c.JSON(http.StatusOK, roles)
}

// validatePasswordStrength applies the portal password rules and returns
// every violated rule.
func validatePasswordStrength(password string) []string {
	var problems []string
	if len(password) < 8 {
		problems = append(problems, "Password must be at least 8 characters long")
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper {
		problems = append(problems, "Password must contain at least one uppercase letter")
	}
	if !hasLower {
		problems = append(problems, "Password must contain at least one lowercase letter")
	}
	if !hasDigit {
		problems = append(problems, "Password must contain at least one number")
	}
	if !strings.ContainsAny(password, `!@#$%^&*(),.?":{}|<>`) {
		problems = append(problems, "Password must contain at least one special character")
	}
	return problems
}
