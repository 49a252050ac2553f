package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/aciforge/portal/internal/models"
	"github.com/aciforge/portal/internal/session"
)

func userNamed(username string) models.User {
	return models.User{ID: 1, Username: username}
}

func authTestRouter(t *testing.T, store *session.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(store))
	r.GET("/me", func(c *gin.Context) {
		sess, ok := GetSession(c)
		if !ok {
			c.String(http.StatusInternalServerError, "no session in context")
			return
		}
		c.String(http.StatusOK, sess.User.Username)
	})
	return r
}

func liveToken(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "jdoe",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestAuthMiddlewareAcceptsBearerHeader(t *testing.T) {
	store := session.NewStore(time.Hour)
	token := liveToken(t)
	store.Put(&session.Session{
		User:        userNamed("jdoe"),
		AccessToken: token,
		CreatedAt:   time.Now(),
	})
	r := authTestRouter(t, store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}
	if w.Body.String() != "jdoe" {
		t.Errorf("body = %q, want jdoe", w.Body.String())
	}
}

func TestAuthMiddlewareAcceptsTokenQueryFallback(t *testing.T) {
	store := session.NewStore(time.Hour)
	token := liveToken(t)
	store.Put(&session.Session{
		User:        userNamed("jdoe"),
		AccessToken: token,
		CreatedAt:   time.Now(),
	})
	r := authTestRouter(t, store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me?token="+token, nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestAuthMiddlewareRejections(t *testing.T) {
	store := session.NewStore(time.Hour)
	r := authTestRouter(t, store)

	tests := []struct {
		name   string
		header string
	}{
		{"missing credentials", ""},
		{"malformed header", "Token abc"},
		{"unknown token", "Bearer nobody-home"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(w, req)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
		})
	}
}
