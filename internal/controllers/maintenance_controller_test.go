package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/aciforge/portal/internal/forge"
	"github.com/aciforge/portal/internal/middleware"
	"github.com/aciforge/portal/internal/models"
	"github.com/aciforge/portal/internal/session"
)

// upstream is a stub of the remote API behind the portal.
type upstream struct {
	requests     []models.MaintenanceRequest
	statistics   models.Statistics
	unauthorized bool
	listCalls    int
	myListCalls  int
}

func (u *upstream) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if u.unauthorized {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch {
		case r.URL.Path == "/api/maintenance-requests" && r.Method == http.MethodGet:
			u.listCalls++
			json.NewEncoder(w).Encode(map[string]any{"requests": u.requests})
		case r.URL.Path == "/api/maintenance-requests/my-requests":
			u.myListCalls++
			json.NewEncoder(w).Encode(map[string]any{"requests": u.requests})
		case r.URL.Path == "/api/maintenance-requests/statistics":
			json.NewEncoder(w).Encode(u.statistics)
		case strings.HasSuffix(r.URL.Path, "/status") && r.Method == http.MethodPatch:
			id := pathID(strings.TrimSuffix(r.URL.Path, "/status"))
			var body struct {
				Status models.RequestStatus `json:"status"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			for i := range u.requests {
				if u.requests[i].ID == id {
					u.requests[i].Status = body.Status
					json.NewEncoder(w).Encode(u.requests[i])
					return
				}
			}
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodDelete:
			id := pathID(r.URL.Path)
			kept := u.requests[:0]
			for _, rec := range u.requests {
				if rec.ID != id {
					kept = append(kept, rec)
				}
			}
			u.requests = kept
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodGet:
			id := pathID(r.URL.Path)
			for _, rec := range u.requests {
				if rec.ID == id {
					json.NewEncoder(w).Encode(rec)
					return
				}
			}
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func pathID(path string) int {
	id, _ := strconv.Atoi(path[strings.LastIndex(path, "/")+1:])
	return id
}

func portalToken(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "maint",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

// portal wires a real router against the stub upstream and returns the
// router plus the bearer token of a logged-in maintenance user.
func portal(t *testing.T, u *upstream) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(u.handler())
	t.Cleanup(srv.Close)

	client := forge.NewClient(srv.URL, 5*time.Second)
	store := session.NewStore(time.Hour)
	views := NewViewRegistry(client)
	mc := NewMaintenanceController(client, store, views)

	token := portalToken(t)
	store.Put(&session.Session{
		User:        models.User{ID: 1, Username: "maint"},
		AccessToken: token,
		Capabilities: session.Capabilities{
			CanManageMaintenance: true,
		},
		CreatedAt: time.Now(),
	})

	r := gin.New()
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware(store))
	protected.GET("/maintenance-requests", mc.ListAll)
	protected.GET("/maintenance-requests/my-requests", mc.ListMine)
	protected.PATCH("/maintenance-requests/:id/status", mc.UpdateStatus)
	protected.DELETE("/maintenance-requests/:id", mc.Delete)
	return r, token
}

func get(t *testing.T, r *gin.Engine, token, path string) (*httptest.ResponseRecorder, ListView) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	var view ListView
	if w.Code == http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
			t.Fatalf("decode list view: %v", err)
		}
	}
	return w, view
}

func seedRequests(n, pending int) []models.MaintenanceRequest {
	out := make([]models.MaintenanceRequest, 0, n)
	for i := 1; i <= n; i++ {
		status := models.StatusCompleted
		if i <= pending {
			status = models.StatusPending
		}
		out = append(out, models.MaintenanceRequest{
			ID:        i,
			Title:     fmt.Sprintf("request %d", i),
			Status:    status,
			Priority:  models.PriorityLow,
			CreatedAt: fmt.Sprintf("2024-01-%02dT00:00:00", i),
			Submitter: models.UserRef{ID: 100, Username: "jdoe", FullName: "Jane Doe"},
		})
	}
	return out
}

func TestListAllServesViewWithStatistics(t *testing.T) {
	u := &upstream{
		requests:   seedRequests(12, 7),
		statistics: models.Statistics{TotalRequests: 12, PendingCount: 7},
	}
	r, token := portal(t, u)

	w, view := get(t, r, token, "/api/maintenance-requests")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if view.TotalCount != 12 || view.PageSize != 10 || view.TotalPages != 2 {
		t.Errorf("unexpected view: count=%d size=%d pages=%d", view.TotalCount, view.PageSize, view.TotalPages)
	}
	if len(view.Requests) != 10 {
		t.Errorf("got %d visible requests, want 10", len(view.Requests))
	}
	if view.Statistics == nil || view.Statistics.PendingCount != 7 {
		t.Errorf("unexpected statistics: %+v", view.Statistics)
	}
	// Most recent first.
	if view.Requests[0].ID != 12 {
		t.Errorf("first visible ID = %d, want 12", view.Requests[0].ID)
	}
}

func TestListStateSurvivesBetweenCalls(t *testing.T) {
	u := &upstream{requests: seedRequests(30, 30)}
	r, token := portal(t, u)

	if _, view := get(t, r, token, "/api/maintenance-requests?page=2"); view.CurrentPage != 2 {
		t.Fatalf("CurrentPage = %d, want 2", view.CurrentPage)
	}
	if u.listCalls != 1 {
		t.Fatalf("upstream list calls = %d, want 1", u.listCalls)
	}

	// No parameters: the session keeps its page, and the collection is not
	// refetched.
	_, view := get(t, r, token, "/api/maintenance-requests")
	if view.CurrentPage != 2 {
		t.Errorf("CurrentPage = %d, want 2 (state lost between calls)", view.CurrentPage)
	}
	if u.listCalls != 1 {
		t.Errorf("upstream list calls = %d, want 1 (unexpected refetch)", u.listCalls)
	}

	// An explicit refresh does refetch.
	get(t, r, token, "/api/maintenance-requests?refresh=true")
	if u.listCalls != 2 {
		t.Errorf("upstream list calls = %d, want 2 after refresh", u.listCalls)
	}
}

func TestListFilterDoesNotResetPageButPageSizeDoes(t *testing.T) {
	u := &upstream{requests: seedRequests(30, 5)}
	r, token := portal(t, u)

	get(t, r, token, "/api/maintenance-requests?page=3")

	_, view := get(t, r, token, "/api/maintenance-requests?status=pending")
	if view.TotalCount != 5 {
		t.Errorf("TotalCount = %d, want 5", view.TotalCount)
	}
	if view.CurrentPage != 3 {
		t.Errorf("CurrentPage = %d, want 3 (filter must not reset the page)", view.CurrentPage)
	}
	if len(view.Requests) != 0 {
		t.Errorf("page 3 of 5 records should be empty, got %d", len(view.Requests))
	}

	_, view = get(t, r, token, "/api/maintenance-requests?page_size=25")
	if view.CurrentPage != 1 {
		t.Errorf("CurrentPage = %d, want 1 after page size change", view.CurrentPage)
	}
}

func TestListRejectsBadParameters(t *testing.T) {
	u := &upstream{requests: seedRequests(3, 3)}
	r, token := portal(t, u)

	for _, path := range []string{
		"/api/maintenance-requests?page_size=33",
		"/api/maintenance-requests?page=0",
		"/api/maintenance-requests?sort=severity",
	} {
		w, _ := get(t, r, token, path)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, w.Code)
		}
	}
}

func TestListRequiresMaintenanceCapability(t *testing.T) {
	u := &upstream{requests: seedRequests(3, 3)}

	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(u.handler())
	defer srv.Close()

	client := forge.NewClient(srv.URL, 5*time.Second)
	store := session.NewStore(time.Hour)
	views := NewViewRegistry(client)
	mc := NewMaintenanceController(client, store, views)

	token := portalToken(t)
	store.Put(&session.Session{
		User:        models.User{ID: 2, Username: "viewer"},
		AccessToken: token,
		CreatedAt:   time.Now(),
	})

	router := gin.New()
	router.GET("/api/maintenance-requests", middleware.AuthMiddleware(store), mc.ListAll)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/maintenance-requests", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestDeleteInvalidatesMyRequestsView(t *testing.T) {
	u := &upstream{requests: seedRequests(2, 2)}
	r, token := portal(t, u)

	// Warm both views.
	if _, view := get(t, r, token, "/api/maintenance-requests/my-requests"); view.TotalCount != 2 {
		t.Fatalf("my-requests TotalCount = %d, want 2", view.TotalCount)
	}
	get(t, r, token, "/api/maintenance-requests")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/maintenance-requests/1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body = %s", w.Code, w.Body.String())
	}

	// The cached my-requests view was dropped and reloads without the
	// deleted record.
	myCallsBefore := u.myListCalls
	_, view := get(t, r, token, "/api/maintenance-requests/my-requests")
	if view.TotalCount != 1 {
		t.Errorf("my-requests TotalCount after delete = %d, want 1", view.TotalCount)
	}
	if u.myListCalls != myCallsBefore+1 {
		t.Errorf("my-requests did not reload after delete (calls %d -> %d)", myCallsBefore, u.myListCalls)
	}
}

func TestStatusPatchInvalidatesMyRequestsView(t *testing.T) {
	u := &upstream{requests: seedRequests(1, 1)}
	r, token := portal(t, u)

	if _, view := get(t, r, token, "/api/maintenance-requests/my-requests"); view.Requests[0].Status != models.StatusPending {
		t.Fatalf("seed status = %s, want pending", view.Requests[0].Status)
	}

	w := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"status":"in_progress"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/maintenance-requests/1/status", body)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("patch status = %d, body = %s", w.Code, w.Body.String())
	}

	_, view := get(t, r, token, "/api/maintenance-requests/my-requests")
	if view.Requests[0].Status != models.StatusInProgress {
		t.Errorf("my-requests still serves status %s, want in_progress", view.Requests[0].Status)
	}
}

func TestUpstream401ClearsSession(t *testing.T) {
	u := &upstream{unauthorized: true}
	r, token := portal(t, u)

	w, _ := get(t, r, token, "/api/maintenance-requests")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body["redirect"] != "/login" {
		t.Errorf("redirect = %q, want /login", body["redirect"])
	}

	// The session is gone, so the next call fails at the portal door.
	w, _ = get(t, r, token, "/api/maintenance-requests")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("second call status = %d, want 401", w.Code)
	}
}
