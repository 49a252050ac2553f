package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRateLimiterConcurrentSameClient(t *testing.T) {
	rl := NewRateLimiter(1000, 1000)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				rl.Allow("10.0.0.1")
			}
		}()
	}
	wg.Wait()

	if !rl.Allow("10.0.0.2") {
		t.Error("untouched client rejected")
	}
}

func TestRateLimiterBurstExhaustion(t *testing.T) {
	// One token per hour with burst 2: the third call must be rejected.
	rl := NewRateLimiter(1.0/3600, 2)

	if !rl.Allow("10.0.0.1") {
		t.Fatal("first request rejected")
	}
	if !rl.Allow("10.0.0.1") {
		t.Fatal("second request rejected")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("third request allowed past the burst")
	}
}

func TestRateLimiterIsPerClient(t *testing.T) {
	rl := NewRateLimiter(1.0/3600, 1)

	if !rl.Allow("10.0.0.1") {
		t.Fatal("first client rejected")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("first client allowed past the burst")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("second client rejected by the first client's bucket")
	}
}

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(1.0/3600, 1)

	r := gin.New()
	r.Use(RateLimitMiddleware(rl))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.9:1234"
	r.ServeHTTP(first, req)
	if first.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", first.Code)
	}

	second := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.9:1234"
	r.ServeHTTP(second, req)
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", second.Code)
	}
}
