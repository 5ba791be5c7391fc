package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/todohub/internal/http/middlewares"
)

func TestRateLimiter(t *testing.T) {
	rl := middlewares.NewRateLimiter(2, time.Minute, nil)

	r := gin.New()
	r.Use(rl.Middleware(middlewares.KeyByIP))
	r.GET("/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(method string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 2; i++ {
		if w := do(http.MethodPost); w.Code != http.StatusOK {
			t.Fatalf("attempt %d got %d", i+1, w.Code)
		}
	}

	w := do(http.MethodPost)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("got %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}

	if w := do(http.MethodGet); w.Code != http.StatusOK {
		t.Fatalf("form page should stay reachable, got %d", w.Code)
	}
}

func TestRateLimiter_SeparateKeys(t *testing.T) {
	rl := middlewares.NewRateLimiter(1, time.Minute, nil)

	r := gin.New()
	r.Use(rl.Middleware(middlewares.KeyByIP))
	r.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, addr := range []string{"10.0.0.1:1", "10.0.0.2:1"} {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("%s got %d", addr, w.Code)
		}
	}
}
