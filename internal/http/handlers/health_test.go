package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/todohub/internal/http/handlers"
)

func TestReadyz(t *testing.T) {
	tests := []struct {
		name         string
		shuttingDown bool
		pingErr      error
		wantStatus   int
		wantBody     string
	}{
		{name: "ready", wantStatus: http.StatusOK, wantBody: `"ready"`},
		{name: "store down", pingErr: errors.New("connection refused"), wantStatus: http.StatusServiceUnavailable, wantBody: "connection refused"},
		{name: "shutting down", shuttingDown: true, wantStatus: http.StatusServiceUnavailable, wantBody: "shutting_down"},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewHealthHandler(
				func() bool { return tt.shuttingDown },
				handlers.Check{Name: "sessions", Ping: func(ctx context.Context) error { return tt.pingErr }},
			)

			r := gin.New()
			r.GET("/healthz", h.Healthz)
			r.GET("/readyz", h.Readyz)

			if w := get(r, "/healthz"); w.Code != http.StatusOK {
				t.Fatalf("healthz got %d", w.Code)
			}

			w := get(r, "/readyz")
			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d", w.Code, tt.wantStatus)
			}
			if !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Fatalf("body %s should contain %s", w.Body.String(), tt.wantBody)
			}
		})
	}
}
