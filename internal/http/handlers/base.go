package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/todohub/internal/appwrite"
	"github.com/geocoder89/todohub/internal/auth"
	"github.com/geocoder89/todohub/internal/http/middlewares"
	"github.com/geocoder89/todohub/internal/session"
	"github.com/geocoder89/todohub/internal/todos"
)

type Options struct {
	// Timeout bounds each backend round trip made by a handler.
	Timeout time.Duration
	Logger  *slog.Logger
	// OnDroppedSubmit is told about submits ignored while another submit
	// from the same browser was still running.
	OnDroppedSubmit func(route string)
	PageSize        int
}

type base struct {
	timeout time.Duration
	log     *slog.Logger
	dropped func(route string)
}

func newBase(opts Options) base {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	return base{timeout: timeout, log: log, dropped: opts.OnDroppedSubmit}
}

func (b base) backendCtx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), b.timeout)
}

// begin claims the session's submit slot. When another submit holds it the
// request is answered with a redirect to back and false is returned.
func (b base) begin(c *gin.Context, st *session.State, back string) bool {
	if st.BeginSubmit() {
		return true
	}

	if b.dropped != nil {
		b.dropped(c.FullPath())
	}
	b.log.DebugContext(c.Request.Context(), "submit dropped", "route", c.FullPath())
	Redirect(c, back)
	return false
}

func stateOf(c *gin.Context) (*session.State, bool) {
	st, ok := middlewares.SessionFrom(c)
	if !ok {
		RespondInternal(c, "Session unavailable")
		return nil, false
	}
	return st, true
}

func errMessage(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}

// backendStatus picks the page status for a failed backend call.
func backendStatus(err error) int {
	var apiErr *appwrite.Error
	switch {
	case errors.As(err, &apiErr) && apiErr.Code >= 400 && apiErr.Code < 500:
		return apiErr.Code
	case errors.Is(err, todos.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrPasswordRequired):
		return http.StatusUnprocessableEntity
	case errors.Is(err, appwrite.ErrCircuitOpen), errors.As(err, &apiErr) && apiErr.Type == "circuit_open":
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &apiErr) && apiErr.Type == "timeout":
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
