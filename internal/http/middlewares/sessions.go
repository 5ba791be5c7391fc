package middlewares

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/todohub/internal/observability"
	"github.com/geocoder89/todohub/internal/session"
)

type SessionRegistry interface {
	Acquire(ctx context.Context, id string) *session.State
	Persist(ctx context.Context, st *session.State) error
	Rotate(ctx context.Context, st *session.State) *session.State
}

type SessionConfig struct {
	CookieName string
	Secure     bool
	Tokens     *session.TokenManager
	Registry   SessionRegistry
	Logger     *slog.Logger
}

// Sessions binds every request to its browser session, issuing a cookie for
// new browsers, and persists the session once the handler is done.
func Sessions(cfg SessionConfig) gin.HandlerFunc {
	name := cfg.CookieName
	if name == "" {
		name = "todohub_session"
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	issue := func(c *gin.Context, id string) bool {
		tok, err := cfg.Tokens.Issue(id)
		if err != nil {
			log.ErrorContext(c.Request.Context(), "issue session cookie", "err", err)
			return false
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(name, tok, int(cfg.Tokens.TTL().Seconds()), "/", "", cfg.Secure, true)
		return true
	}

	bind := func(c *gin.Context, st *session.State) {
		// component logs made during this request carry the session id
		c.Request = c.Request.WithContext(observability.ContextWithAttrs(c.Request.Context(), "session_id", st.ID))

		SetSession(c, st)
		c.Set(CtxCSRF, cfg.Tokens.CSRFToken(st.ID))
	}

	rotate := func(c *gin.Context) *session.State {
		st, _ := SessionFrom(c)
		next := cfg.Registry.Rotate(c.Request.Context(), st)
		// the old id is gone either way; without a cookie the browser starts over
		issue(c, next.ID)
		bind(c, next)
		return next
	}

	return func(c *gin.Context) {
		var sid string
		if raw, err := c.Cookie(name); err == nil && raw != "" {
			if id, err := cfg.Tokens.Parse(raw); err == nil {
				sid = id
			} else {
				log.DebugContext(c.Request.Context(), "session cookie rejected", "err", err)
			}
		}

		st := cfg.Registry.Acquire(c.Request.Context(), sid)

		if st.ID != sid && !issue(c, st.ID) {
			c.String(http.StatusInternalServerError, "Could not start session")
			c.Abort()
			return
		}

		bind(c, st)
		c.Set(CtxRotate, rotate)

		c.Next()

		// a handler may have rotated the session
		if cur, ok := SessionFrom(c); ok {
			st = cur
		}
		if err := cfg.Registry.Persist(context.WithoutCancel(c.Request.Context()), st); err != nil {
			log.WarnContext(c.Request.Context(), "persist session", "err", err)
		}
	}
}

// RotateSession gives the browser session a new id and cookie, keeping its
// contents. Without the Sessions middleware it returns the current session.
func RotateSession(c *gin.Context) *session.State {
	st, _ := SessionFrom(c)
	if st == nil {
		return nil
	}
	v, ok := c.Get(CtxRotate)
	if !ok {
		return st
	}
	rotate, ok := v.(func(*gin.Context) *session.State)
	if !ok {
		return st
	}
	return rotate(c)
}

// CSRF rejects state-changing requests whose form token does not belong to
// the browser session.
func CSRF(tokens *session.TokenManager, reject Reject) gin.HandlerFunc {
	if reject == nil {
		reject = plainReject
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		st, ok := SessionFrom(c)
		if !ok || !tokens.VerifyCSRF(st.ID, c.PostForm("_csrf")) {
			reject(c, http.StatusForbidden, "This form has expired. Reload the page and try again.")
			return
		}
		c.Next()
	}
}
