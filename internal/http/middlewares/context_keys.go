package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/geocoder89/todohub/internal/session"
)

const (
	CtxRequestID = "request_id"
	CtxSession   = "session.state"
	CtxCSRF      = "session.csrf"
	CtxRotate    = "session.rotate"
)

// SessionFrom returns the browser session attached by Sessions.
func SessionFrom(c *gin.Context) (*session.State, bool) {
	v, ok := c.Get(CtxSession)
	if !ok {
		return nil, false
	}
	st, ok := v.(*session.State)
	return st, ok && st != nil
}

// SetSession attaches st to the request. Used by Sessions and by tests.
func SetSession(c *gin.Context, st *session.State) {
	c.Set(CtxSession, st)
}

func CSRFTokenFrom(c *gin.Context) string {
	v, ok := c.Get(CtxCSRF)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
