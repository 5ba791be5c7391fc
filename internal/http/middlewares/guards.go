package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAuth waits for the session's first auth check, then lets signed-in
// browsers through and sends everyone else to /login.
func RequireAuth() gin.HandlerFunc {
	return guard(true, "/login")
}

// RequireGuest is the mirror of RequireAuth for the login and register pages.
func RequireGuest() gin.HandlerFunc {
	return guard(false, "/todos")
}

func guard(wantLoggedIn bool, otherwise string) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := SessionFrom(c)
		if !ok {
			c.String(http.StatusInternalServerError, "session missing")
			c.Abort()
			return
		}

		if err := st.Auth.WaitInitialized(c.Request.Context()); err != nil {
			// client went away before the check finished
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}

		if st.Auth.LoggedIn() != wantLoggedIn {
			c.Redirect(http.StatusFound, otherwise)
			c.Abort()
			return
		}

		c.Next()
	}
}
