package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/todohub/internal/http/middlewares"
)

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get(middlewares.CtxRequestID)

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

// Render writes a page. Every page gets the pending toasts, the CSRF token
// and the signed-in user on top of its own data.
func Render(ctx *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = FieldErrors{}
	}

	data["CSRF"] = middlewares.CSRFTokenFrom(ctx)
	data["RequestID"] = requestIDFrom(ctx)

	if st, ok := middlewares.SessionFrom(ctx); ok {
		data["Toasts"] = st.Toasts.Drain()
		if st.Auth.LoggedIn() {
			data["LoggedIn"] = true
			if _, ok := data["User"]; !ok {
				data["User"] = st.Auth.User()
			}
		}
	}

	ctx.HTML(status, name, data)
}

// RespondError renders the error page and stops the chain.
func RespondError(ctx *gin.Context, status int, message string) {
	Render(ctx, status, "error.html", gin.H{
		"Title":   http.StatusText(status),
		"Status":  http.StatusText(status),
		"Message": message,
	})
	ctx.Abort()
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, message)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, message)
}

// Redirect answers a form post with 303 so a reload does not resubmit.
func Redirect(ctx *gin.Context, location string) {
	ctx.Redirect(http.StatusSeeOther, location)
}
