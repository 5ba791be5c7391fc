package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxBodyBytes caps form bodies. A declared length over the cap is refused
// up front; an undeclared one fails when the form is parsed.
func MaxBodyBytes(max int64, reject Reject) gin.HandlerFunc {
	if reject == nil {
		reject = plainReject
	}

	return func(ctx *gin.Context) {
		if ctx.Request.Method == http.MethodGet || ctx.Request.Method == http.MethodHead || ctx.Request.Body == nil {
			ctx.Next()
			return
		}

		if ctx.Request.ContentLength > max {
			reject(ctx, http.StatusRequestEntityTooLarge, "The form is too large.")
			return
		}

		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, max)
		ctx.Next()
	}
}
