package handlers

import (
	"PortalServer/internal/server/middleware"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

const fallbackShell = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Longevity Portal</title></head>
<body><div id="app"></div></body>
</html>
`

// Shell serves the client page shell for a guarded route.
func (h Handler) Shell() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if h.shellPath != "" {
			if _, err := os.Stat(h.shellPath); err == nil {
				ctx.File(h.shellPath)
				return
			}
		}
		ctx.Data(http.StatusOK, "text/html; charset=utf-8", []byte(fallbackShell))
	}
}

// LoginPage sends signed-in users home instead of showing the form.
func (h Handler) LoginPage() gin.HandlerFunc {
	shell := h.Shell()
	return func(ctx *gin.Context) {
		if _, ok := middleware.Claims(ctx); ok {
			ctx.Redirect(http.StatusFound, middleware.HomePath(middleware.Role(ctx)))
			return
		}
		shell(ctx)
	}
}

// Home redirects to the caller's landing page.
func (h Handler) Home() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Redirect(http.StatusFound, middleware.HomePath(middleware.Role(ctx)))
	}
}
