package middleware

import (
	"PortalServer/internal/auth"
	"PortalServer/internal/entities"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	SessionCookie = "portal_session"
	claimsKey     = "claims"
)

type TokenParser interface {
	ParseToken(token string) (*auth.Claims, error)
}

// Authenticate attaches the caller's claims when a valid token is sent
// in the Authorization header or the session cookie. Callers without
// one continue as guests.
func Authenticate(p TokenParser) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := tokenFrom(ctx)
		if token != "" {
			if claims, err := p.ParseToken(token); err == nil {
				ctx.Set(claimsKey, claims)
			}
		}
		ctx.Next()
	}
}

func tokenFrom(ctx *gin.Context) string {
	if header := ctx.GetHeader("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := ctx.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

// Claims returns the caller's claims, if any.
func Claims(ctx *gin.Context) (*auth.Claims, bool) {
	v, ok := ctx.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

// Role is guest unless a valid token was presented.
func Role(ctx *gin.Context) entities.Role {
	if claims, ok := Claims(ctx); ok {
		return claims.Role
	}
	return entities.RoleGuest
}

func RequireRole(roles ...entities.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		role := Role(ctx)
		if role == entities.RoleGuest {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		for _, r := range roles {
			if r == role {
				ctx.Next()
				return
			}
		}
		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	}
}

// PageGuard sends guests to the login page and signed-in users away
// from pages of the other role.
func PageGuard() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		role := Role(ctx)
		if role == entities.RoleGuest {
			ctx.Redirect(http.StatusFound, "/login")
			ctx.Abort()
			return
		}
		path := ctx.Request.URL.Path
		if role == entities.RolePatient && strings.HasPrefix(path, "/admin") ||
			role == entities.RoleAdmin && strings.HasPrefix(path, "/patient") {
			ctx.Redirect(http.StatusFound, HomePath(role))
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

func HomePath(role entities.Role) string {
	switch role {
	case entities.RoleAdmin:
		return "/admin"
	case entities.RolePatient:
		return "/patient"
	}
	return "/login"
}
