package handlers

import (
	"PortalServer/internal/auth"
	"PortalServer/internal/entities"
	"PortalServer/internal/events"
	"PortalServer/internal/server/middleware"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token     string        `json:"token"`
	User      entities.User `json:"user"`
	ExpiresAt time.Time     `json:"expires_at"`
	Redirect  string        `json:"redirect"`
}

func (h Handler) Login() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req loginRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			badRequest(ctx, err)
			return
		}

		session, err := h.auth.Login(req.Username, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidCredentials.Error()})
				return
			}
			respondError(ctx, err)
			return
		}

		maxAge := int(session.ExpiresAt.Sub(h.store.Now()).Seconds())
		ctx.SetSameSite(http.SameSiteLaxMode)
		ctx.SetCookie(middleware.SessionCookie, session.Token, maxAge, "/", "", h.secureCookie, true)

		h.notifier.Emit(ctx.Request.Context(),
			events.New(events.TypeLogin, session.User.Username, session.User.Username, session.User.PatientID, nil))

		ctx.JSON(http.StatusOK, loginResponse{
			Token:     session.Token,
			User:      session.User,
			ExpiresAt: session.ExpiresAt,
			Redirect:  middleware.HomePath(session.User.Role),
		})
	}
}

func (h Handler) Logout() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if claims, ok := middleware.Claims(ctx); ok && claims.PatientID != "" {
			h.sessions.Discard(claims.PatientID)
		}
		ctx.SetSameSite(http.SameSiteLaxMode)
		ctx.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secureCookie, true)
		ctx.JSON(http.StatusOK, gin.H{"redirect": "/login"})
	}
}

// Me reports who is signed in; guests get role guest rather than an
// error so the client can decide where to go.
func (h Handler) Me() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, ok := middleware.Claims(ctx)
		if !ok {
			ctx.JSON(http.StatusOK, gin.H{"role": entities.RoleGuest})
			return
		}
		user, ok := h.auth.User(claims.Username)
		if !ok {
			ctx.JSON(http.StatusOK, gin.H{"role": entities.RoleGuest})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{
			"username":     user.Username,
			"display_name": user.DisplayName,
			"role":         user.Role,
			"patient_id":   user.PatientID,
			"unread":       h.store.Notifications.UnreadCount(recipient(claims)),
		})
	}
}
