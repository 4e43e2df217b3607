package handlers

import (
	"PortalServer/internal/auth"
	"PortalServer/internal/entities"
	"PortalServer/internal/events"
	"PortalServer/internal/pagination"
	"PortalServer/internal/server/middleware"
	"PortalServer/internal/store"
	"PortalServer/internal/transcribe"
	"PortalServer/pkg/sl"
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	store        *store.Store
	auth         *auth.Authenticator
	sessions     *transcribe.Sessions
	notifier     *events.Notifier
	broadcaster  *events.Broadcaster
	shellPath    string
	secureCookie bool
}

type Options struct {
	// ShellPath is the page shell served for guarded routes; empty or
	// missing falls back to a built-in shell.
	ShellPath    string
	SecureCookie bool
}

func New(s *store.Store, a *auth.Authenticator, sessions *transcribe.Sessions,
	notifier *events.Notifier, broadcaster *events.Broadcaster, opts Options) Handler {
	return Handler{
		store:        s,
		auth:         a,
		sessions:     sessions,
		notifier:     notifier,
		broadcaster:  broadcaster,
		shellPath:    opts.ShellPath,
		secureCookie: opts.SecureCookie,
	}
}

var errorStatus = []struct {
	err    error
	status int
}{
	{store.ErrNotFound, http.StatusNotFound},
	{transcribe.ErrNoSession, http.StatusNotFound},
	{store.ErrDuplicateID, http.StatusConflict},
	{store.ErrAlreadyDecided, http.StatusConflict},
	{store.ErrAlreadyRequested, http.StatusConflict},
	{store.ErrInvalidTransition, http.StatusConflict},
	{transcribe.ErrBusy, http.StatusConflict},
	{transcribe.ErrNotRecording, http.StatusConflict},
	{transcribe.ErrSessionReplaced, http.StatusConflict},
	{store.ErrInvalidStatus, http.StatusBadRequest},
	{store.ErrInvalidInput, http.StatusBadRequest},
	{store.ErrEmptyID, http.StatusBadRequest},
	{transcribe.ErrEmptyTranscript, http.StatusBadRequest},
	{auth.ErrInvalidCredentials, http.StatusUnauthorized},
}

// respondError maps known errors to a status and their sentinel message.
// Anything else is logged and reported as a 500.
func respondError(ctx *gin.Context, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			ctx.AbortWithStatusJSON(e.status, gin.H{"error": e.err.Error()})
			return
		}
	}
	slog.Error("request failed",
		slog.String("method", ctx.Request.Method),
		slog.String("path", ctx.FullPath()),
		sl.Error(err),
	)
	ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func badRequest(ctx *gin.Context, err error) {
	ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

type listQuery struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Status   string `form:"status"`
	Q        string `form:"q"`
}

func bindList(ctx *gin.Context) (listQuery, bool) {
	var q listQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		badRequest(ctx, err)
		return q, false
	}
	return q, true
}

func respondPage[T any](ctx *gin.Context, items []T, q listQuery) {
	ctx.JSON(http.StatusOK, pagination.Paginate(items, q.Page, q.PageSize))
}

// caller is only called behind RequireRole, so claims are present.
func caller(ctx *gin.Context) *auth.Claims {
	claims, ok := middleware.Claims(ctx)
	if !ok {
		return &auth.Claims{Role: entities.RoleGuest}
	}
	return claims
}

func recipient(claims *auth.Claims) string {
	if claims.Role == entities.RoleAdmin {
		return entities.RecipientAdmin
	}
	return claims.PatientID
}

// patientID resolves the signed-in patient's record id.
func patientID(ctx *gin.Context) (string, bool) {
	claims := caller(ctx)
	if claims.Role != entities.RolePatient || claims.PatientID == "" {
		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return "", false
	}
	return claims.PatientID, true
}

func (h Handler) emit(ctx *gin.Context, typ, subject, patientID string, payload any) {
	h.notifier.Emit(ctx.Request.Context(), events.New(typ, caller(ctx).Username, subject, patientID, payload))
}

func (h Handler) notify(ctx context.Context, to string, typ entities.NotificationType, title, message string) {
	_, err := h.notifier.Notify(ctx, entities.Notification{
		Recipient: to,
		Type:      typ,
		Title:     title,
		Message:   message,
	})
	if err != nil {
		slog.Error("failed to notify", slog.String("recipient", to), sl.Error(err))
	}
}

func (h Handler) Health() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"patients": h.store.Patients.Len(),
			"streams":  h.broadcaster.Clients(),
		})
	}
}
