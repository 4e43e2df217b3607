package handlers

import (
	"PortalServer/internal/entities"
	"PortalServer/internal/events"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (h Handler) ListProtocols() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		q, ok := bindList(ctx)
		if !ok {
			return
		}
		respondPage(ctx, h.store.Protocols.List(ctx.Query("category"), q.Q), q)
	}
}

func (h Handler) ProtocolCategories() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"categories": h.store.Protocols.Categories()})
	}
}

func (h Handler) ListAppointments() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		q, ok := bindList(ctx)
		if !ok {
			return
		}
		claims := caller(ctx)
		if claims.Role == entities.RoleAdmin {
			respondPage(ctx, h.store.Appointments.List(q.Status, q.Q), q)
			return
		}
		respondPage(ctx, h.store.Appointments.ForPatient(claims.PatientID, q.Status), q)
	}
}

type createAppointmentRequest struct {
	PatientID string `json:"patient_id"`
	Provider  string `json:"provider" binding:"required"`
	Date      string `json:"date" binding:"required"`
	Time      string `json:"time" binding:"required"`
	Type      string `json:"type"`
	Notes     string `json:"notes"`
}

// CreateAppointment books a slot. Staff book for any patient; patients
// always book for themselves. The other side is notified.
func (h Handler) CreateAppointment() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req createAppointmentRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			badRequest(ctx, err)
			return
		}

		claims := caller(ctx)
		pid := req.PatientID
		if claims.Role == entities.RolePatient {
			pid = claims.PatientID
		}
		if pid == "" {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "patient_id is required"})
			return
		}
		patient, err := h.store.Patients.Get(pid)
		if err != nil {
			respondError(ctx, err)
			return
		}

		a, err := h.store.Appointments.Create(entities.Appointment{
			PatientID:   patient.ID,
			PatientName: patient.Name,
			Provider:    req.Provider,
			Date:        req.Date,
			Time:        req.Time,
			Type:        req.Type,
			Notes:       req.Notes,
		})
		if err != nil {
			respondError(ctx, err)
			return
		}

		if claims.Role == entities.RoleAdmin {
			h.notify(ctx.Request.Context(), a.PatientID, entities.NotifyAppointment, "Appointment booked",
				fmt.Sprintf("You are booked with %s on %s at %s.", a.Provider, a.Date, a.Time))
		} else {
			h.notify(ctx.Request.Context(), entities.RecipientAdmin, entities.NotifyAppointment, "Appointment requested",
				fmt.Sprintf("%s booked %s on %s at %s.", a.PatientName, a.Provider, a.Date, a.Time))
		}
		h.emit(ctx, events.TypeAppointmentCreated, a.ID, a.PatientID, a)
		ctx.JSON(http.StatusCreated, a)
	}
}

// ownAppointment loads the appointment in the path; a patient asking
// for someone else's gets a 404.
func (h Handler) ownAppointment(ctx *gin.Context) (entities.Appointment, bool) {
	a, err := h.store.Appointments.Get(ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return a, false
	}
	claims := caller(ctx)
	if claims.Role != entities.RoleAdmin && a.PatientID != claims.PatientID {
		ctx.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return a, false
	}
	return a, true
}

// counterpart is whoever did not make the change.
func counterpart(ctx *gin.Context, a entities.Appointment) string {
	if caller(ctx).Role == entities.RoleAdmin {
		return a.PatientID
	}
	return entities.RecipientAdmin
}

func (h Handler) CancelAppointment() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		a, ok := h.ownAppointment(ctx)
		if !ok {
			return
		}
		a, err := h.store.Appointments.Cancel(a.ID)
		if err != nil {
			respondError(ctx, err)
			return
		}

		h.notify(ctx.Request.Context(), counterpart(ctx, a), entities.NotifyAppointment, "Appointment cancelled",
			fmt.Sprintf("%s with %s on %s at %s was cancelled.", a.PatientName, a.Provider, a.Date, a.Time))
		h.emit(ctx, events.TypeAppointmentCancel, a.ID, a.PatientID, a)
		ctx.JSON(http.StatusOK, a)
	}
}

func (h Handler) CompleteAppointment() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		a, err := h.store.Appointments.Complete(ctx.Param("id"))
		if err != nil {
			respondError(ctx, err)
			return
		}
		h.emit(ctx, events.TypeAppointmentDone, a.ID, a.PatientID, a)
		ctx.JSON(http.StatusOK, a)
	}
}

type rescheduleRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

func (h Handler) RescheduleAppointment() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req rescheduleRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			badRequest(ctx, err)
			return
		}
		a, ok := h.ownAppointment(ctx)
		if !ok {
			return
		}
		a, err := h.store.Appointments.Reschedule(a.ID, req.Date, req.Time)
		if err != nil {
			respondError(ctx, err)
			return
		}

		h.notify(ctx.Request.Context(), counterpart(ctx, a), entities.NotifyAppointment, "Appointment rescheduled",
			fmt.Sprintf("%s with %s moved to %s at %s.", a.PatientName, a.Provider, a.Date, a.Time))
		h.emit(ctx, events.TypeAppointmentMoved, a.ID, a.PatientID, a)
		ctx.JSON(http.StatusOK, a)
	}
}

func (h Handler) ListNotifications() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		q, ok := bindList(ctx)
		if !ok {
			return
		}
		unreadOnly, _ := strconv.ParseBool(ctx.Query("unread"))
		respondPage(ctx, h.store.Notifications.ForRecipient(recipient(caller(ctx)), unreadOnly), q)
	}
}

func (h Handler) ReadNotification() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		n, err := h.store.Notifications.MarkRead(ctx.Param("id"), recipient(caller(ctx)))
		if err != nil {
			respondError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, n)
	}
}

func (h Handler) ReadAllNotifications() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		n := h.store.Notifications.MarkAllRead(recipient(caller(ctx)))
		ctx.JSON(http.StatusOK, gin.H{"updated": n})
	}
}

func (h Handler) DeleteNotification() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if err := h.store.Notifications.Delete(ctx.Param("id"), recipient(caller(ctx))); err != nil {
			respondError(ctx, err)
			return
		}
		ctx.Status(http.StatusNoContent)
	}
}

// StreamNotifications keeps a server-sent events stream open and pushes
// a refresh frame whenever the caller gets a new notification.
func (h Handler) StreamNotifications() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Header("Content-Type", "text/event-stream")
		ctx.Header("Cache-Control", "no-cache")
		ctx.Header("Connection", "keep-alive")

		client := h.broadcaster.Register(recipient(caller(ctx)))
		defer h.broadcaster.Unregister(client)

		fmt.Fprintf(ctx.Writer, "data: %s\n\n", "connected")
		ctx.Writer.Flush()

		ctx.Stream(func(w io.Writer) bool {
			select {
			case message, ok := <-client:
				if !ok {
					return false
				}
				fmt.Fprintf(w, "data: %s\n\n", message)
				return true
			case <-ctx.Request.Context().Done():
				return false
			}
		})
	}
}
