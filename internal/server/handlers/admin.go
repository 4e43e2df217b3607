package handlers

import (
	"PortalServer/internal/entities"
	"PortalServer/internal/events"
	"PortalServer/internal/export"
	"PortalServer/internal/health"
	"PortalServer/internal/store"
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slices"
)

const dashboardListSize = 5

type adminStats struct {
	TotalPatients       int     `json:"total_patients"`
	ActivePatients      int     `json:"active_patients"`
	PendingRequests     int     `json:"pending_requests"`
	PendingCheckIns     int     `json:"pending_checkins"`
	AppointmentsToday   int     `json:"appointments_today"`
	AvgLongevityScore   float64 `json:"avg_longevity_score"`
	UnreadNotifications int     `json:"unread_notifications"`
	AttentionBiomarkers int     `json:"attention_biomarkers"`
	CriticalBiomarkers  int     `json:"critical_biomarkers"`
}

type adminDashboard struct {
	Stats                adminStats                 `json:"stats"`
	PendingRequests      []entities.ProtocolRequest `json:"pending_requests"`
	RecentCheckIns       []entities.CheckIn         `json:"recent_checkins"`
	UpcomingAppointments []entities.Appointment     `json:"upcoming_appointments"`
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func (h Handler) AdminDashboard() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		now := h.store.Now()
		patients := h.store.Patients.All()
		pendingCheckIns := h.store.CheckIns.List(string(entities.CheckInPending), "")
		pending := h.store.ProtocolRequests.Pending()

		stats := adminStats{
			TotalPatients:       len(patients),
			ActivePatients:      len(h.store.Patients.List(string(entities.PatientActive), "")),
			PendingRequests:     len(pending),
			PendingCheckIns:     len(pendingCheckIns),
			AvgLongevityScore:   health.AverageLongevityScore(patients),
			UnreadNotifications: h.store.Notifications.UnreadCount(entities.RecipientAdmin),
		}
		for _, p := range patients {
			counts := health.StatusCounts(p.Biomarkers)
			stats.AttentionBiomarkers += counts[entities.BiomarkerAttention]
			stats.CriticalBiomarkers += counts[entities.BiomarkerCritical]
		}
		today := now.Format(entities.DateLayout)
		for _, a := range h.store.Appointments.List(string(entities.AppointmentScheduled), "") {
			if a.Date == today {
				stats.AppointmentsToday++
			}
		}

		recent := h.store.CheckIns.List("", "")
		slices.SortStableFunc(recent, func(a, b entities.CheckIn) int {
			return b.Timestamp.Compare(a.Timestamp)
		})

		ctx.JSON(http.StatusOK, adminDashboard{
			Stats:                stats,
			PendingRequests:      firstN(pending, dashboardListSize),
			RecentCheckIns:       firstN(recent, dashboardListSize),
			UpcomingAppointments: firstN(h.store.Appointments.Upcoming(now, 7*24*time.Hour), dashboardListSize),
		})
	}
}

func (h Handler) ListPatients() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		q, ok := bindList(ctx)
		if !ok {
			return
		}
		respondPage(ctx, h.store.Patients.List(q.Status, q.Q), q)
	}
}

func (h Handler) GetPatient() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		p, err := h.store.Patients.Get(ctx.Param("id"))
		if err != nil {
			respondError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, p)
	}
}

type createPatientRequest struct {
	Name           string                        `json:"name" binding:"required"`
	Email          string                        `json:"email" binding:"required,email"`
	Age            int                           `json:"age" binding:"gte=0"`
	Gender         string                        `json:"gender"`
	Status         entities.PatientStatus        `json:"status"`
	BiologicalAge  float64                       `json:"biological_age"`
	LongevityScore float64                       `json:"longevity_score"`
	Biomarkers     map[string]entities.Biomarker `json:"biomarkers"`
}

func (h Handler) CreatePatient() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req createPatientRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			badRequest(ctx, err)
			return
		}

		p, err := h.store.Patients.Create(entities.Patient{
			Name:           req.Name,
			Email:          req.Email,
			Age:            req.Age,
			Gender:         req.Gender,
			Status:         req.Status,
			BiologicalAge:  req.BiologicalAge,
			LongevityScore: req.LongevityScore,
			Biomarkers:     req.Biomarkers,
		})
		if err != nil {
			respondError(ctx, err)
			return
		}

		h.emit(ctx, events.TypePatientCreated, p.ID, p.ID, p)
		ctx.JSON(http.StatusCreated, p)
	}
}

func (h Handler) UpdatePatient() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var patch store.PatientPatch
		if err := ctx.ShouldBindJSON(&patch); err != nil {
			badRequest(ctx, err)
			return
		}

		p, err := h.store.Patients.Update(ctx.Param("id"), patch)
		if err != nil {
			respondError(ctx, err)
			return
		}

		h.emit(ctx, events.TypePatientUpdated, p.ID, p.ID, patch)
		ctx.JSON(http.StatusOK, p)
	}
}

type biomarkerRequest struct {
	Name  string   `json:"name" binding:"required"`
	Value *float64 `json:"value" binding:"required"`
	Unit  string   `json:"unit"`
}

// RecordBiomarker stores a new lab reading and warns the patient when
// it falls outside the reference range.
func (h Handler) RecordBiomarker() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req biomarkerRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			badRequest(ctx, err)
			return
		}

		id := ctx.Param("id")
		b, err := h.store.Patients.RecordBiomarker(id, entities.Biomarker{
			Name:       req.Name,
			Value:      *req.Value,
			Unit:       req.Unit,
			MeasuredAt: h.store.Now(),
		})
		if err != nil {
			respondError(ctx, err)
			return
		}

		if b.Status == entities.BiomarkerAttention || b.Status == entities.BiomarkerCritical {
			h.notify(ctx.Request.Context(), id, entities.NotifyBiomarker, "New lab result",
				fmt.Sprintf("Your %s result (%g %s) needs attention. Your care team will follow up.", b.Name, b.Value, b.Unit))
		}
		h.emit(ctx, events.TypePatientUpdated, id, id, b)
		ctx.JSON(http.StatusCreated, b)
	}
}

func (h Handler) ListProtocolRequests() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		q, ok := bindList(ctx)
		if !ok {
			return
		}
		requests, err := h.store.ProtocolRequests.List(q.Status, q.Q)
		if err != nil {
			respondError(ctx, err)
			return
		}
		respondPage(ctx, requests, q)
	}
}

type decisionRequest struct {
	Note string `json:"note"`
}

func (h Handler) ApproveRequest() gin.HandlerFunc {
	return h.decide(entities.RequestApproved)
}

func (h Handler) RejectRequest() gin.HandlerFunc {
	return h.decide(entities.RequestRejected)
}

func (h Handler) decide(status entities.RequestStatus) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req decisionRequest
		if ctx.Request.ContentLength > 0 {
			if err := ctx.ShouldBindJSON(&req); err != nil {
				badRequest(ctx, err)
				return
			}
		}

		var (
			r   entities.ProtocolRequest
			err error
			typ string
		)
		if status == entities.RequestApproved {
			r, err = h.store.ApproveRequest(ctx.Param("id"), req.Note)
			typ = events.TypeRequestApproved
		} else {
			r, err = h.store.ProtocolRequests.Reject(ctx.Param("id"), req.Note)
			typ = events.TypeRequestRejected
		}
		if err != nil {
			respondError(ctx, err)
			return
		}

		h.notify(ctx.Request.Context(), r.PatientID, entities.NotifyProtocol,
			fmt.Sprintf("Protocol request %s", r.Status),
			fmt.Sprintf("Your request for %s was %s.", r.ProtocolName, r.Status))
		h.emit(ctx, typ, r.ID, r.PatientID, r)
		ctx.JSON(http.StatusOK, r)
	}
}

func (h Handler) ListCheckIns() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		q, ok := bindList(ctx)
		if !ok {
			return
		}
		respondPage(ctx, h.store.CheckIns.List(q.Status, q.Q), q)
	}
}

func (h Handler) ReviewCheckIn() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		c, err := h.store.CheckIns.MarkReviewed(ctx.Param("id"))
		if err != nil {
			respondError(ctx, err)
			return
		}

		h.notify(ctx.Request.Context(), c.PatientID, entities.NotifyCheckIn, "Check-in reviewed",
			"Your care team has reviewed your latest check-in.")
		h.emit(ctx, events.TypeCheckInReviewed, c.ID, c.PatientID, c)
		ctx.JSON(http.StatusOK, c)
	}
}

type createProtocolRequest struct {
	Name        string   `json:"name" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Duration    string   `json:"duration"`
	Frequency   string   `json:"frequency"`
	Targets     []string `json:"targets"`
	Description string   `json:"description"`
}

func (h Handler) CreateProtocol() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req createProtocolRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			badRequest(ctx, err)
			return
		}

		p, err := h.store.Protocols.Create(entities.TreatmentProtocol{
			Name:        req.Name,
			Category:    req.Category,
			Duration:    req.Duration,
			Frequency:   req.Frequency,
			Targets:     req.Targets,
			Description: req.Description,
		})
		if err != nil {
			respondError(ctx, err)
			return
		}
		ctx.JSON(http.StatusCreated, p)
	}
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h Handler) ExportPatients() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var buf bytes.Buffer
		if err := export.Patients(&buf, h.store.Patients.All()); err != nil {
			respondError(ctx, err)
			return
		}
		ctx.Header("Content-Disposition", `attachment; filename="patients.xlsx"`)
		ctx.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	}
}
