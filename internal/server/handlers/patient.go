package handlers

import (
	"PortalServer/internal/entities"
	"PortalServer/internal/events"
	"PortalServer/internal/health"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type patientDashboard struct {
	Patient              entities.Patient                 `json:"patient"`
	AgeGap               float64                          `json:"age_gap"`
	BiomarkerStatus      map[entities.BiomarkerStatus]int `json:"biomarker_status"`
	Protocols            []entities.TreatmentProtocol     `json:"protocols"`
	PendingRequests      []entities.ProtocolRequest       `json:"pending_requests"`
	ActiveMedications    int                              `json:"active_medications"`
	ActiveSymptoms       int                              `json:"active_symptoms"`
	ConnectedSources     int                              `json:"connected_sources"`
	UpcomingAppointments []entities.Appointment           `json:"upcoming_appointments"`
	UnreadNotifications  int                              `json:"unread_notifications"`
	RecentCheckIns       []entities.CheckIn               `json:"recent_checkins"`
}

func (h Handler) PatientDashboard() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		pid, ok := patientID(ctx)
		if !ok {
			return
		}
		p, err := h.store.Patients.Get(pid)
		if err != nil {
			respondError(ctx, err)
			return
		}

		d := patientDashboard{
			Patient:              p,
			AgeGap:               health.AgeGap(p),
			BiomarkerStatus:      health.StatusCounts(p.Biomarkers),
			Protocols:            []entities.TreatmentProtocol{},
			ActiveMedications:    len(h.store.Medications.ForPatient(pid, string(entities.MedicationActive))),
			ActiveSymptoms:       len(h.store.Symptoms.ForPatient(pid, string(entities.SymptomActive))),
			UpcomingAppointments: h.store.Appointments.ForPatient(pid, string(entities.AppointmentScheduled)),
			UnreadNotifications:  h.store.Notifications.UnreadCount(pid),
		}
		recent := h.store.CheckIns.ForPatient(pid)
		slices.SortStableFunc(recent, func(a, b entities.CheckIn) int {
			return b.Timestamp.Compare(a.Timestamp)
		})
		d.RecentCheckIns = firstN(recent, dashboardListSize)
		for _, id := range p.ProtocolIDs {
			if proto, err := h.store.Protocols.Get(id); err == nil {
				d.Protocols = append(d.Protocols, proto)
			}
		}
		for _, r := range h.store.ProtocolRequests.ForPatient(pid) {
			if r.Status == entities.RequestPending {
				d.PendingRequests = append(d.PendingRequests, r)
			}
		}
		for _, s := range h.store.DataSources.ForPatient(pid) {
			if s.Connected {
				d.ConnectedSources++
			}
		}

		ctx.JSON(http.StatusOK, d)
	}
}

// Biomarkers lists the patient's readings by name, optionally only
// those with a given status.
func (h Handler) Biomarkers() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		pid, ok := patientID(ctx)
		if !ok {
			return
		}
		p, err := h.store.Patients.Get(pid)
		if err != nil {
			respondError(ctx, err)
			return
		}

		status := entities.BiomarkerStatus(ctx.Query("status"))
		names := maps.Keys(p.Biomarkers)
		slices.Sort(names)
		out := make([]entities.Biomarker, 0, len(names))
		for _, name := range names {
			b := p.Biomarkers[name]
			if status == "" || b.Status == status {
				out = append(out, b)
			}
		}
		ctx.JSON(http.StatusOK, gin.H{"items": out})
	}
}

type protocolRequestRequest struct {
	ProtocolID string `json:"protocol_id" binding:"required"`
	Reason     string `json:"reason"`
}

func (h Handler) RequestProtocol() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		pid, ok := patientID(ctx)
		if !ok {
			return
		}
		var req protocolRequestRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			badRequest(ctx, err)
			return
		}

		r, err := h.store.RequestProtocol(pid, req.ProtocolID, req.Reason)
		if err != nil {
			respondError(ctx, err)
			return
		}

		h.notify(ctx.Request.Context(), entities.RecipientAdmin, entities.NotifyProtocol, "New protocol request",
			fmt.Sprintf("%s requested %s.", r.PatientName, r.ProtocolName))
		h.emit(ctx, events.TypeRequestCreated, r.ID, pid, r)
		ctx.JSON(http.StatusCreated, r)
	}
}

func (h Handler) PatientRequests() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		pid, ok := patientID(ctx)
		if !ok {
			return
		}
		q, ok := bindList(ctx)
		if !ok {
			return
		}
		respondPage(ctx, h.store.ProtocolRequests.ForPatient(pid), q)
	}
}

func (h Handler) PatientCheckIns() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		pid, ok := patientID(ctx)
		if !ok {
			return
		}
		q, ok := bindList(ctx)
		if !ok {
			return
		}
		respondPage(ctx, h.store.CheckIns.ForPatient(pid), q)
	}
}

type checkInRequest struct {
	Type    entities.CheckInType `json:"type"`
	Summary string               `json:"summary" binding:"required"`
	Mood    string               `json:"mood"`
}

func (h Handler) CreateCheckIn() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		pid, ok := patientID(ctx)
		if !ok {
			return
		}
		var req checkInRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			badRequest(ctx, err)
			return
		}
		if req.Type == "" {
			req.Type = entities.CheckInText
		}
		h.submitCheckIn(ctx, pid, entities.CheckIn{Type: req.Type, Summary: req.Summary, Mood: req.Mood})
	}
}

func (h Handler) submitCheckIn(ctx *gin.Context, pid string, c entities.CheckIn) {
	p, err := h.store.Patients.Get(pid)
	if err != nil {
		respondError(ctx, err)
		return
	}
	c.PatientID = p.ID
	c.PatientName = p.Name

	c, err = h.store.CheckIns.Add(c)
	if err != nil {
		respondError(ctx, err)
		return
	}

	h.notify(ctx.Request.Context(), entities.RecipientAdmin, entities.NotifyCheckIn, "New check-in",
		fmt.Sprintf("%s submitted a %s check-in.", c.PatientName, c.Type))
	h.emit(ctx, events.TypeCheckInSubmitted, c.ID, pid, c)
	ctx.JSON(http.StatusCreated, c)
}
