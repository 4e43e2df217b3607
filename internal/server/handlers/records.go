package handlers

import (
	"PortalServer/internal/entities"
	"PortalServer/internal/events"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h Handler) ListMedications() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		pid, ok := patientID(ctx)
		if !ok {
			return
		}
		q, ok := bindList(ctx)
		if !ok {
			return
		}
		respondPage(ctx, h.store.Medications.ForPatient(pid, q.Status), q)
	}
}

type medicationRequest struct {
	Name         string `json:"name" binding:"required"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	PrescribedBy string `json:"prescribed_by"`
	StartedAt    string `json:"started_at"`
}

func (h Handler) AddMedication() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		pid, ok := patientID(ctx)
		if !ok {
			return
		}
		var req medicationRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			badRequest(ctx, err)
			return
		}
		m, err := h.store.Medications.Add(entities.Medication{
			PatientID:    pid,
			Name:         req.Name,
			Dosage:       req.Dosage,
			Frequency:    req.Frequency,
			PrescribedBy: req.PrescribedBy,
			StartedAt:    req.StartedAt,
		})
		if err != nil {
			respondError(ctx, err)
			return
		}
		ctx.JSON(http.StatusCreated, m)
	}
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h Handler) SetMedicationStatus() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		pid, ok := patientID(ctx)
		if !ok {
			return
		}
		var req statusRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			badRequest(ctx, err)
			return
		}
		m, err := h.store.Medications.SetStatus(ctx.Param("id"), pid, entities.MedicationStatus(req.Status))
		if err != nil {
			respondError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, m)
	}
}

func (h Handler) RemoveMedication() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		pid, ok := patientID(ctx)
		if !ok {
			return
		}
		if err := h.store.Medications.Remove(ctx.Param("id"), pid); err != nil {
			respondError(ctx, err)
			return
		}
		ctx.Status(http.StatusNoContent)
	}
}

func (h Handler) ListConditions() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		pid, ok := patientID(ctx)
		if !ok {
			return
		}
		q, ok := bindList(ctx)
		if !ok {
			return
		}
		respondPage(ctx, h.store.Conditions.ForPatient(pid, q.Status), q)
	}
}

type conditionRequest struct {
	Name        string `json:"name" binding:"required"`
	DiagnosedAt string `json:"diagnosed_at"`
	Notes       string `json:"notes"`
}

func (h Handler) AddCondition() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		pid, ok := patientID(ctx)
		if !ok {
			return
		}
		var req conditionRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			badRequest(ctx, err)
			return
		}
		c, err := h.store.Conditions.Add(entities.Condition{
			PatientID:   pid,
			Name:        req.Name,
			DiagnosedAt: req.DiagnosedAt,
			Notes:       req.Notes,
		})
		if err != nil {
			respondError(ctx, err)
			return
		}
		ctx.JSON(http.StatusCreated, c)
	}
}

func (h Handler) SetConditionStatus() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		pid, ok := patientID(ctx)
		if !ok {
			return
		}
		var req statusRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			badRequest(ctx, err)
			return
		}
		c, err := h.store.Conditions.SetStatus(ctx.Param("id"), pid, entities.ConditionStatus(req.Status))
		if err != nil {
			respondError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, c)
	}
}

func (h Handler) RemoveCondition() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		pid, ok := patientID(ctx)
		if !ok {
			return
		}
		if err := h.store.Conditions.Remove(ctx.Param("id"), pid); err != nil {
			respondError(ctx, err)
			return
		}
		ctx.Status(http.StatusNoContent)
	}
}

func (h Handler) ListSymptoms() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		pid, ok := patientID(ctx)
		if !ok {
			return
		}
		q, ok := bindList(ctx)
		if !ok {
			return
		}
		respondPage(ctx, h.store.Symptoms.ForPatient(pid, q.Status), q)
	}
}

type symptomRequest struct {
	Name     string            `json:"name" binding:"required"`
	Severity entities.Severity `json:"severity"`
	Notes    string            `json:"notes"`
}

func (h Handler) AddSymptom() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		pid, ok := patientID(ctx)
		if !ok {
			return
		}
		var req symptomRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			badRequest(ctx, err)
			return
		}
		s, err := h.store.Symptoms.Add(entities.Symptom{
			PatientID: pid,
			Name:      req.Name,
			Severity:  req.Severity,
			Notes:     req.Notes,
		})
		if err != nil {
			respondError(ctx, err)
			return
		}
		if s.Severity == entities.SeveritySevere {
			name := pid
			if p, err := h.store.Patients.Get(pid); err == nil {
				name = p.Name
			}
			h.notify(ctx.Request.Context(), entities.RecipientAdmin, entities.NotifySystem, "Severe symptom reported",
				fmt.Sprintf("%s reported severe %s.", name, s.Name))
		}
		ctx.JSON(http.StatusCreated, s)
	}
}

func (h Handler) ResolveSymptom() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		pid, ok := patientID(ctx)
		if !ok {
			return
		}
		s, err := h.store.Symptoms.Resolve(ctx.Param("id"), pid)
		if err != nil {
			respondError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, s)
	}
}

func (h Handler) RemoveSymptom() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		pid, ok := patientID(ctx)
		if !ok {
			return
		}
		if err := h.store.Symptoms.Remove(ctx.Param("id"), pid); err != nil {
			respondError(ctx, err)
			return
		}
		ctx.Status(http.StatusNoContent)
	}
}

func (h Handler) ListDataSources() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		pid, ok := patientID(ctx)
		if !ok {
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"items": h.store.DataSources.ForPatient(pid)})
	}
}

func (h Handler) ToggleDataSource() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		pid, ok := patientID(ctx)
		if !ok {
			return
		}
		d, err := h.store.DataSources.Toggle(ctx.Param("id"), pid)
		if err != nil {
			respondError(ctx, err)
			return
		}
		h.emit(ctx, events.TypeDataSourceToggled, d.ID, pid, d)
		ctx.JSON(http.StatusOK, d)
	}
}
