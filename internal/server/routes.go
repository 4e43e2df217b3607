package server

import (
	"PortalServer/internal/entities"
	"PortalServer/internal/server/handlers"
	"PortalServer/internal/server/middleware"

	"github.com/gin-gonic/gin"
)

func registerRoutes(router *gin.Engine, h handlers.Handler) {
	router.GET("/healthz", h.Health())

	// pages
	router.GET("/login", h.LoginPage())
	pages := router.Group("/", middleware.PageGuard())
	{
		pages.GET("/", h.Home())
		pages.GET("/admin", h.Shell())
		pages.GET("/admin/*path", h.Shell())
		pages.GET("/patient", h.Shell())
		pages.GET("/patient/*path", h.Shell())
		pages.GET("/appointments", h.Shell())
		pages.GET("/notifications", h.Shell())
	}

	api := router.Group("/api")
	{
		api.POST("/login", h.Login())
		api.POST("/logout", h.Logout())
		api.GET("/me", h.Me())
	}

	admin := api.Group("", middleware.RequireRole(entities.RoleAdmin))
	{
		admin.GET("/admin/dashboard", h.AdminDashboard())

		admin.GET("/patients", h.ListPatients())
		admin.POST("/patients", h.CreatePatient())
		admin.GET("/patients/:id", h.GetPatient())
		admin.PUT("/patients/:id", h.UpdatePatient())
		admin.POST("/patients/:id/biomarkers", h.RecordBiomarker())

		admin.GET("/protocol-requests", h.ListProtocolRequests())
		admin.POST("/protocol-requests/:id/approve", h.ApproveRequest())
		admin.POST("/protocol-requests/:id/reject", h.RejectRequest())

		admin.GET("/checkins", h.ListCheckIns())
		admin.POST("/checkins/:id/review", h.ReviewCheckIn())

		admin.POST("/protocols", h.CreateProtocol())
		admin.POST("/appointments/:id/complete", h.CompleteAppointment())

		admin.GET("/export/patients.xlsx", h.ExportPatients())
	}

	shared := api.Group("", middleware.RequireRole(entities.RoleAdmin, entities.RolePatient))
	{
		shared.GET("/protocols", h.ListProtocols())
		shared.GET("/protocols/categories", h.ProtocolCategories())

		shared.GET("/appointments", h.ListAppointments())
		shared.POST("/appointments", h.CreateAppointment())
		shared.POST("/appointments/:id/cancel", h.CancelAppointment())
		shared.POST("/appointments/:id/reschedule", h.RescheduleAppointment())

		shared.GET("/notifications", h.ListNotifications())
		shared.GET("/notifications/stream", h.StreamNotifications())
		shared.POST("/notifications/read-all", h.ReadAllNotifications())
		shared.POST("/notifications/:id/read", h.ReadNotification())
		shared.DELETE("/notifications/:id", h.DeleteNotification())
	}

	patient := api.Group("/patient", middleware.RequireRole(entities.RolePatient))
	{
		patient.GET("/dashboard", h.PatientDashboard())
		patient.GET("/biomarkers", h.Biomarkers())

		patient.GET("/protocol-requests", h.PatientRequests())
		patient.POST("/protocol-requests", h.RequestProtocol())

		patient.GET("/checkins", h.PatientCheckIns())
		patient.POST("/checkins", h.CreateCheckIn())

		patient.GET("/medications", h.ListMedications())
		patient.POST("/medications", h.AddMedication())
		patient.PATCH("/medications/:id", h.SetMedicationStatus())
		patient.DELETE("/medications/:id", h.RemoveMedication())

		patient.GET("/conditions", h.ListConditions())
		patient.POST("/conditions", h.AddCondition())
		patient.PATCH("/conditions/:id", h.SetConditionStatus())
		patient.DELETE("/conditions/:id", h.RemoveCondition())

		patient.GET("/symptoms", h.ListSymptoms())
		patient.POST("/symptoms", h.AddSymptom())
		patient.POST("/symptoms/:id/resolve", h.ResolveSymptom())
		patient.DELETE("/symptoms/:id", h.RemoveSymptom())

		patient.GET("/data-sources", h.ListDataSources())
		patient.POST("/data-sources/:id/toggle", h.ToggleDataSource())

		patient.GET("/voice", h.VoiceSession())
		patient.POST("/voice/start", h.VoiceStart())
		patient.POST("/voice/stop", h.VoiceStop())
		patient.POST("/voice/clip", h.VoiceClip())
		patient.POST("/voice/submit", h.VoiceSubmit())
		patient.DELETE("/voice", h.VoiceDiscard())
	}
}
