package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Version is reported by the index route
const Version = "3.0.0"

// Register mounts every route on r
func (h *Handler) Register(r *gin.Engine) {
	// Admin interface - serve static files from embedded FS
	r.StaticFS("/static", h.GetStaticFS())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Crew Scheduler API",
			"version": Version,
		})
	})
	if h.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(h.MetricsHandler))
	}

	r.GET("/admin", h.AdminInterface)
	r.POST("/admin/login", h.Login)

	// Admin Endpoints
	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.PUT("/keys/:id", h.UpdateKeyLimit)
		admin.DELETE("/keys/:id", h.RevokeKey)
		admin.GET("/usage/:id", h.GetUsage)
	}

	// Scheduler Endpoints
	api := r.Group("/api")
	api.Use(h.APIKeyMiddleware())
	{
		api.POST("/validate", h.ValidateInput)
		api.POST("/schedule", h.ScheduleJSON)
		api.POST("/schedule/check", h.CheckSchedule)
		api.POST("/schedule/csv", h.ScheduleCSV)

		api.GET("/schedules", h.ListSchedules)
		api.POST("/schedules", h.CreateSchedule)
		api.GET("/schedules/:id", h.GetSchedule)
		api.PUT("/schedules/:id", h.UpdateSchedule)
		api.DELETE("/schedules/:id", h.DeleteSchedule)
		api.GET("/schedules/:id/export", h.ExportSchedule)
		api.GET("/schedules/:id/hours", h.ScheduleHours)
		api.GET("/schedules/:id/extra-work", h.ListExtraWork)
		api.POST("/schedules/:id/extra-work", h.AddExtraWork)
		api.DELETE("/extra-work/:id", h.DeleteExtraWork)

		api.GET("/work-rules", h.GetWorkRules)
		api.PUT("/work-rules", h.SaveWorkRules)
		api.GET("/staff-presets", h.ListStaffPresets)
		api.POST("/staff-presets", h.SaveStaffPreset)
		api.DELETE("/staff-presets/:id", h.DeleteStaffPreset)

		api.GET("/usage", h.GetMyUsage)
	}
}
