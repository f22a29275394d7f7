package incidents

import (
	"parkwise/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupIncidentRoutes configures all incident-related routes
func SetupIncidentRoutes(rg *gin.RouterGroup, controller *Controller) {
	incidents := rg.Group("/incidents")
	incidents.Use(middleware.JWTAuth(), middleware.RequireRoles("USER", "MANAGER", "ADMIN"))
	{
		incidents.POST("", controller.ReportIncident)
		incidents.GET("", controller.ListMyIncidents)
	}

	adminIncidents := rg.Group("/admin/incidents")
	adminIncidents.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminIncidents.GET("", controller.ListIncidents)
		adminIncidents.GET("/:id", controller.GetIncident)
		adminIncidents.POST("/:id/confirm", controller.ConfirmIncident)
		adminIncidents.POST("/:id/dismiss", controller.DismissIncident)
	}
}
